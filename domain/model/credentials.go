package model

import "time"

// Credentials is the per-platform secret material an adapter needs to talk to its API.
type Credentials struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

// Valid reports whether the access token is present and not expired at now.
func (c *Credentials) Valid(now time.Time) bool {
	if c == nil || c.AccessToken == "" {
		return false
	}
	return c.Expiry.IsZero() || now.Before(c.Expiry)
}

// OAuthToken stores platform OAuth credentials per user
type OAuthToken struct {
	ID           int64      `json:"id"                   bson:"id"                   gorm:"primaryKey;autoIncrement"`
	UserID       string     `json:"user_id"              bson:"user_id"              gorm:"uniqueIndex:idx_oauth_user_platform;size:128"`
	Platform     string     `json:"platform"             bson:"platform"             gorm:"uniqueIndex:idx_oauth_user_platform;size:16"`
	AccessToken  string     `json:"access_token"         bson:"access_token"`
	RefreshToken string     `json:"refresh_token"        bson:"refresh_token"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty" bson:"expires_at,omitempty"`
	Scopes       string     `json:"scopes"               bson:"scopes"`
	CreatedAt    time.Time  `json:"created_at"           bson:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"           bson:"updated_at"`
}

func (OAuthToken) TableName() string { return "oauth_tokens" }

func (t *OAuthToken) Credentials() *Credentials {
	c := &Credentials{AccessToken: t.AccessToken, RefreshToken: t.RefreshToken, TokenType: "Bearer"}
	if t.ExpiresAt != nil {
		c.Expiry = *t.ExpiresAt
	}
	return c
}
