package model

import "time"

// AuthorizationPhase tracks a deferred login from redirect to callback.
type AuthorizationPhase string

const (
	PhaseAwaitingRedirect AuthorizationPhase = "AWAITING_REDIRECT"
	PhaseAwaitingCallback AuthorizationPhase = "AWAITING_CALLBACK"
	PhaseResumed          AuthorizationPhase = "RESUMED"
	PhaseExpired          AuthorizationPhase = "EXPIRED"
)

// PendingAuthorization correlates an external login callback with the suspended (media, platform) pair.
type PendingAuthorization struct {
	State     string             `json:"state"`
	MediaID   string             `json:"media_id"`
	Platform  Platform           `json:"platform"`
	UserID    string             `json:"user_id"`
	Phase     AuthorizationPhase `json:"phase"`
	CreatedAt time.Time          `json:"created_at"`
	ExpiresAt time.Time          `json:"expires_at"`
}

func (p *PendingAuthorization) Expired(now time.Time) bool {
	return !p.ExpiresAt.IsZero() && !now.Before(p.ExpiresAt)
}

// TTL returns the remaining lifetime, never negative.
func (p *PendingAuthorization) TTL(now time.Time) time.Duration {
	d := p.ExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
