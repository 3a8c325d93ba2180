package model

import "time"

// UploadEvent is broadcast after a (media, platform) outcome has been persisted.
type UploadEvent struct {
	Type       string        `json:"type"`
	MediaID    string        `json:"media_id"`
	OwnerID    string        `json:"owner_id"`
	Platform   Platform      `json:"platform"`
	Result     AttemptResult `json:"result"`
	ExternalID string        `json:"external_id,omitempty"`
	URL        string        `json:"url,omitempty"`
	Error      string        `json:"error,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}
