package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

const MaxTitleLength = 100

// MediaItem is one video asset and its publication state on every target platform.
type MediaItem struct {
	ID          string                    `json:"id"                     bson:"_id"          gorm:"primaryKey;size:64"`
	OwnerID     string                    `json:"owner_id"               bson:"owner_id"     gorm:"index;size:128"`
	Title       string                    `json:"title"                  bson:"title"        gorm:"size:100"`
	Description string                    `json:"description"            bson:"description"`
	SourceRef   string                    `json:"source_ref"             bson:"source_ref"`
	Platforms   []Platform                `json:"platforms"              bson:"platforms"    gorm:"serializer:json"`
	Privacy     map[Platform]Privacy      `json:"privacy"                bson:"privacy"      gorm:"serializer:json"`
	ExternalIDs map[Platform]string       `json:"external_ids"           bson:"external_ids" gorm:"serializer:json"`
	Statuses    map[Platform]UploadStatus `json:"statuses"               bson:"statuses"     gorm:"serializer:json"`
	History     []UploadAttempt           `json:"history"                bson:"history"      gorm:"serializer:json"`
	Version     int64                     `json:"version"                bson:"version"`
	CreatedAt   time.Time                 `json:"created_at"             bson:"created_at"`
	UpdatedAt   time.Time                 `json:"updated_at"             bson:"updated_at"`
}

// UploadAttempt is one immutable history entry.
type UploadAttempt struct {
	Timestamp  time.Time     `json:"timestamp"             bson:"timestamp"`
	Platform   Platform      `json:"platform"              bson:"platform"`
	Result     AttemptResult `json:"result"                bson:"result"`
	ExternalID string        `json:"external_id,omitempty" bson:"external_id,omitempty"`
	Error      string        `json:"error,omitempty"       bson:"error,omitempty"`
}

func (MediaItem) TableName() string { return "media_items" }

func (m *MediaItem) HasSource() bool {
	return strings.TrimSpace(m.SourceRef) != ""
}

func (m *MediaItem) Targets(p Platform) bool {
	for _, t := range m.Platforms {
		if t == p {
			return true
		}
	}
	return false
}

func (m *MediaItem) ExternalID(p Platform) string {
	return m.ExternalIDs[p]
}

func (m *MediaItem) Status(p Platform) UploadStatus {
	if s, ok := m.Statuses[p]; ok && s != "" {
		return s
	}
	return StatusPending
}

func (m *MediaItem) PrivacyFor(p Platform) Privacy {
	return m.Privacy[p].Normalize()
}

// HasSuccessfulUpload reports whether any platform already holds a published copy.
func (m *MediaItem) HasSuccessfulUpload() bool {
	for _, p := range m.Platforms {
		if m.Status(p).Published() {
			return true
		}
	}
	return false
}

// IsPending reports whether at least one target has not been published yet.
func (m *MediaItem) IsPending() bool {
	for _, p := range m.Platforms {
		if !m.Status(p).Published() {
			return true
		}
	}
	return false
}

// Record appends an attempt to the history and applies it to the status and identifier maps.
// The timestamp is clamped so history stays non-decreasing. A failure never clears an
// identifier and never overrides a success recorded after startedAt.
func (m *MediaItem) Record(a UploadAttempt, startedAt time.Time) UploadAttempt {
	m.ensureMaps()
	if n := len(m.History); n > 0 && a.Timestamp.Before(m.History[n-1].Timestamp) {
		a.Timestamp = m.History[n-1].Timestamp
	}
	switch a.Result {
	case ResultUploaded, ResultExists:
		m.Statuses[a.Platform] = a.Result.Status()
		if a.ExternalID != "" {
			m.ExternalIDs[a.Platform] = a.ExternalID
		}
	default:
		if !m.publishedSince(a.Platform, startedAt) {
			m.Statuses[a.Platform] = StatusFailed
		}
	}
	m.History = append(m.History, a)
	m.UpdatedAt = a.Timestamp
	return a
}

// MarkFailed sets a failed status without writing history.
func (m *MediaItem) MarkFailed(p Platform, at time.Time) {
	m.ensureMaps()
	if m.Status(p).Published() {
		return
	}
	m.Statuses[p] = StatusFailed
	m.UpdatedAt = at
}

func (m *MediaItem) publishedSince(p Platform, since time.Time) bool {
	if !m.Status(p).Published() {
		return false
	}
	for i := len(m.History) - 1; i >= 0; i-- {
		h := m.History[i]
		if h.Platform != p || h.Result.Status() != m.Status(p) {
			continue
		}
		return h.Timestamp.After(since)
	}
	return false
}

func (m *MediaItem) ensureMaps() {
	if m.Privacy == nil {
		m.Privacy = map[Platform]Privacy{}
	}
	if m.ExternalIDs == nil {
		m.ExternalIDs = map[Platform]string{}
	}
	if m.Statuses == nil {
		m.Statuses = map[Platform]UploadStatus{}
	}
}

// Normalize fills empty maps and defaults every target to pending and private.
func (m *MediaItem) Normalize() {
	m.ensureMaps()
	for _, p := range m.Platforms {
		if _, ok := m.Statuses[p]; !ok {
			m.Statuses[p] = StatusPending
		}
		m.Privacy[p] = m.Privacy[p].Normalize()
	}
	if m.History == nil {
		m.History = []UploadAttempt{}
	}
}

// Validate checks the user-editable fields.
func (m *MediaItem) Validate() error {
	title := strings.TrimSpace(m.Title)
	if title == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return &ValidationError{Field: "title", Message: "title must be at most 100 characters"}
	}
	if len(m.Platforms) == 0 {
		return &ValidationError{Field: "platforms", Message: "at least one platform is required"}
	}
	seen := make(map[Platform]struct{}, len(m.Platforms))
	for _, p := range m.Platforms {
		if !p.Valid() {
			return &ValidationError{Field: "platforms", Message: "unsupported platform: " + string(p)}
		}
		if _, dup := seen[p]; dup {
			return &ValidationError{Field: "platforms", Message: "duplicate platform: " + string(p)}
		}
		seen[p] = struct{}{}
	}
	return nil
}

// Clone returns a deep copy so stores never share maps or slices with callers.
func (m *MediaItem) Clone() *MediaItem {
	if m == nil {
		return nil
	}
	c := *m
	c.Platforms = append([]Platform(nil), m.Platforms...)
	c.History = append([]UploadAttempt(nil), m.History...)
	c.Privacy = make(map[Platform]Privacy, len(m.Privacy))
	for k, v := range m.Privacy {
		c.Privacy[k] = v
	}
	c.ExternalIDs = make(map[Platform]string, len(m.ExternalIDs))
	for k, v := range m.ExternalIDs {
		c.ExternalIDs[k] = v
	}
	c.Statuses = make(map[Platform]UploadStatus, len(m.Statuses))
	for k, v := range m.Statuses {
		c.Statuses[k] = v
	}
	return &c
}
