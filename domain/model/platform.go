package model

import (
	"fmt"
	"strings"
)

// Platform is the short code of a destination video host.
type Platform string

const (
	PlatformYouTube     Platform = "YT"
	PlatformVimeo       Platform = "VM"
	PlatformDailymotion Platform = "DM"
)

// AllPlatforms lists every supported platform in display order.
var AllPlatforms = []Platform{PlatformYouTube, PlatformVimeo, PlatformDailymotion}

var platformNames = map[Platform]string{
	PlatformYouTube:     "youtube",
	PlatformVimeo:       "vimeo",
	PlatformDailymotion: "dailymotion",
}

// ParsePlatform accepts either a platform code (YT) or a name (youtube), case-insensitive.
func ParsePlatform(s string) (Platform, error) {
	v := strings.TrimSpace(s)
	for code, name := range platformNames {
		if strings.EqualFold(v, string(code)) || strings.EqualFold(v, name) {
			return code, nil
		}
	}
	return "", &ValidationError{Field: "platform", Message: fmt.Sprintf("unsupported platform: %s", s)}
}

// ParsePlatforms parses every entry and drops duplicates, preserving order.
func ParsePlatforms(values []string) ([]Platform, error) {
	out := make([]Platform, 0, len(values))
	seen := make(map[Platform]struct{}, len(values))
	for _, v := range values {
		p, err := ParsePlatform(v)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out, nil
}

func (p Platform) Name() string {
	if n, ok := platformNames[p]; ok {
		return n
	}
	return strings.ToLower(string(p))
}

func (p Platform) Valid() bool {
	_, ok := platformNames[p]
	return ok
}

// Privacy is the generic visibility level each adapter translates to its own vocabulary.
type Privacy string

const (
	PrivacyPublic  Privacy = "public"
	PrivacyPrivate Privacy = "private"
)

// Normalize maps anything that is not explicitly public to private.
func (p Privacy) Normalize() Privacy {
	if strings.EqualFold(string(p), string(PrivacyPublic)) {
		return PrivacyPublic
	}
	return PrivacyPrivate
}

// UploadStatus is the last known state of one (media, platform) pair.
type UploadStatus string

const (
	StatusPending  UploadStatus = "pending"
	StatusUploaded UploadStatus = "uploaded"
	StatusExists   UploadStatus = "exists"
	StatusFailed   UploadStatus = "failed"
)

// Published reports whether the status means the video is live on the platform.
func (s UploadStatus) Published() bool {
	return s == StatusUploaded || s == StatusExists
}

// AttemptResult tags a history entry or a per-pair outcome.
type AttemptResult string

const (
	ResultUploaded              AttemptResult = "uploaded"
	ResultExists                AttemptResult = "exists"
	ResultFailed                AttemptResult = "failed"
	ResultAuthorizationRequired AttemptResult = "authorization_required"
)

// Status returns the status a recorded attempt leaves behind.
func (r AttemptResult) Status() UploadStatus {
	switch r {
	case ResultUploaded:
		return StatusUploaded
	case ResultExists:
		return StatusExists
	default:
		return StatusFailed
	}
}
