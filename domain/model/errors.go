package model

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthorizationRequired signals that the platform needs an interactive login before uploading.
	ErrAuthorizationRequired = errors.New("authorization required")
	ErrMediaNotFound         = errors.New("media item not found")
	ErrEditLocked            = errors.New("media item already published; edits are locked")
)

// ValidationError reports bad input detected before any attempt is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// UploadError reports a failed remote call on one platform.
type UploadError struct {
	Platform Platform
	Reason   string
	Err      error
}

func (e *UploadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s upload failed: %s: %v", e.Platform.Name(), e.Reason, e.Err)
	}
	return fmt.Sprintf("%s upload failed: %s", e.Platform.Name(), e.Reason)
}

func (e *UploadError) Unwrap() error { return e.Err }

// NewUploadError wraps err as an UploadError for platform p.
func NewUploadError(p Platform, reason string, err error) *UploadError {
	return &UploadError{Platform: p, Reason: reason, Err: err}
}

// InvalidStateError rejects an authorization callback that cannot be correlated.
type InvalidStateError struct {
	State  string
	Reason string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid authorization state: %s", e.Reason)
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsInvalidStateError(err error) bool {
	var se *InvalidStateError
	return errors.As(err, &se)
}
