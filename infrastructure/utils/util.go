package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

func GetCurrentTime() time.Time {
	return time.Now().UTC()
}

// NewID returns a random identifier for new records.
func NewID() string {
	return uuid.NewString()
}

// RandomState returns an unguessable URL-safe token for OAuth state round-trips.
func RandomState() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return strings.ReplaceAll(uuid.NewString(), "-", "") + hex.EncodeToString(b)
}
