package util

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

// NewID returns a prefixed random hex ID for top-level rows (schools, users).
func NewID(prefix string) string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)
	if prefix == "" {
		return hex.EncodeToString(bytes)
	}
	return prefix + "_" + hex.EncodeToString(bytes)
}

// NewEntityID returns a bare UUID for content entities embedded inside page
// documents (staff, alumni, gallery items, announcements, achievements,
// milestones). Legacy entries without one get a deterministic positional ID
// during normalization instead.
func NewEntityID() string {
	return uuid.NewString()
}
