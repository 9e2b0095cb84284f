package chat

import (
	"errors"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// MaxSessionIDLength bounds caller-supplied identifiers.
const MaxSessionIDLength = 128

// ErrInvalidSessionID is returned for identifiers that cannot be used as a
// storage key.
var ErrInvalidSessionID = errors.New("invalid session id")

// NewSessionID issues a fresh random identifier for an anonymous conversation.
func NewSessionID() string {
	return uuid.NewString()
}

// ValidateSessionID rejects identifiers that would escape a storage directory
// or produce an unusable object key.
func ValidateSessionID(id string) error {
	if id == "" || len(id) > MaxSessionIDLength {
		return ErrInvalidSessionID
	}
	if strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return ErrInvalidSessionID
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return ErrInvalidSessionID
		}
	}
	return nil
}
