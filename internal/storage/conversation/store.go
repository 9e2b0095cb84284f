// Package conversation persists per-session transcripts. Every backend uses
// the same key derivation and the same JSON document so that deployments can
// move between them without converting data.
package conversation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	"github.com/zhouzirui/digital-twin/backend/internal/model/chat"
)

// Store loads and replaces whole transcripts keyed by session id.
//
// Load never reports a missing session as an error; it returns an empty
// transcript instead. Save overwrites whatever was stored before.
type Store interface {
	Name() string
	Load(ctx context.Context, sessionID string) ([]chat.Message, error)
	Save(ctx context.Context, sessionID string, transcript []chat.Message) error
}

// StorageError wraps any backend failure other than "not found".
type StorageError struct {
	Backend   string
	Op        string
	SessionID string
	Err       error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s session %q: %v", e.Backend, e.Op, e.SessionID, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageError(backend, op, sessionID string, err error) error {
	return &StorageError{Backend: backend, Op: op, SessionID: sessionID, Err: err}
}

// checkSessionID rejects ids that cannot be used as a file name or object key.
func checkSessionID(backend, op, sessionID string) error {
	if err := chat.ValidateSessionID(sessionID); err != nil {
		return storageError(backend, op, sessionID, err)
	}
	return nil
}

// Key derives the file name or object key for a session.
func Key(sessionID string) string {
	return sessionID + ".json"
}

// Encode renders a transcript as an indented JSON array.
func Encode(transcript []chat.Message) ([]byte, error) {
	if transcript == nil {
		transcript = []chat.Message{}
	}
	data, err := json.MarshalIndent(transcript, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encode transcript")
	}
	return data, nil
}

// Decode parses a stored document. A JSON null decodes to an empty transcript.
func Decode(data []byte) ([]chat.Message, error) {
	var messages []chat.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, errors.Wrap(err, "decode transcript")
	}
	if messages == nil {
		messages = []chat.Message{}
	}
	return messages, nil
}
