package conversation

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/zhouzirui/digital-twin/backend/internal/model/chat"
)

// LocalStore keeps one JSON file per session under a base directory.
type LocalStore struct {
	dir string
}

// NewLocalStore does not touch the filesystem; the directory is created on
// the first save.
func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir}
}

func (s *LocalStore) Name() string { return "local" }

// Dir returns the base directory.
func (s *LocalStore) Dir() string { return s.dir }

func (s *LocalStore) path(sessionID string) string {
	return filepath.Join(s.dir, Key(sessionID))
}

func (s *LocalStore) Load(_ context.Context, sessionID string) ([]chat.Message, error) {
	if err := checkSessionID(s.Name(), "load", sessionID); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(sessionID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []chat.Message{}, nil
		}
		return nil, storageError(s.Name(), "load", sessionID, errors.Wrap(err, "read transcript"))
	}

	messages, err := Decode(data)
	if err != nil {
		return nil, storageError(s.Name(), "load", sessionID, err)
	}
	return messages, nil
}

func (s *LocalStore) Save(_ context.Context, sessionID string, transcript []chat.Message) error {
	if err := checkSessionID(s.Name(), "save", sessionID); err != nil {
		return err
	}

	data, err := Encode(transcript)
	if err != nil {
		return storageError(s.Name(), "save", sessionID, err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return storageError(s.Name(), "save", sessionID, errors.Wrapf(err, "create directory %s", s.dir))
	}
	if err := os.WriteFile(s.path(sessionID), data, 0o644); err != nil {
		return storageError(s.Name(), "save", sessionID, errors.Wrap(err, "write transcript"))
	}
	return nil
}
