package conversation

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/zhouzirui/digital-twin/backend/internal/model/chat"
)

// Dialect selects the SQL flavour spoken by SQLStore.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
)

// SQLStore keeps each transcript as one row holding the same JSON document
// the file and object backends write.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

// NewSQLStore wraps an open database handle. Call EnsureSchema before use.
func NewSQLStore(db *sql.DB, dialect Dialect) (*SQLStore, error) {
	switch dialect {
	case DialectSQLite, DialectPostgres, DialectMySQL:
	default:
		return nil, fmt.Errorf("unsupported sql dialect %q", dialect)
	}
	return &SQLStore{db: db, dialect: dialect, now: time.Now}, nil
}

func (s *SQLStore) Name() string { return string(s.dialect) }

// EnsureSchema creates the conversations table when it does not exist.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	var stmt string
	switch s.dialect {
	case DialectMySQL:
		stmt = `CREATE TABLE IF NOT EXISTS conversations (
			session_id VARCHAR(128) NOT NULL PRIMARY KEY,
			payload    LONGTEXT     NOT NULL,
			updated_at BIGINT       NOT NULL
		)`
	case DialectPostgres:
		stmt = `CREATE TABLE IF NOT EXISTS conversations (
			session_id TEXT   PRIMARY KEY,
			payload    TEXT   NOT NULL,
			updated_at BIGINT NOT NULL
		)`
	default:
		stmt = `CREATE TABLE IF NOT EXISTS conversations (
			session_id TEXT    PRIMARY KEY,
			payload    TEXT    NOT NULL,
			updated_at INTEGER NOT NULL
		)`
	}
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return errors.Wrap(err, "create conversations table")
	}
	return nil
}

func (s *SQLStore) Load(ctx context.Context, sessionID string) ([]chat.Message, error) {
	if err := checkSessionID(s.Name(), "load", sessionID); err != nil {
		return nil, err
	}

	query := "SELECT payload FROM conversations WHERE session_id = " + s.placeholder(1)

	var payload string
	if err := s.db.QueryRowContext(ctx, query, sessionID).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []chat.Message{}, nil
		}
		return nil, storageError(s.Name(), "load", sessionID, errors.Wrap(err, "select transcript"))
	}

	messages, err := Decode([]byte(payload))
	if err != nil {
		return nil, storageError(s.Name(), "load", sessionID, err)
	}
	return messages, nil
}

func (s *SQLStore) Save(ctx context.Context, sessionID string, transcript []chat.Message) error {
	if err := checkSessionID(s.Name(), "save", sessionID); err != nil {
		return err
	}

	data, err := Encode(transcript)
	if err != nil {
		return storageError(s.Name(), "save", sessionID, err)
	}

	if _, err := s.db.ExecContext(ctx, s.upsertStatement(), sessionID, string(data), s.now().Unix()); err != nil {
		return storageError(s.Name(), "save", sessionID, errors.Wrap(err, "upsert transcript"))
	}
	return nil
}

func (s *SQLStore) upsertStatement() string {
	if s.dialect == DialectMySQL {
		return `INSERT INTO conversations (session_id, payload, updated_at)
		        VALUES (?, ?, ?)
		        ON DUPLICATE KEY UPDATE payload = VALUES(payload), updated_at = VALUES(updated_at)`
	}
	return fmt.Sprintf(`INSERT INTO conversations (session_id, payload, updated_at)
	        VALUES (%s, %s, %s)
	        ON CONFLICT (session_id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		s.placeholder(1), s.placeholder(2), s.placeholder(3))
}

func (s *SQLStore) placeholder(n int) string {
	if s.dialect == DialectPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}
