package chat

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/zhouzirui/digital-twin/backend/internal/model/chat"
	"github.com/zhouzirui/digital-twin/backend/internal/storage/conversation"
)

var (
	ErrMessageRequired  = errors.New("message is required")
	ErrInvalidSessionID = chat.ErrInvalidSessionID
)

// Gateway produces the twin's reply for a transcript plus a new user message.
type Gateway interface {
	Invoke(ctx context.Context, transcript []chat.Message, userMessage string) (string, error)
}

// Reply is the result of one chat turn.
type Reply struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

// Service runs chat turns against a conversation store and a gateway.
//
// Turns on the same session are not serialized: two concurrent turns both
// load the same transcript and the later save wins.
type Service struct {
	store   conversation.Store
	gateway Gateway
	now     func() time.Time
	newID   func() string
}

// NewService wires the chat service.
func NewService(store conversation.Store, gateway Gateway) *Service {
	return &Service{
		store:   store,
		gateway: gateway,
		now:     time.Now,
		newID:   chat.NewSessionID,
	}
}

// Chat appends one user/assistant exchange to the session transcript. An
// empty sessionID starts a new session. Nothing is saved when the gateway
// fails.
func (s *Service) Chat(ctx context.Context, sessionID, message string) (Reply, error) {
	if strings.TrimSpace(message) == "" {
		return Reply{}, ErrMessageRequired
	}
	if sessionID == "" {
		sessionID = s.newID()
	} else if err := chat.ValidateSessionID(sessionID); err != nil {
		return Reply{}, err
	}

	transcript, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return Reply{}, err
	}

	response, err := s.gateway.Invoke(ctx, transcript, message)
	if err != nil {
		return Reply{}, err
	}

	transcript = append(transcript,
		chat.NewMessage(chat.RoleUser, message, s.now()),
		chat.NewMessage(chat.RoleAssistant, response, s.now()),
	)
	if err := s.store.Save(ctx, sessionID, transcript); err != nil {
		return Reply{}, err
	}

	log.Printf("[chat] session=%s messages=%d backend=%s", sessionID, len(transcript), s.store.Name())
	return Reply{Response: response, SessionID: sessionID}, nil
}

// Transcript returns the stored messages for a session. Unknown sessions
// yield an empty transcript.
func (s *Service) Transcript(ctx context.Context, sessionID string) ([]chat.Message, error) {
	if err := chat.ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	messages, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []chat.Message{}
	}
	return messages, nil
}
