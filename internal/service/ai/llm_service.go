package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/digital-twin/backend/internal/model/chat"
	"github.com/zhouzirui/digital-twin/backend/internal/model/persona"
)

// Inference policy. These are fixed for every request.
const (
	HistoryLimit         = 20
	MaxTokens            = 2000
	Temperature  float32 = 0.7
	TopP         float32 = 0.9
)

// Config describes the gateway's collaborators.
type Config struct {
	// ProviderName is shown in error messages, e.g. "Bedrock".
	ProviderName string
	Persona      persona.Persona
}

// Service is the gateway between stored transcripts and the inference
// endpoint.
type Service struct {
	chatModel model.BaseChatModel
	template  prompt.ChatTemplate
	prompts   *PromptManager
	persona   persona.Persona
	provider  string
	now       func() time.Time
}

// NewService creates a new gateway over chatModel.
func NewService(chatModel model.BaseChatModel, cfg Config) (*Service, error) {
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}

	provider := cfg.ProviderName
	if provider == "" {
		provider = "model provider"
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	return &Service{
		chatModel: chatModel,
		template:  promptTemplate,
		prompts:   NewPersonaPromptManager(),
		persona:   cfg.Persona,
		provider:  provider,
		now:       time.Now,
	}, nil
}

// ProviderDisplayName turns a configured provider key into the name used in
// user-facing messages.
func ProviderDisplayName(provider string) string {
	switch provider {
	case "bedrock":
		return "Bedrock"
	case "ark":
		return "Ark"
	default:
		return provider
	}
}

// Invoke sends the windowed transcript plus userMessage upstream and returns
// the reply text. Every error it returns is a *GatewayError.
func (s *Service) Invoke(ctx context.Context, transcript []chat.Message, userMessage string) (string, error) {
	messages, err := s.BuildWindow(ctx, transcript, userMessage)
	if err != nil {
		return "", &GatewayError{
			Kind:    KindUpstream,
			Message: fmt.Sprintf("%s error: failed to build prompt: %v", s.provider, err),
			Err:     err,
		}
	}

	response, err := s.chatModel.Generate(ctx, messages,
		model.WithMaxTokens(MaxTokens),
		model.WithTemperature(Temperature),
		model.WithTopP(TopP),
	)
	if err != nil {
		gwErr := classify(s.provider, err)
		log.Printf("[ai] invoke failed kind=%s: %v", gwErr.Kind, err)
		return "", gwErr
	}
	if response == nil {
		return "", &GatewayError{Kind: KindUpstream, Message: fmt.Sprintf("%s error: empty response", s.provider)}
	}

	log.Printf("[ai] generated response window=%d length=%d", len(messages), len(response.Content))
	return response.Content, nil
}

// BuildWindow lays out the outbound request: the system instructions, at most
// the last HistoryLimit transcript messages, then the new user message.
func (s *Service) BuildWindow(ctx context.Context, transcript []chat.Message, userMessage string) ([]*schema.Message, error) {
	return s.template.Format(ctx, map[string]any{
		"system":  s.prompts.BuildSystemPrompt(s.persona, s.now()),
		"history": buildHistoryMessages(transcript),
		"query":   userMessage,
	})
}

func buildHistoryMessages(messages []chat.Message) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > HistoryLimit {
		startIdx = len(messages) - HistoryLimit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(msg.Content))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}

	return history
}
