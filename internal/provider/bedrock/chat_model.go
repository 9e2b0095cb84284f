// Package bedrock adapts the AWS Bedrock Converse API to the eino chat model
// interface so the gateway can drive it like any other provider.
package bedrock

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// SystemPrefix marks instructions that Bedrock receives as a user turn.
const SystemPrefix = "System: "

// ErrEmptyReply is returned when the model answered without any text block.
var ErrEmptyReply = errors.New("bedrock reply contained no text")

// ConverseAPI is the subset of the Bedrock runtime client used here.
type ConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// ChatModel calls Converse with a fixed model identifier.
type ChatModel struct {
	client  ConverseAPI
	modelID string
}

var _ model.BaseChatModel = (*ChatModel)(nil)

// NewChatModel binds a Converse client to one model.
func NewChatModel(client ConverseAPI, modelID string) (*ChatModel, error) {
	if client == nil {
		return nil, errors.New("bedrock client is required")
	}
	if modelID == "" {
		return nil, errors.New("bedrock model id is required")
	}
	return &ChatModel{client: client, modelID: modelID}, nil
}

// Generate sends the whole window in one Converse call and returns the first
// text segment of the reply.
func (m *ChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	options := model.GetCommonOptions(&model.Options{Model: &m.modelID}, opts...)

	messages, err := toConverseMessages(input)
	if err != nil {
		return nil, err
	}

	out, err := m.client.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId:         options.Model,
		Messages:        messages,
		InferenceConfig: inferenceConfig(options),
	})
	if err != nil {
		return nil, fmt.Errorf("bedrock converse: %w", err)
	}

	text, err := firstText(out)
	if err != nil {
		return nil, err
	}
	return schema.AssistantMessage(text, nil), nil
}

// Stream is served from a single Converse call; the reader yields one chunk.
func (m *ChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func toConverseMessages(input []*schema.Message) ([]types.Message, error) {
	messages := make([]types.Message, 0, len(input))
	for _, msg := range input {
		if msg == nil {
			continue
		}

		var role types.ConversationRole
		text := msg.Content
		switch msg.Role {
		case schema.System:
			role = types.ConversationRoleUser
			text = SystemPrefix + msg.Content
		case schema.User:
			role = types.ConversationRoleUser
		case schema.Assistant:
			role = types.ConversationRoleAssistant
		default:
			return nil, fmt.Errorf("unsupported message role %q", msg.Role)
		}

		messages = append(messages, types.Message{
			Role:    role,
			Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: text}},
		})
	}
	return messages, nil
}

func inferenceConfig(options *model.Options) *types.InferenceConfiguration {
	cfg := &types.InferenceConfiguration{}
	if options.MaxTokens != nil {
		cfg.MaxTokens = aws.Int32(int32(*options.MaxTokens))
	}
	if options.Temperature != nil {
		cfg.Temperature = aws.Float32(*options.Temperature)
	}
	if options.TopP != nil {
		cfg.TopP = aws.Float32(*options.TopP)
	}
	if len(options.Stop) > 0 {
		cfg.StopSequences = options.Stop
	}
	return cfg
}

func firstText(out *bedrockruntime.ConverseOutput) (string, error) {
	if out == nil {
		return "", ErrEmptyReply
	}
	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return "", ErrEmptyReply
	}
	for _, block := range msg.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			return text.Value, nil
		}
	}
	return "", ErrEmptyReply
}
