package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/zhouzirui/digital-twin/backend/internal/config"
	"github.com/zhouzirui/digital-twin/backend/internal/model/persona"
	"github.com/zhouzirui/digital-twin/backend/internal/service/ai"
	"github.com/zhouzirui/digital-twin/backend/internal/service/chat"
	"github.com/zhouzirui/digital-twin/backend/internal/storage/conversation"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "twinctl",
		Short:        "Inspect and exercise digital twin conversations",
		SilenceUsage: true,
	}
	root.AddCommand(newShowCommand(), newChatCommand())
	return root
}

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Print the stored transcript of a session as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withChatService(cmd.Context(), false, func(svc *chat.Service) error {
				messages, err := svc.Transcript(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), messages)
			})
		},
	}
}

func newChatCommand() *cobra.Command {
	var (
		sessionID string
		message   string
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Run one chat turn through the configured model and store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			return withChatService(ctx, true, func(svc *chat.Service) error {
				reply, err := svc.Chat(ctx, sessionID, message)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), reply)
			})
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "session id, generated when empty")
	cmd.Flags().StringVar(&message, "message", "", "user message")
	cmd.Flags().DurationVar(&timeout, "timeout", 60*time.Second, "request timeout")
	_ = cmd.MarkFlagRequired("message")
	return cmd
}

// withChatService builds the same store and gateway wiring as the API server.
// The model is only initialized when needModel is set.
func withChatService(ctx context.Context, needModel bool, fn func(*chat.Service) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, closeStore, err := conversation.Open(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("open conversation store: %w", err)
	}
	defer closeStore()

	var gateway chat.Gateway = unavailableGateway{}
	if needModel {
		twin, err := persona.Resolve(cfg.AI.PersonaFile, cfg.AI.PersonaID)
		if err != nil {
			return fmt.Errorf("load persona: %w", err)
		}
		chatModel, err := cfg.AI.NewChatModel(ctx)
		if err != nil {
			return fmt.Errorf("init model: %w", err)
		}
		svc, err := ai.NewService(chatModel, ai.Config{
			ProviderName: ai.ProviderDisplayName(cfg.AI.Provider),
			Persona:      twin,
		})
		if err != nil {
			return err
		}
		gateway = svc
	}

	return fn(chat.NewService(store, gateway))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
