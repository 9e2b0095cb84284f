package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/digital-twin/backend/internal/config"
	"github.com/zhouzirui/digital-twin/backend/internal/handler"
	"github.com/zhouzirui/digital-twin/backend/internal/handler/status"
	"github.com/zhouzirui/digital-twin/backend/internal/model/persona"
	"github.com/zhouzirui/digital-twin/backend/internal/service/ai"
	"github.com/zhouzirui/digital-twin/backend/internal/service/chat"
	"github.com/zhouzirui/digital-twin/backend/internal/storage/conversation"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	store, closeStore, err := conversation.Open(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("failed to open conversation store: %v", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Printf("warning: failed to close conversation store: %v", err)
		}
	}()
	log.Printf("conversation store: %s", store.Name())

	twin, err := persona.Resolve(cfg.AI.PersonaFile, cfg.AI.PersonaID)
	if err != nil {
		log.Fatalf("failed to load persona: %v", err)
	}

	chatModel, err := cfg.AI.NewChatModel(ctx)
	if err != nil {
		log.Fatalf("failed to initialize %s model: %v", cfg.AI.Provider, err)
	}

	aiService, err := ai.NewService(chatModel, ai.Config{
		ProviderName: ai.ProviderDisplayName(cfg.AI.Provider),
		Persona:      twin,
	})
	if err != nil {
		log.Fatalf("failed to initialize AI service: %v", err)
	}
	log.Printf("AI service initialized: provider=%s model=%s persona=%s", cfg.AI.Provider, cfg.AI.ModelID(), twin.ID)

	chatService := chat.NewService(store, aiService)

	info := status.Info{
		Provider: poweredBy(cfg.AI.Provider),
		ModelID:  cfg.AI.ModelID(),
		Storage:  store.Name(),
		UseS3:    cfg.Storage.UseS3(),
	}
	router := handler.NewRouter(cfg.Server.AllowedOrigins, info, chatService)

	startServer(ctx, cfg.Server, router)
}

func poweredBy(provider string) string {
	if provider == config.ProviderArk {
		return "Volcengine Ark"
	}
	return "AWS Bedrock"
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Digital Twin backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Printf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
