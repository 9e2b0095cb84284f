package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/digital-twin/backend/internal/handler/chat"
	"github.com/zhouzirui/digital-twin/backend/internal/handler/status"
	middlewarePkg "github.com/zhouzirui/digital-twin/backend/internal/middleware"
	chatService "github.com/zhouzirui/digital-twin/backend/internal/service/chat"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(allowedOrigins []string, info status.Info, chatSvc *chatService.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(allowedOrigins))

	status.New(info).RegisterRoutes(r)
	chat.New(chatSvc).RegisterRoutes(r)

	return r
}
