package chat

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/digital-twin/backend/internal/model/chat"
	"github.com/zhouzirui/digital-twin/backend/internal/service/ai"
	chatService "github.com/zhouzirui/digital-twin/backend/internal/service/chat"
	"github.com/zhouzirui/digital-twin/backend/internal/storage/conversation"
	"github.com/zhouzirui/digital-twin/backend/pkg/utils"
)

// Handler 聊天服务的HTTP处理器
type Handler struct {
	chatSvc *chatService.Service
}

// New 创建聊天处理器
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Get("/conversation/{sessionID}", h.handleConversation)
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

type conversationResponse struct {
	SessionID string         `json:"session_id"`
	Messages  []chat.Message `json:"messages"`
}

// handleChat 处理一轮对话
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := h.chatSvc.Chat(r.Context(), payload.SessionID, payload.Message)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, reply)
}

// handleConversation 返回会话的完整记录
func (h *Handler) handleConversation(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	messages, err := h.chatSvc.Transcript(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, conversationResponse{SessionID: sessionID, Messages: messages})
}

func respondServiceError(w http.ResponseWriter, err error) {
	var gwErr *ai.GatewayError
	var storeErr *conversation.StorageError

	switch {
	case errors.Is(err, chatService.ErrMessageRequired), errors.Is(err, chatService.ErrInvalidSessionID):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &gwErr):
		utils.RespondError(w, gatewayStatus(gwErr.Kind), gwErr.Message)
	case errors.As(err, &storeErr):
		log.Printf("[chat] storage failure: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "conversation storage error")
	default:
		log.Printf("[chat] unhandled error: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func gatewayStatus(kind ai.ErrorKind) int {
	switch kind {
	case ai.KindInvalidRequest:
		return http.StatusBadRequest
	case ai.KindAccessDenied:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
