package status

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/digital-twin/backend/pkg/utils"
)

// Info describes the running deployment.
type Info struct {
	// Provider is the display name of the inference provider, e.g. "AWS Bedrock".
	Provider string
	ModelID  string
	// Storage is the conversation backend name.
	Storage string
	UseS3   bool
}

// Handler 服务状态的HTTP处理器
type Handler struct {
	info Info
}

// New 创建状态处理器
func New(info Info) *Handler {
	return &Handler{info: info}
}

// RegisterRoutes 注册状态相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleRoot)
	r.Get("/health", h.handleHealth)
}

type rootResponse struct {
	Message       string `json:"message"`
	MemoryEnabled bool   `json:"memory_enabled"`
	Storage       string `json:"storage"`
	AIModel       string `json:"ai_model"`
}

type healthResponse struct {
	Status       string `json:"status"`
	UseS3        bool   `json:"use_s3"`
	BedrockModel string `json:"bedrock_model"`
}

func (h *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	storage := h.info.Storage
	if h.info.UseS3 {
		storage = "S3"
	}
	utils.RespondJSON(w, http.StatusOK, rootResponse{
		Message:       fmt.Sprintf("AI Digital Twin API (Powered by %s)", h.info.Provider),
		MemoryEnabled: true,
		Storage:       storage,
		AIModel:       h.info.ModelID,
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, healthResponse{
		Status:       "healthy",
		UseS3:        h.info.UseS3,
		BedrockModel: h.info.ModelID,
	})
}
