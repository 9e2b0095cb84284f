package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"

	"github.com/zhouzirui/digital-twin/backend/internal/provider/bedrock"
)

// Storage backends accepted by STORAGE_BACKEND.
const (
	BackendLocal    = "local"
	BackendS3       = "s3"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMySQL    = "mysql"
	BackendMemory   = "memory"
)

// Inference providers accepted by AI_PROVIDER.
const (
	ProviderBedrock = "bedrock"
	ProviderArk     = "ark"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	AI      AIConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	storage, err := loadStorageConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Storage: storage, AI: ai}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

// loadServerConfig 解析服务器监听地址与跨域白名单。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8000"
	}

	origins := parseListEnv("CORS_ORIGINS", []string{"http://localhost:3000"})

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8000" 或 "127.0.0.1:8000"。
		return ServerConfig{Addr: port, AllowedOrigins: origins}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port, AllowedOrigins: origins}, nil
}

// StorageConfig 描述会话记录的持久化后端。
type StorageConfig struct {
	Backend           string
	MemoryDir         string
	Bucket            string
	Region            string
	S3Endpoint        string
	S3ForcePathStyle  bool
	S3AccessKeyID     string
	S3SecretAccessKey string
	DatabaseDSN       string
}

// UseS3 reports whether transcripts live in an object-storage bucket.
func (c StorageConfig) UseS3() bool {
	return c.Backend == BackendS3
}

func loadStorageConfig() (StorageConfig, error) {
	useS3, err := parseBoolEnv("USE_S3", false)
	if err != nil {
		return StorageConfig{}, err
	}

	pathStyle, err := parseBoolEnv("S3_FORCE_PATH_STYLE", false)
	if err != nil {
		return StorageConfig{}, err
	}

	backend := strings.ToLower(strings.TrimSpace(os.Getenv("STORAGE_BACKEND")))
	if backend == "" {
		backend = BackendLocal
		if useS3 {
			backend = BackendS3
		}
	}

	cfg := StorageConfig{
		Backend:           backend,
		MemoryDir:         getEnvOrDefault("MEMORY_DIR", "../memory"),
		Bucket:            strings.TrimSpace(os.Getenv("S3_BUCKET")),
		Region:            getEnvOrDefault("DEFAULT_AWS_REGION", "us-east-1"),
		S3Endpoint:        strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
		S3ForcePathStyle:  pathStyle,
		S3AccessKeyID:     strings.TrimSpace(os.Getenv("S3_ACCESS_KEY_ID")),
		S3SecretAccessKey: strings.TrimSpace(os.Getenv("S3_SECRET_ACCESS_KEY")),
		DatabaseDSN:       strings.TrimSpace(os.Getenv("DATABASE_DSN")),
	}

	switch backend {
	case BackendLocal, BackendMemory:
	case BackendS3:
		if cfg.Bucket == "" {
			return StorageConfig{}, fmt.Errorf("S3_BUCKET is required when storage backend is %s", BackendS3)
		}
	case BackendSQLite:
		if cfg.DatabaseDSN == "" {
			cfg.DatabaseDSN = filepath.Join(cfg.MemoryDir, "conversations.db")
		}
	case BackendPostgres, BackendMySQL:
		if cfg.DatabaseDSN == "" {
			return StorageConfig{}, fmt.Errorf("DATABASE_DSN is required when storage backend is %s", backend)
		}
	default:
		return StorageConfig{}, fmt.Errorf("invalid STORAGE_BACKEND value %q", backend)
	}

	return cfg, nil
}

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	Provider       string
	BedrockModelID string
	Region         string
	APIKey         string
	AccessKey      string
	SecretKey      string
	Model          string
	BaseURL        string
	ArkRegion      string
	PersonaID      string
	PersonaFile    string
}

// ModelID 返回当前提供方使用的模型标识。
func (c AIConfig) ModelID() string {
	if c.Provider == ProviderArk {
		return c.Model
	}
	return c.BedrockModelID
}

// Enabled 表示是否提供了必需的模型配置。
func (c AIConfig) Enabled() bool {
	switch c.Provider {
	case ProviderArk:
		return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
	case ProviderBedrock:
		return c.BedrockModelID != ""
	default:
		return false
	}
}

// NewChatModel 使用配置创建一个模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.BaseChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("model configuration incomplete for provider %q", c.Provider)
	}

	if c.Provider == ProviderArk {
		return ark.NewChatModel(ctx, &ark.ChatModelConfig{
			BaseURL:   c.BaseURL,
			Region:    c.ArkRegion,
			APIKey:    c.APIKey,
			AccessKey: c.AccessKey,
			SecretKey: c.SecretKey,
			Model:     c.Model,
		})
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(c.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return bedrock.NewChatModel(bedrockruntime.NewFromConfig(awsCfg), c.BedrockModelID)
}

func loadAIConfig() (AIConfig, error) {
	provider := strings.ToLower(getEnvOrDefault("AI_PROVIDER", ProviderBedrock))
	if provider != ProviderBedrock && provider != ProviderArk {
		return AIConfig{}, fmt.Errorf("invalid AI_PROVIDER value %q", provider)
	}

	return AIConfig{
		Provider:       provider,
		BedrockModelID: getEnvOrDefault("BEDROCK_MODEL_ID", "amazon.nova-lite-v1:0"),
		Region:         getEnvOrDefault("DEFAULT_AWS_REGION", "us-east-1"),
		APIKey:         strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:      strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:      strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:          strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:        getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		ArkRegion:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		PersonaID:      getEnvOrDefault("PERSONA_ID", "twin"),
		PersonaFile:    strings.TrimSpace(os.Getenv("PERSONA_FILE")),
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseListEnv(key string, defaultValue []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}

	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
