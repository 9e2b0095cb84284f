package config

import (
	"path/filepath"
	"reflect"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "CORS_ORIGINS", "USE_S3", "STORAGE_BACKEND", "S3_BUCKET", "S3_ENDPOINT",
		"S3_FORCE_PATH_STYLE", "MEMORY_DIR", "DATABASE_DSN", "AI_PROVIDER", "BEDROCK_MODEL_ID",
		"DEFAULT_AWS_REGION", "ARK_API_KEY", "ARK_ACCESS_KEY", "ARK_SECRET_KEY", "ARK_MODEL",
		"PERSONA_ID", "PERSONA_FILE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if cfg.Server.Addr != ":8000" {
		t.Fatalf("unexpected addr %q", cfg.Server.Addr)
	}
	if !reflect.DeepEqual(cfg.Server.AllowedOrigins, []string{"http://localhost:3000"}) {
		t.Fatalf("unexpected origins %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Storage.Backend != BackendLocal || cfg.Storage.UseS3() {
		t.Fatalf("expected local storage, got %q", cfg.Storage.Backend)
	}
	if cfg.Storage.MemoryDir != "../memory" {
		t.Fatalf("unexpected memory dir %q", cfg.Storage.MemoryDir)
	}
	if cfg.AI.Provider != ProviderBedrock || cfg.AI.ModelID() != "amazon.nova-lite-v1:0" {
		t.Fatalf("unexpected ai config %+v", cfg.AI)
	}
	if !cfg.AI.Enabled() {
		t.Fatal("expected bedrock provider to be enabled by default")
	}
}

func TestLoadUseS3RequiresBucket(t *testing.T) {
	clearEnv(t)
	t.Setenv("USE_S3", "true")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when S3_BUCKET is missing")
	}

	t.Setenv("S3_BUCKET", "twin-memory")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if !cfg.Storage.UseS3() || cfg.Storage.Bucket != "twin-memory" {
		t.Fatalf("unexpected storage config %+v", cfg.Storage)
	}
}

func TestLoadSQLiteDefaultsDSNUnderMemoryDir(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_BACKEND", "SQLite")
	t.Setenv("MEMORY_DIR", "/var/lib/twin")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Storage.Backend != BackendSQLite {
		t.Fatalf("unexpected backend %q", cfg.Storage.Backend)
	}
	if want := filepath.Join("/var/lib/twin", "conversations.db"); cfg.Storage.DatabaseDSN != want {
		t.Fatalf("unexpected dsn %q want %q", cfg.Storage.DatabaseDSN, want)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"STORAGE_BACKEND": "dynamo",
		"USE_S3":          "maybe",
		"AI_PROVIDER":     "oracle",
		"PORT":            "80 80",
	}

	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", key, value)
			}
		})
	}
}

func TestLoadPostgresRequiresDSN(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_BACKEND", "postgres")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_DSN is missing")
	}
}

func TestLoadParsesOriginsAndAddr(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "127.0.0.1:9000")
	t.Setenv("CORS_ORIGINS", "https://twin.example.com, http://localhost:3000 ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Fatalf("unexpected addr %q", cfg.Server.Addr)
	}
	want := []string{"https://twin.example.com", "http://localhost:3000"}
	if !reflect.DeepEqual(cfg.Server.AllowedOrigins, want) {
		t.Fatalf("unexpected origins %v", cfg.Server.AllowedOrigins)
	}
}

func TestArkProviderRequiresCredentials(t *testing.T) {
	clearEnv(t)
	t.Setenv("AI_PROVIDER", "ark")
	t.Setenv("ARK_MODEL", "doubao-pro")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.AI.Enabled() {
		t.Fatal("expected ark provider without key to be disabled")
	}
	if cfg.AI.ModelID() != "doubao-pro" {
		t.Fatalf("unexpected model id %q", cfg.AI.ModelID())
	}

	cfg.AI.APIKey = "secret"
	if !cfg.AI.Enabled() {
		t.Fatal("expected ark provider with key to be enabled")
	}
}
