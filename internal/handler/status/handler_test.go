package status

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func serve(t *testing.T, info Info, path string) map[string]any {
	t.Helper()
	r := chi.NewRouter()
	New(info).RegisterRoutes(r)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return body
}

func TestRootReportsS3Deployment(t *testing.T) {
	body := serve(t, Info{Provider: "AWS Bedrock", ModelID: "amazon.nova-lite-v1:0", Storage: "s3", UseS3: true}, "/")

	if body["message"] != "AI Digital Twin API (Powered by AWS Bedrock)" {
		t.Fatalf("unexpected message %v", body["message"])
	}
	if body["memory_enabled"] != true || body["storage"] != "S3" || body["ai_model"] != "amazon.nova-lite-v1:0" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestRootReportsLocalStorage(t *testing.T) {
	body := serve(t, Info{Provider: "AWS Bedrock", ModelID: "m", Storage: "local"}, "/")
	if body["storage"] != "local" {
		t.Fatalf("unexpected storage %v", body["storage"])
	}
}

func TestHealth(t *testing.T) {
	body := serve(t, Info{ModelID: "amazon.nova-lite-v1:0", UseS3: false}, "/health")

	if body["status"] != "healthy" || body["use_s3"] != false || body["bedrock_model"] != "amazon.nova-lite-v1:0" {
		t.Fatalf("unexpected body %v", body)
	}
}
