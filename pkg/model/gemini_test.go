package model

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

func newTestGemini(t *testing.T, handler http.HandlerFunc) (*GeminiClient, *logtest.Hook) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return NewGeminiClient(Config{
		Engine:      EngineGemini,
		APIKey:      "test-key",
		BaseURL:     server.URL,
		Model:       "gemini-test",
		Temperature: 0.7,
		Timeout:     5 * time.Second,
		Logger:      logger,
	}), hook
}

func TestGeminiSubmit_OK(t *testing.T) {
	var gotPath, gotKey string
	var gotReq generateRequest
	client, _ := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{
					"content": map[string]any{
						"role":  "model",
						"parts": []map[string]any{{"text": "Ibuprofen is "}, {"text": "a pain reliever."}},
					},
					"finishReason": "STOP",
				},
			},
		})
	})

	before := testutil.ToFloat64(modelRequestsTotal.WithLabelValues("gemini", "success"))
	resp := client.Submit(context.Background(), Prompt{Instruction: "What is ibuprofen?", Directive: "Respond in English."})

	if resp.Status != StatusOK {
		t.Fatalf("expected ok status, got %v (%v)", resp.Status, resp.Err)
	}
	if resp.Body != "Ibuprofen is a pain reliever." {
		t.Errorf("unexpected body %q", resp.Body)
	}
	if gotPath != "/models/gemini-test:generateContent" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("expected api key header, got %q", gotKey)
	}
	if len(gotReq.Contents) != 1 || !strings.Contains(gotReq.Contents[0].Parts[0].Text, "Respond in English.") {
		t.Errorf("prompt not sent as single user content: %+v", gotReq.Contents)
	}
	if gotReq.GenerationConfig.Temperature != 0.7 {
		t.Errorf("expected temperature 0.7, got %v", gotReq.GenerationConfig.Temperature)
	}
	after := testutil.ToFloat64(modelRequestsTotal.WithLabelValues("gemini", "success"))
	if after-before != 1 {
		t.Errorf("expected success counter to increase by 1, got %v", after-before)
	}
}

func TestGeminiSubmit_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		apiStatus string
		wantKind  Kind
		wantErr   error
	}{
		{"quota", http.StatusTooManyRequests, "RESOURCE_EXHAUSTED", KindQuota, ErrModelQuota},
		{"auth", http.StatusForbidden, "PERMISSION_DENIED", KindAuth, ErrModelAuth},
		{"server", http.StatusServiceUnavailable, "UNAVAILABLE", KindUnavailable, ErrModelUnavailable},
		{"bad request", http.StatusBadRequest, "INVALID_ARGUMENT", KindRejected, ErrModelRejected},
		{"not found", http.StatusNotFound, "NOT_FOUND", KindRejected, ErrModelRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, hook := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{"code": tt.status, "message": "internal detail", "status": tt.apiStatus},
				})
			})

			resp := client.Submit(context.Background(), Prompt{Instruction: "q"})
			if resp.Status != StatusError || resp.Err == nil {
				t.Fatalf("expected error response, got %+v", resp)
			}
			if resp.Err.Kind != tt.wantKind {
				t.Errorf("expected kind %v, got %v", tt.wantKind, resp.Err.Kind)
			}
			if !errors.Is(resp.Err, tt.wantErr) {
				t.Errorf("expected errors.Is(%v), got %v", tt.wantErr, resp.Err)
			}
			if !strings.Contains(resp.Err.Detail, "internal detail") {
				t.Errorf("expected detail to keep the API message, got %q", resp.Err.Detail)
			}
			if hook.LastEntry() == nil || hook.LastEntry().Level != logrus.ErrorLevel {
				t.Errorf("expected an error log entry")
			}
		})
	}
}

func TestGeminiSubmit_InvalidAPIKey(t *testing.T) {
	const envelope = `{
  "error": {
    "code": 400,
    "message": "API key not valid. Please pass a valid API key.",
    "status": "INVALID_ARGUMENT",
    "details": [
      {
        "@type": "type.googleapis.com/google.rpc.ErrorInfo",
        "reason": "API_KEY_INVALID",
        "domain": "googleapis.com",
        "metadata": {"service": "generativelanguage.googleapis.com"}
      }
    ]
  }
}`
	client, _ := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(envelope))
	})

	resp := client.Submit(context.Background(), Prompt{Instruction: "q"})
	if !errors.Is(resp.Err, ErrModelAuth) {
		t.Fatalf("expected auth error, got %+v", resp.Err)
	}
	if !strings.Contains(resp.Err.Detail, "API key not valid") {
		t.Errorf("expected detail to keep the API message, got %q", resp.Err.Detail)
	}

	if err := client.CheckHealth(context.Background()); !errors.Is(err, ErrModelAuth) {
		t.Errorf("expected health check auth error, got %v", err)
	}
}

func TestGeminiErrorKind(t *testing.T) {
	tests := []struct {
		name string
		code int
		body string
		want Kind
	}{
		{"key reason", 400, `{"error":{"status":"INVALID_ARGUMENT","details":[{"reason":"API_KEY_INVALID"}]}}`, KindAuth},
		{"expired key", 400, `{"error":{"status":"INVALID_ARGUMENT","details":[{"reason":"API_KEY_EXPIRED"}]}}`, KindAuth},
		{"key message only", 400, `{"error":{"message":"API key not valid.","status":"INVALID_ARGUMENT"}}`, KindAuth},
		{"bad argument", 400, `{"error":{"message":"Invalid JSON payload.","status":"INVALID_ARGUMENT"}}`, KindRejected},
		{"not json", 502, `<html>bad gateway</html>`, KindUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var apiErr geminiErrorResponse
			_ = json.Unmarshal([]byte(tt.body), &apiErr)
			if got := apiErr.kind(tt.code); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGeminiSubmit_LargeErrorBody(t *testing.T) {
	client, _ := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(strings.Repeat("x", 1<<20)))
	})

	resp := client.Submit(context.Background(), Prompt{Instruction: "q"})
	if !errors.Is(resp.Err, ErrModelUnavailable) {
		t.Fatalf("expected unavailable, got %+v", resp.Err)
	}
	if len(resp.Err.Detail) > 600 {
		t.Errorf("expected truncated detail, got %d bytes", len(resp.Err.Detail))
	}
}

func TestGeminiSubmit_PromptTemperature(t *testing.T) {
	var gotReq generateRequest
	client, _ := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"hola"}]}}]}`))
	})

	temp := float32(0.1)
	client.Submit(context.Background(), Prompt{Instruction: "q", Temperature: &temp})
	if gotReq.GenerationConfig.Temperature != 0.1 {
		t.Errorf("expected prompt temperature 0.1, got %v", gotReq.GenerationConfig.Temperature)
	}
}

func TestGeminiSubmit_Blocked(t *testing.T) {
	client, _ := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"promptFeedback": map[string]any{"blockReason": "SAFETY"},
		})
	})

	resp := client.Submit(context.Background(), Prompt{Instruction: "q"})
	if resp.Status != StatusError || !errors.Is(resp.Err, ErrModelRejected) {
		t.Fatalf("expected rejected error, got %+v", resp)
	}
}

func TestGeminiSubmit_NoCandidatesIsEmptyOK(t *testing.T) {
	client, _ := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	})

	resp := client.Submit(context.Background(), Prompt{Instruction: "q"})
	if resp.Status != StatusOK || resp.Body != "" {
		t.Fatalf("expected empty ok response, got %+v", resp)
	}
}

func TestGeminiSubmit_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	logger, _ := logtest.NewNullLogger()
	client := NewGeminiClient(Config{APIKey: "k", BaseURL: url, Logger: logger, Timeout: time.Second})

	resp := client.Submit(context.Background(), Prompt{Instruction: "q"})
	if !errors.Is(resp.Err, ErrModelUnavailable) {
		t.Fatalf("expected unavailable, got %+v", resp)
	}
}

func TestGeminiSubmit_MissingKey(t *testing.T) {
	called := false
	client, _ := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	client.apiKey = ""

	resp := client.Submit(context.Background(), Prompt{Instruction: "q"})
	if !errors.Is(resp.Err, ErrModelAuth) {
		t.Fatalf("expected auth error, got %+v", resp)
	}
	if called {
		t.Error("expected no request without an api key")
	}
}

func TestGeminiCheckHealth(t *testing.T) {
	client, _ := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/models/gemini-test" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"name":"models/gemini-test"}`))
	})

	if err := client.CheckHealth(context.Background()); err != nil {
		t.Fatalf("expected healthy, got %v", err)
	}

	client.model = "missing"
	if err := client.CheckHealth(context.Background()); !errors.Is(err, ErrModelRejected) {
		t.Fatalf("expected rejected for unknown model, got %v", err)
	}
}
