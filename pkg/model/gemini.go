package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultGeminiURL is the base URL of the Gemini REST API.
	DefaultGeminiURL = "https://generativelanguage.googleapis.com/v1beta"
)

// GeminiClient implements the Client interface against the native Gemini
// generateContent endpoint.
type GeminiClient struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float32
	httpClient  *http.Client
	logger      *logrus.Logger
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(cfg Config) *GeminiClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultGeminiURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.New()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	modelName := cfg.Model
	if modelName == "" {
		modelName = DefaultModel
	}

	return &GeminiClient{
		baseURL:     baseURL,
		apiKey:      cfg.APIKey,
		model:       modelName,
		temperature: cfg.Temperature,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature float32 `json:"temperature"`
}

// generateRequest represents a generateContent API request.
type generateRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

// generateResponse represents a generateContent API response.
type generateResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// geminiErrorResponse is the error envelope of Google APIs.
type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Details []struct {
			Reason string `json:"reason"`
		} `json:"details"`
	} `json:"error"`
}

// kind classifies the error. Gemini reports a bad key as 400
// INVALID_ARGUMENT with reason API_KEY_INVALID.
func (e *geminiErrorResponse) kind(code int) Kind {
	for _, d := range e.Error.Details {
		if strings.HasPrefix(d.Reason, "API_KEY_") {
			return KindAuth
		}
	}
	if code == http.StatusBadRequest && KindForMessage(e.Error.Message) == KindAuth {
		return KindAuth
	}
	return KindForStatus(code, e.Error.Status)
}

// readGeminiError decodes a non-OK response body.
func readGeminiError(resp *http.Response) (Kind, string, string) {
	bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var apiErr geminiErrorResponse
	_ = json.Unmarshal(bodyBytes, &apiErr)
	detail := apiErr.Error.Message
	if detail == "" {
		detail = string(bodyBytes)
	}
	return apiErr.kind(resp.StatusCode), apiErr.Error.Status, detail
}

// Submit sends the prompt to generateContent and classifies the outcome.
func (c *GeminiClient) Submit(ctx context.Context, p Prompt) Response {
	text := p.Text()
	startTime := time.Now()
	resp := c.submit(ctx, p, text)
	recordRequest(EngineGemini, time.Since(startTime), len(text), resp)
	return resp
}

func (c *GeminiClient) submit(ctx context.Context, p Prompt, text string) Response {
	if c.apiKey == "" {
		c.logger.Error("Gemini API key is empty")
		return Failed(KindAuth, "gemini api key is empty")
	}

	c.logger.WithFields(logrus.Fields{
		"model":         c.model,
		"prompt_length": len(text),
	}).Debug("Submitting prompt to Gemini")

	reqPayload := generateRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: text}}},
		},
		GenerationConfig: geminiGenerationConfig{Temperature: p.TemperatureOr(c.temperature)},
	}

	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(&reqPayload); err != nil {
		c.logger.WithError(err).Error("Failed to encode generate request")
		return Failed(KindRejected, fmt.Sprintf("encode request: %v", err))
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, buf)
	if err != nil {
		c.logger.WithError(err).Error("Failed to create generate request")
		return Failed(KindUnavailable, fmt.Sprintf("create request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"model": c.model,
		}).Error("Gemini request failed")
		return Failed(KindUnavailable, fmt.Sprintf("request failed: %v", err))
	}
	defer resp.Body.Close()

	duration := time.Since(startTime)
	c.logger.WithFields(logrus.Fields{
		"status_code": resp.StatusCode,
		"duration_ms": duration.Milliseconds(),
	}).Debug("Gemini request completed")

	if resp.StatusCode != http.StatusOK {
		kind, apiStatus, detail := readGeminiError(resp)
		c.logger.WithFields(logrus.Fields{
			"status_code": resp.StatusCode,
			"api_status":  apiStatus,
			"kind":        kind.String(),
		}).Error("Gemini request returned non-OK status")
		return Failed(kind, fmt.Sprintf("status %d: %s", resp.StatusCode, truncate(detail, 512)))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		c.logger.WithError(err).Error("Failed to decode generate response")
		return Failed(KindUnavailable, fmt.Sprintf("decode response: %v", err))
	}

	if genResp.PromptFeedback != nil && genResp.PromptFeedback.BlockReason != "" {
		c.logger.WithFields(logrus.Fields{
			"block_reason": genResp.PromptFeedback.BlockReason,
		}).Warn("Gemini blocked the prompt")
		return Failed(KindRejected, "prompt blocked: "+genResp.PromptFeedback.BlockReason)
	}

	var sb strings.Builder
	finishReason := ""
	if len(genResp.Candidates) > 0 {
		finishReason = genResp.Candidates[0].FinishReason
		for _, part := range genResp.Candidates[0].Content.Parts {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 && finishReason == "SAFETY" {
		return Failed(KindRejected, "candidate blocked: SAFETY")
	}

	c.logger.WithFields(logrus.Fields{
		"model":           c.model,
		"finish_reason":   finishReason,
		"response_length": sb.Len(),
		"duration_ms":     duration.Milliseconds(),
	}).Info("Gemini response received")

	return OK(sb.String())
}

// CheckHealth verifies that the configured model is visible to the API key.
func (c *GeminiClient) CheckHealth(ctx context.Context) error {
	c.logger.Debug("Checking Gemini health")

	if c.apiKey == "" {
		return &Error{Kind: KindAuth, Detail: "gemini api key is empty"}
	}

	url := fmt.Sprintf("%s/models/%s", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.logger.WithError(err).Error("Failed to create health check request")
		return fmt.Errorf("create health check request: %w", err)
	}
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"model": c.model,
		}).Error("Health check request failed")
		return &Error{Kind: KindUnavailable, Detail: fmt.Sprintf("health check failed: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		kind, _, detail := readGeminiError(resp)
		c.logger.WithFields(logrus.Fields{
			"status_code": resp.StatusCode,
			"kind":        kind.String(),
		}).Error("Health check returned non-OK status")
		return &Error{Kind: kind, Detail: fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, truncate(detail, 512))}
	}

	c.logger.Debug("Gemini health check passed")
	return nil
}
