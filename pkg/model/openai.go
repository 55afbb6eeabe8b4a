package model

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultOpenAICompatURL is Gemini's OpenAI-compatible endpoint, so the
	// openai engine works with the same GEMINI_API_KEY out of the box.
	DefaultOpenAICompatURL = "https://generativelanguage.googleapis.com/v1beta/openai"
)

// OpenAIClient implements the Client interface for any OpenAI-compatible
// chat completions API.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	keyRequired bool
	logger      *logrus.Logger
}

// NewOpenAIClient creates a new OpenAI-compatible client. An empty BaseURL
// selects Gemini's OpenAI-compatible endpoint.
func NewOpenAIClient(cfg Config) *OpenAIClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	keyRequired := false
	if baseURL == "" {
		baseURL = DefaultOpenAICompatURL
		keyRequired = true
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

	oaCfg := openai.DefaultConfig(cfg.APIKey)
	oaCfg.BaseURL = baseURL
	oaCfg.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(oaCfg),
		model:       modelName,
		temperature: cfg.Temperature,
		keyRequired: keyRequired && cfg.APIKey == "",
		logger:      logger,
	}
}

// Submit sends the prompt as a single user message.
func (c *OpenAIClient) Submit(ctx context.Context, p Prompt) Response {
	text := p.Text()
	startTime := time.Now()
	resp := c.submit(ctx, p, text)
	recordRequest(EngineOpenAI, time.Since(startTime), len(text), resp)
	return resp
}

func (c *OpenAIClient) submit(ctx context.Context, p Prompt, text string) Response {
	if c.keyRequired {
		c.logger.Error("API key is empty")
		return Failed(KindAuth, "api key is empty")
	}

	c.logger.WithFields(logrus.Fields{
		"model":         c.model,
		"prompt_length": len(text),
	}).Debug("Submitting prompt to chat completions")

	startTime := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: p.TemperatureOr(c.temperature),
	})
	duration := time.Since(startTime)
	if err != nil {
		kind := classifyOpenAIError(err)
		c.logger.WithError(err).WithFields(logrus.Fields{
			"model":       c.model,
			"kind":        kind.String(),
			"duration_ms": duration.Milliseconds(),
		}).Error("Chat completion request failed")
		return Failed(kind, truncate(err.Error(), 512))
	}

	if len(resp.Choices) == 0 {
		c.logger.Warn("Chat completion returned no choices")
		return OK("")
	}

	content := resp.Choices[0].Message.Content
	if content == "" && string(resp.Choices[0].FinishReason) == "content_filter" {
		return Failed(KindRejected, "completion blocked by content filter")
	}

	c.logger.WithFields(logrus.Fields{
		"model":           c.model,
		"finish_reason":   resp.Choices[0].FinishReason,
		"response_length": len(content),
		"duration_ms":     duration.Milliseconds(),
	}).Info("Chat completion received")

	return OK(content)
}

// CheckHealth verifies that the configured model can be retrieved.
func (c *OpenAIClient) CheckHealth(ctx context.Context) error {
	c.logger.Debug("Checking chat completions health")

	if c.keyRequired {
		return &Error{Kind: KindAuth, Detail: "api key is empty"}
	}
	if _, err := c.client.GetModel(ctx, c.model); err != nil {
		c.logger.WithError(err).Error("Health check request failed")
		return &Error{Kind: classifyOpenAIError(err), Detail: fmt.Sprintf("health check failed: %v", err)}
	}

	c.logger.Debug("Chat completions health check passed")
	return nil
}

func classifyOpenAIError(err error) Kind {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return KindForStatus(apiErr.HTTPStatusCode, apiErr.Type)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return KindForStatus(reqErr.HTTPStatusCode, "")
	}
	return KindForMessage(err.Error())
}
