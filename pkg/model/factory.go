package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// EngineType represents the model API to talk to.
type EngineType string

const (
	// EngineGemini uses the native Gemini generateContent API.
	EngineGemini EngineType = "gemini"
	// EngineOpenAI uses an OpenAI-compatible chat completions API.
	EngineOpenAI EngineType = "openai"
)

const (
	// DefaultModel is the model used when none is configured.
	DefaultModel = "gemini-2.5-flash"
	// DefaultTimeout bounds a single model request.
	DefaultTimeout = 60 * time.Second
	// DefaultTemperature is the sampling temperature for answers.
	DefaultTemperature = 0.7
)

// Config holds configuration for creating a Client instance.
type Config struct {
	// Engine specifies which model API to use.
	Engine EngineType
	// APIKey is the credential sent with every request.
	APIKey string
	// BaseURL overrides the engine's default endpoint.
	BaseURL string
	// Model is the model name, e.g. "gemini-2.5-flash".
	Model string
	// Temperature is the sampling temperature.
	Temperature float32
	// Timeout bounds each request. Zero means DefaultTimeout.
	Timeout time.Duration
	// Logger is the logger instance to use. If nil, a default logger is created.
	Logger *logrus.Logger
}

// NewClient creates a new Client based on the configuration.
func NewClient(cfg Config) (Client, error) {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	cfg.Logger.WithFields(logrus.Fields{
		"engine":   cfg.Engine,
		"model":    cfg.Model,
		"base_url": cfg.BaseURL,
		"timeout":  cfg.Timeout.String(),
	}).Info("Creating model client")

	switch cfg.Engine {
	case EngineGemini:
		return NewGeminiClient(cfg), nil
	case EngineOpenAI:
		return NewOpenAIClient(cfg), nil
	default:
		cfg.Logger.WithFields(logrus.Fields{
			"engine": cfg.Engine,
		}).Error("Unknown model engine")
		return nil, fmt.Errorf("unknown model engine: %s", cfg.Engine)
	}
}

// ParseEngineType parses a string into an EngineType.
func ParseEngineType(s string) (EngineType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gemini", "":
		return EngineGemini, nil
	case "openai":
		return EngineOpenAI, nil
	default:
		return "", fmt.Errorf("unknown engine type: %s (supported: gemini, openai)", s)
	}
}
