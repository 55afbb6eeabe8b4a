// Package config loads PharmaGEN settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvAPIKey      = "GEMINI_API_KEY"
	EnvEngine      = "PHARMAGEN_ENGINE"
	EnvModel       = "PHARMAGEN_MODEL"
	EnvBaseURL     = "PHARMAGEN_BASE_URL"
	EnvLanguage    = "PHARMAGEN_LANGUAGE"
	EnvTimeout     = "PHARMAGEN_TIMEOUT"
	EnvTemperature = "PHARMAGEN_TEMPERATURE"
	EnvLogLevel    = "PHARMAGEN_LOG_LEVEL"
	EnvHTTPPort    = "PHARMAGEN_HTTP_PORT"
	EnvGRPCPort    = "PHARMAGEN_GRPC_PORT"
)

// Config holds the settings shared by the CLI and the servers.
type Config struct {
	APIKey      string
	Engine      string
	Model       string
	BaseURL     string
	Language    string
	Timeout     time.Duration
	Temperature float64
	LogLevel    string
	HTTPPort    int
	GRPCPort    int
}

// Load reads environment variables, first loading envFile if given or a
// .env file in the working directory if one exists. Variables already set
// in the environment win over file values. A named envFile that cannot be
// read is an error, as is any variable that does not parse.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	} else {
		// Try to load .env if it exists; ignore error if file not found
		_ = godotenv.Load()
	}

	p := &parser{}
	cfg := Config{
		APIKey:      os.Getenv(EnvAPIKey),
		Engine:      getEnv(EnvEngine, "gemini"),
		Model:       getEnv(EnvModel, "gemini-2.5-flash"),
		BaseURL:     os.Getenv(EnvBaseURL),
		Language:    getEnv(EnvLanguage, "en"),
		Timeout:     p.duration(EnvTimeout, 60*time.Second),
		Temperature: p.float(EnvTemperature, 0.7),
		LogLevel:    os.Getenv(EnvLogLevel),
		HTTPPort:    p.port(EnvHTTPPort, 8080),
		GRPCPort:    p.port(EnvGRPCPort, 50051),
	}
	if len(p.errs) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %w", errors.Join(p.errs...))
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// parser reads typed variables and collects every parse failure.
type parser struct {
	errs []error
}

func (p *parser) fail(key, value, want string) {
	p.errs = append(p.errs, fmt.Errorf("%s=%q: expected %s", key, value, want))
}

func (p *parser) port(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 || n > 65535 {
		p.fail(key, v, "a port number")
		return def
	}
	return n
}

// duration accepts Go durations ("90s") and bare seconds ("90").
func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	p.fail(key, v, "a positive duration such as 60s")
	return def
}

func (p *parser) float(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 || f > 2 {
		p.fail(key, v, "a number between 0 and 2")
		return def
	}
	return f
}
