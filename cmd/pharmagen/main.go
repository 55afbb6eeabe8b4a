package main

import (
	"bufio"
	"context"
	"flag"
	"os"
	"time"

	"github.com/dasmlab/pharmagen/pkg/assistant"
	"github.com/dasmlab/pharmagen/pkg/config"
	"github.com/dasmlab/pharmagen/pkg/model"
	"github.com/sirupsen/logrus"
)

var (
	// Modes
	question    = flag.String("q", "", "Ask a single question and exit")
	consultMode = flag.Bool("consult", false, "Run the guided consultation instead of free questions")
	serveMode   = flag.Bool("serve", false, "Serve the HTTP and gRPC APIs")

	// Query configuration
	lang = flag.String("lang", "", "Default response language tag (e.g., en, es-MX, french, auto)")

	// Server configuration flags
	httpPort = flag.Int("http-port", 0, "HTTP server port (default 8080)")
	grpcPort = flag.Int("grpc-port", 0, "gRPC server port (default 50051)")

	// Model configuration
	engine  = flag.String("engine", "", "Model engine: gemini or openai")
	modelID = flag.String("model", "", "Model name (default gemini-2.5-flash)")
	baseURL = flag.String("base-url", "", "Override the model API base URL")
	timeout = flag.Duration("timeout", 0, "Per-request model timeout (default 60s)")

	// Logging configuration
	logLevel = flag.String("log-level", "", "Log level: debug, info, warn, error (default warn, info with -serve)")
	envFile  = flag.String("env-file", "", "Load environment variables from this file instead of ./.env")
)

func main() {
	flag.Parse()

	// Initialize logger
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	cfg, err := config.Load(*envFile)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	applyFlags(&cfg)

	// Set log level
	levelName := cfg.LogLevel
	if levelName == "" {
		levelName = "warn"
		if *serveMode {
			levelName = "info"
		}
	}
	level, err := logrus.ParseLevel(levelName)
	if err != nil {
		logger.WithError(err).Warn("Invalid log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	// One scanner for stdin so the key prompt and the REPL share its buffer.
	stdin := bufio.NewScanner(os.Stdin)
	stdin.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	interactive := !*serveMode && *question == ""
	if cfg.APIKey == "" && requiresKey(cfg) {
		if !interactive {
			logger.Fatalf("%s is not set", config.EnvAPIKey)
		}
		cfg.APIKey = promptAPIKey(stdin, os.Stdout)
		if cfg.APIKey == "" {
			logger.Fatal("An API key is required")
		}
	}

	a, err := buildAssistant(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create assistant")
	}

	switch {
	case *serveMode:
		runServe(a, cfg, logger)
	case *question != "":
		os.Exit(runOnce(context.Background(), a, *question, os.Stdout))
	default:
		newREPL(a, stdin, os.Stdout, *consultMode).run(context.Background())
	}
}

// applyFlags overrides configuration with explicitly set flags.
func applyFlags(cfg *config.Config) {
	if *engine != "" {
		cfg.Engine = *engine
	}
	if *modelID != "" {
		cfg.Model = *modelID
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if *lang != "" {
		cfg.Language = *lang
	}
	if *timeout > 0 {
		cfg.Timeout = *timeout
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *httpPort > 0 {
		cfg.HTTPPort = *httpPort
	}
	if *grpcPort > 0 {
		cfg.GRPCPort = *grpcPort
	}
}

// requiresKey reports whether the configured endpoint needs GEMINI_API_KEY.
// A custom OpenAI-compatible endpoint (e.g. a local server) may not.
func requiresKey(cfg config.Config) bool {
	engineType, err := model.ParseEngineType(cfg.Engine)
	return err != nil || engineType == model.EngineGemini || cfg.BaseURL == ""
}

// buildAssistant creates the model client once and wires it into an
// assistant. The configured default language must be supported.
func buildAssistant(cfg config.Config, logger *logrus.Logger) (*assistant.Assistant, error) {
	engineType, err := model.ParseEngineType(cfg.Engine)
	if err != nil {
		return nil, err
	}

	languages, err := assistant.NewLanguages(cfg.Language)
	if err != nil {
		return nil, err
	}

	client, err := model.NewClient(model.Config{
		Engine:      engineType,
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Temperature: float32(cfg.Temperature),
		Timeout:     cfg.Timeout,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	return assistant.New(client, languages, logger), nil
}
