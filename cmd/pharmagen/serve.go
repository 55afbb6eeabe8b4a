package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"

	"github.com/dasmlab/pharmagen/pkg/assistant"
	"github.com/dasmlab/pharmagen/pkg/config"
	"github.com/dasmlab/pharmagen/pkg/server"
	"github.com/sirupsen/logrus"
)

// runServe serves the HTTP and gRPC APIs until SIGINT or SIGTERM.
func runServe(a *assistant.Assistant, cfg config.Config, logger *logrus.Logger) {
	logger.WithFields(logrus.Fields{
		"http_port": cfg.HTTPPort,
		"grpc_port": cfg.GRPCPort,
		"engine":    cfg.Engine,
		"model":     cfg.Model,
		"language":  a.Languages.Default().Code,
		"log_level": logger.GetLevel().String(),
	}).Info("Starting PharmaGEN server")

	// Verify the model is reachable
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	logger.Info("Checking model health...")
	if err := a.Client.CheckHealth(ctx); err != nil {
		logger.WithError(err).Warn("Model health check failed, but continuing anyway")
		logger.Warn("Server will start, but questions may fail until the model is reachable")
	} else {
		logger.Info("Model health check passed")
	}
	cancel()

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"port": cfg.GRPCPort,
		}).Fatal("Failed to listen on port")
	}

	// Create gRPC server with options
	opts := []grpc.ServerOption{
		grpc.Creds(insecure.NewCredentials()),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             15 * time.Second,
			PermitWithoutStream: true,
		}),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle:     5 * time.Minute,
			MaxConnectionAge:      30 * time.Minute,
			MaxConnectionAgeGrace: 5 * time.Second,
			Time:                  30 * time.Second,
			Timeout:               10 * time.Second,
		}),
	}
	s := grpc.NewServer(opts...)

	// Register health check service
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(s, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(server.AssistantServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	server.RegisterAssistantServer(s, server.NewAssistantService(a, logger))

	// Enable reflection for grpcurl/debugging
	reflection.Register(s)

	httpServer := server.NewHTTPServer(a, logger, cfg.HTTPPort)

	errChan := make(chan error, 2)
	go func() {
		logger.WithFields(logrus.Fields{
			"port": cfg.GRPCPort,
		}).Info("gRPC server listening")
		if err := s.Serve(lis); err != nil {
			errChan <- fmt.Errorf("failed to serve gRPC: %w", err)
		}
	}()
	go func() {
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("failed to serve HTTP: %w", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		logger.WithError(err).Fatal("Server error")
	case sig := <-sigChan:
		logger.WithFields(logrus.Fields{
			"signal": sig.String(),
		}).Info("Received signal, shutting down gracefully...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)

		if err := httpServer.Shutdown(ctx); err != nil {
			logger.WithError(err).Warn("HTTP server shutdown failed")
		}

		stopped := make(chan struct{})
		go func() {
			s.GracefulStop()
			close(stopped)
		}()

		select {
		case <-stopped:
			logger.Info("Server stopped gracefully")
		case <-ctx.Done():
			logger.Warn("Graceful shutdown timeout, forcing stop...")
			s.Stop()
		}
	}
}
