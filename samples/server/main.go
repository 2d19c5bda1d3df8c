// Copyright (c) Microsoft. All rights reserved.

// Command server exposes an agent over HTTP.
//
// It serves a simple POST /invoke endpoint, the A2A JSON-RPC protocol at the
// root path, the agent card under /.well-known/, Prometheus metrics on
// /metrics, and a health check. Conversation state is kept per conversation
// ID, in memory by default or in Redis when configured.
//
// Usage:
//
//	export OPENAI_API_KEY=sk-...
//	go run . --config server.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	af "github.com/microsoft/agentkit"
	"github.com/microsoft/agentkit/openai"
	"github.com/microsoft/agentkit/redisstore"
	"github.com/microsoft/agentkit/telemetry"
)

func main() {
	configPath := flag.String("config", "server.yaml", "path to the YAML config file")
	flag.Parse()

	// Load .env file if present (ignored if missing).
	_ = godotenv.Load()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(),
	}))
	slog.SetDefault(log)

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		log.Error("config load failed", "error", err)
		os.Exit(1)
	}
	if cfg.OpenAI.APIKey == "" {
		log.Error("no model API key configured, set OPENAI_API_KEY or openai.api_key")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Tracing.
	provider, err := telemetry.NewProvider(ctx, cfg.Telemetry)
	if err != nil {
		log.Error("telemetry setup failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			log.Warn("telemetry shutdown", "error", err)
		}
	}()

	// Model client.
	clientOpts := []openai.Option{openai.WithModel(cfg.OpenAI.Model)}
	if cfg.OpenAI.BaseURL != "" {
		clientOpts = append(clientOpts, openai.WithBaseURL(cfg.OpenAI.BaseURL))
	}
	client := openai.New(cfg.OpenAI.APIKey, clientOpts...)

	// Agent.
	agentOpts := []af.AgentOption{
		af.WithName(cfg.Agent.Name),
		af.WithInstructions(cfg.Agent.Instructions),
		af.WithTools(agentTools()...),
		af.WithAgentMiddleware(af.TracingMiddleware(), af.LoggingMiddleware(log)),
	}

	// Redis-backed conversation state when configured. Identified
	// conversations get stores keyed by their ID (see getOrCreateThread);
	// the UUID factory covers anonymous threads only.
	var rc *redisstore.Client
	if cfg.Redis.Enabled {
		rc, err = redisstore.NewClient(ctx, cfg.Redis.Config)
		if err != nil {
			log.Error("redis connect failed", "address", cfg.Redis.Address, "error", err)
			os.Exit(1)
		}
		defer rc.Close()
		agentOpts = append(agentOpts, af.WithMessageStoreFactory(rc.StoreFactory()))
		log.Info("using redis conversation store", "address", cfg.Redis.Address)
	}

	agent := af.NewAgent(client, agentOpts...)
	srv := newAgentServer(agent, cfg, log, rc)

	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("http shutdown", "error", err)
		}
	}()

	log.Info("agent server listening", "addr", cfg.Listen, "agent", cfg.Agent.Name)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func logLevel() slog.Level {
	if os.Getenv("DEBUG") != "" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
