// Copyright (c) Microsoft. All rights reserved.

package main

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"

	af "github.com/microsoft/agentkit"
	"github.com/microsoft/agentkit/redisstore"
)

// stubChatClient satisfies af.ChatClient without a live model.
type stubChatClient struct{}

func (stubChatClient) Response(ctx context.Context, msgs []af.Message, opts *af.ChatOptions) (*af.ChatResponse, error) {
	return &af.ChatResponse{Messages: []af.Message{af.NewAssistantMessage("ok")}}, nil
}

func (stubChatClient) StreamResponse(ctx context.Context, msgs []af.Message, opts *af.ChatOptions) (*af.ResponseStream[af.ChatResponseUpdate], error) {
	return af.NewResponseStream(ctx, func(ctx context.Context, ch chan<- af.ChatResponseUpdate) error {
		return nil
	}), nil
}

func newTestServer(t *testing.T, redis *redisstore.Client) *agentServer {
	t.Helper()
	cfg := &Config{}
	cfg.applyDefaults()
	agent := af.NewAgent(stubChatClient{}, af.WithName(cfg.Agent.Name))
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return newAgentServer(agent, cfg, log, redis)
}

func TestRedisThreads_SurviveRestart(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	rc, err := redisstore.NewClient(ctx, redisstore.Config{Address: mr.Addr()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { _ = rc.Close() })

	first := newTestServer(t, rc)
	thread := first.getOrCreateThread("conv-1")
	if err := thread.Store().AddMessages(ctx, []af.Message{af.NewUserMessage("remember me")}); err != nil {
		t.Fatalf("AddMessages: %v", err)
	}

	// A fresh server instance stands in for a restarted process or a
	// second replica. The same conversation ID must reach the same list.
	second := newTestServer(t, rc)
	reattached := second.getOrCreateThread("conv-1")
	msgs, err := reattached.Store().ListMessages(ctx)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Text() != "remember me" {
		t.Fatalf("history not reattached, got %+v", msgs)
	}
}

func TestRedisThreads_SameServerSharesThread(t *testing.T) {
	mr := miniredis.RunT(t)
	rc, err := redisstore.NewClient(context.Background(), redisstore.Config{Address: mr.Addr()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { _ = rc.Close() })

	srv := newTestServer(t, rc)
	if srv.getOrCreateThread("conv-1") != srv.getOrCreateThread("conv-1") {
		t.Error("same conversation ID returned different threads")
	}
	if srv.getOrCreateThread("") == srv.getOrCreateThread("") {
		t.Error("anonymous requests should get fresh threads")
	}
}

func TestThreads_IdleEviction(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.threadTTL = time.Minute

	srv.getOrCreateThread("stale")
	srv.mu.Lock()
	srv.threads["stale"].lastUsed = time.Now().Add(-time.Hour)
	srv.mu.Unlock()

	srv.getOrCreateThread("active")

	srv.mu.Lock()
	_, staleKept := srv.threads["stale"]
	_, activeKept := srv.threads["active"]
	srv.mu.Unlock()

	if staleKept {
		t.Error("idle conversation was not evicted")
	}
	if !activeKept {
		t.Error("active conversation was evicted")
	}
}

func TestMetrics_PathLabelIsBounded(t *testing.T) {
	srv := newTestServer(t, nil)

	// A request to a nonexistent path must not mint a per-URL series.
	rr := httptest.NewRecorder()
	srv.router.ServeHTTP(rr, httptest.NewRequest("GET", "/no/such/route/12345", nil))

	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", routeUnmatched, "404")); got < 1 {
		t.Errorf("unmatched counter = %v, want >= 1", got)
	}
	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/no/such/route/12345", "404")); got != 0 {
		t.Errorf("raw URL counter = %v, want 0", got)
	}

	// Matched routes are labeled with the route pattern.
	rr = httptest.NewRecorder()
	srv.router.ServeHTTP(rr, httptest.NewRequest("GET", "/health", nil))
	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/health", "200")); got < 1 {
		t.Errorf("health counter = %v, want >= 1", got)
	}
}
