// Copyright (c) Microsoft. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	af "github.com/microsoft/agentkit"
	"github.com/microsoft/agentkit/redisstore"
)

// InvokeRequest is the JSON body for POST /invoke.
type InvokeRequest struct {
	Input          string         `json:"input"`
	ConversationID string         `json:"conversationId,omitempty"`
	Context        map[string]any `json:"context,omitempty"`
}

// InvokeResponse is the JSON body returned from POST /invoke.
type InvokeResponse struct {
	Output string         `json:"output"`
	State  map[string]any `json:"state,omitempty"`
}

// jsonRPCRequest is the top-level JSON-RPC 2.0 request for the A2A endpoint.
type jsonRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// jsonRPCResponse is the top-level JSON-RPC 2.0 response.
type jsonRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// messageSendParams is the params for A2A "message/send".
type messageSendParams struct {
	Message  a2aMessage     `json:"message"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// a2aMessage is an A2A protocol message (request or response).
type a2aMessage struct {
	Kind      string         `json:"kind"`
	Role      string         `json:"role"`
	MessageID string         `json:"messageId"`
	ContextID string         `json:"contextId,omitempty"`
	Parts     []a2aPart      `json:"parts"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// a2aPart is a content part in an A2A message.
type a2aPart struct {
	Kind string `json:"kind"`
	Text string `json:"text,omitempty"`
}

// taskGetParams is the params for A2A "tasks/get".
type taskGetParams struct {
	ID string `json:"id"`
}

// defaultThreadTTL is how long an idle conversation keeps its thread entry
// before the next lookup evicts it.
const defaultThreadTTL = time.Hour

// threadEntry tracks a conversation's thread and when it was last used.
type threadEntry struct {
	thread   *af.Thread
	lastUsed time.Time
}

// agentServer serves an agent over HTTP: a simple /invoke endpoint, the A2A
// JSON-RPC protocol at the root path, an agent card, health, and metrics.
type agentServer struct {
	agent     *af.Agent
	cfg       *Config
	log       *slog.Logger
	redis     *redisstore.Client
	threadTTL time.Duration
	mu        sync.Mutex
	threads   map[string]*threadEntry
	router    chi.Router
}

// newAgentServer builds the server. redis may be nil; when set, conversation
// threads are backed by Redis lists keyed by conversation ID so history
// survives restarts and is shared between replicas.
func newAgentServer(agent *af.Agent, cfg *Config, log *slog.Logger, redis *redisstore.Client) *agentServer {
	s := &agentServer{
		agent:     agent,
		cfg:       cfg,
		log:       log,
		redis:     redis,
		threadTTL: defaultThreadTTL,
		threads:   make(map[string]*threadEntry),
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.RequestID)
	r.Use(metricsMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/.well-known/agent-card.json", s.handleAgentCard)
	r.Get("/.well-known/agent.json", s.handleAgentCard)
	r.Post("/invoke", s.handleInvoke)
	r.Handle("/metrics", promhttp.Handler())
	// A2A JSON-RPC endpoint at the root path.
	r.Post("/", s.handleA2A)

	s.router = r
	return s
}

// Handler returns the full HTTP handler with tracing instrumentation applied.
func (s *agentServer) Handler() http.Handler {
	return otelhttp.NewHandler(s.router, "agent-server")
}

func (s *agentServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAgentCard serves the A2A agent card, built from the configuration
// with the URL resolved from the incoming request.
func (s *agentServer) handleAgentCard(w http.ResponseWriter, r *http.Request) {
	card := map[string]any{
		"name":               s.cfg.Agent.Name,
		"description":        s.cfg.Agent.Description,
		"version":            "1.0.0",
		"url":                s.resolveBaseURL(r) + "/",
		"defaultInputModes":  []string{"text"},
		"defaultOutputModes": []string{"text"},
		"capabilities": map[string]any{
			"streaming": false,
		},
		"skills": []map[string]any{
			{
				"id":          "chat",
				"name":        "Chat",
				"description": s.cfg.Agent.Description,
				"tags":        []string{"chat", "weather", "calculator"},
			},
		},
	}

	schemes := []map[string]any{}
	if s.cfg.APIKey != "" {
		schemes = append(schemes, map[string]any{"scheme": "bearer"})
	}
	card["authentication"] = map[string]any{"schemes": schemes}

	s.writeJSON(w, http.StatusOK, card)
}

func (s *agentServer) handleA2A(w http.ResponseWriter, r *http.Request) {
	var rpcReq jsonRPCRequest
	if err := json.NewDecoder(r.Body).Decode(&rpcReq); err != nil {
		s.log.Warn("bad JSON-RPC request", "error", err)
		s.writeRPCError(w, nil, -32700, "Parse error")
		return
	}

	s.log.Debug("a2a request", "method", rpcReq.Method, "id", string(rpcReq.ID))

	switch rpcReq.Method {
	case "message/send":
		s.handleMessageSend(w, r, &rpcReq)
	case "tasks/get":
		s.handleTasksGet(w, &rpcReq)
	default:
		s.writeRPCError(w, rpcReq.ID, -32601, fmt.Sprintf("Method not found: %s", rpcReq.Method))
	}
}

func (s *agentServer) handleMessageSend(w http.ResponseWriter, r *http.Request, rpcReq *jsonRPCRequest) {
	if !s.authorized(r) {
		s.log.Warn("unauthorized a2a request", "remote", r.RemoteAddr)
		s.writeRPCError(w, rpcReq.ID, -32000, "Unauthorized")
		return
	}

	var params messageSendParams
	if err := json.Unmarshal(rpcReq.Params, &params); err != nil {
		s.writeRPCError(w, rpcReq.ID, -32602, "Invalid params")
		return
	}

	var inputTexts []string
	for _, part := range params.Message.Parts {
		if part.Kind == "text" && part.Text != "" {
			inputTexts = append(inputTexts, part.Text)
		}
	}
	input := strings.Join(inputTexts, "\n")
	if input == "" {
		s.writeRPCError(w, rpcReq.ID, -32602, "No text content in message")
		return
	}

	contextID := params.Message.ContextID
	thread := s.getOrCreateThread(contextID)

	start := time.Now()
	resp, err := s.agent.Run(r.Context(),
		[]af.Message{af.NewUserMessage(input)},
		af.WithThread(thread),
	)
	if err != nil {
		recordRun(start, 0, 0, err)
		s.log.Error("agent run failed", "context_id", contextID, "error", err)
		s.writeRPCError(w, rpcReq.ID, -32000, fmt.Sprintf("Agent error: %v", err))
		return
	}
	recordRun(start, resp.Usage.InputTokens, resp.Usage.OutputTokens, nil)

	result := a2aMessage{
		Kind:      "message",
		Role:      "agent",
		MessageID: fmt.Sprintf("resp-%s", string(rpcReq.ID)),
		ContextID: contextID,
		Parts:     []a2aPart{{Kind: "text", Text: resp.Text()}},
	}
	s.writeRPCResult(w, rpcReq.ID, result)
}

func (s *agentServer) handleTasksGet(w http.ResponseWriter, rpcReq *jsonRPCRequest) {
	// Long-running tasks are not supported; message/send is synchronous.
	var params taskGetParams
	if err := json.Unmarshal(rpcReq.Params, &params); err != nil {
		s.writeRPCError(w, rpcReq.ID, -32602, "Invalid params")
		return
	}
	s.writeRPCError(w, rpcReq.ID, -32001, "Task not found (this agent only supports synchronous message/send)")
}

func (s *agentServer) handleInvoke(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		s.log.Warn("unauthorized invoke", "remote", r.RemoteAddr)
		s.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	var req InvokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Input == "" {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "input is required"})
		return
	}

	s.log.Debug("invoke", "conversation_id", req.ConversationID, "input", req.Input)
	thread := s.getOrCreateThread(req.ConversationID)

	start := time.Now()
	resp, err := s.agent.Run(r.Context(),
		[]af.Message{af.NewUserMessage(req.Input)},
		af.WithThread(thread),
	)
	if err != nil {
		recordRun(start, 0, 0, err)
		s.log.Error("agent run failed", "conversation_id", req.ConversationID, "error", err)
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "agent execution failed"})
		return
	}
	recordRun(start, resp.Usage.InputTokens, resp.Usage.OutputTokens, nil)

	s.writeJSON(w, http.StatusOK, InvokeResponse{Output: resp.Text()})
}

// getOrCreateThread returns the thread for id, creating it on first use.
// An empty id gets a fresh throwaway thread. With Redis configured, the
// store is keyed by the conversation ID, so a recreated server (or another
// replica) reattaches to the same history instead of minting a new key.
// Conversations idle past threadTTL are evicted on the way.
func (s *agentServer) getOrCreateThread(id string) *af.Thread {
	if id == "" {
		return s.agent.NewThread()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, e := range s.threads {
		if now.Sub(e.lastUsed) > s.threadTTL {
			delete(s.threads, key)
		}
	}

	e, ok := s.threads[id]
	if !ok {
		var t *af.Thread
		if s.redis != nil {
			t = af.NewThread(af.WithThreadStore(s.redis.Store(id)))
		} else {
			t = s.agent.NewThread()
		}
		e = &threadEntry{thread: t}
		s.threads[id] = e
	}
	e.lastUsed = now
	return e.thread
}

func (s *agentServer) authorized(r *http.Request) bool {
	if s.cfg.APIKey == "" {
		return true
	}
	return extractBearer(r) == s.cfg.APIKey
}

func extractBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.HasPrefix(h, prefix) {
		return h[len(prefix):]
	}
	return ""
}

func (s *agentServer) writeRPCResult(w http.ResponseWriter, id json.RawMessage, result any) {
	s.writeJSON(w, http.StatusOK, jsonRPCResponse{JSONRPC: "2.0", ID: id, Result: result})
}

func (s *agentServer) writeRPCError(w http.ResponseWriter, id json.RawMessage, code int, message string) {
	s.writeJSON(w, http.StatusOK, jsonRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &rpcError{Code: code, Message: message},
	})
}

func (s *agentServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		s.log.Warn("failed to write response", "error", err)
	}
}

// resolveBaseURL works out the externally visible base URL, honoring dev
// tunnel and reverse proxy headers.
func (s *agentServer) resolveBaseURL(r *http.Request) string {
	baseURL := os.Getenv("DEVTUNNEL_URL")
	if baseURL == "" {
		host := r.Header.Get("X-Forwarded-Host")
		scheme := r.Header.Get("X-Forwarded-Proto")
		if host == "" {
			host = r.Host
		}
		if scheme == "" {
			scheme = "http"
		}
		baseURL = fmt.Sprintf("%s://%s", scheme, host)
	}
	return strings.TrimRight(baseURL, "/")
}
