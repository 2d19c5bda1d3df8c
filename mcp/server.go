// Copyright (c) Microsoft. All rights reserved.

package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/microsoft/agentkit"
)

// Server serves registered [agentkit.Tool] values to MCP clients over a
// byte stream. A server handles one connection per Serve call; for a stdio
// server process that is the process lifetime.
type Server struct {
	info  Implementation
	tools map[string]agentkit.Tool
	order []string
}

// NewServer creates a server that identifies itself with the given name and
// version during the handshake.
func NewServer(name, version string) *Server {
	return &Server{
		info:  Implementation{Name: name, Version: version},
		tools: make(map[string]agentkit.Tool),
	}
}

// Register adds tools to the server. Registering a tool with a name already
// taken replaces the earlier one.
func (s *Server) Register(tools ...agentkit.Tool) {
	for _, t := range tools {
		if _, exists := s.tools[t.Name()]; !exists {
			s.order = append(s.order, t.Name())
		}
		s.tools[t.Name()] = t
	}
}

// ServeStdio serves the connection on the process's stdin and stdout.
// Diagnostics must go to stderr; stdout carries only protocol messages.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads requests from r and writes responses to w until EOF or
// context cancellation. Tool execution errors become isError results;
// protocol violations become JSON-RPC errors.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var msg rpcMessage
		if err := json.Unmarshal(line, &msg); err != nil {
			if werr := writeMessage(w, errorResponse(nil, codeParseError, "parse error")); werr != nil {
				return werr
			}
			continue
		}

		resp := s.dispatch(ctx, &msg)
		if resp == nil {
			// Notification: no reply.
			continue
		}
		if err := writeMessage(w, resp); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: read: %v", ErrTransport, err)
	}
	return nil
}

// dispatch handles a single message. It returns nil when no response is due.
func (s *Server) dispatch(ctx context.Context, msg *rpcMessage) *rpcMessage {
	slog.DebugContext(ctx, "mcp server request", "method", msg.Method, "id", string(msg.ID))

	switch msg.Method {
	case "initialize":
		return resultResponse(msg.ID, initializeResult{
			ProtocolVersion: ProtocolVersion,
			Capabilities:    map[string]any{"tools": map[string]any{}},
			ServerInfo:      s.info,
		})

	case "notifications/initialized":
		return nil

	case "ping":
		return resultResponse(msg.ID, map[string]any{})

	case "tools/list":
		return resultResponse(msg.ID, s.listTools())

	case "tools/call":
		return s.callTool(ctx, msg)

	default:
		if len(msg.ID) == 0 {
			// Unknown notification: ignore per JSON-RPC.
			return nil
		}
		return errorResponse(msg.ID, codeMethodNotFound, fmt.Sprintf("method not found: %s", msg.Method))
	}
}

func (s *Server) listTools() listToolsResult {
	result := listToolsResult{Tools: make([]ToolInfo, 0, len(s.order))}
	for _, name := range s.order {
		t := s.tools[name]
		schema := t.Parameters()
		if len(schema) == 0 {
			schema = defaultSchema
		}
		result.Tools = append(result.Tools, ToolInfo{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: schema,
		})
	}
	return result
}

func (s *Server) callTool(ctx context.Context, msg *rpcMessage) *rpcMessage {
	var params callToolParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return errorResponse(msg.ID, codeInvalidParams, "invalid tools/call params")
	}

	tool, ok := s.tools[params.Name]
	if !ok {
		return errorResponse(msg.ID, codeInvalidParams, fmt.Sprintf("unknown tool: %s", params.Name))
	}

	args := params.Arguments
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}

	result, err := tool.Invoke(ctx, args)
	if err != nil {
		slog.WarnContext(ctx, "mcp tool failed", "tool", params.Name, "error", err)
		return resultResponse(msg.ID, CallToolResult{
			Content: []ContentItem{{Type: "text", Text: err.Error()}},
			IsError: true,
		})
	}

	text, err := formatResult(result)
	if err != nil {
		return errorResponse(msg.ID, codeInternalError, fmt.Sprintf("marshal result: %v", err))
	}
	return resultResponse(msg.ID, CallToolResult{
		Content: []ContentItem{{Type: "text", Text: text}},
	})
}

// formatResult renders a tool's return value as text content.
func formatResult(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func resultResponse(id json.RawMessage, result any) *rpcMessage {
	raw, err := json.Marshal(result)
	if err != nil {
		return errorResponse(id, codeInternalError, fmt.Sprintf("marshal response: %v", err))
	}
	return &rpcMessage{JSONRPC: "2.0", ID: id, Result: raw}
}

func errorResponse(id json.RawMessage, code int, message string) *rpcMessage {
	return &rpcMessage{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &RPCError{Code: code, Message: message},
	}
}

func writeMessage(w io.Writer, msg *rpcMessage) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", ErrMCP, err)
	}
	b = append(b, '\n')
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("%w: write: %v", ErrTransport, err)
	}
	return nil
}
