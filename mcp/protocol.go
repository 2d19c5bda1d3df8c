// Copyright (c) Microsoft. All rights reserved.

package mcp

import (
	"encoding/json"
	"fmt"
)

// ProtocolVersion is the MCP revision this package implements.
const ProtocolVersion = "2024-11-05"

// JSON-RPC 2.0 error codes used on the wire.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

// rpcMessage is the single JSON-RPC envelope for requests, responses, and
// notifications. A request has Method and ID; a notification has Method and
// no ID; a response has ID and exactly one of Result or Error.
type rpcMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// isResponse reports whether the message is a reply to one of our requests.
func (m *rpcMessage) isResponse() bool {
	return len(m.ID) > 0 && m.Method == ""
}

// RPCError is a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Implementation identifies a client or server on the wire.
type Implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// initializeParams is sent by the client as the first request.
type initializeParams struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ClientInfo      Implementation `json:"clientInfo"`
}

// initializeResult is the server's half of the handshake.
type initializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ServerInfo      Implementation `json:"serverInfo"`
}

// ToolInfo describes a tool advertised by a server via tools/list.
type ToolInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
}

type listToolsResult struct {
	Tools []ToolInfo `json:"tools"`
}

type callToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// ContentItem is one piece of a tool result. Only text content is produced
// by this package; other types pass through unmodified.
type ContentItem struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// CallToolResult is the outcome of tools/call. IsError distinguishes tool
// failures (visible to the model) from protocol errors.
type CallToolResult struct {
	Content []ContentItem `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

// Text returns the concatenated text of all text content items.
func (r *CallToolResult) Text() string {
	var out string
	for _, c := range r.Content {
		if c.Type == "text" {
			out += c.Text
		}
	}
	return out
}
