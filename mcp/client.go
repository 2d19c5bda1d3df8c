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
	"os/exec"
	"sync"
	"time"
)

// closeGrace is how long Close waits for the server process to exit after
// its stdin is closed before killing it.
var closeGrace = 5 * time.Second

// StdioClient is an MCP client speaking newline-delimited JSON-RPC to a
// server over a byte stream, typically the stdin/stdout of a spawned child
// process. Create one with [Dial] or, for a custom transport, [Connect].
//
// The client is safe for concurrent use; concurrent calls are multiplexed
// over the connection and matched to responses by request id.
type StdioClient struct {
	name string
	cmd  *exec.Cmd
	w    io.WriteCloser

	mu      sync.Mutex
	nextID  int64
	pending map[int64]chan *rpcMessage
	closed  bool

	done    chan struct{}
	readErr error

	serverInfo Implementation
}

// Dial spawns command with args as an MCP server child process and performs
// the initialize handshake. The child's stderr is passed through to the
// parent's so server diagnostics stay visible.
//
// name identifies the connection; it prefixes adapted tool names (see
// [StdioClient.Tools]) and appears in log output.
func Dial(ctx context.Context, name, command string, args ...string) (*StdioClient, error) {
	cmd := exec.Command(command, args...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdin pipe: %v", ErrTransport, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdout pipe: %v", ErrTransport, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start %q: %v", ErrTransport, command, err)
	}

	c, err := Connect(ctx, name, stdout, stdin)
	if err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, err
	}
	c.cmd = cmd
	return c, nil
}

// Connect wires a client over an established transport and performs the
// initialize handshake. Dial uses it with the child process pipes; tests
// use it with in-memory pipes.
func Connect(ctx context.Context, name string, r io.Reader, w io.WriteCloser) (*StdioClient, error) {
	c := &StdioClient{
		name:    name,
		w:       w,
		pending: make(map[int64]chan *rpcMessage),
		done:    make(chan struct{}),
	}
	go c.readLoop(r)

	if err := c.initialize(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// Name returns the connection name given to Dial or Connect.
func (c *StdioClient) Name() string { return c.name }

// ServerInfo returns the server identity reported during the handshake.
func (c *StdioClient) ServerInfo() Implementation { return c.serverInfo }

// initialize performs the two-step handshake: an initialize request followed
// by the notifications/initialized notification.
func (c *StdioClient) initialize(ctx context.Context) error {
	params := initializeParams{
		ProtocolVersion: ProtocolVersion,
		Capabilities:    map[string]any{"tools": map[string]any{}},
		ClientInfo:      Implementation{Name: c.name, Version: "1.0.0"},
	}

	raw, err := c.call(ctx, "initialize", params)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrHandshake, err)
	}

	var result initializeResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return fmt.Errorf("%w: parse result: %v", ErrHandshake, err)
	}
	c.serverInfo = result.ServerInfo

	slog.DebugContext(ctx, "mcp handshake complete",
		"client", c.name,
		"server", result.ServerInfo.Name,
		"protocol", result.ProtocolVersion,
	)

	return c.notify("notifications/initialized", nil)
}

// ListTools returns the tools advertised by the server.
func (c *StdioClient) ListTools(ctx context.Context) ([]ToolInfo, error) {
	raw, err := c.call(ctx, "tools/list", nil)
	if err != nil {
		return nil, err
	}
	var result listToolsResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("%w: parse tools/list result: %v", ErrMCP, err)
	}
	return result.Tools, nil
}

// CallTool invokes a named tool on the server. A tool-level failure is
// reported through [CallToolResult.IsError], not through the error return.
func (c *StdioClient) CallTool(ctx context.Context, name string, args json.RawMessage) (*CallToolResult, error) {
	raw, err := c.call(ctx, "tools/call", callToolParams{Name: name, Arguments: args})
	if err != nil {
		return nil, err
	}
	var result CallToolResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("%w: parse tools/call result: %v", ErrMCP, err)
	}
	return &result, nil
}

// Close shuts the connection down: the write side is closed so a child
// server sees EOF and exits, then the process (if any) is reaped. A server
// that ignores EOF is killed after a grace period so Close cannot hang.
func (c *StdioClient) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	err := c.w.Close()
	if c.cmd != nil {
		waitDone := make(chan error, 1)
		go func() { waitDone <- c.cmd.Wait() }()

		select {
		case werr := <-waitDone:
			if werr != nil && err == nil {
				err = werr
			}
		case <-time.After(closeGrace):
			_ = c.cmd.Process.Kill()
			<-waitDone
			if err == nil {
				err = fmt.Errorf("%w: server did not exit on EOF, killed", ErrTransport)
			}
		}
	}
	return err
}

// call sends a request and blocks until the matching response, context
// cancellation, or connection shutdown.
func (c *StdioClient) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	var rawParams json.RawMessage
	if params != nil {
		b, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("%w: marshal params: %v", ErrMCP, err)
		}
		rawParams = b
	}

	ch := make(chan *rpcMessage, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	c.nextID++
	id := c.nextID
	c.pending[id] = ch
	msg := rpcMessage{
		JSONRPC: "2.0",
		ID:      json.RawMessage(fmt.Sprintf("%d", id)),
		Method:  method,
		Params:  rawParams,
	}
	err := c.writeLocked(&msg)
	c.mu.Unlock()

	if err != nil {
		c.dropPending(id)
		return nil, err
	}

	select {
	case <-ctx.Done():
		c.dropPending(id)
		return nil, ctx.Err()
	case <-c.done:
		c.dropPending(id)
		if c.readErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrClosed, c.readErr)
		}
		return nil, ErrClosed
	case resp := <-ch:
		if resp.Error != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMCP, method, resp.Error)
		}
		return resp.Result, nil
	}
}

// notify sends a notification (a request without an id, expecting no reply).
func (c *StdioClient) notify(method string, params any) error {
	var rawParams json.RawMessage
	if params != nil {
		b, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("%w: marshal params: %v", ErrMCP, err)
		}
		rawParams = b
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return c.writeLocked(&rpcMessage{JSONRPC: "2.0", Method: method, Params: rawParams})
}

// writeLocked marshals msg and writes it as a single line. Caller holds mu.
func (c *StdioClient) writeLocked(msg *rpcMessage) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%w: marshal message: %v", ErrMCP, err)
	}
	b = append(b, '\n')
	if _, err := c.w.Write(b); err != nil {
		return fmt.Errorf("%w: write: %v", ErrTransport, err)
	}
	return nil
}

func (c *StdioClient) dropPending(id int64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// readLoop routes incoming lines until EOF. Responses are matched to pending
// requests by id; server notifications are ignored.
func (c *StdioClient) readLoop(r io.Reader) {
	scanner := bufio.NewScanner(r)
	// Tool results can be large.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var msg rpcMessage
		if err := json.Unmarshal(line, &msg); err != nil {
			slog.Warn("mcp client: skipping malformed message", "client", c.name, "error", err)
			continue
		}

		if !msg.isResponse() {
			slog.Debug("mcp client: ignoring server message", "client", c.name, "method", msg.Method)
			continue
		}

		var id int64
		if err := json.Unmarshal(msg.ID, &id); err != nil {
			slog.Warn("mcp client: response with non-numeric id", "client", c.name, "id", string(msg.ID))
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[id]
		delete(c.pending, id)
		c.mu.Unlock()

		if ok {
			ch <- &msg
		}
	}

	c.readErr = scanner.Err()
	close(c.done)
}
