// Copyright (c) Microsoft. All rights reserved.

package mcp

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is.
var (
	// ErrMCP is the base error for MCP failures.
	ErrMCP = errors.New("mcp error")

	// ErrHandshake indicates the initialize exchange failed.
	ErrHandshake = fmt.Errorf("%w: handshake", ErrMCP)

	// ErrClosed is returned when the connection has shut down, either by
	// Close or because the server process exited.
	ErrClosed = fmt.Errorf("%w: connection closed", ErrMCP)

	// ErrTransport indicates a failure reading or writing the stdio pipe.
	ErrTransport = fmt.Errorf("%w: transport", ErrMCP)
)
