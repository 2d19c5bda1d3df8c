// Copyright (c) Microsoft. All rights reserved.

package mcp

import (
	"context"
	"encoding/json"

	"github.com/microsoft/agentkit"
)

// defaultSchema is used when a server advertises a tool without an input schema.
var defaultSchema = json.RawMessage(`{"type":"object"}`)

// Tools lists the server's tools and adapts each to [agentkit.Tool], so a
// connected MCP server can be handed to an agent like any local tool set.
//
// Tool names are exposed unchanged. If the server's names could collide with
// local tools, pass a distinct connection name to [Dial] and use
// [NamespacedTools] instead.
func (c *StdioClient) Tools(ctx context.Context) ([]agentkit.Tool, error) {
	return c.tools(ctx, false)
}

// NamespacedTools is like Tools but prefixes each tool name with the
// connection name ("calculator_add" for connection "calculator").
func (c *StdioClient) NamespacedTools(ctx context.Context) ([]agentkit.Tool, error) {
	return c.tools(ctx, true)
}

func (c *StdioClient) tools(ctx context.Context, namespaced bool) ([]agentkit.Tool, error) {
	infos, err := c.ListTools(ctx)
	if err != nil {
		return nil, err
	}
	tools := make([]agentkit.Tool, 0, len(infos))
	for _, info := range infos {
		name := info.Name
		if namespaced {
			name = c.name + "_" + info.Name
		}
		tools = append(tools, &serverTool{client: c, info: info, name: name})
	}
	return tools, nil
}

// serverTool adapts one remote MCP tool to the agentkit.Tool interface.
type serverTool struct {
	client *StdioClient
	info   ToolInfo
	name   string
}

var _ agentkit.Tool = (*serverTool)(nil)

func (t *serverTool) Name() string        { return t.name }
func (t *serverTool) Description() string { return t.info.Description }

func (t *serverTool) Parameters() json.RawMessage {
	if len(t.info.InputSchema) == 0 {
		return defaultSchema
	}
	return t.info.InputSchema
}

func (t *serverTool) DeclarationOnly() bool           { return false }
func (t *serverTool) Approval() agentkit.ApprovalMode { return agentkit.ApprovalNever }

// Invoke forwards the call to the server. An isError result surfaces as a
// ToolError so the invocation loop treats it like any failed local tool.
func (t *serverTool) Invoke(ctx context.Context, args json.RawMessage) (any, error) {
	result, err := t.client.CallTool(ctx, t.info.Name, args)
	if err != nil {
		return nil, &agentkit.ToolError{
			ToolName: t.name,
			Message:  err.Error(),
			Err:      agentkit.ErrToolExecution,
		}
	}

	text := result.Text()
	if result.IsError {
		return nil, &agentkit.ToolError{
			ToolName: t.name,
			Message:  text,
			Err:      agentkit.ErrToolExecution,
		}
	}
	return text, nil
}
