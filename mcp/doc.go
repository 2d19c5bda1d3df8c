// Copyright (c) Microsoft. All rights reserved.

// Package mcp implements the Model Context Protocol over stdio, on both
// sides of the wire.
//
// [StdioClient] spawns an MCP server as a child process, performs the
// initialize handshake, and exposes the server's tools. The Tools method
// adapts them to [agentkit.Tool] so they plug straight into an agent:
//
//	client, err := mcp.Dial(ctx, "calculator", "mcp-calculator")
//	if err != nil { ... }
//	defer client.Close()
//
//	tools, err := client.Tools(ctx)
//	resp, err := agent.Run(ctx, msgs, agentkit.WithRunTools(tools...))
//
// [Server] is the other side: register [agentkit.Tool] values and serve them
// to any MCP client over stdin/stdout:
//
//	srv := mcp.NewServer("calculator", "1.0.0")
//	srv.Register(addTool, subtractTool)
//	srv.ServeStdio(ctx)
//
// # Wire format
//
// Messages are newline-delimited JSON-RPC 2.0. The implemented protocol
// revision is "2024-11-05"; the supported methods are initialize,
// notifications/initialized, ping, tools/list, and tools/call.
package mcp
