// Copyright (c) Microsoft. All rights reserved.

// Command mcpserver is a calculator tool server speaking the Model Context
// Protocol over stdio. It exposes add, subtract, multiply, and divide tools
// and is intended to be spawned by an MCP client such as the mcp sample:
//
//	go run ./samples/mcpserver
package main

import (
	"context"
	"log/slog"
	"os"

	af "github.com/microsoft/agentkit"
	"github.com/microsoft/agentkit/mcp"
)

type operands struct {
	A float64 `json:"a" jsonschema:"description=First number,required"`
	B float64 `json:"b" jsonschema:"description=Second number,required"`
}

func main() {
	// Stdout carries the protocol; all logging goes to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	srv := mcp.NewServer("calculator", "1.0.0")
	srv.Register(
		af.NewTypedTool("add", "Add two numbers together.",
			func(ctx context.Context, args operands) (any, error) {
				return args.A + args.B, nil
			}),
		af.NewTypedTool("subtract", "Subtract the second number from the first.",
			func(ctx context.Context, args operands) (any, error) {
				return args.A - args.B, nil
			}),
		af.NewTypedTool("multiply", "Multiply two numbers.",
			func(ctx context.Context, args operands) (any, error) {
				return args.A * args.B, nil
			}),
		af.NewTypedTool("divide", "Divide the first number by the second.",
			func(ctx context.Context, args operands) (any, error) {
				if args.B == 0 {
					return nil, &af.ToolError{ToolName: "divide", Message: "cannot divide by zero"}
				}
				return args.A / args.B, nil
			}),
	)

	if err := srv.ServeStdio(context.Background()); err != nil {
		log.Error("mcp server failed", "error", err)
		os.Exit(1)
	}
}
