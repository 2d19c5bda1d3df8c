// Copyright (c) Microsoft. All rights reserved.

// Command mcp demonstrates an agent using tools served by an external MCP
// server over stdio. It spawns the calculator server, adapts its tools, and
// asks the agent a math question.
//
// Usage (from the repository root):
//
//	export OPENAI_API_KEY=sk-...
//	go run ./samples/mcp
//
// A different server command can be given with --server:
//
//	go run ./samples/mcp --server "python3 stdio-server.py"
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	af "github.com/microsoft/agentkit"
	"github.com/microsoft/agentkit/mcp"
	"github.com/microsoft/agentkit/openai"
)

func main() {
	serverCmd := flag.String("server", "go run ./samples/mcpserver", "command to launch the MCP server")
	flag.Parse()

	_ = godotenv.Load()

	if os.Getenv("DEBUG") != "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal("Set OPENAI_API_KEY")
	}

	ctx := context.Background()

	// Spawn the calculator MCP server and perform the handshake.
	parts := strings.Fields(*serverCmd)
	calc, err := mcp.Dial(ctx, "calculator", parts[0], parts[1:]...)
	if err != nil {
		log.Fatalf("mcp dial: %v", err)
	}
	defer calc.Close()

	fmt.Printf("Connected to MCP server: %s\n", calc.ServerInfo().Name)

	// Adapt the server's tools for the agent.
	tools, err := calc.Tools(ctx)
	if err != nil {
		log.Fatalf("mcp tools: %v", err)
	}
	for _, t := range tools {
		fmt.Printf("  tool: %s\n", t.Name())
	}

	client := openai.New(apiKey, openai.WithModel("gpt-4o"))
	agent := af.NewAgent(client,
		af.WithName("MathAgent"),
		af.WithInstructions("You are a helpful math assistant that can solve calculations."),
		af.WithTools(tools...),
	)

	resp, err := agent.Run(ctx, []af.Message{
		af.NewUserMessage("What is 100 + 200 - 50"),
	})
	if err != nil {
		log.Fatalf("agent run: %v", err)
	}

	fmt.Println(resp.Text())
}
