// Copyright (c) Microsoft. All rights reserved.

// Package agentkit provides the core types and abstractions for building
// AI agents in Go. It includes a composable Agent with tool calling, middleware
// pipelines, thread management, and streaming support.
//
// # Quick Start
//
// Create a ChatClient (e.g., from the openai package) and build an Agent:
//
//	client := openai.New(os.Getenv("OPENAI_API_KEY"), openai.WithModel("gpt-4o"))
//
//	agent := agentkit.NewAgent(client,
//	    agentkit.WithName("assistant"),
//	    agentkit.WithInstructions("You are helpful."),
//	    agentkit.WithTools(myTool),
//	)
//
//	resp, err := agent.Run(ctx, []agentkit.Message{
//	    agentkit.NewUserMessage("Hello!"),
//	})
//
// # Architecture
//
// The package is organized around these key abstractions:
//
//   - [Agent]: the top-level orchestrator that composes a client with tools,
//     middleware, and thread management.
//   - [ChatClient]: interface for LLM backends (implemented by provider packages).
//   - [Tool]: callable functions exposed to the model via function calling.
//   - [Content]: sealed interface with 18 concrete types representing message parts.
//   - [Thread]: manages multi-turn conversation state (service-managed or local).
//   - [ResponseStream]: generic pull-based iterator for streaming responses.
//   - Middleware: three levels (Agent, Chat, Function) for cross-cutting concerns.
//
// # Tools
//
// Use [NewTypedTool] for type-safe tools with automatic JSON Schema generation:
//
//	type WeatherArgs struct {
//	    Location string `json:"location" jsonschema:"description=City name,required"`
//	    Unit     string `json:"unit"     jsonschema:"enum=celsius|fahrenheit"`
//	}
//
//	tool := agentkit.NewTypedTool("get_weather", "Get current weather",
//	    func(ctx context.Context, args WeatherArgs) (any, error) {
//	        return fetchWeather(args.Location, args.Unit)
//	    },
//	)
//
// # Middleware
//
// Add cross-cutting behavior at three levels:
//
//	agent := agentkit.NewAgent(client,
//	    agentkit.WithAgentMiddleware(agentkit.LoggingMiddleware(logger)),
//	    agentkit.WithFunctionMiddleware(rateLimitMiddleware),
//	)
//
// # Threads
//
// Use threads for multi-turn conversations:
//
//	thread := agent.NewThread()
//	resp1, _ := agent.Run(ctx, msgs1, agentkit.WithThread(thread))
//	resp2, _ := agent.Run(ctx, msgs2, agentkit.WithThread(thread))
//
// # Observability
//
// [TracingMiddleware] emits an OpenTelemetry span per agent run, and the
// function invocation loop records a child span per tool call. Configure an
// exporter with the telemetry package:
//
//	provider, _ := telemetry.NewProvider(ctx, telemetry.Config{
//	    Enabled:     true,
//	    ServiceName: "my-agent",
//	    Endpoint:    "localhost:4317",
//	})
//	defer provider.Shutdown(ctx)
//
//	agent := agentkit.NewAgent(client,
//	    agentkit.WithAgentMiddleware(agentkit.TracingMiddleware()),
//	)
//
// # MCP
//
// The mcp package connects agents to Model Context Protocol servers over
// stdio. Tools discovered from an MCP server satisfy the [Tool] interface
// and plug directly into [WithTools] or [WithRunTools].
package agentkit
