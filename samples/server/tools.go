// Copyright (c) Microsoft. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	af "github.com/microsoft/agentkit"
)

// weatherByCity is a canned lookup table standing in for a weather API.
var weatherByCity = map[string]string{
	"Amsterdam": "cloudy with a high of 15°C",
	"New York":  "sunny with a high of 22°C",
	"London":    "rainy with a high of 12°C",
	"Tokyo":     "partly cloudy with a high of 18°C",
	"Sydney":    "sunny with a high of 25°C",
}

// agentTools returns the tool set for the served agent.
func agentTools() []af.Tool {
	weatherTool := af.NewTypedTool("get_weather",
		"Get the current weather for a location.",
		func(ctx context.Context, args struct {
			Location string `json:"location" jsonschema:"description=City name or location,required"`
		}) (any, error) {
			conditions, ok := weatherByCity[args.Location]
			if !ok {
				conditions = "partly cloudy with a high of 20°C"
			}
			return fmt.Sprintf("The weather in %s is %s.", args.Location, conditions), nil
		},
	)

	timeTool := af.NewTool("get_time",
		"Get the current time.",
		json.RawMessage(`{"type":"object","properties":{}}`),
		func(ctx context.Context, args json.RawMessage) (any, error) {
			now := time.Now()
			return map[string]string{
				"time":    now.Format("3:04 PM"),
				"date":    now.Format("Monday, January 2, 2006"),
				"iso8601": now.Format(time.RFC3339),
			}, nil
		},
	)

	tools := []af.Tool{weatherTool, timeTool}
	return append(tools, calculatorTools()...)
}

// calculatorTools returns basic arithmetic tools.
func calculatorTools() []af.Tool {
	type operands struct {
		A float64 `json:"a" jsonschema:"description=First number,required"`
		B float64 `json:"b" jsonschema:"description=Second number,required"`
	}

	return []af.Tool{
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
	}
}
