// Copyright (c) Microsoft. All rights reserved.

package mcp_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/microsoft/agentkit"
	"github.com/microsoft/agentkit/mcp"
)

// calculatorTools mirrors the tool set of the calculator sample server.
func calculatorTools() []agentkit.Tool {
	type binaryArgs struct {
		A float64 `json:"a" jsonschema:"description=First operand,required"`
		B float64 `json:"b" jsonschema:"description=Second operand,required"`
	}

	add := agentkit.NewTypedTool("add", "Add two numbers",
		func(ctx context.Context, args binaryArgs) (any, error) {
			return args.A + args.B, nil
		},
	)
	subtract := agentkit.NewTypedTool("subtract", "Subtract two numbers",
		func(ctx context.Context, args binaryArgs) (any, error) {
			return args.A - args.B, nil
		},
	)
	divide := agentkit.NewTypedTool("divide", "Divide two numbers",
		func(ctx context.Context, args binaryArgs) (any, error) {
			if args.B == 0 {
				return nil, fmt.Errorf("cannot divide by zero")
			}
			return args.A / args.B, nil
		},
	)

	return []agentkit.Tool{add, subtract, divide}
}

// serveLines runs a server over in-memory buffers and returns the decoded
// responses, one per non-notification request line.
func serveLines(t *testing.T, input string) []map[string]any {
	t.Helper()

	srv := mcp.NewServer("calculator", "1.0.0")
	srv.Register(calculatorTools()...)

	var out bytes.Buffer
	if err := srv.Serve(context.Background(), strings.NewReader(input), &out); err != nil {
		t.Fatalf("Serve: %v", err)
	}

	var responses []map[string]any
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		var resp map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			t.Fatalf("malformed response line %q: %v", scanner.Text(), err)
		}
		responses = append(responses, resp)
	}
	return responses
}

func TestServer_Initialize(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{"tools":{}},"clientInfo":{"name":"test-client","version":"1.0.0"}}}` + "\n"

	responses := serveLines(t, input)
	if len(responses) != 1 {
		t.Fatalf("got %d responses, want 1", len(responses))
	}

	result, ok := responses[0]["result"].(map[string]any)
	if !ok {
		t.Fatalf("no result in response: %v", responses[0])
	}
	if result["protocolVersion"] != "2024-11-05" {
		t.Errorf("protocolVersion = %v", result["protocolVersion"])
	}
	info, _ := result["serverInfo"].(map[string]any)
	if info["name"] != "calculator" {
		t.Errorf("serverInfo.name = %v", info["name"])
	}
}

func TestServer_ToolsList(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}` + "\n" +
		`{"jsonrpc":"2.0","method":"notifications/initialized"}` + "\n" +
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}` + "\n"

	responses := serveLines(t, input)
	if len(responses) != 2 {
		t.Fatalf("got %d responses, want 2 (no reply for the notification)", len(responses))
	}

	result, _ := responses[1]["result"].(map[string]any)
	tools, _ := result["tools"].([]any)
	if len(tools) != 3 {
		t.Fatalf("got %d tools, want 3", len(tools))
	}

	first, _ := tools[0].(map[string]any)
	if first["name"] != "add" {
		t.Errorf("tools[0].name = %v (registration order should hold)", first["name"])
	}
	if _, ok := first["inputSchema"]; !ok {
		t.Error("tools[0] has no inputSchema")
	}
}

func TestServer_ToolsCall(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"add","arguments":{"a":100,"b":200}}}` + "\n"

	responses := serveLines(t, input)
	result, _ := responses[0]["result"].(map[string]any)
	if isErr, _ := result["isError"].(bool); isErr {
		t.Fatalf("unexpected isError: %v", result)
	}

	content, _ := result["content"].([]any)
	if len(content) != 1 {
		t.Fatalf("got %d content items, want 1", len(content))
	}
	item, _ := content[0].(map[string]any)
	if item["type"] != "text" || item["text"] != "300" {
		t.Errorf("content = %v, want text 300", item)
	}
}

func TestServer_ToolErrorBecomesIsError(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"divide","arguments":{"a":1,"b":0}}}` + "\n"

	responses := serveLines(t, input)
	if errObj := responses[0]["error"]; errObj != nil {
		t.Fatalf("tool failure must not be a JSON-RPC error: %v", errObj)
	}

	result, _ := responses[0]["result"].(map[string]any)
	if isErr, _ := result["isError"].(bool); !isErr {
		t.Fatalf("isError not set: %v", result)
	}
	content, _ := result["content"].([]any)
	item, _ := content[0].(map[string]any)
	text, _ := item["text"].(string)
	if !strings.Contains(text, "divide by zero") {
		t.Errorf("error text = %q", text)
	}
}

func TestServer_UnknownToolAndMethod(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"nope"}}` + "\n" +
		`{"jsonrpc":"2.0","id":2,"method":"resources/list"}` + "\n" +
		`not json at all` + "\n"

	responses := serveLines(t, input)
	if len(responses) != 3 {
		t.Fatalf("got %d responses, want 3", len(responses))
	}

	codes := []float64{-32602, -32601, -32700}
	for i, want := range codes {
		errObj, _ := responses[i]["error"].(map[string]any)
		if errObj == nil {
			t.Fatalf("response %d has no error: %v", i, responses[i])
		}
		if got, _ := errObj["code"].(float64); got != want {
			t.Errorf("response %d error code = %v, want %v", i, got, want)
		}
	}
}
