// Copyright (c) Microsoft. All rights reserved.

package redisstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"gopkg.in/yaml.v3"

	"github.com/microsoft/agentkit"
	"github.com/microsoft/agentkit/redisstore"
)

func newTestClient(t *testing.T, cfg redisstore.Config) (*redisstore.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	cfg.Address = mr.Addr()

	client, err := redisstore.NewClient(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestNewClient_RequiresAddress(t *testing.T) {
	_, err := redisstore.NewClient(context.Background(), redisstore.Config{})
	if err == nil {
		t.Fatal("expected error for empty address")
	}
}

func TestStore_RoundTrip(t *testing.T) {
	client, _ := newTestClient(t, redisstore.Config{})
	store := client.Store("thread-1")

	ctx := context.Background()
	in := []agentkit.Message{
		agentkit.NewUserMessage("What's the weather in Amsterdam?"),
		{
			Role: agentkit.RoleAssistant,
			Contents: agentkit.Contents{
				&agentkit.FunctionCallContent{
					CallID:    "call-1",
					Name:      "get_weather",
					Arguments: `{"location":"Amsterdam"}`,
				},
			},
		},
		agentkit.NewToolMessage("call-1", "cloudy with a high of 15°C"),
	}

	if err := store.AddMessages(ctx, in); err != nil {
		t.Fatalf("AddMessages: %v", err)
	}

	out, err := store.ListMessages(ctx)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("got %d messages, want 3", len(out))
	}
	if out[0].Role != agentkit.RoleUser || out[0].Text() != "What's the weather in Amsterdam?" {
		t.Errorf("out[0] = %+v", out[0])
	}

	fc, ok := out[1].Contents[0].(*agentkit.FunctionCallContent)
	if !ok {
		t.Fatalf("out[1].Contents[0] = %T, want *FunctionCallContent", out[1].Contents[0])
	}
	if fc.Name != "get_weather" || fc.CallID != "call-1" {
		t.Errorf("function call = %+v", fc)
	}
}

func TestStore_SharedHistoryByKey(t *testing.T) {
	client, _ := newTestClient(t, redisstore.Config{})
	ctx := context.Background()

	first := client.Store("shared")
	if err := first.AddMessages(ctx, []agentkit.Message{agentkit.NewUserMessage("hello")}); err != nil {
		t.Fatalf("AddMessages: %v", err)
	}

	second := client.Store("shared")
	msgs, err := second.ListMessages(ctx)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Text() != "hello" {
		t.Errorf("msgs = %+v", msgs)
	}
}

func TestStore_TTL(t *testing.T) {
	client, mr := newTestClient(t, redisstore.Config{TTL: redisstore.Duration(time.Hour)})
	store := client.Store("expiring")

	if err := store.AddMessages(context.Background(), []agentkit.Message{agentkit.NewUserMessage("hi")}); err != nil {
		t.Fatalf("AddMessages: %v", err)
	}

	if mr.TTL(store.Key()) != time.Hour {
		t.Errorf("TTL = %v, want 1h", mr.TTL(store.Key()))
	}
}

func TestStoreFactory_DistinctKeys(t *testing.T) {
	client, _ := newTestClient(t, redisstore.Config{})
	factory := client.StoreFactory()

	a := factory().(*redisstore.Store)
	b := factory().(*redisstore.Store)
	if a.Key() == b.Key() {
		t.Errorf("factory stores share key %q", a.Key())
	}
}

func TestConfig_DurationFromYAML(t *testing.T) {
	var cfg redisstore.Config
	if err := yaml.Unmarshal([]byte("address: localhost:6379\nttl: 24h\n"), &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if time.Duration(cfg.TTL) != 24*time.Hour {
		t.Errorf("TTL = %v, want 24h", time.Duration(cfg.TTL))
	}

	if err := yaml.Unmarshal([]byte("ttl: not-a-duration\n"), &cfg); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func TestStore_EmptyList(t *testing.T) {
	client, _ := newTestClient(t, redisstore.Config{})
	store := client.Store("missing")

	msgs, err := store.ListMessages(context.Background())
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("got %d messages from missing key", len(msgs))
	}
}
