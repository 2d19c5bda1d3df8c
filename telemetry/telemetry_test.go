// Copyright (c) Microsoft. All rights reserved.

package telemetry_test

import (
	"context"
	"testing"

	"github.com/microsoft/agentkit/telemetry"
)

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := telemetry.NewProvider(context.Background(), telemetry.Config{})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if err := provider.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}

	// The installed noop provider must still hand out usable tracers.
	tracer := telemetry.Tracer("test")
	_, span := tracer.Start(context.Background(), "op")
	span.End()
}

func TestNewProvider_UnsupportedExporter(t *testing.T) {
	_, err := telemetry.NewProvider(context.Background(), telemetry.Config{
		Enabled:  true,
		Exporter: "carrier-pigeon",
	})
	if err == nil {
		t.Fatal("expected error for unsupported exporter")
	}
}
