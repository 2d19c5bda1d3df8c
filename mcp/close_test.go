// Copyright (c) Microsoft. All rights reserved.

package mcp

import (
	"errors"
	"os/exec"
	"testing"
	"time"
)

func TestClose_KillsServerThatIgnoresEOF(t *testing.T) {
	// sleep never reads stdin, so closing the pipe alone would block
	// Wait until the full minute elapsed.
	cmd := exec.Command("sleep", "60")
	stdin, err := cmd.StdinPipe()
	if err != nil {
		t.Fatalf("stdin pipe: %v", err)
	}
	if err := cmd.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	c := &StdioClient{
		name: "stuck",
		cmd:  cmd,
		w:    stdin,
		done: make(chan struct{}),
	}

	oldGrace := closeGrace
	closeGrace = 100 * time.Millisecond
	defer func() { closeGrace = oldGrace }()

	start := time.Now()
	err = c.Close()
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Fatalf("Close took %v, should kill after the grace period", elapsed)
	}
	if !errors.Is(err, ErrTransport) {
		t.Errorf("error = %v, want ErrTransport chain", err)
	}
	if cmd.ProcessState == nil {
		t.Error("process was not reaped")
	} else if cmd.ProcessState.Success() {
		t.Error("process exited normally, expected it to be killed")
	}
}
