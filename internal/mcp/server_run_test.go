package mcp

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestServer_Run_StdioMode(t *testing.T) {
	s, _ := newTestServer(t)
	s.stdin = strings.NewReader("")
	var out bytes.Buffer
	s.stdout = &out

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, expected nil or a context error", err)
	}
}

func TestServer_Run_StdioModeCanceled(t *testing.T) {
	s, _ := newTestServer(t)
	pr, pw := io.Pipe()
	defer pw.Close()
	s.stdin = pr
	s.stdout = &bytes.Buffer{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil && !strings.Contains(err.Error(), "context") {
			t.Errorf("Run() error = %v, expected context-related error", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestServer_Run_ServerMode(t *testing.T) {
	s, _ := newTestServer(t)
	s.config.Mode = "server"
	s.config.Host = "127.0.0.1"
	s.config.Port = 0

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, expected clean shutdown", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run() did not return after the context expired")
	}
}
