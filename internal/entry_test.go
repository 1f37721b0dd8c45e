package internal

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestOpenService(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Store.DSN = filepath.Join(t.TempDir(), "shelf.db")

	svc, db, err := OpenService(cfg)
	if err != nil {
		t.Fatalf("OpenService: %v", err)
	}
	defer db.Close()
	if err := svc.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestRunServesAndStops(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.HTTP.Port = freePort(t)
	cfg.Store.DSN = filepath.Join(t.TempDir(), "shelf.db")
	cfg.App.LogLevel = slog.LevelWarn
	level := new(slog.LevelVar)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, WithConfig(cfg), WithLevel(level)) }()

	base := cfg.ResolveBaseURL()
	ready := fmt.Sprintf("http://127.0.0.1:%d/health/ready", cfg.App.HTTP.Port)
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(ready)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("ready status = %d", resp.StatusCode)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server did not start: %v", err)
		}
		time.Sleep(50 * time.Millisecond)
	}

	if level.Level() != slog.LevelWarn {
		t.Errorf("shared level = %v, want WARN", level.Level())
	}

	resp, err := http.Get(base + "/books")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /api/books = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestRunRequiresConfig(t *testing.T) {
	if err := Run(context.Background()); err == nil {
		t.Fatal("expected error without config")
	}
}
