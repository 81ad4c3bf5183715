package main

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/enginepoll/internal/config"
	"github.com/vango-dev/enginepoll/internal/errors"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestBuildHandler(t *testing.T) {
	cfg := config.New()
	handler, srv, err := buildHandler(cfg, discardLogger())
	if err != nil {
		t.Fatalf("buildHandler() error: %v", err)
	}
	defer srv.Shutdown()

	rec := get(t, handler, "/engine.io/?EIO=4&transport=polling")
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Body.String(), `0{"sid":`) {
		t.Errorf("handshake = %d %q", rec.Code, rec.Body.String())
	}

	rec = get(t, handler, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "enginepoll_polls_total") {
		t.Error("metrics output missing enginepoll_polls_total")
	}
}

func TestBuildHandlerMetricsDisabled(t *testing.T) {
	cfg := config.New()
	cfg.Metrics.Enabled = false
	handler, srv, err := buildHandler(cfg, discardLogger())
	if err != nil {
		t.Fatalf("buildHandler() error: %v", err)
	}
	defer srv.Shutdown()

	if rec := get(t, handler, "/metrics"); rec.Code != http.StatusNotFound {
		t.Errorf("metrics status = %d, want 404", rec.Code)
	}
}

func TestBuildHandlerInvalidConfig(t *testing.T) {
	cfg := config.New()
	cfg.PollTimeout = "later"
	if _, _, err := buildHandler(cfg, discardLogger()); err == nil {
		t.Error("buildHandler() should reject an invalid config")
	}
}

func TestRunServeStopsOnCancel(t *testing.T) {
	cfg := config.New()
	cfg.Address = "127.0.0.1:0"
	cfg.LogLevel = "error"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runServe(ctx, cfg)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("runServe() error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runServe did not stop")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults without a file", func(t *testing.T) {
		cfg, err := loadConfig(t.TempDir(), "")
		if err != nil {
			t.Fatalf("loadConfig() error: %v", err)
		}
		if cfg.Address != config.DefaultAddress || cfg.File() != "" {
			t.Errorf("loadConfig() = %q from %q, want defaults", cfg.Address, cfg.File())
		}
	})

	t.Run("picks up enginepoll.json in dir", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, config.ConfigFileName), `{"address": ":9001"}`)

		cfg, err := loadConfig(dir, "")
		if err != nil {
			t.Fatalf("loadConfig() error: %v", err)
		}
		if cfg.Address != ":9001" {
			t.Errorf("Address = %q, want :9001", cfg.Address)
		}
		if cfg.File() != filepath.Join(dir, config.ConfigFileName) {
			t.Errorf("File() = %q", cfg.File())
		}
	})

	t.Run("explicit path wins", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, config.ConfigFileName), `{"address": ":9001"}`)
		other := filepath.Join(t.TempDir(), "other.json")
		writeFile(t, other, `{"address": ":9002"}`)

		cfg, err := loadConfig(dir, other)
		if err != nil {
			t.Fatalf("loadConfig() error: %v", err)
		}
		if cfg.Address != ":9002" {
			t.Errorf("Address = %q, want :9002", cfg.Address)
		}
	})

	t.Run("missing explicit path", func(t *testing.T) {
		_, err := loadConfig(t.TempDir(), "nope.json")
		if !stderrors.Is(err, errors.New(errors.ConfigNotFound)) {
			t.Errorf("loadConfig() error = %v, want E100", err)
		}
	})
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}
