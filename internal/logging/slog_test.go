package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warning": slog.LevelWarn,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"loud":    slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_JSONConsole(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger, closer, err := New(Config{Level: "debug", JSON: true}, &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer closer.Close()

	logger.With(Field{Key: "job", Value: "stats"}).Debug("records located", Field{Key: "count", Value: 2})

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if m["msg"] != "records located" || m["level"] != "DEBUG" {
		t.Errorf("unexpected entry %v", m)
	}
	if m["job"] != "stats" || m["count"] != float64(2) {
		t.Errorf("expected job and count attrs, got %v", m)
	}
}

func TestNew_LevelFilters(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger, closer, err := New(Config{Level: "warn"}, &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer closer.Close()

	logger.Info("quiet")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered, got %q", buf.String())
	}
	logger.Warn("loud", Field{Key: "error", Value: errors.New("boom")})
	if !strings.Contains(buf.String(), "loud") || !strings.Contains(buf.String(), "boom") {
		t.Errorf("expected warning with error, got %q", buf.String())
	}
}

func TestNew_FileSink(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "logs", "tempusfetch.log")
	var console bytes.Buffer

	logger, closer, err := New(Config{Level: "info", File: path}, &console)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("results saved", Field{Key: "path", Value: "output.json"})
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if !strings.Contains(console.String(), "results saved") {
		t.Errorf("expected console entry, got %q", console.String())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &m); err != nil {
		t.Fatalf("decode %q: %v", data, err)
	}
	if m["msg"] != "results saved" || m["path"] != "output.json" {
		t.Errorf("unexpected file entry %v", m)
	}
}
