package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConsoleVerbosity(t *testing.T) {
	tests := []struct {
		name      string
		verbose   bool
		hasBar    bool
		log       func(l *Logger)
		wantShown bool
	}{
		{"info shown", false, false, func(l *Logger) { l.Info("hello %d", 1) }, true},
		{"debug hidden", false, false, func(l *Logger) { l.Debug("hello %d", 1) }, false},
		{"debug verbose", true, false, func(l *Logger) { l.Debug("hello %d", 1) }, true},
		{"warn shown", false, false, func(l *Logger) { l.Warn("hello %d", 1) }, true},
		{"warn hidden behind bar", false, true, func(l *Logger) { l.Warn("hello %d", 1) }, false},
		{"info verbose with bar", true, true, func(l *Logger) { l.Info("hello %d", 1) }, true},
		{"error shown behind bar", false, true, func(l *Logger) { l.Error("hello %d", 1) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewWithOutput(tt.verbose, &buf)
			l.SetProgressBar(tt.hasBar)

			tt.log(l)

			shown := strings.Contains(buf.String(), "hello 1")
			if shown != tt.wantShown {
				t.Errorf("console output = %q, want shown = %v", buf.String(), tt.wantShown)
			}
		})
	}
}

func TestFileLogReceivesEverything(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	var buf bytes.Buffer
	l := NewWithOutput(false, &buf)
	if err := l.SetFileLog(path); err != nil {
		t.Fatalf("SetFileLog() error: %v", err)
	}
	l.SetProgressBar(true)

	l.Debug("probing %s", "a.flac")
	l.Warn("skipped %d", 2)

	if err := l.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %q", len(lines), data)
	}

	var event struct {
		Level   string `json:"level"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(lines[0]), &event); err != nil {
		t.Fatalf("file log is not JSON: %v", err)
	}
	if event.Level != "debug" || event.Message != "probing a.flac" {
		t.Errorf("first event = %+v", event)
	}

	if buf.Len() != 0 {
		t.Errorf("console should be silent, got %q", buf.String())
	}
}

func TestCloseWithoutFile(t *testing.T) {
	l := NewWithOutput(false, &bytes.Buffer{})
	if err := l.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}

func TestSetFileLogBadPath(t *testing.T) {
	l := NewWithOutput(false, &bytes.Buffer{})
	if err := l.SetFileLog(filepath.Join(t.TempDir(), "missing", "dir", "x.log")); err == nil {
		t.Error("expected error for unwritable log path")
	}
}

func TestZerologFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput(false, &buf)

	l.Zerolog().Warn().Str("first", "/one/a.flac").Msg("Skipping a")

	out := buf.String()
	if !strings.Contains(out, "Skipping a") || !strings.Contains(out, "first=/one/a.flac") {
		t.Errorf("console output = %q", out)
	}
}
