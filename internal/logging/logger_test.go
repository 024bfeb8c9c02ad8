package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func newBufferLogger(t *testing.T, format string) (*slog.Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelDebug)

	var handler slog.Handler
	switch format {
	case "json":
		handler = newJSONHandler(buf, levelVar, false)
	default:
		handler = newConsoleHandler(buf, levelVar, false)
	}
	return slog.New(handler), buf
}

func TestConsoleHandlerFoldsComponentIntoPrefix(t *testing.T) {
	logger, buf := newBufferLogger(t, "console")
	NewComponentLogger(logger, "curator").Info("lineup finalized", Int("candidates", 5))

	line := buf.String()
	if !strings.Contains(line, "INFO curator: lineup finalized") {
		t.Fatalf("expected component prefix, got %q", line)
	}
	if !strings.Contains(line, "candidates=5") {
		t.Fatalf("expected attr in output, got %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should not appear as key=value, got %q", line)
	}
}

func TestConsoleHandlerQuotesValuesWithSpaces(t *testing.T) {
	logger, buf := newBufferLogger(t, "console")
	logger.Info("note", String("title", "The Third Man"))
	if !strings.Contains(buf.String(), `title="The Third Man"`) {
		t.Fatalf("expected quoted title, got %q", buf.String())
	}
}

func TestJSONHandlerRenamesCoreKeys(t *testing.T) {
	logger, buf := newBufferLogger(t, "json")
	logger.Info("hello", String("curator", "sofia"))

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if payload["msg"] != "hello" {
		t.Fatalf("expected msg key, got %v", payload)
	}
	if payload["level"] != "info" {
		t.Fatalf("expected lowercase level, got %v", payload["level"])
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", payload)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNoopHandlerDiscards(t *testing.T) {
	logger := NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("noop logger should report disabled")
	}
	logger.Error("ignored")
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	logger, buf := newBufferLogger(t, "console")
	WarnWithContext(logger, "degraded parse", "parse_error")

	line := buf.String()
	for _, want := range []string{"event_type=parse_error", "error_hint=", "impact="} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
}
