package logging

import (
	"bytes"
	"context"
	"errors"
	"testing"

	sonic "github.com/bytedance/sonic"
	"go.opentelemetry.io/otel/trace"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]Level{
		"debug":   LevelDebug,
		" WARN ":  LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"info":    LevelInfo,
		"":        LevelInfo,
		"verbose": LevelInfo,
	}
	for input, want := range cases {
		if got := ParseLevel(input); got != want {
			t.Fatalf("ParseLevel(%q)=%s want %s", input, got, want)
		}
	}
}

func TestNilLoggerFallsBackToDefault(t *testing.T) {
	t.Parallel()

	var logger *Logger
	logger.Info("ignored", "key", "value")
	if logger.With("k", "v") == nil {
		t.Fatalf("expected non-nil logger from nil receiver")
	}
}

func TestNew_JSONStampsServiceAndTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: LevelInfo, Service: "survivor-league-api", Env: "test", Output: &buf})

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0xab},
		SpanID:     trace.SpanID{0xcd},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	logger.Named("sweeps").InfoContext(ctx, "pass finished", "season_id", "s-1", "error", errors.New("boom"))
	logger.Debug("filtered out")

	var entry map[string]any
	if err := sonic.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected exactly one json entry, got %q: %v", buf.String(), err)
	}
	want := map[string]any{
		"msg":       "pass finished",
		"logger":    "sweeps",
		"service":   "survivor-league-api",
		"env":       "test",
		"season_id": "s-1",
		"error":     "boom",
		"trace_id":  sc.TraceID().String(),
		"span_id":   sc.SpanID().String(),
	}
	for key, value := range want {
		if entry[key] != value {
			t.Fatalf("entry[%q]=%v want %v", key, entry[key], value)
		}
	}
	if _, ok := entry["version"]; ok {
		t.Fatalf("empty version should not be stamped")
	}
}

func TestFields_DanglingAndBadKeys(t *testing.T) {
	got := fields([]any{"ok", 1, 42, "x", "dangling"})
	if len(got) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(got))
	}
	if got[1].Key != "arg" || got[2].Key != "dangling" {
		t.Fatalf("unexpected keys: %q %q", got[1].Key, got[2].Key)
	}
}
