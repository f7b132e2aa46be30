package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{"debug", slog.LevelDebug, true},
		{"", slog.LevelInfo, true},
		{"INFO", slog.LevelInfo, true},
		{"warning", slog.LevelWarn, true},
		{"warn", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"loud", slog.LevelInfo, false},
	}
	for _, tc := range cases {
		got, err := ParseLevel(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q: got %v err=%v", tc.in, got, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q: expected error", tc.in)
		}
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Output: &buf, Level: slog.LevelDebug, Component: ComponentStore})
	l.Info("hello", "k", "v")
	out := buf.String()
	if !strings.Contains(out, "component=store") || !strings.Contains(out, "k=v") {
		t.Fatalf("unexpected output: %s", out)
	}

	buf.Reset()
	l.WithComponent(ComponentHTTP).Warn("careful")
	if !strings.Contains(buf.String(), "component=http") {
		t.Fatalf("component not switched: %s", buf.String())
	}
}

func TestLoggerJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Output: &buf, JSON: true})
	l.Error("boom")
	if !strings.Contains(buf.String(), `"component":"app"`) {
		t.Fatalf("expected JSON component field, got %s", buf.String())
	}
}

func TestFromContextFallsBack(t *testing.T) {
	if FromContext(context.Background()).Component() != "unknown" {
		t.Fatalf("expected fallback logger")
	}
	l := Discard()
	ctx := NewContext(context.Background(), l)
	if FromContext(ctx) != l {
		t.Fatalf("expected logger from context")
	}
}

func TestStructuredLoggerLogError(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Output: &buf}))
	sl.LogError(context.Background(), "save failed", errors.New("disk full"), ComponentStorage, OpSave, nil)
	out := buf.String()
	for _, want := range []string{"component=storage", "operation=save", `error="disk full"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %s in %s", want, out)
		}
	}
}
