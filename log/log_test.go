package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestDefaultLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	l := newDefaultLogger(&buf)

	l.Debugf("hidden %d", 1)
	if buf.Len() != 0 {
		t.Fatalf("debug written at info level: %q", buf.String())
	}

	l.SetLevel("debug")
	l.Debugf("shown %d", 2)
	if !strings.Contains(buf.String(), "shown 2") {
		t.Fatalf("debug line missing: %q", buf.String())
	}

	buf.Reset()
	l.SetLevel("off")
	l.Errorf("nothing")
	if buf.Len() != 0 {
		t.Fatalf("error written while disabled: %q", buf.String())
	}
}

func TestWithStackIncludesTrace(t *testing.T) {
	var buf bytes.Buffer
	l := newDefaultLogger(&buf)
	l.WithStack("boom")
	out := buf.String()
	if !strings.Contains(out, "boom") || !strings.Contains(out, "log_test.go") {
		t.Fatalf("stack output missing: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"off":     levelOff,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
