package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{"": LevelInfo, "debug": LevelDebug, "WARN": LevelWarn, "error": LevelError}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestJSONWriterKeyValues(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONWriter(LevelInfo, &buf).With("component", "rebuild")

	logger.DebugContext(context.Background(), "hidden")
	logger.WarnContext(context.Background(), "roster unmapped", "league_id", "L1", "error", errors.New("boom"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line must be filtered: %s", out)
	}
	for _, want := range []string{`"msg":"roster unmapped"`, `"league_id":"L1"`, `"component":"rebuild"`, `"error":"boom"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %s in %s", want, out)
		}
	}
}
