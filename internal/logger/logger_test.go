package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{Level: "warn", Format: "json", Out: buf})

	log.Info().Msg("hidden")
	log.Warn().Str("stage", "ingestion").Msg("shown")

	out := strings.TrimSpace(buf.String())
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be filtered at warn level: %s", out)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(out), &entry); err != nil {
		t.Fatalf("expected one json line, got %q: %v", out, err)
	}
	if entry["stage"] != "ingestion" {
		t.Errorf("expected stage field, got %v", entry["stage"])
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"":      zerolog.InfoLevel,
		"DEBUG": zerolog.DebugLevel,
		"error": zerolog.ErrorLevel,
		"bogus": zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := WithContext(context.Background(), New(Options{Format: "json", Out: buf}))

	log := FromContext(ctx)
	log.Info().Msg("test")
	if buf.Len() == 0 {
		t.Error("Expected log output from retrieved logger")
	}
}

func TestFromContext_Nop(t *testing.T) {
	log := FromContext(context.Background())
	if log.GetLevel() != zerolog.Disabled {
		t.Errorf("expected disabled logger, got %v", log.GetLevel())
	}
}

func TestWithFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := WithFields(New(Options{Format: "json", Out: buf}), map[string]any{"file": "a.pdf"})
	log.Info().Msg("x")
	if !strings.Contains(buf.String(), `"file":"a.pdf"`) {
		t.Errorf("missing field in %s", buf.String())
	}
}

func TestEventFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.log")
	w := EventFile(path, 0)
	if _, err := w.Write([]byte("{}\n")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}
