package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestRotatingWriter_Rotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor.log")
	w, err := OpenRotating(path, 16)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer w.Close()

	if _, err := w.Write([]byte("0123456789abcdefXYZ")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := w.Write([]byte("fresh")); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	backup, err := os.ReadFile(path + ".1")
	if err != nil {
		t.Fatalf("expected backup file: %v", err)
	}
	if !strings.HasPrefix(string(backup), "0123456789") {
		t.Fatalf("unexpected backup content %q", backup)
	}
	current, _ := os.ReadFile(path)
	if string(current) != "fresh" {
		t.Fatalf("expected fresh log after rotation, got %q", current)
	}
}

func TestOpenRotating_TruncatesOversized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor.log")
	if err := os.WriteFile(path, []byte(strings.Repeat("x", 64)), 0644); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	w, err := OpenRotating(path, 32)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer w.Close()
	if w.size != 0 {
		t.Fatalf("expected truncated file, size %d", w.size)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"WARN":    zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
