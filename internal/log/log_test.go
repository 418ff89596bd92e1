package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileSinkWritesLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	SetFile(path, 1, 1)
	defer SetFile("", 0, 0)

	Info("panel refreshed", "dur", "18s")
	Error("fetch failed", os.ErrDeadlineExceeded, "stage", "fetcher")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file: %v", err)
	}
	text := string(data)

	if !strings.Contains(text, "[INFO] panel refreshed dur=18s") {
		t.Errorf("info line missing:\n%s", text)
	}
	if !strings.Contains(text, "[ERROR] fetch failed err=") {
		t.Errorf("error line missing:\n%s", text)
	}
	if !strings.Contains(text, "stage=fetcher") {
		t.Errorf("kv missing:\n%s", text)
	}
}

func TestLevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	SetFile(path, 1, 1)
	defer SetFile("", 0, 0)

	SetLevel(LevelError)
	defer SetLevel(LevelInfo)

	Info("quiet")
	Warn("also quiet")
	Error("loud", os.ErrClosed)

	data, _ := os.ReadFile(path)
	text := string(data)
	if strings.Contains(text, "quiet") {
		t.Errorf("filtered lines leaked:\n%s", text)
	}
	if !strings.Contains(text, "loud") {
		t.Errorf("error line missing:\n%s", text)
	}
}

func TestFormatKVsSkipsNonStringKeys(t *testing.T) {
	got := formatKVs("a", 1, 2, "ignored", "b", "x")
	if got != " a=1 b=x" {
		t.Errorf("formatKVs=%q", got)
	}
}
