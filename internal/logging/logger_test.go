package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetOutputRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "warn")
	defer func() { Logger = nil }()

	Info("hidden")
	Warn("shown", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info should be filtered at warn level, got %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "key=value") {
		t.Errorf("warn line missing, got %q", out)
	}
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "chatty")
	defer func() { Logger = nil }()

	Debug("debug line")
	Info("info line")

	if strings.Contains(buf.String(), "debug line") {
		t.Error("debug should be filtered at the fallback level")
	}
	if !strings.Contains(buf.String(), "info line") {
		t.Error("info should be written at the fallback level")
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	Logger = nil
	Info("x")
	Debug("x")
	Warn("x")
	Error("x")
}

func TestInitCreatesLogFile(t *testing.T) {
	dir := t.TempDir()
	if err := Init(dir, "debug"); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	Close()

	matches, err := filepath.Glob(filepath.Join(dir, "logs", "outfitter-*.log"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one log file, got %v (err %v)", matches, err)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "outfitter started") {
		t.Errorf("log file missing startup line: %q", data)
	}
}
