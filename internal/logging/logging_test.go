package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetupWritesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity-migration.log")
	log := Setup(path, "info")

	log.Info("migration starting", "accounts", 3)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file: %v", err)
	}
	if !strings.Contains(string(data), "migration starting") {
		t.Errorf("log file content = %q", data)
	}
	if !strings.Contains(string(data), "accounts=3") {
		t.Errorf("log attributes missing: %q", data)
	}
}

func TestSetupRespectsLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity-migration.log")
	log := Setup(path, "error")

	log.Info("should be filtered")
	log.Error("should appear")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file: %v", err)
	}
	if strings.Contains(string(data), "should be filtered") {
		t.Error("info line should be filtered at error level")
	}
	if !strings.Contains(string(data), "should appear") {
		t.Error("error line missing")
	}
}
