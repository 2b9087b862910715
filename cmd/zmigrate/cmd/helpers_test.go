package cmd

import (
	"io"
	"log/slog"
	"testing"

	"github.com/openmailtools/zmigrate/internal/config"
	"github.com/openmailtools/zmigrate/internal/dateutil"
)

func TestFallbackHost(t *testing.T) {
	cfg := &config.Config{}
	if got := fallbackHost(cfg); got != "localhost" {
		t.Errorf("fallbackHost = %q, want localhost", got)
	}

	cfg.Global.FallbackHost = "store1.example.com"
	if got := fallbackHost(cfg); got != "store1.example.com" {
		t.Errorf("fallbackHost = %q, want store1.example.com", got)
	}
}

func TestResolveIncrDate(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name    string
		incr    bool
		at      string
		want    string
		wantErr bool
	}{
		{"incr disabled", false, "07/01/2026", "", false},
		{"no flag", true, "", "", false},
		{"explicit date", true, "07/01/2026", "07/01/2026", false},
		{"bad format", true, "2026-07-01", "", true},
		{"garbage", true, "soon", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldIncr, oldAt := runIncr, runAtTime
			runIncr, runAtTime = tt.incr, tt.at
			defer func() { runIncr, runAtTime = oldIncr, oldAt }()

			got, err := resolveIncrDate(log)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveIncrDate: %v", err)
			}
			if got != tt.want {
				t.Errorf("resolveIncrDate = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveIncrDateCron(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	oldIncr, oldAt := runIncr, runAtTime
	runIncr, runAtTime = true, "cron"
	defer func() { runIncr, runAtTime = oldIncr, oldAt }()

	got, err := resolveIncrDate(log)
	if err != nil {
		t.Fatalf("resolveIncrDate: %v", err)
	}
	if got == "" {
		t.Fatal("cron mode should resolve to a concrete date")
	}
	if !dateutil.Valid(got) {
		t.Errorf("cron date %q is not MM/DD/YYYY", got)
	}
}
