package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/openmailtools/zmigrate/internal/config"
)

func TestInitCreatesValidConfig(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "zmigrate.yaml")

	// Override the global configPath used by the init command.
	old := configPath
	configPath = outPath
	defer func() { configPath = old }()

	initForce = false
	if err := initCmd.RunE(initCmd, nil); err != nil {
		t.Fatalf("init: %v", err)
	}

	// The scaffold must load and validate as-is.
	cfg, err := config.Load(outPath)
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if cfg.Source.Host == "" || cfg.Destination.Host == "" {
		t.Error("generated config is missing cluster hosts")
	}
	if len(cfg.Stores) == 0 {
		t.Error("generated config has no stores")
	}
}

func TestInitRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "zmigrate.yaml")

	if err := os.WriteFile(outPath, []byte("existing"), 0644); err != nil {
		t.Fatal(err)
	}

	old := configPath
	configPath = outPath
	defer func() { configPath = old }()

	initForce = false
	err := initCmd.RunE(initCmd, nil)
	if err == nil {
		t.Fatal("expected error when file exists")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Errorf("error should mention 'already exists': %v", err)
	}
}

func TestInitForceOverwrites(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "zmigrate.yaml")

	if err := os.WriteFile(outPath, []byte("old content"), 0644); err != nil {
		t.Fatal(err)
	}

	old := configPath
	configPath = outPath
	defer func() { configPath = old }()

	initForce = true
	if err := initCmd.RunE(initCmd, nil); err != nil {
		t.Fatalf("init --force: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) == "old content" {
		t.Error("file was not overwritten")
	}
}
