package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"library-catalog/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if resolved != filepath.Join(tempHome, ".config", "lms", "config.toml") {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}

	wantState := filepath.Join(tempHome, ".local", "share", "lms", "catalog.txt")
	if cfg.Paths.StateFile != wantState {
		t.Fatalf("unexpected state file: got %q want %q", cfg.Paths.StateFile, wantState)
	}
	if cfg.Logging.Format != "auto" || cfg.Logging.Level != "warn" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if cfg.LockTimeout().Seconds() != 5 {
		t.Fatalf("unexpected lock timeout: %v", cfg.LockTimeout())
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[paths]
state_file = "` + filepath.ToSlash(filepath.Join(dir, "from-file.txt")) + `"

[lock]
timeout_seconds = 0

[logging]
format = "JSON"
level = "debug"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if cfg.Paths.StateFile != filepath.Join(dir, "from-file.txt") {
		t.Fatalf("unexpected state file: %q", cfg.Paths.StateFile)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging: %+v", cfg.Logging)
	}
	if cfg.LockTimeout() != 0 {
		t.Fatalf("unexpected lock timeout: %v", cfg.LockTimeout())
	}

	override := filepath.Join(dir, "from-env.txt")
	t.Setenv("LMS_STATE_FILE", override)
	t.Setenv("LMS_LOG_LEVEL", "ERROR")
	cfg, _, _, err = config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.StateFile != override {
		t.Fatalf("expected env state file, got %q", cfg.Paths.StateFile)
	}
	if cfg.Logging.Level != "error" {
		t.Fatalf("expected env log level, got %q", cfg.Logging.Level)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "bad format", body: "[logging]\nformat = \"xml\"\n", want: "logging.format"},
		{name: "bad level", body: "[logging]\nlevel = \"loud\"\n", want: "logging.level"},
		{name: "negative timeout", body: "[lock]\ntimeout_seconds = -1\n", want: "lock.timeout_seconds"},
		{name: "unknown key", body: "[paths]\nstate = \"x\"\n", want: "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.body), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var decoded config.Config
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("sample is not valid TOML: %v", err)
	}

	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("Load(sample) = exists %v, err %v", exists, err)
	}
}

func TestEncodeRoundTrips(t *testing.T) {
	cfg := config.Default()
	text, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var decoded config.Config
	if err := toml.Unmarshal([]byte(text), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded != cfg {
		t.Fatalf("round trip mismatch: %+v != %+v", decoded, cfg)
	}
}
