package logging_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"library-catalog/internal/config"
	"library-catalog/internal/logging"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(content)
}

func TestConsoleLoggerFormatsLine(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.With("component", "library").Info("book added", "title", "Dune Messiah", "count", 2)

	content := readLog(t, logPath)
	for _, want := range []string{"INFO [library] book added", `title="Dune Messiah"`, "count=2"} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %q in %q", want, content)
		}
	}
	if strings.Contains(content, "component=") {
		t.Fatalf("component should be rendered in the header, got %q", content)
	}
	if strings.Contains(content, ".go:") {
		t.Fatalf("expected no caller information at info level, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "debug.log")
	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "debug",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.WithGroup("lock").Debug("waiting", "path", "catalog.txt.lock")

	content := readLog(t, logPath)
	if !strings.Contains(content, "logger_test.go:") {
		t.Fatalf("expected caller information, got %q", content)
	}
	if !strings.Contains(content, "lock.path=catalog.txt.lock") {
		t.Fatalf("expected grouped key, got %q", content)
	}
}

func TestJSONLoggerWritesObjects(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{
		Format:      "json",
		Level:       "warn",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("suppressed")
	logger.Warn("closing with unsaved changes", "error", errors.New("boom"))

	lines := strings.Split(strings.TrimSpace(readLog(t, logPath)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d: %q", len(lines), lines)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode json line: %v", err)
	}
	if entry["level"] != "warn" || entry["msg"] != "closing with unsaved changes" || entry["error"] != "boom" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key in %v", entry)
	}
}

func TestAutoFormatUsesJSONForFiles(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "auto.log")
	logger, err := logging.New(logging.Options{Format: "auto", Level: "error", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Error("failed")
	if content := readLog(t, logPath); !strings.HasPrefix(content, "{") {
		t.Fatalf("expected json output, got %q", content)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Format = "json"
	cfg.Logging.Level = "info"
	cfg.Logging.File = filepath.Join(t.TempDir(), "logs", "lms.log")

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("state saved", "books", 3)

	if content := readLog(t, cfg.Logging.File); !strings.Contains(content, `"books":3`) {
		t.Fatalf("unexpected log file contents %q", content)
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(t.Context(), 12) {
		t.Fatal("nop logger should not be enabled")
	}
	logger.Error("ignored")
}
