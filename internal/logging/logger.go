package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"library-catalog/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level       string
	Format      string
	OutputPaths []string
	Development bool
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	level := parseLevel(opts.Level)
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	paths := opts.OutputPaths
	if len(paths) == 0 {
		paths = []string{"stderr"}
	}
	writer, err := openWriters(paths)
	if err != nil {
		return nil, err
	}

	addSource := opts.Development || level <= slog.LevelDebug

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" || format == "auto" {
		format = detectFormat(paths)
	}

	var handler slog.Handler
	switch format {
	case "json":
		handler = newJSONHandler(writer, levelVar, addSource)
	case "console":
		handler = newPrettyHandler(writer, levelVar, addSource)
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
	return slog.New(handler), nil
}

// NewFromConfig creates a logger from the [logging] section of cfg.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{Level: "warn", Format: "auto"})
	}
	outputs := []string{"stderr"}
	if cfg.Logging.File != "" {
		outputs = append(outputs, cfg.Logging.File)
	}
	return New(Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: outputs,
	})
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// detectFormat resolves "auto": console only when every sink is an
// interactive terminal.
func detectFormat(paths []string) string {
	for _, p := range paths {
		switch strings.TrimSpace(p) {
		case "stderr":
			if !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()) {
				return "json"
			}
		case "stdout":
			if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
				return "json"
			}
		default:
			return "json"
		}
	}
	return "console"
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	case "warn", "":
		return slog.LevelWarn
	default:
		return slog.LevelWarn
	}
}

func openWriters(paths []string) (io.Writer, error) {
	seen := map[string]struct{}{}
	var writers []io.Writer
	for _, path := range paths {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}

		switch trimmed {
		case "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
		default:
			if dir := filepath.Dir(trimmed); dir != "." && dir != "" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return nil, fmt.Errorf("ensure log directory: %w", err)
				}
			}
			file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
			if err != nil {
				return nil, fmt.Errorf("open log file %s: %w", trimmed, err)
			}
			writers = append(writers, file)
		}
	}

	switch len(writers) {
	case 0:
		return os.Stderr, nil
	case 1:
		return writers[0], nil
	default:
		return io.MultiWriter(writers...), nil
	}
}

func newJSONHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	opts := slog.HandlerOptions{
		Level:     lvl,
		AddSource: addSource,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.TimeKey:
				attr.Key = "ts"
				if attr.Value.Kind() == slog.KindTime {
					attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339))
				}
			case slog.LevelKey:
				attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
			case slog.SourceKey:
				if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
					attr.Value = slog.StringValue(fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
				}
			}
			return attr
		},
	}
	return slog.NewJSONHandler(w, &opts)
}
