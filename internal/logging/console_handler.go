package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const logTimestampLayout = "2006-01-02 15:04:05"

type prettyHandler struct {
	mu        *sync.Mutex
	writer    io.Writer
	level     *slog.LevelVar
	attrs     []slog.Attr
	groups    []string
	addSource bool
}

func newPrettyHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &prettyHandler{mu: &sync.Mutex{}, writer: w, level: lvl, addSource: addSource}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, record slog.Record) error {
	if record.Level < h.level.Level() {
		return nil
	}

	timestamp := record.Time
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	kvs := make([]kv, 0, record.NumAttrs()+len(h.attrs))
	flattenAttrs(&kvs, h.groups, h.attrs)
	record.Attrs(func(attr slog.Attr) bool {
		flattenAttr(&kvs, h.groups, attr)
		return true
	})

	var component string
	filtered := kvs[:0]
	for _, kv := range kvs {
		if kv.key == "component" {
			if component == "" {
				component = attrString(kv.value)
			}
			continue
		}
		filtered = append(filtered, kv)
	}

	var buf bytes.Buffer
	buf.Grow(128 + len(filtered)*24)

	buf.WriteString(timestamp.In(time.Local).Format(logTimestampLayout))
	buf.WriteByte(' ')
	buf.WriteString(levelLabel(record.Level))
	if component != "" {
		buf.WriteString(" [")
		buf.WriteString(component)
		buf.WriteByte(']')
	}
	buf.WriteByte(' ')
	if msg := strings.TrimSpace(record.Message); msg != "" {
		buf.WriteString(msg)
	} else {
		buf.WriteString("(no message)")
	}

	if h.addSource {
		if src := record.Source(); src != nil {
			buf.WriteString(" [")
			buf.WriteString(filepath.Base(src.File))
			buf.WriteByte(':')
			buf.WriteString(strconv.Itoa(src.Line))
			buf.WriteByte(']')
		}
	}

	for _, kv := range filtered {
		if kv.key == "" {
			continue
		}
		buf.WriteByte(' ')
		buf.WriteString(kv.key)
		buf.WriteByte('=')
		buf.WriteString(formatValue(kv.value))
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := h.clone()
	clone.attrs = append(clone.attrs, attrs...)
	return clone
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := h.clone()
	clone.groups = append(clone.groups, name)
	return clone
}

func (h *prettyHandler) clone() *prettyHandler {
	clone := &prettyHandler{
		mu:        h.mu,
		writer:    h.writer,
		level:     h.level,
		addSource: h.addSource,
	}
	if len(h.attrs) > 0 {
		clone.attrs = make([]slog.Attr, len(h.attrs))
		copy(clone.attrs, h.attrs)
	}
	if len(h.groups) > 0 {
		clone.groups = make([]string, len(h.groups))
		copy(clone.groups, h.groups)
	}
	return clone
}

type kv struct {
	key   string
	value slog.Value
}

func flattenAttrs(dst *[]kv, prefix []string, attrs []slog.Attr) {
	for _, attr := range attrs {
		flattenAttr(dst, prefix, attr)
	}
}

func flattenAttr(dst *[]kv, prefix []string, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	attr.Value = attr.Value.Resolve()
	if attr.Value.Kind() == slog.KindGroup {
		next := prefix
		if attr.Key != "" {
			next = append(append([]string{}, prefix...), attr.Key)
		}
		flattenAttrs(dst, next, attr.Value.Group())
		return
	}
	key := attr.Key
	if len(prefix) > 0 {
		key = strings.Join(append(append([]string{}, prefix...), attr.Key), ".")
	}
	*dst = append(*dst, kv{key: key, value: attr.Value})
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

func attrString(v slog.Value) string {
	v = v.Resolve()
	if v.Kind() == slog.KindString {
		return v.String()
	}
	return formatValue(v)
}

func formatValue(v slog.Value) string {
	v = v.Resolve()
	var s string
	switch v.Kind() {
	case slog.KindString:
		s = v.String()
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().In(time.Local).Format(logTimestampLayout)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = fmt.Sprint(v.Any())
		}
	default:
		s = v.String()
	}
	if needsQuotes(s) {
		return strconv.Quote(s)
	}
	return s
}

func needsQuotes(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if r <= ' ' || r == '=' || r == '"' {
			return true
		}
	}
	return false
}
