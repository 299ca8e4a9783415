package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// CompactHandler writes one line per record:
//
//	2025-11-03 10:40:35  INFO tool call completed → {"duration":"3ms","tool":"substack_get_posts"}
//
// Attribute keys are prefixed by their group names, joined with dots.
type CompactHandler struct {
	level  slog.Leveler
	output io.Writer
	mu     *sync.Mutex
	attrs  []slog.Attr
	groups []string
}

// NewCompactHandler returns a CompactHandler writing records at or above
// level to w.
func NewCompactHandler(w io.Writer, level slog.Leveler) *CompactHandler {
	return &CompactHandler{level: level, output: w, mu: &sync.Mutex{}}
}

func (h *CompactHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *CompactHandler) Handle(_ context.Context, r slog.Record) error {
	buf := make([]byte, 0, 256)
	buf = append(buf, r.Time.Format("2006-01-02 15:04:05")...)
	buf = append(buf, ' ')
	buf = append(buf, fmt.Sprintf("%5s", levelString(r.Level))...)
	buf = append(buf, ' ')
	buf = append(buf, r.Message...)

	attrs := make(map[string]any)
	for _, attr := range h.attrs {
		addAttr(attrs, "", attr)
	}
	prefix := groupPrefix(h.groups)
	r.Attrs(func(attr slog.Attr) bool {
		addAttr(attrs, prefix, attr)
		return true
	})

	if len(attrs) > 0 {
		encoded, err := json.Marshal(attrs)
		if err != nil {
			encoded = []byte(`{"attrs":"unencodable"}`)
		}
		buf = append(buf, " → "...)
		buf = append(buf, encoded...)
	}
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.output.Write(buf)
	return err
}

func (h *CompactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	prefix := groupPrefix(h.groups)
	scoped := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	scoped = append(scoped, h.attrs...)
	for _, attr := range attrs {
		scoped = append(scoped, slog.Attr{Key: prefix + attr.Key, Value: attr.Value})
	}
	clone := *h
	clone.attrs = scoped
	return &clone
}

func (h *CompactHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string{}, h.groups...), name)
	return &clone
}

func groupPrefix(groups []string) string {
	prefix := ""
	for _, g := range groups {
		prefix += g + "."
	}
	return prefix
}

// addAttr flattens group-valued attributes into dotted keys.
func addAttr(attrs map[string]any, prefix string, attr slog.Attr) {
	value := attr.Value.Resolve()
	if value.Kind() == slog.KindGroup {
		groupKey := prefix
		if attr.Key != "" {
			groupKey += attr.Key + "."
		}
		for _, member := range value.Group() {
			addAttr(attrs, groupKey, member)
		}
		return
	}
	if attr.Key == "" {
		return
	}

	switch value.Kind() {
	case slog.KindDuration:
		attrs[prefix+attr.Key] = value.Duration().String()
	case slog.KindTime:
		attrs[prefix+attr.Key] = value.Time().Format("2006-01-02T15:04:05.000Z07:00")
	default:
		if err, ok := value.Any().(error); ok {
			attrs[prefix+attr.Key] = err.Error()
			return
		}
		attrs[prefix+attr.Key] = value.Any()
	}
}

func levelString(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return "DEBUG"
	case level < slog.LevelWarn:
		return "INFO"
	case level < slog.LevelError:
		return "WARN"
	default:
		return "ERROR"
	}
}
