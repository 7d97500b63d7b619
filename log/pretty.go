package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
)

// ANSI color codes for pretty printing.
const (
	colorReset   = "\033[0m"
	colorGray    = "\033[90m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
)

type prettyMode int

const (
	prettyText prettyMode = iota
	prettyJSON
)

// prettyHandler renders records as colorized key=value lines or as indented
// JSON-like objects. Groups, including the group values produced by
// slog.LogValuer errors, are flattened to dotted keys in text mode and
// nested in JSON mode.
type prettyHandler struct {
	opts   slog.HandlerOptions
	mode   prettyMode
	mu     *sync.Mutex
	w      io.Writer
	attrs  []slog.Attr
	groups []string
}

func newPrettyHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	mode prettyMode,
) *prettyHandler {
	return &prettyHandler{opts: *opts, mode: mode, mu: &sync.Mutex{}, w: w}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}

	return level >= minLevel
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], nest(h.groups, attrs)...)

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.groups = append(h.groups[:len(h.groups):len(h.groups)], name)

	return &c
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	head := make([]slog.Attr, 0, 4)

	if !r.Time.IsZero() {
		head = append(head, h.replace(slog.Time(slog.TimeKey, r.Time)))
	}

	head = append(head, h.replace(slog.Any(slog.LevelKey, r.Level)))

	if h.opts.AddSource {
		if src := r.Source(); src != nil && src.File != "" {
			head = append(head,
				slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", src.File, src.Line)))
		}
	}

	head = append(head, slog.String(slog.MessageKey, r.Message))

	rec := make([]slog.Attr, 0, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		rec = append(rec, a)

		return true
	})

	all := make([]slog.Attr, 0, len(head)+len(h.attrs)+len(rec))
	all = append(append(append(all, head...), h.attrs...), nest(h.groups, rec)...)

	buf := new(bytes.Buffer)

	switch h.mode {
	case prettyJSON:
		h.writeObject(buf, 1, all, r.Level)
	default:
		for _, a := range all {
			h.writeFlat(buf, "", a, r.Level)
		}
	}

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) replace(a slog.Attr) slog.Attr {
	if h.opts.ReplaceAttr == nil {
		return a
	}

	return h.opts.ReplaceAttr(nil, a)
}

// nest wraps attrs in one group per name, outermost first.
func nest(groups []string, attrs []slog.Attr) []slog.Attr {
	if len(attrs) == 0 {
		return nil
	}

	for i := len(groups) - 1; i >= 0; i-- {
		attrs = []slog.Attr{{Key: groups[i], Value: slog.GroupValue(attrs...)}}
	}

	return attrs
}

func (h *prettyHandler) writeFlat(
	buf *bytes.Buffer,
	prefix string,
	a slog.Attr,
	level slog.Level,
) {
	v := a.Value.Resolve()
	if a.Key == "" && v.Kind() != slog.KindGroup {
		return
	}

	if v.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}

		for _, sub := range v.Group() {
			h.writeFlat(buf, prefix, sub, level)
		}

		return
	}

	if buf.Len() > 0 {
		buf.WriteByte(' ')
	}

	colorize(buf, colorGray, prefix+a.Key)
	buf.WriteByte('=')
	h.writeValue(buf, prefix == "" && a.Key == slog.LevelKey, v, level)
}

func (h *prettyHandler) writeObject(
	buf *bytes.Buffer,
	depth int,
	attrs []slog.Attr,
	level slog.Level,
) {
	buf.WriteString("{")

	n := 0

	for _, a := range attrs {
		v := a.Value.Resolve()
		if a.Key == "" {
			continue
		}

		if n > 0 {
			buf.WriteByte(',')
		}

		n++

		buf.WriteByte('\n')
		buf.WriteString(strings.Repeat("  ", depth))
		colorize(buf, colorGray, a.Key)
		buf.WriteString(": ")

		if v.Kind() == slog.KindGroup {
			h.writeObject(buf, depth+1, v.Group(), level)

			continue
		}

		h.writeValue(buf, depth == 1 && a.Key == slog.LevelKey, v, level)
	}

	if n > 0 {
		buf.WriteByte('\n')
		buf.WriteString(strings.Repeat("  ", depth-1))
	}

	buf.WriteString("}")
}

func (h *prettyHandler) writeValue(
	buf *bytes.Buffer,
	isLevel bool,
	v slog.Value,
	level slog.Level,
) {
	if isLevel {
		colorize(buf, levelColor(level), v.String())

		return
	}

	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if h.mode == prettyJSON {
			s = strconv.Quote(s)
		}

		colorize(buf, colorCyan, s)

	case slog.KindInt64, slog.KindUint64, slog.KindFloat64:
		colorize(buf, colorYellow, v.String())

	case slog.KindBool:
		if v.Bool() {
			colorize(buf, colorGreen, "true")
		} else {
			colorize(buf, colorRed, "false")
		}

	case slog.KindDuration:
		colorize(buf, colorMagenta, v.Duration().String())

	case slog.KindTime:
		colorize(buf, colorBlue, v.Time().String())

	default:
		if v.Any() == nil {
			colorize(buf, colorGray, "null")

			return
		}

		colorize(buf, colorCyan, v.String())
	}
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return colorRed
	case level >= slog.LevelWarn:
		return colorYellow
	case level >= slog.LevelInfo:
		return colorGreen
	case level >= slog.LevelDebug:
		return colorBlue
	default:
		return colorMagenta
	}
}

func colorize(buf *bytes.Buffer, color, s string) {
	buf.WriteString(color)
	buf.WriteString(s)
	buf.WriteString(colorReset)
}
