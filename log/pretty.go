package log

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/charmbracelet/lipgloss"
)

// prettyHandler writes one human-oriented line per record:
//
//	TIME LEVEL message key=value group.key=value
//
// Colors are chosen by a lipgloss renderer bound to the output, so they
// disappear when the output is not a terminal.
type prettyHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	style  *prettyStyle
	prefix string // group path of subsequent attrs, with trailing dot
	attrs  []byte // preformatted attrs from WithAttrs
}

type prettyStyle struct {
	time, key, source lipgloss.Style
	levels            map[slog.Level]lipgloss.Style
}

func newPrettyStyle(w io.Writer) *prettyStyle {
	r := lipgloss.NewRenderer(w)
	base := r.NewStyle().TabWidth(lipgloss.NoTabConversion)

	return &prettyStyle{
		time:   base.Faint(true),
		key:    base.Foreground(lipgloss.Color("8")),
		source: base.Foreground(lipgloss.Color("5")),
		levels: map[slog.Level]lipgloss.Style{
			slog.Level(LevelTrace): base.Foreground(lipgloss.Color("4")),
			slog.Level(LevelDebug): base.Foreground(lipgloss.Color("12")),
			slog.Level(LevelInfo):  base.Foreground(lipgloss.Color("10")),
			slog.Level(LevelWarn):  base.Foreground(lipgloss.Color("11")),
			slog.Level(LevelError): base.Foreground(lipgloss.Color("9")).Bold(true),
		},
	}
}

func (s *prettyStyle) level(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return s.levels[slog.LevelError]
	case l >= slog.LevelWarn:
		return s.levels[slog.LevelWarn]
	case l >= slog.LevelInfo:
		return s.levels[slog.LevelInfo]
	case l >= slog.LevelDebug:
		return s.levels[slog.LevelDebug]
	default:
		return s.levels[slog.Level(LevelTrace)]
	}
}

func newPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *prettyHandler {
	return &prettyHandler{
		opts:  *opts,
		mu:    &sync.Mutex{},
		w:     w,
		style: newPrettyStyle(w),
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}

	return level >= threshold
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	if !r.Time.IsZero() {
		if a := h.builtin(slog.Time(slog.TimeKey, r.Time)); !a.Equal(slog.Attr{}) {
			buf.WriteString(h.style.time.Render(a.Value.String()))
			buf.WriteByte(' ')
		}
	}

	level := strings.ToUpper(Level(r.Level).String())
	if a := h.builtin(slog.Any(slog.LevelKey, r.Level)); a.Value.Kind() == slog.KindString {
		level = a.Value.String()
	}

	buf.WriteString(h.style.level(r.Level).Render(padRight(level, 5)))
	buf.WriteByte(' ')

	if h.opts.AddSource && r.PC != 0 {
		if src := r.Source(); src != nil {
			loc := src.File + ":" + strconv.Itoa(src.Line)
			if i := strings.LastIndexByte(src.File, '/'); i >= 0 {
				loc = src.File[i+1:] + ":" + strconv.Itoa(src.Line)
			}

			buf.WriteString(h.style.source.Render(loc))
			buf.WriteByte(' ')
		}
	}

	buf.WriteString(r.Message)
	buf.Write(h.attrs)

	r.Attrs(func(a slog.Attr) bool {
		h.appendAttr(&buf, h.prefix, a)

		return true
	})

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	buf := bytes.NewBuffer(append([]byte(nil), h.attrs...))
	for _, a := range attrs {
		h.appendAttr(buf, h.prefix, a)
	}

	c := *h
	c.attrs = buf.Bytes()

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

func (h *prettyHandler) builtin(a slog.Attr) slog.Attr {
	if h.opts.ReplaceAttr == nil {
		return a
	}

	return h.opts.ReplaceAttr(nil, a)
}

// appendAttr writes a as " key=value", flattening groups into dotted keys.
func (h *prettyHandler) appendAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()

	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}

		for _, g := range a.Value.Group() {
			h.appendAttr(buf, prefix, g)
		}

		return
	}

	buf.WriteByte(' ')
	buf.WriteString(h.style.key.Render(prefix + a.Key + "="))
	buf.WriteString(quoteValue(a.Value.String()))
}

// quoteValue quotes s when it would not read back as a single token.
func quoteValue(s string) string {
	if s == "" {
		return `""`
	}

	for _, r := range s {
		if unicode.IsSpace(r) || r == '"' || r == '=' || !unicode.IsPrint(r) {
			return strconv.Quote(s)
		}
	}

	return s
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}

	return s + strings.Repeat(" ", n-len(s))
}
