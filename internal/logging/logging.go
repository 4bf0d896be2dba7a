package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gookit/color"
)

// Level markers prefixed to each record.
const (
	debugMark = ".. "
	infoMark  = "-> "
	warnMark  = "!! "
	errorMark = "xx "
)

// Styles applied to markers and attributes when color is enabled.
var (
	debugStyle = color.New(color.FgDarkGray)
	infoStyle  = color.New(color.FgCyan, color.OpBold)
	warnStyle  = color.New(color.FgYellow, color.OpBold)
	errorStyle = color.New(color.FgRed, color.OpBold)
	attrStyle  = color.New(color.FgDarkGray)
)

// Shared, reconfigurable handler settings.
//
// All handler clones produced by WithAttrs and WithGroup point at the same
// config, so reconfiguring the root handler (after flag parsing) affects
// every logger derived from it.
type config struct {
	mu        sync.Mutex
	w         io.Writer
	level     slog.Level
	colored   bool
	verbose   bool
	buffering bool
	buffered  []entry
}

// A record captured while the handler is still buffering, together with the
// handler state it was logged through.
type entry struct {
	record slog.Record
	attrs  []slog.Attr
	groups []string
}

// Renders records as terse single lines for terminal output.
//
// A new handler starts in buffering mode: records are held until [Flush] is
// called, so output logged before flag parsing is rendered with the final
// level, color, and verbosity settings.
type Handler struct {
	cfg    *config
	attrs  []slog.Attr
	groups []string
}

// Creates a handler writing to w at [slog.LevelInfo].
func NewHandler(w io.Writer) *Handler {
	return &Handler{
		cfg: &config{
			w:         w,
			level:     slog.LevelInfo,
			buffering: true,
		},
	}
}

// Sets the minimum level rendered after the handler is flushed.
func (h *Handler) SetLevel(level slog.Level) {
	h.cfg.mu.Lock()
	defer h.cfg.mu.Unlock()
	h.cfg.level = level
}

// Enables or disables colored markers and attributes.
func (h *Handler) SetColor(enabled bool) {
	h.cfg.mu.Lock()
	defer h.cfg.mu.Unlock()
	h.cfg.colored = enabled
}

// Enables or disables verbose rendering (timestamps on every record).
func (h *Handler) SetVerbose(enabled bool) {
	h.cfg.mu.Lock()
	defer h.cfg.mu.Unlock()
	h.cfg.verbose = enabled
}

// Redirects output to w.
func (h *Handler) SetStream(w io.Writer) {
	h.cfg.mu.Lock()
	defer h.cfg.mu.Unlock()
	h.cfg.w = w
}

// Ends buffering and replays held records with the current settings.
//
// Records below the configured level are dropped during the replay. Calling
// Flush more than once is harmless.
func (h *Handler) Flush() {
	h.cfg.mu.Lock()
	defer h.cfg.mu.Unlock()

	h.cfg.buffering = false
	for _, e := range h.cfg.buffered {
		if e.record.Level >= h.cfg.level {
			h.write(e.record, e.attrs, e.groups)
		}
	}
	h.cfg.buffered = nil
}

// Reports whether a record at the given level would be rendered.
//
// While buffering, all levels are accepted so that records logged before
// configuration are not lost.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	h.cfg.mu.Lock()
	defer h.cfg.mu.Unlock()
	if h.cfg.buffering {
		return true
	}
	return level >= h.cfg.level
}

// Renders a record, or holds it when the handler is still buffering.
func (h *Handler) Handle(_ context.Context, record slog.Record) error {
	h.cfg.mu.Lock()
	defer h.cfg.mu.Unlock()

	if h.cfg.buffering {
		h.cfg.buffered = append(h.cfg.buffered, entry{
			record: record.Clone(),
			attrs:  h.attrs,
			groups: h.groups,
		})
		return nil
	}

	if record.Level < h.cfg.level {
		return nil
	}
	return h.write(record, h.attrs, h.groups)
}

// Returns a handler clone with the attrs appended.
//
// Attrs are qualified with the group path active at the time they are added.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cloned := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(cloned, h.attrs)
	for _, a := range attrs {
		cloned = append(cloned, qualify(h.groups, a))
	}

	return &Handler{
		cfg:    h.cfg,
		attrs:  cloned,
		groups: h.groups,
	}
}

// Returns a handler clone with the group appended to the group path.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &Handler{
		cfg:    h.cfg,
		attrs:  h.attrs,
		groups: append(append([]string(nil), h.groups...), name),
	}
}

// Renders a single record to the configured writer.
//
// Must be called with the config mutex held.
func (h *Handler) write(record slog.Record, attrs []slog.Attr, groups []string) error {
	var b strings.Builder

	b.WriteString(h.mark(record.Level))

	if h.cfg.verbose {
		ts := record.Time
		if ts.IsZero() {
			ts = time.Now()
		}
		b.WriteString(ts.UTC().Format(time.RFC3339))
		b.WriteByte(' ')
	}

	b.WriteString(record.Message)

	for _, a := range attrs {
		h.appendAttr(&b, nil, a)
	}
	record.Attrs(func(a slog.Attr) bool {
		h.appendAttr(&b, groups, a)
		return true
	})

	b.WriteByte('\n')

	_, err := io.WriteString(h.cfg.w, b.String())
	return err
}

// Returns the colored or plain marker for a level.
func (h *Handler) mark(level slog.Level) string {
	mark, style := debugMark, debugStyle
	switch {
	case level >= slog.LevelError:
		mark, style = errorMark, errorStyle
	case level >= slog.LevelWarn:
		mark, style = warnMark, warnStyle
	case level >= slog.LevelInfo:
		mark, style = infoMark, infoStyle
	}

	if h.cfg.colored {
		return style.Sprint(mark)
	}
	return mark
}

// Appends one attr as " key=value", flattening groups into dotted keys.
func (h *Handler) appendAttr(b *strings.Builder, groups []string, attr slog.Attr) {
	value := resolveValue(attr.Value)
	if value.Kind() == slog.KindGroup {
		nested := append(append([]string(nil), groups...), attr.Key)
		for _, a := range value.Group() {
			h.appendAttr(b, nested, a)
		}
		return
	}

	key := attr.Key
	if len(groups) > 0 {
		key = strings.Join(groups, ".") + "." + key
	}

	text := key + "=" + formatValue(value)
	if h.cfg.colored {
		text = attrStyle.Sprint(text)
	}

	b.WriteByte(' ')
	b.WriteString(text)
}

// Returns the attr with its key prefixed by the group path.
func qualify(groups []string, attr slog.Attr) slog.Attr {
	if len(groups) == 0 {
		return attr
	}
	attr.Key = strings.Join(groups, ".") + "." + attr.Key
	return attr
}

// Formats a resolved slog value as terse text.
func formatValue(value slog.Value) string {
	switch value.Kind() {
	case slog.KindString:
		return value.String()
	case slog.KindInt64:
		return strconv.FormatInt(value.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(value.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(value.Float64(), 'f', -1, 64)
	case slog.KindBool:
		return strconv.FormatBool(value.Bool())
	case slog.KindDuration:
		return value.Duration().String()
	case slog.KindTime:
		return value.Time().UTC().Format(time.RFC3339)
	case slog.KindAny:
		if err, ok := value.Any().(error); ok && err != nil {
			return err.Error()
		}
		return fmt.Sprint(value.Any())
	default:
		return value.String()
	}
}

// Resolves LogValuer values, bounded against infinite chains.
func resolveValue(value slog.Value) slog.Value {
	for range 4 {
		if value.Kind() != slog.KindLogValuer {
			return value
		}
		value = value.Resolve()
	}
	return value
}
