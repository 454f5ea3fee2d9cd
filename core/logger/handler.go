package logger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

type logFormat string

const (
	formatJSON logFormat = "json"
	formatKV   logFormat = "kv"
)

const tsLayout = "2006-01-02T15:04:05.000Z07:00"

var errNoWriter = errors.New("logger: writer not initialized")

type handlerConfig struct {
	level    slog.Leveler
	writer   *asyncWriter
	format   logFormat
	keyOrder []string
}

// structuredHandler renders records as flat lines whose leading keys follow
// keyOrder; unknown keys come after them alphabetically.
type structuredHandler struct {
	cfg    handlerConfig
	prefix string
	attrs  []slog.Attr
}

func newStructuredHandler(cfg handlerConfig) *structuredHandler {
	if cfg.level == nil {
		cfg.level = slog.LevelInfo
	}
	if len(cfg.keyOrder) == 0 {
		cfg.keyOrder = defaultKeyOrder
	}
	return &structuredHandler{cfg: cfg}
}

func (h *structuredHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.cfg.level.Level()
}

func (h *structuredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, a := range attrs {
		next.attrs = append(next.attrs, qualify(h.prefix, a))
	}
	return &next
}

func (h *structuredHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	if h.prefix == "" {
		next.prefix = name
	} else {
		next.prefix = h.prefix + "." + name
	}
	return &next
}

func (h *structuredHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.cfg.writer == nil {
		return errNoWriter
	}
	jsonOut := h.cfg.format == formatJSON

	fields := make(map[string]any, 16)
	ts := r.Time.UTC()
	fields["ts"] = ts.Truncate(time.Millisecond).Format(tsLayout)
	fields["level"] = normalizeLevel(r.Level.String())
	if jsonOut {
		fields["ts_unix_nano"] = ts.UnixNano()
	}
	for _, a := range h.attrs {
		put(fields, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		put(fields, h.prefix, a)
		return true
	})
	mergeMeta(fields, MetaFrom(ctx))
	finish(fields, r.Message, jsonOut)

	keys := orderedKeys(fields, h.cfg.keyOrder)
	var line []byte
	if jsonOut {
		var err error
		if line, err = encodeJSON(fields, keys); err != nil {
			return err
		}
	} else {
		line = encodeKV(fields, keys)
	}
	return h.cfg.writer.Write(append(line, '\n'))
}

func qualify(prefix string, a slog.Attr) slog.Attr {
	if prefix == "" {
		return a
	}
	if a.Key == "" {
		a.Key = prefix
	} else {
		a.Key = prefix + "." + a.Key
	}
	return a
}

// put flattens groups into dotted keys.
func put(fields map[string]any, prefix string, a slog.Attr) {
	a = qualify(prefix, a)
	a.Value = a.Value.Resolve()
	if a.Value.Kind() == slog.KindGroup {
		for _, child := range a.Value.Group() {
			put(fields, a.Key, child)
		}
		return
	}
	if a.Key == "" {
		return
	}
	if key, val, ok := convert(a.Key, a.Value); ok {
		fields[key] = val
	}
}

func convert(key string, v slog.Value) (string, any, bool) {
	switch v.Kind() {
	case slog.KindString:
		return key, strings.TrimSpace(v.String()), true
	case slog.KindBool:
		return key, v.Bool(), true
	case slog.KindInt64:
		return key, v.Int64(), true
	case slog.KindUint64:
		if u := v.Uint64(); u <= math.MaxInt64 {
			return key, int64(u), true
		}
		return key, v.Uint64(), true
	case slog.KindFloat64:
		return key, v.Float64(), true
	case slog.KindDuration:
		return millisKey(key), RoundMS(v.Duration()).Milliseconds(), true
	case slog.KindTime:
		return key, v.Time().UTC().Format(time.RFC3339Nano), true
	}
	switch x := v.Any().(type) {
	case nil:
		return "", nil, false
	case error:
		return key, x.Error(), true
	case time.Duration:
		return millisKey(key), RoundMS(x).Milliseconds(), true
	case string:
		return key, strings.TrimSpace(x), true
	case fmt.Stringer:
		return key, strings.TrimSpace(x.String()), true
	default:
		return key, fmt.Sprint(x), true
	}
}

// millisKey names a duration attribute after its unit.
func millisKey(key string) string {
	if strings.HasSuffix(key, "_ms") {
		return key
	}
	return key + "_ms"
}

func mergeMeta(fields map[string]any, m UpdateMeta) {
	add := func(key string, val any, ok bool) {
		if _, exists := fields[key]; ok && !exists {
			fields[key] = val
		}
	}
	add("rid", m.RID, m.RID != "")
	add("update_id", m.UpdateID, m.UpdateID != 0)
	add("user_id", m.UserID, m.UserID != 0)
	add("chat_id", m.ChatID, m.ChatID != 0)
	add("handler", m.Handler, m.Handler != "")
}

// finish fills event and component, compacts the rid, normalizes
// enumerations and drops empty values.
func finish(fields map[string]any, msg string, jsonOut bool) {
	if rid, _ := fields["rid"].(string); rid != "" {
		if short := CompactRID(rid); short != rid {
			fields["rid"] = short
			if _, ok := fields["rid_full"]; jsonOut && !ok {
				fields["rid_full"] = rid
			}
		}
	}
	if ev, _ := fields["event"].(string); ev == "" {
		if msg == "" {
			msg = "unknown"
		}
		fields["event"] = msg
	}
	if c, _ := fields["component"].(string); c == "" {
		fields["component"] = ComponentApp
	}
	if s, _ := fields["status"].(string); s != "" {
		fields["status"], _ = normalizeStatus(s)
	}
	if m, _ := fields["mode"].(string); m != "" {
		fields["mode"] = strings.ToLower(m)
	}
	for k, v := range fields {
		if s, ok := v.(string); ok && s == "" {
			delete(fields, k)
		}
	}
}

func orderedKeys(fields map[string]any, order []string) []string {
	keys := make([]string, 0, len(fields))
	used := make(map[string]bool, len(order))
	for _, k := range order {
		if _, ok := fields[k]; ok && !used[k] {
			keys = append(keys, k)
			used[k] = true
		}
	}
	rest := make([]string, 0, len(fields)-len(keys))
	for k := range fields {
		if !used[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func encodeJSON(fields map[string]any, keys []string) ([]byte, error) {
	buf := make([]byte, 0, 256)
	buf = append(buf, '{')
	for i, k := range keys {
		val, err := json.Marshal(fields[k])
		if err != nil {
			return nil, fmt.Errorf("logger: encode %s: %w", k, err)
		}
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendQuote(buf, k)
		buf = append(buf, ':')
		buf = append(buf, val...)
	}
	return append(buf, '}'), nil
}

func encodeKV(fields map[string]any, keys []string) []byte {
	buf := make([]byte, 0, 256)
	for i, k := range keys {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, k...)
		buf = append(buf, '=')
		s := fmt.Sprint(fields[k])
		if strings.IndexFunc(s, needsQuote) >= 0 {
			buf = strconv.AppendQuote(buf, s)
		} else {
			buf = append(buf, s...)
		}
	}
	return buf
}

func needsQuote(r rune) bool {
	return r <= ' ' || r == '=' || r == '"'
}
