package logger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func captureLine(t *testing.T, format logFormat, emit func(*slog.Logger)) string {
	t.Helper()
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:  slog.LevelDebug,
		writer: aw,
		format: format,
	})
	emit(slog.New(handler))
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected log line")
	}
	return line
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	ctx := WithMeta(context.Background(), UpdateMeta{RID: "rid-123", UpdateID: 42, UserID: 7, ChatID: 9})

	line := captureLine(t, formatKV, func(l *slog.Logger) {
		LogEvent(ctx, l.With("component", ComponentViewer), slog.LevelInfo, "viewer.render",
			slog.String("status", "OK"),
			slog.Int("page", 2),
		)
	})
	tokens := strings.Split(line, " ")
	expected := []string{"ts=", "level=INFO", "component=service.viewer", "event=viewer.render", "status=ok", "rid=rid-123"}
	if len(tokens) < len(expected) {
		t.Fatalf("unexpected token count: %d (%s)", len(tokens), line)
	}
	for i, prefix := range expected {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %s, expected prefix %s", i, tokens[i], prefix)
		}
	}
	if !strings.Contains(line, "chat_id=9") || !strings.Contains(line, "user_id=7") {
		t.Fatalf("context ids missing: %s", line)
	}
}

func TestStructuredHandlerJSONOrder(t *testing.T) {
	ctx := WithRID(context.Background(), "rid-json")
	line := captureLine(t, formatJSON, func(l *slog.Logger) {
		LogEvent(ctx, l.With("component", ComponentActivity), slog.LevelError, "activity.record",
			slog.String("status", "fail"),
			slog.String("err", "boom"),
		)
	})
	prefixes := []string{`{"ts":`, `"level":"ERROR"`, `"component":"service.activity"`, `"event":"activity.record"`, `"status":"fail"`, `"rid":"rid-json"`}
	pos := -1
	for _, pref := range prefixes {
		idx := strings.Index(line, pref)
		if idx == -1 || idx < pos {
			t.Fatalf("prefix %s not found in order within %s", pref, line)
		}
		pos = idx
	}
}

func TestStructuredHandlerCompactRID(t *testing.T) {
	rawRID := BuildRID(123, 456, 789)
	ctx := WithRID(context.Background(), rawRID)

	kv := captureLine(t, formatKV, func(l *slog.Logger) {
		LogEvent(ctx, l, slog.LevelInfo, "rid.test")
	})
	if !strings.Contains(kv, "rid="+CompactRID(rawRID)) || strings.Contains(kv, "rid_full=") {
		t.Fatalf("unexpected kv rid fields: %s", kv)
	}

	js := captureLine(t, formatJSON, func(l *slog.Logger) {
		LogEvent(ctx, l, slog.LevelInfo, "rid.test")
	})
	if !strings.Contains(js, `"rid_full":"`+rawRID+`"`) || !strings.Contains(js, `"ts_unix_nano"`) {
		t.Fatalf("expected rid_full and ts_unix_nano in JSON, got %s", js)
	}
}

func TestStructuredHandlerDurationsInMillis(t *testing.T) {
	line := captureLine(t, formatKV, func(l *slog.Logger) {
		l.Info("",
			slog.String("event", "cleanup.sweep"),
			slog.Duration("duration", 1500*time.Microsecond),
			slog.Duration("backoff", 2*time.Second),
		)
	})
	if !strings.Contains(line, "duration_ms=2") || !strings.Contains(line, "backoff_ms=2000") {
		t.Fatalf("durations not normalized: %s", line)
	}
	if !strings.Contains(line, "component=app") {
		t.Fatalf("default component missing: %s", line)
	}
}

func TestStructuredHandlerDropsEmptyValues(t *testing.T) {
	line := captureLine(t, formatKV, func(l *slog.Logger) {
		l.Info("links.generate", slog.String("mode", "NUMBER"), slog.String("err", "  "))
	})
	if strings.Contains(line, "err=") {
		t.Fatalf("empty err should be pruned: %s", line)
	}
	if !strings.Contains(line, "event=links.generate") || !strings.Contains(line, "mode=number") {
		t.Fatalf("unexpected line: %s", line)
	}
}

func TestCompactRIDPassthrough(t *testing.T) {
	if got := CompactRID("not-a-rid"); got != "not-a-rid" {
		t.Fatalf("CompactRID = %q", got)
	}
	if got := CompactRID("35:36:37"); got != "z.10.11" {
		t.Fatalf("CompactRID = %q", got)
	}
}

func TestSanitizeLimit(t *testing.T) {
	if got := SanitizeLimit("ab\x00c\u200bdef", 4); got != "abcd" {
		t.Fatalf("SanitizeLimit = %q", got)
	}
}

func TestWithHandlerKeepsMeta(t *testing.T) {
	ctx := WithRID(context.Background(), "r1")
	ctx = WithHandler(ctx, "links")
	meta := MetaFrom(ctx)
	if meta.RID != "r1" || meta.Handler != "links" {
		t.Fatalf("meta = %+v", meta)
	}
	if got := MetaFrom(nil); got != (UpdateMeta{}) {
		t.Fatalf("nil ctx meta = %+v", got)
	}
}

func TestHelpersWithoutLogger(t *testing.T) {
	// Must not panic before InitLogger.
	Info(context.Background(), ComponentApp, "noop")
	LogEvent(context.Background(), nil, slog.LevelWarn, "noop")
}
