package logger

import "strings"

// levelNames maps slog level strings to the names written in logs.
var levelNames = map[string]string{
	"DEBUG": "DEBUG",
	"INFO":  "INFO",
	"WARN":  "WARN",
	"ERROR": "ERROR",
}

func normalizeLevel(level string) string {
	if name, ok := levelNames[strings.ToUpper(level)]; ok {
		return name
	}
	// Custom levels render as e.g. "ERROR+4"; keep them readable.
	if base, _, ok := strings.Cut(strings.ToUpper(level), "+"); ok && levelNames[base] != "" {
		return base
	}
	if level == "" {
		return "INFO"
	}
	return strings.ToUpper(level)
}

// knownStatuses lists the status values dashboards filter on.
var knownStatuses = map[string]bool{
	"ok":           true,
	"fail":         true,
	"skip":         true,
	"retry":        true,
	"rate_limited": true,
	"cancelled":    true,
}

// normalizeStatus lowercases status and reports whether it is a known value.
func normalizeStatus(status string) (string, bool) {
	status = strings.ToLower(strings.TrimSpace(status))
	return status, knownStatuses[status]
}

// defaultKeyOrder fixes the leading keys of every line.
var defaultKeyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"rid",
	"rid_full",
	"ts_unix_nano",
	"update_id",
	"user_id",
	"chat_id",
	"chat_type",
	"handler",
	"operation",
	"op",
	"cb_key",
	"duration_ms",
	"mode",
	"count",
	"page",
	"pages",
	"column",
	"columns",
	"rows",
	"file",
	"bytes",
	"sessions",
	"evicted",
	"payload",
	"lang",
	"username",
	"listen",
	"public_url",
	"http_code",
	"db",
	"host",
	"port",
	"err",
	"err_code",
	"cause",
	"retryable",
	"attempts",
	"backoff_ms",
	"rate_limited",
}
