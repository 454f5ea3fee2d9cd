package netutil

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"testing"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return false }

func TestShouldRetry(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("bad request"), false},
		{"dial", &net.OpError{Op: "dial", Err: errors.New("refused")}, true},
		{"timeout", timeoutErr{}, true},
		{"wrapped url timeout", &url.Error{Op: "Post", URL: "https://api.telegram.org", Err: timeoutErr{}}, true},
		{"url permanent", &url.Error{Op: "Post", URL: "https://api.telegram.org", Err: errors.New("x509")}, false},
		{"wrapped dial", fmt.Errorf("send: %w", &net.OpError{Op: "dial", Err: errors.New("refused")}), true},
		{"cancelled", context.Canceled, false},
	}
	for _, tc := range cases {
		if got := ShouldRetry(tc.err); got != tc.want {
			t.Errorf("%s: ShouldRetry = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestRedact(t *testing.T) {
	msg := `Post "https://api.telegram.org/bot123456:AA-bb_CC/sendMessage": timeout`
	got := Redact(msg)
	if strings.Contains(got, "123456:AA") || !strings.Contains(got, "bot<redacted>/sendMessage") {
		t.Fatalf("Redact = %q", got)
	}
}
