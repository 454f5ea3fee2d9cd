package telegram

import (
	"testing"

	coreconfig "github.com/m3rciful/sheetbot/core/config"
)

func TestDefaultMiddlewaresChain(t *testing.T) {
	names := func(cfg *coreconfig.Config) []string {
		var out []string
		for _, mw := range DefaultMiddlewares(cfg, nil) {
			if mw.Use == nil {
				t.Fatalf("middleware %q has no func", mw.Name)
			}
			out = append(out, mw.Name)
		}
		return out
	}

	got := names(&coreconfig.Config{})
	if len(got) != 3 || got[0] != "recover" || got[1] != "logger" {
		t.Fatalf("chain without limit = %v", got)
	}
	got = names(&coreconfig.Config{RateLimit: coreconfig.RateLimitConfig{IntervalMS: 500}})
	if len(got) != 4 || got[1] != "rate_limit" {
		t.Fatalf("chain with limit = %v", got)
	}
}

func TestRateLimitOptions(t *testing.T) {
	if _, ok := rateLimitOptions(coreconfig.RateLimitConfig{}, nil); ok {
		t.Fatal("zero interval must disable limiting")
	}
	opts, ok := rateLimitOptions(coreconfig.RateLimitConfig{
		IntervalMS:     250,
		Burst:          3,
		ExcludeUpdates: []string{" Callback", "", "document"},
	}, nil)
	if !ok || opts.Burst != 3 || opts.Interval.Milliseconds() != 250 {
		t.Fatalf("opts = %+v", opts)
	}
	if _, ok := opts.Exclude["callback"]; !ok || len(opts.Exclude) != 2 {
		t.Fatalf("exclude = %v", opts.Exclude)
	}
}
