package cmd

import (
	"context"
	"errors"
	"testing"

	coreconfig "github.com/m3rciful/sheetbot/core/config"
	coretelegram "github.com/m3rciful/sheetbot/core/telegram"
)

type fakeApp struct {
	started, stopped bool
}

func (a *fakeApp) TelegramRunOptions() (coretelegram.RunOptions, error) {
	return coretelegram.RunOptions{
		OnStart: func(context.Context, coretelegram.Runtime) error { a.started = true; return nil },
		OnStop:  func(context.Context, coretelegram.Runtime) error { a.stopped = true; return nil },
	}, nil
}

func TestResolveConfigPath(t *testing.T) {
	t.Setenv("SHEETBOT_CONFIG", "/etc/from-env.yaml")
	opts := Options{ConfigEnvVar: "SHEETBOT_CONFIG", DefaultConfigPath: "config.yaml"}
	if got := ResolveConfigPath(opts); got != "/etc/from-env.yaml" {
		t.Fatalf("env path = %q", got)
	}
	opts.ConfigPath = "flag.yaml"
	if got := ResolveConfigPath(opts); got != "flag.yaml" {
		t.Fatalf("flag path = %q", got)
	}
	t.Setenv("SHEETBOT_CONFIG", "")
	opts.ConfigPath = ""
	if got := ResolveConfigPath(opts); got != "config.yaml" {
		t.Fatalf("default path = %q", got)
	}
}

func TestRunWiresLifecycleHooks(t *testing.T) {
	cfg := &coreconfig.Config{}
	app := &fakeApp{}
	var loadedPath string
	var gotCfg *coreconfig.Config
	shutdowns := 0

	err := Run(Options{
		ConfigPath: "test.yaml",
		LoadConfig: func(path string) (*coreconfig.Config, error) {
			loadedPath = path
			return cfg, nil
		},
		Bootstrap: func(_ context.Context, c *coreconfig.Config) (TelegramApp, error) {
			gotCfg = c
			return app, nil
		},
		ShutdownLogger: func() error { shutdowns++; return nil },
		RunTelegram: func(ctx context.Context, opts coretelegram.RunOptions) error {
			if opts.Config != cfg {
				t.Fatalf("run options config not filled")
			}
			if err := opts.OnStart(ctx, coretelegram.Runtime{}); err != nil {
				return err
			}
			return opts.OnStop(ctx, coretelegram.Runtime{})
		},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if loadedPath != "test.yaml" || gotCfg != cfg {
		t.Fatalf("config not threaded: path=%q", loadedPath)
	}
	if !app.started || !app.stopped {
		t.Fatalf("hooks not chained: %+v", app)
	}
	if shutdowns != 1 {
		t.Fatalf("logger shutdown calls = %d", shutdowns)
	}
}

func TestRunBootstrapError(t *testing.T) {
	boom := errors.New("boom")
	err := Run(Options{
		ConfigPath:     "x",
		LoadConfig:     func(string) (*coreconfig.Config, error) { return &coreconfig.Config{}, nil },
		Bootstrap:      func(context.Context, *coreconfig.Config) (TelegramApp, error) { return nil, boom },
		ShutdownLogger: func() error { return nil },
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
}
