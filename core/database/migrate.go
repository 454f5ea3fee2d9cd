package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/m3rciful/sheetbot/core/logger"
)

const readyTimeout = 30 * time.Second

// migrateLog forwards golang-migrate's progress lines as debug events.
type migrateLog struct{ ctx context.Context }

func (l migrateLog) Printf(format string, v ...any) {
	logger.Debug(l.ctx, logger.ComponentMigrate, "migrate.step",
		slog.String("detail", strings.TrimSpace(fmt.Sprintf(format, v...))),
	)
}

func (migrateLog) Verbose() bool { return false }

// RunMigrations applies every pending up migration found in cfg.MigrationsDir.
func RunMigrations(ctx context.Context, cfg Config) error {
	fail := func(stage string, err error) error {
		logger.Error(ctx, logger.ComponentMigrate, "migrate."+stage,
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("migrate %s: %w", stage, err)
	}

	if err := WaitForPostgres(ctx, DSN(cfg), readyTimeout); err != nil {
		return fail("wait", err)
	}
	dir, err := filepath.Abs(cfg.MigrationsDir)
	if err != nil {
		return fail("resolve", err)
	}
	files := upFiles(dir)
	preview, more := logger.Preview(files, 6)
	logger.Debug(ctx, logger.ComponentMigrate, "migrate.resolve",
		slog.String("path", dir),
		slog.Int("count", len(files)),
		slog.String("files", preview),
		slog.Bool("truncated", more),
	)

	m, err := migrate.New("file://"+filepath.ToSlash(dir), MigrateURL(cfg))
	if err != nil {
		return fail("init", err)
	}
	m.Log = migrateLog{ctx: ctx}
	defer func() {
		if err := errors.Join(m.Close()); err != nil {
			logger.Warn(ctx, logger.ComponentMigrate, "migrate.close", slog.String("err", err.Error()))
		}
	}()

	from, _, _ := m.Version()
	start := time.Now()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fail("apply", err)
	}
	to, _, _ := m.Version()

	applied := pending(files, uint64(from), uint64(to))
	preview, more = logger.Preview(applied, 6)
	logger.Info(ctx, logger.ComponentMigrate, "migrate.summary",
		slog.String("status", "ok"),
		slog.Uint64("from_ver", uint64(from)),
		slog.Uint64("to_ver", uint64(to)),
		slog.Int("count", len(applied)),
		slog.String("files", preview),
		slog.Bool("truncated", more),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}

// upFiles lists the *.up.sql names in dir sorted by name. A missing
// directory yields nil and lets migrate report the error.
func upFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

// fileVersion reads the numeric prefix of a migration file name.
func fileVersion(name string) uint64 {
	prefix, _, _ := strings.Cut(name, "_")
	v, _ := strconv.ParseUint(prefix, 10, 64)
	return v
}

// pending returns the files with versions in (from, to].
func pending(files []string, from, to uint64) []string {
	var out []string
	for _, f := range files {
		if v := fileVersion(f); v > from && v <= to {
			out = append(out, f)
		}
	}
	return out
}
