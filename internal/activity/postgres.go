package activity

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/sheetbot/core/logger"
)

// PostgresStore persists events in the activity_events table created by migrations/.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore wraps an open connection pool.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const insertEvent = `
INSERT INTO activity_events (id, chat_id, kind, count, detail, created_at)
VALUES (:id, :chat_id, :kind, :count, :detail, :created_at)`

// Record inserts one event.
func (p *PostgresStore) Record(ctx context.Context, ev Event) error {
	start := time.Now()
	if _, err := p.db.NamedExecContext(ctx, insertEvent, ev); err != nil {
		logger.Error(ctx, logger.ComponentActivity, "activity.record",
			slog.String("status", "fail"),
			slog.String("op", string(ev.Kind)),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("activity: insert event: %w", err)
	}
	logger.Debug(ctx, logger.ComponentActivity, "activity.record",
		slog.String("status", "ok"),
		slog.String("op", string(ev.Kind)),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}

type kindRow struct {
	Kind   Kind `db:"kind"`
	Events int  `db:"events"`
	Items  int  `db:"items"`
}

// Summary aggregates the journal with two queries.
func (p *PostgresStore) Summary(ctx context.Context) (Summary, error) {
	sum := Summary{ByKind: make(map[Kind]KindTotals)}

	var rows []kindRow
	if err := p.db.SelectContext(ctx, &rows,
		`SELECT kind, COUNT(*) AS events, COALESCE(SUM(count), 0) AS items
		   FROM activity_events GROUP BY kind`); err != nil {
		return Summary{}, fmt.Errorf("activity: summarize kinds: %w", err)
	}
	for _, r := range rows {
		sum.ByKind[r.Kind] = KindTotals{Events: r.Events, Items: r.Items}
	}

	var head struct {
		Chats int          `db:"chats"`
		Since sql.NullTime `db:"since"`
	}
	if err := p.db.GetContext(ctx, &head,
		`SELECT COUNT(DISTINCT chat_id) AS chats, MIN(created_at) AS since FROM activity_events`); err != nil {
		return Summary{}, fmt.Errorf("activity: summarize chats: %w", err)
	}
	sum.Chats = head.Chats
	if head.Since.Valid {
		sum.Since = head.Since.Time
	}
	return sum, nil
}
