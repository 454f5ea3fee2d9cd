// Package activity keeps an append-only journal of bot usage for the operator /stats command.
package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Kind classifies journal events.
type Kind string

const (
	// KindLinksGenerated records a successful link conversion; Count is the number of links.
	KindLinksGenerated Kind = "links.generated"
	// KindSheetLoaded records a decoded upload; Count is the number of rows.
	KindSheetLoaded Kind = "sheet.loaded"
	// KindSheetRejected records an upload that failed to decode.
	KindSheetRejected Kind = "sheet.rejected"
)

// Event is one journal entry.
type Event struct {
	ID        string    `db:"id"`
	ChatID    int64     `db:"chat_id"`
	Kind      Kind      `db:"kind"`
	Count     int       `db:"count"`
	Detail    string    `db:"detail"`
	CreatedAt time.Time `db:"created_at"`
}

// NewEvent stamps an event with a fresh ID and the current time.
func NewEvent(chatID int64, kind Kind, count int, detail string) Event {
	return Event{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		Kind:      kind,
		Count:     count,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	}
}

// KindTotals aggregates events of one kind.
type KindTotals struct {
	Events int
	Items  int
}

// Summary aggregates the whole journal.
type Summary struct {
	Chats  int
	ByKind map[Kind]KindTotals
	Since  time.Time
}

// Recorder stores events and summarizes them.
type Recorder interface {
	Record(ctx context.Context, ev Event) error
	Summary(ctx context.Context) (Summary, error)
}
