// Package viewer owns per-chat spreadsheet paging state and computes what to render.
package viewer

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/sheetbot/internal/table"
)

// DefaultIdleTTL is the idle time after which a session becomes eligible for eviction.
const DefaultIdleTTL = 6 * time.Hour

// Options configures a Store.
type Options struct {
	PageSize int
	// IdleTTL <= 0 falls back to DefaultIdleTTL.
	IdleTTL time.Duration
	// MaxSessions caps live sessions; 0 disables the cap.
	MaxSessions int
}

type entry struct {
	mu         sync.Mutex
	session    *Session
	lastActive atomic.Int64
	evicted    atomic.Bool
}

// Store maps chat IDs to sessions. Transitions on one chat are serialized by a per-chat
// lock; different chats never contend beyond the map lookup.
type Store struct {
	mu      sync.RWMutex
	entries map[int64]*entry
	opts    Options
	now     func() time.Time
}

// NewStore returns an empty Store.
func NewStore(opts Options) *Store {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = DefaultIdleTTL
	}
	if opts.MaxSessions < 0 {
		opts.MaxSessions = 0
	}
	return &Store{
		entries: make(map[int64]*entry),
		opts:    opts,
		now:     time.Now,
	}
}

// PageSize reports the configured rows per page.
func (s *Store) PageSize() int {
	return s.opts.PageSize
}

// Load replaces the chat's table, resets paging and returns the first page.
func (s *Store) Load(chatID int64, t *table.Table) (View, error) {
	return s.apply(chatID, true, func(sess *Session) error {
		sess.Load(t)
		return nil
	})
}

// NextPage moves forward one page and renders.
func (s *Store) NextPage(chatID int64) (View, error) {
	return s.apply(chatID, false, (*Session).NextPage)
}

// PrevPage moves back one page and renders.
func (s *Store) PrevPage(chatID int64) (View, error) {
	return s.apply(chatID, false, (*Session).PrevPage)
}

// NextColumn selects the next column and renders.
func (s *Store) NextColumn(chatID int64) (View, error) {
	return s.apply(chatID, false, (*Session).NextColumn)
}

// PrevColumn selects the previous column and renders.
func (s *Store) PrevColumn(chatID int64) (View, error) {
	return s.apply(chatID, false, (*Session).PrevColumn)
}

// Render returns the current page without changing state.
func (s *Store) Render(chatID int64) (View, error) {
	return s.apply(chatID, false, nil)
}

// Copy returns the current page content, identical to what Render would show.
func (s *Store) Copy(chatID int64) (string, error) {
	v, err := s.Render(chatID)
	if err != nil {
		return "", err
	}
	return v.Content, nil
}

// Apply dispatches an Action to its transition.
func (s *Store) Apply(chatID int64, action Action) (View, error) {
	switch action {
	case ActionPrevPage:
		return s.PrevPage(chatID)
	case ActionNextPage:
		return s.NextPage(chatID)
	case ActionPrevColumn:
		return s.PrevColumn(chatID)
	case ActionNextColumn:
		return s.NextColumn(chatID)
	default:
		return s.Render(chatID)
	}
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// CleanupExpired evicts sessions idle for longer than the TTL and returns how many were removed.
func (s *Store) CleanupExpired() int {
	cutoff := s.now().Add(-s.opts.IdleTTL).UnixNano()

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, e := range s.entries {
		if e.lastActive.Load() < cutoff {
			s.dropLocked(id, e)
			removed++
		}
	}
	return removed
}

func (s *Store) apply(chatID int64, create bool, fn func(*Session) error) (View, error) {
	for {
		e := s.lookup(chatID, create)
		if e == nil {
			return View{}, ErrEmptySession
		}
		e.mu.Lock()
		if e.evicted.Load() {
			// Lost a race with eviction; retry against the current map entry.
			e.mu.Unlock()
			continue
		}
		e.lastActive.Store(s.now().UnixNano())
		if fn != nil {
			if err := fn(e.session); err != nil {
				e.mu.Unlock()
				return View{}, err
			}
		}
		v, err := e.session.Render()
		e.mu.Unlock()
		return v, err
	}
}

func (s *Store) lookup(chatID int64, create bool) *entry {
	s.mu.RLock()
	e, ok := s.entries[chatID]
	s.mu.RUnlock()
	if ok || !create {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok = s.entries[chatID]; ok {
		return e
	}
	if s.opts.MaxSessions > 0 && len(s.entries) >= s.opts.MaxSessions {
		s.evictOldestLocked()
	}
	e = &entry{session: newSession(s.opts.PageSize)}
	e.lastActive.Store(s.now().UnixNano())
	s.entries[chatID] = e
	return e
}

func (s *Store) evictOldestLocked() {
	var (
		oldestID int64
		oldest   *entry
	)
	for id, e := range s.entries {
		if oldest == nil || e.lastActive.Load() < oldest.lastActive.Load() {
			oldestID, oldest = id, e
		}
	}
	if oldest != nil {
		s.dropLocked(oldestID, oldest)
	}
}

// dropLocked marks e evicted so in-flight transitions retry, then unmaps it.
func (s *Store) dropLocked(chatID int64, e *entry) {
	e.evicted.Store(true)
	delete(s.entries, chatID)
}
