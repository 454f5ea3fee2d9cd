package viewer

import (
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/m3rciful/sheetbot/internal/table"
)

func numberTable(rows, cols int) *table.Table {
	data := make([][]string, rows)
	for r := range data {
		row := make([]string, cols)
		for c := range row {
			row[c] = strconv.Itoa((c+1)*1000 + r + 1)
		}
		data[r] = row
	}
	return table.New(data)
}

func TestLoadDefaults(t *testing.T) {
	s := NewStore(Options{PageSize: 80})

	v, err := s.Load(1, numberTable(10, 3))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if v.Page != 1 || v.Column != 2 {
		t.Fatalf("page=%d column=%d, want 1 and 2", v.Page, v.Column)
	}

	v, err = s.Load(2, numberTable(10, 1))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if v.Column != 1 || v.Columns != 1 {
		t.Fatalf("single column table: column=%d columns=%d", v.Column, v.Columns)
	}
	if v.Affordances.PrevColumn || v.Affordances.NextColumn {
		t.Fatal("column affordances must be absent for a single column")
	}
}

func TestPagingExample(t *testing.T) {
	s := NewStore(Options{PageSize: 80})
	v, err := s.Load(7, numberTable(180, 2))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if v.Pages != 3 || v.StartRow != 1 || v.EndRow != 80 || v.TotalRows != 180 {
		t.Fatalf("first page: %+v", v)
	}
	if v.Affordances.PrevPage || !v.Affordances.NextPage {
		t.Fatalf("first page affordances: %+v", v.Affordances)
	}

	v, _ = s.NextPage(7)
	if v.StartRow != 81 || v.EndRow != 160 || v.Page != 2 {
		t.Fatalf("second page: %+v", v)
	}

	v, _ = s.NextPage(7)
	if v.StartRow != 161 || v.EndRow != 180 || v.Page != 3 {
		t.Fatalf("third page: %+v", v)
	}
	if v.Affordances.NextPage || !v.Affordances.PrevPage {
		t.Fatalf("last page affordances: %+v", v.Affordances)
	}
	if got := strings.Count(v.Content, "\n") + 1; got != 20 {
		t.Fatalf("last page lines = %d, want 20", got)
	}
}

func TestNextPageStabilizes(t *testing.T) {
	s := NewStore(Options{PageSize: 7})
	if _, err := s.Load(1, numberTable(50, 2)); err != nil {
		t.Fatalf("load: %v", err)
	}
	var last View
	for i := 0; i < 20; i++ {
		v, err := s.NextPage(1)
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		last = v
	}
	if last.Page != last.Pages || last.Pages != 8 {
		t.Fatalf("page=%d pages=%d", last.Page, last.Pages)
	}
	again, _ := s.NextPage(1)
	if again != last {
		t.Fatalf("NextPage at the end must be idempotent: %+v vs %+v", again, last)
	}
}

func TestPrevPageStopsAtFirst(t *testing.T) {
	s := NewStore(Options{PageSize: 10})
	if _, err := s.Load(1, numberTable(30, 2)); err != nil {
		t.Fatalf("load: %v", err)
	}
	v, err := s.PrevPage(1)
	if err != nil {
		t.Fatalf("prev: %v", err)
	}
	if v.Page != 1 {
		t.Fatalf("page = %d, want 1", v.Page)
	}
}

func TestColumnWrap(t *testing.T) {
	s := NewStore(Options{PageSize: 10})
	if _, err := s.Load(1, numberTable(5, 3)); err != nil {
		t.Fatalf("load: %v", err)
	}
	v, _ := s.PrevColumn(1)
	if v.Column != 1 {
		t.Fatalf("column = %d, want 1", v.Column)
	}
	v, _ = s.PrevColumn(1)
	if v.Column != 3 {
		t.Fatalf("column = %d, want 3 after wrap", v.Column)
	}
	v, _ = s.NextColumn(1)
	if v.Column != 1 {
		t.Fatalf("column = %d, want 1 after forward wrap", v.Column)
	}
}

func TestColumnBijection(t *testing.T) {
	for cols := 1; cols <= 5; cols++ {
		for start := 0; start < cols; start++ {
			sess := newSession(10)
			sess.Load(numberTable(3, cols))
			sess.column = start
			_ = sess.PrevColumn()
			_ = sess.NextColumn()
			if sess.column != start {
				t.Fatalf("cols=%d start=%d: prev+next gave %d", cols, start, sess.column)
			}
			_ = sess.NextColumn()
			_ = sess.PrevColumn()
			if sess.column != start {
				t.Fatalf("cols=%d start=%d: next+prev gave %d", cols, start, sess.column)
			}
		}
	}
}

func TestNonNumericCellsDropped(t *testing.T) {
	s := NewStore(Options{PageSize: 10})
	tb := table.New([][]string{
		{"a", "100"},
		{"b", ""},
		{"c", "n/a"},
		{"d", "8801712345.0"},
	})
	v, err := s.Load(1, tb)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if v.Content != "100\n8801712345" {
		t.Fatalf("content = %q", v.Content)
	}
	if v.Values != 2 {
		t.Fatalf("values = %d, want 2", v.Values)
	}
}

func TestAllTextColumnRendersPlaceholder(t *testing.T) {
	s := NewStore(Options{PageSize: 10})
	v, err := s.Load(1, table.New([][]string{{"x", "name"}, {"y", "other"}}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if v.Content != EmptyPagePlaceholder {
		t.Fatalf("content = %q", v.Content)
	}
}

func TestCopyMatchesRender(t *testing.T) {
	s := NewStore(Options{PageSize: 4})
	if _, err := s.Load(1, numberTable(13, 3)); err != nil {
		t.Fatalf("load: %v", err)
	}
	steps := []func(int64) (View, error){s.NextPage, s.NextColumn, s.NextPage, s.PrevColumn, s.PrevColumn, s.PrevPage}
	for i, step := range steps {
		v, err := step(1)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		got, err := s.Copy(1)
		if err != nil {
			t.Fatalf("copy: %v", err)
		}
		if got != v.Content {
			t.Fatalf("step %d: copy %q != render %q", i, got, v.Content)
		}
		after, _ := s.Render(1)
		if after != v {
			t.Fatalf("step %d: copy mutated state", i)
		}
	}
}

func TestEmptySession(t *testing.T) {
	s := NewStore(Options{})
	ops := map[string]func(int64) (View, error){
		"render":      s.Render,
		"next_page":   s.NextPage,
		"prev_page":   s.PrevPage,
		"next_column": s.NextColumn,
		"prev_column": s.PrevColumn,
	}
	for name, op := range ops {
		if _, err := op(42); !errors.Is(err, ErrEmptySession) {
			t.Fatalf("%s: expected ErrEmptySession, got %v", name, err)
		}
	}
	if _, err := s.Copy(42); !errors.Is(err, ErrEmptySession) {
		t.Fatalf("copy: expected ErrEmptySession, got %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("navigation must not create sessions, got %d", s.Len())
	}
}

func TestReloadResetsState(t *testing.T) {
	s := NewStore(Options{PageSize: 5})
	if _, err := s.Load(1, numberTable(40, 4)); err != nil {
		t.Fatalf("load: %v", err)
	}
	_, _ = s.NextPage(1)
	_, _ = s.NextColumn(1)
	_, _ = s.NextColumn(1)

	v, err := s.Load(1, numberTable(3, 1))
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if v.Page != 1 || v.Column != 1 || v.Pages != 1 {
		t.Fatalf("reload did not reset: %+v", v)
	}
}

func TestIndexDriftClampsToFirstColumn(t *testing.T) {
	sess := newSession(10)
	sess.Load(numberTable(3, 2))
	sess.column = 9
	sess.page = 99
	v, err := sess.Render()
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if v.Column != 1 || v.Page != 1 {
		t.Fatalf("drift not clamped: column=%d page=%d", v.Column, v.Page)
	}
	if err := sess.NextColumn(); err != nil {
		t.Fatalf("next column: %v", err)
	}
	if sess.column != 1 {
		t.Fatalf("column = %d, want 1 after clamp+advance", sess.column)
	}
}

func TestEmptyTableHasOnePage(t *testing.T) {
	sess := newSession(10)
	sess.Load(table.New(nil))
	v, err := sess.Render()
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if v.Pages != 1 || v.Content != EmptyPagePlaceholder || v.Affordances.NextPage {
		t.Fatalf("empty table view: %+v", v)
	}
}

func TestApplyDispatch(t *testing.T) {
	s := NewStore(Options{PageSize: 2})
	if _, err := s.Load(1, numberTable(6, 3)); err != nil {
		t.Fatalf("load: %v", err)
	}
	v, _ := s.Apply(1, ActionNextPage)
	if v.Page != 2 {
		t.Fatalf("page = %d", v.Page)
	}
	v, _ = s.Apply(1, ActionNextColumn)
	if v.Column != 3 {
		t.Fatalf("column = %d", v.Column)
	}
	v, _ = s.Apply(1, ActionCopy)
	if v.Page != 2 || v.Column != 3 {
		t.Fatalf("copy changed state: %+v", v)
	}
}

func TestAffordanceActions(t *testing.T) {
	a := Affordances{NextPage: true, PrevColumn: true, NextColumn: true, Copy: true}
	got := a.Actions()
	want := []Action{ActionNextPage, ActionPrevColumn, ActionNextColumn, ActionCopy}
	if len(got) != len(want) {
		t.Fatalf("actions = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("actions = %v, want %v", got, want)
		}
	}
}

func TestCleanupExpired(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(Options{IdleTTL: time.Hour})
	s.now = func() time.Time { return now }

	_, _ = s.Load(1, numberTable(1, 1))
	now = now.Add(30 * time.Minute)
	_, _ = s.Load(2, numberTable(1, 1))
	now = now.Add(45 * time.Minute)

	if removed := s.CleanupExpired(); removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if _, err := s.Render(1); !errors.Is(err, ErrEmptySession) {
		t.Fatalf("chat 1 should be evicted, got %v", err)
	}
	if _, err := s.Render(2); err != nil {
		t.Fatalf("chat 2 should survive: %v", err)
	}
}

func TestMaxSessionsEvictsLeastRecent(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(Options{MaxSessions: 2})
	s.now = func() time.Time {
		now = now.Add(time.Second)
		return now
	}

	_, _ = s.Load(1, numberTable(1, 1))
	_, _ = s.Load(2, numberTable(1, 1))
	_, _ = s.Render(1)
	_, _ = s.Load(3, numberTable(1, 1))

	if s.Len() != 2 {
		t.Fatalf("len = %d, want 2", s.Len())
	}
	if _, err := s.Render(2); !errors.Is(err, ErrEmptySession) {
		t.Fatalf("chat 2 should be evicted, got %v", err)
	}
	if _, err := s.Render(1); err != nil {
		t.Fatalf("chat 1 should survive: %v", err)
	}
}

func TestConcurrentTransitionsAreSerialized(t *testing.T) {
	s := NewStore(Options{PageSize: 1})
	if _, err := s.Load(1, numberTable(1000, 2)); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := s.Load(2, numberTable(1000, 2)); err != nil {
		t.Fatalf("load: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = s.NextPage(1)
		}()
		go func() {
			defer wg.Done()
			_, _ = s.NextPage(2)
		}()
	}
	wg.Wait()

	for _, id := range []int64{1, 2} {
		v, err := s.Render(id)
		if err != nil {
			t.Fatalf("render %d: %v", id, err)
		}
		if v.Page != 201 {
			t.Fatalf("chat %d page = %d, want 201 (no lost updates)", id, v.Page)
		}
	}
}
