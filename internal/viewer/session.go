package viewer

import (
	"errors"
	"strconv"
	"strings"

	"github.com/m3rciful/sheetbot/internal/table"
)

// ErrEmptySession is returned when a paging operation runs before any table was loaded.
var ErrEmptySession = errors.New("viewer: no table loaded")

// DefaultPageSize is used when a non-positive page size is configured.
const DefaultPageSize = 100

// EmptyPagePlaceholder replaces the content of a page without numeric cells.
const EmptyPagePlaceholder = "no data on this page"

// Session is the paging state of one chat. It is not safe for concurrent use;
// Store serializes access per chat.
type Session struct {
	table    *table.Table
	page     int
	column   int
	pageSize int
}

func newSession(pageSize int) *Session {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Session{pageSize: pageSize}
}

// Loaded reports whether a table is attached.
func (s *Session) Loaded() bool {
	return s.table != nil
}

// PageCount is ceil(rows / pageSize) with a minimum of 1.
func (s *Session) PageCount() int {
	rows := s.table.Rows()
	if rows == 0 {
		return 1
	}
	return (rows + s.pageSize - 1) / s.pageSize
}

// Load attaches t and resets page and column to their defaults.
func (s *Session) Load(t *table.Table) {
	s.table = t
	s.page = 0
	s.column = defaultColumn(t)
}

// NextPage advances one page, stopping at the last page.
func (s *Session) NextPage() error {
	if !s.Loaded() {
		return ErrEmptySession
	}
	s.clamp()
	if s.page < s.PageCount()-1 {
		s.page++
	}
	return nil
}

// PrevPage goes back one page, stopping at the first page.
func (s *Session) PrevPage() error {
	if !s.Loaded() {
		return ErrEmptySession
	}
	s.clamp()
	if s.page > 0 {
		s.page--
	}
	return nil
}

// NextColumn selects the next column, wrapping after the last one.
func (s *Session) NextColumn() error {
	return s.shiftColumn(1)
}

// PrevColumn selects the previous column, wrapping before the first one.
func (s *Session) PrevColumn() error {
	return s.shiftColumn(-1)
}

func (s *Session) shiftColumn(delta int) error {
	if !s.Loaded() {
		return ErrEmptySession
	}
	s.clamp()
	n := s.table.Columns()
	if n <= 1 {
		return nil
	}
	s.column = ((s.column+delta)%n + n) % n
	return nil
}

// Render computes the current view without changing state.
func (s *Session) Render() (View, error) {
	if !s.Loaded() {
		return View{}, ErrEmptySession
	}
	page, column := s.position()
	rows := s.table.Rows()
	pages := s.PageCount()

	start := page * s.pageSize
	end := start + s.pageSize
	if end > rows {
		end = rows
	}

	values := make([]string, 0, end-start)
	for r := start; r < end; r++ {
		if v, ok := table.Int64(s.table.Cell(r, column)); ok {
			values = append(values, strconv.FormatInt(v, 10))
		}
	}
	content := EmptyPagePlaceholder
	if len(values) > 0 {
		content = strings.Join(values, "\n")
	}

	startRow := start + 1
	if end == start {
		startRow = start
	}
	multiColumn := s.table.Columns() > 1
	return View{
		Content:   content,
		Values:    len(values),
		StartRow:  startRow,
		EndRow:    end,
		TotalRows: rows,
		Page:      page + 1,
		Pages:     pages,
		Column:    column + 1,
		Columns:   s.table.Columns(),
		Affordances: Affordances{
			PrevPage:   page > 0,
			NextPage:   page < pages-1,
			PrevColumn: multiColumn,
			NextColumn: multiColumn,
			Copy:       true,
		},
	}, nil
}

// position returns page and column clamped into range without mutating the session.
func (s *Session) position() (int, int) {
	page, column := s.page, s.column
	if column < 0 || column >= s.table.Columns() {
		column = 0
	}
	if last := s.PageCount() - 1; page > last {
		page = last
	}
	if page < 0 {
		page = 0
	}
	return page, column
}

func (s *Session) clamp() {
	s.page, s.column = s.position()
}

func defaultColumn(t *table.Table) int {
	if t.Columns() > 1 {
		return 1
	}
	return 0
}
