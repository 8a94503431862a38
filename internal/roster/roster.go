// Package roster holds the state behind the student table: the fetched list
// cache, the search text, the current page, the row cursor and the record
// selected for the add/edit modal. It performs no I/O; the shell starts
// fetches and feeds their results back through Resolve.
package roster

import (
	"strings"

	"github.com/studiowebux/studentcrud/internal/types"
)

// PageSize is the number of rows in one page window
const PageSize = 5

// Status is the lifecycle of the list cache
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Option configures a State
type Option func(*State)

// WithKeepStalePage leaves the current page untouched when the filtered set
// shrinks below it
func WithKeepStalePage(keep bool) Option {
	return func(s *State) {
		s.keepStalePage = keep
	}
}

// State is the application state of the student table
type State struct {
	students []types.Student
	status   Status
	err      error
	inFlight int

	search   string
	filtered []types.Student

	page   int
	cursor int

	selected *types.Student

	keepStalePage bool
}

// New creates an idle State on page 1
func New(opts ...Option) *State {
	s := &State{
		page:     1,
		filtered: []types.Student{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Filter returns the records whose "fname lname address" contains search,
// case-insensitively. An empty search returns students unchanged.
func Filter(students []types.Student, search string) []types.Student {
	if search == "" {
		return students
	}
	needle := strings.ToLower(search)
	out := make([]types.Student, 0, len(students))
	for _, st := range students {
		haystack := strings.ToLower(st.FirstName + " " + st.LastName + " " + st.Address)
		if strings.Contains(haystack, needle) {
			out = append(out, st)
		}
	}
	return out
}

// TotalPages returns ceil(n / PageSize)
func TotalPages(n int) int {
	return (n + PageSize - 1) / PageSize
}

// Window returns filtered[(page-1)*PageSize : +PageSize], empty when page is
// outside the filtered set
func Window(filtered []types.Student, page int) []types.Student {
	if page < 1 {
		return []types.Student{}
	}
	start := (page - 1) * PageSize
	if start >= len(filtered) {
		return []types.Student{}
	}
	end := min(start+PageSize, len(filtered))
	return filtered[start:end]
}

// Cache

// BeginFetch records that a list request is starting. The first fetch moves
// the cache to loading; later fetches keep the current rows visible.
func (s *State) BeginFetch() {
	s.inFlight++
	if s.status == StatusIdle || s.status == StatusError {
		s.status = StatusLoading
		s.err = nil
	}
}

// Invalidate marks the cached list stale. It is BeginFetch under the name
// used after a successful mutation.
func (s *State) Invalidate() {
	s.BeginFetch()
}

// Resolve stores the result of a list request. The most recently completed
// fetch wins. A failed refetch keeps the rows already loaded and only records
// the error; a failed first fetch moves the cache to the error state.
func (s *State) Resolve(students []types.Student, err error) {
	if s.inFlight > 0 {
		s.inFlight--
	}
	if err != nil {
		s.err = err
		if s.status != StatusReady {
			s.status = StatusError
			s.students = nil
		}
	} else {
		s.status = StatusReady
		s.err = nil
		s.students = students
	}
	s.refilter()
}

// Status returns the cache status
func (s *State) Status() Status { return s.status }

// Err returns the error of the last fetch, nil once a fetch succeeds
func (s *State) Err() error { return s.err }

// Loading reports whether the initial fetch is outstanding
func (s *State) Loading() bool { return s.status == StatusLoading }

// Fetching reports whether any list request is outstanding
func (s *State) Fetching() bool { return s.inFlight > 0 }

// Students returns the cached list in server order
func (s *State) Students() []types.Student { return s.students }

// Search

// Search returns the current search text
func (s *State) Search() string { return s.search }

// SetSearch replaces the search text and recomputes the filtered set
func (s *State) SetSearch(text string) {
	if text == s.search {
		return
	}
	s.search = text
	s.refilter()
}

func (s *State) refilter() {
	s.filtered = Filter(s.students, s.search)
	if s.filtered == nil {
		s.filtered = []types.Student{}
	}
	if !s.keepStalePage {
		s.page = min(s.page, max(1, s.TotalPages()))
	}
	s.clampCursor()
}

// Filtered returns the records matching the search text
func (s *State) Filtered() []types.Student { return s.filtered }

// Pagination

// Page returns the current 1-based page
func (s *State) Page() int { return s.page }

// TotalPages returns the number of pages in the filtered set
func (s *State) TotalPages() int { return TotalPages(len(s.filtered)) }

// Window returns the rows of the current page
func (s *State) Window() []types.Student { return Window(s.filtered, s.page) }

// HasPrev reports whether Previous is enabled
func (s *State) HasPrev() bool { return s.page > 1 }

// HasNext reports whether Next is enabled
func (s *State) HasNext() bool { return s.page < s.TotalPages() }

// PrevPage moves one page back, clamped at 1
func (s *State) PrevPage() bool {
	if !s.HasPrev() {
		return false
	}
	s.page = max(1, min(s.page-1, s.TotalPages()))
	s.cursor = 0
	return true
}

// NextPage moves one page forward, clamped at TotalPages
func (s *State) NextPage() bool {
	if !s.HasNext() {
		return false
	}
	s.page++
	s.cursor = 0
	return true
}

// RowNumber returns the 1-based position in the filtered set of row i of the window
func (s *State) RowNumber(i int) int {
	return (s.page-1)*PageSize + i + 1
}

// Cursor

// Cursor returns the highlighted row within the window
func (s *State) Cursor() int { return s.cursor }

// CursorUp moves the highlight up one row
func (s *State) CursorUp() {
	if s.cursor > 0 {
		s.cursor--
	}
}

// CursorDown moves the highlight down one row
func (s *State) CursorDown() {
	if s.cursor < len(s.Window())-1 {
		s.cursor++
	}
}

func (s *State) clampCursor() {
	n := len(s.Window())
	if s.cursor >= n {
		s.cursor = max(0, n-1)
	}
}

// Current returns the highlighted record, or nil when the window is empty
func (s *State) Current() *types.Student {
	window := s.Window()
	if s.cursor < 0 || s.cursor >= len(window) {
		return nil
	}
	st := window[s.cursor]
	return &st
}

// Modal

// OpenAdd selects an empty draft
func (s *State) OpenAdd() {
	s.selected = &types.Student{}
}

// OpenEdit selects a copy of st
func (s *State) OpenEdit(st types.Student) {
	s.selected = &st
}

// Close hides the modal
func (s *State) Close() {
	s.selected = nil
}

// Selected returns the record in the modal, or nil when it is hidden
func (s *State) Selected() *types.Student { return s.selected }

// ModalOpen reports whether a record is selected
func (s *State) ModalOpen() bool { return s.selected != nil }

// Editing reports whether the modal holds an existing record
func (s *State) Editing() bool { return s.selected != nil && !s.selected.IsDraft() }
