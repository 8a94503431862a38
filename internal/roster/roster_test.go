package roster

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/studiowebux/studentcrud/internal/types"
)

func makeStudents(n int) []types.Student {
	students := make([]types.Student, n)
	for i := range students {
		students[i] = types.Student{
			ID: fmt.Sprintf("%d", i+1),
			Draft: types.Draft{
				FirstName: fmt.Sprintf("First%d", i+1),
				LastName:  fmt.Sprintf("Last%d", i+1),
				Address:   fmt.Sprintf("%d Main St", i+1),
			},
		}
	}
	return students
}

func ready(students []types.Student, opts ...Option) *State {
	s := New(opts...)
	s.BeginFetch()
	s.Resolve(students, nil)
	return s
}

func TestFilter(t *testing.T) {
	students := []types.Student{
		{ID: "1", Draft: types.Draft{FirstName: "Ada", LastName: "Lovelace", Address: "London"}},
		{ID: "2", Draft: types.Draft{FirstName: "Grace", LastName: "Hopper", Address: "New York"}},
		{ID: "3", Draft: types.Draft{FirstName: "Alan", LastName: "Turing", Address: "Wilmslow"}},
	}

	tests := []struct {
		search string
		want   []string
	}{
		{"", []string{"1", "2", "3"}},
		{"ada", []string{"1"}},
		{"LOVELACE", []string{"1"}},
		{"ada lovelace", []string{"1"}},
		{"lovelace london", []string{"1"}},
		{"new york", []string{"2"}},
		{"a", []string{"1", "2", "3"}},
		{"ing wil", []string{"3"}},
		{"nobody", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			got := []string{}
			for _, st := range Filter(students, tt.search) {
				got = append(got, st.ID)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Filter(%q) = %v, want %v", tt.search, got, tt.want)
			}
		})
	}
}

func TestFilter_MatchesDefinition(t *testing.T) {
	students := makeStudents(23)
	for _, search := range []string{"1", "first2", "MAIN", "st", "3 m", "zzz"} {
		got := Filter(students, search)
		var want []types.Student
		for _, st := range students {
			if strings.Contains(strings.ToLower(st.FirstName+" "+st.LastName+" "+st.Address), strings.ToLower(search)) {
				want = append(want, st)
			}
		}
		if len(got) != len(want) {
			t.Fatalf("Filter(%q) returned %d records, want %d", search, len(got), len(want))
		}
		for i := range want {
			if got[i].ID != want[i].ID {
				t.Errorf("Filter(%q)[%d] = %s, want %s", search, i, got[i].ID, want[i].ID)
			}
		}
	}
}

func TestFilter_EmptySearchPreservesOrder(t *testing.T) {
	students := makeStudents(7)
	got := Filter(students, "")
	if !reflect.DeepEqual(got, students) {
		t.Error("empty search should return the list unchanged")
	}
}

func TestWindow(t *testing.T) {
	filtered := makeStudents(12)

	for page := 1; page <= TotalPages(len(filtered)); page++ {
		window := Window(filtered, page)
		if len(window) > PageSize {
			t.Fatalf("page %d has %d rows", page, len(window))
		}
		start := (page - 1) * PageSize
		end := min(start+PageSize, len(filtered))
		if !reflect.DeepEqual(window, filtered[start:end]) {
			t.Errorf("page %d window mismatch", page)
		}
	}

	if got := len(Window(filtered, 3)); got != 2 {
		t.Errorf("last page has %d rows, want 2", got)
	}
	if got := len(Window(filtered, 4)); got != 0 {
		t.Errorf("page past the end has %d rows, want 0", got)
	}
	if got := len(Window(filtered, 0)); got != 0 {
		t.Errorf("page 0 has %d rows, want 0", got)
	}
}

func TestTotalPages(t *testing.T) {
	tests := map[int]int{0: 0, 1: 1, 4: 1, 5: 1, 6: 2, 10: 2, 11: 3}
	for n, want := range tests {
		if got := TotalPages(n); got != want {
			t.Errorf("TotalPages(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestEmptyList(t *testing.T) {
	s := ready([]types.Student{})

	if s.TotalPages() != 0 {
		t.Errorf("TotalPages = %d, want 0", s.TotalPages())
	}
	if len(s.Window()) != 0 {
		t.Error("expected empty window")
	}
	if s.HasPrev() || s.HasNext() {
		t.Error("both controls should be disabled")
	}
	if s.Current() != nil {
		t.Error("no row should be highlighted")
	}
	if s.NextPage() || s.PrevPage() {
		t.Error("page should not move")
	}
	if s.Page() != 1 {
		t.Errorf("Page = %d, want 1", s.Page())
	}
}

func TestExactlyOnePage(t *testing.T) {
	s := ready(makeStudents(5))

	if s.TotalPages() != 1 {
		t.Errorf("TotalPages = %d, want 1", s.TotalPages())
	}
	if s.HasPrev() || s.HasNext() {
		t.Error("both controls should be disabled")
	}
	if len(s.Window()) != 5 {
		t.Errorf("window has %d rows, want 5", len(s.Window()))
	}
}

func TestPaging(t *testing.T) {
	s := ready(makeStudents(11))

	if s.HasPrev() || !s.HasNext() {
		t.Fatal("page 1: expected only Next enabled")
	}
	if !s.NextPage() || s.Page() != 2 {
		t.Fatalf("NextPage: page = %d", s.Page())
	}
	if !s.NextPage() || s.Page() != 3 {
		t.Fatalf("NextPage: page = %d", s.Page())
	}
	if s.NextPage() {
		t.Error("NextPage past the last page should be refused")
	}
	if s.HasNext() || !s.HasPrev() {
		t.Error("last page: expected only Previous enabled")
	}
	if got := s.RowNumber(0); got != 11 {
		t.Errorf("RowNumber(0) on page 3 = %d, want 11", got)
	}
	if !s.PrevPage() || s.Page() != 2 {
		t.Errorf("PrevPage: page = %d", s.Page())
	}
}

func TestSearchClampsPage(t *testing.T) {
	s := ready(makeStudents(12))
	s.NextPage()
	s.NextPage()

	s.SetSearch("First1")
	// First1, First10, First11, First12
	if s.TotalPages() != 1 {
		t.Fatalf("TotalPages = %d, want 1", s.TotalPages())
	}
	if s.Page() != 1 {
		t.Errorf("Page = %d, want 1 after clamp", s.Page())
	}
	if len(s.Window()) != 4 {
		t.Errorf("window has %d rows, want 4", len(s.Window()))
	}

	s.SetSearch("nobody")
	if s.Page() != 1 || len(s.Window()) != 0 {
		t.Errorf("empty filter: page %d, %d rows", s.Page(), len(s.Window()))
	}
}

func TestSearchKeepsStalePage(t *testing.T) {
	s := ready(makeStudents(12), WithKeepStalePage(true))
	s.NextPage()
	s.NextPage()

	s.SetSearch("First1")
	if s.Page() != 3 {
		t.Errorf("Page = %d, want stale 3", s.Page())
	}
	if len(s.Window()) != 0 {
		t.Error("stale page should render an empty window")
	}
	if s.HasNext() {
		t.Error("Next should be disabled past the last page")
	}
	if !s.PrevPage() || s.Page() != 1 {
		t.Errorf("PrevPage should clamp to 1, got %d", s.Page())
	}
}

func TestRefreshClampsPage(t *testing.T) {
	s := ready(makeStudents(6))
	s.NextPage()

	s.Invalidate()
	s.Resolve(makeStudents(5), nil)

	if s.Page() != 1 {
		t.Errorf("Page = %d, want 1", s.Page())
	}
}

func TestCacheLifecycle(t *testing.T) {
	s := New()
	if s.Status() != StatusIdle {
		t.Fatalf("Status = %v, want idle", s.Status())
	}

	s.BeginFetch()
	if !s.Loading() || !s.Fetching() {
		t.Fatal("first fetch should be loading")
	}

	s.Resolve(makeStudents(3), nil)
	if s.Status() != StatusReady || s.Fetching() {
		t.Fatalf("Status = %v, fetching = %v", s.Status(), s.Fetching())
	}

	s.Invalidate()
	if s.Loading() {
		t.Error("refetch should not show the loading indicator")
	}
	if !s.Fetching() || len(s.Window()) != 3 {
		t.Error("refetch should keep previous rows")
	}

	boom := errors.New("boom")
	s.Resolve(nil, boom)
	if s.Status() != StatusReady || !errors.Is(s.Err(), boom) {
		t.Fatalf("Status = %v, err = %v", s.Status(), s.Err())
	}
	if len(s.Window()) != 3 {
		t.Error("failed refetch should keep the rows already loaded")
	}

	s.Invalidate()
	s.Resolve(makeStudents(2), nil)
	if s.Err() != nil || len(s.Students()) != 2 {
		t.Errorf("successful refetch should clear the error, err = %v", s.Err())
	}
}

func TestFirstFetchErrorThenRetry(t *testing.T) {
	s := New()
	s.BeginFetch()

	boom := errors.New("boom")
	s.Resolve(nil, boom)
	if s.Status() != StatusError || !errors.Is(s.Err(), boom) {
		t.Fatalf("Status = %v, err = %v", s.Status(), s.Err())
	}
	if len(s.Students()) != 0 {
		t.Error("failed first fetch should leave the list empty")
	}

	s.BeginFetch()
	if !s.Loading() || s.Err() != nil {
		t.Error("retry after an error should show loading again")
	}
}

func TestOverlappingFetchesLastCompletedWins(t *testing.T) {
	s := ready(makeStudents(1))

	s.Invalidate()
	s.Invalidate()

	s.Resolve(makeStudents(4), nil)
	if !s.Fetching() {
		t.Error("one fetch should still be outstanding")
	}
	s.Resolve(makeStudents(2), nil)
	if s.Fetching() {
		t.Error("no fetch should be outstanding")
	}
	if len(s.Students()) != 2 {
		t.Errorf("got %d students, want the last completed fetch (2)", len(s.Students()))
	}
}

func TestCursor(t *testing.T) {
	s := ready(makeStudents(7))

	s.CursorUp()
	if s.Cursor() != 0 {
		t.Errorf("Cursor = %d, want 0", s.Cursor())
	}
	for range 10 {
		s.CursorDown()
	}
	if s.Cursor() != 4 {
		t.Errorf("Cursor = %d, want 4", s.Cursor())
	}
	if cur := s.Current(); cur == nil || cur.ID != "5" {
		t.Errorf("Current = %v, want id 5", cur)
	}

	s.NextPage()
	if s.Cursor() != 0 {
		t.Error("changing page should reset the cursor")
	}

	s.CursorDown()
	s.Invalidate()
	s.Resolve(makeStudents(6), nil)
	if s.Cursor() != 0 {
		t.Errorf("Cursor = %d, want clamped to 0", s.Cursor())
	}
}

func TestModalSelection(t *testing.T) {
	s := New()
	if s.ModalOpen() || s.Selected() != nil {
		t.Fatal("modal should start hidden")
	}

	s.OpenAdd()
	if !s.ModalOpen() || s.Editing() {
		t.Error("add mode: expected open, not editing")
	}
	if !s.Selected().IsDraft() {
		t.Error("add mode should select a draft")
	}

	st := makeStudents(1)[0]
	s.OpenEdit(st)
	if !s.Editing() || s.Selected().ID != st.ID {
		t.Error("edit mode should select the record")
	}

	s.Selected().FirstName = "changed"
	if st.FirstName == "changed" {
		t.Error("OpenEdit should copy the record")
	}

	s.Close()
	if s.ModalOpen() {
		t.Error("Close should hide the modal")
	}
}
