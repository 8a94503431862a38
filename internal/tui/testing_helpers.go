package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/studentcrud/internal/api"
	"github.com/studiowebux/studentcrud/internal/history"
	"github.com/studiowebux/studentcrud/internal/types"
)

// fakeStore is an in-memory api.Store with injectable failures
type fakeStore struct {
	mu       sync.Mutex
	students []types.Student
	nextID   int

	listErr   error
	createErr error
	updateErr error
	deleteErr error

	lists   int
	patches map[string]types.Patch
}

var _ api.Store = (*fakeStore)(nil)

func newFakeStore(students ...types.Student) *fakeStore {
	return &fakeStore{
		students: append([]types.Student(nil), students...),
		nextID:   len(students) + 1,
		patches:  make(map[string]types.Patch),
	}
}

func (s *fakeStore) List(ctx context.Context) ([]types.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]types.Student{}, s.students...), nil
}

func (s *fakeStore) Create(ctx context.Context, draft types.Draft) (types.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return types.Student{}, s.createErr
	}
	st := types.Student{ID: fmt.Sprintf("%d", s.nextID), Draft: draft}
	s.nextID++
	s.students = append(s.students, st)
	return st, nil
}

func (s *fakeStore) Update(ctx context.Context, id string, patch types.Patch) (types.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return types.Student{}, s.updateErr
	}
	for i, st := range s.students {
		if st.ID == id {
			s.students[i] = patch.Apply(st)
			s.patches[id] = patch
			return s.students[i], nil
		}
	}
	return types.Student{}, &api.StatusError{Method: "PUT", URL: "/crud/" + id, Status: 404, StatusText: "404 Not Found"}
}

func (s *fakeStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	for i, st := range s.students {
		if st.ID == id {
			s.students = append(s.students[:i], s.students[i+1:]...)
			return nil
		}
	}
	return &api.StatusError{Method: "DELETE", URL: "/crud/" + id, Status: 404, StatusText: "404 Not Found"}
}

func (s *fakeStore) snapshot() []types.Student {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Student{}, s.students...)
}

func (s *fakeStore) listCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lists
}

// testStudent builds a record with the given id and names
func testStudent(id, first, last string) types.Student {
	return types.Student{
		ID: id,
		Draft: types.Draft{
			FirstName:   first,
			LastName:    last,
			Birthdate:   "2001-02-03",
			Address:     "1 Main St",
			PhoneNumber: "555-0100",
		},
	}
}

// CreateTestModel creates a sized Model backed by store with no history
func CreateTestModel(t *testing.T, store *fakeStore) *Model {
	t.Helper()
	return createTestModel(t, Options{Store: store})
}

// CreateTestModelWithHistory creates a Model whose mutations are recorded in
// a temp database
func CreateTestModelWithHistory(t *testing.T, store *fakeStore) (*Model, *history.Manager) {
	t.Helper()

	mgr, err := history.NewManager(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Failed to create history manager: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })

	recorder := history.NewRecorder(store, mgr, nil)
	return createTestModel(t, Options{Store: recorder, History: mgr}), mgr
}

func createTestModel(t *testing.T, opts Options) *Model {
	t.Helper()

	if opts.Clipboard == nil {
		opts.Clipboard = func(string) error { return nil }
	}

	m, err := New(opts)
	if err != nil {
		t.Fatalf("Failed to create test model: %v", err)
	}
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	return &m
}

// LoadTestModel runs Init and delivers the first list result
func LoadTestModel(t *testing.T, m *Model) {
	t.Helper()
	cmd := m.Init()
	if cmd == nil {
		t.Fatal("Init() returned no fetch command")
	}
	m.Update(cmd())
}

// runCmd executes cmd and feeds its message back into the model
func runCmd(t *testing.T, m *Model, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command, got nil")
	}
	_, next := m.Update(cmd())
	return next
}

// keyMsg builds a key press for a single rune or a named key
func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
}

// press sends one key and returns the resulting command
func press(m *Model, key string) tea.Cmd {
	_, cmd := m.Update(keyMsg(key))
	return cmd
}

// typeText sends every rune of text as a separate key press
func typeText(m *Model, text string) {
	for _, r := range text {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// AssertModelField is a generic helper for checking model field values
func AssertModelField[T comparable](t *testing.T, fieldName string, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", fieldName, got, want)
	}
}
