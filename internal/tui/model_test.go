package tui

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/studentcrud/internal/form"
	"github.com/studiowebux/studentcrud/internal/roster"
	"github.com/studiowebux/studentcrud/internal/types"
)

func manyStudents(n int) []types.Student {
	students := make([]types.Student, n)
	for i := range students {
		students[i] = testStudent(fmt.Sprintf("%d", i+1), fmt.Sprintf("First%02d", i+1), fmt.Sprintf("Last%02d", i+1))
	}
	return students
}

func TestNew_RequiresStore(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatal("New() without a store should fail")
	}
}

func TestNew_InitializesDefaultMode(t *testing.T) {
	m := CreateTestModel(t, newFakeStore())

	AssertModelField(t, "mode", m.mode, ModeNormal)
	AssertModelField(t, "roster status", m.roster.Status(), roster.StatusIdle)
	AssertModelField(t, "page", m.roster.Page(), 1)

	if m.keybinds == nil {
		t.Error("keybinds should default to the built-in registry")
	}
	if m.historyState == nil {
		t.Error("historyState should be initialized")
	}
}

func TestInit_LoadsStudents(t *testing.T) {
	store := newFakeStore(testStudent("1", "Ada", "Lovelace"), testStudent("2", "Alan", "Turing"))
	m := CreateTestModel(t, store)

	LoadTestModel(t, m)

	AssertModelField(t, "status", m.roster.Status(), roster.StatusReady)
	AssertModelField(t, "students", len(m.roster.Students()), 2)
	AssertModelField(t, "list calls", store.listCalls(), 1)

	view := m.View()
	for _, want := range []string{"Ada", "Turing", "Page 1 of 1", "2001-02-03"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestView_LoadingHidesTable(t *testing.T) {
	m := CreateTestModel(t, newFakeStore(testStudent("1", "Ada", "Lovelace")))

	m.Init()

	view := m.View()
	if !strings.Contains(view, "Loading students...") {
		t.Error("View() should show the loading indicator before the first fetch resolves")
	}
	if strings.Contains(view, "First name") {
		t.Error("View() should not render the table while loading")
	}
}

func TestView_FetchErrorShowsMessage(t *testing.T) {
	store := newFakeStore()
	store.listErr = errors.New("connection refused")
	m := CreateTestModel(t, store)

	LoadTestModel(t, m)

	AssertModelField(t, "status", m.roster.Status(), roster.StatusError)
	if !strings.Contains(m.View(), "Failed to load students: Connection refused") {
		t.Error("View() should show the fetch error")
	}
}

func TestView_EmptyPlaceholder(t *testing.T) {
	m := CreateTestModel(t, newFakeStore())
	LoadTestModel(t, m)

	view := m.View()
	if !strings.Contains(view, "No students found.") {
		t.Error("View() should show the empty placeholder")
	}
	if !strings.Contains(view, "Page 1 of 0") {
		t.Error("View() should report zero pages for an empty list")
	}
	if m.roster.HasPrev() || m.roster.HasNext() {
		t.Error("pager controls should be disabled with no records")
	}
}

func TestPager_NextAndPrevious(t *testing.T) {
	m := CreateTestModel(t, newFakeStore(manyStudents(12)...))
	LoadTestModel(t, m)

	AssertModelField(t, "total pages", m.roster.TotalPages(), 3)

	press(m, "n")
	AssertModelField(t, "page after next", m.roster.Page(), 2)
	view := m.View()
	if !strings.Contains(view, "Page 2 of 3") || !strings.Contains(view, "First06") {
		t.Error("View() should show the second page window")
	}
	if strings.Contains(view, "First05") {
		t.Error("View() should not show rows of the first page")
	}

	press(m, "n")
	press(m, "n")
	AssertModelField(t, "page clamps at last", m.roster.Page(), 3)
	AssertModelField(t, "last window", len(m.roster.Window()), 2)

	press(m, "p")
	AssertModelField(t, "page after previous", m.roster.Page(), 2)
}

func TestCursor_MovesWithinWindow(t *testing.T) {
	m := CreateTestModel(t, newFakeStore(manyStudents(3)...))
	LoadTestModel(t, m)

	press(m, "j")
	press(m, "down")
	press(m, "j")
	AssertModelField(t, "cursor clamps at last row", m.roster.Cursor(), 2)

	press(m, "k")
	AssertModelField(t, "cursor after up", m.roster.Cursor(), 1)
	AssertModelField(t, "current", m.roster.Current().ID, "2")
}

func TestSearch_FiltersLiveAndClears(t *testing.T) {
	store := newFakeStore(
		testStudent("1", "Ada", "Lovelace"),
		testStudent("2", "Alan", "Turing"),
		testStudent("3", "Grace", "Hopper"),
	)
	m := CreateTestModel(t, store)
	LoadTestModel(t, m)

	press(m, "/")
	AssertModelField(t, "mode", m.mode, ModeSearch)

	typeText(m, "LOVE")
	AssertModelField(t, "filtered while typing", len(m.roster.Filtered()), 1)
	AssertModelField(t, "search text", m.roster.Search(), "LOVE")

	press(m, "enter")
	AssertModelField(t, "mode after apply", m.mode, ModeNormal)
	AssertModelField(t, "search kept", m.roster.Search(), "LOVE")
	if strings.Contains(m.View(), "Hopper") {
		t.Error("View() should hide rows that do not match the search")
	}

	press(m, "esc")
	AssertModelField(t, "search cleared", m.roster.Search(), "")
	AssertModelField(t, "filtered after clear", len(m.roster.Filtered()), 3)
}

func TestSearch_CancelClearsText(t *testing.T) {
	m := CreateTestModel(t, newFakeStore(testStudent("1", "Ada", "Lovelace"), testStudent("2", "Alan", "Turing")))
	LoadTestModel(t, m)

	press(m, "/")
	typeText(m, "tur")
	AssertModelField(t, "filtered", len(m.roster.Filtered()), 1)

	press(m, "esc")
	AssertModelField(t, "mode", m.mode, ModeNormal)
	AssertModelField(t, "search", m.roster.Search(), "")
	AssertModelField(t, "input", m.searchInput.Value(), "")
}

func TestSearch_ShrinkClampsPage(t *testing.T) {
	m := CreateTestModel(t, newFakeStore(manyStudents(12)...))
	LoadTestModel(t, m)

	press(m, "n")
	press(m, "n")
	AssertModelField(t, "page", m.roster.Page(), 3)

	press(m, "/")
	typeText(m, "First01")
	AssertModelField(t, "page after shrink", m.roster.Page(), 1)
	AssertModelField(t, "window", len(m.roster.Window()), 1)
}

func TestSearch_KeepStalePage(t *testing.T) {
	store := newFakeStore(manyStudents(12)...)
	opts := Options{Store: store}
	opts.UI.KeepStalePage = true
	m := createTestModel(t, opts)
	LoadTestModel(t, m)

	press(m, "n")
	press(m, "n")
	press(m, "/")
	typeText(m, "First01")

	AssertModelField(t, "stale page", m.roster.Page(), 3)
	if !strings.Contains(m.View(), "No students found.") {
		t.Error("a stale page should show the empty placeholder")
	}
}

func TestAddFlow_CreatesAndRefetches(t *testing.T) {
	store := newFakeStore(testStudent("1", "Alan", "Turing"))
	m := CreateTestModel(t, store)
	LoadTestModel(t, m)

	press(m, "a")
	AssertModelField(t, "mode", m.mode, ModeForm)
	if !m.roster.ModalOpen() || m.roster.Editing() {
		t.Fatal("add should open the modal with an unsaved draft")
	}
	if !strings.Contains(m.View(), "Add Student") {
		t.Error("View() should show the add modal title")
	}
	if formView := m.form.View(); !strings.Contains(formView, "Add") || strings.Contains(formView, "Add Student") {
		t.Errorf("submit button should read Add, form view:\n%s", formView)
	}

	typeText(m, "Ada")
	press(m, "tab")
	typeText(m, "Lovelace")
	press(m, "tab")
	typeText(m, "1815-12-10")
	press(m, "tab")
	typeText(m, "London")
	press(m, "tab")
	typeText(m, "555-0199")

	submit := press(m, "ctrl+s")
	create := runCmd(t, m, submit)
	AssertModelField(t, "mode after submit", m.mode, ModeNormal)
	AssertModelField(t, "modal closed", m.roster.ModalOpen(), false)

	refetch := runCmd(t, m, create)
	AssertModelField(t, "status message", m.statusMsg, "Added Ada Lovelace")
	AssertModelField(t, "fetching after success", m.roster.Fetching(), true)

	if next := runCmd(t, m, refetch); next != nil {
		t.Error("list result should not start another command")
	}

	students := store.snapshot()
	AssertModelField(t, "stored", len(students), 2)
	want := types.Draft{FirstName: "Ada", LastName: "Lovelace", Birthdate: "1815-12-10", Address: "London", PhoneNumber: "555-0199"}
	AssertModelField(t, "created draft", students[1].Draft, want)
	AssertModelField(t, "list calls", store.listCalls(), 2)
	AssertModelField(t, "cached", len(m.roster.Students()), 2)
}

func TestAddFlow_MissingFieldsKeepModalOpen(t *testing.T) {
	store := newFakeStore()
	m := CreateTestModel(t, store)
	LoadTestModel(t, m)

	press(m, "a")
	typeText(m, "Ada")

	if cmd := press(m, "ctrl+s"); cmd != nil {
		t.Error("submitting with missing required fields should not emit")
	}
	AssertModelField(t, "mode", m.mode, ModeForm)
	AssertModelField(t, "focus moves to first missing", m.form.Focused(), form.FieldLastName)
	AssertModelField(t, "nothing stored", len(store.snapshot()), 0)
}

func TestFormCancel_ClosesModal(t *testing.T) {
	m := CreateTestModel(t, newFakeStore(testStudent("1", "Ada", "Lovelace")))
	LoadTestModel(t, m)

	press(m, "e")
	cancel := press(m, "esc")
	if next := runCmd(t, m, cancel); next != nil {
		t.Error("cancel should not start a command")
	}

	AssertModelField(t, "mode", m.mode, ModeNormal)
	if m.roster.Selected() != nil {
		t.Error("selection should be cleared after cancel")
	}
}

func TestEditFlow_UpdatesSelectedRecord(t *testing.T) {
	store := newFakeStore(testStudent("1", "Ada", "Lovelace"), testStudent("2", "Alan", "Turing"))
	m := CreateTestModel(t, store)
	LoadTestModel(t, m)

	press(m, "j")
	press(m, "e")
	AssertModelField(t, "editing", m.roster.Editing(), true)
	AssertModelField(t, "prefilled", m.form.Value(form.FieldFirstName), "Alan")
	if !strings.Contains(m.View(), "Edit Student") {
		t.Error("View() should show the edit modal title")
	}
	if formView := m.form.View(); !strings.Contains(formView, "Update") || strings.Contains(formView, "Update Student") {
		t.Errorf("submit button should read Update, form view:\n%s", formView)
	}

	press(m, "tab")
	press(m, "tab")
	press(m, "tab")
	typeText(m, " Apt 2")

	update := runCmd(t, m, press(m, "ctrl+s"))
	refetch := runCmd(t, m, update)
	runCmd(t, m, refetch)

	AssertModelField(t, "status message", m.statusMsg, "Updated Alan Turing")

	patch, ok := store.patches["2"]
	if !ok {
		t.Fatal("update should target the selected id")
	}
	if patch.Address == nil || *patch.Address != "1 Main St Apt 2" {
		t.Errorf("patch address = %v, want edited value", patch.Address)
	}
	if patch.FirstName == nil || *patch.FirstName != "Alan" {
		t.Error("patch should carry every field of the draft")
	}
	AssertModelField(t, "refetched address", m.roster.Students()[1].Address, "1 Main St Apt 2")
}

func TestDeleteFlow_RemovesCurrentRow(t *testing.T) {
	store := newFakeStore(testStudent("1", "Ada", "Lovelace"), testStudent("2", "Alan", "Turing"))
	m := CreateTestModel(t, store)
	LoadTestModel(t, m)

	refetch := runCmd(t, m, press(m, "d"))
	AssertModelField(t, "status message", m.statusMsg, "Deleted Ada Lovelace")
	runCmd(t, m, refetch)

	AssertModelField(t, "remaining", len(m.roster.Students()), 1)
	AssertModelField(t, "remaining id", m.roster.Students()[0].ID, "2")
}

func TestMutationFailure_LeavesListUntouched(t *testing.T) {
	store := newFakeStore(testStudent("1", "Ada", "Lovelace"))
	store.deleteErr = errors.New("boom")
	m := CreateTestModel(t, store)
	LoadTestModel(t, m)

	if next := runCmd(t, m, press(m, "d")); next != nil {
		t.Error("a failed mutation should not refetch")
	}

	AssertModelField(t, "fetching", m.roster.Fetching(), false)
	AssertModelField(t, "list calls", store.listCalls(), 1)
	AssertModelField(t, "students", len(m.roster.Students()), 1)
	AssertModelField(t, "status message", m.statusMsg, "")
	AssertModelField(t, "error message", m.errorMsg, "")
}

func TestRefresh_KeepsRowsVisible(t *testing.T) {
	m := CreateTestModel(t, newFakeStore(testStudent("1", "Ada", "Lovelace")))
	LoadTestModel(t, m)

	cmd := press(m, "r")
	if cmd == nil {
		t.Fatal("refresh should start a fetch")
	}

	AssertModelField(t, "loading", m.roster.Loading(), false)
	view := m.View()
	if !strings.Contains(view, "Lovelace") || !strings.Contains(view, "refreshing...") {
		t.Error("View() should keep rows visible while refreshing")
	}

	runCmd(t, m, cmd)
	AssertModelField(t, "fetching", m.roster.Fetching(), false)
}

func TestRefresh_FailureKeepsRows(t *testing.T) {
	store := newFakeStore(testStudent("1", "Ada", "Lovelace"))
	m := CreateTestModel(t, store)
	LoadTestModel(t, m)

	store.mu.Lock()
	store.listErr = errors.New("connection refused")
	store.mu.Unlock()
	runCmd(t, m, press(m, "r"))

	AssertModelField(t, "status", m.roster.Status(), roster.StatusReady)
	view := m.View()
	if !strings.Contains(view, "Lovelace") {
		t.Error("View() should keep the loaded rows after a failed refresh")
	}
	if strings.Contains(view, "Failed to load students") {
		t.Error("View() should not replace the table after a failed refresh")
	}
	if !strings.Contains(m.errorMsg, "Refresh failed: Connection refused") {
		t.Errorf("errorMsg = %q, want the refresh failure", m.errorMsg)
	}

	store.mu.Lock()
	store.listErr = nil
	store.mu.Unlock()
	runCmd(t, m, press(m, "r"))
	AssertModelField(t, "error message", m.errorMsg, "")
}

func TestCopy_WritesCurrentRecord(t *testing.T) {
	var copied string
	store := newFakeStore(testStudent("7", "Ada", "Lovelace"))
	m := createTestModel(t, Options{
		Store:     store,
		Clipboard: func(s string) error { copied = s; return nil },
	})
	LoadTestModel(t, m)

	runCmd(t, m, press(m, "y"))

	AssertModelField(t, "status message", m.statusMsg, "Student copied to clipboard")
	for _, want := range []string{`"id": "7"`, `"fname": "Ada"`, `"phone_number": "555-0100"`} {
		if !strings.Contains(copied, want) {
			t.Errorf("clipboard missing %s: %s", want, copied)
		}
	}
}

func TestCopy_ReportsClipboardError(t *testing.T) {
	m := createTestModel(t, Options{
		Store:     newFakeStore(testStudent("1", "Ada", "Lovelace")),
		Clipboard: func(string) error { return errors.New("no clipboard") },
	})
	LoadTestModel(t, m)

	runCmd(t, m, press(m, "y"))

	if !strings.Contains(m.errorMsg, "no clipboard") {
		t.Errorf("errorMsg = %q, want clipboard error", m.errorMsg)
	}
}

func TestHelpModal_OpensAndCloses(t *testing.T) {
	m := CreateTestModel(t, newFakeStore())
	LoadTestModel(t, m)

	press(m, "?")
	AssertModelField(t, "mode", m.mode, ModeHelp)
	view := m.View()
	if !strings.Contains(view, "Keyboard Shortcuts") || !strings.Contains(view, "Table") {
		t.Error("View() should render the help screen")
	}

	press(m, "?")
	AssertModelField(t, "mode after ?", m.mode, ModeNormal)

	press(m, "?")
	press(m, "esc")
	AssertModelField(t, "mode after esc", m.mode, ModeNormal)
}

func TestHistoryModal_RecordsAndClears(t *testing.T) {
	store := newFakeStore(testStudent("1", "Ada", "Lovelace"), testStudent("2", "Alan", "Turing"))
	m, mgr := CreateTestModelWithHistory(t, store)
	LoadTestModel(t, m)

	runCmd(t, m, runCmd(t, m, press(m, "d")))

	load := press(m, "H")
	AssertModelField(t, "mode", m.mode, ModeHistory)
	if !strings.Contains(m.View(), "Loading history...") {
		t.Error("View() should show the history loading state")
	}

	runCmd(t, m, load)
	AssertModelField(t, "entries", len(m.historyState.GetEntries()), 1)
	AssertModelField(t, "entry name", m.historyState.GetEntries()[0].StudentName, "Ada Lovelace")
	view := m.View()
	if !strings.Contains(view, "Activity History") || !strings.Contains(view, "delete") {
		t.Error("View() should list the recorded delete")
	}

	reload := runCmd(t, m, press(m, "C"))
	runCmd(t, m, reload)
	count, err := mgr.GetCount()
	if err != nil {
		t.Fatalf("GetCount() error = %v", err)
	}
	AssertModelField(t, "stored entries", count, 0)
	if !strings.Contains(m.View(), "No activity recorded yet.") {
		t.Error("View() should show the empty history")
	}

	press(m, "H")
	AssertModelField(t, "mode after close", m.mode, ModeNormal)
}

func TestHistoryModal_Disabled(t *testing.T) {
	m := CreateTestModel(t, newFakeStore())
	LoadTestModel(t, m)

	runCmd(t, m, press(m, "H"))

	if !strings.Contains(m.View(), "History is disabled") {
		t.Error("View() should explain that history is disabled")
	}
	if cmd := press(m, "C"); cmd != nil {
		t.Error("clearing disabled history should do nothing")
	}
}

func TestQuit(t *testing.T) {
	m := CreateTestModel(t, newFakeStore())
	LoadTestModel(t, m)

	cmd := press(m, "q")
	if cmd == nil {
		t.Fatal("q should quit from the table")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should return tea.Quit")
	}
}

func TestForceQuit_FromForm(t *testing.T) {
	m := CreateTestModel(t, newFakeStore())
	LoadTestModel(t, m)

	press(m, "a")
	typeText(m, "q")
	AssertModelField(t, "q is typed into the form", m.form.Value(form.FieldFirstName), "q")

	cmd := press(m, "ctrl+c")
	if cmd == nil {
		t.Fatal("ctrl+c should quit from the form")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should return tea.Quit")
	}
}

func TestView_BeforeWindowSize(t *testing.T) {
	m, err := New(Options{Store: newFakeStore()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	AssertModelField(t, "view", m.View(), "Initializing...")
}

func TestTruncateMessage(t *testing.T) {
	short := "Deleted Zoë"
	if got := truncateMessage(short); got != short {
		t.Errorf("truncateMessage(%q) = %q", short, got)
	}

	long := strings.Repeat("ü", 150)
	got := truncateMessage(long)
	if !utf8.ValidString(got) {
		t.Fatalf("truncateMessage() split a character: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 100 {
		t.Errorf("truncateMessage() length = %d runes, want 100", n)
	}

	if got := truncateMessage("line one\nline two"); got != "line one line two" {
		t.Errorf("truncateMessage() = %q, want newlines flattened", got)
	}
}
