package tui

import (
	"context"
	"encoding/json"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/studentcrud/internal/form"
	"github.com/studiowebux/studentcrud/internal/history"
	"github.com/studiowebux/studentcrud/internal/types"
	"go.uber.org/zap"
)

// fetchStudents requests the full list. The result is applied by Update.
func (m *Model) fetchStudents() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		students, err := store.List(context.Background())
		return studentsLoadedMsg{students: students, err: err}
	}
}

// refresh invalidates the cached list and re-fetches it
func (m *Model) refresh() tea.Cmd {
	m.roster.Invalidate()
	return m.fetchStudents()
}

// openAddForm shows the modal with an empty draft
func (m *Model) openAddForm() tea.Cmd {
	m.roster.OpenAdd()
	return m.openForm(nil, "Add")
}

// openEditForm shows the modal pre-filled with the highlighted row
func (m *Model) openEditForm() tea.Cmd {
	current := m.roster.Current()
	if current == nil {
		return nil
	}
	m.roster.OpenEdit(*current)
	return m.openForm(&current.Draft, "Update")
}

func (m *Model) openForm(defaults *types.Draft, submitLabel string) tea.Cmd {
	m.form = form.New(defaults, submitLabel).WithKeybinds(m.keybinds)
	m.form.SetWidth(m.formWidth())
	m.mode = ModeForm
	m.errorMsg = ""
	return m.form.Init()
}

func (m *Model) closeForm() {
	m.roster.Close()
	m.mode = ModeNormal
}

// submitSelected closes the modal and sends the draft as a create or an
// update depending on whether the selected record has an id
func (m *Model) submitSelected(draft types.Draft) tea.Cmd {
	selected := m.roster.Selected()
	m.closeForm()
	if selected == nil {
		return nil
	}

	store := m.store
	if selected.IsDraft() {
		return func() tea.Msg {
			created, err := store.Create(context.Background(), draft)
			return mutationDoneMsg{op: history.OperationCreate, id: created.ID, student: created, err: err}
		}
	}

	id := selected.ID
	patch := types.PatchFromDraft(draft)
	return func() tea.Msg {
		updated, err := store.Update(context.Background(), id, patch)
		return mutationDoneMsg{op: history.OperationUpdate, id: id, student: updated, err: err}
	}
}

// deleteCurrent deletes the highlighted row without confirmation
func (m *Model) deleteCurrent() tea.Cmd {
	current := m.roster.Current()
	if current == nil {
		return nil
	}

	store := m.store
	id := current.ID
	student := *current
	return func() tea.Msg {
		ctx := history.WithStudentName(context.Background(), student.FullName())
		err := store.Delete(ctx, id)
		return mutationDoneMsg{op: history.OperationDelete, id: id, student: student, err: err}
	}
}

// handleMutationDone invalidates the list after a successful mutation.
// Failures are logged and leave the list untouched.
func (m *Model) handleMutationDone(msg mutationDoneMsg) tea.Cmd {
	if msg.err != nil {
		m.logger.Warn("mutation failed",
			zap.String("operation", msg.op),
			zap.String("id", msg.id),
			zap.Error(msg.err),
		)
		return nil
	}

	m.logger.Info("mutation succeeded",
		zap.String("operation", msg.op),
		zap.String("id", msg.id),
	)
	m.statusMsg = mutationStatus(msg)
	m.errorMsg = ""
	return m.refresh()
}

func mutationStatus(msg mutationDoneMsg) string {
	name := msg.student.FullName()
	if name == "" {
		name = msg.id
	}
	switch msg.op {
	case history.OperationCreate:
		return "Added " + name
	case history.OperationUpdate:
		return "Updated " + name
	case history.OperationDelete:
		return "Deleted " + name
	default:
		return ""
	}
}

// copyCurrent copies the highlighted record as JSON to the clipboard
func (m *Model) copyCurrent() tea.Cmd {
	current := m.roster.Current()
	if current == nil {
		return nil
	}

	data, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		m.errorMsg = fmt.Sprintf("Failed to encode student: %v", err)
		return nil
	}

	copyText := m.copyText
	return func() tea.Msg {
		if err := copyText(string(data)); err != nil {
			return errorMsg(fmt.Sprintf("Failed to copy to clipboard: %v", err))
		}
		return statusMsg("Student copied to clipboard")
	}
}

// loadHistory reads the most recent activity entries
func (m *Model) loadHistory() tea.Cmd {
	mgr := m.historyManager
	limit := m.historyLimit
	return func() tea.Msg {
		if mgr == nil {
			return historyLoadedMsg{entries: []types.HistoryEntry{}}
		}
		entries, err := mgr.Load(limit)
		return historyLoadedMsg{entries: entries, err: err}
	}
}

// clearHistory deletes every activity entry
func (m *Model) clearHistory() tea.Cmd {
	mgr := m.historyManager
	if mgr == nil {
		return nil
	}
	return func() tea.Msg {
		return historyClearedMsg{err: mgr.Clear()}
	}
}
