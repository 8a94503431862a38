package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/studentcrud/internal/api"
	"github.com/studiowebux/studentcrud/internal/form"
	"github.com/studiowebux/studentcrud/internal/history"
	"github.com/studiowebux/studentcrud/internal/keybinds"
	"github.com/studiowebux/studentcrud/internal/roster"
	"github.com/studiowebux/studentcrud/internal/types"
	"go.uber.org/zap"
)

// Mode represents the current TUI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeForm
	ModeHelp
	ModeHistory
)

// Model represents the TUI state
type Model struct {
	// Core dependencies
	store          api.Store
	historyManager *history.Manager
	keybinds       *keybinds.Registry
	logger         *zap.Logger
	copyText       func(string) error

	// Application state
	roster       *roster.State
	mode         Mode
	form         form.Model
	searchInput  textinput.Model
	historyState *HistoryState
	historyLimit int
	endpoint     string

	// Views
	helpView  viewport.Model
	modalView viewport.Model

	// Layout
	width  int
	height int

	// Status bar
	statusMsg string
	errorMsg  string
}

// Init starts the initial list fetch
func (m *Model) Init() tea.Cmd {
	m.roster.BeginFetch()
	return m.fetchStudents()
}

// Cleanup closes database connections and cleans up resources
func (m *Model) Cleanup() {
	if m.historyManager != nil {
		if err := m.historyManager.Close(); err != nil {
			m.logger.Warn("error closing history database", zap.Error(err))
		}
	}
}

// Update handles messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd = m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateViewport()

	case studentsLoadedMsg:
		m.roster.Resolve(msg.students, msg.err)
		if msg.err != nil {
			m.logger.Error("failed to load students", zap.Error(msg.err))
			if m.roster.Status() == roster.StatusReady {
				m.errorMsg = "Refresh failed: " + describeFetchError(msg.err)
			}
		}

	case form.SubmittedMsg:
		cmd = m.submitSelected(msg.Draft)

	case form.CancelledMsg:
		m.closeForm()

	case mutationDoneMsg:
		cmd = m.handleMutationDone(msg)

	case historyLoadedMsg:
		if msg.err != nil {
			m.errorMsg = "Failed to load history: " + msg.err.Error()
			m.logger.Warn("failed to load history", zap.Error(msg.err))
		}
		m.historyState.SetEntries(msg.entries)
		m.updateHistoryView()

	case historyClearedMsg:
		if msg.err != nil {
			m.errorMsg = "Failed to clear history: " + msg.err.Error()
			break
		}
		m.statusMsg = "History cleared"
		cmd = m.loadHistory()

	case statusMsg:
		m.statusMsg = string(msg)
		m.errorMsg = ""

	case errorMsg:
		m.errorMsg = string(msg)

	default:
		// Cursor blink and other component messages
		if m.mode == ModeForm {
			m.form, cmd = m.form.Update(msg)
		} else if m.mode == ModeSearch {
			m.searchInput, cmd = m.searchInput.Update(msg)
		}
	}

	return m, cmd
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	switch m.mode {
	case ModeForm:
		return m.renderFormModal()
	case ModeHelp:
		return m.renderHelp()
	case ModeHistory:
		return m.renderHistory()
	default:
		return m.renderMain()
	}
}

// Custom message types
type studentsLoadedMsg struct {
	students []types.Student
	err      error
}

type mutationDoneMsg struct {
	op      string
	id      string
	student types.Student
	err     error
}

type historyLoadedMsg struct {
	entries []types.HistoryEntry
	err     error
}

type historyClearedMsg struct {
	err error
}

type statusMsg string

type errorMsg string
