package tui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/studentcrud/internal/keybinds"
)

// handleKeyPress routes a key to the handler of the current mode
func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	// Force quit works everywhere, including inside text inputs
	if action, ok := m.keybinds.Match(keybinds.ContextGlobal, msg.String()); ok && action == keybinds.ActionQuitForce {
		return tea.Quit
	}

	switch m.mode {
	case ModeSearch:
		return m.handleSearchKeys(msg)
	case ModeForm:
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return cmd
	case ModeHelp:
		return m.handleViewerKeys(keybinds.ContextHelp, &m.helpView, msg)
	case ModeHistory:
		return m.handleViewerKeys(keybinds.ContextHistory, &m.modalView, msg)
	default:
		return m.handleNormalKeys(msg)
	}
}

// handleNormalKeys handles the student table
func (m *Model) handleNormalKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok := m.keybinds.Match(keybinds.ContextTable, msg.String())
	if !ok {
		return nil
	}

	switch action {
	case keybinds.ActionQuit:
		return tea.Quit

	case keybinds.ActionNavigateUp:
		m.roster.CursorUp()
	case keybinds.ActionNavigateDown:
		m.roster.CursorDown()
	case keybinds.ActionPrevPage:
		m.roster.PrevPage()
	case keybinds.ActionNextPage:
		m.roster.NextPage()

	case keybinds.ActionAdd:
		if m.roster.Loading() {
			return nil
		}
		return m.openAddForm()
	case keybinds.ActionEdit:
		return m.openEditForm()
	case keybinds.ActionDelete:
		return m.deleteCurrent()
	case keybinds.ActionRefresh:
		m.statusMsg = ""
		m.errorMsg = ""
		return m.refresh()
	case keybinds.ActionCopy:
		return m.copyCurrent()

	case keybinds.ActionOpenSearch:
		if m.roster.Loading() {
			return nil
		}
		m.mode = ModeSearch
		return m.searchInput.Focus()
	case keybinds.ActionClearSearch:
		m.searchInput.SetValue("")
		m.roster.SetSearch("")

	case keybinds.ActionOpenHelp:
		m.mode = ModeHelp
		m.updateHelpView()
		m.helpView.GotoTop()
	case keybinds.ActionOpenHistory:
		m.mode = ModeHistory
		m.historyState.SetEntries(nil)
		m.updateHistoryView()
		return m.loadHistory()
	}

	return nil
}

// handleSearchKeys edits the search text; the filter follows every keystroke
func (m *Model) handleSearchKeys(msg tea.KeyMsg) tea.Cmd {
	if action, ok := m.keybinds.Match(keybinds.ContextSearch, msg.String()); ok {
		switch action {
		case keybinds.ActionSearchApply:
			m.mode = ModeNormal
			m.searchInput.Blur()
			return nil
		case keybinds.ActionSearchCancel:
			m.mode = ModeNormal
			m.searchInput.Blur()
			m.searchInput.SetValue("")
			m.roster.SetSearch("")
			return nil
		}
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.roster.SetSearch(m.searchInput.Value())
	return cmd
}

// handleViewerKeys scrolls a modal viewport and closes it
func (m *Model) handleViewerKeys(context keybinds.Context, view *viewport.Model, msg tea.KeyMsg) tea.Cmd {
	action, complete, partial := m.keybinds.MatchMultiKey(context, msg.String())
	if partial || !complete {
		return nil
	}

	switch action {
	case keybinds.ActionCloseModal:
		m.keybinds.ClearMultiKeyState(context)
		m.mode = ModeNormal
	case keybinds.ActionNavigateUp:
		view.ScrollUp(1)
	case keybinds.ActionNavigateDown:
		view.ScrollDown(1)
	case keybinds.ActionPageUp:
		view.PageUp()
	case keybinds.ActionPageDown:
		view.PageDown()
	case keybinds.ActionGoToTop:
		view.GotoTop()
	case keybinds.ActionGoToBottom:
		view.GotoBottom()
	case keybinds.ActionHistoryClear:
		if context == keybinds.ContextHistory {
			return m.clearHistory()
		}
	}

	return nil
}
