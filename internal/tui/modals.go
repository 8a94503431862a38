package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/studiowebux/studentcrud/internal/keybinds"
)

// renderFormModal renders the add/edit form centered on screen
func (m Model) renderFormModal() string {
	title := "Add Student"
	if m.roster.Editing() {
		title = "Edit Student"
	}

	submit := m.keybinds.GetBindingString(keybinds.ContextForm, keybinds.ActionFormSubmit)
	cancel := m.keybinds.GetBindingString(keybinds.ContextForm, keybinds.ActionFormCancel)
	next := m.keybinds.GetBindingString(keybinds.ContextForm, keybinds.ActionNextField)
	footer := fmt.Sprintf("%s: next field | %s: submit | %s: close", next, submit, cancel)

	content := styleTitle.Render(title) + "\n\n" + m.form.View() + "\n\n" + styleSubtle.Render(footer)

	modalBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBlue).
		Padding(1, 2).
		Render(content)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modalBox,
	)
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	title := styleTitle.Render("Keyboard Shortcuts")
	footer := "↑/↓ j/k: scroll | ESC/?: close"

	fullContent := title + "\n\n" + m.helpView.View() + "\n\n" + styleSubtle.Render(footer)

	helpView := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBlue).
		Width(m.width - ModalWidthMarginNarrow).
		Height(m.height - ModalHeightMarginMed).
		Padding(1, 2).
		Render(fullContent)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		helpView,
	)
}

// helpSections lists the contexts shown in the help screen, in order
var helpSections = []struct {
	title   string
	context keybinds.Context
}{
	{"Table", keybinds.ContextTable},
	{"Search", keybinds.ContextSearch},
	{"Add / Edit form", keybinds.ContextForm},
	{"Viewers", keybinds.ContextViewer},
	{"History", keybinds.ContextHistory},
	{"Everywhere", keybinds.ContextGlobal},
}

// updateHelpView rebuilds the help text from the active keybindings
func (m *Model) updateHelpView() {
	m.helpView.Width = max(m.width-ModalWidthMarginNarrow-ViewportPaddingHorizontal-2, 10)
	m.helpView.Height = max(m.height-ModalHeightMarginMed-ModalOverheadLines-ModalFooterLines, 1)
	m.helpView.SetContent(m.helpContent())
}

func (m Model) helpContent() string {
	var b strings.Builder
	for i, section := range helpSections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(styleHeader.Render(section.title))
		b.WriteString("\n")

		var order []keybinds.Action
		keys := make(map[keybinds.Action][]string)
		for _, binding := range m.keybinds.ListBindings(section.context) {
			if binding.Action == keybinds.ActionGoToTopPrepare {
				continue
			}
			if _, seen := keys[binding.Action]; !seen {
				order = append(order, binding.Action)
			}
			keys[binding.Action] = append(keys[binding.Action], binding.Key)
		}

		for _, action := range order {
			info := keybinds.GetActionInfo(action)
			fmt.Fprintf(&b, "  %-22s %s\n", strings.Join(keys[action], ", "), info.Description)
		}
	}
	return b.String()
}

// renderHistory renders the activity history modal
func (m *Model) renderHistory() string {
	footer := "↑/↓ j/k: scroll | C: clear all | ESC/H/q: close"
	if m.historyManager == nil {
		footer = "ESC/H/q: close"
	}
	return m.renderModalWithFooter("Activity History", m.modalView.View(), footer,
		m.width-ModalWidthMargin, m.height-ModalHeightMargin)
}

// updateHistoryView rebuilds the history list
func (m *Model) updateHistoryView() {
	m.modalView.Width = max(m.width-ModalWidthMargin-ViewportPaddingHorizontal-2, 10)
	m.modalView.Height = max(m.height-ModalHeightMargin-ModalOverheadLines-ModalFooterLines, 1)
	m.modalView.SetContent(m.historyContent())
}

func (m Model) historyContent() string {
	if m.historyManager == nil {
		return styleSubtle.Render("History is disabled. Set history.disabled: false in the config file to record mutations.")
	}
	if !m.historyState.IsLoaded() {
		return styleWarning.Render("Loading history...")
	}

	entries := m.historyState.GetEntries()
	if len(entries) == 0 {
		return styleSubtle.Render("No activity recorded yet.")
	}

	var b strings.Builder
	ok, failed := m.historyState.Counts()
	b.WriteString(styleSubtle.Render(fmt.Sprintf("%d entries, %d succeeded, %d failed", len(entries), ok, failed)))
	b.WriteString("\n\n")

	for _, e := range entries {
		status := styleSuccess.Render(fmt.Sprintf("%3d", e.Status))
		if !e.Succeeded() {
			status = styleError.Render(fmt.Sprintf("%3d", e.Status))
		}

		target := e.StudentName
		if target == "" {
			target = e.StudentID
		}
		if e.StudentID != "" && e.StudentName != "" {
			target += styleSubtle.Render(" #" + e.StudentID)
		}

		fmt.Fprintf(&b, "%s  %s  %-7s %-6s %s  %s\n",
			styleSubtle.Render(e.Timestamp.Local().Format("2006-01-02 15:04:05")),
			status,
			e.Operation,
			e.Method,
			target,
			styleSubtle.Render(fmt.Sprintf("%dms", e.DurationMs)),
		)
		if e.Error != "" {
			b.WriteString("    " + styleError.Render(truncateMessage(e.Error)) + "\n")
		}
	}

	return b.String()
}

// renderModalWithFooter renders a modal dialog with content and a fixed footer
func (m *Model) renderModalWithFooter(title, content, footer string, width, height int) string {
	// For small terminals, use almost full screen
	maxWidth := m.width - ViewportPaddingHorizontal
	maxHeight := m.height - ModalHeightMarginSmall

	width = min(width, maxWidth)
	height = min(height, maxHeight)

	// Ensure minimum reasonable size (but allow small for tiny terminals)
	if width < 30 && m.width >= 30 {
		width = 30
	}
	if height < 8 && m.height >= 8 {
		height = 8
	}

	fullContent := styleTitle.Render(title) + "\n\n" + content
	if footer != "" {
		fullContent += "\n\n" + styleSubtle.Render(footer)
	}

	modalBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBlue).
		Width(width).
		Height(height).
		Padding(1, 2).
		Render(fullContent)

	// Modal is full screen or nearly full screen
	if width >= m.width-2 || height >= m.height-1 {
		return modalBox
	}

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modalBox,
	)
}
