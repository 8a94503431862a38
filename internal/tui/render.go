package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/studiowebux/studentcrud/internal/keybinds"
	"github.com/studiowebux/studentcrud/internal/roster"
	"github.com/studiowebux/studentcrud/internal/types"
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"}
	colorRed    = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"}
	colorYellow = lipgloss.AdaptiveColor{Light: "#b8860b", Dark: "#ffff00"}
	colorBlue   = lipgloss.AdaptiveColor{Light: "#00008b", Dark: "#0000ff"}
	colorGray   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"}
)

// Style definitions
var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue)

	styleSelected = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#d3d3d3", Dark: "#3a3a3a"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"})

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorYellow)

	styleSubtle = lipgloss.NewStyle().
			Foreground(colorGray)
)

// tableColumns holds the width of each table column
type tableColumns struct {
	number, first, last, birthdate, address, phone int
}

func (c tableColumns) total() int {
	return c.number + c.first + c.last + c.birthdate + c.address + c.phone + 5*ColumnGap
}

// layoutColumns splits width between the columns; names take a quarter of
// the flexible space each and the address takes the rest
func layoutColumns(width int) tableColumns {
	cols := tableColumns{
		number:    ColumnNumberWidth,
		birthdate: ColumnBirthdateWidth,
		phone:     ColumnPhoneWidth,
	}
	flexible := max(width-cols.total(), 3*ColumnMinTextWidth)
	cols.first = max(flexible/4, ColumnMinTextWidth)
	cols.last = max(flexible/4, ColumnMinTextWidth)
	cols.address = max(flexible-cols.first-cols.last, ColumnMinTextWidth)
	return cols
}

// renderMain renders the table view (title, search, table, pager, status bar)
func (m Model) renderMain() string {
	width := max(m.width-MinimalBorderMargin, 40)

	sections := []string{
		m.renderTitle(),
		m.renderSearchBar(),
		"",
	}

	switch {
	case m.roster.Loading():
		// No partial rendering while the first fetch is outstanding
		sections = append(sections, styleWarning.Render("Loading students..."))
	case m.roster.Status() == roster.StatusError:
		sections = append(sections, styleError.Render("Failed to load students: "+describeFetchError(m.roster.Err())))
	default:
		sections = append(sections,
			m.renderTable(width),
			"",
			m.renderPager(),
		)
	}

	body := lipgloss.NewStyle().Padding(0, 1).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))

	bodyHeight := lipgloss.Height(body)
	gap := m.height - bodyHeight - 1
	if gap > 0 {
		body += strings.Repeat("\n", gap)
	}

	return body + "\n" + m.renderStatusBar()
}

func (m Model) renderTitle() string {
	title := styleTitle.Render("Students")
	if m.endpoint != "" {
		title += "  " + styleSubtle.Render(m.endpoint)
	}
	if m.roster.Fetching() && !m.roster.Loading() {
		title += "  " + styleWarning.Render("refreshing...")
	}
	return title
}

func (m Model) renderSearchBar() string {
	label := styleSubtle.Render("Search: ")
	if m.mode == ModeSearch {
		return styleTitle.Render("Search: ") + m.searchInput.View()
	}
	if m.roster.Search() == "" {
		return label + styleSubtle.Render(fmt.Sprintf("(%s to search)", m.keybinds.GetBindingString(keybinds.ContextTable, keybinds.ActionOpenSearch)))
	}
	return label + m.roster.Search()
}

// renderTable renders the header and the rows of the current page window.
// An empty window shows one placeholder row spanning every column.
func (m Model) renderTable(width int) string {
	cols := layoutColumns(width)

	header := styleHeader.Render(joinCells(cols, "#", "First name", "Last name", "Birthdate", "Address", "Phone"))
	rule := styleSubtle.Render(strings.Repeat("─", cols.total()))

	lines := []string{header, rule}

	window := m.roster.Window()
	if len(window) == 0 {
		placeholder := lipgloss.PlaceHorizontal(cols.total(), lipgloss.Center, "No students found.")
		lines = append(lines, styleSubtle.Render(placeholder))
		return strings.Join(lines, "\n")
	}

	for i, st := range window {
		row := m.renderRow(cols, m.roster.RowNumber(i), st)
		if i == m.roster.Cursor() {
			row = styleSelected.Render(row)
		}
		lines = append(lines, row)
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderRow(cols tableColumns, number int, st types.Student) string {
	return joinCells(cols,
		fmt.Sprintf("%d", number),
		st.FirstName,
		st.LastName,
		st.BirthdateDay(),
		st.Address,
		st.PhoneNumber,
	)
}

func joinCells(cols tableColumns, number, first, last, birthdate, address, phone string) string {
	gap := strings.Repeat(" ", ColumnGap)
	return strings.Join([]string{
		fitCell(number, cols.number),
		fitCell(first, cols.first),
		fitCell(last, cols.last),
		fitCell(birthdate, cols.birthdate),
		fitCell(address, cols.address),
		fitCell(phone, cols.phone),
	}, gap)
}

// fitCell pads or truncates s to exactly width cells
func fitCell(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if w := lipgloss.Width(s); w <= width {
		return s + strings.Repeat(" ", width-w)
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	out := string(runes) + "…"
	return out + strings.Repeat(" ", max(width-lipgloss.Width(out), 0))
}

// renderPager renders "Page X of Y" with Previous/Next, dimmed when disabled
func (m Model) renderPager() string {
	prev := "‹ Previous"
	if m.roster.HasPrev() {
		prev = styleTitle.Render(prev)
	} else {
		prev = styleSubtle.Render(prev)
	}

	next := "Next ›"
	if m.roster.HasNext() {
		next = styleTitle.Render(next)
	} else {
		next = styleSubtle.Render(next)
	}

	page := fmt.Sprintf("Page %d of %d", m.roster.Page(), m.roster.TotalPages())
	count := styleSubtle.Render(fmt.Sprintf("(%d of %d students)", len(m.roster.Filtered()), len(m.roster.Students())))

	return strings.Join([]string{prev, page, next, count}, "   ")
}

// renderStatusBar renders the status/error message and key hints
func (m Model) renderStatusBar() string {
	var left string
	switch {
	case m.errorMsg != "":
		left = styleError.Render(truncateMessage(m.errorMsg))
	case m.statusMsg != "":
		left = styleSuccess.Render(truncateMessage(m.statusMsg))
	}

	hints := m.keyHints(
		keybinds.ActionAdd,
		keybinds.ActionEdit,
		keybinds.ActionDelete,
		keybinds.ActionOpenSearch,
		keybinds.ActionOpenHelp,
		keybinds.ActionQuit,
	)
	right := styleSubtle.Render(hints)

	space := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if space < 1 {
		return " " + left
	}
	return " " + left + strings.Repeat(" ", space) + right + " "
}

var hintLabels = map[keybinds.Action]string{
	keybinds.ActionAdd:        "add",
	keybinds.ActionEdit:       "edit",
	keybinds.ActionDelete:     "delete",
	keybinds.ActionOpenSearch: "search",
	keybinds.ActionOpenHelp:   "help",
	keybinds.ActionQuit:       "quit",
}

// keyHints renders "key label" pairs for the table context
func (m Model) keyHints(actions ...keybinds.Action) string {
	parts := make([]string, 0, len(actions))
	for _, action := range actions {
		keys := m.keybinds.GetBinding(keybinds.ContextTable, action)
		if len(keys) == 0 {
			continue
		}
		parts = append(parts, keys[0]+" "+hintLabels[action])
	}
	return strings.Join(parts, " · ")
}

// truncateMessage keeps status bar messages to one short line
func truncateMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\n", " ")
	if runes := []rune(msg); len(runes) > 100 {
		return string(runes[:97]) + "..."
	}
	return msg
}

// updateViewport resizes the components that depend on the window size
func (m *Model) updateViewport() {
	m.searchInput.Width = max(m.width-20, 10)
	m.form.SetWidth(m.formWidth())
	m.updateHelpView()
	m.updateHistoryView()
}

// formWidth is the inner width of the add/edit modal
func (m Model) formWidth() int {
	return min(max(m.width-ModalWidthMarginNarrow-ViewportPaddingHorizontal, 30), FormMaxWidth)
}
