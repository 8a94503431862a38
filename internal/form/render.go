package form

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	colorRed  = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"}
	colorBlue = lipgloss.AdaptiveColor{Light: "#00008b", Dark: "#0000ff"}
	colorGray = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"}
	colorCyan = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"}
)

var (
	styleLabel = lipgloss.NewStyle().
			Foreground(colorGray)

	styleLabelFocused = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorCyan)

	styleRequired = lipgloss.NewStyle().
			Foreground(colorRed)

	styleBox = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(colorGray).
			Padding(0, 1)

	styleBoxFocused = styleBox.
			BorderForeground(colorCyan)

	styleBoxMissing = styleBox.
			BorderForeground(colorRed)

	styleButton = lipgloss.NewStyle().
			Padding(0, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGray)

	styleButtonFocused = styleButton.
				Bold(true).
				BorderForeground(colorBlue).
				Foreground(colorCyan)
)

// renderField draws the label and the bordered input, width wide
func (m Model) renderField(f Field, width int) string {
	labelStyle := styleLabel
	boxStyle := styleBox
	if f == m.focus {
		labelStyle = styleLabelFocused
		boxStyle = styleBoxFocused
	}

	label := labelStyle.Render(f.String())
	if f.Required() {
		label += styleRequired.Render(" *")
	}
	if m.missing[f] {
		boxStyle = styleBoxMissing
		label += " " + styleRequired.Render("required")
	}

	// border (2) + padding (2)
	input := m.inputs[f]
	input.Width = max(width-4, 1)

	return lipgloss.JoinVertical(lipgloss.Left,
		label,
		boxStyle.Width(max(width-2, 1)).Render(input.View()),
	)
}

func (m Model) renderSubmit() string {
	if m.focus == fieldSubmit {
		return styleButtonFocused.Render(m.submitLabel)
	}
	return styleButton.Render(m.submitLabel)
}

func joinColumns(left, right string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
}
