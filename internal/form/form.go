// Package form implements the add/edit student form as a bubbletea component.
package form

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-playground/validator/v10"
	"github.com/studiowebux/studentcrud/internal/keybinds"
	"github.com/studiowebux/studentcrud/internal/types"
)

// Field identifies one input of the form
type Field int

const (
	FieldFirstName Field = iota
	FieldLastName
	FieldBirthdate
	FieldAddress
	FieldPhoneNumber

	// fieldSubmit is the submit button; it has no input
	fieldSubmit
)

// fieldCount is the number of text inputs
const fieldCount = int(fieldSubmit)

// birthdateLen is len("YYYY-MM-DD")
const birthdateLen = 10

// String returns the label shown next to the input
func (f Field) String() string {
	switch f {
	case FieldFirstName:
		return "First name"
	case FieldLastName:
		return "Last name"
	case FieldBirthdate:
		return "Birthdate"
	case FieldAddress:
		return "Address"
	case FieldPhoneNumber:
		return "Phone number"
	default:
		return "Submit"
	}
}

// Required reports whether the field must be non-empty to submit
func (f Field) Required() bool {
	return f != FieldAddress && f != fieldSubmit
}

// structFields maps Draft struct field names to form fields
var structFields = map[string]Field{
	"FirstName":   FieldFirstName,
	"LastName":    FieldLastName,
	"Birthdate":   FieldBirthdate,
	"Address":     FieldAddress,
	"PhoneNumber": FieldPhoneNumber,
}

var validate = validator.New()

// SubmittedMsg is emitted once when the form is submitted with every
// required field filled
type SubmittedMsg struct {
	Draft types.Draft
}

// CancelledMsg is emitted when the user closes the form without submitting
type CancelledMsg struct{}

// Model is the form state. Field values are seeded from the defaults passed
// to New and never re-read from them.
type Model struct {
	inputs      []textinput.Model
	focus       Field
	submitLabel string
	missing     map[Field]bool
	done        bool
	keys        *keybinds.Registry
	width       int
}

// New creates a form pre-filled with defaults (nil for an empty form).
// submitLabel is the text of the submit button.
func New(defaults *types.Draft, submitLabel string) Model {
	var d types.Draft
	if defaults != nil {
		d = *defaults
	}

	values := [fieldCount]string{
		FieldFirstName:   d.FirstName,
		FieldLastName:    d.LastName,
		FieldBirthdate:   types.DateOnly(d.Birthdate),
		FieldAddress:     d.Address,
		FieldPhoneNumber: d.PhoneNumber,
	}

	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.SetValue(values[i])
		inputs[i] = ti
	}
	inputs[FieldBirthdate].Placeholder = "YYYY-MM-DD"
	inputs[FieldBirthdate].CharLimit = birthdateLen
	inputs[FieldPhoneNumber].Placeholder = "555-0100"

	if submitLabel == "" {
		submitLabel = "Submit"
	}

	m := Model{
		inputs:      inputs,
		submitLabel: submitLabel,
		missing:     make(map[Field]bool),
		keys:        keybinds.NewDefaultRegistry(),
		width:       60,
	}
	m.setFocus(FieldFirstName)
	return m
}

// WithKeybinds replaces the default key registry
func (m Model) WithKeybinds(r *keybinds.Registry) Model {
	if r != nil {
		m.keys = r
	}
	return m
}

// SetWidth sets the total width available to the form
func (m *Model) SetWidth(width int) {
	if width > 0 {
		m.width = width
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Draft returns the current values
func (m Model) Draft() types.Draft {
	return types.Draft{
		FirstName:   m.inputs[FieldFirstName].Value(),
		LastName:    m.inputs[FieldLastName].Value(),
		Birthdate:   m.inputs[FieldBirthdate].Value(),
		Address:     m.inputs[FieldAddress].Value(),
		PhoneNumber: m.inputs[FieldPhoneNumber].Value(),
	}
}

// Value returns the current value of f
func (m Model) Value(f Field) string {
	if f < 0 || f >= fieldSubmit {
		return ""
	}
	return m.inputs[f].Value()
}

// Focused returns the focused field. Check SubmitFocused for the button.
func (m Model) Focused() Field { return m.focus }

// SubmitFocused reports whether the submit button has focus
func (m Model) SubmitFocused() bool { return m.focus == fieldSubmit }

// Missing reports whether f was empty at the last submit attempt
func (m Model) Missing(f Field) bool { return m.missing[f] }

// Submitted reports whether the form has emitted SubmittedMsg
func (m Model) Submitted() bool { return m.done }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.done {
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m.updateFocused(msg)
	}

	if action, ok := m.keys.Match(keybinds.ContextForm, keyMsg.String()); ok {
		switch action {
		case keybinds.ActionNextField:
			m.setFocus((m.focus + 1) % (fieldSubmit + 1))
			return m, nil
		case keybinds.ActionPrevField:
			m.setFocus((m.focus + fieldSubmit) % (fieldSubmit + 1))
			return m, nil
		case keybinds.ActionFormEnter:
			if m.focus == fieldSubmit {
				return m.submit()
			}
			m.setFocus(m.focus + 1)
			return m, nil
		case keybinds.ActionFormSubmit:
			return m.submit()
		case keybinds.ActionFormCancel:
			m.done = true
			return m, func() tea.Msg { return CancelledMsg{} }
		}
	}

	if m.focus == FieldBirthdate && !acceptsDateInput(keyMsg) {
		return m, nil
	}

	return m.updateFocused(msg)
}

func (m Model) updateFocused(msg tea.Msg) (Model, tea.Cmd) {
	if m.focus == fieldSubmit {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	if m.missing[m.focus] && m.inputs[m.focus].Value() != "" {
		delete(m.missing, m.focus)
	}
	return m, cmd
}

// acceptsDateInput limits typed and pasted text to digits and '-'
func acceptsDateInput(msg tea.KeyMsg) bool {
	if msg.Type != tea.KeyRunes {
		return true
	}
	for _, r := range msg.Runes {
		if (r < '0' || r > '9') && r != '-' {
			return false
		}
	}
	return true
}

// submit checks required fields; the first missing one takes focus
func (m Model) submit() (Model, tea.Cmd) {
	draft := m.Draft()

	missing := MissingFields(draft)
	m.missing = make(map[Field]bool, len(missing))
	for _, f := range missing {
		m.missing[f] = true
	}
	if len(missing) > 0 {
		m.setFocus(missing[0])
		return m, nil
	}

	m.done = true
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	return m, func() tea.Msg { return SubmittedMsg{Draft: draft} }
}

// MissingFields returns the required fields of d that are empty, in form order
func MissingFields(d types.Draft) []Field {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	seen := make(map[Field]bool)
	for _, fe := range verrs {
		if f, ok := structFields[fe.StructField()]; ok {
			seen[f] = true
		}
	}

	var fields []Field
	for f := FieldFirstName; f < fieldSubmit; f++ {
		if seen[f] {
			fields = append(fields, f)
		}
	}
	return fields
}

func (m *Model) setFocus(f Field) {
	m.focus = f
	for i := range m.inputs {
		if Field(i) == f {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

// View renders the inputs and the submit button
func (m Model) View() string {
	inner := max(m.width, 30)
	half := (inner - 2) / 2

	names := joinColumns(
		m.renderField(FieldFirstName, half),
		m.renderField(FieldLastName, half),
	)

	var b strings.Builder
	b.WriteString(names)
	b.WriteString("\n")
	b.WriteString(m.renderField(FieldBirthdate, birthdateLen+4))
	b.WriteString("\n")
	b.WriteString(m.renderField(FieldAddress, inner))
	b.WriteString("\n")
	b.WriteString(m.renderField(FieldPhoneNumber, inner))
	b.WriteString("\n\n")
	b.WriteString(m.renderSubmit())
	return b.String()
}
