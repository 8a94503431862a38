package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/studiowebux/studentcrud/internal/types"
	"gopkg.in/yaml.v3"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

// studentTable renders rows numbered from firstRow
func studentTable(students []types.Student, firstRow int) string {
	t := newTable("#", "ID", "First name", "Last name", "Birthdate", "Address", "Phone")
	if len(students) == 0 {
		t.Row("", "", "No students found.", "", "", "", "")
	}
	for i, st := range students {
		t.Row(
			strconv.Itoa(firstRow+i),
			st.ID,
			st.FirstName,
			st.LastName,
			st.BirthdateDay(),
			st.Address,
			st.PhoneNumber,
		)
	}
	return t.String()
}

// historyTable renders entries newest first
func historyTable(entries []types.HistoryEntry) string {
	t := newTable("Time", "Operation", "Student", "Status", "Duration", "Error")
	for _, e := range entries {
		student := e.StudentName
		if e.StudentID != "" {
			if student != "" {
				student += " "
			}
			student += "#" + e.StudentID
		}
		t.Row(
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			e.Operation,
			student,
			strconv.Itoa(e.Status),
			fmt.Sprintf("%dms", e.DurationMs),
			truncate(e.Error, 60),
		)
	}
	return t.String()
}

// writeData prints v as JSON or YAML
func writeData(out io.Writer, v any, format string) error {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(out, string(data))
	case FormatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		fmt.Fprint(out, string(data))
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
	return nil
}

// writeRecord prints a single record; the table format is one summary line
// followed by the record
func writeRecord(out io.Writer, verb string, st types.Student, format string) error {
	if format == FormatJSON || format == FormatYAML {
		return writeData(out, st, format)
	}
	fmt.Fprintf(out, "%s %s (%s)\n", verb, st.FullName(), st.ID)
	fmt.Fprintln(out, studentTable([]types.Student{st}, 1))
	return nil
}

// writeQueryResult prints a JMESPath result, which is already indented JSON
func writeQueryResult(out io.Writer, result string, format string) error {
	if format != FormatYAML {
		fmt.Fprintln(out, result)
		return nil
	}
	var data any
	if err := json.Unmarshal([]byte(result), &data); err != nil {
		return fmt.Errorf("invalid query result: %w", err)
	}
	return writeData(out, data, FormatYAML)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
