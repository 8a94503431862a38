// Package cli implements the non-interactive studentcrud commands. Every
// command writes to the given writer so output can be piped or captured.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/studiowebux/studentcrud/internal/api"
	"github.com/studiowebux/studentcrud/internal/filter"
	"github.com/studiowebux/studentcrud/internal/roster"
	"github.com/studiowebux/studentcrud/internal/types"
)

// Output formats
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// ValidateFormat rejects unknown output formats. Empty means table.
func ValidateFormat(format string) error {
	switch format {
	case "", FormatTable, FormatJSON, FormatYAML:
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (use table, json or yaml)", format)
	}
}

// ListOptions contains options for the list command
type ListOptions struct {
	Search string
	Page   int  // 1-based page of the filtered set
	All    bool // ignore Page and print every match
	Output string
	Query  string // JMESPath expression applied to the selected rows
}

// List fetches the collection and prints one page of the filtered set
func List(ctx context.Context, store api.Store, out io.Writer, opts ListOptions) error {
	if err := ValidateFormat(opts.Output); err != nil {
		return err
	}
	if opts.Query != "" && !filter.IsValidJMESPath(opts.Query) {
		return fmt.Errorf("invalid JMESPath expression '%s'", opts.Query)
	}

	students, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list students: %w", err)
	}

	filtered := roster.Filter(students, opts.Search)
	rows := filtered
	page := 1
	if !opts.All {
		page = opts.Page
		if page < 1 {
			return fmt.Errorf("page must be 1 or greater, got %d", page)
		}
		rows = roster.Window(filtered, page)
	}

	if opts.Query != "" {
		result, err := filter.ApplyTo(rows, opts.Query)
		if err != nil {
			return err
		}
		return writeQueryResult(out, result, opts.Output)
	}

	switch opts.Output {
	case FormatJSON, FormatYAML:
		return writeData(out, rows, opts.Output)
	}

	firstRow := 1
	if !opts.All {
		firstRow = (page-1)*roster.PageSize + 1
	}
	fmt.Fprintln(out, studentTable(rows, firstRow))

	if opts.All {
		fmt.Fprintf(out, "%d of %d students\n", len(filtered), len(students))
	} else {
		fmt.Fprintf(out, "Page %d of %d (%d of %d students)\n",
			page, roster.TotalPages(len(filtered)), len(filtered), len(students))
	}
	return nil
}

// Add creates a student from draft and prints the created record
func Add(ctx context.Context, store api.Store, out io.Writer, draft types.Draft, output string) error {
	if err := ValidateFormat(output); err != nil {
		return err
	}
	if err := checkRequired(draft); err != nil {
		return err
	}

	created, err := store.Create(ctx, draft)
	if err != nil {
		return fmt.Errorf("failed to create student: %w", err)
	}

	return writeRecord(out, "Created", created, output)
}

// Update sends patch for id and prints the updated record
func Update(ctx context.Context, store api.Store, out io.Writer, id string, patch types.Patch, output string) error {
	if err := ValidateFormat(output); err != nil {
		return err
	}
	if patch.IsEmpty() {
		return errors.New("nothing to update: pass at least one field flag")
	}

	updated, err := store.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return fmt.Errorf("student %s not found", id)
		}
		return fmt.Errorf("failed to update student %s: %w", id, err)
	}
	if updated.ID == "" {
		updated.ID = id
	}

	return writeRecord(out, "Updated", updated, output)
}

// Delete removes the student with id
func Delete(ctx context.Context, store api.Store, out io.Writer, id string) error {
	if err := store.Delete(ctx, id); err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return fmt.Errorf("student %s not found", id)
		}
		return fmt.Errorf("failed to delete student %s: %w", id, err)
	}

	fmt.Fprintf(out, "Deleted %s\n", id)
	return nil
}

var validate = validator.New()

// flagNames maps Draft fields to the flags that set them
var flagNames = map[string]string{
	"FirstName":   "--fname",
	"LastName":    "--lname",
	"Birthdate":   "--birthdate",
	"Address":     "--address",
	"PhoneNumber": "--phone",
}

// checkRequired reports every required field left empty, by flag name
func checkRequired(draft types.Draft) error {
	err := validate.Struct(draft)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		missing = append(missing, flagNames[fe.StructField()])
	}
	return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
}
