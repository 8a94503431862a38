package cli

import (
	"fmt"
	"io"

	"github.com/studiowebux/studentcrud/internal/history"
)

// HistoryOptions contains options for the history command
type HistoryOptions struct {
	Limit  int
	Clear  bool
	Output string
}

// History prints or clears the local activity log. A nil manager means
// history is disabled in the configuration.
func History(mgr *history.Manager, out io.Writer, opts HistoryOptions) error {
	if err := ValidateFormat(opts.Output); err != nil {
		return err
	}
	if mgr == nil {
		return fmt.Errorf("history is disabled (history.disabled in the config file)")
	}

	if opts.Clear {
		count, err := mgr.GetCount()
		if err != nil {
			return fmt.Errorf("failed to count history entries: %w", err)
		}
		if err := mgr.Clear(); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		fmt.Fprintf(out, "Cleared %d history entries\n", count)
		return nil
	}

	entries, err := mgr.Load(opts.Limit)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if opts.Output == FormatJSON || opts.Output == FormatYAML {
		return writeData(out, entries, opts.Output)
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "No activity recorded yet.")
		return nil
	}
	fmt.Fprintln(out, historyTable(entries))
	return nil
}
