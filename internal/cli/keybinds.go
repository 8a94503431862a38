package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/studiowebux/studentcrud/internal/keybinds"
)

// CheckKeybinds validates the keybinding overrides at path without starting the UI
func CheckKeybinds(path string, out io.Writer) error {
	config, err := keybinds.LoadConfig(path)
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(out, "No keybinds file at %s, defaults are in use\n", path)
		return nil
	}
	if err != nil {
		return err
	}

	result := keybinds.NewValidator().ValidateConfig(config)
	fmt.Fprintln(out, result.String())
	if result.HasErrors() {
		return fmt.Errorf("%s has %d invalid keybinding(s)", path, len(result.Errors))
	}
	return nil
}
