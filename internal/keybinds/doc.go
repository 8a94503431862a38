/*
Package keybinds provides customizable keyboard binding management.

# Key Concepts

Contexts:
  - Global: bindings available everywhere (ctrl+c)
  - Table: the student table and pager
  - Search: the search input is focused
  - Form: the add/edit modal
  - Viewer: scrollable modals; Help and History fall back to it

A key is resolved in its own context first, then the parent (Viewer for
Help and History), then Global.

Multi-key sequences: "g" followed by "g" jumps to the top of a viewer.

# Configuration File Format

Overrides live in ~/.studentcrud/keybinds.json. Each section maps an action
to a comma-separated list of keys; the list replaces that action's defaults
in the section:

	{
	  "version": "1.0",
	  "table": {
	    "delete": "x,delete",
	    "next_page": "right,n"
	  },
	  "form": {
	    "form_submit": "ctrl+s,alt+enter"
	  }
	}

# Validation

The validator reports unknown actions, printable keys bound in input
contexts (they could never be typed), rebinding of ctrl+c, and bindings
that shadow a parent context.

# Example Usage

	registry, err := keybinds.LoadOrDefault(config.KeybindsFile)
	if err != nil {
		return err
	}

	if action, ok := registry.Match(keybinds.ContextTable, msg.String()); ok {
		// handle action
	}

The Registry is not safe for concurrent writes; build it before the program
starts and only read from it afterwards.
*/
package keybinds
