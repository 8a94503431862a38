/*
Package tui implements the terminal user interface for studentcrud.

# Architecture

The TUI follows the Bubble Tea framework's Model-Update-View pattern:
  - Model: owns the roster state, the open form and the modal viewports
  - Update: processes key presses and the results of remote calls
  - View: renders the current mode

# Key Components

  - model.go: Model, modes and message types
  - keys.go: keyboard routing per mode through the keybinds registry
  - actions.go: commands that call the store, the clipboard and the history
  - render.go: the table, search bar, pager and status bar
  - modals.go: the add/edit form, help and history modals

# Data Flow

Every remote call runs as a tea.Cmd and reports back as a message. The list
cache is only written when a studentsLoadedMsg arrives. A successful create,
update or delete invalidates the cache and starts a new fetch; a failed one
is logged and leaves the list as it is. The add/edit modal closes as soon as
the form is submitted, before the call completes.
*/
package tui
