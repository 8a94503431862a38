package tui

import (
	"errors"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/studentcrud/internal/api"
	"github.com/studiowebux/studentcrud/internal/config"
	"github.com/studiowebux/studentcrud/internal/history"
	"github.com/studiowebux/studentcrud/internal/keybinds"
	"github.com/studiowebux/studentcrud/internal/roster"
	"go.uber.org/zap"
)

// Options wires the TUI to its collaborators
type Options struct {
	// Store performs the four remote calls. Required.
	Store api.Store

	// History backs the activity modal; nil disables it
	History *history.Manager

	// Keybinds defaults to keybinds.NewDefaultRegistry()
	Keybinds *keybinds.Registry

	Logger *zap.Logger

	// Clipboard defaults to the system clipboard
	Clipboard func(string) error

	// Endpoint is shown next to the title
	Endpoint string

	UI config.UI

	// HistoryLimit caps the entries shown in the history modal; 0 shows all
	HistoryLimit int
}

// New creates a new TUI model
func New(opts Options) (Model, error) {
	if opts.Store == nil {
		return Model{}, errors.New("tui: a student store is required")
	}

	registry := opts.Keybinds
	if registry == nil {
		registry = keybinds.NewDefaultRegistry()
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	copyText := opts.Clipboard
	if copyText == nil {
		copyText = clipboard.WriteAll
	}

	limit := opts.HistoryLimit
	if limit < 0 {
		limit = config.DefaultHistoryLimit
	}

	search := textinput.New()
	search.Prompt = ""
	search.Placeholder = "name or address"

	m := Model{
		store:          opts.Store,
		historyManager: opts.History,
		keybinds:       registry,
		logger:         logger,
		copyText:       copyText,
		roster:         roster.New(roster.WithKeepStalePage(opts.UI.KeepStalePage)),
		mode:           ModeNormal,
		searchInput:    search,
		historyState:   NewHistoryState(),
		historyLimit:   limit,
		endpoint:       opts.Endpoint,
		helpView:       viewport.New(80, 20),
		modalView:      viewport.New(80, 20),
	}

	return m, nil
}

// Run starts the TUI and blocks until the user quits
func Run(opts Options) error {
	m, err := New(opts)
	if err != nil {
		return err
	}
	defer m.Cleanup()

	// Pass pointer since Update uses pointer receiver
	p := tea.NewProgram(&m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}

	return nil
}
