package keybinds

// NewDefaultRegistry creates a registry with all default keybindings
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	registerGlobalBindings(r)
	registerTableBindings(r)
	registerSearchBindings(r)
	registerFormBindings(r)
	registerViewerBindings(r)
	registerHelpBindings(r)
	registerHistoryBindings(r)

	return r
}

// registerGlobalBindings sets up bindings available in all modes
func registerGlobalBindings(r *Registry) {
	r.Register(ContextGlobal, "ctrl+c", ActionQuitForce)
}

// registerTableBindings sets up the student table (normal mode)
func registerTableBindings(r *Registry) {
	r.Register(ContextTable, "q", ActionQuit)

	// Row cursor within the page window
	r.RegisterMultiple(ContextTable, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ContextTable, []string{"down", "j"}, ActionNavigateDown)

	// Pager
	r.RegisterMultiple(ContextTable, []string{"left", "h", "pgup", "p"}, ActionPrevPage)
	r.RegisterMultiple(ContextTable, []string{"right", "l", "pgdown", "n"}, ActionNextPage)

	// Records
	r.Register(ContextTable, "a", ActionAdd)
	r.RegisterMultiple(ContextTable, []string{"e", "enter"}, ActionEdit)
	r.Register(ContextTable, "d", ActionDelete)
	r.Register(ContextTable, "r", ActionRefresh)
	r.Register(ContextTable, "y", ActionCopy)

	// Modals
	r.Register(ContextTable, "/", ActionOpenSearch)
	r.Register(ContextTable, "esc", ActionClearSearch)
	r.Register(ContextTable, "H", ActionOpenHistory)
	r.Register(ContextTable, "?", ActionOpenHelp)
}

// registerSearchBindings sets up the search input; other keys edit the text
func registerSearchBindings(r *Registry) {
	r.RegisterMultiple(ContextSearch, []string{"enter", "down", "tab"}, ActionSearchApply)
	r.Register(ContextSearch, "esc", ActionSearchCancel)
}

// registerFormBindings sets up the add/edit modal; other keys edit the focused field
func registerFormBindings(r *Registry) {
	r.RegisterMultiple(ContextForm, []string{"tab", "down"}, ActionNextField)
	r.RegisterMultiple(ContextForm, []string{"shift+tab", "up"}, ActionPrevField)
	r.Register(ContextForm, "ctrl+s", ActionFormSubmit)
	r.Register(ContextForm, "enter", ActionFormEnter)
	r.Register(ContextForm, "esc", ActionFormCancel)
}

// registerViewerBindings sets up navigation shared by scrollable modals
func registerViewerBindings(r *Registry) {
	r.RegisterMultiple(ContextViewer, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ContextViewer, []string{"down", "j"}, ActionNavigateDown)
	r.Register(ContextViewer, "pgup", ActionPageUp)
	r.Register(ContextViewer, "pgdown", ActionPageDown)
	r.Register(ContextViewer, "g", ActionGoToTopPrepare)
	r.Register(ContextViewer, "gg", ActionGoToTop)
	r.Register(ContextViewer, "home", ActionGoToTop)
	r.RegisterMultiple(ContextViewer, []string{"G", "end"}, ActionGoToBottom)
	r.RegisterMultiple(ContextViewer, []string{"esc", "q"}, ActionCloseModal)
}

func registerHelpBindings(r *Registry) {
	r.Register(ContextHelp, "?", ActionCloseModal)
}

func registerHistoryBindings(r *Registry) {
	r.Register(ContextHistory, "H", ActionCloseModal)
	r.Register(ContextHistory, "C", ActionHistoryClear)
}
