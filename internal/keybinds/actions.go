package keybinds

// Action represents a user action that can be triggered by a keybinding
type Action string

// Context represents the context in which keybindings are active
type Context string

const (
	ContextGlobal  Context = "global"  // Available everywhere
	ContextTable   Context = "table"   // Student table (normal mode)
	ContextSearch  Context = "search"  // Search input focused
	ContextForm    Context = "form"    // Add/edit modal form
	ContextViewer  Context = "viewer"  // Generic scrollable modal
	ContextHelp    Context = "help"    // Help modal
	ContextHistory Context = "history" // Activity history modal
)

// parents defines which context a lookup falls back to before global
var parents = map[Context]Context{
	ContextHelp:    ContextViewer,
	ContextHistory: ContextViewer,
}

// Parent returns the context consulted after c, ending at ContextGlobal
func Parent(c Context) Context {
	if p, ok := parents[c]; ok {
		return p
	}
	return ContextGlobal
}

const (
	// Global actions
	ActionQuit      Action = "quit"       // Quit application
	ActionQuitForce Action = "quit_force" // Force quit (ctrl+c)

	// Navigation
	ActionNavigateUp     Action = "navigate_up"
	ActionNavigateDown   Action = "navigate_down"
	ActionPrevPage       Action = "prev_page"
	ActionNextPage       Action = "next_page"
	ActionPageUp         Action = "page_up"
	ActionPageDown       Action = "page_down"
	ActionGoToTop        Action = "go_to_top"
	ActionGoToBottom     Action = "go_to_bottom"
	ActionGoToTopPrepare Action = "go_to_top_prepare" // First 'g' in 'gg' sequence

	// Record operations (table)
	ActionAdd     Action = "add"
	ActionEdit    Action = "edit"
	ActionDelete  Action = "delete"
	ActionRefresh Action = "refresh"
	ActionCopy    Action = "copy_to_clipboard"

	// Modal launchers (table)
	ActionOpenSearch  Action = "open_search"
	ActionClearSearch Action = "clear_search"
	ActionOpenHistory Action = "open_history"
	ActionOpenHelp    Action = "open_help"

	// Search input
	ActionSearchApply  Action = "search_apply"
	ActionSearchCancel Action = "search_cancel"

	// Form
	ActionNextField  Action = "next_field"
	ActionPrevField  Action = "prev_field"
	ActionFormSubmit Action = "form_submit" // Submit from any field
	ActionFormEnter  Action = "form_enter"  // Advance, or submit on the button
	ActionFormCancel Action = "form_cancel"

	// Viewers
	ActionCloseModal   Action = "close_modal"
	ActionHistoryClear Action = "history_clear"
)

// ActionInfo contains metadata about an action
type ActionInfo struct {
	Action      Action
	Description string
	Category    string
}

var actionInfos = map[Action]ActionInfo{
	ActionQuit:           {ActionQuit, "Quit", "Global"},
	ActionQuitForce:      {ActionQuitForce, "Force quit", "Global"},
	ActionNavigateUp:     {ActionNavigateUp, "Move up", "Navigation"},
	ActionNavigateDown:   {ActionNavigateDown, "Move down", "Navigation"},
	ActionPrevPage:       {ActionPrevPage, "Previous page", "Navigation"},
	ActionNextPage:       {ActionNextPage, "Next page", "Navigation"},
	ActionPageUp:         {ActionPageUp, "Scroll page up", "Navigation"},
	ActionPageDown:       {ActionPageDown, "Scroll page down", "Navigation"},
	ActionGoToTop:        {ActionGoToTop, "Go to top", "Navigation"},
	ActionGoToBottom:     {ActionGoToBottom, "Go to bottom", "Navigation"},
	ActionAdd:            {ActionAdd, "Add student", "Students"},
	ActionEdit:           {ActionEdit, "Edit selected student", "Students"},
	ActionDelete:         {ActionDelete, "Delete selected student", "Students"},
	ActionRefresh:        {ActionRefresh, "Reload the list", "Students"},
	ActionCopy:           {ActionCopy, "Copy selected student as JSON", "Students"},
	ActionOpenSearch:     {ActionOpenSearch, "Search", "Search"},
	ActionClearSearch:    {ActionClearSearch, "Clear search", "Search"},
	ActionSearchApply:    {ActionSearchApply, "Keep search and return to table", "Search"},
	ActionSearchCancel:   {ActionSearchCancel, "Clear search and return to table", "Search"},
	ActionOpenHistory:    {ActionOpenHistory, "Activity history", "Views"},
	ActionOpenHelp:       {ActionOpenHelp, "Help", "Views"},
	ActionNextField:      {ActionNextField, "Next field", "Form"},
	ActionPrevField:      {ActionPrevField, "Previous field", "Form"},
	ActionFormSubmit:     {ActionFormSubmit, "Submit", "Form"},
	ActionFormEnter:      {ActionFormEnter, "Next field / submit on button", "Form"},
	ActionFormCancel:     {ActionFormCancel, "Close without saving", "Form"},
	ActionCloseModal:     {ActionCloseModal, "Close", "Views"},
	ActionHistoryClear:   {ActionHistoryClear, "Clear history", "Views"},
	ActionGoToTopPrepare: {ActionGoToTopPrepare, "Go to top (first g)", "Navigation"},
}

// GetActionInfo returns human-readable information about an action
func GetActionInfo(action Action) ActionInfo {
	if info, ok := actionInfos[action]; ok {
		return info
	}
	return ActionInfo{action, string(action), "Unknown"}
}

// IsKnownAction reports whether action is one this application handles
func IsKnownAction(action Action) bool {
	_, ok := actionInfos[action]
	return ok
}

// IsGlobalAction returns true if the action is available in all contexts
func IsGlobalAction(action Action) bool {
	return action == ActionQuitForce
}
