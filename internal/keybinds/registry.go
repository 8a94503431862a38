package keybinds

import (
	"sort"
	"strings"
)

// Binding represents a keybinding mapping
type Binding struct {
	Key     string
	Action  Action
	Context Context
}

// Registry manages keybinding mappings and matching
type Registry struct {
	// bindings maps context -> key -> action
	bindings map[Context]map[string]Action

	// pending tracks the first key of a multi-key sequence (like 'gg')
	pending map[Context]string
}

// NewRegistry creates an empty keybinding registry
func NewRegistry() *Registry {
	return &Registry{
		bindings: make(map[Context]map[string]Action),
		pending:  make(map[Context]string),
	}
}

// Register adds a keybinding to the registry
func (r *Registry) Register(context Context, key string, action Action) {
	if r.bindings[context] == nil {
		r.bindings[context] = make(map[string]Action)
	}
	r.bindings[context][key] = action
}

// RegisterMultiple registers multiple keybindings for the same action
func (r *Registry) RegisterMultiple(context Context, keys []string, action Action) {
	for _, key := range keys {
		r.Register(context, key, action)
	}
}

// Unbind removes every key bound to action in context
func (r *Registry) Unbind(context Context, action Action) {
	for key, act := range r.bindings[context] {
		if act == action {
			delete(r.bindings[context], key)
		}
	}
}

// Match resolves key in context, then its parent chain, then global
func (r *Registry) Match(context Context, key string) (Action, bool) {
	for c := context; ; c = Parent(c) {
		if action, ok := r.bindings[c][key]; ok {
			return action, true
		}
		if c == ContextGlobal {
			return "", false
		}
	}
}

// MatchMultiKey handles two-key sequences such as 'gg'.
// It returns the action, whether it is a complete match, and whether the key
// started a sequence that needs another key.
func (r *Registry) MatchMultiKey(context Context, key string) (Action, bool, bool) {
	if prev, ok := r.pending[context]; ok {
		delete(r.pending, context)
		if action, ok := r.Match(context, prev+key); ok {
			return action, true, false
		}
		return "", false, false
	}

	action, ok := r.Match(context, key)
	if ok && action == ActionGoToTopPrepare {
		r.pending[context] = key
		return "", false, true
	}
	return action, ok, false
}

// ClearMultiKeyState clears any pending multi-key state for a context
func (r *Registry) ClearMultiKeyState(context Context) {
	delete(r.pending, context)
}

// GetBinding returns the sorted keys bound to an action in context, falling
// back along the parent chain when the context itself has none
func (r *Registry) GetBinding(context Context, action Action) []string {
	for c := context; ; c = Parent(c) {
		var keys []string
		for key, act := range r.bindings[c] {
			if act == action {
				keys = append(keys, key)
			}
		}
		if len(keys) > 0 {
			sortKeys(keys)
			return keys
		}
		if c == ContextGlobal {
			return nil
		}
	}
}

// GetBindingString returns a human-readable string of keys bound to an action
func (r *Registry) GetBindingString(context Context, action Action) string {
	keys := r.GetBinding(context, action)
	if len(keys) == 0 {
		return "unbound"
	}
	return strings.Join(keys, "/")
}

// ListBindings returns the bindings defined directly in context, sorted by action then key
func (r *Registry) ListBindings(context Context) []Binding {
	var bindings []Binding
	for key, action := range r.bindings[context] {
		bindings = append(bindings, Binding{Key: key, Action: action, Context: context})
	}
	sort.Slice(bindings, func(i, j int) bool {
		if bindings[i].Action != bindings[j].Action {
			return bindings[i].Action < bindings[j].Action
		}
		return keyLess(bindings[i].Key, bindings[j].Key)
	})
	return bindings
}

// sortKeys orders single characters before named keys so help text reads "k/up"
func sortKeys(keys []string) {
	sort.Slice(keys, func(i, j int) bool { return keyLess(keys[i], keys[j]) })
}

func keyLess(a, b string) bool {
	if len(a) == 1 && len(b) != 1 {
		return true
	}
	if len(a) != 1 && len(b) == 1 {
		return false
	}
	return a < b
}
