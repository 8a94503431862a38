package tui

import (
	"sync"

	"github.com/studiowebux/studentcrud/internal/types"
)

// HistoryState holds the activity entries shown in the history modal
type HistoryState struct {
	mu sync.RWMutex

	entries []types.HistoryEntry
	loaded  bool
}

// NewHistoryState creates an empty history state
func NewHistoryState() *HistoryState {
	return &HistoryState{
		entries: []types.HistoryEntry{},
	}
}

// GetEntries returns a copy of the entries slice
func (s *HistoryState) GetEntries() []types.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]types.HistoryEntry, len(s.entries))
	copy(result, s.entries)
	return result
}

// SetEntries replaces the entries. A nil slice marks the state as loading.
func (s *HistoryState) SetEntries(entries []types.HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = entries != nil
	if entries == nil {
		entries = []types.HistoryEntry{}
	}
	s.entries = entries
}

// IsLoaded reports whether entries have been received since the modal opened
func (s *HistoryState) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Counts returns how many entries succeeded and failed
func (s *HistoryState) Counts() (succeeded, failed int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.Succeeded() {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}
