package history

import (
	"strings"

	"github.com/vanpelt/sareterm/internal/model"
)

// Navigator is a stateful cursor over a Store's entries, supporting
// up/down recall and reverse-incremental search.
type Navigator struct {
	store        *Store
	index        *int // nil when idle
	searching    bool
	searchQuery  string
	originalText string
}

// NewNavigator returns an idle Navigator over store.
func NewNavigator(store *Store) *Navigator {
	return &Navigator{store: store}
}

// State reports the navigator's current observable state.
func (n *Navigator) State() model.NavState {
	switch {
	case n.searching:
		return model.NavSearching
	case n.index != nil:
		return model.NavNavigating
	default:
		return model.NavIdle
	}
}

// Up moves the cursor one position toward older entries, saving
// currentInput as the restorable original on the first call. Returns the
// recalled command, or "" with ok=false at the oldest entry.
func (n *Navigator) Up(currentInput string) (string, bool) {
	entries := n.store.Entries()
	if len(entries) == 0 {
		return "", false
	}

	current := len(entries)
	if n.index != nil {
		current = *n.index
	}

	if current <= 0 {
		return "", false
	}

	newIndex := current - 1
	n.index = &newIndex
	if n.index != nil && current == len(entries) {
		n.originalText = currentInput
	}
	return entries[newIndex].Command, true
}

// Down moves the cursor one position toward newer entries. Past the newest
// recalled entry it restores and clears the saved original input.
func (n *Navigator) Down() (string, bool) {
	entries := n.store.Entries()
	if len(entries) == 0 || n.index == nil {
		return "", false
	}

	current := *n.index
	if current < len(entries)-1 {
		newIndex := current + 1
		n.index = &newIndex
		return entries[newIndex].Command, true
	}

	n.index = nil
	original := n.originalText
	n.originalText = ""
	return original, true
}

// StartReverseSearch enters search mode, saving currentInput for restoration
// on exit and clearing any prior query.
func (n *Navigator) StartReverseSearch(currentInput string) {
	n.searching = true
	n.searchQuery = ""
	n.index = nil
	n.originalText = currentInput
}

// SearchMore appends chars to the search query and returns the newest
// matching entry, if any.
func (n *Navigator) SearchMore(chars string) (string, bool) {
	n.searchQuery += chars
	if n.searchQuery == "" {
		return "", false
	}

	entries := n.store.Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		if strings.Contains(entries[i].Command, n.searchQuery) {
			idx := i
			n.index = &idx
			return entries[i].Command, true
		}
	}
	return "", false
}

// ExitSearch leaves search mode and returns the saved original input.
func (n *Navigator) ExitSearch() string {
	n.searching = false
	n.searchQuery = ""
	n.index = nil
	original := n.originalText
	n.originalText = ""
	return original
}

// Reset clears all navigation state, as happens on any non-navigation edit.
func (n *Navigator) Reset() {
	n.index = nil
	n.searching = false
	n.searchQuery = ""
	n.originalText = ""
}
