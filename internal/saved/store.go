// Package saved holds the in-memory favorites set and its toggle.
package saved

import (
	"slices"
	"sync"
)

// Set is an immutable set of item ids
type Set struct {
	ids map[string]struct{}
}

// NewSet builds a set from ids, ignoring blanks and duplicates
func NewSet(ids ...string) Set {
	s := Set{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if id != "" {
			s.ids[id] = struct{}{}
		}
	}
	return s
}

// Has reports whether id is in the set
func (s Set) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

func (s Set) Len() int { return len(s.ids) }

// IDs returns the members in sorted order
func (s Set) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Equal reports whether both sets hold the same ids
func (s Set) Equal(o Set) bool {
	if len(s.ids) != len(o.ids) {
		return false
	}
	for id := range s.ids {
		if !o.Has(id) {
			return false
		}
	}
	return true
}

// Toggle returns a new set with id added if absent or removed if present.
// The receiver is left unchanged.
func (s Set) Toggle(id string) Set {
	next := Set{ids: make(map[string]struct{}, len(s.ids)+1)}
	for k := range s.ids {
		next.ids[k] = struct{}{}
	}
	if _, ok := next.ids[id]; ok {
		delete(next.ids, id)
	} else {
		next.ids[id] = struct{}{}
	}
	return next
}

// Store keeps one favorites set per user session. Nothing is persisted;
// sets are lost when the process exits.
type Store struct {
	mu   sync.RWMutex
	sets map[string]Set
}

func NewStore() *Store {
	return &Store{sets: make(map[string]Set)}
}

// Get returns the user's set and whether it has been loaded
func (s *Store) Get(userID string) (Set, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.sets[userID]
	return set, ok
}

// Load replaces the user's set
func (s *Store) Load(userID string, set Set) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets[userID] = set
}

// Toggle flips id in the user's set and returns the sets before and after
func (s *Store) Toggle(userID, id string) (prev, next Set) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev = s.sets[userID]
	next = prev.Toggle(id)
	s.sets[userID] = next
	return prev, next
}

// Swap stores next only while the user's set still equals old. It reports
// whether the swap happened.
func (s *Store) Swap(userID string, old, next Set) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.sets[userID].Equal(old) {
		return false
	}
	s.sets[userID] = next
	return true
}

// Forget drops the user's set, e.g. on sign-out
func (s *Store) Forget(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sets, userID)
}
