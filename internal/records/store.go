package records

import (
	"errors"
	"sync"
)

// ErrNotFound is returned by Store.Get for an index outside the current set.
var ErrNotFound = errors.New("record not found")

// Store holds the current result set and the export artifact that came with
// it. Replace swaps both at once; the last call wins.
type Store struct {
	mu       sync.RWMutex
	results  ResultSet
	artifact string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Replace makes results and artifact the current state, discarding the old.
func (s *Store) Replace(results ResultSet, artifact string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = results
	s.artifact = artifact
}

// Get returns the record at index, or ErrNotFound.
func (s *Store) Get(index int) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.results) {
		return nil, ErrNotFound
	}
	return s.results[index], nil
}

// Len returns the number of records in the current set.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}

// Results returns the current set. Records must not be modified.
func (s *Store) Results() ResultSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.results
}

// Artifact returns the export artifact path, or "" when none was produced.
func (s *Store) Artifact() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.artifact
}
