package store

import (
	"sync"
	"time"

	"visit-planner/pkg/models"
)

// Mutation is a pure step from one document to the next.
type Mutation func(models.Document) (models.Document, error)

// Store owns the canonical in-memory document. Mutations are serialized
// through a mutex and always swap in a complete new document, so readers
// holding a previous snapshot are never affected. There is exactly one
// writer in practice; the mutex just keeps concurrent HTTP handlers honest.
type Store struct {
	mu  sync.Mutex
	doc models.Document

	// Now supplies the current date for derived views; injectable for tests.
	Now func() time.Time

	// OnChange, when set, receives every new snapshot after a successful
	// mutation. Persistence hangs off this hook; its failure never rolls
	// back the in-memory document.
	OnChange func(models.Document)
}

// New creates a store around an initial document.
func New(doc models.Document) *Store {
	return &Store{doc: doc, Now: time.Now}
}

// Document returns the current snapshot.
func (s *Store) Document() models.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Replace installs a fully-formed document, as produced by import/merge or
// unlock, and notifies the change hook.
func (s *Store) Replace(doc models.Document) {
	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	s.notify(doc)
}

// Apply runs a mutation against the current document. On success the new
// snapshot becomes current and the change hook fires; on failure the store
// is left untouched and the error is returned to the caller.
func (s *Store) Apply(m Mutation) error {
	s.mu.Lock()
	next, err := m(s.doc)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.doc = next
	s.mu.Unlock()
	s.notify(next)
	return nil
}

// Reset replaces the document with the seed dataset.
func (s *Store) Reset() {
	s.Replace(Seed())
}

func (s *Store) notify(doc models.Document) {
	if s.OnChange != nil {
		s.OnChange(doc)
	}
}
