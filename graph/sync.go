package graph

import "sync"

// SyncStore guards a Store with a read-write lock. Writes are serialized;
// reads run concurrently with each other.
type SyncStore struct {
	mu    sync.RWMutex
	store *Store
}

// Synchronized wraps s for concurrent use. The caller must stop using s
// directly.
func Synchronized(s *Store) *SyncStore {
	return &SyncStore{store: s}
}

// Put upserts a literal and reports whether the top-level record was
// stored. Records are not handed out since they are not safe to read
// outside the lock.
func (s *SyncStore) Put(lit Literal) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Put(lit) != nil
}

// Get projects a record under the read lock.
func (s *SyncStore) Get(lid string, opts ...GetOption) (Projection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Get(lid, opts...)
}

// Lookup finds and projects a record by an indexed attribute under the
// read lock.
func (s *SyncStore) Lookup(typ any, attr string, value any, opts ...GetOption) (Projection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Lookup(typ, attr, value, opts...)
}

// Remove severs a link.
func (s *SyncStore) Remove(from, relation, to string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Remove(from, relation, to)
}

// Destroy deletes a record and its cascade.
func (s *SyncStore) Destroy(lid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Destroy(lid)
}

// Len returns the number of live records.
func (s *SyncStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Len()
}

// Has reports whether a record is live.
func (s *SyncStore) Has(lid string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Has(lid)
}

// Stats returns the wrapped store's counters.
func (s *SyncStore) Stats() *Stats { return s.store.Stats() }
