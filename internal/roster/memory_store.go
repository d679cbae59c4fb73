package roster

import "sync"

// MemoryStore is the default process-lifetime roster backend. No eviction
// and no persistence: a deployment is expected to be restarted between
// conversation sessions.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewMemoryStore creates an empty in-memory roster store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*Entry)}
}

// Get returns a snapshot of the entry for a conversation.
func (s *MemoryStore) Get(conversationID string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[conversationID]
	if !ok {
		return Entry{Participants: map[string]string{}}, false
	}
	return e.clone(), true
}

// Update applies fn under the store lock, creating the entry if needed.
func (s *MemoryStore) Update(conversationID string, fn func(*Entry)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[conversationID]
	if !ok {
		e = &Entry{Participants: make(map[string]string)}
		s.entries[conversationID] = e
	}
	fn(e)
	return nil
}

// Conversations returns the ids of all known entries.
func (s *MemoryStore) Conversations() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	return ids
}
