package token

import "sync"

// Store holds the current access token in process memory only. It is a
// passive cell: writing to it has no effect on session state or caches.
type Store struct {
	mu    sync.RWMutex
	token string
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{}
}

// Get returns the current token and whether one is present.
func (s *Store) Get() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// Set replaces the held token. An empty string clears it.
func (s *Store) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Clear removes the held token.
func (s *Store) Clear() {
	s.Set("")
}

// Present reports whether a token is held.
func (s *Store) Present() bool {
	_, ok := s.Get()
	return ok
}
