package cachefake

import "sync"

// FakeCache records every invalidation the session controller issues.
type FakeCache struct {
	mu          sync.Mutex
	invalidated []string
	dropAll     int
}

func NewFakeCache() *FakeCache {
	return &FakeCache{}
}

func (f *FakeCache) Invalidate(prefix string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, prefix)
}

func (f *FakeCache) DropAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dropAll++
}

// Invalidated returns the prefixes passed to Invalidate, in call order.
func (f *FakeCache) Invalidated() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.invalidated...)
}

func (f *FakeCache) DropAllCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dropAll
}
