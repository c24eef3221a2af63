package vm

import (
	"sync"

	"github.com/chazu/folio/pkg/value"
)

// Memo caches closure results. Keys are digests of the closure's identity
// and its arguments. Implementations must be safe for concurrent use when
// shared between VMs.
type Memo interface {
	Get(key [32]byte) (value.Value, bool)
	Insert(key [32]byte, v value.Value)
}

// MapMemo is an in-memory Memo.
type MapMemo struct {
	mu      sync.RWMutex
	entries map[[32]byte]value.Value
	hits    int
}

// NewMapMemo creates an empty cache.
func NewMapMemo() *MapMemo {
	return &MapMemo{entries: make(map[[32]byte]value.Value)}
}

func (m *MapMemo) Get(key [32]byte) (value.Value, bool) {
	m.mu.RLock()
	v, ok := m.entries[key]
	m.mu.RUnlock()
	if ok {
		m.mu.Lock()
		m.hits++
		m.mu.Unlock()
	}
	return v, ok
}

func (m *MapMemo) Insert(key [32]byte, v value.Value) {
	m.mu.Lock()
	m.entries[key] = v
	m.mu.Unlock()
}

// Len returns the number of cached results.
func (m *MapMemo) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Hits returns how many lookups were answered from the cache.
func (m *MapMemo) Hits() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hits
}
