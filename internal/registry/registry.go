// =================================
// File: internal/registry/registry.go
// =================================
package registry

import (
	"errors"
	"sync"
	"time"

	"github.com/pumpforge/launchpad/internal/types"
)

var (
	// ErrNotFound is returned by lookups for unregistered tokens.
	ErrNotFound = errors.New("registry: token not found")

	// ErrDuplicate rejects a second entry for the same token address.
	ErrDuplicate = errors.New("registry: token already registered")
)

// Entry is one launch record: the token→curve pair plus the creation
// metadata. The registry is append-only; entries are never removed, a
// completed curve stays queryable forever.
type Entry struct {
	Token       types.Address
	Curve       types.Address
	Name        string
	Symbol      string
	MetadataURI string
	Creator     types.Address
	CreatedAt   time.Time
}

// Registry stores launch records in creation order.
type Registry interface {
	Put(entry Entry) error
	Get(token types.Address) (Entry, error)
	List() ([]Entry, error)
	Close() error
}

// Memory is the in-process Registry used by tests and the simulator.
type Memory struct {
	mu      sync.RWMutex
	entries map[types.Address]Entry
	order   []types.Address
}

var _ Registry = (*Memory)(nil)

// NewMemory returns an empty in-memory registry.
func NewMemory() *Memory {
	return &Memory{entries: make(map[types.Address]Entry)}
}

// Put appends a launch record.
func (m *Memory) Put(entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[entry.Token]; ok {
		return ErrDuplicate
	}
	m.entries[entry.Token] = entry
	m.order = append(m.order, entry.Token)
	return nil
}

// Get returns the record for token, or ErrNotFound.
func (m *Memory) Get(token types.Address) (Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[token]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return entry, nil
}

// List returns all records in creation order.
func (m *Memory) List() ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Entry, 0, len(m.order))
	for _, token := range m.order {
		out = append(out, m.entries[token])
	}
	return out, nil
}

// Close is a no-op for the in-memory registry.
func (m *Memory) Close() error { return nil }
