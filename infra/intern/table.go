// Package intern maps human-readable symbol and trader names to the compact
// identities the matching engine works with, and back again.
package intern

import "sync"

// Table assigns ids in first-seen order starting at 0. It is safe for
// concurrent use; feeds and reporters may share one table.
type Table struct {
	mu    sync.RWMutex
	ids   map[string]uint32
	names []string
}

func NewTable() *Table {
	return &Table{ids: make(map[string]uint32)}
}

// ID returns the id for name, assigning the next one on first sight.
func (t *Table) ID(name string) uint32 {
	t.mu.RLock()
	id, ok := t.ids[name]
	t.mu.RUnlock()
	if ok {
		return id
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if id, ok := t.ids[name]; ok {
		return id
	}
	id = uint32(len(t.names))
	t.ids[name] = id
	t.names = append(t.names, name)
	return id
}

// Lookup returns the id for name without assigning one.
func (t *Table) Lookup(name string) (uint32, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.ids[name]
	return id, ok
}

// Name returns the name behind id.
func (t *Table) Name(id uint32) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if int(id) >= len(t.names) {
		return "", false
	}
	return t.names[id], true
}

func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.names)
}
