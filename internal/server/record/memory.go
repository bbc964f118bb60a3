package record

import (
	"context"
	"errors"
	"sync"
)

// MemoryBackend keeps items in process memory. Index lookups scan the table.
type MemoryBackend struct {
	mu     sync.RWMutex
	tables map[string]map[string]Item
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{tables: make(map[string]map[string]Item)}
}

// keyText renders a key attribute as text. String keys are kept verbatim.
func keyText(a Attribute) string {
	switch a.Kind {
	case KindN:
		return "N:" + a.N
	case KindBOOL:
		if a.BOOL {
			return "BOOL:true"
		}
		return "BOOL:false"
	default:
		return a.S
	}
}

func copyItem(item Item) Item {
	out := make(Item, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}

func (m *MemoryBackend) QueryIndex(_ context.Context, t Table, field string, value Attribute) (Item, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, item := range m.tables[t.Name] {
		if a, ok := item[field]; ok && a.Equal(value) {
			return copyItem(item), true, nil
		}
	}
	return nil, false, nil
}

func (m *MemoryBackend) PutItem(_ context.Context, t Table, item Item) error {
	key, ok := item[t.PrimaryKey]
	if !ok {
		return errors.New("item has no primary key")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.tables[t.Name]
	if !ok {
		rows = make(map[string]Item)
		m.tables[t.Name] = rows
	}
	rows[keyText(key)] = copyItem(item)
	return nil
}

// UpdateItem behaves like DynamoDB: updating a missing key creates it.
func (m *MemoryBackend) UpdateItem(_ context.Context, t Table, key Attribute, set Item, remove []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.tables[t.Name]
	if !ok {
		rows = make(map[string]Item)
		m.tables[t.Name] = rows
	}
	item, ok := rows[keyText(key)]
	if !ok {
		item = Item{t.PrimaryKey: key}
		rows[keyText(key)] = item
	}
	for k, v := range set {
		item[k] = v
	}
	for _, k := range remove {
		delete(item, k)
	}
	return nil
}

// get returns a copy of a stored item by key.
func (m *MemoryBackend) get(table string, key Attribute) (Item, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.tables[table][keyText(key)]
	if !ok {
		return nil, false
	}
	return copyItem(item), true
}

func (m *MemoryBackend) count(table string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tables[table])
}
