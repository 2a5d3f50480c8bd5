package keyvalue

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sagarc03/drivedav"
)

type memoryEntry struct {
	rec     Record
	content []byte
}

// MemoryMap is an in-process Map. Its contents vanish with the process.
type MemoryMap struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func NewMemoryMap() *MemoryMap {
	return &MemoryMap{entries: make(map[string]memoryEntry)}
}

func (m *MemoryMap) Get(ctx context.Context, key string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, fmt.Errorf("get: %w", err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]
	if !ok {
		return Record{}, fmt.Errorf("get %q: %w", key, drivedav.ErrNotFound)
	}
	return e.rec, nil
}

func (m *MemoryMap) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]
	if !ok || e.rec.Kind != drivedav.KindFile {
		return nil, fmt.Errorf("load %q: %w", key, drivedav.ErrNotFound)
	}
	// Entries are never mutated in place, so the slice can be shared.
	return e.content, nil
}

func (m *MemoryMap) Put(ctx context.Context, rec Record, content []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("put: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[rec.Key] = memoryEntry{rec: rec, content: content}
	return nil
}

func (m *MemoryMap) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[key]; !ok {
		return fmt.Errorf("delete %q: %w", key, drivedav.ErrNotFound)
	}
	delete(m.entries, key)
	return nil
}

func (m *MemoryMap) Scan(ctx context.Context, prefix string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	recs := make([]Record, 0)
	for key, e := range m.entries {
		if strings.HasPrefix(key, prefix) {
			recs = append(recs, e.rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Key < recs[j].Key })
	return recs, nil
}
