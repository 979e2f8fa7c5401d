package model

import (
	"context"
	"sync"
)

type memoryEntry struct {
	value   string
	version int64
}

// MemoryKvDao is an in-process KvDao with the same versioning semantics as the
// postgres implementation. Used by tests and for running without a database.
type MemoryKvDao struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

func NewMemoryKvDao() *MemoryKvDao {
	return &MemoryKvDao{
		entries: make(map[string]memoryEntry),
	}
}

func (d *MemoryKvDao) Get(ctx context.Context, key string) (string, int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.entries[key]
	if !ok {
		return "", 0, ErrNotFound
	}
	return e.value, e.version, nil
}

func (d *MemoryKvDao) Put(ctx context.Context, key, value string, expectedVersion int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.entries[key]
	if expectedVersion == 0 {
		if ok {
			return ErrVersionConflict
		}
		d.entries[key] = memoryEntry{value: value, version: 1}
		return nil
	}
	if !ok || e.version != expectedVersion {
		return ErrVersionConflict
	}
	d.entries[key] = memoryEntry{value: value, version: expectedVersion + 1}
	return nil
}

func (d *MemoryKvDao) Delete(ctx context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.entries, key)
	return nil
}
