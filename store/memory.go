package store

import (
	"github.com/hashicorp/golang-lru"
)

// Memory is a bounded in-memory Provider based on github.com/hashicorp/golang-lru.
// It is mainly useful for tests and for embedding the middleware without a
// storage path. Records beyond the configured size are evicted LRU-first,
// which the middleware simply sees as misses.
type Memory struct {
	records *lru.Cache
}

// NewMemory returns an in-memory provider holding at most size records.
// Memory usage should be considered when choosing the cache size:
// roughly, memory = size * averageResponseSize.
func NewMemory(size int) Memory {
	// golang-lru panics when size is zero
	if size < 1 {
		size = 1
	}
	records, _ := lru.New(size)
	return Memory{records}
}

func (m Memory) Get(key string) ([]byte, bool, error) {
	value, ok := m.records.Get(key)
	if !ok {
		return nil, false, nil
	}
	return value.([]byte), true, nil
}

func (m Memory) Put(key string, value []byte) error {
	m.records.Add(key, value)
	return nil
}

func (m Memory) Purge(key string) {
	m.records.Remove(key)
}

func (m Memory) Close() error {
	return nil
}
