package store

import (
	"github.com/dgraph-io/ristretto"
)

// Ristretto is an in-memory Provider based on github.com/dgraph-io/ristretto.
// Admission is cost-based on record size, which makes it a better fit than
// Memory when response sizes vary a lot.
//
// Ristretto admits writes asynchronously: a Get immediately following a Put
// may not see the record yet. The middleware treats that as a miss and
// fetches from the origin, so correctness is unaffected.
type Ristretto struct {
	cache *ristretto.Cache
}

// NewRistretto returns a provider holding at most maxBytes of record data.
func NewRistretto(maxBytes int64) (Ristretto, error) {
	if maxBytes <= 0 {
		maxBytes = 64 << 20
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		// rule of thumb from the ristretto docs: 10x the expected item count,
		// here estimated assuming 4KB average records
		NumCounters: maxBytes / 4096 * 10,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return Ristretto{}, err
	}
	return Ristretto{cache}, nil
}

func (r Ristretto) Get(key string) ([]byte, bool, error) {
	value, ok := r.cache.Get(key)
	if !ok || value == nil {
		return nil, false, nil
	}
	return value.([]byte), true, nil
}

func (r Ristretto) Put(key string, value []byte) error {
	r.cache.Set(key, value, int64(len(value)))
	return nil
}

func (r Ristretto) Purge(key string) {
	r.cache.Del(key)
}

func (r Ristretto) Close() error {
	return nil
}
