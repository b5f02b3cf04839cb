package log

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Once emits a message at most once per key. Keys are hashed, so the set
// stays small even for long-lived processes with many distinct keys.
type Once struct {
	mu   sync.Mutex
	log  Log
	seen map[uint64]struct{}
}

func NewOnce(l Log) *Once {
	return &Once{log: l, seen: make(map[uint64]struct{})}
}

// Log writes msg at level unless key has already been logged. Reports whether it wrote.
func (o *Once) Log(key string, level Level, msg string, fields ...Field) bool {
	h := xxhash.Sum64String(key)

	o.mu.Lock()
	if _, ok := o.seen[h]; ok {
		o.mu.Unlock()
		return false
	}
	o.seen[h] = struct{}{}
	o.mu.Unlock()

	o.log.Log(level, msg, fields...)
	return true
}

// Forget allows key to be logged again.
func (o *Once) Forget(key string) {
	o.mu.Lock()
	delete(o.seen, xxhash.Sum64String(key))
	o.mu.Unlock()
}

// Reset clears every remembered key.
func (o *Once) Reset() {
	o.mu.Lock()
	o.seen = make(map[uint64]struct{})
	o.mu.Unlock()
}
