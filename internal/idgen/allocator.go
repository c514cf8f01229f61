// Package idgen assigns numeric entity IDs. Each collection owns one
// allocator; IDs are monotonically increasing and never reused within a
// process, but are not gap-free after deletions.
package idgen

import "sync/atomic"

// Allocator hands out monotonically increasing int64 IDs starting at 1.
// Safe for concurrent use.
type Allocator struct {
	last atomic.Int64
}

// New returns an allocator whose first Next call yields 1.
func New() *Allocator {
	return &Allocator{}
}

// Next returns the next unused ID.
func (a *Allocator) Next() int64 {
	return a.last.Add(1)
}

// Seed advances the allocator past maxID so that a reloaded collection never
// reuses an existing ID. Seeding never moves the counter backwards.
func (a *Allocator) Seed(maxID int64) {
	for {
		cur := a.last.Load()
		if cur >= maxID {
			return
		}
		if a.last.CompareAndSwap(cur, maxID) {
			return
		}
	}
}
