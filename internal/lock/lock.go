// Package lock serializes ledger mutations per record. Every operation that
// reads-modifies-writes a record must hold its lock for the full operation;
// operations touching two records acquire both locks in a fixed global order
// (ascending id bytes) so that two operations referencing the same pair in
// opposite order cannot deadlock.
package lock

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// ErrNotAcquired is returned when a lock could not be obtained before the
// caller's context expired. No state was mutated; the caller may retry.
var ErrNotAcquired = errors.New("record lock not acquired")

// Locker grants exclusive, per-record locks.
type Locker interface {
	// Acquire locks every id and returns a release func. On failure nothing
	// stays locked.
	Acquire(ctx context.Context, ids ...uuid.UUID) (func(), error)
}

// sortIDs orders ids ascending by raw bytes and drops duplicates.
func sortIDs(ids []uuid.UUID) []uuid.UUID {
	sorted := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			sorted = append(sorted, id)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i][:], sorted[j][:]) < 0
	})
	return sorted
}

// MemoryLocker is the single-process implementation: one buffered channel
// per record id acts as a mutex that can be waited on with a context.
type MemoryLocker struct {
	mu    sync.Mutex
	slots map[uuid.UUID]chan struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{slots: make(map[uuid.UUID]chan struct{})}
}

func (l *MemoryLocker) slot(id uuid.UUID) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[id]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[id] = ch
	}
	return ch
}

func (l *MemoryLocker) Acquire(ctx context.Context, ids ...uuid.UUID) (func(), error) {
	sorted := sortIDs(ids)
	held := make([]chan struct{}, 0, len(sorted))

	release := func() {
		// Reverse order, symmetrical with acquisition.
		for i := len(held) - 1; i >= 0; i-- {
			<-held[i]
		}
	}

	for _, id := range sorted {
		ch := l.slot(id)
		select {
		case ch <- struct{}{}:
			held = append(held, ch)
		case <-ctx.Done():
			release()
			return nil, ErrNotAcquired
		}
	}
	return release, nil
}
