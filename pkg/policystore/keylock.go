package policystore

import (
	"sort"
	"sync"
)

// keyLocks hands out one mutex per chunk ID. Entries are reference counted
// and dropped when the last holder releases them.
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: make(map[string]*keyLock)}
}

// lock acquires the locks for ids in sorted order, so two batches sharing
// IDs cannot deadlock, and returns the matching release function.
func (k *keyLocks) lock(ids []string) func() {
	sorted := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			sorted = append(sorted, id)
		}
	}
	sort.Strings(sorted)

	held := make([]*keyLock, len(sorted))
	for i, id := range sorted {
		k.mu.Lock()
		l, ok := k.locks[id]
		if !ok {
			l = &keyLock{}
			k.locks[id] = l
		}
		l.refs++
		k.mu.Unlock()

		l.mu.Lock()
		held[i] = l
	}

	return func() {
		for i := len(sorted) - 1; i >= 0; i-- {
			held[i].mu.Unlock()

			k.mu.Lock()
			held[i].refs--
			if held[i].refs == 0 {
				delete(k.locks, sorted[i])
			}
			k.mu.Unlock()
		}
	}
}
