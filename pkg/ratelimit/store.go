package ratelimit

import (
	"container/list"
	"sync"
	"time"
)

// MemoryStore keeps per-key request timestamps in memory. When MaxKeys is
// reached the least recently used tenth of the keys is evicted.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	lru     *list.List // front is most recent
	maxKeys int
	evicted func(n int)
}

type storeEntry struct {
	key        string
	timestamps []time.Time
}

// NewMemoryStore returns a store holding at most maxKeys keys (10000 when <= 0).
func NewMemoryStore(maxKeys int) *MemoryStore {
	if maxKeys <= 0 {
		maxKeys = DefaultMaxKeys
	}
	return &MemoryStore{
		entries: make(map[string]*list.Element),
		lru:     list.New(),
		maxKeys: maxKeys,
	}
}

// CheckAndAdd counts the requests for key after cutoff and, when fewer than
// limit, records now. It returns whether the request was recorded and the
// count including it.
func (s *MemoryStore) CheckAndAdd(key string, now, cutoff time.Time, limit int) (bool, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.entries[key]
	if !ok {
		if len(s.entries) >= s.maxKeys {
			s.evictLocked()
		}
		el = s.lru.PushFront(&storeEntry{key: key})
		s.entries[key] = el
	} else {
		s.lru.MoveToFront(el)
	}

	e := el.Value.(*storeEntry)
	e.timestamps = pruneBefore(e.timestamps, cutoff)
	if len(e.timestamps) >= limit {
		return false, len(e.timestamps)
	}
	e.timestamps = append(e.timestamps, now)
	return true, len(e.timestamps)
}

// Oldest returns the earliest timestamp for key after cutoff.
func (s *MemoryStore) Oldest(key string, cutoff time.Time) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.entries[key]
	if !ok {
		return time.Time{}, false
	}
	for _, ts := range el.Value.(*storeEntry).timestamps {
		if ts.After(cutoff) {
			return ts, true
		}
	}
	return time.Time{}, false
}

// Cleanup drops timestamps at or before cutoff and removes empty keys. It
// returns the number of keys removed.
func (s *MemoryStore) Cleanup(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, el := range s.entries {
		e := el.Value.(*storeEntry)
		e.timestamps = pruneBefore(e.timestamps, cutoff)
		if len(e.timestamps) == 0 {
			s.lru.Remove(el)
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore) evictLocked() {
	n := max(s.maxKeys/10, 1)
	evicted := 0
	for evicted < n {
		back := s.lru.Back()
		if back == nil {
			break
		}
		s.lru.Remove(back)
		delete(s.entries, back.Value.(*storeEntry).key)
		evicted++
	}
	if s.evicted != nil && evicted > 0 {
		s.evicted(evicted)
	}
}

// pruneBefore keeps the timestamps after cutoff. Timestamps are appended in
// order, so the kept ones form a suffix.
func pruneBefore(ts []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(ts) && !ts[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return ts
	}
	return append(ts[:0], ts[i:]...)
}
