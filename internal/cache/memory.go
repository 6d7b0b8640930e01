package cache

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nitesh/trendpulse-api/pkg/models"
)

type memoryEntry struct {
	articles  []models.Article
	expiresAt time.Time
}

// MemoryStore is an in-process TTL cache. Expired entries read as absent and
// are dropped on access; a background sweeper also removes them periodically.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memoryEntry
	ttl   time.Duration
	now   func() time.Time

	hits   atomic.Int64
	misses atomic.Int64

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewMemoryStore creates a store with the given TTL. A positive sweepEvery
// starts the background sweeper; Close stops it.
func NewMemoryStore(ttl, sweepEvery time.Duration) *MemoryStore {
	s := &MemoryStore{
		items: make(map[string]memoryEntry),
		ttl:   ttl,
		now:   time.Now,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	if sweepEvery > 0 {
		go s.sweepLoop(sweepEvery)
	} else {
		close(s.done)
	}
	return s
}

// SetClock replaces the time source. Tests only.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]models.Article, bool) {
	s.mu.RLock()
	entry, ok := s.items[key]
	now := s.now()
	s.mu.RUnlock()

	if ok && !now.Before(entry.expiresAt) {
		s.mu.Lock()
		// re-check: a concurrent Set may have refreshed it
		if cur, still := s.items[key]; still && !now.Before(cur.expiresAt) {
			delete(s.items, key)
		}
		s.mu.Unlock()
		ok = false
	}

	if !ok {
		s.misses.Add(1)
		return nil, false
	}
	s.hits.Add(1)
	return copyArticles(entry.articles), true
}

func (s *MemoryStore) Set(_ context.Context, key string, articles []models.Article) {
	s.mu.Lock()
	s.items[key] = memoryEntry{
		articles:  copyArticles(articles),
		expiresAt: s.now().Add(s.ttl),
	}
	s.mu.Unlock()
}

func (s *MemoryStore) Keys(_ context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.now()
	keys := make([]string, 0, len(s.items))
	for k, e := range s.items {
		if now.Before(e.expiresAt) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// FlushAll removes every entry and returns how many live entries were dropped.
func (s *MemoryStore) FlushAll(ctx context.Context) int {
	n := len(s.Keys(ctx))
	s.mu.Lock()
	s.items = make(map[string]memoryEntry)
	s.mu.Unlock()
	return n
}

func (s *MemoryStore) Stats(ctx context.Context) Stats {
	return Stats{
		Hits:   s.hits.Load(),
		Misses: s.misses.Load(),
		Keys:   len(s.Keys(ctx)),
	}
}

// Sweep removes expired entries and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for k, e := range s.items {
		if !now.Before(e.expiresAt) {
			delete(s.items, k)
			removed++
		}
	}
	return removed
}

// Close stops the sweeper and drops all entries.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
	s.mu.Lock()
	s.items = make(map[string]memoryEntry)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) sweepLoop(every time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-s.stop:
			return
		}
	}
}

func copyArticles(in []models.Article) []models.Article {
	if in == nil {
		return nil
	}
	out := make([]models.Article, len(in))
	copy(out, in)
	return out
}
