package store

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/sells-group/visibility-cli/internal/model"
	"github.com/sells-group/visibility-cli/internal/monitoring"
)

// DefaultMaxEntries bounds the memory store when no limit is configured.
const DefaultMaxEntries = 1000

// MemoryStore keeps analyses in process memory. Once it holds maxEntries
// analyses, saving another evicts the least recently used one. Entries are
// stored encoded so callers never share state with the store.
type MemoryStore struct {
	mu         sync.Mutex
	maxEntries int
	ll         *list.List
	items      map[string]*list.Element
	now        func() time.Time
}

type memEntry struct {
	token     string
	data      []byte
	expiresAt time.Time
}

func (e *memEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// NewMemory creates a MemoryStore holding at most maxEntries analyses.
func NewMemory(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryStore{
		maxEntries: maxEntries,
		ll:         list.New(),
		items:      make(map[string]*list.Element),
		now:        time.Now,
	}
}

func (s *MemoryStore) Save(_ context.Context, a *model.Analysis, ttl time.Duration) error {
	if err := stamp(a, ttl, s.now()); err != nil {
		return err
	}
	data, err := encode(a)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := &memEntry{token: a.Token, data: data, expiresAt: a.ExpiresAt}
	if el, ok := s.items[a.Token]; ok {
		el.Value = entry
		s.ll.MoveToFront(el)
		return nil
	}
	s.items[a.Token] = s.ll.PushFront(entry)

	for s.ll.Len() > s.maxEntries {
		s.removeElement(s.ll.Back())
		monitoring.StoreRemovals.WithLabelValues("evicted").Inc()
	}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, token string) (*model.Analysis, error) {
	s.mu.Lock()
	el, ok := s.items[token]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	entry := el.Value.(*memEntry)
	if entry.expired(s.now()) {
		s.removeElement(el)
		s.mu.Unlock()
		monitoring.StoreRemovals.WithLabelValues("expired").Inc()
		return nil, ErrNotFound
	}
	s.ll.MoveToFront(el)
	data := entry.data
	s.mu.Unlock()

	return decode(data)
}

func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.items[token]; ok {
		s.removeElement(el)
	}
	return nil
}

func (s *MemoryStore) DeleteExpired(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for el := s.ll.Back(); el != nil; {
		prev := el.Prev()
		if el.Value.(*memEntry).expired(now) {
			s.removeElement(el)
			removed++
		}
		el = prev
	}
	return removed, nil
}

// Len returns the number of stored analyses, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ll.Len()
}

func (s *MemoryStore) Migrate(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) removeElement(el *list.Element) {
	s.ll.Remove(el)
	delete(s.items, el.Value.(*memEntry).token)
}
