package session

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// maxPendingRequests bounds the in-memory store; the least recently written
// request is dropped first once it is full.
const maxPendingRequests = 10_000

// MemoryStore is a process-local Store. Its contents do not survive a restart.
type MemoryStore struct {
	// mu makes Get+Remove in Take a single step.
	mu    sync.Mutex
	cache *expirable.LRU[int64, MemberAdditionRequest]
	ttl   time.Duration
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store. A non-positive ttl uses DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		cache: expirable.NewLRU[int64, MemberAdditionRequest](maxPendingRequests, nil, ttl),
		ttl:   ttl,
	}
}

func (s *MemoryStore) Put(_ context.Context, key int64, req MemberAdditionRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Add(key, req)
	return nil
}

func (s *MemoryStore) Take(_ context.Context, key int64) (MemberAdditionRequest, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.cache.Get(key)
	if !ok {
		return MemberAdditionRequest{}, false, nil
	}
	s.cache.Remove(key)
	return req, true, nil
}

// Sweep reports zero: the cache evicts expired entries in the background.
func (s *MemoryStore) Sweep(context.Context) (int, error) { return 0, nil }

// Len returns the number of unexpired entries.
func (s *MemoryStore) Len() int {
	return len(s.cache.Keys())
}

func (s *MemoryStore) Close() error {
	s.cache.Purge()
	return nil
}
