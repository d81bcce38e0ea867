package vtoken

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements Store with an in-process map. Suitable for tests
// and single-instance deployments.
type MemoryStore struct {
	mu     sync.Mutex
	tokens map[memoryKey]Token

	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
}

type memoryKey struct {
	key    string
	typ    Type
	secret string
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithCleanupInterval sets how often expired tokens are swept out.
// Set to 0 to disable the background sweep.
func WithCleanupInterval(interval time.Duration) MemoryStoreOption {
	return func(ms *MemoryStore) {
		ms.cleanupInterval = interval
	}
}

// NewMemoryStore creates an in-memory token store.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	ms := &MemoryStore{
		tokens:          make(map[memoryKey]Token),
		cleanupInterval: 5 * time.Minute,
		stopCleanup:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(ms)
	}
	if ms.cleanupInterval > 0 {
		go ms.cleanup()
	}
	return ms
}

func (ms *MemoryStore) Insert(ctx context.Context, token Token) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.tokens[memoryKey{token.Key, token.Type, token.Secret}] = token
	return nil
}

func (ms *MemoryStore) FindAndDelete(ctx context.Context, key string, typ Type, secret string) (*Token, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	k := memoryKey{key, typ, secret}
	token, ok := ms.tokens[k]
	if !ok {
		return nil, ErrTokenNotFound
	}
	delete(ms.tokens, k)
	return &token, nil
}

func (ms *MemoryStore) DeleteByKeyType(ctx context.Context, key string, typ Type) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	for k := range ms.tokens {
		if k.key == key && k.typ == typ {
			delete(ms.tokens, k)
		}
	}
	return nil
}

// Close stops the background cleanup goroutine.
func (ms *MemoryStore) Close() {
	ms.stopOnce.Do(func() { close(ms.stopCleanup) })
}

func (ms *MemoryStore) cleanup() {
	ticker := time.NewTicker(ms.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			ms.mu.Lock()
			for k, token := range ms.tokens {
				if token.Expired(now) {
					delete(ms.tokens, k)
				}
			}
			ms.mu.Unlock()
		case <-ms.stopCleanup:
			return
		}
	}
}
