package otp

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"
)

type record struct {
	code      string
	expiresAt time.Time
	attempts  int
	budget    int
}

// MemoryStore implements Store with an in-process map.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*record
}

// NewMemoryStore creates an in-memory OTP store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*record)}
}

func (ms *MemoryStore) Save(ctx context.Context, phone, code string, ttl time.Duration, maxAttempts int) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.records[phone] = &record{
		code:      code,
		expiresAt: time.Now().Add(ttl),
		budget:    maxAttempts,
	}
	return nil
}

func (ms *MemoryStore) Consume(ctx context.Context, phone, candidate string) (bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	r, ok := ms.records[phone]
	if !ok || time.Now().After(r.expiresAt) {
		delete(ms.records, phone)
		return false, nil
	}

	if subtle.ConstantTimeCompare([]byte(r.code), []byte(candidate)) == 1 {
		delete(ms.records, phone)
		return true, nil
	}

	r.attempts++
	if r.attempts >= r.budget {
		delete(ms.records, phone)
	}
	return false, nil
}
