package auth

import (
	"context"
	"sync"
	"time"
)

// MemoryStorage is an in-memory Storage implementation for tests and
// local development. Safe for concurrent use.
type MemoryStorage struct {
	mu       sync.Mutex
	accounts map[int64]*Account
	nextID   int64
}

// NewMemoryStorage creates an empty in-memory account store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		accounts: make(map[int64]*Account),
		nextID:   1,
	}
}

func (s *MemoryStorage) CreateAccount(ctx context.Context, account *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	emailTaken := account.Email != "" && s.findLocked(func(a *Account) bool { return a.Email == account.Email }) != nil
	usernameTaken := account.Username != "" && s.findLocked(func(a *Account) bool { return a.Username == account.Username }) != nil
	switch {
	case emailTaken && usernameTaken:
		return ErrDuplicateEmailAndUsername
	case emailTaken:
		return ErrDuplicateEmail
	case usernameTaken:
		return ErrDuplicateUsername
	}

	account.ID = s.nextID
	s.nextID++
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now

	cp := *account
	s.accounts[account.ID] = &cp
	return nil
}

func (s *MemoryStorage) GetAccountByID(ctx context.Context, id int64) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, ErrAccountNotFound
}

func (s *MemoryStorage) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if email == "" {
		return nil, ErrAccountNotFound
	}
	if a := s.findLocked(func(a *Account) bool { return a.Email == email }); a != nil {
		cp := *a
		return &cp, nil
	}
	return nil, ErrAccountNotFound
}

func (s *MemoryStorage) GetAccountByUsername(ctx context.Context, username string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if username == "" {
		return nil, ErrAccountNotFound
	}
	if a := s.findLocked(func(a *Account) bool { return a.Username == username }); a != nil {
		cp := *a
		return &cp, nil
	}
	return nil, ErrAccountNotFound
}

func (s *MemoryStorage) GetAccountByProvider(ctx context.Context, provider, providerID string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if provider == "" || providerID == "" {
		return nil, ErrAccountNotFound
	}
	if a := s.findLocked(func(a *Account) bool { return a.Provider == provider && a.ProviderID == providerID }); a != nil {
		cp := *a
		return &cp, nil
	}
	return nil, ErrAccountNotFound
}

func (s *MemoryStorage) UpdateAccount(ctx context.Context, account *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account.ID]; !ok {
		return ErrAccountNotFound
	}
	account.UpdatedAt = time.Now()
	cp := *account
	s.accounts[account.ID] = &cp
	return nil
}

func (s *MemoryStorage) ExistsEmail(ctx context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if email == "" {
		return false, nil
	}
	return s.findLocked(func(a *Account) bool { return a.Email == email }) != nil, nil
}

func (s *MemoryStorage) ExistsUsername(ctx context.Context, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if username == "" {
		return false, nil
	}
	return s.findLocked(func(a *Account) bool { return a.Username == username }) != nil, nil
}

func (s *MemoryStorage) UpdatePasswordHash(ctx context.Context, id int64, hash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}
	a.PasswordHash = append([]byte(nil), hash...)
	a.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStorage) SetVerified(ctx context.Context, id int64, verified bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}
	a.Verified = verified
	a.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStorage) UpdateTwoFactor(ctx context.Context, id int64, enabled bool, method Method, encryptedSecret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}
	a.TwoFactorEnabled = enabled
	a.TwoFactorMethod = method
	a.TwoFactorSecret = encryptedSecret
	a.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStorage) UpdateRecoveryCodes(ctx context.Context, id int64, expected, updated string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}
	if a.RecoveryCodes != expected {
		return ErrRecoveryCodesConflict
	}
	a.RecoveryCodes = updated
	a.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStorage) findLocked(match func(*Account) bool) *Account {
	for _, a := range s.accounts {
		if match(a) {
			return a
		}
	}
	return nil
}

var _ Storage = (*MemoryStorage)(nil)
