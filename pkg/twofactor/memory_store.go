package twofactor

import (
	"context"
	"sync"
	"time"
)

type memoryAccount struct {
	account      Account
	passwordHash []byte
}

// MemoryStore is an in-memory Store for tests and local development.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]*memoryAccount
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[string]*memoryAccount)}
}

// CreateAccount adds an account with a zero-valued two-factor record.
func (m *MemoryStore) CreateAccount(_ context.Context, userID, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[userID]; ok {
		return ErrAccountExists
	}
	m.accounts[userID] = &memoryAccount{account: Account{ID: userID, Email: email}}
	return nil
}

// SetPasswordHash stores the bcrypt hash used by PasswordHash.
func (m *MemoryStore) SetPasswordHash(_ context.Context, userID string, hash []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	acc, ok := m.accounts[userID]
	if !ok {
		return ErrUserNotFound
	}
	acc.passwordHash = append([]byte(nil), hash...)
	return nil
}

// PasswordHash returns the stored password hash. It matches the lookup
// signature expected by NewBcryptPasswordVerifier.
func (m *MemoryStore) PasswordHash(_ context.Context, userID string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	acc, ok := m.accounts[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return append([]byte(nil), acc.passwordHash...), nil
}

// GetAccount implements Store.
func (m *MemoryStore) GetAccount(_ context.Context, userID string) (*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	acc, ok := m.accounts[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	out := acc.account
	out.TwoFactor = acc.account.TwoFactor.Clone()
	return &out, nil
}

// SaveTwoFactor implements Store.
func (m *MemoryStore) SaveTwoFactor(_ context.Context, userID string, record Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	acc, ok := m.accounts[userID]
	if !ok {
		return ErrUserNotFound
	}
	if acc.account.TwoFactor.Version != record.Version {
		return ErrVersionConflict
	}
	record = record.Clone()
	record.Version++
	acc.account.TwoFactor = record
	return nil
}

// ClaimBackupCode implements Store.
func (m *MemoryStore) ClaimBackupCode(_ context.Context, userID, hashedCode string, usedAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	acc, ok := m.accounts[userID]
	if !ok {
		return false, ErrUserNotFound
	}
	rec := &acc.account.TwoFactor
	if !rec.IsEnabled {
		return false, nil
	}
	for i := range rec.BackupCodes {
		entry := &rec.BackupCodes[i]
		if entry.HashedCode != hashedCode || entry.Used {
			continue
		}
		at := usedAt
		entry.Used = true
		entry.UsedAt = &at
		rec.Version++
		return true, nil
	}
	return false, nil
}
