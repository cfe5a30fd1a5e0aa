package twofactor_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/twofactor/pkg/twofactor"
)

// MockStore is a mock implementation of twofactor.Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetAccount(ctx context.Context, userID string) (*twofactor.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// Hand out a copy so the service cannot mutate the stubbed value.
	acc := *args.Get(0).(*twofactor.Account)
	acc.TwoFactor = acc.TwoFactor.Clone()
	return &acc, args.Error(1)
}

func (m *MockStore) SaveTwoFactor(ctx context.Context, userID string, record twofactor.Record) error {
	args := m.Called(ctx, userID, record)
	return args.Error(0)
}

func (m *MockStore) ClaimBackupCode(ctx context.Context, userID, hashedCode string, usedAt time.Time) (bool, error) {
	args := m.Called(ctx, userID, hashedCode, usedAt)
	return args.Bool(0), args.Error(1)
}

// MockPasswordVerifier is a mock implementation of twofactor.PasswordVerifier.
type MockPasswordVerifier struct {
	mock.Mock
}

func (m *MockPasswordVerifier) VerifyPassword(ctx context.Context, userID, password string) (bool, error) {
	args := m.Called(ctx, userID, password)
	return args.Bool(0), args.Error(1)
}

// MockReplayGuard is a mock implementation of twofactor.ReplayGuard.
type MockReplayGuard struct {
	mock.Mock
}

func (m *MockReplayGuard) Claim(ctx context.Context, userID string, counter int64, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, userID, counter, ttl)
	return args.Bool(0), args.Error(1)
}
