package twofactor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/twofactor/pkg/twofactor"
)

func TestBcryptPasswordVerifier(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	lookupErr := errors.New("lookup failed")

	v := twofactor.NewBcryptPasswordVerifier(func(_ context.Context, userID string) ([]byte, error) {
		switch userID {
		case "u1":
			return hash, nil
		case "nohash":
			return nil, nil
		case "broken":
			return []byte("not-a-bcrypt-hash"), nil
		case "ghost":
			return nil, twofactor.ErrUserNotFound
		default:
			return nil, lookupErr
		}
	})

	ok, err := v.VerifyPassword(ctx, "u1", testPassword)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.VerifyPassword(ctx, "u1", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = v.VerifyPassword(ctx, "nohash", testPassword)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = v.VerifyPassword(ctx, "broken", testPassword)
	assert.Error(t, err)

	_, err = v.VerifyPassword(ctx, "ghost", testPassword)
	assert.ErrorIs(t, err, twofactor.ErrUserNotFound)

	_, err = v.VerifyPassword(ctx, "other", testPassword)
	assert.ErrorIs(t, err, lookupErr)
}
