package twofactor

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// NewBcryptPasswordVerifier returns a PasswordVerifier that compares the
// password against a bcrypt hash obtained from lookup.
func NewBcryptPasswordVerifier(lookup func(ctx context.Context, userID string) ([]byte, error)) PasswordVerifier {
	return PasswordVerifierFunc(func(ctx context.Context, userID, password string) (bool, error) {
		hash, err := lookup(ctx, userID)
		if err != nil {
			return false, err
		}
		if len(hash) == 0 {
			return false, nil
		}

		err = bcrypt.CompareHashAndPassword(hash, []byte(password))
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, err
		}
	})
}
