package totp_test

import (
	"crypto/rand"
	"encoding/base32"
	"strings"
	"testing"

	"github.com/dmitrymomot/twofactor/pkg/totp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeBase32_MatchesStdlib(t *testing.T) {
	t.Parallel()
	std := base32.StdEncoding.WithPadding(base32.NoPadding)
	for size := 0; size <= 41; size++ {
		buf := make([]byte, size)
		_, err := rand.Read(buf)
		require.NoError(t, err)
		assert.Equal(t, std.EncodeToString(buf), totp.EncodeBase32(buf), "size %d", size)
	}
}

func TestEncodeBase32_RFC4648Vectors(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"f":      "MY",
		"fo":     "MZXQ",
		"foo":    "MZXW6",
		"foob":   "MZXW6YQ",
		"fooba":  "MZXW6YTB",
		"foobar": "MZXW6YTBOI",
	}
	for in, want := range tests {
		assert.Equal(t, want, totp.EncodeBase32([]byte(in)))

		got, err := totp.DecodeBase32(want)
		require.NoError(t, err)
		assert.Equal(t, in, string(got))
	}
}

func TestDecodeBase32(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "lowercase", input: "mzxw6ytboi", want: "foobar"},
		{name: "with padding", input: "MZXW6YQ=", want: "foob"},
		{name: "with spaces", input: "MZXW 6YTB OI", want: "foobar"},
		{name: "empty", input: "", wantErr: true},
		{name: "only padding", input: "====", wantErr: true},
		{name: "invalid character", input: "MZXW1YTB", wantErr: true},
		{name: "padding in the middle", input: "MZ=XW6YTB", wantErr: true},
		{name: "truncated length", input: "MZX", wantErr: true},
		{name: "single character", input: "M", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := totp.DecodeBase32(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, totp.ErrInvalidBase32)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestBase32_RoundTripSecret(t *testing.T) {
	t.Parallel()
	secret, err := totp.GenerateSecret()
	require.NoError(t, err)

	key, err := totp.DecodeBase32(strings.ToLower(secret))
	require.NoError(t, err)
	assert.Equal(t, secret, totp.EncodeBase32(key))
}
