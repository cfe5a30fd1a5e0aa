package totp_test

import (
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp"
	pqtotp "github.com/pquerna/otp/totp"

	"github.com/dmitrymomot/twofactor/pkg/totp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rfcSecret is the RFC 6238 SHA1 test key "12345678901234567890" in Base32.
const rfcSecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

func TestGenerateSecret(t *testing.T) {
	t.Parallel()
	secret, err := totp.GenerateSecret()
	require.NoError(t, err)
	assert.Len(t, secret, 32)
	assert.Regexp(t, totp.ValidateSecretKeyRegex, secret)
	assert.NotContains(t, secret, "=")

	key, err := totp.DecodeBase32(secret)
	require.NoError(t, err)
	assert.Len(t, key, totp.SecretSize)

	other, err := totp.GenerateSecret()
	require.NoError(t, err)
	assert.NotEqual(t, secret, other)
}

func TestURI(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		params  totp.Params
		want    string
		wantErr error
	}{
		{
			name: "basic uri",
			params: totp.Params{
				Secret:      "ABCDEFGHIJKLMNOP",
				AccountName: "test@example.com",
				Issuer:      "SkyBooker",
			},
			want: "otpauth://totp/SkyBooker:test@example.com?secret=ABCDEFGHIJKLMNOP&issuer=SkyBooker",
		},
		{
			name: "escapes issuer and label",
			params: totp.Params{
				Secret:      "ABCDEFGHIJKLMNOP",
				AccountName: "john doe",
				Issuer:      "Sky & Booker",
			},
			want: "otpauth://totp/Sky%20&%20Booker:john%20doe?secret=ABCDEFGHIJKLMNOP&issuer=Sky+%26+Booker",
		},
		{
			name: "escapes colons in both label parts",
			params: totp.Params{
				Secret:      "ABCDEFGHIJKLMNOP",
				AccountName: "ops:root",
				Issuer:      "Sky:Booker",
			},
			want: "otpauth://totp/Sky%3ABooker:ops%3Aroot?secret=ABCDEFGHIJKLMNOP&issuer=Sky%3ABooker",
		},
		{
			name:    "missing secret",
			params:  totp.Params{AccountName: "a", Issuer: "b"},
			wantErr: totp.ErrMissingSecret,
		},
		{
			name:    "invalid secret",
			params:  totp.Params{Secret: "not-base32", AccountName: "a", Issuer: "b"},
			wantErr: totp.ErrInvalidSecret,
		},
		{
			name:    "missing account",
			params:  totp.Params{Secret: "ABCDEFGH", Issuer: "b"},
			wantErr: totp.ErrMissingAccountName,
		},
		{
			name:    "missing issuer",
			params:  totp.Params{Secret: "ABCDEFGH", AccountName: "a"},
			wantErr: totp.ErrMissingIssuer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := totp.URI(tt.params)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCounter(t *testing.T) {
	t.Parallel()
	at := time.Unix(95, 0)

	assert.Equal(t, int64(3), totp.Counter(at))
	assert.Equal(t, int64(1), totp.Counter(at, totp.WithPeriod(time.Minute)))
	assert.Equal(t, int64(3), totp.Counter(at, totp.WithPeriod(1500*time.Millisecond)),
		"fractional periods fall back to the default")
	assert.Equal(t, int64(3), totp.Counter(at, totp.WithPeriod(500*time.Millisecond)),
		"sub-second periods fall back to the default")
}

func TestHOTP_RFC4226Vectors(t *testing.T) {
	t.Parallel()
	key := []byte("12345678901234567890")
	want := []string{
		"755224", "287082", "359152", "969429", "338314",
		"254676", "287922", "162583", "399871", "520489",
	}
	for counter, code := range want {
		assert.Equal(t, code, totp.HOTP(key, uint64(counter), 6), "counter %d", counter)
	}
}

func TestCode_RFC6238Vectors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		unix int64
		want string
	}{
		{unix: 59, want: "287082"},
		{unix: 1111111109, want: "081804"},
		{unix: 1111111111, want: "050471"},
		{unix: 1234567890, want: "005924"},
		{unix: 2000000000, want: "279037"},
	}
	for _, tt := range tests {
		code, err := totp.Code(rfcSecret, time.Unix(tt.unix, 0))
		require.NoError(t, err)
		assert.Equal(t, tt.want, code, "unix %d", tt.unix)
	}
}

func TestCode_MatchesReferenceImplementation(t *testing.T) {
	t.Parallel()
	secret, err := totp.GenerateSecret()
	require.NoError(t, err)

	opts := pqtotp.ValidateOpts{
		Period:    30,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
	base := time.Now()
	for i := -5; i <= 5; i++ {
		at := base.Add(time.Duration(i) * 30 * time.Second)
		want, err := pqtotp.GenerateCodeCustom(secret, at, opts)
		require.NoError(t, err)

		got, err := totp.Code(secret, at)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestCode_InvalidSecret(t *testing.T) {
	t.Parallel()
	_, err := totp.Code("invalid-base32!", time.Now())
	assert.ErrorIs(t, err, totp.ErrFailedToGenerateCode)
	assert.ErrorIs(t, err, totp.ErrInvalidSecret)

	_, err = totp.Code("", time.Now())
	assert.ErrorIs(t, err, totp.ErrMissingSecret)
}

func TestVerify(t *testing.T) {
	t.Parallel()
	secret, err := totp.GenerateSecret()
	require.NoError(t, err)

	code, err := totp.Code(secret, time.Now())
	require.NoError(t, err)

	tests := []struct {
		name      string
		candidate string
		secret    string
		want      bool
	}{
		{name: "current code", candidate: code, secret: secret, want: true},
		{name: "code with spaces", candidate: " " + code[:3] + " " + code[3:] + " ", secret: secret, want: true},
		{name: "lowercase secret", candidate: code, secret: strings.ToLower(secret), want: true},
		{name: "letters in code", candidate: "12a456", secret: secret, want: false},
		{name: "short code", candidate: "123", secret: secret, want: false},
		{name: "long code", candidate: "1234567", secret: secret, want: false},
		{name: "empty code", candidate: "", secret: secret, want: false},
		{name: "empty secret", candidate: code, secret: "", want: false},
		{name: "invalid secret", candidate: code, secret: "invalid-base32!@#$", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, totp.Verify(tt.candidate, tt.secret))
		})
	}
}

func TestMatch_DriftWindow(t *testing.T) {
	t.Parallel()
	issuedAt := time.Unix(1234567890, 0)
	code, err := totp.Code(rfcSecret, issuedAt)
	require.NoError(t, err)
	issuedCounter := totp.Counter(issuedAt)

	for d := -4; d <= 4; d++ {
		at := issuedAt.Add(time.Duration(d) * totp.DefaultPeriod)
		counter, ok := totp.Match(code, rfcSecret, at)
		if d >= -2 && d <= 2 {
			assert.True(t, ok, "offset %d should be accepted", d)
			assert.Equal(t, issuedCounter, counter)
		} else {
			assert.False(t, ok, "offset %d should be rejected", d)
		}
	}
}

func TestMatch_Options(t *testing.T) {
	t.Parallel()
	issuedAt := time.Unix(1234567890, 0)
	code, err := totp.Code(rfcSecret, issuedAt)
	require.NoError(t, err)

	t.Run("zero window accepts only the current step", func(t *testing.T) {
		t.Parallel()
		_, ok := totp.Match(code, rfcSecret, issuedAt, totp.WithWindow(0))
		assert.True(t, ok)
		_, ok = totp.Match(code, rfcSecret, issuedAt.Add(totp.DefaultPeriod), totp.WithWindow(0))
		assert.False(t, ok)
	})

	t.Run("negative window falls back to default", func(t *testing.T) {
		t.Parallel()
		_, ok := totp.Match(code, rfcSecret, issuedAt.Add(2*totp.DefaultPeriod), totp.WithWindow(-1))
		assert.True(t, ok)
	})

	t.Run("custom period", func(t *testing.T) {
		t.Parallel()
		minuteCode, err := totp.Code(rfcSecret, issuedAt, totp.WithPeriod(time.Minute))
		require.NoError(t, err)
		_, ok := totp.Match(minuteCode, rfcSecret, issuedAt.Add(2*time.Minute),
			totp.WithPeriod(time.Minute))
		assert.True(t, ok)
		_, ok = totp.Match(minuteCode, rfcSecret, issuedAt.Add(3*time.Minute),
			totp.WithPeriod(time.Minute))
		assert.False(t, ok)
	})
}
