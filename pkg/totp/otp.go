package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	DefaultDigits = 6                // Standard 6-digit TOTP codes
	DefaultPeriod = 30 * time.Second // RFC 6238 time step
	DefaultWindow = 2                // Steps tolerated on each side of the current one
	SecretSize    = 20               // 160-bit secret (RFC 4226 recommendation)
)

var (
	// ValidateSecretKeyRegex ensures Base32 format: uppercase A-Z, digits 2-7, optional padding
	ValidateSecretKeyRegex = regexp.MustCompile("^[A-Z2-7]+=*$")

	codeRegex = regexp.MustCompile(fmt.Sprintf(`^\d{%d}$`, DefaultDigits))
)

// Params contains the parameters for provisioning URI generation.
type Params struct {
	Secret      string // Base32-encoded secret (required)
	AccountName string // User identifier like email (required)
	Issuer      string // Service name displayed in authenticator apps (required)
}

// Validate ensures all required parameters are present and valid.
func (p Params) Validate() error {
	if p.Secret == "" {
		return ErrMissingSecret
	}
	if !ValidateSecretKeyRegex.MatchString(p.Secret) {
		return ErrInvalidSecret
	}
	if p.AccountName == "" {
		return ErrMissingAccountName
	}
	if p.Issuer == "" {
		return ErrMissingIssuer
	}
	return nil
}

// GenerateSecret returns a new Base32-encoded secret without padding.
// The result is always 32 characters long.
func GenerateSecret() (string, error) {
	secret := make([]byte, SecretSize)
	if _, err := rand.Read(secret); err != nil {
		return "", errors.Join(ErrFailedToGenerateSecret, err)
	}
	return EncodeBase32(secret), nil
}

// URI builds the provisioning URI consumed by authenticator apps:
//
//	otpauth://totp/{issuer}:{account}?secret={secret}&issuer={issuer}
//
// See https://github.com/google/google-authenticator/wiki/Key-Uri-Format
func URI(params Params) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}

	label := escapeLabel(params.Issuer) + ":" + escapeLabel(params.AccountName)
	return fmt.Sprintf("otpauth://totp/%s?secret=%s&issuer=%s",
		label,
		url.QueryEscape(params.Secret),
		url.QueryEscape(params.Issuer),
	), nil
}

// escapeLabel path-escapes one half of the label. A colon is the
// issuer/account separator, so it is escaped as well.
func escapeLabel(s string) string {
	return strings.ReplaceAll(url.PathEscape(s), ":", "%3A")
}

type options struct {
	window int
	period time.Duration
}

// Option tunes code generation and validation.
type Option func(*options)

// WithWindow sets how many time steps before and after the current one are accepted.
// Negative values are ignored.
func WithWindow(steps int) Option {
	return func(o *options) {
		if steps >= 0 {
			o.window = steps
		}
	}
}

// WithPeriod sets the time step. Values below one second or not a whole
// number of seconds are ignored.
func WithPeriod(period time.Duration) Option {
	return func(o *options) {
		if period >= time.Second && period%time.Second == 0 {
			o.period = period
		}
	}
}

func newOptions(opts []Option) options {
	o := options{window: DefaultWindow, period: DefaultPeriod}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Counter returns the time step number containing t.
func Counter(t time.Time, opts ...Option) int64 {
	o := newOptions(opts)
	return t.Unix() / int64(o.period/time.Second)
}

// HOTP implements the RFC 4226 HMAC-based One-Time Password algorithm.
// The code is left-padded with zeros to the requested number of digits.
func HOTP(key []byte, counter uint64, digits int) string {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter)

	mac := hmac.New(sha1.New, key)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	// Dynamic truncation: the low nibble of the last byte selects a 4-byte window
	offset := sum[len(sum)-1] & 0x0f
	code := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	mod := uint32(1)
	for range digits {
		mod *= 10
	}
	return fmt.Sprintf("%0*d", digits, code%mod)
}

// Code returns the code for the time step containing t.
func Code(secret string, t time.Time, opts ...Option) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", errors.Join(ErrFailedToGenerateCode, err)
	}
	return HOTP(key, uint64(Counter(t, opts...)), DefaultDigits), nil
}

// Verify reports whether candidate is a valid code for secret at the current time.
// Malformed input yields false rather than an error.
func Verify(candidate, secret string, opts ...Option) bool {
	_, ok := Match(candidate, secret, time.Now(), opts...)
	return ok
}

// Match checks candidate against every time step in the window around at and
// returns the counter of the first matching step.
//
// Match does not prevent replay: the same code keeps matching until its step
// leaves the window. Callers that need single use must track returned counters.
func Match(candidate, secret string, at time.Time, opts ...Option) (int64, bool) {
	if candidate == "" || secret == "" {
		return 0, false
	}
	candidate = strings.Join(strings.Fields(candidate), "")
	if !codeRegex.MatchString(candidate) {
		return 0, false
	}

	key, err := decodeSecret(secret)
	if err != nil {
		return 0, false
	}

	o := newOptions(opts)
	current := at.Unix() / int64(o.period/time.Second)
	for d := -o.window; d <= o.window; d++ {
		counter := current + int64(d)
		if counter < 0 {
			continue
		}
		expected := HOTP(key, uint64(counter), DefaultDigits)
		if subtle.ConstantTimeCompare([]byte(expected), []byte(candidate)) == 1 {
			return counter, true
		}
	}
	return 0, false
}

func decodeSecret(secret string) ([]byte, error) {
	secret = strings.ToUpper(strings.Join(strings.Fields(secret), ""))
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if !ValidateSecretKeyRegex.MatchString(secret) {
		return nil, ErrInvalidSecret
	}
	key, err := DecodeBase32(secret)
	if err != nil {
		return nil, errors.Join(ErrInvalidSecret, err)
	}
	return key, nil
}
