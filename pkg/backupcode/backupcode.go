package backupcode

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultCount = 10 // Codes issued per enrollment or regeneration
	codeBytes    = 4  // 32 bits of entropy, 8 hex characters
	minLength    = 6
	maxLength    = 8

	// Length is the normalized length of every issued code.
	Length = 2 * codeBytes
)

// inputRegex restricts raw user input before normalization.
var inputRegex = regexp.MustCompile(`^[A-Z0-9-]+$`)

// Code is a freshly generated backup code. Plain must be shown to the user once
// and then discarded; only Hash is persisted.
type Code struct {
	Plain string
	Hash  string
}

type options struct {
	cost int
}

// Option configures hashing.
type Option func(*options)

// WithCost sets the bcrypt cost. Higher values slow down both issuing and
// verifying codes, which happens on the login path.
func WithCost(cost int) Option {
	return func(o *options) {
		o.cost = cost
	}
}

func newOptions(opts []Option) (options, error) {
	o := options{cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(&o)
	}
	if o.cost < bcrypt.MinCost || o.cost > bcrypt.MaxCost {
		return options{}, fmt.Errorf("%w: %d", ErrInvalidCost, o.cost)
	}
	return o, nil
}

// Generate creates count unique codes of 8 uppercase hexadecimal characters
// together with their bcrypt hashes.
func Generate(count int, opts ...Option) ([]Code, error) {
	if count < 1 {
		return nil, ErrInvalidCount
	}
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, count)
	codes := make([]Code, 0, count)
	for len(codes) < count {
		buf := make([]byte, codeBytes)
		if _, err := rand.Read(buf); err != nil {
			return nil, errors.Join(ErrFailedToGenerate, err)
		}
		plain := strings.ToUpper(hex.EncodeToString(buf))
		if _, dup := seen[plain]; dup {
			continue
		}
		seen[plain] = struct{}{}

		hash, err := bcrypt.GenerateFromPassword([]byte(plain), o.cost)
		if err != nil {
			return nil, errors.Join(ErrFailedToHash, err)
		}
		codes = append(codes, Code{Plain: plain, Hash: string(hash)})
	}
	return codes, nil
}

// Hash normalizes code and returns its bcrypt hash.
func Hash(code string, opts ...Option) (string, error) {
	o, err := newOptions(opts)
	if err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(Normalize(code)), o.cost)
	if err != nil {
		return "", errors.Join(ErrFailedToHash, err)
	}
	return string(hash), nil
}

// Verify reports whether candidate matches hashed. The candidate is normalized
// first, so "abcd-1234" and "ABCD1234" are equivalent.
func Verify(candidate, hashed string) bool {
	candidate = Normalize(candidate)
	if candidate == "" || hashed == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(candidate)) == nil
}

// Normalize uppercases code and removes whitespace and hyphens.
func Normalize(code string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, strings.ToUpper(code))
}

// Valid reports whether input looks like a backup code: letters, digits and
// hyphens only (case-insensitive), with 6 to 8 characters once normalized.
func Valid(input string) bool {
	trimmed := strings.ToUpper(strings.Join(strings.Fields(input), ""))
	if !inputRegex.MatchString(trimmed) {
		return false
	}
	n := len(Normalize(trimmed))
	return n >= minLength && n <= maxLength
}

// FormatCode splits an 8-character code into two hyphen-joined blocks of four.
// Codes of any other length are returned normalized but otherwise unchanged.
func FormatCode(code string) string {
	code = Normalize(code)
	if len(code) != Length {
		return code
	}
	return code[:4] + "-" + code[4:]
}

// Format applies FormatCode to every code.
func Format(codes []string) []string {
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = FormatCode(c)
	}
	return out
}

// Plain extracts the plaintext values from generated codes.
func Plain(codes []Code) []string {
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = c.Plain
	}
	return out
}
