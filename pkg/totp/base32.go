package totp

import "strings"

// base32Alphabet is the RFC 4648 alphabet used by authenticator apps.
const base32Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

// base32Values maps an input byte to its 5-bit value, -1 for bytes outside the alphabet.
var base32Values = func() [256]int8 {
	var table [256]int8
	for i := range table {
		table[i] = -1
	}
	for i := 0; i < len(base32Alphabet); i++ {
		table[base32Alphabet[i]] = int8(i)
		// Lowercase letters decode like their uppercase form
		if c := base32Alphabet[i]; c >= 'A' && c <= 'Z' {
			table[c+'a'-'A'] = int8(i)
		}
	}
	return table
}()

// EncodeBase32 encodes src using the RFC 4648 alphabet without padding.
func EncodeBase32(src []byte) string {
	if len(src) == 0 {
		return ""
	}

	out := make([]byte, 0, (len(src)*8+4)/5)
	var buf uint32
	var bits uint
	for _, b := range src {
		buf = buf<<8 | uint32(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			out = append(out, base32Alphabet[(buf>>bits)&0x1f])
		}
	}
	if bits > 0 {
		// Left-align the remaining bits in the last quintet
		out = append(out, base32Alphabet[(buf<<(5-bits))&0x1f])
	}
	return string(out)
}

// DecodeBase32 decodes an RFC 4648 Base32 string. Decoding is case-insensitive,
// spaces are ignored and trailing padding is accepted but not required.
func DecodeBase32(s string) ([]byte, error) {
	s = strings.TrimRight(strings.ReplaceAll(s, " ", ""), "=")
	if s == "" {
		return nil, ErrInvalidBase32
	}

	out := make([]byte, 0, len(s)*5/8)
	var buf uint32
	var bits uint
	for i := 0; i < len(s); i++ {
		v := base32Values[s[i]]
		if v < 0 {
			return nil, ErrInvalidBase32
		}
		buf = buf<<5 | uint32(v)
		bits += 5
		if bits >= 8 {
			bits -= 8
			out = append(out, byte(buf>>bits))
		}
	}

	// Five or more dangling bits mean the input was truncated mid-byte
	// (lengths 1, 3 and 6 modulo 8 cannot be produced by an encoder).
	if bits >= 5 {
		return nil, ErrInvalidBase32
	}
	return out, nil
}
