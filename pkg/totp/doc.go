// Package totp implements time-based one-time passwords (RFC 6238) on top of an
// HMAC-based one-time password generator (RFC 4226) and a Base32 codec (RFC 4648),
// all written against the standard crypto packages only.
//
// # Architecture
//
// The package is split into three small layers:
//
//   - base32.go encodes and decodes shared secrets using the alphabet authenticator
//     apps expect, without padding.
//   - otp.go generates secrets and provisioning URIs, computes HOTP/TOTP codes and
//     validates candidates across a configurable window of time steps.
//   - aes256.go seals secrets with AES-256-GCM so they can be persisted at rest.
//
// # Usage
//
//	secret, _ := totp.GenerateSecret()
//
//	uri, _ := totp.URI(totp.Params{
//	    Secret:      secret,
//	    AccountName: "alice@example.com",
//	    Issuer:      "SkyBooker",
//	})
//
//	// Accepts codes up to two steps (60 seconds) away from the server clock.
//	ok := totp.Verify("123456", secret)
//
//	// Narrower window, and the matched counter for replay tracking.
//	counter, ok := totp.Match("123456", secret, time.Now(), totp.WithWindow(1))
//
// # Error Handling
//
// Verify and Match never return errors: empty, malformed or undecodable input is
// simply rejected. Generation and encryption helpers return errors built with
// errors.Join around package sentinels such as ErrInvalidSecret or
// ErrFailedToDecryptSecret; inspect them with errors.Is.
//
// # See Also
//
//   - RFC 4226 – HMAC-Based One-Time Password (HOTP) Algorithm
//   - RFC 6238 – Time-Based One-Time Password (TOTP) Algorithm
//   - RFC 4648 – The Base16, Base32, and Base64 Data Encodings
package totp
