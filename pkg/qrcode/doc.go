// Package qrcode renders provisioning URIs as scannable QR codes.
//
// It is a thin wrapper around github.com/skip2/go-qrcode with three outputs:
//
//   - Generate returns raw PNG bytes.
//   - DataURI returns a base64 PNG data URI for embedding in HTML.
//   - Terminal returns a half-block text rendering for command line tools.
//
// Empty content yields ErrEmptyContent; encoder failures are joined with
// ErrFailedToGenerate. Compare with errors.Is.
package qrcode
