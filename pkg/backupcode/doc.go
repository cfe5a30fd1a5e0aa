// Package backupcode issues and verifies single-use recovery codes for accounts
// protected by a second factor.
//
// Codes are 8 uppercase hexadecimal characters drawn from crypto/rand and are
// stored only as bcrypt hashes. For display they are split into two blocks
// ("ABCD-1234"); verification normalizes user input so case, whitespace and
// hyphens do not matter.
//
//	codes, err := backupcode.Generate(backupcode.DefaultCount, backupcode.WithCost(10))
//	if err != nil {
//		// handle error
//	}
//	show(backupcode.Format(backupcode.Plain(codes))) // plaintext leaves the process once
//	persist(codes)                                   // store codes[i].Hash only
//
//	ok := backupcode.Verify("abcd-1234", storedHash)
//
// The package is stateless: tracking which codes have been consumed belongs to
// the caller's storage.
package backupcode
