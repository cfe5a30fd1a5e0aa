// Package twofactor implements two-factor authentication enrollment and
// login-time verification on top of pkg/totp and pkg/backupcode.
//
// A user's two-factor data lives in a Record embedded in the Account. The
// record moves through three states:
//
//	disabled --BeginSetup--> pending_setup --ConfirmSetup--> enabled
//	enabled --Disable--> disabled
//
// BeginSetup may be repeated while pending to replace the secret, and
// RegenerateBackupCodes keeps the record enabled. Every mutating operation
// reads the record, checks the transition table and saves it with a
// compare-and-swap on Record.Version, retrying a bounded number of times
// when a concurrent writer wins.
//
// # Usage
//
//	store := twofactor.NewMemoryStore()
//	passwords := twofactor.NewBcryptPasswordVerifier(store.PasswordHash)
//
//	svc, err := twofactor.NewService(store, passwords, twofactor.DefaultConfig(),
//	    twofactor.WithLogger(log),
//	)
//
//	setup, err := svc.BeginSetup(ctx, userID)
//	// show setup.ProvisioningImage, or setup.Secret if err wraps ErrRender
//
//	codes, err := svc.ConfirmSetup(ctx, userID, "123456")
//	// show codes once
//
//	res, err := svc.VerifyForLogin(ctx, userID, input)
//
// # Storage
//
// Store implementations live in the mongostore and pgstore sub-packages.
// Besides loading accounts they must offer a versioned save and an atomic
// ClaimBackupCode, which is what makes a backup code single use under
// concurrent logins.
//
// # Errors
//
// Business rejections are returned as the sentinels in errors.go and can be
// compared with errors.Is. Infrastructure failures are wrapped.
package twofactor
