package twofactor

import "time"

// Account is the slice of a user account the two-factor core works with.
type Account struct {
	ID        string
	Email     string // Account label shown in authenticator apps
	TwoFactor Record
}

// Record is the per-user two-factor state embedded in the account.
type Record struct {
	IsEnabled   bool
	Secret      string // Confirmed shared secret, set only while enabled
	TempSecret  string // Pending shared secret, set only during setup
	BackupCodes []BackupCodeEntry
	CreatedAt   *time.Time
	EnabledAt   *time.Time
	DisabledAt  *time.Time

	// Version is bumped by the store on every write and used for
	// compare-and-swap saves.
	Version int64
}

// BackupCodeEntry is a stored recovery code. The plaintext is never kept.
type BackupCodeEntry struct {
	HashedCode string
	Used       bool
	CreatedAt  time.Time
	UsedAt     *time.Time
}

// State derives the enrollment state from the record fields.
func (r Record) State() State {
	switch {
	case r.IsEnabled:
		return StateEnabled
	case r.TempSecret != "":
		return StatePendingSetup
	default:
		return StateDisabled
	}
}

// UnusedBackupCodes counts entries that can still be redeemed.
func (r Record) UnusedBackupCodes() int {
	n := 0
	for _, c := range r.BackupCodes {
		if !c.Used {
			n++
		}
	}
	return n
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (r Record) Clone() Record {
	out := r
	out.CreatedAt = cloneTime(r.CreatedAt)
	out.EnabledAt = cloneTime(r.EnabledAt)
	out.DisabledAt = cloneTime(r.DisabledAt)
	if r.BackupCodes != nil {
		out.BackupCodes = make([]BackupCodeEntry, len(r.BackupCodes))
		for i, c := range r.BackupCodes {
			c.UsedAt = cloneTime(c.UsedAt)
			out.BackupCodes[i] = c
		}
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// SetupResult is returned by BeginSetup. Secret and ProvisioningURI allow manual
// entry when ProvisioningImage could not be rendered.
type SetupResult struct {
	Secret            string `json:"secret"`
	ProvisioningURI   string `json:"provisioning_uri"`
	ProvisioningImage string `json:"provisioning_image,omitempty"` // PNG data URI
}

// VerificationResult describes a successful login-time verification.
// RemainingBackupCodes is only meaningful when UsedBackupCode is true.
type VerificationResult struct {
	UsedBackupCode       bool `json:"used_backup_code"`
	RemainingBackupCodes int  `json:"remaining_backup_codes,omitempty"`
}

// Status is a read-only view of a user's two-factor configuration.
type Status struct {
	IsEnabled             bool       `json:"is_enabled"`
	EnabledAt             *time.Time `json:"enabled_at,omitempty"`
	HasBackupCodes        bool       `json:"has_backup_codes"`
	UnusedBackupCodeCount int        `json:"unused_backup_code_count"`
}
