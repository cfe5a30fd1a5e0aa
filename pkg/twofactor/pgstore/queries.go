package pgstore

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
)

var identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// queries holds the statements that reference the externally owned accounts
// table. They are rendered once because table and column names come from
// configuration.
type queries struct {
	getAccount string
	userExists string
}

// quoteIdent validates and quotes a possibly schema-qualified identifier.
func quoteIdent(name string) (string, error) {
	parts := strings.Split(name, ".")
	for _, p := range parts {
		if !identifierRegex.MatchString(p) {
			return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
		}
	}
	return pgx.Identifier(parts).Sanitize(), nil
}

func buildQueries(cfg Config) (queries, error) {
	table, err := quoteIdent(cfg.UsersTable)
	if err != nil {
		return queries{}, err
	}
	id, err := quoteIdent(cfg.UsersIDColumn)
	if err != nil {
		return queries{}, err
	}
	email, err := quoteIdent(cfg.UsersEmailColumn)
	if err != nil {
		return queries{}, err
	}

	return queries{
		getAccount: fmt.Sprintf(`SELECT u.%[2]s::text, COALESCE(u.%[3]s::text, ''),
       tf.is_enabled, tf.secret, tf.temp_secret,
       tf.created_at, tf.enabled_at, tf.disabled_at, tf.version
FROM %[1]s u
LEFT JOIN two_factor tf ON tf.user_id = u.%[2]s::text
WHERE u.%[2]s::text = $1`, table, id, email),
		userExists: fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %[1]s WHERE %[2]s::text = $1)`, table, id),
	}, nil
}

const (
	selectBackupCodes = `SELECT hashed_code, used, created_at, used_at
FROM two_factor_backup_codes
WHERE user_id = $1
ORDER BY position`

	insertRecord = `INSERT INTO two_factor
    (user_id, is_enabled, secret, temp_secret, created_at, enabled_at, disabled_at, version)
VALUES ($1, $2, $3, $4, $5, $6, $7, 1)
ON CONFLICT (user_id) DO UPDATE SET
    is_enabled  = EXCLUDED.is_enabled,
    secret      = EXCLUDED.secret,
    temp_secret = EXCLUDED.temp_secret,
    created_at  = EXCLUDED.created_at,
    enabled_at  = EXCLUDED.enabled_at,
    disabled_at = EXCLUDED.disabled_at,
    version     = 1
WHERE two_factor.version = 0`

	updateRecord = `UPDATE two_factor SET
    is_enabled  = $2,
    secret      = $3,
    temp_secret = $4,
    created_at  = $5,
    enabled_at  = $6,
    disabled_at = $7,
    version     = version + 1
WHERE user_id = $1 AND version = $8`

	deleteBackupCodes = `DELETE FROM two_factor_backup_codes WHERE user_id = $1`

	lockRecord = `SELECT is_enabled FROM two_factor WHERE user_id = $1 FOR UPDATE`

	claimBackupCode = `UPDATE two_factor_backup_codes
SET used = TRUE, used_at = $3
WHERE user_id = $1 AND hashed_code = $2 AND NOT used`

	bumpVersion = `UPDATE two_factor SET version = version + 1 WHERE user_id = $1`
)

var backupCodeColumns = []string{"id", "user_id", "position", "hashed_code", "used", "created_at", "used_at"}
