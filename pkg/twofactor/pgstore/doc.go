// Package pgstore implements twofactor.Store on PostgreSQL using pgx.
//
// Accounts are read from an existing table (PG_USERS_TABLE, "users" by
// default). Two-factor data lives in two tables created by the embedded goose
// migrations:
//
//   - two_factor: one row per user with the secrets, timestamps and version.
//   - two_factor_backup_codes: hashed codes in issue order.
//
// Apply the schema with Migrate, or with "twofactor migrate" from the command
// line, before using the store.
package pgstore
