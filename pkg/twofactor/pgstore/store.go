package pgstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/twofactor/pkg/twofactor"
)

// Store keeps two-factor records in the two_factor and
// two_factor_backup_codes tables next to an existing accounts table.
type Store struct {
	pool *pgxpool.Pool
	q    queries
}

var _ twofactor.Store = (*Store)(nil)

// New creates the store. It fails if the configured accounts table or column
// names are not plain SQL identifiers.
func New(pool *pgxpool.Pool, cfg Config) (*Store, error) {
	q, err := buildQueries(cfg)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool, q: q}, nil
}

// GetAccount implements twofactor.Store. The account row and its backup
// codes are read from one repeatable-read snapshot.
func (s *Store) GetAccount(ctx context.Context, userID string) (*twofactor.Account, error) {
	var acc *twofactor.Account
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	}, func(tx pgx.Tx) error {
		var err error
		acc, err = s.loadAccount(ctx, tx, userID)
		return err
	})
	if err != nil {
		if errors.Is(err, twofactor.ErrUserNotFound) {
			return nil, twofactor.ErrUserNotFound
		}
		return nil, errors.Join(ErrFailedToLoad, err)
	}
	return acc, nil
}

func (s *Store) loadAccount(ctx context.Context, tx pgx.Tx, userID string) (*twofactor.Account, error) {
	var (
		acc        twofactor.Account
		enabled    *bool
		secret     *string
		tempSecret *string
		version    *int64
		rec        = &acc.TwoFactor
	)
	err := tx.QueryRow(ctx, s.q.getAccount, userID).Scan(
		&acc.ID, &acc.Email,
		&enabled, &secret, &tempSecret,
		&rec.CreatedAt, &rec.EnabledAt, &rec.DisabledAt, &version,
	)
	if err != nil {
		if IsNotFoundError(err) {
			return nil, twofactor.ErrUserNotFound
		}
		return nil, err
	}
	if version == nil {
		// No two_factor row yet.
		return &acc, nil
	}
	rec.IsEnabled = *enabled
	rec.Secret = *secret
	rec.TempSecret = *tempSecret
	rec.Version = *version

	rows, err := tx.Query(ctx, selectBackupCodes, userID)
	if err != nil {
		return nil, err
	}
	rec.BackupCodes, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (twofactor.BackupCodeEntry, error) {
		var e twofactor.BackupCodeEntry
		err := row.Scan(&e.HashedCode, &e.Used, &e.CreatedAt, &e.UsedAt)
		return e, err
	})
	if err != nil {
		return nil, err
	}
	if len(rec.BackupCodes) == 0 {
		rec.BackupCodes = nil
	}
	return &acc, nil
}

// SaveTwoFactor implements twofactor.Store.
func (s *Store) SaveTwoFactor(ctx context.Context, userID string, record twofactor.Record) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, s.q.userExists, userID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return twofactor.ErrUserNotFound
		}

		args := []any{
			userID, record.IsEnabled, record.Secret, record.TempSecret,
			record.CreatedAt, record.EnabledAt, record.DisabledAt,
		}
		sql := insertRecord
		if record.Version != 0 {
			sql = updateRecord
			args = append(args, record.Version)
		}
		tag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return twofactor.ErrVersionConflict
		}

		if _, err := tx.Exec(ctx, deleteBackupCodes, userID); err != nil {
			return err
		}
		if len(record.BackupCodes) == 0 {
			return nil
		}
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"two_factor_backup_codes"},
			backupCodeColumns,
			pgx.CopyFromSlice(len(record.BackupCodes), func(i int) ([]any, error) {
				c := record.BackupCodes[i]
				return []any{uuid.New(), userID, i, c.HashedCode, c.Used, c.CreatedAt, c.UsedAt}, nil
			}),
		)
		return err
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, twofactor.ErrUserNotFound), errors.Is(err, twofactor.ErrVersionConflict):
		return err
	default:
		return errors.Join(ErrFailedToSave, err)
	}
}

// ClaimBackupCode implements twofactor.Store. The record row is locked first
// so a claim cannot interleave with a concurrent save that replaces the codes.
func (s *Store) ClaimBackupCode(ctx context.Context, userID, hashedCode string, usedAt time.Time) (bool, error) {
	claimed := false
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var enabled bool
		if err := tx.QueryRow(ctx, lockRecord, userID).Scan(&enabled); err != nil {
			if !IsNotFoundError(err) {
				return err
			}
			var exists bool
			if err := tx.QueryRow(ctx, s.q.userExists, userID).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return twofactor.ErrUserNotFound
			}
			return nil
		}
		if !enabled {
			return nil
		}

		tag, err := tx.Exec(ctx, claimBackupCode, userID, hashedCode, usedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		if _, err := tx.Exec(ctx, bumpVersion, userID); err != nil {
			return err
		}
		claimed = true
		return nil
	})
	if err != nil {
		if errors.Is(err, twofactor.ErrUserNotFound) {
			return false, err
		}
		return false, errors.Join(ErrFailedToClaim, err)
	}
	return claimed, nil
}
