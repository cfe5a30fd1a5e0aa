package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/twofactor/pkg/twofactor"
)

// Store keeps the two-factor record as a "two_factor" sub-document of the
// account document.
type Store struct {
	coll *mongo.Collection
}

var _ twofactor.Store = (*Store)(nil)

// New wraps the accounts collection.
func New(coll *mongo.Collection) *Store {
	return &Store{coll: coll}
}

// NewFromClient selects the collection named in cfg.
func NewFromClient(client *mongo.Client, cfg Config) *Store {
	return New(client.Database(cfg.Database).Collection(cfg.Collection))
}

// GetAccount implements twofactor.Store.
func (s *Store) GetAccount(ctx context.Context, userID string) (*twofactor.Account, error) {
	var doc accountDocument
	err := s.coll.FindOne(ctx, bson.D{idMatch(userID)},
		options.FindOne().SetProjection(bson.D{
			{Key: "email", Value: 1},
			{Key: fieldTwoFactor, Value: 1},
		}),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, twofactor.ErrUserNotFound
		}
		return nil, errors.Join(ErrFailedToLoad, err)
	}
	return doc.toAccount(), nil
}

// SaveTwoFactor implements twofactor.Store.
func (s *Store) SaveTwoFactor(ctx context.Context, userID string, record twofactor.Record) error {
	res, err := s.coll.UpdateOne(ctx, saveFilter(userID, record.Version), saveUpdate(record))
	if err != nil {
		return errors.Join(ErrFailedToSave, err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	exists, err := s.exists(ctx, userID)
	if err != nil {
		return errors.Join(ErrFailedToSave, err)
	}
	if !exists {
		return twofactor.ErrUserNotFound
	}
	return twofactor.ErrVersionConflict
}

// ClaimBackupCode implements twofactor.Store.
func (s *Store) ClaimBackupCode(ctx context.Context, userID, hashedCode string, usedAt time.Time) (bool, error) {
	res, err := s.coll.UpdateOne(ctx, claimFilter(userID, hashedCode), claimUpdate(usedAt))
	if err != nil {
		return false, errors.Join(ErrFailedToClaim, err)
	}
	if res.ModifiedCount == 1 {
		return true, nil
	}

	exists, err := s.exists(ctx, userID)
	if err != nil {
		return false, errors.Join(ErrFailedToClaim, err)
	}
	if !exists {
		return false, twofactor.ErrUserNotFound
	}
	return false, nil
}

// CreateAccount inserts a bare account document. Account management is
// outside this package; this exists for tooling and tests.
func (s *Store) CreateAccount(ctx context.Context, userID, email string) error {
	_, err := s.coll.InsertOne(ctx, accountDocument{ID: accountID(userID), Email: email})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return twofactor.ErrAccountExists
		}
		return errors.Join(ErrFailedToSave, err)
	}
	return nil
}

func (s *Store) exists(ctx context.Context, userID string) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.D{idMatch(userID)},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
