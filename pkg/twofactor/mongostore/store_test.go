package mongostore_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/twofactor/pkg/twofactor"
	"github.com/dmitrymomot/twofactor/pkg/twofactor/mongostore"
)

// TestStore runs against a real server when MONGODB_URL is set.
func TestStore(t *testing.T) {
	url := os.Getenv("MONGODB_URL")
	if url == "" {
		t.Skip("MONGODB_URL is not set")
	}

	ctx := context.Background()
	cfg := mongostore.Config{
		ConnectionURL:  url,
		Database:       "twofactor_test",
		Collection:     "users_" + uuid.NewString()[:8],
		ConnectTimeout: 5 * time.Second,
		MaxPoolSize:    10,
		RetryAttempts:  1,
		RetryInterval:  time.Second,
	}
	client, err := mongostore.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = client.Database(cfg.Database).Collection(cfg.Collection).Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	require.NoError(t, mongostore.Healthcheck(client)(ctx))

	store := mongostore.NewFromClient(client, cfg)
	require.NoError(t, store.CreateAccount(ctx, "u1", "a@example.com"))
	assert.ErrorIs(t, store.CreateAccount(ctx, "u1", "a@example.com"), twofactor.ErrAccountExists)

	_, err = store.GetAccount(ctx, "ghost")
	assert.ErrorIs(t, err, twofactor.ErrUserNotFound)

	acc, err := store.GetAccount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), acc.TwoFactor.Version)

	now := time.Now().UTC().Truncate(time.Millisecond)
	rec := twofactor.Record{
		IsEnabled:   true,
		Secret:      "JBSWY3DPEHPK3PXP",
		BackupCodes: []twofactor.BackupCodeEntry{{HashedCode: "h1", CreatedAt: now}, {HashedCode: "h2", CreatedAt: now}},
		EnabledAt:   &now,
	}
	require.NoError(t, store.SaveTwoFactor(ctx, "u1", rec))
	assert.ErrorIs(t, store.SaveTwoFactor(ctx, "u1", rec), twofactor.ErrVersionConflict)
	assert.ErrorIs(t, store.SaveTwoFactor(ctx, "ghost", rec), twofactor.ErrUserNotFound)

	ok, err := store.ClaimBackupCode(ctx, "u1", "h2", now)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = store.ClaimBackupCode(ctx, "u1", "h2", now)
	require.NoError(t, err)
	assert.False(t, ok)

	acc, err = store.GetAccount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), acc.TwoFactor.Version)
	assert.Equal(t, 1, acc.TwoFactor.UnusedBackupCodes())
	assert.True(t, acc.TwoFactor.BackupCodes[1].Used)

	oid := bson.NewObjectID()
	_, err = client.Database(cfg.Database).Collection(cfg.Collection).
		InsertOne(ctx, bson.D{{Key: "_id", Value: oid}, {Key: "email", Value: "b@example.com"}})
	require.NoError(t, err)

	acc, err = store.GetAccount(ctx, oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, oid.Hex(), acc.ID)
	require.NoError(t, store.SaveTwoFactor(ctx, oid.Hex(), rec))
	ok, err = store.ClaimBackupCode(ctx, oid.Hex(), "h1", now)
	require.NoError(t, err)
	assert.True(t, ok)
}
