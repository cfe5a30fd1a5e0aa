package mongostore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/twofactor/pkg/twofactor"
)

func TestDocumentRoundTrip(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	used := now.Add(time.Hour)
	rec := twofactor.Record{
		IsEnabled: true,
		Secret:    "JBSWY3DPEHPK3PXP",
		BackupCodes: []twofactor.BackupCodeEntry{
			{HashedCode: "h1", CreatedAt: now},
			{HashedCode: "h2", CreatedAt: now, Used: true, UsedAt: &used},
		},
		CreatedAt: &now,
		EnabledAt: &now,
		Version:   7,
	}

	raw, err := bson.Marshal(accountDocument{ID: "u1", Email: "a@example.com", TwoFactor: ptr(fromRecord(rec))})
	require.NoError(t, err)

	var doc accountDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))
	acc := doc.toAccount()

	assert.Equal(t, "u1", acc.ID)
	assert.Equal(t, "a@example.com", acc.Email)
	assert.Equal(t, rec.Secret, acc.TwoFactor.Secret)
	assert.Equal(t, rec.Version, acc.TwoFactor.Version)
	require.Len(t, acc.TwoFactor.BackupCodes, 2)
	assert.True(t, acc.TwoFactor.BackupCodes[1].Used)
	require.NotNil(t, acc.TwoFactor.BackupCodes[1].UsedAt)
	assert.True(t, used.Equal(*acc.TwoFactor.BackupCodes[1].UsedAt))
	assert.Nil(t, acc.TwoFactor.DisabledAt)
}

func TestAccountWithoutRecord(t *testing.T) {
	t.Parallel()
	raw, err := bson.Marshal(bson.D{{Key: "_id", Value: "u1"}, {Key: "email", Value: "a@example.com"}})
	require.NoError(t, err)

	var doc accountDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Equal(t, twofactor.Record{}, doc.toAccount().TwoFactor)
}

func TestObjectIDAccounts(t *testing.T) {
	t.Parallel()
	oid := bson.NewObjectID()

	t.Run("hex id matches both forms", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, bson.E{Key: "_id", Value: bson.D{{Key: "$in", Value: bson.A{oid, oid.Hex()}}}}, idMatch(oid.Hex()))
		assert.Equal(t, oid, accountID(oid.Hex()))
	})

	t.Run("other ids stay strings", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, bson.E{Key: "_id", Value: "u1"}, idMatch("u1"))
		assert.Equal(t, "u1", accountID("u1"))
	})

	t.Run("decoded object id is reported as hex", func(t *testing.T) {
		t.Parallel()
		raw, err := bson.Marshal(bson.D{{Key: "_id", Value: oid}, {Key: "email", Value: "a@example.com"}})
		require.NoError(t, err)

		var doc accountDocument
		require.NoError(t, bson.Unmarshal(raw, &doc))
		assert.Equal(t, oid.Hex(), doc.toAccount().ID)
	})
}

func TestSaveFilter(t *testing.T) {
	t.Parallel()

	t.Run("first write accepts missing record", func(t *testing.T) {
		t.Parallel()
		f := saveFilter("u1", 0)
		require.Len(t, f, 2)
		assert.Equal(t, "$or", f[1].Key)
	})

	t.Run("later writes pin the version", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, bson.D{
			{Key: "_id", Value: "u1"},
			{Key: "two_factor.version", Value: int64(4)},
		}, saveFilter("u1", 4))
	})
}

func TestSaveUpdate_BumpsVersion(t *testing.T) {
	t.Parallel()
	upd := saveUpdate(twofactor.Record{TempSecret: "PENDING", Version: 2})
	set := upd[0].Value.(bson.D)
	doc := set[0].Value.(twoFactorDocument)
	assert.Equal(t, int64(3), doc.Version)
	assert.Equal(t, "PENDING", doc.TempSecret)
	assert.NotNil(t, doc.BackupCodes, "backup codes are always written as an array")
}

func TestClaimQuery(t *testing.T) {
	t.Parallel()
	f := claimFilter("u1", "hash")
	assert.Equal(t, bson.E{Key: "two_factor.is_enabled", Value: true}, f[1])
	assert.Equal(t, bson.E{Key: "two_factor.backup_codes", Value: bson.D{{Key: "$elemMatch", Value: bson.D{
		{Key: "hashed_code", Value: "hash"},
		{Key: "used", Value: false},
	}}}}, f[2])

	at := time.Unix(1_700_000_000, 0).UTC()
	u := claimUpdate(at)
	assert.Equal(t, "$set", u[0].Key)
	assert.Equal(t, bson.D{
		{Key: "two_factor.backup_codes.$.used", Value: true},
		{Key: "two_factor.backup_codes.$.used_at", Value: at},
	}, u[0].Value)
	assert.Equal(t, "$inc", u[1].Key)
}

func ptr[T any](v T) *T { return &v }
