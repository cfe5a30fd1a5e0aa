package mongostore

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/twofactor/pkg/twofactor"
)

// Field paths inside the account document.
const (
	fieldTwoFactor   = "two_factor"
	fieldVersion     = "two_factor.version"
	fieldEnabled     = "two_factor.is_enabled"
	fieldBackupCodes = "two_factor.backup_codes"
)

type accountDocument struct {
	ID        any                `bson:"_id"`
	Email     string             `bson:"email,omitempty"`
	TwoFactor *twoFactorDocument `bson:"two_factor,omitempty"`
}

type twoFactorDocument struct {
	IsEnabled   bool                 `bson:"is_enabled"`
	Secret      string               `bson:"secret,omitempty"`
	TempSecret  string               `bson:"temp_secret,omitempty"`
	BackupCodes []backupCodeDocument `bson:"backup_codes"`
	CreatedAt   *time.Time           `bson:"created_at,omitempty"`
	EnabledAt   *time.Time           `bson:"enabled_at,omitempty"`
	DisabledAt  *time.Time           `bson:"disabled_at,omitempty"`
	Version     int64                `bson:"version"`
}

type backupCodeDocument struct {
	HashedCode string     `bson:"hashed_code"`
	Used       bool       `bson:"used"`
	CreatedAt  time.Time  `bson:"created_at"`
	UsedAt     *time.Time `bson:"used_at,omitempty"`
}

func (d accountDocument) toAccount() *twofactor.Account {
	acc := &twofactor.Account{ID: idString(d.ID), Email: d.Email}
	if d.TwoFactor != nil {
		acc.TwoFactor = d.TwoFactor.toRecord()
	}
	return acc
}

// accountID is the _id stored for a new account: an ObjectID when userID is
// its hex form, the string itself otherwise.
func accountID(userID string) any {
	if oid, err := bson.ObjectIDFromHex(userID); err == nil {
		return oid
	}
	return userID
}

// idMatch selects an account whose _id is either an ObjectID or a string.
// A hex id matches both forms.
func idMatch(userID string) bson.E {
	if oid, err := bson.ObjectIDFromHex(userID); err == nil {
		return bson.E{Key: "_id", Value: bson.D{{Key: "$in", Value: bson.A{oid, userID}}}}
	}
	return bson.E{Key: "_id", Value: userID}
}

func idString(id any) string {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		return v
	case bson.ObjectID:
		return v.Hex()
	default:
		return fmt.Sprint(v)
	}
}

func (d twoFactorDocument) toRecord() twofactor.Record {
	rec := twofactor.Record{
		IsEnabled:  d.IsEnabled,
		Secret:     d.Secret,
		TempSecret: d.TempSecret,
		CreatedAt:  d.CreatedAt,
		EnabledAt:  d.EnabledAt,
		DisabledAt: d.DisabledAt,
		Version:    d.Version,
	}
	if len(d.BackupCodes) > 0 {
		rec.BackupCodes = make([]twofactor.BackupCodeEntry, len(d.BackupCodes))
		for i, c := range d.BackupCodes {
			rec.BackupCodes[i] = twofactor.BackupCodeEntry{
				HashedCode: c.HashedCode,
				Used:       c.Used,
				CreatedAt:  c.CreatedAt,
				UsedAt:     c.UsedAt,
			}
		}
	}
	return rec
}

func fromRecord(rec twofactor.Record) twoFactorDocument {
	doc := twoFactorDocument{
		IsEnabled:   rec.IsEnabled,
		Secret:      rec.Secret,
		TempSecret:  rec.TempSecret,
		BackupCodes: make([]backupCodeDocument, len(rec.BackupCodes)),
		CreatedAt:   rec.CreatedAt,
		EnabledAt:   rec.EnabledAt,
		DisabledAt:  rec.DisabledAt,
		Version:     rec.Version,
	}
	for i, c := range rec.BackupCodes {
		doc.BackupCodes[i] = backupCodeDocument{
			HashedCode: c.HashedCode,
			Used:       c.Used,
			CreatedAt:  c.CreatedAt,
			UsedAt:     c.UsedAt,
		}
	}
	return doc
}

// saveFilter matches the account only while its record is still at the
// version the caller read. Accounts that never had a record count as version 0.
func saveFilter(userID string, version int64) bson.D {
	if version == 0 {
		return bson.D{
			idMatch(userID),
			{Key: "$or", Value: bson.A{
				bson.D{{Key: fieldVersion, Value: int64(0)}},
				bson.D{{Key: fieldVersion, Value: bson.D{{Key: "$exists", Value: false}}}},
			}},
		}
	}
	return bson.D{
		idMatch(userID),
		{Key: fieldVersion, Value: version},
	}
}

func saveUpdate(rec twofactor.Record) bson.D {
	doc := fromRecord(rec)
	doc.Version = rec.Version + 1
	return bson.D{{Key: "$set", Value: bson.D{{Key: fieldTwoFactor, Value: doc}}}}
}

// claimFilter matches the account only if it holds an unused entry with
// the given hash, so the update below is a single conditional write.
func claimFilter(userID, hashedCode string) bson.D {
	return bson.D{
		idMatch(userID),
		{Key: fieldEnabled, Value: true},
		{Key: fieldBackupCodes, Value: bson.D{{Key: "$elemMatch", Value: bson.D{
			{Key: "hashed_code", Value: hashedCode},
			{Key: "used", Value: false},
		}}}},
	}
}

func claimUpdate(usedAt time.Time) bson.D {
	return bson.D{
		{Key: "$set", Value: bson.D{
			{Key: fieldBackupCodes + ".$.used", Value: true},
			{Key: fieldBackupCodes + ".$.used_at", Value: usedAt},
		}},
		{Key: "$inc", Value: bson.D{{Key: fieldVersion, Value: int64(1)}}},
	}
}
