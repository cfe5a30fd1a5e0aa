// Package mongostore implements twofactor.Store on MongoDB.
//
// The record is stored inside the account document:
//
//	{
//	  "_id": "<user id>",
//	  "email": "alice@example.com",
//	  "two_factor": {
//	    "is_enabled": true,
//	    "secret": "...",
//	    "backup_codes": [{"hashed_code": "...", "used": false, "created_at": ...}],
//	    "version": 3
//	  }
//	}
//
// SaveTwoFactor filters on two_factor.version so concurrent writers cannot
// overwrite each other, and ClaimBackupCode uses $elemMatch with the
// positional operator so that marking a code used is one conditional update.
package mongostore
