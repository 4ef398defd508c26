// Package common contains shared constants and small helpers used across
// pingate components.
package common

// Storage keys. The gate owns the first three; linked account ids live under
// their own key so they can be cleared independently of the user record.
const (
	StoredUserKey     = "stored_user"
	FailedAttemptsKey = "failed_attempts"
	LockoutUntilKey   = "lockout_until"
	LinkedAccountsKey = "linked_accounts"
)
