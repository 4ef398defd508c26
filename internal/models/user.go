// Package models defines the device-local data models read by the
// authentication gate and written by the onboarding flow.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// UserRecordVersion is the format version written by EncodeUser.
const UserRecordVersion = 1

// ErrUnsupportedRecordVersion is returned when a stored record was written by
// a newer build than the one decoding it.
var ErrUnsupportedRecordVersion = errors.New("unsupported user record version")

// MembershipTier is the subscription level attached to the account.
type MembershipTier string

const (
	MembershipFree    MembershipTier = "free"
	MembershipPlus    MembershipTier = "plus"
	MembershipPremium MembershipTier = "premium"
)

// ParseMembershipTier maps user input onto a known tier. Empty input is free.
func ParseMembershipTier(s string) (MembershipTier, error) {
	switch t := MembershipTier(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return MembershipFree, nil
	case MembershipFree, MembershipPlus, MembershipPremium:
		return t, nil
	default:
		return "", fmt.Errorf("unknown membership tier %q", s)
	}
}

// InvestorProfile is the optional questionnaire result captured during
// onboarding.
type InvestorProfile struct {
	RiskTolerance string   `json:"risk_tolerance"`
	HorizonYears  int      `json:"horizon_years"`
	Goals         []string `json:"goals,omitempty"`
}

// User is the single account cached on the device.
type User struct {
	Version         int              `json:"version"`
	Name            string           `json:"name"`
	Age             int              `json:"age"`
	Email           string           `json:"email"`
	Phone           string           `json:"phone"`
	EmailVerified   bool             `json:"email_verified"`
	PINHash         string           `json:"pin_hash"`
	InvestorProfile *InvestorProfile `json:"investor_profile,omitempty"`
	Membership      MembershipTier   `json:"membership"`
}

// SameIdentity reports whether u and other refer to the same account.
// Identity is the email address, compared case-insensitively.
func (u User) SameIdentity(other User) bool {
	return normalizeEmail(u.Email) == normalizeEmail(other.Email)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EncodeUser serializes u for storage, stamping the current format version.
func EncodeUser(u User) ([]byte, error) {
	u.Version = UserRecordVersion
	return json.Marshal(u)
}

// DecodeUser parses a stored record. Records written before versioning
// (version 0) are read as version 1.
func DecodeUser(data []byte) (User, error) {
	var u User
	if err := json.Unmarshal(data, &u); err != nil {
		return User{}, fmt.Errorf("decode user record: %w", err)
	}
	if u.Version == 0 {
		u.Version = UserRecordVersion
	}
	if u.Version > UserRecordVersion {
		return User{}, fmt.Errorf("%w: %d", ErrUnsupportedRecordVersion, u.Version)
	}
	return u, nil
}
