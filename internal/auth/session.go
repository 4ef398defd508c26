package auth

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/pingate/internal/models"
)

// SessionKind discriminates the Session variants.
type SessionKind int

const (
	SessionUnauthenticated SessionKind = iota
	SessionAuthenticated
	SessionLocked
)

func (k SessionKind) String() string {
	switch k {
	case SessionUnauthenticated:
		return "unauthenticated"
	case SessionAuthenticated:
		return "authenticated"
	case SessionLocked:
		return "locked"
	default:
		return fmt.Sprintf("SessionKind(%d)", int(k))
	}
}

// Session is the authentication state of the device user. User is only
// meaningful for SessionAuthenticated, Until only for SessionLocked.
type Session struct {
	Kind  SessionKind
	User  models.User
	Until time.Time
}

func Unauthenticated() Session {
	return Session{Kind: SessionUnauthenticated}
}

func Authenticated(u models.User) Session {
	return Session{Kind: SessionAuthenticated, User: u}
}

func Locked(until time.Time) Session {
	return Session{Kind: SessionLocked, Until: until}
}

// Equal compares sessions by variant. Authenticated sessions are equal when
// they belong to the same email; the rest of the user record is ignored.
func (s Session) Equal(other Session) bool {
	if s.Kind != other.Kind {
		return false
	}
	switch s.Kind {
	case SessionAuthenticated:
		return s.User.SameIdentity(other.User)
	case SessionLocked:
		return s.Until.Equal(other.Until)
	default:
		return true
	}
}

func (s Session) String() string {
	switch s.Kind {
	case SessionAuthenticated:
		return fmt.Sprintf("authenticated(%s)", s.User.Email)
	case SessionLocked:
		return fmt.Sprintf("locked(until=%s)", s.Until.Format(time.RFC3339))
	default:
		return s.Kind.String()
	}
}

// State is the snapshot handed to observers.
type State struct {
	Session        Session
	FailedAttempts int
	LockedUntil    *time.Time
}
