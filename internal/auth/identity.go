// Package auth tracks who is signed in and gates the practice flow on it.
package auth

import (
	"context"
	"errors"
	"time"
)

// User is a signed-in identity.
type User struct {
	ID        string
	Email     string
	CreatedAt time.Time
}

// Session is an authenticated session issued by an IdentityService.
type Session struct {
	User      *User
	Token     string
	ExpiresAt time.Time
}

// Event is an identity change reported to subscribers.
type Event int

const (
	EventInitialSession Event = iota
	EventSignedIn
	EventSignedOut
)

func (e Event) String() string {
	switch e {
	case EventSignedIn:
		return "signed_in"
	case EventSignedOut:
		return "signed_out"
	default:
		return "initial_session"
	}
}

// IdentityService is the backend that owns accounts and sessions.
type IdentityService interface {
	SignUp(ctx context.Context, email, password string) (*User, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context) error

	// CurrentSession returns the persisted session, or nil when signed out.
	CurrentSession(ctx context.Context) (*Session, error)

	// Subscribe registers fn for identity events. The returned func removes it.
	Subscribe(fn func(Event, *Session)) (unsubscribe func())
}

var (
	// ErrNotAuthenticated is returned by Gate.Require when nobody is signed in.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrInvalidCredentials is returned for an unknown email or wrong password.
	ErrInvalidCredentials = errors.New("Invalid login credentials")

	// ErrUserExists is returned when signing up with an email already in use.
	ErrUserExists = errors.New("User already registered")
)

// Error wraps a failure from the identity service. Its message is the
// service's message unchanged so it can be shown to the user as is.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
