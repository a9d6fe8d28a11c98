// Package authtest provides an in-memory auth.IdentityService for tests.
package authtest

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/VVic23/civics-practice/internal/auth"
)

// Service is an in-memory identity backend. Set the *Err fields to make
// the next calls fail.
type Service struct {
	mu        sync.Mutex
	passwords map[string]string
	users     map[string]*auth.User
	current   *auth.Session
	subs      map[int]func(auth.Event, *auth.Session)
	nextSub   int

	SignUpErr  error
	SignInErr  error
	SignOutErr error
	SessionErr error
}

// New returns an empty Service.
func New() *Service {
	return &Service{
		passwords: make(map[string]string),
		users:     make(map[string]*auth.User),
		subs:      make(map[int]func(auth.Event, *auth.Session)),
	}
}

// AddUser registers an account directly.
func (s *Service) AddUser(email, password string) *auth.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &auth.User{ID: uuid.NewString(), Email: email, CreatedAt: time.Now()}
	s.users[email] = u
	s.passwords[email] = password
	return u
}

// SetCurrent makes sess the persisted session returned by CurrentSession.
func (s *Service) SetCurrent(sess *auth.Session) {
	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()
}

func (s *Service) SignUp(_ context.Context, email, password string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SignUpErr != nil {
		return nil, s.SignUpErr
	}
	email = auth.NormalizeEmail(email)
	if err := auth.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := auth.ValidatePassword(password); err != nil {
		return nil, err
	}
	if _, ok := s.users[email]; ok {
		return nil, auth.ErrUserExists
	}
	u := &auth.User{ID: uuid.NewString(), Email: email, CreatedAt: time.Now()}
	s.users[email] = u
	s.passwords[email] = password
	return u, nil
}

func (s *Service) SignIn(_ context.Context, email, password string) (*auth.Session, error) {
	s.mu.Lock()
	if s.SignInErr != nil {
		err := s.SignInErr
		s.mu.Unlock()
		return nil, err
	}
	email = auth.NormalizeEmail(email)
	u, ok := s.users[email]
	if !ok || s.passwords[email] != password {
		s.mu.Unlock()
		return nil, auth.ErrInvalidCredentials
	}
	sess := &auth.Session{User: u, Token: uuid.NewString(), ExpiresAt: time.Now().Add(time.Hour)}
	s.current = sess
	fns := s.subscribersLocked()
	s.mu.Unlock()

	for _, fn := range fns {
		fn(auth.EventSignedIn, sess)
	}
	return sess, nil
}

func (s *Service) SignOut(_ context.Context) error {
	s.mu.Lock()
	if s.SignOutErr != nil {
		err := s.SignOutErr
		s.mu.Unlock()
		return err
	}
	s.current = nil
	fns := s.subscribersLocked()
	s.mu.Unlock()

	for _, fn := range fns {
		fn(auth.EventSignedOut, nil)
	}
	return nil
}

func (s *Service) CurrentSession(_ context.Context) (*auth.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SessionErr != nil {
		return nil, s.SessionErr
	}
	return s.current, nil
}

func (s *Service) Subscribe(fn func(auth.Event, *auth.Session)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Subscribers returns the number of live subscriptions.
func (s *Service) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *Service) subscribersLocked() []func(auth.Event, *auth.Session) {
	fns := make([]func(auth.Event, *auth.Session), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	return fns
}

var _ auth.IdentityService = (*Service)(nil)
