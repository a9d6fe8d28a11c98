package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/VVic23/civics-practice/internal/store"
)

// LocalOptions configures a LocalService.
type LocalOptions struct {
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int

	// Now defaults to time.Now.
	Now func() time.Time

	Logger *slog.Logger
}

// LocalService is an IdentityService backed by the local database. Sessions
// are signed tokens kept in a TokenStore so a restart resumes them.
type LocalService struct {
	users  store.UserRepo
	tokens TokenStore
	signer *Signer
	cost   int
	now    func() time.Time
	log    *slog.Logger

	mu     sync.Mutex
	subs   map[int]func(Event, *Session)
	nextID int
}

// NewLocalService wires a LocalService.
func NewLocalService(users store.UserRepo, tokens TokenStore, signer *Signer, opts LocalOptions) *LocalService {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &LocalService{
		users:  users,
		tokens: tokens,
		signer: signer,
		cost:   opts.BcryptCost,
		now:    opts.Now,
		log:    opts.Logger,
		subs:   make(map[int]func(Event, *Session)),
	}
}

// SignUp creates an account. It does not sign the new user in.
func (s *LocalService) SignUp(ctx context.Context, email, password string) (*User, error) {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	if _, err := s.users.ByEmail(ctx, email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	rec := &store.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, rec); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	s.log.Info("account created", "user_id", rec.ID)
	return toUser(rec), nil
}

// SignIn checks credentials, saves a new session token and notifies
// subscribers with EventSignedIn.
func (s *LocalService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, &ValidationError{Field: "email", Message: "Missing email or password"}
	}

	rec, err := s.users.ByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)) != nil {
		s.log.Warn("sign-in rejected", "user_id", rec.ID)
		return nil, ErrInvalidCredentials
	}

	u := toUser(rec)
	tok, exp, err := s.signer.Issue(u, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Save(tok); err != nil {
		return nil, err
	}

	sess := &Session{User: u, Token: tok, ExpiresAt: exp}
	s.log.Info("signed in", "user_id", u.ID)
	s.notify(EventSignedIn, sess)
	return sess, nil
}

// SignOut drops the saved session token and notifies subscribers with
// EventSignedOut.
func (s *LocalService) SignOut(ctx context.Context) error {
	if err := s.tokens.Clear(); err != nil {
		return err
	}
	s.log.Info("signed out")
	s.notify(EventSignedOut, nil)
	return nil
}

// CurrentSession restores the saved session. Missing, expired or orphaned
// tokens yield a nil session and are removed.
func (s *LocalService) CurrentSession(ctx context.Context) (*Session, error) {
	tok, err := s.tokens.Load()
	if errors.Is(err, ErrNoToken) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	claims, err := s.signer.Parse(tok, s.now())
	if err != nil {
		s.log.Info("discarding saved session", "reason", err)
		return nil, s.tokens.Clear()
	}

	rec, err := s.users.ByID(ctx, claims.Subject)
	if errors.Is(err, store.ErrNotFound) {
		s.log.Info("discarding saved session", "reason", "user no longer exists")
		return nil, s.tokens.Clear()
	}
	if err != nil {
		return nil, err
	}

	return &Session{
		User:      toUser(rec),
		Token:     tok,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Subscribe registers fn. Events are delivered synchronously on the
// goroutine that caused them.
func (s *LocalService) Subscribe(fn func(Event, *Session)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
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

// Subscribers returns the number of active subscriptions.
func (s *LocalService) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *LocalService) notify(ev Event, sess *Session) {
	s.mu.Lock()
	fns := make([]func(Event, *Session), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(ev, sess)
	}
}

func toUser(rec *store.User) *User {
	return &User{ID: rec.ID, Email: rec.Email, CreatedAt: rec.CreatedAt}
}
