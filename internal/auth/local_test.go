package auth

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/VVic23/civics-practice/internal/store"
)

type localFixture struct {
	svc    *LocalService
	st     *store.Store
	tokens FileTokenStore
	now    time.Time
}

func newLocalFixture(t *testing.T) *localFixture {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	st, err := store.Open("file:" + name + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	f := &localFixture{
		st:     st,
		tokens: FileTokenStore{Path: filepath.Join(t.TempDir(), "session.jwt")},
		now:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	signer := NewSigner([]byte("test-secret"), time.Hour)
	f.svc = NewLocalService(st.Users(), f.tokens, signer, LocalOptions{
		BcryptCost: bcrypt.MinCost,
		Now:        func() time.Time { return f.now },
	})
	return f
}

func TestLocal_SignUpValidation(t *testing.T) {
	f := newLocalFixture(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		want     string
	}{
		{"bad email", "not-an-email", "secret1", "Unable to validate email address: invalid format"},
		{"display name", "Ana <ana@example.com>", "secret1", "Unable to validate email address: invalid format"},
		{"empty email", "  ", "secret1", "Email is required"},
		{"short password", "ana@example.com", "12345", "Password should be at least 6 characters."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.SignUp(ctx, tt.email, tt.password)
			assert.EqualError(t, err, tt.want)
		})
	}
}

func TestLocal_SignUpThenSignIn(t *testing.T) {
	f := newLocalFixture(t)
	ctx := context.Background()

	u, err := f.svc.SignUp(ctx, " Ana@Example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email)

	_, err = f.svc.SignUp(ctx, "ana@example.com", "another1")
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = f.svc.SignIn(ctx, "ana@example.com", "wrong-password")
	assert.EqualError(t, err, "Invalid login credentials")

	_, err = f.svc.SignIn(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	var events []Event
	unsub := f.svc.Subscribe(func(ev Event, _ *Session) { events = append(events, ev) })
	defer unsub()

	sess, err := f.svc.SignIn(ctx, "ANA@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, sess.User.ID)
	assert.Equal(t, f.now.Add(time.Hour), sess.ExpiresAt)
	assert.Equal(t, []Event{EventSignedIn}, events)

	info, err := os.Stat(f.tokens.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLocal_CurrentSessionRestores(t *testing.T) {
	f := newLocalFixture(t)
	ctx := context.Background()

	sess, err := f.svc.CurrentSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess)

	_, err = f.svc.SignUp(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)
	_, err = f.svc.SignIn(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)

	sess, err = f.svc.CurrentSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "ana@example.com", sess.User.Email)
}

func TestLocal_ExpiredSessionDiscarded(t *testing.T) {
	f := newLocalFixture(t)
	ctx := context.Background()

	_, err := f.svc.SignUp(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)
	_, err = f.svc.SignIn(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)

	f.now = f.now.Add(2 * time.Hour)
	sess, err := f.svc.CurrentSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess)

	_, err = os.Stat(f.tokens.Path)
	assert.True(t, os.IsNotExist(err), "expired token file should be removed")
}

func TestLocal_ForeignTokenDiscarded(t *testing.T) {
	f := newLocalFixture(t)
	ctx := context.Background()

	other := NewSigner([]byte("other-secret"), time.Hour)
	tok, _, err := other.Issue(&User{ID: "x", Email: "x@example.com"}, f.now)
	require.NoError(t, err)
	require.NoError(t, f.tokens.Save(tok))

	sess, err := f.svc.CurrentSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestLocal_SignOut(t *testing.T) {
	f := newLocalFixture(t)
	ctx := context.Background()

	_, err := f.svc.SignUp(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)
	_, err = f.svc.SignIn(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)

	var got []Event
	unsub := f.svc.Subscribe(func(ev Event, sess *Session) {
		got = append(got, ev)
		assert.Nil(t, sess)
	})
	require.NoError(t, f.svc.SignOut(ctx))
	unsub()
	unsub()

	assert.Equal(t, []Event{EventSignedOut}, got)
	assert.Equal(t, 0, f.svc.Subscribers())

	sess, err := f.svc.CurrentSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestLocal_WithGate(t *testing.T) {
	f := newLocalFixture(t)
	ctx := context.Background()
	g := NewGate(f.svc)
	defer g.Close()

	require.NoError(t, g.Start(ctx))
	assert.Nil(t, g.CurrentUser())

	_, err := g.SignUp(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)
	_, err = g.SignIn(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)
	require.NotNil(t, g.CurrentUser())

	// A second gate on the same token file resumes the session.
	g2 := NewGate(f.svc)
	defer g2.Close()
	require.NoError(t, g2.Start(ctx))
	require.NotNil(t, g2.CurrentUser())
	assert.Equal(t, "ana@example.com", g2.CurrentUser().Email)

	require.NoError(t, g.SignOut(ctx))
	assert.Nil(t, g.CurrentUser())
	assert.Nil(t, g2.CurrentUser(), "sign-out event reaches every subscriber")
}

func TestLoadSecret(t *testing.T) {
	f := newLocalFixture(t)
	ctx := context.Background()

	key, err := LoadSecret(ctx, f.st.Settings(), "explicit")
	require.NoError(t, err)
	assert.Equal(t, []byte("explicit"), key)

	first, err := LoadSecret(ctx, f.st.Settings(), "")
	require.NoError(t, err)
	assert.Len(t, first, 32)

	second, err := LoadSecret(ctx, f.st.Settings(), "")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSigner_RoundTrip(t *testing.T) {
	s := NewSigner([]byte("k"), 0)
	now := time.Now()
	tok, exp, err := s.Issue(&User{ID: "u1", Email: "a@b.co"}, now)
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(DefaultSessionTTL), exp, time.Second)

	c, err := s.Parse(tok, now)
	require.NoError(t, err)
	assert.Equal(t, "u1", c.Subject)
	assert.Equal(t, "a@b.co", c.Email)
	assert.NotEmpty(t, c.ID)
}
