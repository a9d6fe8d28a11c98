package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/VVic23/civics-practice/internal/store"
)

// DefaultSessionTTL is how long a sign-in stays valid.
const DefaultSessionTTL = 30 * 24 * time.Hour

const (
	tokenIssuer       = "civics-practice"
	secretSettingsKey = "auth_secret"
)

// ErrNoToken is returned by TokenStore.Load when no session is saved.
var ErrNoToken = errors.New("no saved session")

// Claims is the payload of a session token.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Signer issues and verifies HS256 session tokens.
type Signer struct {
	key []byte
	ttl time.Duration
}

// NewSigner creates a Signer. A non-positive ttl uses DefaultSessionTTL.
func NewSigner(key []byte, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Signer{key: key, ttl: ttl}
}

// Issue signs a token for u valid from now until now+ttl.
func (s *Signer) Issue(u *User, now time.Time) (string, time.Time, error) {
	exp := now.Add(s.ttl)
	claims := &Claims{
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies tokenStr as of now and returns its claims.
func (s *Signer) Parse(tokenStr string, now time.Time) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return nil, err
	}
	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return c, nil
}

// LoadSecret returns the signing key. An explicit secret wins; otherwise a
// random key is generated once and kept in settings.
func LoadSecret(ctx context.Context, settings store.SettingsRepo, explicit string) ([]byte, error) {
	if explicit != "" {
		return []byte(explicit), nil
	}

	v, ok, err := settings.Get(ctx, secretSettingsKey)
	if err != nil {
		return nil, err
	}
	if ok {
		return hex.DecodeString(v)
	}

	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}
	if err := settings.Set(ctx, secretSettingsKey, hex.EncodeToString(key)); err != nil {
		return nil, err
	}
	return key, nil
}

// TokenStore persists the current session token between runs.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// FileTokenStore keeps the token in a single file readable only by the owner.
type FileTokenStore struct {
	Path string
}

func (f FileTokenStore) Load() (string, error) {
	b, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("read session token: %w", err)
	}
	tok := strings.TrimSpace(string(b))
	if tok == "" {
		return "", ErrNoToken
	}
	return tok, nil
}

func (f FileTokenStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(f.Path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("write session token: %w", err)
	}
	return nil
}

func (f FileTokenStore) Clear() error {
	err := os.Remove(f.Path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session token: %w", err)
	}
	return nil
}

// DefaultTokenPath resolves the token file: CIVICS_SESSION_TOKEN, then the
// data directory.
func DefaultTokenPath() (string, error) {
	if p := os.Getenv("CIVICS_SESSION_TOKEN"); p != "" {
		return p, nil
	}
	dir, err := store.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.jwt"), nil
}
