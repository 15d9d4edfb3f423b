// Package session supplies the identity the store scopes remote writes by.
// The store only asks whether a user is present; it never authenticates.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/julianstephens/daylog/internal/constants"
	"github.com/julianstephens/daylog/internal/keyring"
)

var (
	ErrNoSession    = errors.New("not logged in")
	ErrInvalidToken = errors.New("invalid session token")
)

// Identity reports the current user, if any.
type Identity interface {
	UserID() (string, bool)
}

type anonymous struct{}

func (anonymous) UserID() (string, bool) { return "", false }

// Anonymous is the local-only identity.
func Anonymous() Identity { return anonymous{} }

// Static is a fixed user id; empty means no session.
type Static string

func (s Static) UserID() (string, bool) { return string(s), s != "" }

// Claims carries the user id in the standard subject claim.
type Claims struct {
	jwt.RegisteredClaims
}

// Token is an identity backed by a parsed session token. It stops reporting
// a user once the token expires.
type Token struct {
	claims *Claims
	now    func() time.Time
}

func (t *Token) UserID() (string, bool) {
	if t == nil || t.claims == nil || t.claims.Subject == "" {
		return "", false
	}
	if exp := t.claims.ExpiresAt; exp != nil && !t.now().Before(exp.Time) {
		return "", false
	}
	return t.claims.Subject, true
}

// ExpiresAt returns the token expiry, or the zero time if it has none.
func (t *Token) ExpiresAt() time.Time {
	if t == nil || t.claims == nil || t.claims.ExpiresAt == nil {
		return time.Time{}
	}
	return t.claims.ExpiresAt.Time
}

// Issue signs an HS256 session token for userID.
func Issue(userID string, secret []byte, ttl time.Duration, now time.Time) (string, error) {
	if userID == "" {
		return "", errors.New("user id cannot be empty")
	}
	if len(secret) == 0 {
		return "", errors.New("session.jwt_secret must be set to issue tokens")
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			Issuer:   constants.AppName,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Parse validates raw and returns its identity. With a secret the signature
// is verified; without one the token was issued elsewhere and only its
// claims and expiry are checked.
func Parse(raw string, secret []byte, now func() time.Time) (*Token, error) {
	if now == nil {
		now = time.Now
	}
	claims := &Claims{}

	if len(secret) > 0 {
		parser := jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithTimeFunc(now),
		)
		parsed, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
			return secret, nil
		})
		if err != nil || !parsed.Valid {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	} else {
		if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		if claims.ExpiresAt != nil && !now().Before(claims.ExpiresAt.Time) {
			return nil, fmt.Errorf("%w: token has expired", ErrInvalidToken)
		}
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", ErrInvalidToken)
	}
	return &Token{claims: claims, now: now}, nil
}

// Load returns the identity from the stored session token, or Anonymous
// when none is stored. A stored token that no longer parses is reported
// alongside the anonymous identity so callers can fall back to local-only.
func Load(secret []byte) (Identity, error) {
	raw, err := keyring.GetSessionToken()
	if errors.Is(err, keyring.ErrNotFound) {
		return Anonymous(), nil
	}
	if err != nil {
		return Anonymous(), err
	}

	tok, err := Parse(raw, secret, time.Now)
	if err != nil {
		return Anonymous(), err
	}
	return tok, nil
}

// Save validates raw and stores it as the current session.
func Save(raw string, secret []byte) (*Token, error) {
	tok, err := Parse(raw, secret, time.Now)
	if err != nil {
		return nil, err
	}
	if err := keyring.SetSessionToken(raw); err != nil {
		return nil, err
	}
	return tok, nil
}

// Clear forgets the stored session. Clearing when logged out is not an error.
func Clear() error {
	if err := keyring.DeleteSessionToken(); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}
