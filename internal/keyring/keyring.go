package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/daylog/internal/constants"
)

var (
	// ErrNotFound is returned when no secret is stored under the entry
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

func get(user string) (string, error) {
	secret, err := keyring.Get(constants.AppName, user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return secret, nil
}

func set(user, what, secret string) error {
	if secret == "" {
		return fmt.Errorf("%s cannot be empty", what)
	}
	if err := keyring.Set(constants.AppName, user, secret); err != nil {
		return fmt.Errorf("failed to store %s in keyring: %w", what, err)
	}
	return nil
}

func del(user, what string) error {
	if err := keyring.Delete(constants.AppName, user); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", what, err)
	}
	return nil
}

// GetConnectionString retrieves the PostgreSQL connection string.
// Returns ErrNotFound if none is stored.
func GetConnectionString() (string, error) {
	return get(constants.DefaultKeyringUser)
}

// SetConnectionString stores the PostgreSQL connection string.
func SetConnectionString(connStr string) error {
	return set(constants.DefaultKeyringUser, "connection string", connStr)
}

// DeleteConnectionString removes the stored connection string.
func DeleteConnectionString() error {
	return del(constants.DefaultKeyringUser, "connection string")
}

// GetSessionToken retrieves the signed session token.
// Returns ErrNotFound when logged out.
func GetSessionToken() (string, error) {
	return get(constants.SessionKeyringUser)
}

// SetSessionToken stores the signed session token.
func SetSessionToken(token string) error {
	return set(constants.SessionKeyringUser, "session token", token)
}

// DeleteSessionToken removes the stored session token.
func DeleteSessionToken() error {
	return del(constants.SessionKeyringUser, "session token")
}

// IsAvailable is a best-effort check that the OS keyring answers at all.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
