package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestSetAndGetConnectionString(t *testing.T) {
	gokeyring.MockInit()

	testConnStr := "postgres://testuser@localhost:5432/testdb?sslmode=disable"

	if err := SetConnectionString(testConnStr); err != nil {
		t.Fatalf("SetConnectionString() failed: %v", err)
	}

	retrieved, err := GetConnectionString()
	if err != nil {
		t.Fatalf("GetConnectionString() failed: %v", err)
	}
	if retrieved != testConnStr {
		t.Errorf("GetConnectionString() = %q, want %q", retrieved, testConnStr)
	}
}

func TestSetEmptySecrets(t *testing.T) {
	gokeyring.MockInit()

	if err := SetConnectionString(""); err == nil {
		t.Error("SetConnectionString(\"\") should return an error")
	}
	if err := SetSessionToken(""); err == nil {
		t.Error("SetSessionToken(\"\") should return an error")
	}
}

func TestGetNotFound(t *testing.T) {
	gokeyring.MockInit()

	_ = DeleteConnectionString()
	_ = DeleteSessionToken()

	if _, err := GetConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetConnectionString() error = %v, want %v", err, ErrNotFound)
	}
	if _, err := GetSessionToken(); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSessionToken() error = %v, want %v", err, ErrNotFound)
	}
}

func TestSessionTokenLifecycle(t *testing.T) {
	gokeyring.MockInit()

	if err := SetSessionToken("header.payload.sig"); err != nil {
		t.Fatalf("SetSessionToken() failed: %v", err)
	}
	// Separate entries: storing a token leaves the connection string alone.
	if _, err := GetConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetConnectionString() error = %v, want %v", err, ErrNotFound)
	}

	got, err := GetSessionToken()
	if err != nil || got != "header.payload.sig" {
		t.Fatalf("GetSessionToken() = %q, %v", got, err)
	}

	if err := DeleteSessionToken(); err != nil {
		t.Fatalf("DeleteSessionToken() failed: %v", err)
	}
	if err := DeleteSessionToken(); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteSessionToken() error = %v, want %v", err, ErrNotFound)
	}
}

func TestIsAvailable(t *testing.T) {
	gokeyring.MockInit()

	if !IsAvailable() {
		t.Error("IsAvailable() should be true with the mock keyring")
	}
}
