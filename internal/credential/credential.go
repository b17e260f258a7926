// Package credential stores host API tokens.
//
// The default store keeps tokens in the operating system keychain so
// they never land in config files or the catalog database. An
// in-memory store is provided for tests and ephemeral use.
package credential

import "errors"

var (
	// ErrNotFound is returned when no secret exists under a key.
	ErrNotFound = errors.New("credential not found")

	// ErrUnavailable is returned when the backing store cannot be
	// reached, for example when no keychain service is running.
	ErrUnavailable = errors.New("credential store unavailable")
)

// Store persists API tokens keyed by a host's credential key.
type Store interface {
	// Set saves a secret under key, overwriting any previous value.
	Set(key, secret string) error

	// Get returns the secret stored under key, or ErrNotFound.
	Get(key string) (string, error)

	// Delete removes the secret under key. Deleting a missing key is
	// not an error.
	Delete(key string) error
}
