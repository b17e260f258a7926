package credential

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// service groups all forkmate secrets in the OS keychain.
const service = "forkmate"

// Keyring stores secrets in the operating system keychain.
type Keyring struct {
	service string
}

// NewKeyring returns a keychain-backed store.
func NewKeyring() *Keyring {
	return &Keyring{service: service}
}

// Set implements Store.
func (k *Keyring) Set(key, secret string) error {
	if err := keyring.Set(k.service, key, secret); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Get implements Store.
func (k *Keyring) Get(key string) (string, error) {
	secret, err := keyring.Get(k.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return secret, nil
}

// Delete implements Store.
func (k *Keyring) Delete(key string) error {
	err := keyring.Delete(k.service, key)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
