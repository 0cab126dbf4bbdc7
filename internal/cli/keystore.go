package cli

import (
	"errors"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "dayplan"
	keyringUser    = "anthropic-api-key"
)

// ErrNoKey is returned when no API key is stored.
var ErrNoKey = errors.New("no API key stored")

// KeyStore keeps the remote generator API key.
type KeyStore interface {
	Get() (string, error)
	Set(secret string) error
	Delete() error
}

type keyringStore struct {
	service string
	user    string
}

// NewKeyringStore stores the key in the OS keychain.
func NewKeyringStore() KeyStore {
	return keyringStore{service: keyringService, user: keyringUser}
}

func (k keyringStore) Get() (string, error) {
	secret, err := keyring.Get(k.service, k.user)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNoKey
	}
	return secret, err
}

func (k keyringStore) Set(secret string) error {
	return keyring.Set(k.service, k.user, secret)
}

func (k keyringStore) Delete() error {
	err := keyring.Delete(k.service, k.user)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNoKey
	}
	return err
}

// ResolveAPIKey prefers the environment value and falls back to the store.
// Keychain failures are treated as no key.
func ResolveAPIKey(envKey string, keys KeyStore) string {
	if envKey != "" || keys == nil {
		return envKey
	}
	secret, err := keys.Get()
	if err != nil {
		return ""
	}
	return secret
}
