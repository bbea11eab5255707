//go:build !windows

package secrets

import (
	"errors"

	"github.com/zalando/go-keyring"
)

// keyringService groups every entry this app keeps in the OS keyring
// (Keychain on macOS, the Secret Service on Linux and BSD).
const keyringService = "sql-bridge"

func keyringSet(key string, value []byte) error {
	return keyring.Set(keyringService, sanitizeKey(key), string(value))
}

func keyringGet(key string) ([]byte, error) {
	v, err := keyring.Get(keyringService, sanitizeKey(key))
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(v), nil
}

func keyringDelete(key string) error {
	err := keyring.Delete(keyringService, sanitizeKey(key))
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
