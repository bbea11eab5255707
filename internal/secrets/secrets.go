package secrets

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"sql-bridge/internal/config"
	"sql-bridge/internal/platform/paths"
)

var ErrNotFound = errors.New("secret not found")
var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// DBPasswordKey names the stored password for a configured server.
func DBPasswordKey(driver, host string) string {
	return "db_password_" + driver + "_" + host
}

// DBPassword returns cfg.Password when it is set, otherwise the password
// stored for the server. A server with no stored password gets "".
func DBPassword(cfg config.DBConfig) (string, error) {
	if cfg.Password != "" {
		return cfg.Password, nil
	}
	b, err := Get(DBPasswordKey(string(cfg.Driver), cfg.Host))
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func sanitizeKey(key string) string {
	key = strings.TrimSpace(key)
	key = unsafeKeyChars.ReplaceAllString(key, "_")
	if key == "" {
		return "empty"
	}
	return key
}

func secretFilePath(key string) (string, error) {
	dir, err := paths.SecretsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, sanitizeKey(key)+".bin"), nil
}

// Set stores value under key in the OS keyring. Without a reachable keyring
// it goes to a 0600 file instead, sealed with DPAPI on Windows.
func Set(key string, value []byte) error {
	if err := keyringSet(key, value); err == nil {
		// drop a copy left by an earlier fallback
		return fileDelete(key)
	}
	return fileSet(key, value)
}

// Get looks in the keyring first, then in the fallback file.
func Get(key string) ([]byte, error) {
	v, err := keyringGet(key)
	if err == nil {
		return v, nil
	}
	return fileGet(key)
}

// Delete removes key from both stores; a missing key is not an error. A
// keyring failure only counts while the keyring still returns the secret.
func Delete(key string) error {
	if err := keyringDelete(key); err != nil {
		if _, still := keyringGet(key); still == nil {
			return err
		}
	}
	return fileDelete(key)
}

func fileSet(key string, value []byte) error {
	p, err := secretFilePath(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return err
	}

	sealed, err := protect(value)
	if err != nil {
		return err
	}

	return os.WriteFile(p, sealed, 0o600)
}

func fileGet(key string) ([]byte, error) {
	p, err := secretFilePath(key)
	if err != nil {
		return nil, err
	}

	sealed, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return unprotect(sealed)
}

func fileDelete(key string) error {
	p, err := secretFilePath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
