//go:build !windows

package secrets

// The file fallback, used when no keyring is reachable, relies on the 0600
// file mode alone.
func protect(plain []byte) ([]byte, error) {
	out := make([]byte, len(plain))
	copy(out, plain)
	return out, nil
}

func unprotect(sealed []byte) ([]byte, error) {
	return protect(sealed)
}
