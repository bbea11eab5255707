//go:build windows

package secrets

import "errors"

// Windows keeps secrets in DPAPI-sealed files only.
var errNoKeyring = errors.New("keyring not used on windows")

func keyringSet(string, []byte) error   { return errNoKeyring }
func keyringGet(string) ([]byte, error) { return nil, errNoKeyring }
func keyringDelete(string) error        { return nil }
