//go:build windows

package secrets

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

func protect(plain []byte) ([]byte, error) {
	return dpapi(plain, func(in, out *windows.DataBlob) error {
		return windows.CryptProtectData(in, nil, nil, 0, nil, windows.CRYPTPROTECT_LOCAL_MACHINE, out)
	})
}

func unprotect(sealed []byte) ([]byte, error) {
	return dpapi(sealed, func(in, out *windows.DataBlob) error {
		return windows.CryptUnprotectData(in, nil, nil, 0, nil, 0, out)
	})
}

// dpapi runs one CryptProtectData/CryptUnprotectData call and copies the
// result out of the LocalAlloc'd buffer.
func dpapi(data []byte, call func(in, out *windows.DataBlob) error) ([]byte, error) {
	var in windows.DataBlob
	if len(data) > 0 {
		in = windows.DataBlob{Size: uint32(len(data)), Data: &data[0]}
	}

	var out windows.DataBlob
	if err := call(&in, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		return nil, nil
	}
	defer windows.LocalFree(windows.Handle(unsafe.Pointer(out.Data)))

	res := make([]byte, out.Size)
	copy(res, unsafe.Slice(out.Data, out.Size))
	return res, nil
}
