//go:build !unix

package arena

import "errors"

// This package's OS-mapping fallback is unix-only; on other platforms
// Allocate falls back to returning nil once the bump region is exhausted,
// the same as if the OS mapping itself had failed.
func mmapAnon(size int) ([]byte, error) {
	return nil, errors.New("arena: OS page mapping is not supported on this platform")
}

func munmapAnon(b []byte) error {
	return errors.New("arena: OS page mapping is not supported on this platform")
}
