//go:build unix

package arena

import "syscall"

// mmapAnon asks the OS for a fresh, zeroed, page-aligned anonymous
// mapping of at least size bytes. The standard library's syscall package
// is used directly here, rather than golang.org/x/sys/unix.
func mmapAnon(size int) ([]byte, error) {
	n := roundUpPage(size)

	return syscall.Mmap(-1, 0, n, syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_ANON|syscall.MAP_PRIVATE)
}

// munmapAnon releases a mapping previously returned by mmapAnon.
func munmapAnon(b []byte) error {
	return syscall.Munmap(b)
}

func roundUpPage(size int) int {
	page := syscall.Getpagesize()

	return (size + page - 1) &^ (page - 1)
}
