//go:build unix

// Package sysmem is the allocator's only doorway to OS memory. It hands out
// anonymous, private, read-write mappings zeroed by the kernel and takes them
// back. Nothing in this package tracks ownership; the page cache and the
// large-object path keep their own books.
package sysmem

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Map returns size bytes of fresh zeroed memory obtained from the OS, or an
// error when the kernel refuses the mapping. size must be positive.
func Map(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("sysmem: invalid mapping size %d", size)
	}
	b, err := unix.Mmap(-1, 0, size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("sysmem: map %d bytes: %w", size, err)
	}
	return b, nil
}

// Unmap releases a mapping previously returned by Map. The slice must cover
// the whole mapping.
func Unmap(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	err := unix.Munmap(b)
	if errors.Is(err, unix.EINVAL) {
		// Treat double-unmap as no-op for callers.
		return nil
	}
	return err
}
