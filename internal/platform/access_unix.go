//go:build !windows

package platform

import "golang.org/x/sys/unix"

// Writable reports whether the current process can write to path.
// It uses access(2) so the check reflects effective permissions
// without touching the file.
func Writable(path string) bool {
	return unix.Access(path, unix.W_OK) == nil
}

// Readable reports whether the current process can read path.
func Readable(path string) bool {
	return unix.Access(path, unix.R_OK) == nil
}
