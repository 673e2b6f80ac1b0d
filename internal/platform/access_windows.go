//go:build windows

package platform

import "os"

// Writable reports whether path is plausibly writable. Windows has no
// access(2); existence is the best cheap approximation.
func Writable(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Readable reports whether path can be opened for reading.
func Readable(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}
