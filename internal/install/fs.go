package install

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"

	"github.com/kitforge-dev/kitforge/internal/platform"
)

// fsOps is the mutating filesystem surface used by the executor. Reads
// (stat, hashing) intentionally stay outside the interface: a dry run must
// read the real filesystem to reach the same decisions as a live run.
type fsOps interface {
	Mkdir(path string, mode os.FileMode) error
	CopyFile(src, dst string) error
	Chmod(path string, mode os.FileMode) error
	Remove(path string) error
	RemoveDirIfEmpty(path string) error
	Rename(oldPath, newPath string) error
}

// osFS mutates the real filesystem.
type osFS struct{}

func (osFS) Mkdir(path string, mode os.FileMode) error {
	return os.Mkdir(path, mode)
}

func (osFS) CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func (osFS) Chmod(path string, mode os.FileMode) error {
	// platform.Chmod is a no-op on Windows, where mode bits do not exist.
	return platform.Chmod(path, mode)
}

func (osFS) Remove(path string) error {
	return os.Remove(path)
}

func (osFS) RemoveDirIfEmpty(path string) error {
	err := os.Remove(path)
	if err == nil || os.IsNotExist(err) {
		return nil
	}
	// A non-empty directory is left in place.
	if entries, readErr := os.ReadDir(path); readErr == nil && len(entries) > 0 {
		return nil
	}
	return err
}

func (osFS) Rename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

// recordFS is the dry-run filesystem: every mutation is recorded and
// reported successful without touching disk.
type recordFS struct {
	ops []string
}

func (r *recordFS) record(format string, args ...interface{}) error {
	r.ops = append(r.ops, fmt.Sprintf(format, args...))
	return nil
}

func (r *recordFS) Mkdir(path string, mode os.FileMode) error {
	return r.record("mkdir %s", path)
}

func (r *recordFS) CopyFile(src, dst string) error {
	return r.record("copy %s -> %s", src, dst)
}

func (r *recordFS) Chmod(path string, mode os.FileMode) error {
	return r.record("chmod %o %s", mode, path)
}

func (r *recordFS) Remove(path string) error {
	return r.record("remove %s", path)
}

func (r *recordFS) RemoveDirIfEmpty(path string) error {
	return r.record("rmdir %s", path)
}

func (r *recordFS) Rename(oldPath, newPath string) error {
	return r.record("rename %s -> %s", oldPath, newPath)
}

// fileHash returns the sha256 of a file's content.
func fileHash(path string) ([32]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return [32]byte{}, err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return [32]byte{}, err
	}
	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum, nil
}

// sameContent reports whether two files have identical content. Any read
// error is treated as "different" so the copy proceeds.
func sameContent(a, b string) bool {
	ha, err := fileHash(a)
	if err != nil {
		return false
	}
	hb, err := fileHash(b)
	if err != nil {
		return false
	}
	return ha == hb
}
