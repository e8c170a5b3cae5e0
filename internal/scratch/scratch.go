// Package scratch manages plaintext working copies.
//
// A Dir is a private (0700) directory created for one operation. Buffers
// are files inside it. Closing a Buffer overwrites its bytes with zeros and
// removes it; closing the Dir does the same for everything left in it,
// which also catches swap and backup files editors leave behind.
//
// Callers acquire both with a deferred Close so plaintext is removed on
// every return path:
//
//	dir, err := scratch.NewDir("")
//	if err != nil {
//		return err
//	}
//	defer dir.Close()
package scratch

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// Dir is a private directory holding the buffers of one operation.
type Dir struct {
	path string
}

// NewDir creates a private scratch directory under parent. An empty parent
// means the system temp directory. The name records the current process
// id so Stale can tell a live session's directory from an abandoned one.
func NewDir(parent string) (*Dir, error) {
	if parent != "" {
		if err := os.MkdirAll(parent, 0700); err != nil {
			return nil, fmt.Errorf("failed to create scratch root: %w", err)
		}
	}

	path, err := os.MkdirTemp(parent, ownedPattern())
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	if err := os.Chmod(path, 0700); err != nil {
		_ = os.RemoveAll(path)
		return nil, fmt.Errorf("failed to secure scratch directory: %w", err)
	}

	return &Dir{path: path}, nil
}

// Path returns the directory path.
func (d *Dir) Path() string {
	return d.path
}

// Buffer reserves a new buffer in the directory. The file itself is not
// created, so tools that refuse to overwrite can write to it.
func (d *Dir) Buffer(name string) *Buffer {
	return &Buffer{path: filepath.Join(d.path, name+"-"+uuid.NewString())}
}

// Close wipes every regular file in the directory and removes it.
// Calling Close more than once is safe.
func (d *Dir) Close() error {
	var errs []error
	err := filepath.WalkDir(d.path, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if entry.Type().IsRegular() {
			if err := Wipe(path); err != nil {
				errs = append(errs, err)
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		errs = append(errs, err)
	}

	if err := os.RemoveAll(d.path); err != nil {
		errs = append(errs, fmt.Errorf("failed to remove scratch directory: %w", err))
	}

	return errors.Join(errs...)
}

// Buffer is one plaintext working file.
type Buffer struct {
	path string
}

// Path returns the buffer's file path.
func (b *Buffer) Path() string {
	return b.path
}

// Create creates the buffer as an empty 0600 file.
func (b *Buffer) Create() error {
	f, err := os.OpenFile(b.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("failed to create scratch file: %w", err)
	}
	return f.Close()
}

// Bytes returns the buffer's current content.
func (b *Buffer) Bytes() ([]byte, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scratch file: %w", err)
	}
	return data, nil
}

// Fingerprint returns the digest of the buffer's current content.
func (b *Buffer) Fingerprint() (Fingerprint, error) {
	return FileFingerprint(b.path)
}

// Reset wipes the buffer's content, leaving the path free for reuse.
func (b *Buffer) Reset() error {
	return Wipe(b.path)
}

// Close wipes and removes the buffer. A buffer that was never written is
// fine; calling Close more than once is safe.
func (b *Buffer) Close() error {
	return Wipe(b.path)
}

// Wipe overwrites the file at path with zeros, syncs it and removes it.
// A missing file is not an error.
func Wipe(path string) error {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if info.Mode().IsRegular() && info.Size() > 0 {
		if err := zeroFill(path, info.Size()); err != nil {
			// Removal still matters more than the overwrite.
			_ = os.Remove(path)
			return err
		}
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

func zeroFill(path string, size int64) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("failed to open %s for wiping: %w", path, err)
	}
	defer f.Close()

	if _, err := io.CopyN(f, zeroReader{}, size); err != nil {
		return fmt.Errorf("failed to wipe %s: %w", path, err)
	}
	return f.Sync()
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

// Fingerprint is a BLAKE2b-256 digest used to detect content changes.
type Fingerprint [blake2b.Size256]byte

// Sum returns the fingerprint of data.
func Sum(data []byte) Fingerprint {
	return blake2b.Sum256(data)
}

// FileFingerprint returns the fingerprint of the file at path.
func FileFingerprint(path string) (Fingerprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return Fingerprint{}, err
	}
	if _, err := io.Copy(h, f); err != nil {
		return Fingerprint{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var fp Fingerprint
	copy(fp[:], h.Sum(nil))
	return fp, nil
}

// String returns the hex form of the fingerprint.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}
