package vault

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"filippo.io/age/armor"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"

	kerrors "github.com/PolarWolf314/agevault/internal/errors"
)

// EnsureDir creates dir (0700) if needed and checks that files can be
// created in it.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("%w: %s: %v", kerrors.ErrDirNotWritable, dir, err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", kerrors.ErrDirNotWritable, dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", kerrors.ErrDirNotWritable, dir)
	}

	probe, err := os.CreateTemp(dir, ".agevault-probe-*")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", kerrors.ErrDirNotWritable, dir, err)
	}
	probe.Close()
	if err := os.Remove(probe.Name()); err != nil {
		return fmt.Errorf("%w: %s: %v", kerrors.ErrDirNotWritable, dir, err)
	}

	return nil
}

// CheckArtifact verifies that path is an existing regular file carrying
// the artifact extension.
func CheckArtifact(path, ext string) error {
	if !HasExtension(path, ext) {
		return fmt.Errorf("%w: %s does not end in .%s", kerrors.ErrNotArtifact, filepath.Base(path), ext)
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", kerrors.ErrFileNotFound, path)
	}
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", kerrors.ErrNotArtifact, path)
	}
	return nil
}

// CheckSource verifies that path is an existing regular file.
func CheckSource(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", kerrors.ErrFileNotFound, path)
	}
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", kerrors.ErrFileNotFound, path)
	}
	return nil
}

// LooksArmored reports whether the file at path starts with the age armor
// header.
func LooksArmored(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}
	return strings.TrimSpace(line) == armor.Header, nil
}

// TempSibling returns an unused path next to path, hidden from listings.
// Writing there and renaming keeps path intact until the new content is
// complete.
func TempSibling(path string) string {
	return filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".tmp-"+uuid.NewString())
}

// Replace atomically moves tmp over dst with mode 0600.
func Replace(tmp, dst string) error {
	if err := os.Chmod(tmp, 0600); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		return fmt.Errorf("failed to replace %s: %w", dst, err)
	}
	return nil
}

// WriteFileAtomic writes data to a temporary sibling of path and renames
// it into place.
func WriteFileAtomic(path string, data []byte) error {
	tmp := TempSibling(path)

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmp, err)
	}
	_, err = f.Write(data)
	if syncErr := f.Sync(); err == nil {
		err = syncErr
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := Replace(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Leftovers returns temporary siblings in dir last modified before cutoff.
// They are left by an interrupted write and may hold plaintext when the
// write was a decrypt to a file. Younger ones may belong to a write still
// in progress.
func Leftovers(dir string, cutoff time.Time) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), ".*.tmp-*", doublestar.WithFilesOnly())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	paths := make([]string, 0, len(matches))
	for _, match := range matches {
		path := filepath.Join(dir, match)
		info, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if info.ModTime().Before(cutoff) {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths, nil
}
