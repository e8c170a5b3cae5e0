package scratch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// Stale returns scratch directories under root last modified before
// cutoff whose owning process is gone. They are left behind when a session
// is killed without a chance to clean up. Directories of running sessions
// are skipped whatever their age, so a long edit is never swept away.
// An empty root means the system temp directory.
func Stale(root string, cutoff time.Time) ([]string, error) {
	if root == "" {
		root = os.TempDir()
	}

	matches, err := doublestar.Glob(os.DirFS(root), dirPrefix+"*", doublestar.WithNoFollow())
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	var stale []string
	for _, match := range matches {
		path := filepath.Join(root, match)
		info, err := os.Lstat(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if !info.IsDir() || !info.ModTime().Before(cutoff) {
			continue
		}
		if pid, ok := ownerPID(match); ok && processAlive(pid) {
			continue
		}
		stale = append(stale, path)
	}
	sort.Strings(stale)

	return stale, nil
}

// OpenDir returns a Dir for an existing scratch directory, so it can be
// wiped with Close.
func OpenDir(path string) *Dir {
	return &Dir{path: path}
}
