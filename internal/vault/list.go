package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// List returns the base names of the artifacts in dir, sorted. A missing
// or empty directory gives an empty list. Hidden files are skipped.
func List(dir, ext string) ([]string, error) {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	matches, err := doublestar.Glob(os.DirFS(dir), "*."+ext, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	names := make([]string, 0, len(matches))
	for _, match := range matches {
		if strings.HasPrefix(match, ".") {
			continue
		}
		names = append(names, match)
	}
	sort.Strings(names)

	return names, nil
}
