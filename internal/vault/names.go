package vault

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	kerrors "github.com/PolarWolf314/agevault/internal/errors"
)

// MaxNameLength bounds artifact names.
const MaxNameLength = 128

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateName checks that name only uses letters, digits, '_' and '-'.
func ValidateName(name string) error {
	err := validation.Validate(name,
		validation.Required.Error("name is required"),
		validation.Length(1, MaxNameLength).Error(fmt.Sprintf("name must be at most %d characters", MaxNameLength)),
		validation.Match(namePattern).Error("only letters, digits, '_' and '-' are allowed"),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", kerrors.ErrInvalidName, err)
	}
	return nil
}

// DefaultName suggests a name based on now, down to the second.
func DefaultName(now time.Time) string {
	return "vault-" + now.Format("20060102-150405")
}

// ArtifactPath returns the path of the artifact called name in dir.
func ArtifactPath(dir, name, ext string) string {
	return filepath.Join(dir, name+"."+ext)
}

// HasExtension reports whether path carries the artifact extension.
func HasExtension(path, ext string) bool {
	return strings.HasSuffix(filepath.Base(path), "."+ext) && len(filepath.Base(path)) > len(ext)+1
}

// ResolveArtifact turns user input into an artifact path. A bare name
// ("notes") or a file name ("notes.age") is looked up in dir; anything with
// a directory component is taken as a path.
func ResolveArtifact(dir, input, ext string) string {
	if strings.ContainsRune(input, filepath.Separator) || strings.ContainsRune(input, '/') || filepath.IsAbs(input) {
		return input
	}
	if HasExtension(input, ext) {
		return filepath.Join(dir, input)
	}
	return ArtifactPath(dir, input, ext)
}
