package errors

import "errors"

// Validation errors are recovered locally by prompting again.
var (
	// ErrInvalidName indicates a file name outside the allowed character set.
	ErrInvalidName = errors.New("invalid file name")

	// ErrEmptyInput indicates the user entered nothing where a value is required.
	ErrEmptyInput = errors.New("input cannot be empty")

	// ErrFileNotFound indicates a specific file could not be located.
	ErrFileNotFound = errors.New("file not found")

	// ErrNotArtifact indicates the file does not look like an encrypted vault file.
	ErrNotArtifact = errors.New("not an encrypted vault file")
)

// Passphrase errors come from the external tool rejecting what the user typed.
var (
	// ErrWrongPassphrase indicates the passphrase was rejected. It is the only
	// failure the retry loop treats as recoverable.
	ErrWrongPassphrase = errors.New("incorrect passphrase")

	// ErrMaxAttempts indicates the passphrase was rejected on every attempt.
	ErrMaxAttempts = errors.New("maximum attempts exceeded")
)

// Operation errors end the current operation but not the session.
var (
	// ErrEncryptFailed indicates encryption failed for a reason other than the passphrase.
	ErrEncryptFailed = errors.New("encryption failed")

	// ErrDecryptFailed indicates decryption failed for a reason other than the passphrase.
	ErrDecryptFailed = errors.New("decryption failed")

	// ErrEditorFailed indicates the editor could not be started or exited with an error.
	ErrEditorFailed = errors.New("editor failed")

	// ErrNothingToEncrypt indicates the new content was empty.
	ErrNothingToEncrypt = errors.New("nothing to encrypt")

	// ErrRestoreFailed indicates an encrypted file could not be put back after a failed update.
	ErrRestoreFailed = errors.New("failed to restore original file")
)

// Journal errors are reported by `agevault log`.
var (
	// ErrNoJournal indicates no journal file is configured.
	ErrNoJournal = errors.New("no journal configured")

	// ErrInvalidDateFormat indicates a date filter is not in YYYY-MM-DD format.
	ErrInvalidDateFormat = errors.New("invalid date format")
)

// Fatal errors end the session.
var (
	// ErrToolNotFound indicates the external encryption tool is not installed.
	ErrToolNotFound = errors.New("encryption tool not found")

	// ErrDirNotWritable indicates the vault directory cannot be created or written.
	ErrDirNotWritable = errors.New("vault directory is not writable")

	// ErrInterrupted indicates the user interrupted the session.
	ErrInterrupted = errors.New("interrupted")
)

// IsFatal reports whether err should end the whole session.
func IsFatal(err error) bool {
	return errors.Is(err, ErrToolNotFound) ||
		errors.Is(err, ErrDirNotWritable) ||
		errors.Is(err, ErrInterrupted)
}
