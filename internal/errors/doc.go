// Package errors provides typed error values for agevault.
//
// Sentinel errors let the session loop decide what to do with a failure
// using errors.Is() instead of inspecting message text. Only the cipher
// package looks at the external tool's diagnostics; everything above it
// works with these values.
//
// # Error Categories
//
// Errors are grouped by how the session reacts to them:
//
//   - Validation errors: the user is asked again (ErrInvalidName, ErrEmptyInput)
//   - Recoverable errors: the operation is retried (ErrWrongPassphrase)
//   - Operation errors: the operation ends, the session continues
//     (ErrMaxAttempts, ErrEncryptFailed, ErrDecryptFailed, ErrEditorFailed)
//   - Fatal errors: the session ends with exit code 1
//     (ErrToolNotFound, ErrDirNotWritable, ErrInterrupted)
//
// # Usage
//
// Wrap errors with context so the reason survives:
//
//	return fmt.Errorf("%w: %s", errors.ErrDecryptFailed, reason)
//
// Handle them in the CLI layer:
//
//	if errors.Is(err, kerrors.ErrMaxAttempts) {
//	    // Report and return to the menu
//	}
package errors
