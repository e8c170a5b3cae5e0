// Package cipher is the boundary to the encryption primitive.
//
// agevault never encrypts anything itself at this layer's callers: they
// hand a source path and a destination path to a Cipher and get back
// either success or a classified error.
//
// # Backends
//
//   - Tool runs the external age binary in passphrase mode. The binary asks
//     for the passphrase on the terminal itself.
//   - Native uses the filippo.io/age library with an scrypt recipient and
//     asks for the passphrase through a PassphraseReader.
//
// Both write ASCII-armored envelopes and both return errors wrapping the
// sentinels in internal/errors:
//
//   - ErrWrongPassphrase when the passphrase was rejected (retryable)
//   - ErrToolNotFound when the binary is missing
//   - ErrEncryptFailed / ErrDecryptFailed for everything else
//   - ErrInterrupted when the context was cancelled
//
// # Classification
//
// The external tool only reports failures as text on stderr. Classify is
// the single place that turns that text into an error kind. It matches a
// fixed list of phrases, and Tool runs the binary with LC_ALL=C so the
// phrases do not change with the user's locale. The Native backend does
// not need it: age's own error types say whether the passphrase was wrong.
package cipher
