// Package workflows implements the operations offered by the session menu.
//
// Workflows coordinate the vault directory, scratch buffers, the cipher
// backend and the editor to implement one user-facing operation each. They
// know nothing about menus or prompts for names: cmd/ resolves paths,
// asks for overwrite confirmation and formats results.
//
// # Available Workflows
//
//   - EncryptNew: opens the editor on an empty buffer and encrypts the result
//   - EncryptFile: encrypts an existing plaintext file
//   - Decrypt: decrypts an artifact to a writer or to a file
//   - List: lists the artifacts in the vault directory
//   - Edit: decrypts, edits and re-encrypts an artifact in place
//   - History: reads back the session journal
//
// # Environment
//
// Everything a workflow needs is passed in an Env value. There is no
// package state, so tests build an Env from mocks:
//
//	env := &workflows.Env{
//	    Cipher:    mock.NewMockCipher(ctrl),
//	    Editor:    mock.NewMockEditor(ctrl),
//	    Dir:       t.TempDir(),
//	    Extension: "age",
//	}
//
// # Passphrase Attempts
//
// Every encrypt or decrypt call gets a fresh attempt budget
// (Env.MaxAttempts). A rejected passphrase prints a warning and asks again;
// any other failure ends the operation at once.
//
// # Error Handling
//
// Workflows return sentinel errors from internal/errors, wrapped with
// context. Use errors.Is() to tell them apart:
//
//	_, err := workflows.Decrypt(ctx, env, opts)
//	if errors.Is(err, kerrors.ErrMaxAttempts) {
//	    // The passphrase was rejected every time.
//	}
//
// Plaintext only ever lives in scratch buffers, which are wiped before a
// workflow returns, whatever the outcome.
package workflows
