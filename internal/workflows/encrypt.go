package workflows

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	kerrors "github.com/PolarWolf314/agevault/internal/errors"
	"github.com/PolarWolf314/agevault/internal/journal"
	"github.com/PolarWolf314/agevault/internal/scratch"
	"github.com/PolarWolf314/agevault/internal/vault"
)

// Journal operation names.
const (
	OpEncryptNew  = "encrypt-new"
	OpEncryptFile = "encrypt-file"
	OpDecrypt     = "decrypt"
	OpList        = "list"
	OpEdit        = "edit"
)

// EncryptNewOptions configures the encrypt-new-content workflow.
type EncryptNewOptions struct {
	// Dest is the artifact to create. An existing file is replaced; the
	// caller is expected to have confirmed that.
	Dest string
}

// EncryptFileOptions configures the encrypt-existing-file workflow.
type EncryptFileOptions struct {
	// Source is the plaintext file. It is left as it is.
	Source string

	// Dest is the artifact to create, as for EncryptNewOptions.
	Dest string
}

// EncryptResult contains the outcome of an encrypt operation.
type EncryptResult struct {
	// Artifact is the path of the encrypted file written.
	Artifact string

	// Attempts is the number of passphrase attempts it took.
	Attempts int
}

// EncryptNew opens the editor on an empty scratch buffer and encrypts what
// the user wrote into opts.Dest.
//
// Returns ErrNothingToEncrypt if the buffer is left empty.
// Returns ErrEditorFailed if the editor fails.
// Returns ErrMaxAttempts or ErrEncryptFailed if encryption fails.
func EncryptNew(ctx context.Context, env *Env, opts EncryptNewOptions) (_ *EncryptResult, err error) {
	attempts := 0
	defer func() { env.record(OpEncryptNew, opts.Dest, attempts, journal.OutcomeOK, err) }()

	dir, err := scratch.NewDir(env.ScratchRoot)
	if err != nil {
		return nil, err
	}
	defer dir.Close()

	buf := dir.Buffer("new")
	defer buf.Close()
	if err := buf.Create(); err != nil {
		return nil, err
	}

	env.Logger.Infof("Opening editor on %s", buf.Path())
	if err := env.Editor.Edit(ctx, buf.Path()); err != nil {
		return nil, err
	}

	content, err := buf.Bytes()
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, kerrors.ErrNothingToEncrypt
	}
	clear(content)

	attempts, err = env.encryptTo(ctx, buf.Path(), opts.Dest)
	if err != nil {
		return nil, err
	}

	return &EncryptResult{Artifact: opts.Dest, Attempts: attempts}, nil
}

// EncryptFile encrypts opts.Source into opts.Dest.
//
// Returns ErrFileNotFound if the source is missing or not a regular file.
// Returns ErrMaxAttempts or ErrEncryptFailed if encryption fails.
func EncryptFile(ctx context.Context, env *Env, opts EncryptFileOptions) (_ *EncryptResult, err error) {
	attempts := 0
	defer func() { env.record(OpEncryptFile, opts.Dest, attempts, journal.OutcomeOK, err) }()

	if err := vault.CheckSource(opts.Source); err != nil {
		return nil, err
	}
	if sameFile(opts.Source, opts.Dest) {
		return nil, fmt.Errorf("%w: source and destination are the same file", kerrors.ErrEncryptFailed)
	}

	attempts, err = env.encryptTo(ctx, opts.Source, opts.Dest)
	if err != nil {
		return nil, err
	}

	return &EncryptResult{Artifact: opts.Dest, Attempts: attempts}, nil
}

func sameFile(a, b string) bool {
	ai, errA := os.Stat(a)
	bi, errB := os.Stat(b)
	if errA == nil && errB == nil {
		return os.SameFile(ai, bi)
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
