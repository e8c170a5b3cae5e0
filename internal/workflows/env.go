package workflows

import (
	"context"
	"errors"

	"github.com/PolarWolf314/agevault/internal/cipher"
	"github.com/PolarWolf314/agevault/internal/configs"
	"github.com/PolarWolf314/agevault/internal/editor"
	kerrors "github.com/PolarWolf314/agevault/internal/errors"
	"github.com/PolarWolf314/agevault/internal/journal"
	logger "github.com/PolarWolf314/agevault/internal/logging"
	"github.com/PolarWolf314/agevault/internal/retry"
)

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, question string, def bool) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, question string, def bool) (bool, error)

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(ctx context.Context, question string, def bool) (bool, error) {
	return f(ctx, question, def)
}

// Env holds the collaborators of a session.
type Env struct {
	Cipher  cipher.Cipher
	Editor  editor.Editor
	Confirm Confirmer
	Logger  logger.Logger
	Journal *journal.Journal

	// Dir is the vault directory.
	Dir string

	// Extension is the artifact extension, without the dot.
	Extension string

	// MaxAttempts bounds passphrase attempts per encrypt or decrypt call.
	MaxAttempts int

	// ScratchRoot is where scratch directories are created. Empty means
	// the system temp directory.
	ScratchRoot string
}

// NewEnv fills an Env from settings. Collaborators are left to the caller.
func NewEnv(settings *configs.Settings) *Env {
	return &Env{
		Dir:         settings.VaultDir,
		Extension:   settings.Extension,
		MaxAttempts: settings.MaxAttempts,
		ScratchRoot: settings.ScratchDir,
	}
}

func (e *Env) policy() retry.Policy {
	return retry.Policy{
		MaxAttempts: e.MaxAttempts,
		OnRetry: func(attempt, maxAttempts int, err error) {
			e.Logger.Warnf("Incorrect passphrase, attempt %d of %d", attempt, maxAttempts)
		},
	}
}

func (e *Env) extension() string {
	if e.Extension == "" {
		return configs.DefaultExtension
	}
	return e.Extension
}

func (e *Env) confirm(ctx context.Context, question string, def bool) (bool, error) {
	if e.Confirm == nil {
		return def, nil
	}
	return e.Confirm.Confirm(ctx, question, def)
}

// record journals the outcome of op on file.
func (e *Env) record(op, file string, attempts int, outcome string, err error) {
	entry := journal.Entry{
		Operation: op,
		File:      file,
		Attempts:  attempts,
		Outcome:   outcome,
	}
	if err != nil {
		entry.Outcome = journal.OutcomeFailed
		entry.Error = errorKind(err)
	}
	e.Journal.Record(entry)
}

// journalErrors are the failures the journal names. Order matters: the
// first match wins.
var journalErrors = []error{
	kerrors.ErrInterrupted,
	kerrors.ErrMaxAttempts,
	kerrors.ErrWrongPassphrase,
	kerrors.ErrRestoreFailed,
	kerrors.ErrEncryptFailed,
	kerrors.ErrDecryptFailed,
	kerrors.ErrEditorFailed,
	kerrors.ErrNothingToEncrypt,
	kerrors.ErrToolNotFound,
	kerrors.ErrFileNotFound,
	kerrors.ErrNotArtifact,
}

// errorKind names err without the paths its message may carry.
func errorKind(err error) string {
	for _, known := range journalErrors {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return "error"
}
