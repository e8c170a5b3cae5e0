package workflows

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	kerrors "github.com/PolarWolf314/agevault/internal/errors"
	"github.com/PolarWolf314/agevault/internal/journal"
	"github.com/PolarWolf314/agevault/internal/scratch"
	"github.com/PolarWolf314/agevault/internal/vault"
)

// EditOutcome describes how an edit ended.
type EditOutcome int

const (
	// EditUnchanged means the plaintext was not modified.
	EditUnchanged EditOutcome = iota
	// EditDiscarded means changes were made but the user declined to save them.
	EditDiscarded
	// EditUpdated means the artifact was re-encrypted with the new content.
	EditUpdated
)

func (o EditOutcome) String() string {
	switch o {
	case EditUnchanged:
		return journal.OutcomeUnchanged
	case EditDiscarded:
		return journal.OutcomeAborted
	case EditUpdated:
		return journal.OutcomeOK
	default:
		return fmt.Sprintf("EditOutcome(%d)", int(o))
	}
}

// EditOptions configures the edit workflow.
type EditOptions struct {
	// Target is the artifact to edit.
	Target string
}

// EditResult contains the outcome of an edit.
type EditResult struct {
	Outcome EditOutcome

	// DecryptAttempts and EncryptAttempts count passphrase attempts for
	// each half of the edit. EncryptAttempts is zero unless re-encryption
	// was tried.
	DecryptAttempts int
	EncryptAttempts int
}

// Edit decrypts opts.Target into a scratch buffer, opens the editor on it
// and, if the content changed and the user confirms, re-encrypts it over
// the target.
//
// The target is never overwritten before the new ciphertext is complete.
// If re-encryption fails the target is checked against a snapshot taken
// before the edit and rewritten from it if it differs.
//
// Returns ErrFileNotFound or ErrNotArtifact if the target is not an artifact.
// Returns ErrMaxAttempts or ErrDecryptFailed if decryption fails.
// Returns ErrEditorFailed if the editor fails.
// Returns ErrMaxAttempts or ErrEncryptFailed if re-encryption fails, joined
// with ErrRestoreFailed if the snapshot could not be written back.
func Edit(ctx context.Context, env *Env, opts EditOptions) (_ *EditResult, err error) {
	result := &EditResult{}
	defer func() {
		attempts := result.DecryptAttempts + result.EncryptAttempts
		env.record(OpEdit, opts.Target, attempts, result.Outcome.String(), err)
	}()

	target := opts.Target
	if err := vault.CheckArtifact(target, env.extension()); err != nil {
		return nil, err
	}

	dir, err := scratch.NewDir(env.ScratchRoot)
	if err != nil {
		return nil, err
	}
	defer dir.Close()

	buf := dir.Buffer("edit")
	defer buf.Close()

	result.DecryptAttempts, err = env.decryptInto(ctx, target, buf)
	if err != nil {
		return nil, err
	}

	snapshot, err := os.ReadFile(target)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot %s: %w", target, err)
	}
	snapshotSum := scratch.Sum(snapshot)

	before, err := buf.Fingerprint()
	if err != nil {
		return nil, err
	}

	env.Logger.Infof("Opening editor on %s", buf.Path())
	if err := env.Editor.Edit(ctx, buf.Path()); err != nil {
		return nil, err
	}

	after, err := buf.Fingerprint()
	if err != nil {
		return nil, err
	}
	if after == before {
		env.Logger.Debugf("Content fingerprint unchanged (%s)", after)
		result.Outcome = EditUnchanged
		return result, nil
	}

	save, err := env.confirm(ctx, fmt.Sprintf("Save changes to %s?", filepath.Base(target)), true)
	if err != nil {
		return nil, err
	}
	if !save {
		result.Outcome = EditDiscarded
		return result, nil
	}

	result.EncryptAttempts, err = env.encryptTo(ctx, buf.Path(), target)
	if err != nil {
		if restoreErr := env.restore(target, snapshot, snapshotSum); restoreErr != nil {
			return nil, errors.Join(err, restoreErr)
		}
		return nil, err
	}

	result.Outcome = EditUpdated
	return result, nil
}

// restore puts snapshot back at target unless the target still matches it.
func (e *Env) restore(target string, snapshot []byte, sum scratch.Fingerprint) error {
	current, err := scratch.FileFingerprint(target)
	if err == nil && current == sum {
		return nil
	}

	e.Logger.Warnf("%s changed during a failed update, restoring it", filepath.Base(target))
	if err := vault.WriteFileAtomic(target, snapshot); err != nil {
		return fmt.Errorf("%w: %s: %w", kerrors.ErrRestoreFailed, target, err)
	}
	return nil
}
