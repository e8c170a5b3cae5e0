package workflows

import (
	"context"
	"fmt"
	"time"

	"github.com/PolarWolf314/agevault/internal/journal"
	"github.com/PolarWolf314/agevault/internal/scratch"
	"github.com/PolarWolf314/agevault/internal/vault"
)

// DefaultScratchAge is how old a temporary file or scratch directory must
// be before it is considered abandoned. Younger ones may belong to a
// running session.
const DefaultScratchAge = time.Hour

// OpClean is the journal name of the clean workflow.
const OpClean = "clean"

// CleanOptions configures the clean workflow.
type CleanOptions struct {
	// DryRun previews what would be removed without making changes.
	DryRun bool

	// ScratchAge overrides DefaultScratchAge.
	ScratchAge time.Duration

	// Now is the reference time. Zero means time.Now().
	Now time.Time
}

// CleanResult contains the outcome of a clean operation.
type CleanResult struct {
	// TempFiles are temporary siblings found in the vault directory.
	TempFiles []string

	// ScratchDirs are abandoned scratch directories.
	ScratchDirs []string

	// RemovedCount is the number of entries removed (0 if dry-run).
	RemovedCount int

	// DryRun indicates whether this was a dry-run.
	DryRun bool
}

// Clean wipes what an interrupted session may have left behind: temporary
// siblings of artifacts in the vault directory and scratch directories
// under the scratch root. Artifacts themselves are never touched.
//
// Leftovers can hold plaintext, so they are overwritten before removal.
func Clean(ctx context.Context, env *Env, opts CleanOptions) (_ *CleanResult, err error) {
	result := &CleanResult{DryRun: opts.DryRun}
	defer func() {
		if !opts.DryRun {
			env.record(OpClean, "", 0, journal.OutcomeOK, err)
		}
	}()

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	age := opts.ScratchAge
	if age <= 0 {
		age = DefaultScratchAge
	}

	cutoff := now.Add(-age)
	result.TempFiles, err = vault.Leftovers(env.Dir, cutoff)
	if err != nil {
		return nil, err
	}
	result.ScratchDirs, err = scratch.Stale(env.ScratchRoot, cutoff)
	if err != nil {
		return nil, err
	}

	if opts.DryRun {
		return result, nil
	}

	for _, path := range result.TempFiles {
		if err := scratch.Wipe(path); err != nil {
			return nil, fmt.Errorf("removing %s: %w", path, err)
		}
		result.RemovedCount++
	}
	for _, path := range result.ScratchDirs {
		if err := scratch.OpenDir(path).Close(); err != nil {
			return nil, fmt.Errorf("removing %s: %w", path, err)
		}
		result.RemovedCount++
	}

	env.Logger.Debugf("Removed %d leftovers", result.RemovedCount)
	return result, nil
}
