package workflows

import (
	"context"

	"github.com/PolarWolf314/agevault/internal/journal"
	"github.com/PolarWolf314/agevault/internal/vault"
)

// ListResult contains the artifacts found in the vault directory.
type ListResult struct {
	// Dir is the directory that was listed.
	Dir string

	// Names are the artifact base names, sorted.
	Names []string
}

// List lists the artifacts in the vault directory. A missing or empty
// directory gives an empty result, not an error.
func List(ctx context.Context, env *Env) (_ *ListResult, err error) {
	defer func() { env.record(OpList, "", 0, journal.OutcomeOK, err) }()

	names, err := vault.List(env.Dir, env.extension())
	if err != nil {
		return nil, err
	}

	env.Logger.Debugf("Found %d artifacts in %s", len(names), env.Dir)
	return &ListResult{Dir: env.Dir, Names: names}, nil
}
