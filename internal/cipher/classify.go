package cipher

import (
	"fmt"
	"strings"

	kerrors "github.com/PolarWolf314/agevault/internal/errors"
	"github.com/PolarWolf314/agevault/internal/utils"
)

// wrongPassphrasePhrases are lowercase fragments of the diagnostics the
// tool prints when it rejects a passphrase.
var wrongPassphrasePhrases = []string{
	"incorrect passphrase",
	"wrong passphrase",
	"bad passphrase",
	"no identity matched",
	"passphrases didn't match",
	"passphrases do not match",
	"bad session key",
}

// Classify turns the diagnostic output of a failed tool run into an error.
// runErr is used as the reason when the tool printed nothing.
func Classify(op Op, diagnostic string, runErr error) error {
	reason := utils.LastLine(diagnostic)
	if reason == "" && runErr != nil {
		reason = runErr.Error()
	}
	if reason == "" {
		reason = "unknown error"
	}

	lower := strings.ToLower(diagnostic)
	for _, phrase := range wrongPassphrasePhrases {
		if strings.Contains(lower, phrase) {
			return fmt.Errorf("%w: %s", kerrors.ErrWrongPassphrase, reason)
		}
	}

	return fmt.Errorf("%w: %s", op.failure(), reason)
}
