package cipher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	kerrors "github.com/PolarWolf314/agevault/internal/errors"
	"github.com/PolarWolf314/agevault/internal/utils"
)

// PassphraseReader supplies passphrases to the Native backend. When
// confirm is set the passphrase is asked twice and must match.
//
// A passphrase the user got wrong (empty, or not confirmed) is reported as
// ErrWrongPassphrase so the caller can ask again.
type PassphraseReader interface {
	ReadPassphrase(ctx context.Context, confirm bool) (string, error)
}

// TerminalPassphrase reads passphrases from the controlling terminal,
// without echo, even when stdin is redirected.
type TerminalPassphrase struct {
	// Out receives the prompts. Nil means os.Stderr.
	Out io.Writer
}

// ReadPassphrase implements PassphraseReader.
func (p TerminalPassphrase) ReadPassphrase(ctx context.Context, confirm bool) (string, error) {
	tty, err := openTTY()
	if err != nil {
		return "", err
	}
	defer tty.Close()

	out := p.Out
	if out == nil {
		out = os.Stderr
	}

	passphrase, err := utils.ReadSecret(ctx, tty, out, "Enter passphrase: ")
	if err != nil {
		return "", err
	}
	if len(passphrase) == 0 {
		return "", fmt.Errorf("%w: passphrase cannot be empty", kerrors.ErrWrongPassphrase)
	}
	if !confirm {
		return string(passphrase), nil
	}

	again, err := utils.ReadSecret(ctx, tty, out, "Confirm passphrase: ")
	if err != nil {
		return "", err
	}
	if !bytes.Equal(passphrase, again) {
		return "", fmt.Errorf("%w: passphrases do not match", kerrors.ErrWrongPassphrase)
	}
	return string(passphrase), nil
}

func openTTY() (*os.File, error) {
	ttyPath := "/dev/tty"
	if runtime.GOOS == "windows" {
		ttyPath = "CON"
	}

	tty, err := os.Open(ttyPath)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s for passphrase input: %w", ttyPath, err)
	}
	return tty, nil
}
