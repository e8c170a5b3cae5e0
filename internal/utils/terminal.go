package utils

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// IsTerminal returns true if f is connected to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// ReadSecret prints prompt to out and reads a line from the terminal f
// without echoing it. If ctx is cancelled while waiting, the terminal state
// is restored and ctx.Err() is returned.
func ReadSecret(ctx context.Context, f *os.File, out io.Writer, prompt string) ([]byte, error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("cannot read passphrase: %s is not a terminal", f.Name())
	}

	state, err := term.GetState(fd)
	if err != nil {
		return nil, fmt.Errorf("failed to read terminal state: %w", err)
	}

	type result struct {
		secret []byte
		err    error
	}
	done := make(chan result, 1)

	fmt.Fprint(out, prompt)
	go func() {
		secret, err := term.ReadPassword(fd)
		done <- result{secret, err}
	}()

	select {
	case <-ctx.Done():
		_ = term.Restore(fd, state)
		fmt.Fprintln(out)
		return nil, ctx.Err()
	case r := <-done:
		fmt.Fprintln(out) // newline after hidden input
		if r.err != nil {
			return nil, fmt.Errorf("failed to read passphrase: %w", r.err)
		}
		return r.secret, nil
	}
}
