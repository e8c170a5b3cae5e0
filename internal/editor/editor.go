// Package editor launches the user's text editor on a file and waits for it
// to exit.
package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	kerrors "github.com/PolarWolf314/agevault/internal/errors"
)

//go:generate mockgen -source=editor.go -destination=../mock/editor_mock.go -package=mock

// Editor opens a file for interactive editing.
type Editor interface {
	Edit(ctx context.Context, path string) error
}

// Command runs an editor binary with the file path as its last argument.
type Command struct {
	// Argv is the editor and its leading arguments, e.g. ["code", "--wait"].
	Argv []string

	// Stdin, Stdout and Stderr are connected to the editor. Nil means the
	// process's own streams.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New splits command on whitespace. "code --wait" becomes ["code", "--wait"].
func New(command string) *Command {
	return &Command{Argv: strings.Fields(command)}
}

// Edit blocks until the editor exits. A non-zero exit is ErrEditorFailed.
func (c *Command) Edit(ctx context.Context, path string) error {
	if len(c.Argv) == 0 {
		return fmt.Errorf("%w: no editor configured", kerrors.ErrEditorFailed)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", kerrors.ErrInterrupted, context.Cause(ctx))
	}

	args := append(append([]string{}, c.Argv[1:]...), path)
	cmd := exec.CommandContext(ctx, c.Argv[0], args...)
	cmd.Stdin = pick[io.Reader](c.Stdin, os.Stdin)
	cmd.Stdout = pick[io.Writer](c.Stdout, os.Stdout)
	cmd.Stderr = pick[io.Writer](c.Stderr, os.Stderr)

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %w", kerrors.ErrInterrupted, context.Cause(ctx))
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Errorf("%w: %s exited with status %d", kerrors.ErrEditorFailed, c.Argv[0], exitErr.ExitCode())
	}
	return fmt.Errorf("%w: %v", kerrors.ErrEditorFailed, err)
}

// String returns the command line as configured.
func (c *Command) String() string {
	return strings.Join(c.Argv, " ")
}

func pick[T any](v, fallback T) T {
	if any(v) == nil {
		return fallback
	}
	return v
}
