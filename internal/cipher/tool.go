package cipher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"time"

	kerrors "github.com/PolarWolf314/agevault/internal/errors"
)

// waitDelay bounds how long Run waits for output after the child is killed.
const waitDelay = 2 * time.Second

// Tool runs an age-compatible binary.
type Tool struct {
	// Path is the binary, a name on PATH or a path. Empty means "age".
	Path string

	// Stdin, Stdout and Stderr are connected to the child. Nil means the
	// process's own streams. Stderr is also captured for Classify.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewTool returns a Tool for the given binary, attached to the terminal.
func NewTool(path string) *Tool {
	return &Tool{Path: path}
}

// Lookup checks that the binary can be found.
func (t *Tool) Lookup() (string, error) {
	resolved, err := exec.LookPath(t.path())
	if err != nil {
		return "", fmt.Errorf("%w: %s", kerrors.ErrToolNotFound, t.path())
	}
	return resolved, nil
}

// Encrypt runs `age --passphrase --armor --output dst src`.
func (t *Tool) Encrypt(ctx context.Context, src, dst string) error {
	return t.run(ctx, OpEncrypt, "--passphrase", "--armor", "--output", dst, src)
}

// Decrypt runs `age --decrypt --output dst src`.
func (t *Tool) Decrypt(ctx context.Context, src, dst string) error {
	return t.run(ctx, OpDecrypt, "--decrypt", "--output", dst, src)
}

func (t *Tool) run(ctx context.Context, op Op, args ...string) error {
	if err := ctx.Err(); err != nil {
		return interrupted(ctx)
	}

	var diagnostic bytes.Buffer

	cmd := exec.CommandContext(ctx, t.path(), args...)
	cmd.Stdin = t.stdin()
	cmd.Stdout = t.stdout()
	cmd.Stderr = io.MultiWriter(t.stderr(), &diagnostic)
	// Fixed locale so Classify sees the phrases it knows.
	cmd.Env = append(os.Environ(), "LC_ALL=C", "LANGUAGE=C")
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return interrupted(ctx)
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return fmt.Errorf("%w: %s: %v", kerrors.ErrToolNotFound, t.path(), err)
		}
		return fmt.Errorf("%w: %v", op.failure(), err)
	}

	return Classify(op, diagnostic.String(), err)
}

func (t *Tool) path() string {
	if t.Path == "" {
		return "age"
	}
	return t.Path
}

func (t *Tool) stdin() io.Reader {
	if t.Stdin != nil {
		return t.Stdin
	}
	return os.Stdin
}

func (t *Tool) stdout() io.Writer {
	if t.Stdout != nil {
		return t.Stdout
	}
	return os.Stdout
}

func (t *Tool) stderr() io.Writer {
	if t.Stderr != nil {
		return t.Stderr
	}
	return os.Stderr
}
