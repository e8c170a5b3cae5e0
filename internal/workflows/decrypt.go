package workflows

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/PolarWolf314/agevault/internal/journal"
	"github.com/PolarWolf314/agevault/internal/scratch"
	"github.com/PolarWolf314/agevault/internal/vault"
)

// DecryptOptions configures the decrypt workflow.
type DecryptOptions struct {
	// Source is the artifact to decrypt.
	Source string

	// Dest is the plaintext file to write. Empty means Out. An existing
	// file is replaced; the caller is expected to have confirmed that.
	Dest string

	// Out receives the plaintext when Dest is empty. Nil means os.Stdout.
	Out io.Writer
}

// DecryptResult contains the outcome of a decrypt operation.
type DecryptResult struct {
	// Dest is the file written, empty when the plaintext was printed.
	Dest string

	// Size is the plaintext length in bytes.
	Size int

	// Attempts is the number of passphrase attempts it took.
	Attempts int
}

// Decrypt decrypts opts.Source. The plaintext goes through a scratch buffer
// and only reaches Dest or Out once decryption has succeeded, so a failed
// decrypt leaves no output behind.
//
// Returns ErrFileNotFound or ErrNotArtifact if the source is not an artifact.
// Returns ErrMaxAttempts or ErrDecryptFailed if decryption fails.
func Decrypt(ctx context.Context, env *Env, opts DecryptOptions) (_ *DecryptResult, err error) {
	attempts := 0
	defer func() { env.record(OpDecrypt, opts.Source, attempts, journal.OutcomeOK, err) }()

	if err := vault.CheckArtifact(opts.Source, env.extension()); err != nil {
		return nil, err
	}
	if armored, err := vault.LooksArmored(opts.Source); err == nil && !armored {
		env.Logger.Debugf("%s has no armor header, passing it to the backend anyway", opts.Source)
	}

	dir, err := scratch.NewDir(env.ScratchRoot)
	if err != nil {
		return nil, err
	}
	defer dir.Close()

	buf := dir.Buffer("decrypt")
	defer buf.Close()

	attempts, err = env.decryptInto(ctx, opts.Source, buf)
	if err != nil {
		return nil, err
	}

	plaintext, err := buf.Bytes()
	if err != nil {
		return nil, err
	}
	defer clear(plaintext)

	result := &DecryptResult{Dest: opts.Dest, Size: len(plaintext), Attempts: attempts}

	if opts.Dest != "" {
		if err := vault.WriteFileAtomic(opts.Dest, plaintext); err != nil {
			return nil, err
		}
		return result, nil
	}

	if err := writePlaintext(opts.Out, plaintext); err != nil {
		return nil, err
	}
	return result, nil
}

// writePlaintext prints plaintext so the next prompt starts on its own line.
func writePlaintext(out io.Writer, plaintext []byte) error {
	if out == nil {
		out = os.Stdout
	}
	if _, err := out.Write(plaintext); err != nil {
		return fmt.Errorf("failed to write plaintext: %w", err)
	}
	if len(plaintext) > 0 && plaintext[len(plaintext)-1] != '\n' {
		if _, err := io.WriteString(out, "\n"); err != nil {
			return fmt.Errorf("failed to write plaintext: %w", err)
		}
	}
	return nil
}
