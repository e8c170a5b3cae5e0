package workflows

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/PolarWolf314/agevault/internal/retry"
	"github.com/PolarWolf314/agevault/internal/scratch"
	"github.com/PolarWolf314/agevault/internal/vault"
)

// encryptTo encrypts src into dst with a fresh attempt budget. The
// ciphertext is produced in a temporary sibling of dst and only renamed
// over dst once complete, so dst is untouched on failure.
func (e *Env) encryptTo(ctx context.Context, src, dst string) (int, error) {
	tmp := vault.TempSibling(dst)
	defer e.removeIfExists(tmp)

	attempts, err := retry.Do(ctx, e.policy(), func(ctx context.Context, attempt int) error {
		e.Logger.Debugf("Encrypt attempt %d into %s", attempt, tmp)
		e.removeIfExists(tmp)
		return e.Cipher.Encrypt(ctx, src, tmp)
	})
	if err != nil {
		return attempts, err
	}

	if err := vault.Replace(tmp, dst); err != nil {
		return attempts, err
	}
	return attempts, nil
}

// decryptInto decrypts src into buf with a fresh attempt budget. Partial
// output from a rejected attempt is wiped before the next one.
func (e *Env) decryptInto(ctx context.Context, src string, buf *scratch.Buffer) (int, error) {
	return retry.Do(ctx, e.policy(), func(ctx context.Context, attempt int) error {
		e.Logger.Debugf("Decrypt attempt %d of %s", attempt, src)
		if err := buf.Reset(); err != nil {
			return err
		}
		return e.Cipher.Decrypt(ctx, src, buf.Path())
	})
}

func (e *Env) removeIfExists(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		e.Logger.Debugf("Failed to remove %s: %v", path, err)
	}
}
