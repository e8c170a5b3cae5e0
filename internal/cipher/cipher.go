package cipher

import (
	"context"
	"fmt"

	kerrors "github.com/PolarWolf314/agevault/internal/errors"
)

//go:generate mockgen -source=cipher.go -destination=../mock/cipher_mock.go -package=mock

// Cipher encrypts and decrypts files. dst must not exist; it is only
// complete once the call returns nil.
type Cipher interface {
	Encrypt(ctx context.Context, src, dst string) error
	Decrypt(ctx context.Context, src, dst string) error
}

// Op names the direction of an operation.
type Op string

const (
	OpEncrypt Op = "encrypt"
	OpDecrypt Op = "decrypt"
)

// failure returns the sentinel for a non-passphrase failure of op.
func (op Op) failure() error {
	if op == OpEncrypt {
		return kerrors.ErrEncryptFailed
	}
	return kerrors.ErrDecryptFailed
}

func interrupted(ctx context.Context) error {
	return fmt.Errorf("%w: %w", kerrors.ErrInterrupted, context.Cause(ctx))
}
