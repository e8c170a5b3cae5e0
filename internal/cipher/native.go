package cipher

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"filippo.io/age"
	"filippo.io/age/armor"

	kerrors "github.com/PolarWolf314/agevault/internal/errors"
)

// Native encrypts with the age library and an scrypt passphrase recipient,
// producing the same armored files as `age --passphrase --armor`.
type Native struct {
	// Passphrase supplies the passphrase for each call.
	Passphrase PassphraseReader

	// WorkFactor is the log2 scrypt cost for new files. Zero keeps age's default.
	WorkFactor int

	// Busy, when set, is called while key derivation runs and the returned
	// func when it is over. The session hangs a spinner on it.
	Busy func(message string) (done func())
}

// Encrypt encrypts src into a new file at dst.
func (n *Native) Encrypt(ctx context.Context, src, dst string) error {
	passphrase, err := n.Passphrase.ReadPassphrase(ctx, true)
	if err != nil {
		return n.passphraseError(ctx, err)
	}

	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return fmt.Errorf("%w: %v", kerrors.ErrWrongPassphrase, err)
	}
	if n.WorkFactor > 0 {
		recipient.SetWorkFactor(n.WorkFactor)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: %v", kerrors.ErrEncryptFailed, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("%w: %v", kerrors.ErrEncryptFailed, err)
	}

	done := n.busy("Encrypting...")
	err = encryptArmored(out, in, recipient)
	done()

	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("%w: %v", kerrors.ErrEncryptFailed, err)
	}
	return nil
}

func encryptArmored(dst io.Writer, src io.Reader, recipient age.Recipient) error {
	armorWriter := armor.NewWriter(dst)

	writer, err := age.Encrypt(armorWriter, recipient)
	if err != nil {
		return fmt.Errorf("creating encryptor: %w", err)
	}
	if _, err := io.Copy(writer, src); err != nil {
		return fmt.Errorf("encrypting: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalizing encryption: %w", err)
	}
	if err := armorWriter.Close(); err != nil {
		return fmt.Errorf("finalizing armor: %w", err)
	}
	return nil
}

// Decrypt decrypts src, armored or binary, into a new file at dst.
func (n *Native) Decrypt(ctx context.Context, src, dst string) error {
	passphrase, err := n.Passphrase.ReadPassphrase(ctx, false)
	if err != nil {
		return n.passphraseError(ctx, err)
	}

	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return fmt.Errorf("%w: %v", kerrors.ErrWrongPassphrase, err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: %v", kerrors.ErrDecryptFailed, err)
	}
	defer in.Close()

	done := n.busy("Decrypting...")
	plaintext, err := age.Decrypt(envelopeReader(in), identity)
	done()
	if err != nil {
		return classifyAgeError(err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("%w: %v", kerrors.ErrDecryptFailed, err)
	}

	_, err = io.Copy(out, plaintext)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("%w: %v", kerrors.ErrDecryptFailed, err)
	}
	return nil
}

// envelopeReader strips the armor when the file starts with it.
func envelopeReader(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	head, _ := br.Peek(len(armor.Header))
	if string(head) == armor.Header {
		return armor.NewReader(br)
	}
	return br
}

func classifyAgeError(err error) error {
	var noMatch *age.NoIdentityMatchError
	if errors.As(err, &noMatch) || errors.Is(err, age.ErrIncorrectIdentity) {
		return fmt.Errorf("%w: %v", kerrors.ErrWrongPassphrase, err)
	}
	return fmt.Errorf("%w: %v", kerrors.ErrDecryptFailed, err)
}

func (n *Native) passphraseError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return interrupted(ctx)
	}
	return err
}

func (n *Native) busy(message string) func() {
	if n.Busy == nil {
		return func() {}
	}
	return n.Busy(message)
}
