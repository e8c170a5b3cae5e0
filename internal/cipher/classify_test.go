package cipher

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	kerrors "github.com/PolarWolf314/agevault/internal/errors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		op         Op
		diagnostic string
		want       error
		reason     string
	}{
		{"AgeIncorrectPassphrase", OpDecrypt, "age: error: incorrect passphrase\n", kerrors.ErrWrongPassphrase, "age: error: incorrect passphrase"},
		{"AgeNoIdentity", OpDecrypt, "age: error: no identity matched any of the recipients\n", kerrors.ErrWrongPassphrase, ""},
		{"AgeConfirmMismatch", OpEncrypt, "age: error: passphrases didn't match\n", kerrors.ErrWrongPassphrase, ""},
		{"MixedCase", OpDecrypt, "Error: Incorrect Passphrase", kerrors.ErrWrongPassphrase, ""},
		{"GpgBadSessionKey", OpDecrypt, "gpg: decryption failed: Bad session key\n", kerrors.ErrWrongPassphrase, ""},
		{"MalformedHeader", OpDecrypt, "age: error: failed to read header: parsing age header: unexpected intro\n", kerrors.ErrDecryptFailed, "age: error: failed to read header: parsing age header: unexpected intro"},
		{"EncryptIOError", OpEncrypt, "age: error: failed to open output file\n", kerrors.ErrEncryptFailed, ""},
		{"ReasonIsLastLine", OpDecrypt, "age: warning: something\nage: error: read failed\n\n", kerrors.ErrDecryptFailed, "age: error: read failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify(tt.op, tt.diagnostic, errors.New("exit status 1"))
			assert.ErrorIs(t, err, tt.want)
			if tt.reason != "" {
				assert.Contains(t, err.Error(), tt.reason)
			}
		})
	}
}

func TestClassify_EmptyDiagnostic(t *testing.T) {
	err := Classify(OpDecrypt, "", errors.New("exit status 2"))
	assert.ErrorIs(t, err, kerrors.ErrDecryptFailed)
	assert.Contains(t, err.Error(), "exit status 2")

	err = Classify(OpEncrypt, "  \n", nil)
	assert.ErrorIs(t, err, kerrors.ErrEncryptFailed)
	assert.Contains(t, err.Error(), "unknown error")
}

func TestClassify_NeverBoth(t *testing.T) {
	err := Classify(OpDecrypt, "age: error: incorrect passphrase", nil)
	assert.NotErrorIs(t, err, kerrors.ErrDecryptFailed)

	err = Classify(OpDecrypt, "age: error: truncated file", nil)
	assert.NotErrorIs(t, err, kerrors.ErrWrongPassphrase)
}
