package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	kerrors "github.com/PolarWolf314/agevault/internal/errors"
)

func TestSession_Exit(t *testing.T) {
	h := newSessionHarness(t, "6\n")

	require.NoError(t, h.Run(context.Background()))

	out := h.out.String()
	for _, label := range []string{
		"[1] Encrypt new content",
		"[2] Encrypt existing file",
		"[3] Decrypt file",
		"[4] List files",
		"[5] Edit encrypted file",
		"[6] Exit",
	} {
		assert.Contains(t, out, label)
	}
	assert.Contains(t, out, "Goodbye.")
}

func TestSession_EndOfInputExitsCleanly(t *testing.T) {
	h := newSessionHarness(t, "")
	assert.NoError(t, h.Run(context.Background()))
}

func TestSession_InvalidChoiceShowsMenuAgain(t *testing.T) {
	h := newSessionHarness(t, "9\nabc\n6\n")

	require.NoError(t, h.Run(context.Background()))

	out := h.out.String()
	assert.Contains(t, out, "Invalid choice '9'")
	assert.Contains(t, out, "Invalid choice 'abc'")
	assert.Equal(t, 3, strings.Count(out, "What would you like to do?"))
}

func TestSession_Interrupted(t *testing.T) {
	h := newSessionHarness(t, "6\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.Run(ctx)
	assert.ErrorIs(t, err, kerrors.ErrInterrupted)
}

func TestSession_ListEmpty(t *testing.T) {
	h := newSessionHarness(t, "4\n6\n")

	require.NoError(t, h.Run(context.Background()))
	assert.Contains(t, h.out.String(), "No encrypted files in")
}

func TestSession_ListSorted(t *testing.T) {
	h := newSessionHarness(t, "4\n6\n")
	writeFile(t, filepath.Join(h.dir, "beta.age"), sealedPrefix+"b")
	writeFile(t, filepath.Join(h.dir, "alpha.age"), sealedPrefix+"a")
	writeFile(t, filepath.Join(h.dir, "notes.txt"), "plain")

	require.NoError(t, h.Run(context.Background()))

	out := h.out.String()
	assert.Contains(t, out, "    - alpha.age\n    - beta.age\n")
	assert.NotContains(t, out, "notes.txt")
	assert.NotContains(t, out, filepath.Join(h.dir, "alpha.age"), "base names only")
}

func TestSession_EncryptNewWithDefaultName(t *testing.T) {
	h := newSessionHarness(t, "1\n\n6\n")
	h.editor.EXPECT().Edit(gomock.Any(), gomock.Any()).DoAndReturn(writeText("hello world\n"))
	h.cipher.EXPECT().Encrypt(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(fakeEncrypt)

	require.NoError(t, h.Run(context.Background()))

	artifact := filepath.Join(h.dir, "vault-20240102-030405.age")
	assert.Equal(t, sealedPrefix+"hello world\n", readFile(t, artifact))
	assert.Contains(t, h.out.String(), "File name [vault-20240102-030405]: ")
	assert.Contains(t, h.out.String(), "✓ Encrypted to")
}

func TestSession_EncryptNewRejectsBadNames(t *testing.T) {
	h := newSessionHarness(t, "1\nbad name!\n../escape\nnotes.age\n6\n")
	h.editor.EXPECT().Edit(gomock.Any(), gomock.Any()).DoAndReturn(writeText("content"))
	h.cipher.EXPECT().Encrypt(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(fakeEncrypt)

	require.NoError(t, h.Run(context.Background()))

	assert.Equal(t, 2, strings.Count(h.out.String(), "invalid file name"))
	assert.FileExists(t, filepath.Join(h.dir, "notes.age"))
	assert.NoFileExists(t, filepath.Join(filepath.Dir(h.dir), "escape.age"))
}

func TestSession_EncryptNewOverwrite(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantFile string
		original string
	}{
		{
			name:     "declined asks for another name",
			input:    "1\nnotes\nn\nother\n6\n",
			wantFile: "other.age",
			original: sealedPrefix + "keep me",
		},
		{
			name:     "confirmed replaces the file",
			input:    "1\nnotes\ny\n6\n",
			wantFile: "notes.age",
			original: sealedPrefix + "new content",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newSessionHarness(t, tt.input)
			existing := writeFile(t, filepath.Join(h.dir, "notes.age"), sealedPrefix+"keep me")
			h.editor.EXPECT().Edit(gomock.Any(), gomock.Any()).DoAndReturn(writeText("new content"))
			h.cipher.EXPECT().Encrypt(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(fakeEncrypt)

			require.NoError(t, h.Run(context.Background()))

			assert.Contains(t, h.out.String(), "'notes.age' already exists. Overwrite? [y/N]: ")
			assert.Equal(t, tt.original, readFile(t, existing))
			assert.FileExists(t, filepath.Join(h.dir, tt.wantFile))
		})
	}
}

func TestSession_EncryptNewNothingWritten(t *testing.T) {
	h := newSessionHarness(t, "1\nnotes\n6\n")
	h.editor.EXPECT().Edit(gomock.Any(), gomock.Any()).Return(nil)

	require.NoError(t, h.Run(context.Background()))

	assert.Contains(t, h.out.String(), "Nothing to encrypt")
	assert.NoFileExists(t, filepath.Join(h.dir, "notes.age"))
	assert.Contains(t, h.out.String(), "Goodbye.", "the session goes on")
}

func TestSession_EncryptExistingFile(t *testing.T) {
	source := writeFile(t, filepath.Join(t.TempDir(), "plain.txt"), "hello world")
	h := newSessionHarness(t, fmt.Sprintf("2\n%s\n%s\nsecret\n6\n", filepath.Join(filepath.Dir(source), "missing.txt"), source))
	h.cipher.EXPECT().Encrypt(gomock.Any(), source, gomock.Any()).DoAndReturn(fakeEncrypt)

	require.NoError(t, h.Run(context.Background()))

	out := h.out.String()
	assert.Contains(t, out, "file not found")
	assert.Contains(t, out, "The original file was left in place")
	assert.Equal(t, sealedPrefix+"hello world", readFile(t, filepath.Join(h.dir, "secret.age")))
	assert.Equal(t, "hello world", readFile(t, source))
}

func TestSession_EmptyAnswerCancels(t *testing.T) {
	for _, choice := range []string{"2", "3", "5"} {
		t.Run("option "+choice, func(t *testing.T) {
			h := newSessionHarness(t, choice+"\n\n6\n")

			require.NoError(t, h.Run(context.Background()))
			assert.Contains(t, h.out.String(), "Cancelled, nothing was written")
		})
	}
}

func TestSession_DecryptToTerminal(t *testing.T) {
	h := newSessionHarness(t, "3\n1\n\n6\n")
	writeFile(t, filepath.Join(h.dir, "notes.age"), sealedPrefix+"hello world")
	h.cipher.EXPECT().Decrypt(gomock.Any(), filepath.Join(h.dir, "notes.age"), gomock.Any()).DoAndReturn(fakeDecrypt)

	require.NoError(t, h.Run(context.Background()))

	out := h.out.String()
	assert.Contains(t, out, "[1] notes.age")
	assert.Contains(t, out, "hello world\n")
	assert.Contains(t, out, "✓ Decrypted 'notes.age'")
}

func TestSession_DecryptToFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.txt")
	h := newSessionHarness(t, fmt.Sprintf("3\nmissing\nnotes\n%s\n6\n", dest))
	writeFile(t, filepath.Join(h.dir, "notes.age"), sealedPrefix+"hello world")
	h.cipher.EXPECT().Decrypt(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(fakeDecrypt)

	require.NoError(t, h.Run(context.Background()))

	assert.Contains(t, h.out.String(), "file not found")
	assert.Equal(t, "hello world", readFile(t, dest))
}

func TestSession_DecryptRefusesToOverwriteItsSource(t *testing.T) {
	h := newSessionHarness(t, "")
	artifact := writeFile(t, filepath.Join(h.dir, "notes.age"), sealedPrefix+"hello world")
	dest := filepath.Join(t.TempDir(), "out.txt")
	h.feed(fmt.Sprintf("3\nnotes\n%s\n%s\n6\n", artifact, dest))
	h.cipher.EXPECT().Decrypt(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(fakeDecrypt)

	require.NoError(t, h.Run(context.Background()))

	assert.Contains(t, h.out.String(), "Refusing to write the plaintext over the encrypted file")
	assert.Equal(t, sealedPrefix+"hello world", readFile(t, artifact))
	assert.Equal(t, "hello world", readFile(t, dest))
}

func TestSession_DecryptMaxAttempts(t *testing.T) {
	h := newSessionHarness(t, "3\nnotes\n\n6\n")
	writeFile(t, filepath.Join(h.dir, "notes.age"), sealedPrefix+"hello world")
	h.cipher.EXPECT().Decrypt(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(wrongPassphrase).Times(3)

	require.NoError(t, h.Run(context.Background()))

	out := h.out.String()
	assert.Contains(t, out, "Incorrect passphrase, attempt 1 of 3")
	assert.Contains(t, out, "Incorrect passphrase, attempt 2 of 3")
	assert.Contains(t, out, "Maximum attempts exceeded")
	assert.NotContains(t, out, "hello world")
	assert.Contains(t, out, "Goodbye.")
}

func TestSession_EditUpdated(t *testing.T) {
	h := newSessionHarness(t, "5\nnotes\ny\n6\n")
	artifact := writeFile(t, filepath.Join(h.dir, "notes.age"), sealedPrefix+"old")
	gomock.InOrder(
		h.cipher.EXPECT().Decrypt(gomock.Any(), artifact, gomock.Any()).DoAndReturn(fakeDecrypt),
		h.editor.EXPECT().Edit(gomock.Any(), gomock.Any()).DoAndReturn(writeText("new")),
		h.cipher.EXPECT().Encrypt(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(fakeEncrypt),
	)

	require.NoError(t, h.Run(context.Background()))

	assert.Contains(t, h.out.String(), "Save changes to notes.age? [Y/n]: ")
	assert.Contains(t, h.out.String(), "✓ Updated 'notes.age'")
	assert.Equal(t, sealedPrefix+"new", readFile(t, artifact))
}

func TestSession_EditUnchanged(t *testing.T) {
	h := newSessionHarness(t, "5\nnotes\n6\n")
	artifact := writeFile(t, filepath.Join(h.dir, "notes.age"), sealedPrefix+"old")
	h.cipher.EXPECT().Decrypt(gomock.Any(), artifact, gomock.Any()).DoAndReturn(fakeDecrypt)
	h.editor.EXPECT().Edit(gomock.Any(), gomock.Any()).Return(nil)

	require.NoError(t, h.Run(context.Background()))

	assert.Contains(t, h.out.String(), "No changes, 'notes.age' was left as it was")
	assert.Equal(t, sealedPrefix+"old", readFile(t, artifact))
}

func TestSession_EditDiscarded(t *testing.T) {
	h := newSessionHarness(t, "5\nnotes\nn\n6\n")
	artifact := writeFile(t, filepath.Join(h.dir, "notes.age"), sealedPrefix+"old")
	h.cipher.EXPECT().Decrypt(gomock.Any(), artifact, gomock.Any()).DoAndReturn(fakeDecrypt)
	h.editor.EXPECT().Edit(gomock.Any(), gomock.Any()).DoAndReturn(writeText("new"))

	require.NoError(t, h.Run(context.Background()))

	assert.Contains(t, h.out.String(), "Changes discarded")
	assert.Equal(t, sealedPrefix+"old", readFile(t, artifact))
}

func TestSession_FatalErrorEndsSession(t *testing.T) {
	source := writeFile(t, filepath.Join(t.TempDir(), "plain.txt"), "data")
	h := newSessionHarness(t, fmt.Sprintf("2\n%s\nsecret\n6\n", source))
	h.cipher.EXPECT().Encrypt(gomock.Any(), gomock.Any(), gomock.Any()).Return(fmt.Errorf("%w: age", kerrors.ErrToolNotFound))

	err := h.Run(context.Background())

	require.ErrorIs(t, err, kerrors.ErrToolNotFound)
	assert.NotContains(t, h.out.String(), "Goodbye.")
	entries, readErr := os.ReadDir(h.dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}
