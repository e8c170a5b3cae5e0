package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	kerrors "github.com/PolarWolf314/agevault/internal/errors"
	logger "github.com/PolarWolf314/agevault/internal/logging"
	"github.com/PolarWolf314/agevault/internal/mock"
	"github.com/PolarWolf314/agevault/internal/prompt"
	"github.com/PolarWolf314/agevault/internal/workflows"
)

// sealedPrefix marks the stand-in ciphertext the fake cipher produces.
const sealedPrefix = "sealed:"

var fixedNow = time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local)

// sessionHarness is a Session wired to mocks, reading input from a string
// and writing everything it prints to out.
type sessionHarness struct {
	*Session
	out    *bytes.Buffer
	cipher *mock.MockCipher
	editor *mock.MockEditor
	dir    string
}

func newSessionHarness(t *testing.T, input string) *sessionHarness {
	t.Helper()
	ctrl := gomock.NewController(t)
	out := &bytes.Buffer{}

	c := mock.NewMockCipher(ctrl)
	ed := mock.NewMockEditor(ctrl)
	p := prompt.New(strings.NewReader(input), out)
	dir := t.TempDir()

	env := &workflows.Env{
		Cipher:      c,
		Editor:      ed,
		Confirm:     p,
		Logger:      logger.Logger{Out: &bytes.Buffer{}, Err: out},
		Dir:         dir,
		Extension:   "age",
		MaxAttempts: 3,
		ScratchRoot: t.TempDir(),
	}

	return &sessionHarness{
		Session: &Session{Env: env, Prompt: p, Out: out, Now: func() time.Time { return fixedNow }},
		out:     out,
		cipher:  c,
		editor:  ed,
		dir:     dir,
	}
}

// feed replaces the session's input, for tests whose answers depend on
// paths only known once the harness exists.
func (h *sessionHarness) feed(input string) {
	h.Prompt = prompt.New(strings.NewReader(input), h.out)
	h.Env.Confirm = h.Prompt
}

func fakeEncrypt(_ context.Context, src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, []byte(sealedPrefix+string(data)), 0600)
}

func fakeDecrypt(_ context.Context, src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(string(data), sealedPrefix) {
		return fmt.Errorf("%w: not sealed", kerrors.ErrDecryptFailed)
	}
	return os.WriteFile(dst, []byte(strings.TrimPrefix(string(data), sealedPrefix)), 0600)
}

func wrongPassphrase(context.Context, string, string) error {
	return fmt.Errorf("%w: no identity matched any of the recipients", kerrors.ErrWrongPassphrase)
}

// writeText replaces the file the editor was opened on.
func writeText(content string) func(context.Context, string) error {
	return func(_ context.Context, path string) error {
		return os.WriteFile(path, []byte(content), 0600)
	}
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// writeStale writes a file old enough to count as abandoned.
func writeStale(t *testing.T, path, content string) string {
	t.Helper()
	writeFile(t, path, content)
	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(path, past, past))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// cliEnv isolates a command-line run from the user's home, config and
// environment. It returns the vault directory the run will use.
func cliEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	for _, name := range []string{
		"AGEVAULT_DIR", "AGEVAULT_EXTENSION", "AGEVAULT_BACKEND", "AGEVAULT_TOOL",
		"AGEVAULT_EDITOR", "AGEVAULT_MAX_ATTEMPTS", "AGEVAULT_SCRYPT_WORK_FACTOR",
		"AGEVAULT_LOG_FILE", "AGEVAULT_SCRATCH_DIR",
	} {
		t.Setenv(name, "")
	}
	t.Setenv("AGEVAULT_NO_BANNER", "true")
	t.Setenv("AGEVAULT_SCRATCH_DIR", t.TempDir())

	vault := filepath.Join(home, ".agevault")
	t.Setenv("AGEVAULT_DIR", vault)
	return vault
}

// runCLI runs the root command with args and stdin, returning everything
// written to stdout and stderr. A doctor exit func set by the test is kept.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	exit := doctorExitFunc
	ResetGlobalState()
	doctorExitFunc = exit
	t.Cleanup(ResetGlobalState)

	var out bytes.Buffer
	RootCmd.SetArgs(args)
	RootCmd.SetIn(strings.NewReader(stdin))
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&out)
	t.Cleanup(func() {
		RootCmd.SetArgs(nil)
		RootCmd.SetIn(nil)
		RootCmd.SetOut(nil)
		RootCmd.SetErr(nil)
	})

	err := Execute(context.Background())
	return out.String(), err
}
