package cipher

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kerrors "github.com/PolarWolf314/agevault/internal/errors"
)

// fakeAgeScript stands in for the age binary. It rejects the passphrase
// for the first %d runs, then copies its input to --output. It records the
// number of runs and its locale next to itself.
const fakeAgeScript = `#!/bin/sh
state="$(dirname "$0")"
count=$(cat "$state/count" 2>/dev/null || echo 0)
count=$((count + 1))
echo "$count" > "$state/count"
echo "$LC_ALL" > "$state/locale"

mode=%q
wrong=%d
if [ "$mode" = "broken" ]; then
	echo "age: error: failed to read header: parsing age header: unexpected intro" >&2
	exit 1
fi
if [ "$mode" = "slow" ]; then
	exec sleep 5
fi
if [ "$count" -le "$wrong" ]; then
	echo "age: error: incorrect passphrase" >&2
	exit 1
fi

while [ $# -gt 0 ]; do
	case "$1" in
		--output) out="$2"; shift 2 ;;
		--*) shift ;;
		*) in="$1"; shift ;;
	esac
done
cp "$in" "$out"
`

func newFakeTool(t *testing.T, mode string, wrong int) (*Tool, string, *bytes.Buffer) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tool is a shell script")
	}

	dir := t.TempDir()
	script := filepath.Join(dir, "age")
	require.NoError(t, os.WriteFile(script, []byte(fmt.Sprintf(fakeAgeScript, mode, wrong)), 0700))

	var stderr bytes.Buffer
	return &Tool{
		Path:   script,
		Stdin:  strings.NewReader(""),
		Stdout: &bytes.Buffer{},
		Stderr: &stderr,
	}, dir, &stderr
}

func runs(t *testing.T, dir string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "count"))
	require.NoError(t, err)
	return strings.TrimSpace(string(data))
}

func TestTool_Success(t *testing.T) {
	tool, dir, _ := newFakeTool(t, "ok", 0)
	src := writeFile(t, t.TempDir(), "plain.txt", "hello world")
	dst := filepath.Join(t.TempDir(), "out.age")

	require.NoError(t, tool.Encrypt(context.Background(), src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
	assert.Equal(t, "1", runs(t, dir))
}

func TestTool_WrongPassphrase(t *testing.T) {
	tool, _, stderr := newFakeTool(t, "ok", 1)
	src := writeFile(t, t.TempDir(), "vault.age", "envelope")
	dst := filepath.Join(t.TempDir(), "out.txt")

	err := tool.Decrypt(context.Background(), src, dst)

	require.ErrorIs(t, err, kerrors.ErrWrongPassphrase)
	assert.Contains(t, stderr.String(), "incorrect passphrase", "the user still sees the tool's message")

	// The tool prompts again on the next run.
	require.NoError(t, tool.Decrypt(context.Background(), src, dst))
}

func TestTool_OtherFailure(t *testing.T) {
	tool, _, _ := newFakeTool(t, "broken", 0)
	src := writeFile(t, t.TempDir(), "vault.age", "envelope")

	err := tool.Decrypt(context.Background(), src, filepath.Join(t.TempDir(), "out"))

	require.ErrorIs(t, err, kerrors.ErrDecryptFailed)
	assert.Contains(t, err.Error(), "unexpected intro")
}

func TestTool_RunsWithFixedLocale(t *testing.T) {
	t.Setenv("LC_ALL", "de_DE.UTF-8")
	tool, dir, _ := newFakeTool(t, "broken", 0)

	_ = tool.Decrypt(context.Background(), "in", "out")

	data, err := os.ReadFile(filepath.Join(dir, "locale"))
	require.NoError(t, err)
	assert.Equal(t, "C", strings.TrimSpace(string(data)))
}

func TestTool_NotFound(t *testing.T) {
	missing := &Tool{Path: filepath.Join(t.TempDir(), "no-such-age")}
	err := missing.Encrypt(context.Background(), "in", "out")
	assert.ErrorIs(t, err, kerrors.ErrToolNotFound)

	_, err = missing.Lookup()
	assert.ErrorIs(t, err, kerrors.ErrToolNotFound)

	onPath := &Tool{Path: "agevault-test-no-such-binary"}
	err = onPath.Decrypt(context.Background(), "in", "out")
	assert.ErrorIs(t, err, kerrors.ErrToolNotFound)
}

func TestTool_Interrupted(t *testing.T) {
	tool, _, _ := newFakeTool(t, "slow", 0)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := tool.Decrypt(ctx, "in", filepath.Join(t.TempDir(), "out"))

	require.ErrorIs(t, err, kerrors.ErrInterrupted)
	assert.Less(t, time.Since(start), 4*time.Second, "the child is killed, not waited for")
}
