package workflows

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PolarWolf314/agevault/internal/configs"
	"github.com/PolarWolf314/agevault/internal/vault"
)

func doctorSettings(t *testing.T) *configs.Settings {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("relies on unix permission bits and sh")
	}
	return &configs.Settings{
		VaultDir:         filepath.Join(t.TempDir(), "vault"),
		Extension:        "age",
		Backend:          configs.BackendNative,
		Tool:             "age",
		Editor:           "sh",
		MaxAttempts:      3,
		ScryptWorkFactor: 18,
		ScratchDir:       t.TempDir(),
	}
}

func findCheck(t *testing.T, result *DoctorResult, name string) CheckResult {
	t.Helper()
	for _, c := range result.Checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("check %q not found", name)
	return CheckResult{}
}

func TestDoctor_Healthy(t *testing.T) {
	settings := doctorSettings(t)

	result, err := Doctor(context.Background(), DoctorOptions{Settings: settings})
	require.NoError(t, err)
	assert.Zero(t, result.Summary.Errors)
	assert.Zero(t, result.Summary.Warnings)
	assert.Equal(t, len(result.Checks), result.Summary.Passed)
	assert.Empty(t, result.Suggestions)
}

func TestDoctor_MissingTool(t *testing.T) {
	settings := doctorSettings(t)
	settings.Tool = filepath.Join(t.TempDir(), "no-such-age")

	settings.Backend = configs.BackendTool
	result, err := Doctor(context.Background(), DoctorOptions{Settings: settings})
	require.NoError(t, err)
	assert.Equal(t, CheckError, findCheck(t, result, "Encryption backend").Status)

	settings.Backend = configs.BackendAuto
	result, err = Doctor(context.Background(), DoctorOptions{Settings: settings})
	require.NoError(t, err)
	assert.Equal(t, CheckWarning, findCheck(t, result, "Encryption backend").Status)
}

func TestDoctor_MissingEditor(t *testing.T) {
	settings := doctorSettings(t)
	settings.Editor = "no-such-editor-anywhere --wait"

	result, err := Doctor(context.Background(), DoctorOptions{Settings: settings})
	require.NoError(t, err)
	assert.Equal(t, CheckError, findCheck(t, result, "Editor").Status)
}

func TestDoctor_Permissions(t *testing.T) {
	settings := doctorSettings(t)
	require.NoError(t, os.MkdirAll(settings.VaultDir, 0700))
	require.NoError(t, os.Chmod(settings.VaultDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(settings.VaultDir, "open.age"), []byte("x"), 0644))
	require.NoError(t, os.Chmod(filepath.Join(settings.VaultDir, "open.age"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(settings.VaultDir, "closed.age"), []byte("x"), 0600))

	result, err := Doctor(context.Background(), DoctorOptions{Settings: settings})
	require.NoError(t, err)
	assert.Equal(t, CheckWarning, findCheck(t, result, "Vault directory permissions").Status)

	artifacts := findCheck(t, result, "Artifact permissions")
	assert.Equal(t, CheckWarning, artifacts.Status)
	assert.Contains(t, artifacts.Message, "open.age")
	assert.NotContains(t, artifacts.Message, "closed.age")
}

func TestDoctor_Leftovers(t *testing.T) {
	settings := doctorSettings(t)
	require.NoError(t, os.MkdirAll(settings.VaultDir, 0700))
	leftover := vault.TempSibling(filepath.Join(settings.VaultDir, "notes.age"))
	require.NoError(t, os.WriteFile(leftover, []byte("partial"), 0600))
	abandoned := filepath.Join(settings.ScratchDir, "agevault-abandoned")
	require.NoError(t, os.MkdirAll(abandoned, 0700))

	// Fresh leftovers may belong to a session that is still running.
	result, err := Doctor(context.Background(), DoctorOptions{Settings: settings})
	require.NoError(t, err)
	assert.Equal(t, CheckPass, findCheck(t, result, "Temporary files").Status)
	assert.Equal(t, CheckPass, findCheck(t, result, "Scratch directories").Status)

	backdate(t, leftover, 2*time.Hour)
	backdate(t, abandoned, 2*time.Hour)

	result, err = Doctor(context.Background(), DoctorOptions{Settings: settings})
	require.NoError(t, err)
	assert.Equal(t, CheckWarning, findCheck(t, result, "Temporary files").Status)
	assert.Equal(t, CheckError, findCheck(t, result, "Scratch directories").Status)
	assert.Equal(t, []string{"Run 'agevault clean' to remove them"}, result.Suggestions)
}

func TestDoctor_Journal(t *testing.T) {
	settings := doctorSettings(t)
	settings.LogFile = filepath.Join(t.TempDir(), "journal.jsonl")

	result, err := Doctor(context.Background(), DoctorOptions{Settings: settings})
	require.NoError(t, err)
	assert.Equal(t, CheckPass, findCheck(t, result, "Journal").Status)

	require.NoError(t, os.WriteFile(settings.LogFile, nil, 0600))
	require.NoError(t, os.Chmod(settings.LogFile, 0644))
	result, err = Doctor(context.Background(), DoctorOptions{Settings: settings})
	require.NoError(t, err)
	assert.Equal(t, CheckWarning, findCheck(t, result, "Journal").Status)
}

func TestDoctor_VaultIsAFile(t *testing.T) {
	settings := doctorSettings(t)
	require.NoError(t, os.WriteFile(settings.VaultDir, nil, 0600))

	result, err := Doctor(context.Background(), DoctorOptions{Settings: settings})
	require.NoError(t, err)
	assert.Equal(t, CheckError, findCheck(t, result, "Vault directory").Status)
}

func TestCheckStatus_JSON(t *testing.T) {
	data, err := CheckWarning.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"warning"`, string(data))
}
