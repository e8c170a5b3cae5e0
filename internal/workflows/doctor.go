package workflows

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/PolarWolf314/agevault/internal/configs"
	"github.com/PolarWolf314/agevault/internal/scratch"
	"github.com/PolarWolf314/agevault/internal/vault"
)

// CheckStatus represents the result status of a health check.
type CheckStatus int

const (
	// CheckPass means the check passed.
	CheckPass CheckStatus = iota
	// CheckWarning means the check found a non-critical issue.
	CheckWarning
	// CheckError means the check found an issue that stops sessions from working.
	CheckError
)

// String returns a string representation of CheckStatus.
func (s CheckStatus) String() string {
	switch s {
	case CheckPass:
		return "pass"
	case CheckWarning:
		return "warning"
	case CheckError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler for CheckStatus.
func (s CheckStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// CheckResult holds the result of a single health check.
type CheckResult struct {
	Name       string      `json:"name"`
	Status     CheckStatus `json:"status"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// DoctorResult holds the complete result of the doctor workflow.
type DoctorResult struct {
	Checks      []CheckResult `json:"checks"`
	Summary     DoctorSummary `json:"summary"`
	Suggestions []string      `json:"suggestions,omitempty"`
}

// DoctorSummary holds counts of checks by status.
type DoctorSummary struct {
	Passed   int `json:"passed"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}

// DoctorOptions configures the doctor workflow.
type DoctorOptions struct {
	// Settings are the merged settings a session would start with.
	Settings *configs.Settings

	// Now is the reference time for leftover detection. Zero means time.Now().
	Now time.Time
}

// Doctor checks that a session can run with the given settings.
//
// The doctor workflow checks:
//   - The encryption backend is available
//   - The editor can be found
//   - The vault directory is writable and private
//   - Artifacts are not readable by other users
//   - No temporary files or scratch directories were left behind
//   - The journal file, if configured, is writable
func Doctor(ctx context.Context, opts DoctorOptions) (*DoctorResult, error) {
	if opts.Settings == nil {
		return nil, errors.New("doctor needs settings")
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	checks := []func(DoctorOptions) CheckResult{
		checkBackend,
		checkEditor,
		checkVaultDir,
		checkVaultPermissions,
		checkArtifactPermissions,
		checkLeftovers,
		checkScratch,
		checkJournal,
	}

	var results []CheckResult
	for _, check := range checks {
		results = append(results, check(opts))
	}

	summary := calculateDoctorSummary(results)

	// Collect suggestions (deduplicated).
	var suggestions []string
	seen := make(map[string]bool)
	for _, result := range results {
		if result.Suggestion != "" && result.Status != CheckPass && !seen[result.Suggestion] {
			suggestions = append(suggestions, result.Suggestion)
			seen[result.Suggestion] = true
		}
	}

	return &DoctorResult{
		Checks:      results,
		Summary:     summary,
		Suggestions: suggestions,
	}, nil
}

// checkBackend checks that the configured backend can run.
func checkBackend(opts DoctorOptions) CheckResult {
	s := opts.Settings
	const name = "Encryption backend"

	if s.Backend == configs.BackendNative {
		return passed(name, "Using the built-in age implementation")
	}

	path, err := exec.LookPath(s.Tool)
	if err == nil {
		return passed(name, fmt.Sprintf("Using %s", path))
	}

	if s.Backend == configs.BackendAuto {
		return warned(name, fmt.Sprintf("%s not found, falling back to the built-in age implementation", s.Tool), "Install age (https://age-encryption.org) to use the external tool")
	}

	return failed(name, fmt.Sprintf("%s not found", s.Tool), "Install age or set backend = \"native\" in the config file")
}

// checkEditor checks that the editor command resolves.
func checkEditor(opts DoctorOptions) CheckResult {
	const name = "Editor"
	argv := strings.Fields(opts.Settings.Editor)
	if len(argv) == 0 {
		return failed(name, "No editor configured", "Set $EDITOR or editor in the config file")
	}

	if _, err := exec.LookPath(argv[0]); err != nil {
		return failed(name, fmt.Sprintf("Editor %q not found", argv[0]), "Set $EDITOR or editor in the config file")
	}

	return passed(name, fmt.Sprintf("Using %s", opts.Settings.Editor))
}

// checkVaultDir checks that the vault directory is usable.
func checkVaultDir(opts DoctorOptions) CheckResult {
	const name = "Vault directory"
	dir := opts.Settings.VaultDir

	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return passed(name, fmt.Sprintf("%s will be created on first use", dir))
	}
	if err != nil {
		return failed(name, fmt.Sprintf("Failed to stat %s: %v", dir, err), "Check that the vault directory is accessible")
	}
	if !info.IsDir() {
		return failed(name, fmt.Sprintf("%s is not a directory", dir), "Set vault_dir to a directory")
	}
	if err := vault.EnsureDir(dir); err != nil {
		return failed(name, err.Error(), fmt.Sprintf("Run 'chmod 700 %s' or choose another vault_dir", dir))
	}

	return passed(name, fmt.Sprintf("%s is writable", dir))
}

// checkVaultPermissions checks that the vault directory is private.
func checkVaultPermissions(opts DoctorOptions) CheckResult {
	const name = "Vault directory permissions"
	dir := opts.Settings.VaultDir

	info, err := os.Stat(dir)
	if err != nil {
		return passed(name, "Vault directory does not exist yet (skipping permissions check)")
	}

	if mode := info.Mode().Perm(); mode&0077 != 0 {
		return warned(name, fmt.Sprintf("Vault directory is accessible by other users (%04o)", mode), fmt.Sprintf("Run 'chmod 700 %s' to fix permissions", dir))
	}

	return passed(name, "Vault directory is private")
}

// checkArtifactPermissions checks that no artifact is readable by others.
func checkArtifactPermissions(opts DoctorOptions) CheckResult {
	const name = "Artifact permissions"
	s := opts.Settings

	names, err := vault.List(s.VaultDir, s.Extension)
	if err != nil {
		return failed(name, fmt.Sprintf("Failed to list artifacts: %v", err), "Check that the vault directory is accessible")
	}

	var open []string
	for _, n := range names {
		info, err := os.Stat(filepath.Join(s.VaultDir, n))
		if err != nil {
			continue
		}
		if info.Mode().Perm()&0077 != 0 {
			open = append(open, n)
		}
	}

	if len(open) > 0 {
		return warned(name, fmt.Sprintf("%d of %d artifacts are accessible by other users: %s", len(open), len(names), strings.Join(open, ", ")), fmt.Sprintf("Run 'chmod 600 %s' to fix permissions", filepath.Join(s.VaultDir, "*."+s.Extension)))
	}

	return passed(name, fmt.Sprintf("%d artifacts, all private", len(names)))
}

// checkLeftovers checks for temporary files from interrupted writes.
func checkLeftovers(opts DoctorOptions) CheckResult {
	const name = "Temporary files"

	leftovers, err := vault.Leftovers(opts.Settings.VaultDir, opts.Now.Add(-DefaultScratchAge))
	if err != nil {
		return warned(name, err.Error(), "")
	}
	if len(leftovers) > 0 {
		return warned(name, fmt.Sprintf("%d temporary files left in the vault directory", len(leftovers)), "Run 'agevault clean' to remove them")
	}

	return passed(name, "No temporary files")
}

// checkScratch checks for abandoned scratch directories, which may hold
// plaintext.
func checkScratch(opts DoctorOptions) CheckResult {
	const name = "Scratch directories"

	stale, err := scratch.Stale(opts.Settings.ScratchDir, opts.Now.Add(-DefaultScratchAge))
	if err != nil {
		return warned(name, err.Error(), "")
	}
	if len(stale) > 0 {
		return failed(name, fmt.Sprintf("%d abandoned scratch directories may contain plaintext", len(stale)), "Run 'agevault clean' to remove them")
	}

	return passed(name, "No abandoned scratch directories")
}

// checkJournal checks that the journal file, if any, can be appended to.
func checkJournal(opts DoctorOptions) CheckResult {
	const name = "Journal"
	path := opts.Settings.LogFile

	if path == "" {
		return passed(name, "Journal disabled")
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return passed(name, fmt.Sprintf("%s will be created on first use", path))
	}
	if err != nil {
		return warned(name, fmt.Sprintf("Failed to stat %s: %v", path, err), "Check that log_file is accessible")
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		return warned(name, fmt.Sprintf("%s is not writable, operations will not be journalled", path), "Check that log_file is accessible")
	}
	f.Close()

	if mode := info.Mode().Perm(); mode&0077 != 0 {
		return warned(name, fmt.Sprintf("Journal is accessible by other users (%04o)", mode), fmt.Sprintf("Run 'chmod 600 %s' to fix permissions", path))
	}

	return passed(name, fmt.Sprintf("Writing to %s", path))
}

func passed(name, message string) CheckResult {
	return CheckResult{Name: name, Status: CheckPass, Message: message}
}

func warned(name, message, suggestion string) CheckResult {
	return CheckResult{Name: name, Status: CheckWarning, Message: message, Suggestion: suggestion}
}

func failed(name, message, suggestion string) CheckResult {
	return CheckResult{Name: name, Status: CheckError, Message: message, Suggestion: suggestion}
}

// calculateDoctorSummary counts checks by status.
func calculateDoctorSummary(results []CheckResult) DoctorSummary {
	var summary DoctorSummary
	for _, result := range results {
		switch result.Status {
		case CheckPass:
			summary.Passed++
		case CheckWarning:
			summary.Warnings++
		case CheckError:
			summary.Errors++
		}
	}
	return summary
}
