package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/agevault/internal/journal"
	"github.com/PolarWolf314/agevault/internal/prompt"
	"github.com/PolarWolf314/agevault/internal/ui"
	"github.com/PolarWolf314/agevault/internal/workflows"
)

var (
	cleanForce  bool
	cleanDryRun bool
)

func init() {
	cleanCmd.Flags().BoolVar(&cleanForce, "force", false, "skip confirmation prompt")
	cleanCmd.Flags().BoolVar(&cleanDryRun, "dry-run", false, "show what would be removed without making changes")
}

func resetCleanCommandState() {
	cleanForce = false
	cleanDryRun = false
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Wipe files left behind by interrupted sessions",
	Long: `Removes temporary files that an interrupted session may have left behind.

Two kinds of leftovers are removed:
  - Hidden temporary siblings of encrypted files in the vault directory,
    written while an encryption was in progress
  - Scratch directories older than an hour, which may hold plaintext

Leftovers are overwritten before they are removed. Encrypted files are
never touched.

Use --dry-run to preview what would be removed.
Use --force to skip the confirmation prompt.`,
	Args: cobra.NoArgs,
	RunE: runClean,
}

func runClean(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting clean command")
	out := cmd.OutOrStdout()

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	env := workflows.NewEnv(settings)
	env.Logger = Logger

	preview, err := workflows.Clean(cmd.Context(), env, workflows.CleanOptions{DryRun: true})
	if err != nil {
		return fmt.Errorf("failed to look for leftovers: %w", err)
	}

	total := len(preview.TempFiles) + len(preview.ScratchDirs)
	if total == 0 {
		fmt.Fprintln(out, ui.Ok("No leftovers found. Nothing to clean."))
		return nil
	}

	if cleanDryRun {
		fmt.Fprintf(out, "[dry-run] Would remove %d leftover(s):\n", total)
	} else {
		fmt.Fprintf(out, "Found %d leftover(s):\n", total)
	}
	printLeftovers(out, preview)

	if cleanDryRun {
		fmt.Fprintln(out, "\nNo changes made.")
		return nil
	}

	if !cleanForce {
		fmt.Fprintln(out, "\nThese files may hold plaintext and will be overwritten and deleted.")
		fmt.Fprintln(out)

		p := prompt.New(cmd.InOrStdin(), out)
		ok, err := p.Confirm(cmd.Context(), "Do you want to continue?", false)
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	if settings.LogFile != "" {
		if j, err := journal.Open(settings.LogFile); err != nil {
			Logger.Warnf("Journal disabled: %v", err)
		} else {
			env.Journal = j
			defer j.Close()
		}
	}

	result, err := workflows.Clean(cmd.Context(), env, workflows.CleanOptions{})
	if err != nil {
		return fmt.Errorf("failed to clean: %w", err)
	}

	fmt.Fprintln(out, ui.Ok(fmt.Sprintf("Removed %d leftover(s)", result.RemovedCount)))
	return nil
}

// printLeftovers lists what Clean found, one path per line.
func printLeftovers(w io.Writer, result *workflows.CleanResult) {
	if len(result.TempFiles) > 0 {
		fmt.Fprintln(w, "  Temporary files:")
		fmt.Fprint(w, ui.List(result.TempFiles))
	}
	if len(result.ScratchDirs) > 0 {
		fmt.Fprintln(w, "  Scratch directories:")
		fmt.Fprint(w, ui.List(result.ScratchDirs))
	}
}
