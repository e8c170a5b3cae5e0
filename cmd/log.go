package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	kerrors "github.com/PolarWolf314/agevault/internal/errors"
	"github.com/PolarWolf314/agevault/internal/journal"
	"github.com/PolarWolf314/agevault/internal/ui"
	"github.com/PolarWolf314/agevault/internal/workflows"
)

var (
	logLimit     int
	logReverse   bool
	logSession   string
	logOperation string
	logSince     string
	logUntil     string
	logOneline   bool
	logJSON      bool
)

func init() {
	logCmd.Flags().IntVarP(&logLimit, "number", "n", 0, "limit number of entries shown")
	logCmd.Flags().BoolVar(&logReverse, "reverse", false, "show most recent entries first")
	logCmd.Flags().StringVar(&logSession, "session", "", "filter by session id (prefix)")
	logCmd.Flags().StringVar(&logOperation, "operation", "", "filter by operation (comma-separated)")
	logCmd.Flags().StringVar(&logSince, "since", "", "show entries on or after date (YYYY-MM-DD, UTC)")
	logCmd.Flags().StringVar(&logUntil, "until", "", "show entries on or before date (YYYY-MM-DD, UTC)")
	logCmd.Flags().BoolVar(&logOneline, "oneline", false, "compact one-line format")
	logCmd.Flags().BoolVar(&logJSON, "json", false, "output as JSON array")
}

// resetLogCommandState resets the log command's global state for testing.
func resetLogCommandState() {
	logLimit = 0
	logReverse = false
	logSession = ""
	logOperation = ""
	logSince = ""
	logUntil = ""
	logOneline = false
	logJSON = false
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View the session journal",
	Long: `Displays the journal of past sessions, when log_file is configured.

Each entry records an operation, the base name of the file it touched, the
number of passphrase attempts and the outcome. Contents and passphrases
are never journalled.

Examples:
  agevault log                              # View full journal
  agevault log -n 10                        # Last 10 entries
  agevault log --reverse                    # Most recent first
  agevault log --operation edit,decrypt     # Filter by operation
  agevault log --session 1f2e               # Filter by session
  agevault log --since 2024-01-01           # Filter by date
  agevault log --json                       # JSON output`,
	Args: cobra.NoArgs,
	RunE: runLog,
}

func runLog(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting log command")
	out := cmd.OutOrStdout()

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	result, err := workflows.History(cmd.Context(), workflows.HistoryOptions{
		Path:       settings.LogFile,
		Limit:      logLimit,
		Reverse:    logReverse,
		Operations: logOperation,
		Session:    logSession,
		Since:      logSince,
		Until:      logUntil,
	})
	if err != nil {
		fmt.Fprintln(out, formatLogError(err))
		if isLogUnexpectedError(err) {
			return err
		}
		return nil
	}

	Logger.Debugf("Parsed %d entries from %s", result.TotalEntriesBeforeFilter, settings.LogFile)
	Logger.Debugf("After filtering: %d entries", len(result.Entries))

	if len(result.Entries) == 0 {
		if result.TotalEntriesBeforeFilter == 0 {
			fmt.Fprintln(out, "No journal entries found.")
		} else {
			fmt.Fprintln(out, "No journal entries found matching the filters.")
		}
		return nil
	}

	switch {
	case logJSON:
		return outputLogJSON(out, result.Entries)
	case logOneline:
		outputLogOneline(out, result.Entries)
	default:
		outputLogDefault(out, result.Entries)
	}
	return nil
}

// formatLogError formats a log error for display to the user.
func formatLogError(err error) string {
	switch {
	case errors.Is(err, kerrors.ErrNoJournal):
		return ui.Fail("No journal is configured") + "\n" +
			ui.Hint("Set log_file in the config file or AGEVAULT_LOG_FILE")

	case errors.Is(err, kerrors.ErrInvalidDateFormat):
		return ui.Fail(err.Error())

	default:
		return ui.Fail("Failed to read journal: " + err.Error())
	}
}

// isLogUnexpectedError returns true if the error is unexpected and should cause a non-zero exit.
func isLogUnexpectedError(err error) bool {
	return !errors.Is(err, kerrors.ErrNoJournal) && !errors.Is(err, kerrors.ErrInvalidDateFormat)
}

func outputLogJSON(w io.Writer, entries []journal.Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entries to JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func outputLogOneline(w io.Writer, entries []journal.Entry) {
	for _, e := range entries {
		fmt.Fprintf(w, "%s %s %s %s %s\n", e.Time.Format("2006-01-02"), shortSession(e.Session), e.Operation, e.Outcome, workflows.FormatDetails(e))
	}
}

func outputLogDefault(w io.Writer, entries []journal.Entry) {
	for _, e := range entries {
		fmt.Fprintf(w, "%-19s  %-8s  %-12s  %-9s  %s\n",
			e.Time.Local().Format("2006-01-02 15:04:05"), shortSession(e.Session), e.Operation, e.Outcome, workflows.FormatDetails(e))
	}
}

// shortSession returns the first block of a session id.
func shortSession(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
