package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/agevault/internal/ui"
	"github.com/PolarWolf314/agevault/internal/workflows"
)

var (
	doctorJSONOutput bool
	// doctorExitFunc ends the process with the doctor's exit code. Tests swap it out.
	doctorExitFunc = os.Exit
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSONOutput, "json", false, "print the report as JSON")
}

func resetDoctorCommandState() {
	doctorJSONOutput = false
	doctorExitFunc = os.Exit
}

// SetDoctorExitFunc replaces the exit function used by doctor.
func SetDoctorExitFunc(f func(int)) {
	doctorExitFunc = f
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that a session can run",
	Long: `Checks the settings, the environment and the vault directory, then
reports anything that would get in the way of a session:

  - the encryption backend (age binary or built-in)
  - the editor
  - the vault directory and its permissions
  - permissions of the encrypted files
  - temporary files and scratch directories left by interrupted sessions
  - the journal file, if one is configured

The exit status is 0 when everything passed, 1 when only warnings were
found and 2 when at least one check failed. Pass --json for a report
other tools can read.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	spin, stop := startSpinner(out, "Checking the vault...")
	defer stop()

	result, err := workflows.Doctor(cmd.Context(), workflows.DoctorOptions{Settings: settings})
	if err != nil {
		spin.FinalMSG = ui.Fail("Could not finish the checks: " + err.Error())
		return err
	}
	for _, check := range result.Checks {
		Logger.Debugf("doctor: %s is %s (%s)", check.Name, check.Status, check.Message)
	}

	spin.FinalMSG = ""
	stop()

	code := doctorExitCode(result.Summary)
	if doctorJSONOutput {
		if err := outputDoctorJSON(out, result); err != nil {
			return err
		}
	} else {
		printDoctorResults(out, result)
		fmt.Fprintln(out, doctorVerdict(code))
	}

	if code != 0 {
		doctorExitFunc(code)
	}
	return nil
}

func doctorExitCode(summary workflows.DoctorSummary) int {
	switch {
	case summary.Errors > 0:
		return 2
	case summary.Warnings > 0:
		return 1
	}
	return 0
}

func doctorVerdict(code int) string {
	switch code {
	case 2:
		return ui.Fail("Health checks completed with errors")
	case 1:
		return ui.Warn("Health checks completed with warnings")
	}
	return ui.Ok("Health checks completed")
}

func outputDoctorJSON(w io.Writer, result *workflows.DoctorResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func checkLine(check workflows.CheckResult) string {
	line := check.Name + ": " + check.Message
	switch check.Status {
	case workflows.CheckError:
		return ui.Fail(line)
	case workflows.CheckWarning:
		return ui.Warn(line)
	}
	return ui.Ok(line)
}

func printDoctorResults(w io.Writer, result *workflows.DoctorResult) {
	for _, check := range result.Checks {
		fmt.Fprintln(w, checkLine(check))
	}

	summary := fmt.Sprintf("\nSummary: %d passed", result.Summary.Passed)
	if n := result.Summary.Warnings; n > 0 {
		summary += ", " + ui.Warning.Sprintf("%d warning(s)", n)
	}
	if n := result.Summary.Errors; n > 0 {
		summary += ", " + ui.Error.Sprintf("%d error(s)", n)
	}
	fmt.Fprintln(w, summary)

	if len(result.Suggestions) > 0 {
		fmt.Fprintln(w, "\nSuggestions:")
		for _, s := range result.Suggestions {
			fmt.Fprintln(w, "  "+ui.Hint(s))
		}
	}
	fmt.Fprintln(w)
}
