package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/common-nighthawk/go-figure"

	kerrors "github.com/PolarWolf314/agevault/internal/errors"
	"github.com/PolarWolf314/agevault/internal/ui"
	"github.com/PolarWolf314/agevault/internal/utils"
)

// startSpinner creates and starts a spinner on w with the given message
// when not in verbose or debug mode.
// Returns the spinner and a function that should be deferred to clean up.
//
// spinner.FinalMSG values do NOT need trailing newlines. The cleanup
// function calls ui.EnsureNewline() on the final message before printing it.
func startSpinner(w io.Writer, message string) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + message

	// Ignore color errors - continue without colored spinner if it fails.
	_ = s.Color("cyan")

	quiet := !verbose && !debug
	if quiet {
		s.Start()
	} else {
		Logger.Infof("%s", message)
	}

	cleanup := func() {
		// Ensure final message ends with a newline.
		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		// Stop the spinner first to clear the spinner line.
		if quiet {
			s.Stop()
		}

		if finalMsg != "" {
			fmt.Fprint(w, finalMsg)
		}
	}

	return s, cleanup
}

// busySpinner adapts startSpinner to the native backend's Busy hook.
func busySpinner(w io.Writer) func(message string) func() {
	return func(message string) func() {
		_, cleanup := startSpinner(w, message)
		return cleanup
	}
}

// isTerminal reports whether w writes to a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && utils.IsTerminal(f)
}

// printBanner prints the session banner.
func printBanner(w io.Writer) {
	banner := figure.NewFigure("agevault", "small", true)
	fmt.Fprintln(w, ui.Info.Sprint(banner.String()))
}

// FormatError turns a workflow error into the lines shown to the user.
func FormatError(err error) string {
	switch {
	case errors.Is(err, kerrors.ErrRestoreFailed):
		return ui.Fail(err.Error()) + "\n" +
			ui.Hint("The encrypted file may be damaged; keep any backup you have")

	case errors.Is(err, kerrors.ErrMaxAttempts):
		return ui.Fail("Maximum attempts exceeded") + "\n" +
			ui.Hint("Nothing was written; choose the operation again to retry")

	case errors.Is(err, kerrors.ErrNothingToEncrypt):
		return ui.Warn("Nothing to encrypt, no file written")

	case errors.Is(err, kerrors.ErrEditorFailed):
		return ui.Fail(err.Error()) + "\n" +
			ui.Hint("Set $VISUAL, $EDITOR or editor in the config file")

	case errors.Is(err, kerrors.ErrToolNotFound):
		return ui.Fail(err.Error()) + "\n" +
			ui.Hint("Install age (https://age-encryption.org) or run with --backend native")

	case errors.Is(err, kerrors.ErrDirNotWritable):
		return ui.Fail(err.Error()) + "\n" +
			ui.Hint("Choose another directory with --dir or vault_dir in the config file")

	default:
		return ui.Fail(err.Error())
	}
}
