package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/agevault/internal/editor"
	kerrors "github.com/PolarWolf314/agevault/internal/errors"
	"github.com/PolarWolf314/agevault/internal/journal"
	"github.com/PolarWolf314/agevault/internal/prompt"
	"github.com/PolarWolf314/agevault/internal/ui"
	"github.com/PolarWolf314/agevault/internal/vault"
	"github.com/PolarWolf314/agevault/internal/workflows"
)

// menuItem is one numbered entry of the session menu. A nil action exits.
type menuItem struct {
	key    string
	label  string
	action func(s *Session, ctx context.Context) error
}

var menu = []menuItem{
	{"1", "Encrypt new content", (*Session).encryptNew},
	{"2", "Encrypt existing file", (*Session).encryptFile},
	{"3", "Decrypt file", (*Session).decrypt},
	{"4", "List files", (*Session).list},
	{"5", "Edit encrypted file", (*Session).edit},
	{"6", "Exit", nil},
}

// Session is the interactive menu loop.
type Session struct {
	Env    *workflows.Env
	Prompt *prompt.Prompter
	Out    io.Writer

	// Now gives the time used for default names.
	Now func() time.Time
}

// Run shows the menu until the user exits or the input ends. Operation
// failures are reported and the menu shown again; fatal errors and
// interrupts are returned.
func (s *Session) Run(ctx context.Context) error {
	for {
		s.printMenu()

		choice, err := s.Prompt.Ask(ctx, "Choose an option", "")
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(s.Out)
			return nil
		}
		if err != nil {
			return err
		}

		item, ok := lookupMenu(choice)
		if !ok {
			fmt.Fprintln(s.Out, ui.Fail(fmt.Sprintf("Invalid choice %s, pick a number from 1 to %d", ui.Highlight.Sprint(choice), len(menu))))
			fmt.Fprintln(s.Out)
			continue
		}
		if item.action == nil {
			fmt.Fprintln(s.Out, "Goodbye.")
			return nil
		}

		Logger.Debugf("Running menu option %s (%s)", item.key, item.label)
		err = item.action(s, ctx)
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			fmt.Fprintln(s.Out)
			return nil
		case kerrors.IsFatal(err):
			return err
		case errors.Is(err, kerrors.ErrEmptyInput):
			fmt.Fprintln(s.Out, ui.Hint("Cancelled, nothing was written"))
		default:
			fmt.Fprintln(s.Out, FormatError(err))
		}
		fmt.Fprintln(s.Out)
	}
}

func (s *Session) printMenu() {
	fmt.Fprintln(s.Out, ui.Info.Sprint("What would you like to do?"))
	for _, item := range menu {
		fmt.Fprintf(s.Out, "  %s %s\n", ui.Choice.Sprint(item.key), item.label)
	}
}

func lookupMenu(choice string) (menuItem, bool) {
	choice = strings.TrimSpace(choice)
	for _, item := range menu {
		if item.key == choice {
			return item, true
		}
	}
	return menuItem{}, false
}

func (s *Session) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// runSession sets up the collaborators from the merged settings and runs
// the menu until exit.
func runSession(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	if err := vault.EnsureDir(settings.VaultDir); err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	c, backend, err := newCipher(settings, stderr)
	if err != nil {
		return err
	}
	Logger.Infof("Using %s", backend)

	j := journal.Nop()
	if settings.LogFile != "" {
		opened, err := journal.Open(settings.LogFile)
		if err != nil {
			Logger.Warnf("Journal disabled: %v", err)
		} else {
			j = opened
		}
	}
	defer j.Close()
	Logger.Debugf("Session %s", j.Session())

	p := prompt.New(cmd.InOrStdin(), cmd.OutOrStdout())

	env := workflows.NewEnv(settings)
	env.Cipher = c
	env.Editor = editor.New(settings.Editor)
	env.Confirm = p
	env.Logger = Logger
	env.Journal = j

	if !settings.NoBanner && isTerminal(cmd.OutOrStdout()) {
		printBanner(cmd.OutOrStdout())
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Vault: %s\n\n", ui.Path.Sprint(settings.VaultDir))

	session := &Session{Env: env, Prompt: p, Out: cmd.OutOrStdout()}
	return session.Run(cmd.Context())
}
