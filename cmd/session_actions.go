package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/PolarWolf314/agevault/internal/configs"
	kerrors "github.com/PolarWolf314/agevault/internal/errors"
	"github.com/PolarWolf314/agevault/internal/ui"
	"github.com/PolarWolf314/agevault/internal/utils"
	"github.com/PolarWolf314/agevault/internal/vault"
	"github.com/PolarWolf314/agevault/internal/workflows"
)

func (s *Session) encryptNew(ctx context.Context) error {
	dest, err := s.askNewArtifact(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(s.Out, ui.Hint("Opening the editor, save and quit when done"))
	result, err := workflows.EncryptNew(ctx, s.Env, workflows.EncryptNewOptions{Dest: dest})
	if err != nil {
		return err
	}

	fmt.Fprintln(s.Out, ui.Ok("Encrypted to "+ui.Path.Sprint(result.Artifact)))
	return nil
}

func (s *Session) encryptFile(ctx context.Context) error {
	source, err := s.askSource(ctx)
	if err != nil {
		return err
	}
	dest, err := s.askNewArtifact(ctx)
	if err != nil {
		return err
	}

	result, err := workflows.EncryptFile(ctx, s.Env, workflows.EncryptFileOptions{Source: source, Dest: dest})
	if err != nil {
		return err
	}

	fmt.Fprintln(s.Out, ui.Ok(fmt.Sprintf("Encrypted %s to %s", ui.Path.Sprint(source), ui.Path.Sprint(result.Artifact))))
	fmt.Fprintln(s.Out, ui.Hint("The original file was left in place"))
	return nil
}

func (s *Session) decrypt(ctx context.Context) error {
	source, err := s.askExistingArtifact(ctx, "File to decrypt")
	if err != nil {
		return err
	}
	dest, err := s.askOutput(ctx, source)
	if err != nil {
		return err
	}

	result, err := workflows.Decrypt(ctx, s.Env, workflows.DecryptOptions{Source: source, Dest: dest, Out: s.Out})
	if err != nil {
		return err
	}

	if result.Dest != "" {
		fmt.Fprintln(s.Out, ui.Ok(fmt.Sprintf("Decrypted %s to %s %s", ui.Highlight.Sprint(filepath.Base(source)), ui.Path.Sprint(result.Dest), ui.Muted.Sprintf("%d bytes", result.Size))))
	} else {
		fmt.Fprintln(s.Out, ui.Ok("Decrypted "+ui.Highlight.Sprint(filepath.Base(source))))
	}
	return nil
}

func (s *Session) list(ctx context.Context) error {
	result, err := workflows.List(ctx, s.Env)
	if err != nil {
		return err
	}

	if len(result.Names) == 0 {
		fmt.Fprintln(s.Out, ui.Hint("No encrypted files in "+ui.Path.Sprint(result.Dir)))
		return nil
	}

	fmt.Fprintf(s.Out, "Encrypted files in %s:\n", ui.Path.Sprint(result.Dir))
	fmt.Fprint(s.Out, ui.List(result.Names))
	return nil
}

func (s *Session) edit(ctx context.Context) error {
	target, err := s.askExistingArtifact(ctx, "File to edit")
	if err != nil {
		return err
	}

	result, err := workflows.Edit(ctx, s.Env, workflows.EditOptions{Target: target})
	if err != nil {
		return err
	}

	name := ui.Highlight.Sprint(filepath.Base(target))
	switch result.Outcome {
	case workflows.EditUnchanged:
		fmt.Fprintln(s.Out, ui.Hint("No changes, "+name+" was left as it was"))
	case workflows.EditDiscarded:
		fmt.Fprintln(s.Out, ui.Warn("Changes discarded, "+name+" was left as it was"))
	case workflows.EditUpdated:
		fmt.Fprintln(s.Out, ui.Ok("Updated "+name))
	}
	return nil
}

// askNewArtifact asks for the name of a new artifact until a valid one is
// given. An existing artifact is only accepted after the user confirms
// the overwrite.
func (s *Session) askNewArtifact(ctx context.Context) (string, error) {
	ext := s.ext()
	def := vault.DefaultName(s.now())

	for {
		name, err := s.Prompt.Ask(ctx, "File name", def)
		if err != nil {
			return "", err
		}
		name = strings.TrimSuffix(name, "."+ext)

		if err := vault.ValidateName(name); err != nil {
			fmt.Fprintln(s.Out, ui.Fail(err.Error()))
			continue
		}

		path := vault.ArtifactPath(s.Env.Dir, name, ext)
		exists, err := utils.FileExists(path)
		if err != nil {
			return "", err
		}
		if !exists {
			return path, nil
		}

		overwrite, err := s.Prompt.Confirm(ctx, fmt.Sprintf("%s already exists. Overwrite?", ui.Highlight.Sprint(filepath.Base(path))), false)
		if err != nil {
			return "", err
		}
		if overwrite {
			return path, nil
		}
	}
}

// askExistingArtifact lists the vault and asks for an artifact by number,
// name or path. An empty answer cancels.
func (s *Session) askExistingArtifact(ctx context.Context, label string) (string, error) {
	ext := s.ext()
	names, err := vault.List(s.Env.Dir, ext)
	if err != nil {
		return "", err
	}

	if len(names) == 0 {
		fmt.Fprintln(s.Out, ui.Hint("No encrypted files in "+ui.Path.Sprint(s.Env.Dir)+", enter a path instead"))
	}
	for i, name := range names {
		fmt.Fprintf(s.Out, "  %s %s\n", ui.Choice.Sprint(i+1), name)
	}

	for {
		input, err := s.Prompt.Ask(ctx, label, "")
		if err != nil {
			return "", err
		}
		if input == "" {
			return "", kerrors.ErrEmptyInput
		}

		if n, convErr := strconv.Atoi(input); convErr == nil && n >= 1 && n <= len(names) {
			input = names[n-1]
		}
		if input, err = utils.ExpandHome(input); err != nil {
			return "", err
		}

		path := vault.ResolveArtifact(s.Env.Dir, input, ext)
		err = vault.CheckArtifact(path, ext)
		if errors.Is(err, kerrors.ErrFileNotFound) || errors.Is(err, kerrors.ErrNotArtifact) {
			fmt.Fprintln(s.Out, ui.Fail(err.Error()))
			continue
		}
		if err != nil {
			return "", err
		}
		return path, nil
	}
}

// askSource asks for a plaintext file until an existing one is given. An
// empty answer cancels.
func (s *Session) askSource(ctx context.Context) (string, error) {
	for {
		input, err := s.Prompt.Ask(ctx, "File to encrypt", "")
		if err != nil {
			return "", err
		}
		if input == "" {
			return "", kerrors.ErrEmptyInput
		}

		path, err := utils.ExpandHome(input)
		if err != nil {
			return "", err
		}

		err = vault.CheckSource(path)
		if errors.Is(err, kerrors.ErrFileNotFound) {
			fmt.Fprintln(s.Out, ui.Fail(err.Error()))
			continue
		}
		if err != nil {
			return "", err
		}
		return path, nil
	}
}

// askOutput asks where decrypted content goes. An empty answer means the
// terminal. An existing file is only accepted after the user confirms the
// overwrite, and source itself never is.
func (s *Session) askOutput(ctx context.Context, source string) (string, error) {
	for {
		input, err := s.Prompt.Ask(ctx, "Output file (empty for the terminal)", "")
		if err != nil {
			return "", err
		}
		if input == "" {
			return "", nil
		}

		path, err := utils.ExpandHome(input)
		if err != nil {
			return "", err
		}

		info, err := os.Stat(path)
		if errors.Is(err, os.ErrNotExist) {
			return path, nil
		}
		if err != nil {
			return "", err
		}
		if info.IsDir() {
			fmt.Fprintln(s.Out, ui.Fail(ui.Path.Sprint(path)+" is a directory"))
			continue
		}
		if src, err := os.Stat(source); err == nil && os.SameFile(src, info) {
			fmt.Fprintln(s.Out, ui.Fail("Refusing to write the plaintext over the encrypted file"))
			continue
		}

		overwrite, err := s.Prompt.Confirm(ctx, fmt.Sprintf("%s already exists. Overwrite?", ui.Path.Sprint(path)), false)
		if err != nil {
			return "", err
		}
		if overwrite {
			return path, nil
		}
	}
}

func (s *Session) ext() string {
	if s.Env.Extension == "" {
		return configs.DefaultExtension
	}
	return s.Env.Extension
}
