// Package prompt reads line-oriented answers from the user.
//
// A Prompter only reads from its input while a question is waiting for an
// answer, so the editor and the age binary can own the terminal between
// prompts. Reads honour context cancellation.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	kerrors "github.com/PolarWolf314/agevault/internal/errors"
	"github.com/PolarWolf314/agevault/internal/ui"
)

type lineResult struct {
	line string
	err  error
}

// Prompter asks questions on Out and reads answers from In.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer

	// pending holds a read that outlived a cancelled prompt.
	pending chan lineResult
}

// New returns a Prompter reading from in and writing prompts to out.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// ReadLine returns the next line without its line ending. io.EOF means the
// input is closed.
func (p *Prompter) ReadLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", kerrors.ErrInterrupted, context.Cause(ctx))
	}

	if p.pending == nil {
		ch := make(chan lineResult, 1)
		p.pending = ch
		go func() {
			line, err := p.in.ReadString('\n')
			ch <- lineResult{line: line, err: err}
		}()
	}

	select {
	case r := <-p.pending:
		p.pending = nil
		line := strings.TrimRight(r.line, "\r\n")
		if r.err != nil {
			// A final line without a newline still counts.
			if errors.Is(r.err, io.EOF) && line != "" {
				return line, nil
			}
			return "", r.err
		}
		return line, nil
	case <-ctx.Done():
		fmt.Fprintln(p.out)
		return "", fmt.Errorf("%w: %w", kerrors.ErrInterrupted, context.Cause(ctx))
	}
}

// Ask prints label, with def in brackets when set, and returns the trimmed
// answer. An empty answer gives def.
func (p *Prompter) Ask(ctx context.Context, label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}

	answer, err := p.ReadLine(ctx)
	if err != nil {
		return "", err
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// Confirm asks a yes/no question. An empty answer gives def; anything other
// than y, yes, n or no asks again.
func (p *Prompter) Confirm(ctx context.Context, question string, def bool) (bool, error) {
	hint := "[y/N]"
	if def {
		hint = "[Y/n]"
	}

	for {
		fmt.Fprintf(p.out, "%s %s: ", question, hint)

		answer, err := p.ReadLine(ctx)
		if err != nil {
			return false, err
		}

		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.out, ui.Hint("Please answer y or n"))
	}
}
