package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/PolarWolf314/agevault/cmd"
	kerrors "github.com/PolarWolf314/agevault/internal/errors"
	"github.com/PolarWolf314/agevault/internal/ui"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cmd.Execute(ctx)
	if err == nil {
		return 0
	}

	if errors.Is(err, kerrors.ErrInterrupted) {
		fmt.Fprintln(os.Stderr, ui.Warn("Interrupted"))
	} else {
		fmt.Fprintln(os.Stderr, cmd.FormatError(err))
	}
	return 1
}
