package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/edgebundle/internal/cli"
	apperr "github.com/matzehuels/edgebundle/pkg/errors"
)

// Exit codes.
const (
	exitError       = 1
	exitUsage       = 2 // invalid input or configuration
	exitNotFound    = 3
	exitInterrupted = 130 // shell convention for SIGINT
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(exitInterrupted)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch apperr.GetCode(err) {
	case apperr.ErrCodeInvalidInput, apperr.ErrCodeInvalidConfig, apperr.ErrCodeInvalidCurveType,
		apperr.ErrCodeInvalidSmoothing, apperr.ErrCodeInvalidFormat, apperr.ErrCodeInvalidPath,
		apperr.ErrCodeLengthMismatch:
		return exitUsage
	case apperr.ErrCodeNotFound, apperr.ErrCodeFileNotFound:
		return exitNotFound
	}
	return exitError
}

func run(ctx context.Context) error {
	var verbose bool

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.SilenceErrors = true // printed once by main

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	originalPreRun := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level := cli.LogInfo
		if verbose {
			level = cli.LogDebug
		}
		c.SetLogLevel(level)

		if originalPreRun != nil {
			return originalPreRun(cmd, args)
		}
		return nil
	}

	return root.ExecuteContext(ctx)
}
