package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/panekj/setup-buildx-action/src/ghactions"
)

var (
	debug        bool
	defaultsFile string
)

var rootCmd = &cobra.Command{
	Use:   "setup-buildx",
	Short: "Provision docker buildx builders in CI jobs",
	Long: `setup-buildx provisions a docker buildx builder for the current CI job
and tears it down again in the job's post phase.

Run without a subcommand it dispatches on the runner's phase marker:
the first invocation performs setup, the second performs cleanup.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogging()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Single entry point for both runner phases.
		if ghactions.IsPost() {
			return runCleanup(cmd, args)
		}
		return runSetup(cmd, args)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "verbose diagnostics and BuildKit log capture")
	rootCmd.PersistentFlags().StringVar(&defaultsFile, "defaults", "", "defaults file (default: .buildx-setup.yml)")
}

func initLogging() {
	level := slog.LevelInfo
	if debugEnabled() {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// debugEnabled reports whether the caller's own debug mode is active,
// either via the --debug flag or the runner's debug toggle.
func debugEnabled() bool {
	return debug || os.Getenv("RUNNER_DEBUG") == "1"
}

// Execute runs the root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}
