package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/panekj/setup-buildx-action/src/buildx"
	"github.com/panekj/setup-buildx-action/src/execx"
	"github.com/panekj/setup-buildx-action/src/ghactions"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Tear down the builder created during setup",
	Long: `Removes the builder recorded in the runner state and, when debug was
active, dumps the BuildKit container logs first. Cleanup is best-effort
housekeeping: failures are downgraded to warnings and never fail the job.`,
	RunE: runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cleanup(cmd.Context(), execx.NewRunner(debugEnabled()), ghactions.LoadBuilderState())
	return nil
}

// cleanup tears down what setup recorded. With no persisted builder name
// it issues zero commands. Every command runs with failure-ignoring
// semantics so one failed step never blocks the next.
func cleanup(ctx context.Context, runner *execx.Runner, state ghactions.BuilderState) {
	if state.BuilderName == "" {
		slog.Info("no builder state recorded, nothing to clean up")
		return
	}

	if state.Debug && state.ContainerName != "" {
		ghactions.Group("BuildKit container logs")
		res := runner.RunIgnoreErr(ctx, "docker", "logs", state.ContainerName)
		ghactions.EndGroup()
		if !res.Success() {
			ghactions.Warningf("could not fetch logs from %s: %s", state.ContainerName, firstLine(res.Stderr))
		}
	}

	// The post phase never resolves a tool version; removal is not
	// capability-gated, so a version-less client is fine here.
	slog.Info("removing builder", "name", state.BuilderName)
	res := buildx.NewClient(runner, nil).Remove(ctx, state.BuilderName)
	if !res.Success() {
		ghactions.Warningf("could not remove builder %s: %s", state.BuilderName, firstLine(res.Stderr))
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
