package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/panekj/setup-buildx-action/src/buildx"
	"github.com/panekj/setup-buildx-action/src/config"
	"github.com/panekj/setup-buildx-action/src/execx"
	"github.com/panekj/setup-buildx-action/src/ghactions"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Provision a buildx builder for this job",
	Long: `Ensures a compatible buildx binary is installed, creates a builder with
the requested driver, boots it, and publishes its inspected capabilities
as job outputs. Identifiers needed by the post phase are persisted to the
runner state.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if runtime.GOOS != "linux" {
		return fmt.Errorf("setup-buildx only supports linux runners, not %s", runtime.GOOS)
	}

	// Mark the phase boundary first so even a failed setup routes the
	// second invocation into cleanup.
	if err := ghactions.MarkPost(); err != nil {
		return fmt.Errorf("marking post phase: %w", err)
	}

	defaults, err := config.LoadDefaults(defaultsFile)
	if err != nil {
		return fmt.Errorf("loading defaults: %w", err)
	}
	in, err := config.Resolve(defaults)
	if err != nil {
		return err
	}
	if in.ConfigFile != "" {
		if err := config.ValidateBuildkitdConfig(in.ConfigFile); err != nil {
			return err
		}
	}

	runner := execx.NewRunner(debugEnabled())

	ghactions.Group("Ensuring buildx is available")
	err = buildx.Ensure(ctx, runner, in.Version, dockerConfigHome())
	ghactions.EndGroup()
	if err != nil {
		return err
	}

	v, err := buildx.ResolveVersion(ctx, runner)
	if err != nil {
		return err
	}
	slog.Info("using buildx", "version", v.String())

	client := buildx.NewClient(runner, v)
	name := in.BuilderName

	if !ownsBuilder(in.Driver) {
		// The docker driver is the implicit default: nothing to create
		// or boot, and cleanup owns nothing.
		name = buildx.DefaultBuilderName
	} else {
		ghactions.Group("Creating builder " + name)
		err = client.Create(ctx, buildx.CreateOpts{
			Name:           name,
			Driver:         in.Driver,
			DriverOpts:     in.DriverOpts,
			BuildkitdFlags: in.BuildkitdFlags,
			Endpoint:       in.Endpoint,
			ConfigFile:     in.ConfigFile,
			Use:            in.Use,
		})
		ghactions.EndGroup()
		if err != nil {
			return err
		}

		ghactions.Group("Booting builder " + name)
		err = client.Boot(ctx, name)
		ghactions.EndGroup()
		if err != nil {
			return err
		}
	}

	if in.Install {
		ghactions.Group("Setting buildx as default builder")
		err = client.InstallDefault(ctx)
		ghactions.EndGroup()
		if err != nil {
			return err
		}
	}

	builder, err := client.Inspect(ctx, name)
	if err != nil {
		return err
	}

	if ownsBuilder(in.Driver) {
		if err := builderState(name, in.Driver, debugEnabled(), builder).Save(); err != nil {
			return fmt.Errorf("saving builder state: %w", err)
		}
	}

	return writeOutputs(builder)
}

// builderState records the identifiers cleanup needs. The debug decision
// is made here, once: the caller's own debug mode or a debug marker in
// the inspected node flags turns it on. Cleanup trusts it verbatim and
// never re-inspects.
func builderState(name, driver string, callerDebug bool, b *buildx.Builder) ghactions.BuilderState {
	state := ghactions.BuilderState{
		BuilderName: name,
		Debug:       callerDebug || b.HasDebugFlag(),
	}
	if driver == "docker-container" {
		state.ContainerName = buildx.ContainerName(name)
	}
	return state
}

// ownsBuilder reports whether setup creates a builder that cleanup must
// later remove. The docker driver uses the daemon's implicit builder.
func ownsBuilder(driver string) bool {
	return driver != buildx.DriverDocker
}

// writeOutputs publishes the inspected builder as job outputs.
func writeOutputs(b *buildx.Builder) error {
	outputs := []struct{ name, value string }{
		{"name", b.Name},
		{"driver", b.Driver},
		{"endpoint", b.Endpoint},
		{"status", b.Status},
		{"flags", b.Flags},
		{"platforms", strings.Join(b.Platforms, ",")},
	}
	for _, o := range outputs {
		if err := ghactions.SetOutput(o.name, o.value); err != nil {
			return fmt.Errorf("writing output %s: %w", o.name, err)
		}
	}
	return nil
}

// dockerConfigHome returns the docker configuration directory, honoring
// the DOCKER_CONFIG override.
func dockerConfigHome() string {
	if dir := os.Getenv("DOCKER_CONFIG"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".docker"
	}
	return filepath.Join(home, ".docker")
}
