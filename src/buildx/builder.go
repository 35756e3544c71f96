package buildx

import (
	"context"
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/panekj/setup-buildx-action/src/execx"
)

// DriverDocker is the implicit default driver. It has no builder of its
// own to create, boot, or remove.
const DriverDocker = "docker"

// DefaultBuilderName is the well-known identifier the docker driver
// collapses to.
const DefaultBuilderName = "default"

// ContainerName returns the BuildKit container backing a docker-container
// builder's first node.
func ContainerName(builder string) string {
	return "buildx_buildkit_" + builder + "0"
}

// CreateOpts describes one `buildx create` invocation. Driver determines
// which of the remaining fields are meaningful.
type CreateOpts struct {
	Name           string
	Driver         string
	DriverOpts     []string // ordered key=value pairs
	BuildkitdFlags string   // opaque flag string handed to buildkitd
	Endpoint       string   // positional connection target, not a flag
	ConfigFile     string   // buildkitd config path
	Use            bool     // mark this builder as the active one
}

// Client drives builder lifecycle commands for one resolved buildx
// version. The version pins which flags may legally be emitted.
type Client struct {
	Runner  *execx.Runner
	Version *semver.Version
}

// NewClient creates a lifecycle client for the given resolved version.
func NewClient(runner *execx.Runner, version *semver.Version) *Client {
	return &Client{Runner: runner, Version: version}
}

// Create creates the named builder. Non-zero exit is fatal.
func (c *Client) Create(ctx context.Context, opts CreateOpts) error {
	if _, err := c.Runner.Run(ctx, "docker", c.createArgs(opts)...); err != nil {
		return fmt.Errorf("creating builder %s: %w", opts.Name, err)
	}
	return nil
}

// createArgs constructs the `buildx create` argument list. Driver options
// and buildkitd flags only appear when the installed version understands
// them; on older versions they are silently dropped rather than failing.
func (c *Client) createArgs(opts CreateOpts) []string {
	args := []string{"buildx", "create", "--name", opts.Name, "--driver", opts.Driver}

	if Supports(c.Version, FeatureDriverOpts) {
		// One flag pair per option, input order preserved.
		for _, opt := range opts.DriverOpts {
			args = append(args, "--driver-opt", opt)
		}
	}
	if Supports(c.Version, FeatureBuildkitdFlags) && opts.BuildkitdFlags != "" {
		args = append(args, "--buildkitd-flags", opts.BuildkitdFlags)
	}
	if opts.Use {
		args = append(args, "--use")
	}
	if opts.ConfigFile != "" {
		args = append(args, "--config", opts.ConfigFile)
	}

	// Driver endpoints are positional, not named; always last.
	if opts.Endpoint != "" {
		args = append(args, opts.Endpoint)
	}

	return args
}

// Boot starts the builder's backing BuildKit engine via inspect
// --bootstrap. Non-zero exit is fatal.
func (c *Client) Boot(ctx context.Context, name string) error {
	if _, err := c.Runner.Run(ctx, "docker", c.bootArgs(name)...); err != nil {
		return fmt.Errorf("booting builder %s: %w", name, err)
	}
	return nil
}

// bootArgs constructs the bootstrap argument list. Only newer versions
// accept an explicit builder name; older ones bootstrap the current
// builder implicitly.
func (c *Client) bootArgs(name string) []string {
	args := []string{"buildx", "inspect", "--bootstrap"}
	if Supports(c.Version, FeatureNamedBootstrap) {
		args = append(args, name)
	}
	return args
}

// InstallDefault registers buildx as the default `docker build` command.
func (c *Client) InstallDefault(ctx context.Context) error {
	if _, err := c.Runner.Run(ctx, "docker", "buildx", "install"); err != nil {
		return fmt.Errorf("installing buildx as default build command: %w", err)
	}
	return nil
}

// Inspect queries the named builder and parses its report.
func (c *Client) Inspect(ctx context.Context, name string) (*Builder, error) {
	res, err := c.Runner.Run(ctx, "docker", "buildx", "inspect", name)
	if err != nil {
		return nil, fmt.Errorf("inspecting builder %s: %w", name, err)
	}
	return ParseInspect(res.Stdout)
}

// Remove tears down the named builder. Best-effort: the result is returned
// for the caller to warn on, never an error. Used only in the post phase.
func (c *Client) Remove(ctx context.Context, name string) *execx.Result {
	return c.Runner.RunIgnoreErr(ctx, "docker", "buildx", "rm", name)
}
