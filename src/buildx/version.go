package buildx

import (
	"context"
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"

	"github.com/panekj/setup-buildx-action/src/execx"
)

// ErrVersionParse is returned when no semantic version can be extracted
// from the tool's version report.
var ErrVersionParse = fmt.Errorf("no semantic version found in buildx version output")

// versionRe matches the embedded semver inside buildx version output.
// The raw string is not bare semver — it carries the module path and build
// metadata, e.g. "github.com/docker/buildx v0.4.1-tp-docker 6db68d0299".
var versionRe = regexp.MustCompile(`v?(\d+\.\d+\.\d+)`)

// ResolveVersion invokes the installed buildx plugin and extracts its
// semantic version from the report output.
func ResolveVersion(ctx context.Context, runner *execx.Runner) (*semver.Version, error) {
	res, err := runner.RunQuiet(ctx, "docker", "buildx", "version")
	if err != nil {
		return nil, fmt.Errorf("querying buildx version: %w", err)
	}
	if !res.Success() {
		return nil, fmt.Errorf("querying buildx version: exit code %d", res.ExitCode)
	}
	return ParseVersion(res.Stdout)
}

// ParseVersion extracts the embedded semantic version from a raw buildx
// version string, tolerating leading prefixes and trailing metadata.
func ParseVersion(raw string) (*semver.Version, error) {
	m := versionRe.FindStringSubmatch(raw)
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrVersionParse, raw)
	}
	v, err := semver.NewVersion(m[1])
	if err != nil {
		return nil, fmt.Errorf("parsing version %q: %w", m[1], err)
	}
	return v, nil
}

// Feature identifies a buildx capability whose command-line surface only
// exists from a minimum tool version onward.
type Feature int

const (
	// FeatureDriverOpts: `buildx create --driver-opt`.
	FeatureDriverOpts Feature = iota
	// FeatureBuildkitdFlags: `buildx create --buildkitd-flags`.
	FeatureBuildkitdFlags
	// FeatureNamedBootstrap: passing an explicit builder name to
	// `buildx inspect --bootstrap`. Older versions bootstrap the
	// current builder only.
	FeatureNamedBootstrap
)

// featureGates maps each capability to its minimum-version constraint.
// New gates are added here as data, not as conditionals at call sites.
var featureGates = map[Feature]string{
	FeatureDriverOpts:     ">= 0.3.0",
	FeatureBuildkitdFlags: ">= 0.3.0",
	FeatureNamedBootstrap: ">= 0.4.0",
}

// Supports reports whether version v carries the given capability. This is
// the sole gate for emitting newer command-line flags.
func Supports(v *semver.Version, f Feature) bool {
	expr, ok := featureGates[f]
	if !ok || v == nil {
		return false
	}
	return Satisfies(v, expr)
}

// Satisfies reports whether v meets the constraint expression, e.g.
// ">= 0.3.0". A malformed expression never satisfies.
func Satisfies(v *semver.Version, constraint string) bool {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false
	}
	return c.Check(v)
}
