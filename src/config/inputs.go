// Package config resolves caller inputs for a builder setup run. Inputs
// arrive as declared CI inputs (plain key/value text, coerced at this
// boundary) with an optional YAML defaults file underneath for local runs.
package config

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/panekj/setup-buildx-action/src/ghactions"
)

// DefaultBuildkitdFlags is applied for container-backed drivers when the
// caller sets none. The entitlements mirror what CI build jobs commonly
// need from BuildKit.
const DefaultBuildkitdFlags = "--allow-insecure-entitlement security.insecure --allow-insecure-entitlement network.host"

// Drivers is the closed set of accepted builder drivers.
var Drivers = []string{"docker", "docker-container", "kubernetes", "remote"}

// Inputs is the immutable description of the desired setup. Driver fully
// determines which of the other fields are semantically meaningful.
type Inputs struct {
	Version        string   // semver, "latest", or a git source URL
	Driver         string
	DriverOpts     []string // ordered key=value pairs
	BuildkitdFlags string
	Endpoint       string
	ConfigFile     string // buildkitd config path
	Use            bool
	Install        bool
	BuilderName    string // fully resolved builder name
}

// Resolve reads declared inputs layered over file defaults and validates
// them. Booleans are coerced from the exact literal "true", lists from
// newline-delimited text.
func Resolve(defaults *Defaults) (*Inputs, error) {
	if defaults == nil {
		defaults = &Defaults{}
	}

	in := &Inputs{
		Version:        pick(ghactions.Input("version"), defaults.Version),
		Driver:         pick(ghactions.Input("driver"), defaults.Driver, "docker-container"),
		DriverOpts:     pickList(ghactions.ListInput("driver-opts"), defaults.DriverOpts),
		BuildkitdFlags: pick(ghactions.Input("buildkitd-flags"), defaults.BuildkitdFlags),
		Endpoint:       pick(ghactions.Input("endpoint"), defaults.Endpoint),
		ConfigFile:     pick(ghactions.Input("config"), defaults.Config),
		Use:            boolOr("use", defaults.Use),
		Install:        boolOr("install", defaults.Install),
	}

	if !validDriver(in.Driver) {
		return nil, fmt.Errorf("unknown driver %q (expected one of %s)", in.Driver, strings.Join(Drivers, ", "))
	}

	if in.BuildkitdFlags == "" && in.Driver == "docker-container" {
		in.BuildkitdFlags = DefaultBuildkitdFlags
	}

	in.BuilderName = builderName(ghactions.Input("name"))
	return in, nil
}

// builderName resolves the builder name from a caller-suggested suffix,
// falling back to a random identifier so parallel jobs never collide.
func builderName(suffix string) string {
	if suffix == "" {
		suffix = uuid.NewString()
	}
	return "builder-" + suffix
}

// boolOr coerces a boolean input from the case-sensitive "true" literal,
// deferring to the file default only when the input is entirely unset.
func boolOr(name string, def bool) bool {
	if ghactions.Input(name) == "" {
		return def
	}
	return ghactions.BoolInput(name)
}

func validDriver(driver string) bool {
	for _, d := range Drivers {
		if d == driver {
			return true
		}
	}
	return false
}

// pick returns the first non-empty value.
func pick(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func pickList(values ...[]string) []string {
	for _, v := range values {
		if len(v) > 0 {
			return v
		}
	}
	return nil
}
