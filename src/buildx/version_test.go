package buildx

import (
	"testing"

	"github.com/Masterminds/semver/v3"
)

func mustVersion(t *testing.T, s string) *semver.Version {
	t.Helper()
	v, err := semver.NewVersion(s)
	if err != nil {
		t.Fatalf("parsing %q: %v", s, err)
	}
	return v
}

func TestParseVersion(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"release", "github.com/docker/buildx v0.4.1 bda4882a65349ca359216b135896bddc1d92461c", "0.4.1"},
		{"tech preview", "github.com/docker/buildx v0.4.1-tp-docker 6db68d029599c6710a32aa7adcba8e5a344795a7", "0.4.1"},
		{"no v prefix", "buildx 0.12.0 deadbeef", "0.12.0"},
		{"trailing newline", "github.com/docker/buildx v0.3.0 c967f1d\n", "0.3.0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := ParseVersion(tc.raw)
			if err != nil {
				t.Fatalf("ParseVersion(%q): %v", tc.raw, err)
			}
			if v.String() != tc.want {
				t.Errorf("got %s, want %s", v, tc.want)
			}
		})
	}
}

func TestParseVersionMalformed(t *testing.T) {
	for _, raw := range []string{"", "buildx", "github.com/docker/buildx"} {
		if _, err := ParseVersion(raw); err == nil {
			t.Errorf("ParseVersion(%q): expected error", raw)
		}
	}
}

func TestSatisfiesBoundaries(t *testing.T) {
	cases := []struct {
		version    string
		constraint string
		want       bool
	}{
		{"0.3.0", ">= 0.3.0", true},
		{"0.2.2", ">= 0.3.0", false},
		{"0.4.0", ">= 0.4.0", true},
		{"0.3.9", ">= 0.4.0", false},
		{"1.0.0", ">= 0.4.0", true},
	}
	for _, tc := range cases {
		v := mustVersion(t, tc.version)
		if got := Satisfies(v, tc.constraint); got != tc.want {
			t.Errorf("Satisfies(%s, %q) = %v, want %v", tc.version, tc.constraint, got, tc.want)
		}
	}
}

func TestSupports(t *testing.T) {
	old := mustVersion(t, "0.2.0")
	mid := mustVersion(t, "0.3.0")
	current := mustVersion(t, "0.4.2")

	if Supports(old, FeatureDriverOpts) {
		t.Error("0.2.0 must not support driver opts")
	}
	if !Supports(mid, FeatureDriverOpts) {
		t.Error("0.3.0 must support driver opts")
	}
	if Supports(mid, FeatureNamedBootstrap) {
		t.Error("0.3.0 must not support named bootstrap")
	}
	if !Supports(current, FeatureNamedBootstrap) {
		t.Error("0.4.2 must support named bootstrap")
	}
	if Supports(nil, FeatureDriverOpts) {
		t.Error("nil version must not support anything")
	}
}
