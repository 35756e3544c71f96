package cmd

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/panekj/setup-buildx-action/src/execx"
	"github.com/panekj/setup-buildx-action/src/ghactions"
)

func captureWarnings(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := ghactions.Stdout
	ghactions.Stdout = &buf
	t.Cleanup(func() { ghactions.Stdout = old })
	return &buf
}

func TestCleanupWithoutStateIssuesNoCommands(t *testing.T) {
	buf := captureWarnings(t)

	// A runner with no usable command on PATH would fail loudly if any
	// command were issued.
	runner := &execx.Runner{Stdout: io.Discard, Stderr: io.Discard}
	cleanup(context.Background(), runner, ghactions.BuilderState{})

	if strings.Contains(buf.String(), "warning") {
		t.Errorf("empty state must be silent, got %q", buf.String())
	}
}

func TestCleanupDowngradesFailuresToWarnings(t *testing.T) {
	t.Setenv("GITHUB_ACTIONS", "")
	buf := captureWarnings(t)

	runner := &execx.Runner{Stdout: io.Discard, Stderr: io.Discard}
	state := ghactions.BuilderState{
		BuilderName:   "builder-gone",
		ContainerName: "buildx_buildkit_builder-gone0",
		Debug:         true,
	}

	// No docker daemon in the test environment: both the log dump and the
	// removal fail, and cleanup must still return normally.
	cleanup(context.Background(), runner, state)

	out := buf.String()
	if !strings.Contains(out, "could not remove builder builder-gone") {
		t.Errorf("expected a removal warning, got %q", out)
	}
}
