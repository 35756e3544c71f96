package ghactions

import (
	"fmt"
	"os"
)

// State field names shared between the setup and post invocations.
const (
	stateIsPost      = "isPost"
	stateBuilderName = "builderName"
	stateContainer   = "containerName"
	stateDebug       = "debug"
)

// SaveState persists a value for the post-phase invocation of this job.
// It goes to the GITHUB_STATE file when available, otherwise to the legacy
// save-state workflow command.
func SaveState(name, value string) error {
	if path := os.Getenv("GITHUB_STATE"); path != "" {
		return appendCommandFile(path, name, value)
	}
	fmt.Fprintf(Stdout, "::save-state name=%s::%s\n", name, escapeData(value))
	return nil
}

// State reads back a value saved during the setup phase. The runner exposes
// saved state to the post invocation as STATE_<name> environment variables.
func State(name string) string {
	return os.Getenv("STATE_" + name)
}

// IsPost reports whether this invocation is the post (cleanup) phase.
// Setup marks the phase boundary with MarkPost; the runner replays that
// state into the environment of the second invocation.
func IsPost() bool {
	return State(stateIsPost) == "true"
}

// MarkPost records that the next invocation of this entry point is the
// post phase. Called exactly once, at the start of setup.
func MarkPost() error {
	return SaveState(stateIsPost, "true")
}

// BuilderState is the fixed set of identifiers handed from setup to
// cleanup. Debug is decided once during setup and trusted verbatim in the
// post phase; cleanup never re-inspects the builder.
type BuilderState struct {
	BuilderName   string
	ContainerName string
	Debug         bool
}

// Save persists the builder state for the post phase.
func (s BuilderState) Save() error {
	if err := SaveState(stateBuilderName, s.BuilderName); err != nil {
		return err
	}
	if s.ContainerName != "" {
		if err := SaveState(stateContainer, s.ContainerName); err != nil {
			return err
		}
	}
	if s.Debug {
		if err := SaveState(stateDebug, "true"); err != nil {
			return err
		}
	}
	return nil
}

// LoadBuilderState reads the persisted builder state in the post phase.
// Absent fields come back zero-valued; a zero BuilderName means setup
// created nothing that cleanup owns.
func LoadBuilderState() BuilderState {
	return BuilderState{
		BuilderName:   State(stateBuilderName),
		ContainerName: State(stateContainer),
		Debug:         State(stateDebug) == "true",
	}
}
