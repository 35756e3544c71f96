// Package ghactions implements the slice of the GitHub Actions runner
// protocol this tool needs: declared inputs, structured outputs, the
// cross-phase state file, and log workflow commands (groups, warnings).
package ghactions

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Stdout is where workflow commands are written. Overridable in tests.
var Stdout io.Writer = os.Stdout

// IsActions reports whether the process runs inside a GitHub Actions job.
func IsActions() bool {
	return os.Getenv("GITHUB_ACTIONS") == "true"
}

// Input returns the declared input value for name, or "" when unset.
// The runner exposes inputs as INPUT_<NAME> environment variables.
func Input(name string) string {
	key := "INPUT_" + strings.ToUpper(strings.ReplaceAll(name, " ", "_"))
	return strings.TrimSpace(os.Getenv(key))
}

// BoolInput returns true only for the exact literal "true".
// Anything else, including "TRUE" and "1", is false.
func BoolInput(name string) bool {
	return Input(name) == "true"
}

// ListInput splits a newline-delimited input into trimmed non-empty items.
func ListInput(name string) []string {
	var items []string
	for _, line := range strings.Split(Input(name), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			items = append(items, line)
		}
	}
	return items
}

// SetOutput publishes a named output value for downstream job steps.
// Values go to the GITHUB_OUTPUT file when the runner provides one,
// falling back to the legacy set-output workflow command.
func SetOutput(name, value string) error {
	if path := os.Getenv("GITHUB_OUTPUT"); path != "" {
		return appendCommandFile(path, name, value)
	}
	fmt.Fprintf(Stdout, "::set-output name=%s::%s\n", name, escapeData(value))
	return nil
}

// Group opens a collapsible log group. No-op outside Actions.
func Group(name string) {
	if !IsActions() {
		return
	}
	fmt.Fprintf(Stdout, "::group::%s\n", escapeData(name))
}

// EndGroup closes the current log group. No-op outside Actions.
func EndGroup() {
	if !IsActions() {
		return
	}
	fmt.Fprintln(Stdout, "::endgroup::")
}

// Warningf emits a warning annotation visible in the job summary.
func Warningf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if IsActions() {
		fmt.Fprintf(Stdout, "::warning::%s\n", escapeData(msg))
		return
	}
	fmt.Fprintf(Stdout, "warning: %s\n", msg)
}

// appendCommandFile appends a name=value entry to a runner command file,
// using the heredoc form when the value spans multiple lines.
func appendCommandFile(path, name, value string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var entry string
	if strings.Contains(value, "\n") {
		// A random delimiter keeps a value that happens to contain the
		// delimiter text from terminating the heredoc early.
		delim := "ghadelimiter_" + uuid.NewString()
		entry = fmt.Sprintf("%s<<%s\n%s\n%s\n", name, delim, value, delim)
	} else {
		entry = fmt.Sprintf("%s=%s\n", name, value)
	}

	if _, err := f.WriteString(entry); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// escapeData escapes a workflow command payload per the runner's rules.
func escapeData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	s = strings.ReplaceAll(s, "\n", "%0A")
	return s
}
