package ghactions

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestInputNormalization(t *testing.T) {
	t.Setenv("INPUT_DRIVER-OPTS", "  image=x  ")
	if got := Input("driver-opts"); got != "image=x" {
		t.Errorf("Input = %q", got)
	}
	if got := Input("missing"); got != "" {
		t.Errorf("unset input = %q", got)
	}
}

func TestBoolInputExactLiteral(t *testing.T) {
	cases := map[string]bool{
		"true":  true,
		"TRUE":  false,
		"True":  false,
		"1":     false,
		"false": false,
		"":      false,
	}
	for value, want := range cases {
		t.Setenv("INPUT_USE", value)
		if got := BoolInput("use"); got != want {
			t.Errorf("BoolInput(%q) = %v, want %v", value, got, want)
		}
	}
}

func TestListInput(t *testing.T) {
	t.Setenv("INPUT_OPTS", "a=1\n\n  b=2\n")
	want := []string{"a=1", "b=2"}
	if got := ListInput("opts"); !reflect.DeepEqual(got, want) {
		t.Errorf("ListInput = %v, want %v", got, want)
	}
}

func TestSetOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output")
	t.Setenv("GITHUB_OUTPUT", path)

	if err := SetOutput("name", "builder-abc"); err != nil {
		t.Fatalf("SetOutput: %v", err)
	}
	if err := SetOutput("platforms", "linux/amd64\nlinux/arm64"); err != nil {
		t.Fatalf("SetOutput multiline: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "name=builder-abc\n") {
		t.Errorf("missing plain entry:\n%s", content)
	}
	if !strings.Contains(content, "platforms<<") || !strings.Contains(content, "linux/arm64") {
		t.Errorf("missing heredoc entry:\n%s", content)
	}
}

func TestSetOutputDelimiterCollision(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output")
	t.Setenv("GITHUB_OUTPUT", path)

	// A value carrying delimiter-looking text must not terminate the
	// heredoc early.
	value := "first line\nghadelimiter_payload\nlast line"
	if err := SetOutput("notes", value); err != nil {
		t.Fatalf("SetOutput: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output file: %v", err)
	}
	lines := strings.Split(string(data), "\n")
	if !strings.HasPrefix(lines[0], "notes<<") {
		t.Fatalf("unexpected header %q", lines[0])
	}
	delim := strings.TrimPrefix(lines[0], "notes<<")

	for _, valueLine := range strings.Split(value, "\n") {
		if valueLine == delim {
			t.Fatalf("delimiter %q collides with the value", delim)
		}
	}
	if body := strings.Join(lines[1:4], "\n"); body != value {
		t.Errorf("value corrupted: %q", body)
	}
	if lines[4] != delim {
		t.Errorf("missing closing delimiter, got %q", lines[4])
	}
}

func TestWarningEscapesNewlines(t *testing.T) {
	t.Setenv("GITHUB_ACTIONS", "true")
	var buf bytes.Buffer
	old := Stdout
	Stdout = &buf
	defer func() { Stdout = old }()

	Warningf("line one\nline two")
	if got := buf.String(); got != "::warning::line one%0Aline two\n" {
		t.Errorf("got %q", got)
	}
}

func TestGroupOutsideActionsIsSilent(t *testing.T) {
	t.Setenv("GITHUB_ACTIONS", "")
	var buf bytes.Buffer
	old := Stdout
	Stdout = &buf
	defer func() { Stdout = old }()

	Group("Creating builder")
	EndGroup()
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}
