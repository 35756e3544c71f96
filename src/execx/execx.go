// Package execx runs external commands with captured output. Two execution
// policies are exposed: Run fails on non-zero exit (setup phase), and
// RunIgnoreErr never fails (cleanup phase), so the call site states which
// policy applies.
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Result holds the captured outcome of one command invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Success reports whether the command exited zero.
func (r *Result) Success() bool {
	return r.ExitCode == 0
}

// ExitError is returned by Run when a command exits non-zero.
type ExitError struct {
	Cmd      string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		msg = "no stderr output"
	}
	return fmt.Sprintf("%s exited with code %d: %s", e.Cmd, e.ExitCode, msg)
}

// Runner executes external commands. Output is streamed to Stdout/Stderr
// while also being buffered into the returned Result, so callers can both
// watch progress in CI logs and parse the text afterwards.
type Runner struct {
	Verbose bool
	Stdout  io.Writer
	Stderr  io.Writer
}

// NewRunner creates a Runner wired to the process output streams.
func NewRunner(verbose bool) *Runner {
	return &Runner{
		Verbose: verbose,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// Run executes name with args and fails on non-zero exit. The returned
// error is an *ExitError carrying the buffered stderr.
func (r *Runner) Run(ctx context.Context, name string, args ...string) (*Result, error) {
	res, err := r.exec(ctx, name, args)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, &ExitError{
			Cmd:      fmt.Sprintf("%s %s", name, strings.Join(args, " ")),
			ExitCode: res.ExitCode,
			Stderr:   res.Stderr,
		}
	}
	return res, nil
}

// RunIgnoreErr executes name with args and always returns a Result, even
// when the command cannot be started. Cleanup code uses this so one failed
// teardown step never blocks the next.
func (r *Runner) RunIgnoreErr(ctx context.Context, name string, args ...string) *Result {
	res, err := r.exec(ctx, name, args)
	if err != nil {
		return &Result{Stderr: err.Error(), ExitCode: -1}
	}
	return res
}

// RunQuiet executes name with args without streaming, for probe commands
// whose output is only inspected programmatically.
func (r *Runner) RunQuiet(ctx context.Context, name string, args ...string) (*Result, error) {
	quiet := &Runner{Verbose: r.Verbose, Stdout: io.Discard, Stderr: io.Discard}
	res, err := quiet.exec(ctx, name, args)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Runner) exec(ctx context.Context, name string, args []string) (*Result, error) {
	if r.Verbose {
		fmt.Fprintf(r.stderr(), "exec: %s %s\n", name, strings.Join(args, " "))
	}

	var outBuf, errBuf bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = io.MultiWriter(r.stdout(), &outBuf)
	cmd.Stderr = io.MultiWriter(r.stderr(), &errBuf)

	err := cmd.Run()
	res := &Result{
		Stdout: outBuf.String(),
		Stderr: errBuf.String(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return nil, fmt.Errorf("running %s: %w", name, err)
	}
	return res, nil
}

func (r *Runner) stdout() io.Writer {
	if r.Stdout != nil {
		return r.Stdout
	}
	return os.Stdout
}

func (r *Runner) stderr() io.Writer {
	if r.Stderr != nil {
		return r.Stderr
	}
	return os.Stderr
}
