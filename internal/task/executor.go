// Package task runs compile and run commands on a background goroutine and
// reports their results through the console sink. It owns the single-flight
// guard that keeps at most one task in flight.
package task

import (
	"bytes"
	"errors"
	"os/exec"
	"time"

	"github.com/dshills/buildpad/internal/toolchain"
)

// Result is the captured outcome of one child process.
//
// A non-zero exit code is a normal result, not an error: Err is set only
// for spawn-level failures (missing executable, permission denied).
type Result struct {
	// Stdout is the full captured standard output.
	Stdout string

	// Stderr is the full captured standard error.
	Stderr string

	// ExitCode is the raw exit code, or -1 when the process never ran.
	ExitCode int

	// Err is the spawn-level execution error, if any.
	Err error

	// Duration is the wall time from spawn to exit.
	Duration time.Duration
}

// OK reports whether the process ran and exited zero.
func (r Result) OK() bool {
	return r.Err == nil && r.ExitCode == 0
}

// Execute spawns one child process and waits for it to finish, capturing
// both streams fully. No timeout is applied and cancellation is not
// supported: a hung child blocks its owning background task. Output
// volumes here are small, so full buffering is acceptable.
func Execute(cmd toolchain.Command) Result {
	var stdout, stderr bytes.Buffer

	proc := exec.Command(cmd.Argv[0], cmd.Argv[1:]...)
	proc.Dir = cmd.Dir
	proc.Stdout = &stdout
	proc.Stderr = &stderr

	start := time.Now()
	err := proc.Run()
	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err == nil {
		return res
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// Process ran and exited non-zero: a normal result.
		res.ExitCode = exitErr.ExitCode()
		return res
	}

	// The process never started.
	res.ExitCode = -1
	res.Err = err
	return res
}
