// Package runner is the Task Runner component: it spawns a shell subprocess
// for a task's command, streams its stdout/stderr line by line to a
// colorized, task-prefixed console, and reports the exit status.
package runner

import (
	"io"
	"os"
	"os/exec"
	"runtime"

	"github.com/pkg/errors"

	"github.com/Miosp/Tessy/internal/colorcache"
	"github.com/Miosp/Tessy/internal/logstreamer"
	"github.com/Miosp/Tessy/internal/task"
)

// Runner spawns task commands through the platform shell. It implements
// task.Runner.
type Runner struct {
	colors *colorcache.Cache
	stdout io.Writer
}

// New returns a Runner that writes colorized, prefixed lines to stdout.
func New(colors *colorcache.Cache) *Runner {
	return &Runner{colors: colors, stdout: os.Stdout}
}

var _ task.Runner = (*Runner)(nil)

// shellCommand returns the platform shell invocation for command: `sh -c` on
// Unix-family systems, `cmd /C` on Windows-family systems.
func shellCommand(command string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.Command("cmd", "/C", command)
	}
	return exec.Command("sh", "-c", command)
}

// Run spawns command under the platform shell, streams both of its pipes
// line-by-line under the colorized "[id]: " prefix, and blocks until it
// exits. A non-zero exit is returned as an *UnsuccessfulExecution; a
// spawn/wait I/O failure is returned as an *ExecutionError.
func (r *Runner) Run(id task.ID, command string) error {
	cmd := shellCommand(command)

	prefix := r.colors.Prefix(id)
	stdout := logstreamer.New(r.stdout, prefix)
	stderr := logstreamer.New(r.stdout, prefix)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return &ExecutionError{TaskID: id, Command: command, Cause: errors.Wrap(err, "spawn")}
	}

	waitErr := cmd.Wait()
	_ = stdout.Close()
	_ = stderr.Close()

	if waitErr != nil {
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			return &UnsuccessfulExecution{
				TaskID:   id,
				Command:  command,
				ExitCode: exitErr.ExitCode(),
			}
		}
		return &ExecutionError{TaskID: id, Command: command, Cause: errors.Wrap(waitErr, "wait")}
	}

	return nil
}
