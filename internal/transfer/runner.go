package transfer

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
)

// Runner executes an external command and returns its exit status together
// with the combined standard output and standard error.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (int, string)
}

// ExecRunner runs commands on the operating system.
type ExecRunner struct {
	Log *slog.Logger
}

// Run executes the command and captures combined output. Environment errors
// (missing or unexecutable binary) are logged and reported as a failed
// invocation rather than raised: the caller treats them like any other
// failed transfer.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (int, string) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	output := string(out)

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), output
		}
		if r.Log != nil {
			r.Log.Error("command execution failed", "command", name, "error", err)
		}
		return -1, output + err.Error()
	}
	return 0, output
}
