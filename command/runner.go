package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
)

var ErrSpawnFailure = errors.New("spawning command failed")

// Runner starts the program at path with argv and waits for it to exit.
// stdout must be attached before the program image runs.
type Runner interface {
	Run(ctx context.Context, path string, argv []string, stdout, stderr io.Writer) (exitCode int, err error)
}

// ExecRunner runs programs on the local host with os/exec.
// When stdout is an *os.File the child inherits the descriptor directly as fd 1.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, path string, argv []string, stdout, stderr io.Writer) (int, error) {
	cmd := exec.CommandContext(ctx, path)
	// argv[0] is the name the caller typed, not the resolved path
	cmd.Args = argv
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Start()
	if err != nil {
		return -1, fmt.Errorf("%w: %s: %s", ErrSpawnFailure, path, err)
	}

	err = cmd.Wait()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("waiting for %s: %w", path, err)
}
