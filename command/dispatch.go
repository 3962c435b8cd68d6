package command

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
)

var ErrEmptyCommand = errors.New("command and arguments cannot be empty")

// Result describes a command that ran to completion.
type Result struct {
	// Path is the resolved program that was executed.
	Path     string
	Argv     []string
	ExitCode int
}

// Tokenize splits a command line into an argument vector on runs of whitespace.
func Tokenize(line string) []string {
	return strings.Fields(line)
}

// Dispatcher turns a command line into a child process whose stdout is a caller-supplied writer.
// There is no allow-list: anything resolvable in SearchPath is executed.
type Dispatcher struct {
	SearchPath string
	// Runner defaults to ExecRunner.
	Runner Runner
	// Stderr receives the child's stderr. Nil discards it.
	Stderr io.Writer
	Log    *zap.SugaredLogger
}

func NewDispatcher(log *zap.SugaredLogger, searchPath string) *Dispatcher {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Dispatcher{
		SearchPath: searchPath,
		Runner:     ExecRunner{},
		Stderr:     os.Stderr,
		Log:        log.Named("dispatcher"),
	}
}

// Execute tokenizes line, resolves its first token and runs it with stdout attached to stdout,
// blocking until the child exits. A non-zero exit is reported in the Result, not as an error.
func (d *Dispatcher) Execute(ctx context.Context, line string, stdout io.Writer) (*Result, error) {
	log := d.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	runner := d.Runner
	if runner == nil {
		runner = ExecRunner{}
	}

	argv := Tokenize(line)
	if len(argv) == 0 {
		return nil, ErrEmptyCommand
	}

	path, err := Resolve(argv[0], d.SearchPath)
	if err != nil {
		log.Debugw("resolve failed", "Command", argv[0], "SearchPath", d.SearchPath)
		return nil, err
	}
	log.Debugw("resolved command", "Command", argv[0], "Path", path, "Argv", argv)

	exitCode, err := runner.Run(ctx, path, argv, stdout, d.Stderr)
	if err != nil {
		return nil, err
	}
	log.Debugw("command exited", "Path", path, "ExitCode", exitCode)

	return &Result{Path: path, Argv: argv, ExitCode: exitCode}, nil
}

// Diagnostic is the line written back to the client when err stopped a command from running,
// or "" when err is not one the client should see.
func Diagnostic(line string, err error) string {
	switch {
	case errors.Is(err, ErrEmptyCommand):
		return "Command and arguments cannot be empty\n"
	case errors.Is(err, ErrNotFound):
		argv := Tokenize(line)
		if len(argv) > 0 {
			return argv[0] + " command is not found in path\n"
		}
	}
	return ""
}
