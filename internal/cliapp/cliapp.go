// Package cliapp holds what the client and server binaries share: flags,
// argument validation, config loading and logger construction.
package cliapp

import (
	"fmt"
	"os"

	"github.com/guseggert/ipcexec/internal/config"
	"github.com/guseggert/ipcexec/transport"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ArgumentError is a malformed invocation, reported before any I/O.
type ArgumentError struct {
	Msg string
}

func (e *ArgumentError) Error() string { return "invalid arguments: " + e.Msg }

func argErrorf(format string, args ...interface{}) error {
	return &ArgumentError{Msg: fmt.Sprintf(format, args...)}
}

// Flags returns the flags common to both binaries.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  string(transport.KindFIFO),
			Usage: "Exchange the command over the FIFO at this path.",
		},
		&cli.StringFlag{
			Name:  string(transport.KindDomain),
			Usage: "Exchange the command over the Unix domain socket at this path.",
		},
		&cli.StringFlag{
			Name:    "config",
			Usage:   "Path of a TOML config file. Defaults to the nearest " + config.FileName + " at or above the working directory.",
			EnvVars: []string{"IPCEXEC_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "One of [debug,info,warn,error]. Overrides the config file.",
			EnvVars: []string{"IPCEXEC_LOG_LEVEL"},
		},
	}
}

type Endpoint struct {
	Kind transport.Kind
	Path string
}

// ParseEndpoint validates the IPC kind, the path and the number of positional arguments.
func ParseEndpoint(ctx *cli.Context, wantArgs int) (Endpoint, error) {
	fifo := ctx.IsSet(string(transport.KindFIFO))
	domain := ctx.IsSet(string(transport.KindDomain))

	var ep Endpoint
	switch {
	case fifo && domain:
		return Endpoint{}, argErrorf("provide either -fifo or -domain, not both")
	case fifo:
		ep = Endpoint{Kind: transport.KindFIFO, Path: ctx.String(string(transport.KindFIFO))}
	case domain:
		ep = Endpoint{Kind: transport.KindDomain, Path: ctx.String(string(transport.KindDomain))}
	default:
		return Endpoint{}, argErrorf("provide either -fifo or -domain")
	}
	if ep.Path == "" {
		return Endpoint{}, argErrorf("provide a path for -%s", ep.Kind)
	}
	if ctx.NArg() != wantArgs {
		return Endpoint{}, argErrorf("expected %d positional argument(s), got %d", wantArgs, ctx.NArg())
	}
	return ep, nil
}

// Settings is everything a binary needs before it starts its driver.
type Settings struct {
	Endpoint
	Config     config.Config
	ConfigPath string
	Logger     *zap.Logger
}

// Setup validates the invocation, then loads config and builds the logger.
func Setup(ctx *cli.Context, wantArgs int) (*Settings, error) {
	ep, err := ParseEndpoint(ctx, wantArgs)
	if err != nil {
		return nil, err
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	cfg, cfgPath, err := config.Discover(ctx.String("config"), wd)
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if ctx.IsSet("log-level") {
		level = ctx.String("log-level")
	}
	logger, err := NewLogger(level)
	if err != nil {
		return nil, err
	}

	return &Settings{Endpoint: ep, Config: cfg, ConfigPath: cfgPath, Logger: logger}, nil
}

// NewLogger builds a development logger at level. It writes to stderr only,
// since stdout carries command output.
func NewLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, argErrorf("log level: %s", err)
	}
	logger, err := zap.NewDevelopment(zap.IncreaseLevel(lvl))
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}
