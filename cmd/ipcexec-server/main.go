package main

import (
	"log"
	"os"

	"github.com/guseggert/ipcexec/command"
	"github.com/guseggert/ipcexec/internal/cliapp"
	"github.com/guseggert/ipcexec/session"
	"github.com/guseggert/ipcexec/transport"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:      "ipcexec-server",
		Usage:     "accept one command over a FIFO or Unix domain socket, run it, and stream its stdout back",
		UsageText: "ipcexec-server -fifo|-domain <path>",
		Flags: append(cliapp.Flags(),
			&cli.StringFlag{
				Name:  "search-path",
				Usage: "Colon-separated directories to resolve commands in. Defaults to the config file, then $PATH.",
			},
		),
		Action: func(ctx *cli.Context) error {
			settings, err := cliapp.Setup(ctx, 0)
			if err != nil {
				return err
			}
			logger := settings.Logger.Sugar()
			defer logger.Sync()

			searchPath := settings.Config.ResolveSearchPath(ctx.String("search-path"), os.Getenv)
			logger.Debugw("starting server",
				"Kind", settings.Kind,
				"Path", settings.Path,
				"Config", settings.ConfigPath,
				"SearchPath", searchPath,
			)

			server := &session.Server{
				Kind:          settings.Kind,
				Path:          settings.Path,
				Dispatcher:    command.NewDispatcher(logger, searchPath),
				ListenOptions: []transport.Option{transport.WithFIFOPerm(settings.Config.FIFOPerm)},
				Log:           logger,
			}
			res, err := server.ListenAndServe(ctx.Context)
			if err != nil {
				return err
			}
			logger.Infow("done", "Command", res.Argv, "ExitCode", res.ExitCode)
			return nil
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
