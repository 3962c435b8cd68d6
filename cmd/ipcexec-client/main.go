package main

import (
	"log"
	"os"

	"github.com/guseggert/ipcexec/internal/cliapp"
	"github.com/guseggert/ipcexec/session"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:      "ipcexec-client",
		Usage:     "send one command line to an ipcexec-server and print its output",
		UsageText: "ipcexec-client -fifo|-domain <path> <command-line>",
		Flags:     cliapp.Flags(),
		Action: func(ctx *cli.Context) error {
			settings, err := cliapp.Setup(ctx, 1)
			if err != nil {
				return err
			}
			logger := settings.Logger.Sugar()
			defer logger.Sync()

			client := &session.Client{
				Kind:   settings.Kind,
				Path:   settings.Path,
				Stdout: os.Stdout,
				Log:    logger,
			}
			return client.Run(ctx.Args().First())
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
