package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "scorecli",
		Usage: "score Gin rounds and inspect the local scorekeeper database",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "Path to the configuration file"},
		},
		Commands: []*cli.Command{
			winnerCommand(),
			gamesCommand(),
			standingsCommand(),
			exportCommand(),
		},
	}
}
