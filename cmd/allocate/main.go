// Command allocate submits allocation requests from the terminal.
//
// Usage:
//
//	allocate submit --regions '[{"name":"Region A","need":20,"urgency":9}]' --supplies 50
//	allocate submit --regions-file regions.yaml --capacity 3
//	allocate validate --regions-file regions.json
//	allocate tui
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/couchcryptid/storm-relief-allocator/internal/observability"
)

var version = "dev"

func main() {
	app := newApp(os.Stdout, os.Stderr, observability.NewUnregisteredMetrics())
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer, metrics *observability.Metrics) *cli.App {
	return &cli.App{
		Name:      "allocate",
		Usage:     "Weather Crisis Resource Allocation System client",
		Version:   version,
		Writer:    stdout,
		ErrWriter: stderr,

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "text",
				Usage:   "Log format (json, text)",
				EnvVars: []string{"LOG_FORMAT"},
			},
		},

		Commands: []*cli.Command{
			submitCommand(metrics),
			validateCommand(),
			tuiCommand(metrics),
		},
	}
}
