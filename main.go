package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// After the first signal a second one kills the process.
	context.AfterFunc(ctx, stop)

	envFlag := &cli.StringFlag{
		Name:  "env",
		Usage: "path to the .env file",
		Value: ".env",
	}

	app := &cli.Command{
		Name:  "avito-position-probe",
		Usage: "track where an Avito listing ranks for a set of search phrases",
		Commands: []*cli.Command{
			{
				Name:  "check",
				Usage: "run a rank check for one or more listings",
				Flags: []cli.Flag{
					envFlag,
					&cli.StringSliceFlag{
						Name:     "id",
						Usage:    "listing ID to look for (repeat to check several listings)",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "search phrase (repeat for several phrases)",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:  "region",
						Usage: "region code (repeat for several regions)",
						Value: []string{"sankt-peterburg"},
					},
					&cli.StringFlag{
						Name:  "csv",
						Usage: "write the results to this CSV file (overrides CSV_PATH)",
					},
					&cli.BoolFlag{
						Name:  "table",
						Usage: "also print the results as a table",
					},
				},
				Action: checkAction,
			},
			{
				Name:  "probe",
				Usage: "check that a listing ID refers to a live listing",
				Flags: []cli.Flag{
					envFlag,
					&cli.StringFlag{
						Name:     "id",
						Usage:    "listing ID",
						Required: true,
					},
				},
				Action: probeAction,
			},
			{
				Name:  "chat",
				Usage: "run the guided conversation on stdin/stdout",
				Flags: []cli.Flag{
					envFlag,
					&cli.Int64Flag{
						Name:  "chat-id",
						Usage: "session key used for this conversation",
						Value: 1,
					},
				},
				Action: chatAction,
			},
		},
		// Search phrases may contain commas.
		DisableSliceFlagSeparator: true,
	}

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
