package main

import (
	"fmt"
	"os"

	"github.com/bountiful-platform/bountiful/settings"
	"github.com/ordishs/gocore"
	"github.com/urfave/cli/v2"
)

// Name used by build script for the binaries. (Please keep on single line)
const progname = "bountiful"

// // Version & commit strings injected at build with -ldflags -X...
var version string
var commit string

// loadSettings is replaced in tests.
var loadSettings = settings.NewSettings

func init() {
	gocore.SetInfo(progname, version, commit)
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", progname, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    progname,
		Usage:   "bounty platform node and tools",
		Version: fmt.Sprintf("%s (%s)", version, commit),
		Commands: []*cli.Command{
			serveCommand(),
			{
				Name:   "fees",
				Usage:  "preview how a reward splits between winner, platform and miner",
				Action: feesAction,
				Flags: []cli.Flag{
					&cli.Uint64Flag{
						Name:     "reward",
						Usage:    "reward amount in base units",
						Required: true,
					},
					&cli.Uint64Flag{
						Name:  "rate",
						Usage: "platform fee rate in tenths of a percent, defaults to bounty_devFeeRate",
					},
				},
			},
			{
				Name:      "decode",
				Usage:     "decode a box in explorer JSON form",
				ArgsUsage: "<box.json|->",
				Action:    decodeAction,
			},
			{
				Name:   "script",
				Usage:  "print the configured fee script and, for a creator and token, the bounty script",
				Action: scriptAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "creator",
						Usage: "hex compressed public key of the bounty creator",
					},
					&cli.StringFlag{
						Name:  "token",
						Usage: "token id of the bounty",
					},
					&cli.StringFlag{
						Name:  "version",
						Usage: "script version, defaults to bounty_version",
					},
				},
			},
		},
	}
}
