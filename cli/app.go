// Package cli contains the spinsim command line application.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

const (
	// Flags.
	generalFlagConfig = "config"
	generalFlagDebug  = "debug"

	runFlagCSV        = "csv"
	runFlagPlot       = "plot"
	runFlagEnergyPlot = "energy-plot"
	runFlagDuration   = "duration"
	runFlagWatch      = "watch"

	schemaFlagEffector = "effector"
)

var configFlag = &cli.StringFlag{
	Name:     generalFlagConfig,
	Aliases:  []string{"c"},
	Usage:    "load configuration from `FILE`",
	Required: true,
}

// NewApp returns a new app with the CLI's commands, writing its output to out and errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:            "spinsim",
		Usage:           "simulate spacecraft with hinged spinning bodies",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    generalFlagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "run a simulation and print a summary of its conserved quantities",
				UsageText: "spinsim run -c <config> [--csv <file>] [--plot <file>] [--energy-plot <file>] [--watch]",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{
						Name:  runFlagCSV,
						Usage: "write the telemetry of every step to `FILE`",
					},
					&cli.StringFlag{
						Name:  runFlagPlot,
						Usage: "plot the hinge angles to the PNG `FILE`",
					},
					&cli.StringFlag{
						Name:  runFlagEnergyPlot,
						Usage: "plot the energies to the PNG `FILE`",
					},
					&cli.Float64Flag{
						Name:  runFlagDuration,
						Usage: "override the configured duration [s]",
					},
					&cli.BoolFlag{
						Name:  runFlagWatch,
						Usage: "run again whenever the config file changes",
					},
				},
				Action: RunAction,
			},
			{
				Name:   "describe",
				Usage:  "validate a config and print the bodies it describes",
				Flags:  []cli.Flag{configFlag},
				Action: DescribeAction,
			},
			{
				Name:  "schema",
				Usage: "print the JSON schema of a config or of an effector's attributes",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  schemaFlagEffector,
						Usage: "print the attribute schema of effector `TYPE` instead",
					},
				},
				Action: SchemaAction,
			},
		},
	}
}
