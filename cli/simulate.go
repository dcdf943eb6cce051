package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/spinningbody/config"
	"go.viam.com/spinningbody/logging"
	"go.viam.com/spinningbody/simulation"
)

// newLogger builds the logger of a command and installs it as the global logger.
func newLogger(c *cli.Context) logging.Logger {
	logger := logging.NewLogger("spinsim")
	if c.Bool(generalFlagDebug) {
		logger = logging.NewDebugLogger("spinsim")
	}
	logging.ReplaceGlobal(logger)
	return logger
}

func readConfig(c *cli.Context, logger logging.Logger) (*config.Config, error) {
	cfg, err := config.Read(c.String(generalFlagConfig), logger)
	if err != nil {
		return nil, err
	}
	if c.IsSet(runFlagDuration) {
		cfg.Simulation.Duration = c.Float64(runFlagDuration)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// RunAction is the corresponding action for 'run'.
func RunAction(c *cli.Context) error {
	logger := newLogger(c)
	if err := runOnce(c, logger); err != nil {
		if !c.Bool(runFlagWatch) {
			return err
		}
		logger.Errorw("simulation failed, waiting for the config to change", "error", err)
	}
	if !c.Bool(runFlagWatch) {
		return nil
	}
	return watchConfig(c.Context, c.String(generalFlagConfig), logger, func() {
		if err := runOnce(c, logger); err != nil {
			logger.Errorw("simulation failed, waiting for the config to change", "error", err)
		}
	})
}

func runOnce(c *cli.Context, logger logging.Logger) error {
	cfg, err := readConfig(c, logger)
	if err != nil {
		return err
	}
	sim, err := simulation.New(cfg, logger)
	if err != nil {
		return err
	}
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := sim.Run(ctx)
	if err != nil {
		return err
	}

	summary, err := res.SummaryTable()
	if err != nil {
		return err
	}
	printf(c, "%s", summary)

	if path := c.String(runFlagCSV); path != "" {
		if err := writeCSV(res, path); err != nil {
			return err
		}
		printf(c, "wrote telemetry to %s", path)
	}
	if path := c.String(runFlagPlot); path != "" {
		p, err := res.ThetaPlot()
		if err != nil {
			return err
		}
		if err := simulation.SavePNG(p, path); err != nil {
			return err
		}
		printf(c, "wrote hinge angle plot to %s", path)
	}
	if path := c.String(runFlagEnergyPlot); path != "" {
		p, err := res.EnergyPlot()
		if err != nil {
			return err
		}
		if err := simulation.SavePNG(p, path); err != nil {
			return err
		}
		printf(c, "wrote energy plot to %s", path)
	}
	return nil
}

func writeCSV(res *simulation.Result, path string) (err error) {
	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "cannot create csv")
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return res.WriteCSV(f)
}

// DescribeAction is the corresponding action for 'describe'.
func DescribeAction(c *cli.Context) error {
	cfg, err := readConfig(c, newLogger(c))
	if err != nil {
		return err
	}
	printf(c, "%s", cfg.String())
	printf(c, "time step %v s for %v s using %s", cfg.Simulation.TimeStep, cfg.Simulation.Duration, cfg.Simulation.Integrator)
	return nil
}

// SchemaAction is the corresponding action for 'schema'.
func SchemaAction(c *cli.Context) error {
	var schema interface{} = config.Schema()
	if name := c.String(schemaFlagEffector); name != "" {
		schemas := config.EffectorSchemas()
		s, ok := schemas[name]
		if !ok {
			return errors.Errorf("unknown effector type %q, expected one of %s",
				name, strings.Join(config.EffectorTypes(), ", "))
		}
		schema = s
	}
	out, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return err
	}
	printf(c, "%s", out)
	return nil
}

// printf prints a message with no prefix.
func printf(c *cli.Context, format string, a ...interface{}) {
	fmt.Fprintf(c.App.Writer, format+"\n", a...)
}
