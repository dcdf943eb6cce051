package config

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"

	"go.viam.com/spinningbody/logging"
)

// Read reads a config from the given file. Environment variables of the form ${NAME} are
// substituted before parsing.
func Read(filePath string, logger logging.Logger) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read config %q", filePath)
	}
	return FromReader(filePath, bytes.NewReader(buf), logger)
}

// FromReader reads a config from the given reader and specifies where, if applicable, the file
// the reader originated from.
func FromReader(originalPath string, r io.Reader, logger logging.Logger) (*Config, error) {
	cfg := Config{ConfigFilePath: originalPath}
	if err := json.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode Config from json")
	}
	if err := processConfig(&cfg, logger); err != nil {
		return nil, errors.Wrap(err, "failed to process Config")
	}
	return &cfg, nil
}

// processConfig fills in defaults and validates cfg, converting effector attributes along the way.
func processConfig(cfg *Config, logger logging.Logger) error {
	if cfg.Simulation.Integrator == "" {
		cfg.Simulation.Integrator = "rk4"
	}
	for i := range cfg.Effectors {
		if cfg.Effectors[i].Type == "" {
			logger.Debugw("effector has no type, assuming spinning body", "index", i)
			cfg.Effectors[i].Type = SpinningBodyType
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger.Debugw("read config", "path", cfg.ConfigFilePath, "effectors", len(cfg.Effectors))
	return nil
}
