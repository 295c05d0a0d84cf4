// Package config handles application configuration and setup
package config

import (
	"fmt"
	"io"

	"github.com/retroenv/hydragen/internal/annotations"
	"github.com/retroenv/hydragen/internal/confgen"
	"github.com/retroenv/hydragen/internal/glue"
	"github.com/retroenv/hydragen/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// Generator writes one output format for a validated annotation model.
type Generator func(out io.Writer, m *annotations.Model) error

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// CreateGenerator returns the generator for the given output mode.
func CreateGenerator(mode string) (Generator, error) {
	switch mode {
	case options.ModeHeader:
		return glue.WriteHeader, nil
	case options.ModeSource:
		return glue.WriteSource, nil
	case options.ModeConf:
		return confgen.Write, nil
	default:
		return nil, fmt.Errorf("unsupported mode '%s'", mode)
	}
}
