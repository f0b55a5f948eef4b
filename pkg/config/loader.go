package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load parses environment variables into the provided struct.
// The struct should use `env` tags to define mappings.
//
// Example:
//
//	type Config struct {
//	    Port  int      `env:"WEB_HTTP_PORT" envDefault:"8080"`
//	    Bases []string `env:"DIRECTORY_API_BASES" envSeparator:","`
//	}
func Load(cfg any) error {
	return LoadFrom(cfg, nil)
}

// LoadFrom parses cfg from the given environment map instead of the process
// environment. A nil map falls back to os.Environ. Used by the CLI to apply
// flag overrides on top of the environment.
func LoadFrom(cfg any, environment map[string]string) error {
	opts := env.Options{}
	if environment != nil {
		opts.Environment = environment
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
