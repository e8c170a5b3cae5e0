package configs

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// environment mirrors the variables agevault reads. The editor variables
// are kept apart from Settings because they rank below a configured editor.
type environment struct {
	Settings

	Visual       string `env:"VISUAL"`
	SystemEditor string `env:"EDITOR"`
}

// parseEnv reads environment variables through lookup. A nil lookup uses
// the process environment.
func parseEnv(lookup map[string]string) (*environment, error) {
	e := &environment{}

	var err error
	if lookup == nil {
		err = env.Parse(e)
	} else {
		err = env.ParseWithOptions(e, env.Options{Environment: lookup})
	}
	if err != nil {
		return nil, fmt.Errorf("error getting env configs: %w", err)
	}

	return e, nil
}
