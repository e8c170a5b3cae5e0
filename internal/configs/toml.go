package configs

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/BurntSushi/toml"
)

// loadFile reads settings from a TOML file. A missing file yields empty
// settings, unknown keys are rejected so typos do not pass silently.
func loadFile(filePath string) (*Settings, error) {
	settings := &Settings{}

	meta, err := toml.DecodeFile(filePath, settings)
	if errors.Is(err, fs.ErrNotExist) {
		return settings, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", filePath, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q in config file %s", undecoded[0].String(), filePath)
	}

	return settings, nil
}
