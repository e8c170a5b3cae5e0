package configs

import (
	"errors"
	"fmt"

	"dario.cat/mergo"

	"github.com/PolarWolf314/agevault/internal/utils"
)

// LoadOptions controls where Load looks for settings.
type LoadOptions struct {
	// ConfigPath is the TOML file to read. Empty means DefaultConfigPath.
	ConfigPath string

	// Overrides are applied last; only non-zero fields take effect.
	Overrides Settings

	// Environment replaces the process environment when non-nil.
	Environment map[string]string
}

// Load merges defaults, the config file, the environment and overrides,
// resolves the editor, expands ~ in paths and validates the result.
func Load(opts LoadOptions) (*Settings, error) {
	return newConfigBuilder().
		withDefaults().
		withFile(opts.ConfigPath).
		withEnv(opts.Environment).
		withOverrides(opts.Overrides).
		build()
}

type configBuilder struct {
	layers         []*Settings
	editorFallback []string
	err            error
}

func newConfigBuilder() *configBuilder {
	return &configBuilder{
		layers: make([]*Settings, 0, 4),
	}
}

func (b *configBuilder) withDefaults() *configBuilder {
	defaults, err := DefaultSettings()
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	b.layers = append(b.layers, &defaults)
	return b
}

func (b *configBuilder) withFile(path string) *configBuilder {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			b.err = errors.Join(b.err, err)
			return b
		}
		path = defaultPath
	}

	path, err := utils.ExpandHome(path)
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	fileSettings, err := loadFile(path)
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	b.layers = append(b.layers, fileSettings)
	return b
}

func (b *configBuilder) withEnv(lookup map[string]string) *configBuilder {
	e, err := parseEnv(lookup)
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	b.layers = append(b.layers, &e.Settings)
	b.editorFallback = append(b.editorFallback, e.Visual, e.SystemEditor)
	return b
}

func (b *configBuilder) withOverrides(overrides Settings) *configBuilder {
	b.layers = append(b.layers, &overrides)
	return b
}

func (b *configBuilder) build() (*Settings, error) {
	if b.err != nil {
		return nil, fmt.Errorf("error occurred during building config: %w", b.err)
	}

	settings := new(Settings)
	for _, layer := range b.layers {
		if err := mergo.Merge(settings, layer, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("error merging configs: %w", err)
		}
	}

	if settings.Editor == "" {
		settings.Editor = firstNonEmpty(append(b.editorFallback, DefaultEditor)...)
	}

	var err error
	if settings.VaultDir, err = utils.ExpandHome(settings.VaultDir); err != nil {
		return nil, err
	}
	if settings.LogFile, err = utils.ExpandHome(settings.LogFile); err != nil {
		return nil, err
	}
	if settings.ScratchDir, err = utils.ExpandHome(settings.ScratchDir); err != nil {
		return nil, err
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return settings, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
