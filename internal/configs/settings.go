package configs

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Cipher backends.
const (
	// BackendAuto uses the external tool when it is installed and the
	// built-in implementation otherwise.
	BackendAuto = "auto"
	// BackendTool always runs the external tool.
	BackendTool = "tool"
	// BackendNative always uses the built-in age implementation.
	BackendNative = "native"
)

const (
	DefaultExtension        = "age"
	DefaultTool             = "age"
	DefaultEditor           = "vi"
	DefaultMaxAttempts      = 3
	MaxMaxAttempts          = 10
	DefaultScryptWorkFactor = 18
	MinScryptWorkFactor     = 10
	MaxScryptWorkFactor     = 22
)

var extensionPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// Settings holds everything a session needs to know before it starts.
type Settings struct {
	// VaultDir is the directory holding the encrypted files.
	VaultDir string `toml:"vault_dir" env:"AGEVAULT_DIR"`

	// Extension marks vault files, without the leading dot.
	Extension string `toml:"extension" env:"AGEVAULT_EXTENSION"`

	// Backend selects how encryption is performed: auto, tool or native.
	Backend string `toml:"backend" env:"AGEVAULT_BACKEND"`

	// Tool is the external encryption binary, a name on PATH or a path.
	Tool string `toml:"tool" env:"AGEVAULT_TOOL"`

	// Editor is the command used to edit plaintext, arguments allowed.
	Editor string `toml:"editor" env:"AGEVAULT_EDITOR"`

	// MaxAttempts bounds passphrase attempts per operation.
	MaxAttempts int `toml:"max_attempts" env:"AGEVAULT_MAX_ATTEMPTS"`

	// ScryptWorkFactor is the log2 scrypt cost used by the native backend.
	ScryptWorkFactor int `toml:"scrypt_work_factor" env:"AGEVAULT_SCRYPT_WORK_FACTOR"`

	// LogFile, when set, receives a JSON journal of operations.
	LogFile string `toml:"log_file" env:"AGEVAULT_LOG_FILE"`

	// ScratchDir is where plaintext working copies are created.
	// Empty means the system temp directory.
	ScratchDir string `toml:"scratch_dir" env:"AGEVAULT_SCRATCH_DIR"`

	// NoBanner hides the banner printed when the session starts.
	NoBanner bool `toml:"no_banner" env:"AGEVAULT_NO_BANNER"`
}

// DefaultSettings returns the built-in defaults. The vault lives in
// ~/.agevault.
func DefaultSettings() (Settings, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Settings{}, fmt.Errorf("error getting home directory: %w", err)
	}

	return Settings{
		VaultDir:         filepath.Join(homeDir, ".agevault"),
		Extension:        DefaultExtension,
		Backend:          BackendAuto,
		Tool:             DefaultTool,
		MaxAttempts:      DefaultMaxAttempts,
		ScryptWorkFactor: DefaultScryptWorkFactor,
	}, nil
}

// DefaultConfigPath returns the config file used when none is given.
func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("error getting config directory: %w", err)
	}
	return filepath.Join(configDir, "agevault", "config.toml"), nil
}

// Validate checks that the merged settings are usable.
func (s Settings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.VaultDir, validation.Required),
		validation.Field(&s.Extension, validation.Required, validation.Match(extensionPattern)),
		validation.Field(&s.Backend, validation.Required, validation.In(BackendAuto, BackendTool, BackendNative)),
		validation.Field(&s.Tool, validation.Required),
		validation.Field(&s.Editor, validation.Required),
		validation.Field(&s.MaxAttempts, validation.Required, validation.Min(1), validation.Max(MaxMaxAttempts)),
		validation.Field(&s.ScryptWorkFactor, validation.Required, validation.Min(MinScryptWorkFactor), validation.Max(MaxScryptWorkFactor)),
	)
}
