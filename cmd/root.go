package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/PolarWolf314/agevault/internal/configs"
	logger "github.com/PolarWolf314/agevault/internal/logging"
)

var (
	verbose     bool
	debug       bool
	configPath  string
	vaultDir    string
	backendFlag string
	Logger      logger.Logger

	RootCmd = &cobra.Command{
		Use:   "agevault",
		Short: "An interactive vault of passphrase-encrypted files",
		Long: `agevault keeps a directory of files encrypted with age passphrases and
offers a menu to create, decrypt, list and edit them.

Encryption is done by the age binary when it is installed, or by the
built-in age implementation otherwise. Files are armored and can be
decrypted with plain 'age --decrypt'.

Plaintext only ever lives in private scratch files, which are wiped when
each operation ends, whatever the outcome.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
				Out:     cmd.OutOrStdout(),
				Err:     cmd.ErrOrStderr(),
			}
			Logger.Debugf("Initializing %s with verbose=%t, debug=%t", cmd.Name(), verbose, debug)
		},
		RunE: runSession,
	}
)

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	RootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $XDG_CONFIG_HOME/agevault/config.toml)")
	RootCmd.PersistentFlags().StringVar(&vaultDir, "dir", "", "vault directory (default ~/.agevault)")
	RootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "encryption backend: auto, tool or native")

	RootCmd.AddCommand(versionCmd)
	RootCmd.AddCommand(doctorCmd)
	RootCmd.AddCommand(cleanCmd)
	RootCmd.AddCommand(logCmd)
}

// Execute runs the command line with ctx, which is cancelled on interrupt.
func Execute(ctx context.Context) error {
	return RootCmd.ExecuteContext(ctx)
}

// loadSettings merges the config layers with the command-line flags.
func loadSettings() (*configs.Settings, error) {
	settings, err := configs.Load(configs.LoadOptions{
		ConfigPath: configPath,
		Overrides: configs.Settings{
			VaultDir: vaultDir,
			Backend:  backendFlag,
		},
	})
	if err != nil {
		return nil, err
	}

	Logger.Debugf("Vault directory: %s", settings.VaultDir)
	Logger.Debugf("Backend: %s, tool: %s, editor: %s", settings.Backend, settings.Tool, settings.Editor)
	return settings, nil
}

// Helper functions for testing

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	configPath = ""
	vaultDir = ""
	backendFlag = ""
	Logger = logger.Logger{}
	resetDoctorCommandState()
	resetCleanCommandState()
	resetLogCommandState()

	// Reset Cobra flag state to prevent pollution between tests.
	for _, c := range append(RootCmd.Commands(), RootCmd) {
		c.Flags().VisitAll(func(flag *pflag.Flag) {
			flag.Changed = false
		})
	}
	RootCmd.PersistentFlags().VisitAll(func(flag *pflag.Flag) {
		flag.Changed = false
	})
}
