package cmd

import (
	"fmt"
	"io"

	"github.com/PolarWolf314/agevault/internal/cipher"
	"github.com/PolarWolf314/agevault/internal/configs"
)

// newCipher picks the backend named in settings. With "auto" the external
// tool is used when it is on PATH. A missing tool with "tool" is fatal.
func newCipher(settings *configs.Settings, status io.Writer) (cipher.Cipher, string, error) {
	native := func() *cipher.Native {
		return &cipher.Native{
			Passphrase: cipher.TerminalPassphrase{Out: status},
			WorkFactor: settings.ScryptWorkFactor,
			Busy:       busySpinner(status),
		}
	}

	switch settings.Backend {
	case configs.BackendNative:
		return native(), "built-in age", nil

	case configs.BackendTool:
		tool := cipher.NewTool(settings.Tool)
		path, err := tool.Lookup()
		if err != nil {
			return nil, "", err
		}
		return tool, path, nil

	default:
		tool := cipher.NewTool(settings.Tool)
		if path, err := tool.Lookup(); err == nil {
			return tool, path, nil
		}
		Logger.Infof("%s not found on PATH, using the built-in age implementation", settings.Tool)
		return native(), fmt.Sprintf("built-in age (%s not found)", settings.Tool), nil
	}
}
