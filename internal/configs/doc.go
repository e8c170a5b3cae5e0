// Package configs loads agevault settings.
//
// Settings come from four layers. Each layer only overrides the fields it
// actually sets, so a config file that names just the vault directory keeps
// every other default.
//
//  1. Built-in defaults (DefaultSettings)
//  2. The TOML config file, $XDG_CONFIG_HOME/agevault/config.toml unless a
//     path is given. A missing file is not an error.
//  3. Environment variables (AGEVAULT_DIR, AGEVAULT_BACKEND, ...)
//  4. Command-line flag overrides
//
// The editor is resolved last: the configured editor wins, then $VISUAL,
// then $EDITOR, then "vi".
//
// # Config File
//
//	vault_dir    = "~/secrets"
//	backend      = "tool"
//	tool         = "/usr/local/bin/age"
//	max_attempts = 5
//
// The merged result is validated before it is returned.
package configs
