// Package logger provides console logging for agevault.
//
// The logger supports verbosity levels controlled by command-line flags.
// Output is prefixed and coloured with fatih/color.
//
// # Verbosity Levels
//
//   - --verbose: shows info messages
//   - --debug: shows info and debug messages
//
// Warnings and errors are always shown. They are how the session reports a
// rejected passphrase or a failed operation, so they are never suppressed.
//
// # Writers
//
// Info and debug messages go to Out, warnings and errors to Err. A nil
// writer falls back to os.Stdout and os.Stderr respectively. Tests point
// both at a buffer.
//
// # Usage
//
//	log := Logger{Verbose: verbose, Debug: debug}
//	log.Warnf("incorrect passphrase (attempt %d of %d)", n, max)
package logger
