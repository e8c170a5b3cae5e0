// Package utils provides small helpers shared across agevault packages.
//
// # Filesystem Utilities
//
//   - ExpandHome: expands a leading ~ to the user's home directory
//   - FileExists: reports whether a path exists, separating "missing" from
//     real errors
//
// # String Utilities
//
//   - LastLine: picks the most relevant line out of a tool's diagnostics
//
// # Terminal Utilities
//
//   - IsTerminal: checks if a file descriptor is a terminal
//   - ReadSecret: reads a line without echo, honouring context cancellation
package utils
