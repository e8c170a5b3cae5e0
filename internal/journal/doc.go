// Package journal records what a session did.
//
// The journal is an optional JSON Lines file (the log_file setting). Each
// line is one finished operation, written with zerolog and tagged with the
// session id so entries from concurrent or consecutive runs can be told
// apart:
//
//	{"level":"info","session":"6f1c...","op":"decrypt","file":"notes.age","attempts":2,"outcome":"ok","time":"2026-10-19T10:15:00Z","message":"decrypt"}
//
// Only operation names, artifact base names, attempt counts and outcomes
// are recorded. Plaintext, passphrases and full paths never are.
//
// # Failure Handling
//
// Journaling is best-effort. A journal that cannot be written does not
// fail the operation it describes.
//
// # Reading
//
// ReadEntries parses the file back for `agevault log`. Malformed lines are
// skipped so a partially written last line does not hide the rest.
package journal
