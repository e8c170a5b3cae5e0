package journal

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Outcomes recorded for an operation.
const (
	OutcomeOK        = "ok"
	OutcomeFailed    = "failed"
	OutcomeAborted   = "aborted"
	OutcomeUnchanged = "unchanged"
)

// Entry is one journal line.
type Entry struct {
	Time      time.Time `json:"time"`
	Level     string    `json:"level,omitempty"`
	Session   string    `json:"session"`
	Operation string    `json:"op"`
	File      string    `json:"file,omitempty"` // Base name only.
	Attempts  int       `json:"attempts,omitempty"`
	Outcome   string    `json:"outcome"`
	Error     string    `json:"error,omitempty"`
}

// Journal appends entries for one session. A nil *Journal discards
// everything.
type Journal struct {
	mu      sync.Mutex
	session string
	log     zerolog.Logger
	closer  io.Closer
}

// Open appends to the journal at path, creating it with mode 0600.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	j := New(f)
	j.closer = f
	return j, nil
}

// New writes entries to w under a fresh session id.
func New(w io.Writer) *Journal {
	session := uuid.NewString()
	return &Journal{
		session: session,
		log:     zerolog.New(w).With().Str("session", session).Logger(),
	}
}

// Nop returns a journal that records nothing.
func Nop() *Journal {
	return nil
}

// Session returns the session id, empty for a nil journal.
func (j *Journal) Session() string {
	if j == nil {
		return ""
	}
	return j.session
}

// Record appends e. Session and Time are filled in by the journal.
func (j *Journal) Record(e Entry) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	event := j.log.Info()
	if e.Outcome == OutcomeFailed {
		event = j.log.Error()
	}

	event = event.Str("op", e.Operation)
	if e.File != "" {
		event = event.Str("file", filepath.Base(e.File))
	}
	if e.Attempts > 0 {
		event = event.Int("attempts", e.Attempts)
	}
	event = event.Str("outcome", e.Outcome)
	if e.Error != "" {
		event = event.Str("error", e.Error)
	}
	event.Timestamp().Msg(e.Operation)
}

// Close releases the underlying file, if any.
func (j *Journal) Close() error {
	if j == nil || j.closer == nil {
		return nil
	}
	return j.closer.Close()
}

// ReadEntries reads the journal at path. A missing file has no entries.
func ReadEntries(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	return ParseEntries(data), nil
}

// ParseEntries parses JSON Lines data, skipping malformed lines.
func ParseEntries(data []byte) []Entry {
	var entries []Entry

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		if entry.Operation == "" {
			continue
		}
		entries = append(entries, entry)
	}

	return entries
}
