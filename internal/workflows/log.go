package workflows

import (
	"context"
	"fmt"
	"strings"
	"time"

	kerrors "github.com/PolarWolf314/agevault/internal/errors"
	"github.com/PolarWolf314/agevault/internal/journal"
)

// HistoryOptions configures the history workflow.
type HistoryOptions struct {
	// Path is the journal file. Empty means no journal is configured.
	Path string

	// Limit is the maximum number of entries to return. 0 means no limit.
	Limit int

	// Reverse orders entries from most recent to oldest when true.
	Reverse bool

	// Operations filters entries by operation name (comma-separated).
	Operations string

	// Session filters entries by session id prefix.
	Session string

	// Since filters entries on or after this UTC date (YYYY-MM-DD format).
	Since string

	// Until filters entries on or before this UTC date (YYYY-MM-DD format).
	Until string
}

// HistoryResult contains the outcome of a history query.
type HistoryResult struct {
	// Entries are the filtered journal entries.
	Entries []journal.Entry

	// TotalEntriesBeforeFilter is the count of entries before filtering.
	TotalEntriesBeforeFilter int
}

// History reads and filters the session journal.
//
// Returns ErrNoJournal if no journal file is configured.
// Returns ErrInvalidDateFormat if a date filter is not YYYY-MM-DD.
func History(ctx context.Context, opts HistoryOptions) (*HistoryResult, error) {
	if opts.Path == "" {
		return nil, kerrors.ErrNoJournal
	}

	var since, until time.Time
	if opts.Since != "" {
		t, err := time.Parse("2006-01-02", opts.Since)
		if err != nil {
			return nil, fmt.Errorf("%w: --since date format invalid, use YYYY-MM-DD", kerrors.ErrInvalidDateFormat)
		}
		since = t
	}
	if opts.Until != "" {
		t, err := time.Parse("2006-01-02", opts.Until)
		if err != nil {
			return nil, fmt.Errorf("%w: --until date format invalid, use YYYY-MM-DD", kerrors.ErrInvalidDateFormat)
		}
		// Include the entire day.
		until = t.Add(24*time.Hour - time.Nanosecond)
	}

	entries, err := journal.ReadEntries(opts.Path)
	if err != nil {
		return nil, err
	}

	result := &HistoryResult{TotalEntriesBeforeFilter: len(entries)}

	filtered := entries
	if opts.Operations != "" {
		filtered = filterByOperations(filtered, strings.Split(opts.Operations, ","))
	}
	if opts.Session != "" {
		filtered = filterEntries(filtered, func(e journal.Entry) bool {
			return strings.HasPrefix(e.Session, opts.Session)
		})
	}
	if !since.IsZero() {
		filtered = filterEntries(filtered, func(e journal.Entry) bool {
			return !e.Time.Before(since)
		})
	}
	if !until.IsZero() {
		filtered = filterEntries(filtered, func(e journal.Entry) bool {
			return !e.Time.After(until)
		})
	}

	if opts.Reverse {
		for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
			filtered[i], filtered[j] = filtered[j], filtered[i]
		}
	}

	if opts.Limit > 0 && len(filtered) > opts.Limit {
		if opts.Reverse {
			// Reversed, the most recent come first.
			filtered = filtered[:opts.Limit]
		} else {
			filtered = filtered[len(filtered)-opts.Limit:]
		}
	}

	result.Entries = filtered
	return result, nil
}

// filterByOperations keeps entries whose operation is in ops, ignoring case.
func filterByOperations(entries []journal.Entry, ops []string) []journal.Entry {
	opSet := make(map[string]bool, len(ops))
	for _, op := range ops {
		opSet[strings.ToLower(strings.TrimSpace(op))] = true
	}
	return filterEntries(entries, func(e journal.Entry) bool {
		return opSet[strings.ToLower(e.Operation)]
	})
}

func filterEntries(entries []journal.Entry, keep func(journal.Entry) bool) []journal.Entry {
	var result []journal.Entry
	for _, e := range entries {
		if keep(e) {
			result = append(result, e)
		}
	}
	return result
}

// FormatDetails describes an entry's file, attempts and error for display.
func FormatDetails(e journal.Entry) string {
	var parts []string
	if e.File != "" {
		parts = append(parts, e.File)
	}
	if e.Attempts > 1 {
		parts = append(parts, fmt.Sprintf("%d attempts", e.Attempts))
	}
	if e.Error != "" {
		parts = append(parts, e.Error)
	}
	return strings.Join(parts, ", ")
}
