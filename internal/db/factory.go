package db

import (
	"fmt"
	"log/slog"
	"strings"

	"benchtrack/internal/benchdata"
)

// DefaultSQLitePath is used when no connection string is configured.
const DefaultSQLitePath = ".benchtrack.db"

// StoreConfig holds configuration for the storage backend
type StoreConfig struct {
	Type             string // "sqlite" or "postgres"
	ConnectionString string // File path for SQLite, DSN for Postgres
}

// NewStore creates a new Store instance based on the provided configuration
func NewStore(config StoreConfig) (Store, error) {
	switch strings.ToLower(config.Type) {
	case "postgres", "postgresql":
		if config.ConnectionString == "" {
			return nil, fmt.Errorf("postgres connection string is required")
		}
		return NewPostgresStore(config.ConnectionString)
	case "sqlite", "sqlite3", "":
		if config.ConnectionString == "" {
			config.ConnectionString = DefaultSQLitePath
		}
		return NewSQLiteStore(config.ConnectionString)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", config.Type)
	}
}

// Sync copies the entries of ds that are not archived yet into store and
// returns how many were written. The archive only ever grows: entries that
// were pruned from the data file stay archived.
func Sync(store Store, ds *benchdata.Dataset) (int, error) {
	written := 0
	for _, key := range ds.Keys() {
		entries := ds.List(key)

		archived, err := store.LoadEntries(key)
		if err != nil {
			return written, fmt.Errorf("failed to read archive for %s: %w", key, err)
		}

		start, seq := 0, int64(0)
		if len(archived) > 0 {
			start = resumeIndex(entries, archived)
			seq = archived[len(archived)-1].Seq + 1
		}

		for _, e := range entries[start:] {
			if err := store.SaveEntry(key, seq, e); err != nil {
				return written, err
			}
			seq++
			written++
		}
		slog.Debug("archive synced", "key", key, "from", start, "total", len(entries))
	}
	return written, nil
}

// resumeIndex finds the position right after the last archived entry.
// Identical entries (same date and commit) are matched by count, so a
// commit recorded twice is archived twice. When the last archived entry is
// no longer in the data file, every newer entry is considered unarchived.
func resumeIndex(entries []benchdata.Entry, archived []ArchivedEntry) int {
	last := archived[len(archived)-1].Entry
	same := func(e benchdata.Entry) bool {
		return e.Date == last.Date && e.Commit.ID == last.Commit.ID
	}

	run := 0
	for i := len(archived) - 1; i >= 0 && same(archived[i].Entry); i-- {
		run++
	}

	for end := len(entries) - 1; end >= 0; end-- {
		if !same(entries[end]) {
			continue
		}
		first := end
		for first > 0 && same(entries[first-1]) {
			first--
		}
		return min(first+run, end+1)
	}

	for i, e := range entries {
		if e.Date > last.Date {
			return i
		}
	}
	return len(entries)
}
