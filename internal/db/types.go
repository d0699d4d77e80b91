package db

import "benchtrack/internal/benchdata"

// ArchivedEntry is an entry with its position in the archive.
type ArchivedEntry struct {
	Seq   int64
	Entry benchdata.Entry
}

// Store interface defines the methods for the entry archive.
type Store interface {
	Close() error
	SaveEntry(key string, seq int64, entry benchdata.Entry) error
	Count(key string) (int, error)
	Last(key string) (*ArchivedEntry, error)
	LoadEntries(key string) ([]ArchivedEntry, error)
	Keys() ([]string, error)
}
