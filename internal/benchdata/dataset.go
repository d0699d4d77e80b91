package benchdata

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// NewDataset returns an empty dataset for the given repository.
func NewDataset(repoURL string) *Dataset {
	return &Dataset{
		RepoURL: repoURL,
		Entries: make(map[string][]Entry),
	}
}

// Append adds entry to the end of the sequence stored under key.
// Prior entries are never removed, reordered or merged. A rejected entry
// leaves the dataset unchanged.
func (d *Dataset) Append(key string, entry Entry) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := checkEntry(entry); err != nil {
		return err
	}
	if last, ok := d.Latest(key); ok && entry.Date < last.Date {
		return fmt.Errorf("%w: %d < %d", ErrOutOfOrder, entry.Date, last.Date)
	}

	if d.Entries == nil {
		d.Entries = make(map[string][]Entry)
	}
	entry.Benches = append([]Bench(nil), entry.Benches...)
	d.Entries[key] = append(d.Entries[key], entry)
	return nil
}

func checkEntry(entry Entry) error {
	if len(entry.Benches) == 0 {
		return ErrNoBenches
	}
	for _, b := range entry.Benches {
		if err := checkValue(b); err != nil {
			return err
		}
	}
	return nil
}

func checkValue(b Bench) error {
	if math.IsNaN(b.Value) || math.IsInf(b.Value, 0) || b.Value < 0 {
		return fmt.Errorf("%w: %s = %v", ErrNegativeValue, b.Name, b.Value)
	}
	return nil
}

// List returns a copy of the entries stored under key, oldest first.
func (d *Dataset) List(key string) []Entry {
	return append([]Entry(nil), d.Entries[key]...)
}

// Keys returns the tool keys in sorted order.
func (d *Dataset) Keys() []string {
	keys := make([]string, 0, len(d.Entries))
	for k := range d.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Latest returns the most recently appended entry under key.
func (d *Dataset) Latest(key string) (Entry, bool) {
	entries := d.Entries[key]
	if len(entries) == 0 {
		return Entry{}, false
	}
	return entries[len(entries)-1], true
}

// Previous returns the entry appended before the latest one.
func (d *Dataset) Previous(key string) (Entry, bool) {
	entries := d.Entries[key]
	if len(entries) < 2 {
		return Entry{}, false
	}
	return entries[len(entries)-2], true
}

// Len returns the number of entries under key.
func (d *Dataset) Len(key string) int {
	return len(d.Entries[key])
}

// Validate checks the stored history against the append invariants and
// reports every violation found.
func (d *Dataset) Validate() error {
	var errs []error
	for _, key := range d.Keys() {
		var lastDate int64
		for i, e := range d.Entries[key] {
			if len(e.Benches) == 0 {
				errs = append(errs, fmt.Errorf("%s[%d]: %w", key, i, ErrNoBenches))
			}
			for _, b := range e.Benches {
				if err := checkValue(b); err != nil {
					errs = append(errs, fmt.Errorf("%s[%d]: %w", key, i, err))
				}
			}
			if i > 0 && e.Date < lastDate {
				errs = append(errs, fmt.Errorf("%s[%d]: %w: %d < %d", key, i, ErrOutOfOrder, e.Date, lastDate))
			}
			lastDate = e.Date
		}
	}
	return errors.Join(errs...)
}

// Prune drops the oldest entries under key so that at most maxItems remain
// and returns how many were removed. A maxItems of zero or less keeps
// everything.
func (d *Dataset) Prune(key string, maxItems int) int {
	entries := d.Entries[key]
	if maxItems <= 0 || len(entries) <= maxItems {
		return 0
	}
	removed := len(entries) - maxItems
	d.Entries[key] = append([]Entry(nil), entries[removed:]...)
	return removed
}
