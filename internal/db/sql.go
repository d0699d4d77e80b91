package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"benchtrack/internal/benchdata"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS bench_entries (
		bench_key TEXT NOT NULL,
		seq BIGINT NOT NULL,
		commit_id TEXT NOT NULL,
		commit_json TEXT NOT NULL,
		recorded_at BIGINT NOT NULL,
		tool TEXT NOT NULL,
		PRIMARY KEY (bench_key, seq)
	);`,
	`CREATE TABLE IF NOT EXISTS bench_results (
		bench_key TEXT NOT NULL,
		seq BIGINT NOT NULL,
		ord INTEGER NOT NULL,
		name TEXT NOT NULL,
		value DOUBLE PRECISION NOT NULL,
		unit TEXT NOT NULL,
		range_text TEXT NOT NULL DEFAULT '',
		extra TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (bench_key, seq, ord)
	);`,
}

// sqlStore holds the queries shared by the SQLite and Postgres stores.
// Queries are written with '?' placeholders and rebound per driver.
type sqlStore struct {
	db     *sql.DB
	dollar bool
}

func (s *sqlStore) q(query string) string {
	if !s.dollar {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *sqlStore) migrate() error {
	for _, query := range schema {
		if _, err := s.db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection
func (s *sqlStore) Close() error {
	return s.db.Close()
}

// SaveEntry stores entry and its results at position seq under key.
func (s *sqlStore) SaveEntry(key string, seq int64, entry benchdata.Entry) error {
	commitJSON, err := json.Marshal(entry.Commit)
	if err != nil {
		return fmt.Errorf("failed to marshal commit: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(s.q(`INSERT INTO bench_entries (bench_key, seq, commit_id, commit_json, recorded_at, tool) VALUES (?, ?, ?, ?, ?, ?)`),
		key, seq, entry.Commit.ID, string(commitJSON), entry.Date, entry.Tool)
	if err != nil {
		return fmt.Errorf("failed to insert entry %s[%d]: %w", key, seq, err)
	}

	for i, b := range entry.Benches {
		_, err = tx.Exec(s.q(`INSERT INTO bench_results (bench_key, seq, ord, name, value, unit, range_text, extra) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
			key, seq, i, b.Name, b.Value, b.Unit, b.Range, b.Extra)
		if err != nil {
			return fmt.Errorf("failed to insert result %s for %s[%d]: %w", b.Name, key, seq, err)
		}
	}
	return tx.Commit()
}

// Count returns the number of archived entries under key.
func (s *sqlStore) Count(key string) (int, error) {
	var n int
	err := s.db.QueryRow(s.q(`SELECT COUNT(*) FROM bench_entries WHERE bench_key = ?`), key).Scan(&n)
	return n, err
}

// Last returns the most recent archived entry under key, or nil.
func (s *sqlStore) Last(key string) (*ArchivedEntry, error) {
	row := s.db.QueryRow(s.q(`SELECT seq, commit_json, recorded_at, tool FROM bench_entries WHERE bench_key = ? ORDER BY seq DESC LIMIT 1`), key)
	ae, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	benches, err := s.loadResults(key, &ae.Seq)
	if err != nil {
		return nil, err
	}
	ae.Entry.Benches = benches[ae.Seq]
	return ae, nil
}

// LoadEntries returns every archived entry under key in sequence order.
func (s *sqlStore) LoadEntries(key string) ([]ArchivedEntry, error) {
	rows, err := s.db.Query(s.q(`SELECT seq, commit_json, recorded_at, tool FROM bench_entries WHERE bench_key = ? ORDER BY seq`), key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ArchivedEntry
	for rows.Next() {
		ae, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *ae)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	benches, err := s.loadResults(key, nil)
	if err != nil {
		return nil, err
	}
	for i := range results {
		results[i].Entry.Benches = benches[results[i].Seq]
	}
	return results, nil
}

// Keys returns the archived benchmark keys.
func (s *sqlStore) Keys() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT bench_key FROM bench_entries ORDER BY bench_key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*ArchivedEntry, error) {
	var (
		ae         ArchivedEntry
		commitJSON string
	)
	if err := row.Scan(&ae.Seq, &commitJSON, &ae.Entry.Date, &ae.Entry.Tool); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(commitJSON), &ae.Entry.Commit); err != nil {
		return nil, fmt.Errorf("failed to decode commit of entry %d: %w", ae.Seq, err)
	}
	return &ae, nil
}

func (s *sqlStore) loadResults(key string, seq *int64) (map[int64][]benchdata.Bench, error) {
	query := `SELECT seq, name, value, unit, range_text, extra FROM bench_results WHERE bench_key = ?`
	args := []any{key}
	if seq != nil {
		query += ` AND seq = ?`
		args = append(args, *seq)
	}
	query += ` ORDER BY seq, ord`

	rows, err := s.db.Query(s.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]benchdata.Bench)
	for rows.Next() {
		var (
			n int64
			b benchdata.Bench
		)
		if err := rows.Scan(&n, &b.Name, &b.Value, &b.Unit, &b.Range, &b.Extra); err != nil {
			return nil, err
		}
		out[n] = append(out[n], b)
	}
	return out, rows.Err()
}
