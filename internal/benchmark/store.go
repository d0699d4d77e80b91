package benchmark

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"benchtrack/internal/benchdata"
)

// Store defines the interface for the benchmark history.
type Store interface {
	Load() (*benchdata.Dataset, error)
	Save(ds *benchdata.Dataset) error
	Append(key string, entry benchdata.Entry) (*benchdata.Dataset, error)
}

// FileStore implements Store on a data.js file.
type FileStore struct {
	path    string
	repoURL string
	now     func() time.Time
}

// NewFileStore returns a store for path. repoURL is used when the file does
// not exist yet or has no repository recorded.
func NewFileStore(path, repoURL string) *FileStore {
	return &FileStore{path: path, repoURL: repoURL, now: time.Now}
}

// Path returns the location of the data file.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load() (*benchdata.Dataset, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return benchdata.NewDataset(s.repoURL), nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return benchdata.NewDataset(s.repoURL), nil
	}

	ds, err := benchdata.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	if ds.RepoURL == "" {
		ds.RepoURL = s.repoURL
	}
	return ds, nil
}

// Save stamps lastUpdate and replaces the file atomically.
func (s *FileStore) Save(ds *benchdata.Dataset) error {
	ds.LastUpdate = s.now().UnixMilli()

	data, err := benchdata.Marshal(ds)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// Append loads the history, appends entry under key and saves it. Nothing
// is written when the entry is rejected.
func (s *FileStore) Append(key string, entry benchdata.Entry) (*benchdata.Dataset, error) {
	ds, err := s.Load()
	if err != nil {
		return nil, err
	}
	if err := ds.Append(key, entry); err != nil {
		return nil, err
	}
	if err := s.Save(ds); err != nil {
		return nil, err
	}
	return ds, nil
}
