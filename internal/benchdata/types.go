package benchdata

// CommitUser identifies the author or committer of a benchmarked commit.
type CommitUser struct {
	Email    string `json:"email,omitempty"`
	Name     string `json:"name"`
	Username string `json:"username,omitempty"`
}

// Commit describes the commit an entry was measured on.
type Commit struct {
	Author    CommitUser `json:"author"`
	Committer CommitUser `json:"committer"`
	Distinct  *bool      `json:"distinct,omitempty"`
	ID        string     `json:"id"`
	Message   string     `json:"message"`
	Timestamp string     `json:"timestamp"` // RFC 3339, kept as recorded
	TreeID    string     `json:"tree_id,omitempty"`
	URL       string     `json:"url"`
}

// Bench is a single named measurement within an entry.
type Bench struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	// Unit may carry secondary metrics, e.g. "ns/op\t 9.418 DeleteSeconds".
	Unit  string `json:"unit"`
	Range string `json:"range,omitempty"`
	Extra string `json:"extra,omitempty"`
}

// Entry is one recorded benchmark run tied to a commit.
type Entry struct {
	Commit  Commit  `json:"commit"`
	Date    int64   `json:"date"` // epoch milliseconds
	Tool    string  `json:"tool"`
	Benches []Bench `json:"benches"`
}

// Dataset is the whole history rendered by the chart page.
type Dataset struct {
	LastUpdate int64              `json:"lastUpdate"`
	RepoURL    string             `json:"repoUrl"`
	Entries    map[string][]Entry `json:"entries"`
}

// Bench looks up a measurement by name.
func (e Entry) Bench(name string) (Bench, bool) {
	for _, b := range e.Benches {
		if b.Name == name {
			return b, true
		}
	}
	return Bench{}, false
}

// ShortID returns the first seven characters of the commit id.
func (c Commit) ShortID() string {
	if len(c.ID) > 7 {
		return c.ID[:7]
	}
	return c.ID
}
