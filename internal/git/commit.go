package git

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"

	"benchtrack/internal/benchdata"
)

var ErrNoRemote = errors.New("remote has no URL")

// CommitOptions controls how a commit descriptor is built.
type CommitOptions struct {
	// RepoURL is the browsable repository URL; commit URLs are derived from it.
	RepoURL string
	// Username is recorded as the GitHub username of author and committer.
	Username string
}

func open(dir string) (*gogit.Repository, error) {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository at %s: %w", dir, err)
	}
	return repo, nil
}

// HeadCommit describes the commit HEAD points to in the repository that
// contains dir.
func HeadCommit(dir string, opts CommitOptions) (benchdata.Commit, error) {
	repo, err := open(dir)
	if err != nil {
		return benchdata.Commit{}, err
	}

	head, err := repo.Head()
	if err != nil {
		return benchdata.Commit{}, fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	c, err := repo.CommitObject(head.Hash())
	if err != nil {
		return benchdata.Commit{}, fmt.Errorf("failed to load commit %s: %w", head.Hash(), err)
	}

	distinct := true
	commit := benchdata.Commit{
		Author: benchdata.CommitUser{
			Email:    c.Author.Email,
			Name:     c.Author.Name,
			Username: opts.Username,
		},
		Committer: benchdata.CommitUser{
			Email:    c.Committer.Email,
			Name:     c.Committer.Name,
			Username: opts.Username,
		},
		Distinct:  &distinct,
		ID:        c.Hash.String(),
		Message:   strings.TrimRight(c.Message, "\n"),
		Timestamp: c.Author.When.Format(time.RFC3339),
		TreeID:    c.TreeHash.String(),
		URL:       CommitURL(opts.RepoURL, c.Hash.String()),
	}
	return commit, nil
}

// CommitURL joins a repository URL and a commit id.
func CommitURL(repoURL, id string) string {
	if repoURL == "" {
		return ""
	}
	return strings.TrimSuffix(repoURL, "/") + "/commit/" + id
}

// RemoteURL returns the browsable https URL of the named remote.
func RemoteURL(dir, remote string) (string, error) {
	repo, err := open(dir)
	if err != nil {
		return "", err
	}
	r, err := repo.Remote(remote)
	if err != nil {
		return "", fmt.Errorf("failed to look up remote %q: %w", remote, err)
	}
	urls := r.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoRemote, remote)
	}
	return BrowsableURL(urls[0])
}

// BrowsableURL converts a clone URL into an https URL without credentials
// or the .git suffix, e.g. git@github.com:o/r.git -> https://github.com/o/r.
func BrowsableURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrNoRemote
	}

	// scp-like syntax: user@host:path
	if !strings.Contains(raw, "://") {
		at := strings.Index(raw, "@")
		colon := strings.Index(raw, ":")
		if colon < 0 || colon < at {
			return "", fmt.Errorf("unsupported remote URL %q", raw)
		}
		host := raw[at+1 : colon]
		path := raw[colon+1:]
		return "https://" + host + "/" + trimRepoPath(path), nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid remote URL %q: %w", raw, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("unsupported remote URL %q", raw)
	}
	return "https://" + u.Hostname() + "/" + trimRepoPath(u.Path), nil
}

func trimRepoPath(p string) string {
	p = strings.Trim(p, "/")
	return strings.TrimSuffix(p, ".git")
}
