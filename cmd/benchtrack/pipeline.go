package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"benchtrack/internal/benchdata"
	"benchtrack/internal/benchmark"
	"benchtrack/internal/config"
	"benchtrack/internal/db"
	"benchtrack/internal/git"
	"benchtrack/internal/notify"
	"benchtrack/internal/report"
)

// Seams replaced in tests.
var (
	nowFunc      = time.Now
	newStoreFunc = func(path, repoURL string) benchmark.Store {
		return benchmark.NewFileStore(path, repoURL)
	}
	newArchiveFunc  = db.NewStore
	newNotifierFunc = func(cfg config.Config) notify.Notifier {
		if m := notify.NewFromConfig(cfg); m != nil {
			return m
		}
		return nil
	}
	headCommitFunc = git.HeadCommit
	remoteURLFunc  = git.RemoteURL
)

// commitFlags override the commit descriptor collected from git.
type commitFlags struct {
	id        string
	message   string
	author    string
	email     string
	timestamp string
	url       string
}

// appendOptions are shared by append and run.
type appendOptions struct {
	commit         commitFlags
	alertThreshold string
	failThreshold  string
	failOnAlert    bool
	maxItems       int
	archive        bool
	dryRun         bool
	markdown       bool
}

func addAppendFlags(cmd *cobra.Command, o *appendOptions) {
	f := cmd.Flags()
	f.StringVar(&o.commit.id, "commit-id", "", "Commit id to record instead of reading HEAD")
	f.StringVar(&o.commit.message, "commit-message", "", "Commit message override")
	f.StringVar(&o.commit.author, "commit-author", "", "Commit author name override")
	f.StringVar(&o.commit.email, "commit-email", "", "Commit author email override")
	f.StringVar(&o.commit.timestamp, "commit-timestamp", "", "Commit timestamp override (RFC 3339)")
	f.StringVar(&o.commit.url, "commit-url", "", "Commit URL override")
	f.StringVar(&o.alertThreshold, "alert-threshold", "", "Ratio that raises an alert, e.g. 200% (default from config)")
	f.StringVar(&o.failThreshold, "fail-threshold", "", "Ratio that fails the command with --fail-on-alert")
	f.BoolVar(&o.failOnAlert, "fail-on-alert", false, "Exit non-zero when a benchmark exceeds the fail threshold")
	f.IntVar(&o.maxItems, "max-items", 0, "Keep at most this many entries under the key after appending")
	f.BoolVar(&o.archive, "archive", false, "Mirror the data file into the SQL archive")
	f.BoolVar(&o.dryRun, "dry-run", false, "Compare without writing the data file")
	f.BoolVar(&o.markdown, "markdown", false, "Print the alert as rendered markdown")
}

// resolve merges changed flags over the loaded configuration.
func (o *appendOptions) resolve(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	if f.Changed("alert-threshold") {
		t, err := benchmark.ParseThreshold(o.alertThreshold)
		if err != nil {
			return fmt.Errorf("--alert-threshold: %w", err)
		}
		cfg.AlertThreshold = t
		if viper.GetString("fail_threshold") == "" && !f.Changed("fail-threshold") {
			cfg.FailThreshold = t
		}
	}
	if f.Changed("fail-threshold") {
		t, err := benchmark.ParseThreshold(o.failThreshold)
		if err != nil {
			return fmt.Errorf("--fail-threshold: %w", err)
		}
		cfg.FailThreshold = t
	}
	if f.Changed("fail-on-alert") {
		cfg.FailOnAlert = o.failOnAlert
	}
	if f.Changed("max-items") {
		if o.maxItems < 0 {
			return fmt.Errorf("--max-items must not be negative")
		}
		cfg.MaxItems = o.maxItems
	}
	if f.Changed("archive") {
		cfg.ArchiveEnabled = o.archive
	}
	return nil
}

// repoURL returns the configured URL or the one of the git remote.
func repoURL(cfg config.Config) string {
	if cfg.RepoURL != "" {
		return cfg.RepoURL
	}
	u, err := remoteURLFunc(".", cfg.Remote)
	if err != nil {
		slog.Debug("no repository URL from git remote", "remote", cfg.Remote, "error", err)
		return ""
	}
	return u
}

func resolveCommit(cfg config.Config, repo string, cf commitFlags) (benchdata.Commit, error) {
	var c benchdata.Commit
	if cf.id == "" {
		var err error
		c, err = headCommitFunc(".", git.CommitOptions{RepoURL: repo, Username: cfg.Username})
		if err != nil {
			return c, fmt.Errorf("failed to resolve commit (use --commit-id outside a git checkout): %w", err)
		}
	} else {
		distinct := true
		c = benchdata.Commit{
			ID:        cf.id,
			Distinct:  &distinct,
			Timestamp: nowFunc().UTC().Format(time.RFC3339),
			URL:       git.CommitURL(repo, cf.id),
			Author:    benchdata.CommitUser{Username: cfg.Username},
			Committer: benchdata.CommitUser{Username: cfg.Username},
		}
	}

	if cf.message != "" {
		c.Message = cf.message
	}
	if cf.author != "" {
		c.Author.Name = cf.author
		c.Committer.Name = cf.author
	}
	if cf.email != "" {
		c.Author.Email = cf.email
		c.Committer.Email = cf.email
	}
	if cf.timestamp != "" {
		if _, err := time.Parse(time.RFC3339, cf.timestamp); err != nil {
			return c, fmt.Errorf("--commit-timestamp: %w", err)
		}
		c.Timestamp = cf.timestamp
	}
	if cf.url != "" {
		c.URL = cf.url
	}
	return c, nil
}

// recordResults is the shared pipeline of append and run: parse, compare
// with the previous entry, append, archive and alert.
func recordResults(ctx context.Context, cmd *cobra.Command, o *appendOptions, output []byte) error {
	cfg := config.Get()
	if err := o.resolve(cmd, &cfg); err != nil {
		return err
	}

	benches, err := benchmark.Parse(cfg.Tool, output)
	if err != nil {
		return fmt.Errorf("failed to parse benchmark output: %w", err)
	}
	if len(benches) == 0 {
		return fmt.Errorf("no benchmark results found in %s output", cfg.Tool)
	}

	repo := repoURL(cfg)
	commit, err := resolveCommit(cfg, repo, o.commit)
	if err != nil {
		return err
	}

	entry := benchdata.Entry{
		Commit:  commit,
		Date:    nowFunc().UnixMilli(),
		Tool:    cfg.Tool.String(),
		Benches: benches,
	}

	store := newStoreFunc(cfg.DataFile, repo)
	ds, err := store.Load()
	if err != nil {
		return err
	}
	prev, hasPrev := ds.Latest(cfg.Key)

	out := cmd.OutOrStdout()
	// a missing previous entry reports every bench as new
	comps := benchmark.Compare(prev, entry, cfg.Tool)
	if err := report.WriteTable(out, comps, cfg.AlertThreshold); err != nil {
		return err
	}

	if o.dryRun {
		fmt.Fprintln(out, "Dry run: data file not written.")
	} else {
		if ds, err = store.Append(cfg.Key, entry); err != nil {
			return fmt.Errorf("failed to append entry: %w", err)
		}
		if cfg.MaxItems > 0 {
			if removed := ds.Prune(cfg.Key, cfg.MaxItems); removed > 0 {
				if err := store.Save(ds); err != nil {
					return err
				}
				slog.Info("pruned old entries", "key", cfg.Key, "removed", removed)
			}
		}
		fmt.Fprintf(out, "Recorded %d benchmarks for %s at %s (%d entries).\n",
			len(benches), cfg.Key, commit.ShortID(), ds.Len(cfg.Key))

		if cfg.ArchiveEnabled {
			if err := archiveDataset(cfg, ds, out); err != nil {
				return err
			}
		}
	}

	if !hasPrev {
		return nil
	}

	alerts := benchmark.Alerts(comps, cfg.AlertThreshold)
	if len(alerts) > 0 {
		md := report.AlertMarkdown(cfg.Key, entry, prev, alerts, cfg.AlertThreshold)
		if o.markdown {
			fmt.Fprint(out, report.RenderMarkdown(md))
		} else {
			for _, a := range alerts {
				fmt.Fprintf(cmd.ErrOrStderr(), "Performance alert: %s\n", a)
			}
		}
		if n := newNotifierFunc(cfg); n != nil && !o.dryRun {
			if err := n.Notify(ctx, md); err != nil {
				slog.Warn("failed to deliver alert", "error", err)
			}
		}
	}

	if cfg.FailOnAlert {
		failed := lo.FilterMap(comps, func(c benchmark.Comparison, _ int) (string, bool) {
			return c.Name, c.HasRatio && c.Ratio > float64(cfg.FailThreshold)
		})
		if len(failed) > 0 {
			return fmt.Errorf("performance regression beyond %s: %s", cfg.FailThreshold, strings.Join(failed, ", "))
		}
	}
	return nil
}

func archiveDataset(cfg config.Config, ds *benchdata.Dataset, out io.Writer) error {
	archive, err := newArchiveFunc(cfg.Archive)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer archive.Close()

	n, err := db.Sync(archive, ds)
	if err != nil {
		return fmt.Errorf("failed to sync archive: %w", err)
	}
	fmt.Fprintf(out, "Archived %d new entries.\n", n)
	return nil
}
