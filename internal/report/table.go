package report

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"benchtrack/internal/benchdata"
	"benchtrack/internal/benchmark"
)

// FormatValue prints a bench value without trailing zeros.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatDate renders an epoch-millisecond date in UTC.
func FormatDate(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

// statusWidth fits the longest status label.
var statusWidth = len(benchmark.StatusImproved)

// WriteTable prints one row per comparison with its status against threshold.
// Columns are laid out on plain text and the status cell is styled after
// padding, so colour codes never shift the alignment.
func WriteTable(w io.Writer, comps []benchmark.Comparison, threshold benchmark.Threshold) error {
	var body bytes.Buffer
	tw := tabwriter.NewWriter(&body, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BENCHMARK\tCURRENT\tPREVIOUS\tRATIO")
	for _, c := range comps {
		prev, ratio := "-", "-"
		if c.HasPrev {
			prev = FormatValue(c.Prev.Value) + " " + oneLine(c.Prev.Unit)
		}
		if c.HasRatio {
			ratio = fmt.Sprintf("%.2f", c.Ratio)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			oneLine(c.Name),
			FormatValue(c.Curr.Value)+" "+oneLine(c.Curr.Unit),
			prev,
			ratio,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	rows := strings.Split(strings.TrimSuffix(body.String(), "\n"), "\n")
	if _, err := fmt.Fprintf(w, "%s  %s\n", headerStyle.Render(padRight("STATUS", statusWidth)), rows[0]); err != nil {
		return err
	}
	for i, c := range comps {
		status := c.Status(threshold)
		cell := statusStyle(status).Render(padRight(string(status), statusWidth))
		if _, err := fmt.Fprintf(w, "%s  %s\n", cell, rows[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func padRight(s string, width int) string {
	if n := width - len(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

// WriteEntries lists entries oldest first, one line each.
func WriteEntries(w io.Writer, key string, entries []benchdata.Entry) error {
	fmt.Fprintln(w, titleStyle.Render(key))
	if len(entries) == 0 {
		fmt.Fprintln(w, "No entries recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tCOMMIT\tDATE\tTOOL\tBENCHES\tMESSAGE")
	for i, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n",
			i, e.Commit.ShortID(), FormatDate(e.Date), e.Tool, len(e.Benches), oneLine(firstLine(e.Commit.Message)))
	}
	return tw.Flush()
}

// WriteBenches prints the benches of a single entry.
func WriteBenches(w io.Writer, entry benchdata.Entry) error {
	fmt.Fprintf(w, "%s %s (%s)\n", titleStyle.Render("commit"), entry.Commit.ID, FormatDate(entry.Date))
	if entry.Commit.URL != "" {
		fmt.Fprintln(w, entry.Commit.URL)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tVALUE\tUNIT\tEXTRA")
	for _, b := range entry.Benches {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", b.Name, FormatValue(b.Value), oneLine(b.Unit), oneLine(b.Extra))
	}
	return tw.Flush()
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}

// oneLine keeps tab separated cells intact by flattening whitespace
// control characters.
func oneLine(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\t', '\r':
			return ' '
		}
		return r
	}, s)
}
