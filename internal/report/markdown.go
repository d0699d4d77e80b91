package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"benchtrack/internal/benchdata"
	"benchtrack/internal/benchmark"
)

// AlertMarkdown builds the body of a performance alert for the benches of
// curr that regressed against prev.
func AlertMarkdown(key string, curr, prev benchdata.Entry, alerts []benchmark.Comparison, threshold benchmark.Threshold) string {
	var b strings.Builder
	b.WriteString("# :warning: **Performance Alert** :warning:\n\n")
	fmt.Fprintf(&b, "Possible performance regression was detected for benchmark **'%s'**.\n", key)
	fmt.Fprintf(&b, "Benchmark result of this commit is worse than the previous benchmark result exceeding threshold `%s`.\n\n", threshold)
	writeComparisonTable(&b, curr, prev, alerts)
	return b.String()
}

// CompareMarkdown renders every comparison between two entries.
func CompareMarkdown(key string, curr, prev benchdata.Entry, comps []benchmark.Comparison) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", key)
	writeComparisonTable(&b, curr, prev, comps)
	return b.String()
}

func writeComparisonTable(b *strings.Builder, curr, prev benchdata.Entry, comps []benchmark.Comparison) {
	fmt.Fprintf(b, "| Benchmark suite | Current: %s | Previous: %s | Ratio |\n", commitRef(curr.Commit), commitRef(prev.Commit))
	b.WriteString("|-|-|-|-|\n")
	for _, c := range comps {
		prevCell, ratioCell := "", ""
		if c.HasPrev {
			prevCell = fmt.Sprintf("`%s` %s", FormatValue(c.Prev.Value), c.Prev.Unit)
		}
		if c.HasRatio {
			ratioCell = fmt.Sprintf("`%.2f`", c.Ratio)
		}
		fmt.Fprintf(b, "| `%s` | `%s` %s | %s | %s |\n",
			c.Name, FormatValue(c.Curr.Value), c.Curr.Unit, prevCell, ratioCell)
	}
}

func commitRef(c benchdata.Commit) string {
	if c.URL != "" {
		return fmt.Sprintf("[%s](%s)", c.ShortID(), c.URL)
	}
	return c.ShortID()
}

// EntryMarkdown renders the benches of one entry as a markdown table.
func EntryMarkdown(key string, entry benchdata.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s @ %s\n\n", key, commitRef(entry.Commit))
	if msg := firstLine(entry.Commit.Message); msg != "" {
		fmt.Fprintf(&b, "> %s\n\n", msg)
	}
	b.WriteString("| Name | Value | Unit | Extra |\n|-|-|-|-|\n")
	for _, bench := range entry.Benches {
		fmt.Fprintf(&b, "| `%s` | %s | %s | %s |\n",
			bench.Name, FormatValue(bench.Value), bench.Unit, strings.ReplaceAll(bench.Extra, "\n", "<br>"))
	}
	return b.String()
}

// RenderMarkdown renders md for the terminal, falling back to the raw text
// when rendering fails.
func RenderMarkdown(md string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return md
	}
	out, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return out
}
