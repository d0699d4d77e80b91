package benchmark

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"benchtrack/internal/benchdata"
)

// Threshold is a ratio above which a benchmark is considered regressed.
// 2.0 means "twice as bad as the previous run".
type Threshold float64

// DefaultThreshold matches an alert threshold of 200%.
const DefaultThreshold Threshold = 2.0

// ParseThreshold accepts "200%" or "2.0".
func ParseThreshold(s string) (Threshold, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("threshold must not be empty")
	}

	var (
		v   float64
		err error
	)
	if pct, ok := strings.CutSuffix(s, "%"); ok {
		v, err = strconv.ParseFloat(strings.TrimSpace(pct), 64)
		v /= 100
	} else {
		v, err = strconv.ParseFloat(s, 64)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid threshold %q: %w", s, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("threshold must be positive, got %q", s)
	}
	return Threshold(v), nil
}

func (t Threshold) String() string {
	return strconv.FormatFloat(float64(t)*100, 'f', -1, 64) + "%"
}

// Status classifies a comparison.
type Status string

const (
	StatusNew      Status = "NEW"
	StatusOK       Status = "OK"
	StatusAlert    Status = "ALERT"
	StatusImproved Status = "IMPROVED"
)

type Comparison struct {
	Name    string
	Curr    benchdata.Bench
	Prev    benchdata.Bench
	HasPrev bool
	// Ratio is how many times worse the current value is; values above 1
	// are regressions regardless of the tool's direction.
	Ratio    float64
	HasRatio bool
}

// Compare runs comparison between the benchmarks of two entries.
// Every benchmark of curr is reported, in curr's order; those missing from
// prev are marked as new.
func Compare(prev, curr benchdata.Entry, tool Tool) []Comparison {
	prevMap := make(map[string]benchdata.Bench, len(prev.Benches))
	for _, b := range prev.Benches {
		prevMap[b.Name] = b
	}

	comparisons := make([]Comparison, 0, len(curr.Benches))
	for _, c := range curr.Benches {
		comp := Comparison{Name: c.Name, Curr: c}
		if p, ok := prevMap[c.Name]; ok {
			comp.Prev = p
			comp.HasPrev = true
			comp.Ratio, comp.HasRatio = ratio(p.Value, c.Value, tool.BiggerIsBetter())
		}
		comparisons = append(comparisons, comp)
	}
	return comparisons
}

func ratio(prev, curr float64, biggerIsBetter bool) (float64, bool) {
	if biggerIsBetter {
		switch {
		case prev == 0 && curr == 0:
			return 0, false
		case curr == 0:
			// throughput dropped to nothing
			return math.Inf(1), true
		}
		return prev / curr, true
	}
	if prev == 0 {
		return 0, false
	}
	return curr / prev, true
}

// Status classifies the comparison against threshold.
func (c Comparison) Status(threshold Threshold) Status {
	switch {
	case !c.HasPrev:
		return StatusNew
	case !c.HasRatio:
		return StatusOK
	case c.Ratio > float64(threshold):
		return StatusAlert
	case c.Ratio < 1/float64(threshold):
		return StatusImproved
	default:
		return StatusOK
	}
}

// Alerts returns the comparisons whose ratio exceeds threshold.
func Alerts(comps []Comparison, threshold Threshold) []Comparison {
	return lo.Filter(comps, func(c Comparison, _ int) bool {
		return c.Status(threshold) == StatusAlert
	})
}

// Percent returns the change of the current value relative to the previous
// one, e.g. +20.00 when the value grew by a fifth.
func (c Comparison) Percent() float64 {
	if !c.HasPrev || c.Prev.Value == 0 {
		return 0
	}
	return (c.Curr.Value - c.Prev.Value) / c.Prev.Value * 100
}

func (c Comparison) String() string {
	if !c.HasRatio {
		return fmt.Sprintf("%s: %v %s", c.Name, c.Curr.Value, c.Curr.Unit)
	}
	return fmt.Sprintf("%s: ratio %.2f (%+.2f%%)", c.Name, c.Ratio, c.Percent())
}
