package benchmark

import (
	"bufio"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"benchtrack/internal/benchdata"
)

var (
	// Standard Go benchmark line:
	// Benchmark_pkgr_with_50_packages-2   1   14601909907 ns/op   9.418 DeleteSeconds
	benchRegex = regexp.MustCompile(`^(Benchmark\S*?)(?:-(\d+))?\s+(\d+)\s+(.+)$`)
)

// Parse converts raw benchmark output for tool into measurements.
func Parse(tool Tool, output []byte) ([]benchdata.Bench, error) {
	switch tool {
	case ToolGo:
		return ParseGoOutput(string(output))
	case ToolCustomSmallerIsBetter, ToolCustomBiggerIsBetter:
		return ParseCustomJSON(output)
	default:
		return nil, fmt.Errorf("unsupported tool %q", tool)
	}
}

// ParseGoOutput parses `go test -bench` output. The value is the first
// metric on the line and the unit keeps the rest of the line verbatim so
// secondary metrics reported with b.ReportMetric survive.
func ParseGoOutput(output string) ([]benchdata.Bench, error) {
	var results []benchdata.Bench
	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		matches := benchRegex.FindStringSubmatch(line)
		if matches == nil {
			continue
		}

		name, procs, times, remainder := matches[1], matches[2], matches[3], strings.TrimSpace(matches[4])

		valueStr, unit := remainder, ""
		if i := strings.IndexAny(remainder, " \t"); i >= 0 {
			valueStr = remainder[:i]
			unit = strings.TrimLeft(remainder[i:], " \t")
		}

		value, err := strconv.ParseFloat(valueStr, 64)
		if err != nil {
			continue
		}

		extra := times + " times"
		if procs != "" {
			extra += "\n" + procs + " procs"
		}

		results = append(results, benchdata.Bench{
			Name:  name,
			Value: value,
			Unit:  unit,
			Extra: extra,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read benchmark output: %w", err)
	}
	return results, nil
}

type customResult struct {
	Name  string   `json:"name"`
	Unit  string   `json:"unit"`
	Value *float64 `json:"value"`
	Range string   `json:"range,omitempty"`
	Extra string   `json:"extra,omitempty"`
}

// ParseCustomJSON parses the JSON array produced for the custom tools.
func ParseCustomJSON(data []byte) ([]benchdata.Bench, error) {
	var raw []customResult
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse custom benchmark JSON: %w", err)
	}

	results := make([]benchdata.Bench, 0, len(raw))
	for i, r := range raw {
		if r.Name == "" {
			return nil, fmt.Errorf("custom benchmark %d has no name", i)
		}
		if r.Value == nil {
			return nil, fmt.Errorf("custom benchmark %q has no numeric value", r.Name)
		}
		results = append(results, benchdata.Bench{
			Name:  r.Name,
			Value: *r.Value,
			Unit:  r.Unit,
			Range: r.Range,
			Extra: r.Extra,
		})
	}
	return results, nil
}
