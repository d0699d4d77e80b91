package benchmark

import (
	"fmt"
	"strings"
)

// Tool identifies the format of benchmark output and the direction of
// improvement of its values.
type Tool string

const (
	ToolGo                    Tool = "go"
	ToolCustomSmallerIsBetter Tool = "customSmallerIsBetter"
	ToolCustomBiggerIsBetter  Tool = "customBiggerIsBetter"
)

var knownTools = []Tool{ToolGo, ToolCustomSmallerIsBetter, ToolCustomBiggerIsBetter}

// ParseTool validates a tool name.
func ParseTool(s string) (Tool, error) {
	for _, t := range knownTools {
		if string(t) == s {
			return t, nil
		}
	}
	names := make([]string, len(knownTools))
	for i, t := range knownTools {
		names[i] = string(t)
	}
	return "", fmt.Errorf("unsupported tool %q (expected one of %s)", s, strings.Join(names, ", "))
}

// BiggerIsBetter reports whether larger values are improvements.
func (t Tool) BiggerIsBetter() bool {
	return t == ToolCustomBiggerIsBetter
}

func (t Tool) String() string {
	return string(t)
}
