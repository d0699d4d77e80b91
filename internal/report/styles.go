package report

import (
	"github.com/charmbracelet/lipgloss"

	"benchtrack/internal/benchmark"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("242"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))

	alertStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true) // Red
	improvedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)  // Green
	newStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))             // Cyan
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))            // Light Gray
)

func statusStyle(s benchmark.Status) lipgloss.Style {
	switch s {
	case benchmark.StatusAlert:
		return alertStyle
	case benchmark.StatusImproved:
		return improvedStyle
	case benchmark.StatusNew:
		return newStyle
	default:
		return okStyle
	}
}
