// Package tui holds the terminal UI used when devflow runs with --tui: a
// huh form for the feature description, a huh confirmation before
// publishing and a bubbletea review of the generated tickets.
package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/devflow/internal/prompt"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginLeft(2).
			MarginTop(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginLeft(2)

	selectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("170")).
				Bold(true).
				PaddingLeft(2)

	itemStyle = lipgloss.NewStyle().PaddingLeft(4)

	detailKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true)

	detailValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	helpStyle = lipgloss.NewStyle().MarginLeft(2).MarginTop(1)

	approveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	rejectStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

var ciEnvVars = []string{
	"CI",
	"GITHUB_ACTIONS",
	"GITLAB_CI",
	"JENKINS_URL",
	"BUILDKITE",
}

// Available reports whether full-screen prompts can be shown: stdin is a
// terminal and no CI environment is detected.
func Available() bool {
	for _, v := range ciEnvVars {
		if os.Getenv(v) != "" {
			return false
		}
	}
	return prompt.IsTerminal(os.Stdin)
}
