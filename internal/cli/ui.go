package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// UI styles
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 2)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F59E0B"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981"))
)

// DisplayWelcomeBanner shows the interactive mode banner
func DisplayWelcomeBanner(w io.Writer) {
	banner := strings.Join([]string{
		"EquilibriumGo",
		"Supply and demand curve fitting with market equilibrium",
	}, "\n")
	fmt.Fprintln(w, headerStyle.Render(banner))
	fmt.Fprintln(w)
}

func DisplaySection(w io.Writer, title string) {
	fmt.Fprintln(w, sectionStyle.Render(title))
}

// DisplayError shows an error message
func DisplayError(w io.Writer, err error) {
	fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("Error: %s", err.Error())))
}

func DisplayWarning(w io.Writer, message string) {
	fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("Warning: %s", message)))
}

// DisplayInfo shows an info message
func DisplayInfo(w io.Writer, message string) {
	fmt.Fprintln(w, infoStyle.Render(message))
}

// DisplaySuccess shows a success message
func DisplaySuccess(w io.Writer, message string) {
	fmt.Fprintln(w, successStyle.Render(message))
}
