package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/postchain/internal/ui"
)

// Style variables for the dashboard, built from the ui theme by
// initTUIStyles.
var (
	panelStyle      lipgloss.Style
	headerStyle     lipgloss.Style
	titleStyle      lipgloss.Style
	dimStyle        lipgloss.Style
	accentStyle     lipgloss.Style
	logTimeStyle    lipgloss.Style
	logNameStyle    lipgloss.Style
	logSuccessStyle lipgloss.Style
	logErrorStyle   lipgloss.Style
	footerKeyStyle  lipgloss.Style
	footerDescStyle lipgloss.Style
	statusBusyStyle lipgloss.Style
	statusIdleStyle lipgloss.Style
)

func init() {
	initTUIStyles()
}

// initTUIStyles rebuilds all styles from the current ui theme.
// Called at package init and again from Run after InitTheme has been invoked.
func initTUIStyles() {
	t := ui.GetCurrentTUITheme()

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Foreground(t.Text).
		Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent).
		Padding(0, 1)

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	dimStyle = lipgloss.NewStyle().Foreground(t.Dim)
	accentStyle = lipgloss.NewStyle().Foreground(t.Accent)

	logTimeStyle = lipgloss.NewStyle().Foreground(t.Dim)
	logNameStyle = lipgloss.NewStyle().Foreground(t.Accent)
	logSuccessStyle = lipgloss.NewStyle().Foreground(t.Success)
	logErrorStyle = lipgloss.NewStyle().Foreground(t.Error)

	footerKeyStyle = lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	footerDescStyle = lipgloss.NewStyle().Foreground(t.Dim)

	statusBusyStyle = lipgloss.NewStyle().Foreground(t.Success).Bold(true)
	statusIdleStyle = lipgloss.NewStyle().Foreground(t.Dim)
}
