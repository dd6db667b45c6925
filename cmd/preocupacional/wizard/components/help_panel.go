package components

import (
	"strings"

	"github.com/almanova/preocupacional/cmd/preocupacional/wizard/help"
	"github.com/charmbracelet/lipgloss"
)

var (
	helpPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("30")).
			Padding(0, 2).
			Width(60)

	helpTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("30")).
			Bold(true)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	helpDetailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))
)

// HelpPanel displays contextual help for the focused field
type HelpPanel struct {
	currentField string
	width        int
}

// NewHelpPanel creates a new help panel
func NewHelpPanel() *HelpPanel {
	return &HelpPanel{width: 60}
}

// SetField updates which field's help to display
func (h *HelpPanel) SetField(field string) {
	h.currentField = field
}

// SetWidth updates the panel width
func (h *HelpPanel) SetWidth(width int) {
	if width >= 24 {
		h.width = width
	}
}

// View renders the help panel. Fields without help render nothing.
func (h *HelpPanel) View() string {
	text, ok := help.Texts[h.currentField]
	if !ok {
		return ""
	}
	style := helpPanelStyle.Width(h.width - 4)

	var sb strings.Builder
	sb.WriteString(helpTitleStyle.Render(text.Title))
	sb.WriteString("\n")
	sb.WriteString(helpDescStyle.Render(text.Description))
	if text.Details != "" {
		sb.WriteString("\n")
		sb.WriteString(helpDetailStyle.Render(text.Details))
	}
	return style.Render(sb.String())
}
