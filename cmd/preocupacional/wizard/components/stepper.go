package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// StepNames are the stepper labels, indexed by step.
var StepNames = []string{"Bienvenida", "Datos personales", "Empleador", "Info. médica", "Declaración", "Firma"}

var (
	stepCurrentStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("30")).Underline(true)
	stepDoneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	stepTodoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	stepAlertStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

// Stepper renders the step header. valid[i] marks completed steps and alert
// highlights the current step while a validation pulse is active.
func Stepper(current int, valid []bool, alert bool) string {
	parts := make([]string, len(StepNames))
	for i, name := range StepNames {
		mark := "○"
		if i < len(valid) && valid[i] {
			mark = "✓"
		}
		label := mark + " " + name
		switch {
		case i == current && alert:
			parts[i] = stepAlertStyle.Render(label)
		case i == current:
			parts[i] = stepCurrentStyle.Render(label)
		case mark == "✓":
			parts[i] = stepDoneStyle.Render(label)
		default:
			parts[i] = stepTodoStyle.Render(label)
		}
	}
	return strings.Join(parts, stepTodoStyle.Render(" › "))
}
