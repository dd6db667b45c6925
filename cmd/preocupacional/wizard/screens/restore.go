package screens

import (
	"fmt"

	"github.com/almanova/preocupacional/cmd/preocupacional/wizard/components"
	"github.com/almanova/preocupacional/internal/intake"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// RestoreScreen asks whether to resume a stored draft
type RestoreScreen struct {
	form    *huh.Form
	info    intake.DraftInfo
	restore bool
	done    bool
}

// NewRestoreScreen creates the prompt for the draft described by info
func NewRestoreScreen(info intake.DraftInfo) *RestoreScreen {
	s := &RestoreScreen{info: info, restore: true}

	desc := fmt.Sprintf("Iniciado el %s.", info.StartedAt.Local().Format("02-01-2006 15:04"))
	if info.PatientName != "" {
		desc = fmt.Sprintf("Paciente: %s\n%s", info.PatientName, desc)
	}
	if info.LastStep > 0 && info.LastStep < len(components.StepNames) {
		desc += fmt.Sprintf("\nÚltimo paso completado: %s.", components.StepNames[info.LastStep])
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("restore").
				Title("Se encontró un formulario sin terminar").
				Description(desc + "\n\n¿Desea continuar donde lo dejó?").
				Affirmative("Continuar").
				Negative("Empezar de nuevo").
				Value(&s.restore),
		),
	).WithShowHelp(false)
	return s
}

// Init implements tea.Model
func (s *RestoreScreen) Init() tea.Cmd { return s.form.Init() }

// Update implements tea.Model
func (s *RestoreScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := s.form.Update(msg)
	if f, ok := m.(*huh.Form); ok {
		s.form = f
	}
	if s.form.State == huh.StateCompleted {
		s.done = true
	}
	return s, cmd
}

// View implements tea.Model
func (s *RestoreScreen) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		components.TitleStyle.Render("BORRADOR ENCONTRADO"),
		s.form.View(),
	)
}

// Done reports whether the user answered
func (s *RestoreScreen) Done() bool { return s.done }

// Decision returns the user's answer
func (s *RestoreScreen) Decision() intake.Decision {
	if s.restore {
		return intake.DecisionRestore
	}
	return intake.DecisionDiscard
}
