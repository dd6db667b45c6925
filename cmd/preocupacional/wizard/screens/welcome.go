package screens

import (
	"github.com/almanova/preocupacional/internal/form"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

const welcomeText = `Este formulario reúne sus datos personales, los de su empleador y sus
antecedentes médicos para la evaluación pre-ocupacional.

Al finalizar firmará una declaración jurada. Se enviará una copia en PDF a
Alma Nova Clinic y otra a su correo electrónico.

Su avance se guarda automáticamente mientras completa el formulario.`

// WelcomeScreen is step 0. It is always valid and carries no payload.
type WelcomeScreen struct {
	sectionBase
	start bool
}

// NewWelcomeScreen creates the welcome step
func NewWelcomeScreen() *WelcomeScreen {
	s := &WelcomeScreen{
		sectionBase: newSectionBase(form.StepWelcome, "FORMULARIO PRE-OCUPACIONAL", "Alma Nova Clinic"),
		start:       true,
	}
	s.validate = func() error { return nil }
	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewNote().Title("Bienvenido/a").Description(welcomeText),
			huh.NewConfirm().
				Key("start").
				Title("¿Desea comenzar?").
				Affirmative("Comenzar").
				Negative("Salir").
				Value(&s.start),
		),
	).WithShowHelp(false)
	return s
}

// Update implements tea.Model
func (s *WelcomeScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return s, s.update(msg)
}

// View implements tea.Model
func (s *WelcomeScreen) View() string { return s.view() }

// Payload is nil: the welcome step owns no section.
func (s *WelcomeScreen) Payload() any { return nil }

// Start reports whether the user chose to begin rather than leave.
func (s *WelcomeScreen) Start() bool { return s.start }
