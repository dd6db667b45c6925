package screens

import (
	"fmt"
	"strings"

	"github.com/almanova/preocupacional/cmd/preocupacional/wizard/components"
	"github.com/almanova/preocupacional/internal/intake"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SubmitScreen shows the submission pipeline's progress
type SubmitScreen struct {
	state   intake.SubmissionState
	spinner spinner.Model
	bar     progress.Model
	width   int
}

// NewSubmitScreen creates the submission screen
func NewSubmitScreen() *SubmitScreen {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("30"))
	return &SubmitScreen{
		spinner: sp,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		state:   intake.SubmissionState{Status: intake.StatusGeneratingPDF, Message: "Preparando envío..."},
	}
}

// Init implements tea.Model
func (s *SubmitScreen) Init() tea.Cmd { return s.spinner.Tick }

// Update implements tea.Model
func (s *SubmitScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.bar.Width = min(60, max(20, msg.Width/2))
	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd
	}
	return s, nil
}

// SetState records the latest submission state
func (s *SubmitScreen) SetState(st intake.SubmissionState) { s.state = st }

// State returns the latest submission state
func (s *SubmitScreen) State() intake.SubmissionState { return s.state }

// View implements tea.Model
func (s *SubmitScreen) View() string {
	var sb strings.Builder
	sb.WriteString(components.TitleStyle.Render("ENVÍO DEL FORMULARIO"))
	sb.WriteString("\n\n")

	switch s.state.Status {
	case intake.StatusSuccess:
		sb.WriteString(components.SuccessStyle.Render("✓ " + s.state.Message))
	case intake.StatusError:
		sb.WriteString(StatusLine(s.state.Message, false))
	default:
		sb.WriteString(s.spinner.View())
		sb.WriteString(" ")
		sb.WriteString(s.state.Message)
	}
	sb.WriteString("\n\n")
	sb.WriteString(s.bar.ViewAs(float64(s.state.Progress) / 100))
	sb.WriteString(fmt.Sprintf(" %d%%", s.state.Progress))
	sb.WriteString("\n\n")
	sb.WriteString(components.HintStyle.Render("No cierre la aplicación durante el envío"))
	return sb.String()
}
