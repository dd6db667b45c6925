package screens

import (
	"fmt"
	"strings"

	"github.com/almanova/preocupacional/cmd/preocupacional/wizard/components"
	"github.com/almanova/preocupacional/internal/form"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// ReviewAction is the user's choice on the review screen
type ReviewAction string

const (
	ActionSubmit ReviewAction = "submit"
	ActionBack   ReviewAction = "back"
	ActionSave   ReviewAction = "save"
	ActionQuit   ReviewAction = "quit"
)

var (
	reviewLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Width(22)
	reviewBoxStyle   = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("30")).
				Padding(0, 2)
)

// ReviewScreen summarizes the snapshot before submission
type ReviewScreen struct {
	form      *huh.Form
	snapshot  form.Snapshot
	canSubmit bool
	notice    string
	action    ReviewAction
	done      bool
}

// NewReviewScreen creates the review screen. notice is shown above the
// actions, e.g. the outcome of a previous attempt.
func NewReviewScreen(s form.Snapshot, canSubmit bool, notice string) *ReviewScreen {
	r := &ReviewScreen{snapshot: s, canSubmit: canSubmit, notice: notice, action: ActionSubmit}

	opts := []huh.Option[ReviewAction]{
		huh.NewOption("Enviar formulario", ActionSubmit),
		huh.NewOption("Volver a editar", ActionBack),
		huh.NewOption("Guardar snapshot (YAML)", ActionSave),
		huh.NewOption("Salir", ActionQuit),
	}
	if !canSubmit {
		opts = opts[1:]
		r.action = ActionBack
	}
	r.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[ReviewAction]().
				Key("action").
				Title("¿Qué desea hacer?").
				Options(opts...).
				Value(&r.action),
		),
	).WithShowHelp(false)
	return r
}

// Init implements tea.Model
func (r *ReviewScreen) Init() tea.Cmd { return r.form.Init() }

// Update implements tea.Model
func (r *ReviewScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := r.form.Update(msg)
	if f, ok := m.(*huh.Form); ok {
		r.form = f
	}
	if r.form.State == huh.StateCompleted {
		r.done = true
	}
	return r, cmd
}

// View implements tea.Model
func (r *ReviewScreen) View() string {
	parts := []string{
		components.TitleStyle.Render("REVISIÓN"),
		reviewBoxStyle.Render(Summary(r.snapshot)),
	}
	if !r.canSubmit {
		parts = append(parts, components.ErrorStyle.Render("Complete todos los pasos antes de enviar"))
	}
	if r.notice != "" {
		parts = append(parts, r.notice)
	}
	parts = append(parts, "", r.form.View())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// Done reports whether an action was chosen
func (r *ReviewScreen) Done() bool { return r.done }

// Action returns the chosen action
func (r *ReviewScreen) Action() ReviewAction { return r.action }

// Summary renders the key facts of a snapshot, one per line.
func Summary(s form.Snapshot) string {
	var sb strings.Builder
	row := func(label, value string) {
		if value == "" {
			value = "—"
		}
		sb.WriteString(reviewLabelStyle.Render(label))
		sb.WriteString(value)
		sb.WriteString("\n")
	}
	check := func(ok bool) string {
		if ok {
			return "✓"
		}
		return "pendiente"
	}

	if p := s.PersonalInfo; p != nil {
		row("Paciente", p.FullName())
		row("RUN", p.RUN)
		row("Email", p.Email)
	} else {
		row("Datos personales", check(false))
	}
	if e := s.EmployerInfo; e != nil {
		row("Empresa", e.EmpresaNombre)
		row("Cargo", e.Cargo)
	} else {
		row("Empleador", check(false))
	}
	row("Información médica", check(s.MedicalInfo != nil))
	row("Declaración jurada", check(s.Affidavit != nil && s.Affidavit.Validate() == nil))
	row("Firma", check(s.Signature != nil && s.Signature.Base64 != ""))
	return strings.TrimRight(sb.String(), "\n")
}

// StatusLine renders a one-line message in the success or error style.
func StatusLine(msg string, ok bool) string {
	if ok {
		return components.SuccessStyle.Render(msg)
	}
	return components.ErrorStyle.Render(fmt.Sprintf("✗ %s", msg))
}
