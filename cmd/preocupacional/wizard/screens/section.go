// Package screens holds the wizard's bubbletea screens. Section screens wrap
// a huh form bound to one section payload.
package screens

import (
	"errors"
	"strings"

	"github.com/almanova/preocupacional/cmd/preocupacional/wizard/components"
	"github.com/almanova/preocupacional/internal/form"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Section is one wizard step. Payload and Valid are recomputed on demand from
// the values bound to the form.
type Section interface {
	tea.Model
	Step() int
	Payload() any
	Valid() bool
	// ShowErrors switches the screen into error display mode.
	ShowErrors()
	// Done reports whether the user completed the last field.
	Done() bool
}

const navHint = "Tab: siguiente campo | Ctrl+N: siguiente paso | Ctrl+P: paso anterior | Esc: salir"

// sectionBase carries the huh plumbing shared by every section screen.
type sectionBase struct {
	step       int
	title      string
	subtitle   string
	form       *huh.Form
	help       *components.HelpPanel
	validate   func() error
	showErrors bool
	done       bool
	width      int
}

func newSectionBase(step int, title, subtitle string) sectionBase {
	return sectionBase{
		step:     step,
		title:    title,
		subtitle: subtitle,
		help:     components.NewHelpPanel(),
	}
}

func (b *sectionBase) Step() int { return b.step }

func (b *sectionBase) Done() bool { return b.done }

func (b *sectionBase) ShowErrors() { b.showErrors = true }

func (b *sectionBase) Valid() bool { return b.validate() == nil }

// Init implements tea.Model
func (b *sectionBase) Init() tea.Cmd {
	return b.form.Init()
}

func (b *sectionBase) update(msg tea.Msg) tea.Cmd {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		b.width = wsm.Width
		b.help.SetWidth(wsm.Width / 2)
	}

	m, cmd := b.form.Update(msg)
	if f, ok := m.(*huh.Form); ok {
		b.form = f
	}
	if focused := b.form.GetFocusedField(); focused != nil {
		b.help.SetField(focused.GetKey())
	}
	if b.form.State == huh.StateCompleted {
		b.done = true
	}
	return cmd
}

func (b *sectionBase) view() string {
	parts := []string{
		components.TitleStyle.Render(b.title),
	}
	if b.subtitle != "" {
		parts = append(parts, components.SubtitleStyle.Render(b.subtitle))
	}
	parts = append(parts, b.form.View())

	if b.showErrors {
		if errs := fieldErrors(b.validate()); len(errs) > 0 {
			parts = append(parts, "", components.ErrorStyle.Render("Corrija los siguientes campos:\n"+strings.Join(errs, "\n")))
		}
	}
	if h := b.help.View(); h != "" {
		parts = append(parts, "", h)
	}
	parts = append(parts, "", components.HintStyle.Render(navHint))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func fieldErrors(err error) []string {
	if err == nil {
		return nil
	}
	var verrs form.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"• " + err.Error()}
	}
	out := make([]string, len(verrs))
	for i, e := range verrs {
		out[i] = "• " + e.Field + ": " + e.Message
	}
	return out
}

// yesNo is a Sí/No select bound to v.
func yesNo(key, title string, v *string) *huh.Select[string] {
	return huh.NewSelect[string]().
		Key(key).
		Title(title).
		Options(
			huh.NewOption("No", form.No),
			huh.NewOption("Sí", form.Yes),
		).
		Inline(true).
		Value(v)
}

func input(key, title string, v *string) *huh.Input {
	return huh.NewInput().Key(key).Title(title).Value(v)
}
