package screens

import (
	"github.com/almanova/preocupacional/internal/form"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// PersonalScreen collects the patient's personal data
type PersonalScreen struct {
	sectionBase
	data form.PersonalInfo
}

// NewPersonalScreen creates the personal data step prefilled with data
func NewPersonalScreen(data form.PersonalInfo) *PersonalScreen {
	s := &PersonalScreen{
		sectionBase: newSectionBase(form.StepPersonal, "DATOS PERSONALES", "Paso 1 de 5"),
		data:        data,
	}
	s.validate = func() error { return s.data.Validate() }
	d := &s.data
	s.form = huh.NewForm(
		huh.NewGroup(
			input("nombres", "Nombres", &d.Nombres),
			input("apellidos", "Apellidos", &d.Apellidos),
			input("run", "RUN", &d.RUN).Placeholder("12.345.678-5"),
			huh.NewSelect[string]().
				Key("genero").
				Title("Género").
				Options(huh.NewOptions("Femenino", "Masculino", "Otro", "Prefiero no decir")...).
				Value(&d.Genero),
			input("fechaNacimiento", "Fecha de nacimiento", &d.FechaNacimiento).Placeholder("AAAA-MM-DD"),
			input("nacionalidad", "Nacionalidad", &d.Nacionalidad),
		).Title("Identificación"),
		huh.NewGroup(
			input("telefono", "Teléfono", &d.Telefono).Placeholder("+56 9 1234 5678"),
			input("email", "Email", &d.Email),
			input("direccion", "Dirección", &d.Direccion),
			input("region", "Región", &d.Region),
			input("ciudad", "Ciudad", &d.Ciudad),
			input("comuna", "Comuna", &d.Comuna),
			input("prevision", "Previsión", &d.Prevision).Placeholder("FONASA / Isapre"),
		).Title("Contacto y previsión"),
	).WithShowHelp(false)
	return s
}

// Update implements tea.Model
func (s *PersonalScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return s, s.update(msg)
}

// View implements tea.Model
func (s *PersonalScreen) View() string { return s.view() }

// Payload returns a copy of the bound section
func (s *PersonalScreen) Payload() any { return s.data }
