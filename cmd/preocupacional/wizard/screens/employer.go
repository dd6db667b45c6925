package screens

import (
	"github.com/almanova/preocupacional/internal/form"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// EmployerScreen collects the employer's data
type EmployerScreen struct {
	sectionBase
	data form.EmployerInfo
}

// NewEmployerScreen creates the employer step prefilled with data
func NewEmployerScreen(data form.EmployerInfo) *EmployerScreen {
	s := &EmployerScreen{
		sectionBase: newSectionBase(form.StepEmployer, "INFORMACIÓN DEL EMPLEADOR", "Paso 2 de 5"),
		data:        data,
	}
	s.validate = func() error { return s.data.Validate() }
	d := &s.data
	s.form = huh.NewForm(
		huh.NewGroup(
			input("empresaNombre", "Nombre de la empresa", &d.EmpresaNombre),
			input("empresaRut", "RUT de la empresa", &d.EmpresaRut).Placeholder("76.086.428-5"),
			input("cargo", "Cargo", &d.Cargo),
			input("fechaIngreso", "Fecha de ingreso", &d.FechaIngreso).Placeholder("AAAA-MM-DD"),
			huh.NewSelect[string]().
				Key("tipoContrato").
				Title("Tipo de contrato").
				Options(huh.NewOptions("Indefinido", "Plazo fijo", "Por obra o faena", "Honorarios")...).
				Value(&d.TipoContrato),
			input("telefonoEmpresa", "Teléfono de la empresa", &d.TelefonoEmpresa),
			input("direccionEmpresa", "Dirección de la empresa", &d.DireccionEmpresa),
		),
	).WithShowHelp(false)
	return s
}

// Update implements tea.Model
func (s *EmployerScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return s, s.update(msg)
}

// View implements tea.Model
func (s *EmployerScreen) View() string { return s.view() }

// Payload returns a copy of the bound section
func (s *EmployerScreen) Payload() any { return s.data }
