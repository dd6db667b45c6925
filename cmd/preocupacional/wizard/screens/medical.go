package screens

import (
	"github.com/almanova/preocupacional/internal/form"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

const detailHint = "Complete solo si respondió Sí"

// MedicalScreen is the medical questionnaire
type MedicalScreen struct {
	sectionBase
	data form.MedicalInfo
}

// NewMedicalScreen creates the questionnaire step prefilled with data
func NewMedicalScreen(data form.MedicalInfo) *MedicalScreen {
	s := &MedicalScreen{
		sectionBase: newSectionBase(form.StepMedical, "INFORMACIÓN MÉDICA", "Paso 3 de 5"),
		data:        data,
	}
	s.validate = func() error { return s.data.Validate() }
	d := &s.data
	detail := func(key, title string, v *string) *huh.Input {
		return input(key, title, v).Description(detailHint)
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			input("sintomas", "Síntomas actuales", &d.Sintomas),
			input("cuandoInicioSintomas", "¿Cuándo iniciaron los síntomas?", &d.CuandoInicioSintomas),
		).Title("Síntomas"),
		huh.NewGroup(
			yesNo("enfermedadCronica", "¿Tiene alguna enfermedad crónica?", &d.EnfermedadCronica),
			detail("detalleEnfermedadCronica", "Detalle enfermedad crónica", &d.DetalleEnfermedadCronica),
			yesNo("enfermedadMental", "¿Ha tenido alguna enfermedad de salud mental?", &d.EnfermedadMental),
			detail("detalleEnfermedadMental", "Detalle salud mental", &d.DetalleEnfermedadMental),
			yesNo("cirugiaPrevia", "¿Ha tenido cirugías previas?", &d.CirugiaPrevia),
			yesNo("reaccionAlergica", "¿Tiene alergias o reacciones alérgicas?", &d.ReaccionAlergica),
			detail("detalleReaccionAlergica", "Detalle alergias", &d.DetalleReaccionAlergica),
			yesNo("antecedenteFamiliar", "¿Tiene antecedentes familiares relevantes?", &d.AntecedenteFamiliar),
			detail("detalleAntecedenteFamiliar", "Detalle antecedentes familiares", &d.DetalleAntecedenteFamiliar),
		).Title("Antecedentes"),
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("estadoCivil").
				Title("Estado civil").
				Options(huh.NewOptions("Soltero/a", "Casado/a", "Conviviente civil", "Divorciado/a", "Viudo/a")...).
				Value(&d.EstadoCivil),
			yesNo("tieneHijos", "¿Tiene hijos?", &d.TieneHijos),
			input("cuantosHijos", "¿Cuántos hijos?", &d.CuantosHijos).Description(detailHint),
			input("cuantasPersonasViven", "¿Cuántas personas viven con usted?", &d.CuantasPersonasViven),
		).Title("Grupo familiar"),
		huh.NewGroup(
			yesNo("fuma", "¿Fuma?", &d.Fuma),
			yesNo("consumeAlcohol", "¿Consume alcohol?", &d.ConsumeAlcohol),
			yesNo("puedeComerBien", "¿Puede comer bien?", &d.PuedeComerBien),
			yesNo("haceEjercicio", "¿Hace ejercicio?", &d.HaceEjercicio),
			yesNo("problemasParaDormir", "¿Tiene problemas para dormir?", &d.ProblemasParaDormir),
			input("pesoKilos", "Peso (kg)", &d.PesoKilos),
			input("estaturaMetros", "Estatura (m)", &d.EstaturaMetros),
		).Title("Hábitos"),
		huh.NewGroup(
			yesNo("tieneLicenciaMedica", "¿Tiene licencia médica vigente?", &d.TieneLicenciaMedica),
			input("fechaAtencion", "Fecha de atención", &d.FechaAtencion).Placeholder("AAAA-MM-DD"),
			input("fechaInicioLM", "Fecha inicio licencia", &d.FechaInicioLM).Placeholder("AAAA-MM-DD"),
			input("diasLicencia", "Días de licencia", &d.DiasLicencia),
			yesNo("tieneEstudiosLaboratorio", "¿Tiene estudios de laboratorio recientes?", &d.TieneEstudiosLaboratorio),
			yesNo("tieneValoracionEspecialista", "¿Tiene valoración de especialista?", &d.TieneValoracionEspecialista),
		).Title("Licencia y estudios"),
		huh.NewGroup(
			huh.NewConfirm().
				Key("tieneCondicionPreexistente").
				Title("¿Tiene alguna condición preexistente?").
				Affirmative("Sí").
				Negative("No").
				Value(&d.TieneCondicionPreexistente),
			detail("detalleCondicion", "Detalle de la condición", &d.DetalleCondicion),
		).Title("Condición preexistente"),
	).WithShowHelp(false)
	return s
}

// Update implements tea.Model
func (s *MedicalScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return s, s.update(msg)
}

// View implements tea.Model
func (s *MedicalScreen) View() string { return s.view() }

// Payload returns a copy of the bound section
func (s *MedicalScreen) Payload() any { return s.data }
