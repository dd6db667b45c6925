package screens

import (
	"time"

	"github.com/almanova/preocupacional/internal/form"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

const legalNote = `Este formulario cumple con la Ley 21.541 (Telemedicina) y la Ley 21.746
(Atención Médica Virtual). Sus datos se tratan conforme a la Ley 19.628 sobre
protección de la vida privada y la Ley 20.584 de derechos y deberes de los
pacientes.`

// AffidavitScreen is the sworn declaration with its three acceptances
type AffidavitScreen struct {
	sectionBase
	data form.Affidavit
	now  func() time.Time
}

// NewAffidavitScreen creates the declaration step prefilled with data. now
// stamps the moment all three acceptances are given.
func NewAffidavitScreen(data form.Affidavit, now func() time.Time) *AffidavitScreen {
	if now == nil {
		now = time.Now
	}
	s := &AffidavitScreen{
		sectionBase: newSectionBase(form.StepAffidavit, "DECLARACIÓN JURADA", "Paso 4 de 5"),
		data:        data,
		now:         now,
	}
	s.validate = func() error { return s.data.Validate() }
	d := &s.data
	accept := func(key, title string, v *bool) *huh.Confirm {
		return huh.NewConfirm().Key(key).Title(title).Affirmative("Acepto").Negative("No acepto").Value(v)
	}
	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewNote().Title("Marco legal").Description(legalNote),
			accept("aceptaVeracidadInfo", "Declaro que toda la información proporcionada es verídica y completa", &d.AceptaVeracidadInfo),
			accept("aceptaTratamientoDatos", "Autorizo el tratamiento de mis datos personales según la Ley 19.628", &d.AceptaTratamientoDatos),
			accept("aceptaEnvioPorEmail", "Consiento el envío de mis datos mediante email cifrado (TLS)", &d.AceptaEnvioPorEmail),
		),
	).WithShowHelp(false)
	return s
}

// Update implements tea.Model
func (s *AffidavitScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return s, s.update(msg)
}

// View implements tea.Model
func (s *AffidavitScreen) View() string { return s.view() }

// Payload returns the section with the consent version and the acceptance
// time. The time is kept from the first complete acceptance.
func (s *AffidavitScreen) Payload() any {
	s.data.VersionConsentimiento = form.ConsentVersion
	switch {
	case s.data.Validate() != nil:
		s.data.Timestamp = 0
	case s.data.Timestamp == 0:
		s.data.Timestamp = s.now().UnixMilli()
	}
	return s.data
}
