package pdf

import (
	"context"
	"fmt"

	"github.com/almanova/preocupacional/internal/form"
)

// Complete renders the full record sent to the clinic.
type Complete struct {
	Options
}

// Render builds the document. Missing sections are marked as not completed.
func (c Complete) Render(ctx context.Context, s form.Snapshot) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d := newDocument("Formulario Pre-Ocupacional")
	generated := c.format(c.now())
	d.footer(func(page int) string {
		return fmt.Sprintf("Página %d de {nb} | Generado: %s", page, generated)
	})
	d.pdf.AddPage()
	d.header("FORMULARIO PRE-OCUPACIONAL")

	c.section(d, "DATOS PERSONALES", s.PersonalInfo, s.PersonalInfo != nil)
	c.section(d, "INFORMACIÓN DEL EMPLEADOR", s.EmployerInfo, s.EmployerInfo != nil)
	c.section(d, "INFORMACIÓN MÉDICA", s.MedicalInfo, s.MedicalInfo != nil)

	d.sectionTitle("DECLARACIÓN JURADA")
	if a := s.Affidavit; a != nil {
		d.row("Declara veracidad de información", yesNo(a.AceptaVeracidadInfo))
		d.row("Autoriza tratamiento de datos", yesNo(a.AceptaTratamientoDatos))
		d.row("Consiente envío por email cifrado", yesNo(a.AceptaEnvioPorEmail))
		d.row("Versión", a.VersionConsentimiento)
		d.row("Fecha", c.formatMillis(a.Timestamp))
		d.pdf.Ln(8)
	} else {
		d.missing()
	}

	d.sectionTitle("FIRMA DIGITAL")
	if sig := s.Signature; sig != nil && sig.Base64 != "" {
		if err := d.embedSignature(sig.Base64); err != nil {
			return nil, err
		}
		d.text("I", 9, "Firmado el: "+c.formatMillis(sig.Timestamp))
	} else {
		d.missing()
	}

	return d.output()
}

func (c Complete) section(d *document, title string, payload any, present bool) {
	d.sectionTitle(title)
	if !present {
		d.missing()
		return
	}
	for _, f := range fields(payload) {
		d.row(f.Label, f.Value)
	}
	d.pdf.Ln(8)
}
