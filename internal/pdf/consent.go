package pdf

import (
	"context"

	"github.com/almanova/preocupacional/internal/form"
)

var legalText = []struct {
	heading string
	body    string
}{
	{"Marco Legal:", "Este formulario cumple con la normativa vigente sobre atención médica y telemedicina en Chile, amparado en la Ley 21.541 (Telemedicina) y la Ley 21.746 (Atención Médica Virtual)."},
	{"Protección de Datos Personales:", "Toda la información proporcionada será tratada conforme a la Ley 19.628 sobre protección de la vida privada y la Ley 20.584 sobre derechos y deberes de los pacientes."},
	{"Tratamiento de la Información:", "Sus datos serán enviados de forma segura mediante cifrado TLS por correo electrónico directamente a Alma Nova Clinic. No almacenamos sus datos en servidores externos."},
}

var declarations = []string{
	"Que toda la información proporcionada es verídica y completa",
	"Autoriza el tratamiento de sus datos personales según la Ley 19.628",
	"Consiente el envío de sus datos mediante email cifrado (TLS)",
}

// Consent renders the affidavit copy sent to the patient.
type Consent struct {
	Options
}

// Render builds the document.
func (c Consent) Render(ctx context.Context, s form.Snapshot) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d := newDocument("Declaración Jurada")
	generated := c.format(c.now())
	d.footer(func(int) string { return "Documento generado el " + generated })
	d.pdf.AddPage()
	d.header("DECLARACIÓN JURADA Y CONSENTIMIENTO INFORMADO")

	if p := s.PersonalInfo; p != nil {
		d.row("Paciente", p.FullName())
		d.row("RUN", p.RUN)
		d.pdf.Ln(8)
	}

	for _, block := range legalText {
		d.ensureSpace(20)
		d.text("B", 10, block.heading)
		d.text("", 10, block.body)
		d.pdf.Ln(3)
	}
	d.pdf.Ln(5)

	d.text("B", 10, "El paciente declara:")
	accepted := s.Affidavit != nil
	for i, line := range declarations {
		mark := "[ ]"
		if accepted && acceptance(s.Affidavit, i) {
			mark = "[X]"
		}
		d.text("", 10, mark+" "+line)
	}
	d.pdf.Ln(8)

	if sig := s.Signature; sig != nil && sig.Base64 != "" {
		d.ensureSpace(signatureH + 25)
		d.text("B", 12, "Firma del Paciente:")
		if err := d.embedSignature(sig.Base64); err != nil {
			return nil, err
		}
		d.text("I", 9, "Firmado digitalmente el: "+c.formatMillis(sig.Timestamp))
	}
	version := form.ConsentVersion
	if s.Affidavit != nil && s.Affidavit.VersionConsentimiento != "" {
		version = s.Affidavit.VersionConsentimiento
	}
	d.text("I", 9, "Versión del documento: "+version)

	return d.output()
}

func acceptance(a *form.Affidavit, i int) bool {
	switch i {
	case 0:
		return a.AceptaVeracidadInfo
	case 1:
		return a.AceptaTratamientoDatos
	case 2:
		return a.AceptaEnvioPorEmail
	}
	return false
}
