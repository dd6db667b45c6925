package relay

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/almanova/preocupacional/internal/delivery"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const patientSubject = "Copia de su Declaración Jurada - Alma Nova Clinic"

type bodyData struct {
	delivery.Patient
	Date string
}

func render(name string, data bodyData) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// compose builds the clinic and patient messages for one submission
// received at now. Attachments must already be decoded.
func compose(clinicTo string, p delivery.Patient, clinicPDF, patientPDF []byte, now time.Time) (clinic, patient Message, err error) {
	data := bodyData{Patient: p, Date: now.Format("02-01-2006, 15:04:05")}
	clinicName, patientName := delivery.Filenames(p.NationalID, now)

	clinicHTML, err := render("clinic.html", data)
	if err != nil {
		return Message{}, Message{}, err
	}
	patientHTML, err := render("patient.html", data)
	if err != nil {
		return Message{}, Message{}, err
	}

	clinic = Message{
		To:         clinicTo,
		Subject:    fmt.Sprintf("Formulario Pre-Ocupacional - %s %s", p.FirstName, p.NationalID),
		HTML:       clinicHTML,
		Attachment: Attachment{Filename: clinicName, Content: clinicPDF},
	}
	patient = Message{
		To:         p.Email,
		Subject:    patientSubject,
		HTML:       patientHTML,
		Attachment: Attachment{Filename: patientName, Content: patientPDF},
	}
	return clinic, patient, nil
}
