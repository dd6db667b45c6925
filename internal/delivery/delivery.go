// Package delivery defines the contract between the wizard and the mail
// relay, plus an HTTP client for it.
package delivery

import (
	"context"
	"fmt"
	"time"
)

// SendPath is the relay route that accepts delivery requests.
const SendPath = "/api/send-email"

// Patient carries the identification needed for addressing and subjects.
type Patient struct {
	FirstName  string `json:"nombres"`
	LastName   string `json:"apellidos"`
	Email      string `json:"email"`
	NationalID string `json:"run"`
}

// Request is one submission: both PDFs as base64 plus the patient.
type Request struct {
	ClinicAttachment  string  `json:"clinicaPdf"`
	PatientAttachment string  `json:"pacientePdf"`
	Patient           Patient `json:"datosPersonales"`
}

// Missing returns the names of required fields that are blank.
func (r Request) Missing() []string {
	var missing []string
	check := func(name, v string) {
		if v == "" {
			missing = append(missing, name)
		}
	}
	check("clinicaPdf", r.ClinicAttachment)
	check("pacientePdf", r.PatientAttachment)
	check("datosPersonales.nombres", r.Patient.FirstName)
	check("datosPersonales.apellidos", r.Patient.LastName)
	check("datosPersonales.email", r.Patient.Email)
	check("datosPersonales.run", r.Patient.NationalID)
	return missing
}

// Response is the relay's answer. Warning is set on soft failures, when the
// clinic copy went out but the patient copy did not.
type Response struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
	Warning   string `json:"warning,omitempty"`
}

// Channel delivers a submission. Transport failures are returned as errors;
// a relay that answers success=false is not an error at this level.
type Channel interface {
	Send(ctx context.Context, req Request) (Response, error)
}

// Filenames returns the clinic and patient attachment names for a submission
// made at t.
func Filenames(nationalID string, t time.Time) (clinic, patient string) {
	base := fmt.Sprintf("Formulario_%s_%d", nationalID, t.UnixMilli())
	return base + "_Completo.pdf", base + "_DeclaracionJurada.pdf"
}
