package intake

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	"github.com/almanova/preocupacional/internal/delivery"
	"github.com/almanova/preocupacional/internal/form"
)

// Status is the phase of a submission run.
type Status int

const (
	StatusIdle Status = iota
	StatusGeneratingPDF
	StatusSendingEmail
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusGeneratingPDF:
		return "generating_pdf"
	case StatusSendingEmail:
		return "sending_email"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// SubmissionState is published to observers on every change.
type SubmissionState struct {
	Status   Status
	Progress int
	Message  string
}

// InFlight reports whether a run is generating or sending.
func (s SubmissionState) InFlight() bool {
	return s.Status == StatusGeneratingPDF || s.Status == StatusSendingEmail
}

// Progress checkpoints.
const (
	progressStarted    = 10
	progressClinicDone = 30
	progressEncoded    = 50
	progressSending    = 70
	progressDone       = 100
)

// Renderer turns a snapshot into a PDF document.
type Renderer interface {
	Render(ctx context.Context, s form.Snapshot) ([]byte, error)
}

// run executes one submission. Stages are strictly sequential and the channel
// is called at most once.
func (c *Controller) run(ctx context.Context, gen uint64) error {
	c.publish(gen, SubmissionState{Status: StatusGeneratingPDF, Progress: progressStarted, Message: "Generando PDFs..."})

	snap := c.agg.Snapshot()
	personal := snap.PersonalInfo
	if personal == nil || strings.TrimSpace(personal.Email) == "" {
		return c.fail(gen, &ValidationError{Field: "datosPersonales.email", Message: "El email del paciente es requerido"})
	}

	clinicPDF, err := c.clinic.Render(ctx, snap)
	if err != nil {
		return c.fail(gen, &RendererError{Variant: "complete", Err: err})
	}
	c.publish(gen, SubmissionState{Status: StatusGeneratingPDF, Progress: progressClinicDone, Message: "Generando PDFs..."})

	patientPDF, err := c.patient.Render(ctx, snap)
	if err != nil {
		return c.fail(gen, &RendererError{Variant: "consent", Err: err})
	}

	req := delivery.Request{
		ClinicAttachment:  base64.StdEncoding.EncodeToString(clinicPDF),
		PatientAttachment: base64.StdEncoding.EncodeToString(patientPDF),
		Patient: delivery.Patient{
			FirstName:  personal.Nombres,
			LastName:   personal.Apellidos,
			Email:      strings.TrimSpace(personal.Email),
			NationalID: personal.RUN,
		},
	}
	c.publish(gen, SubmissionState{Status: StatusGeneratingPDF, Progress: progressEncoded, Message: "PDFs generados"})

	c.publish(gen, SubmissionState{Status: StatusSendingEmail, Progress: progressSending, Message: "Enviando email..."})
	resp, err := c.channel.Send(ctx, req)
	if err != nil {
		return c.fail(gen, &TransportError{Err: err})
	}
	if !resp.Success {
		return c.fail(gen, &TransportError{Err: &delivery.RejectedError{Message: resp.Error}})
	}
	if resp.Warning != "" {
		c.log.Warn().Str("warning", resp.Warning).Str("message_id", resp.MessageID).Msg("relay delivered with warning")
	}

	c.succeed(gen, resp.MessageID)
	return nil
}

func (c *Controller) succeed(gen uint64, messageID string) {
	c.agg.MarkFinished(c.clock.Now())
	c.log.Info().Str("message_id", messageID).Msg("submission delivered")
	c.publish(gen, SubmissionState{Status: StatusSuccess, Progress: progressDone, Message: "Formulario enviado exitosamente"})

	c.clock.AfterFunc(c.successCooldown, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if !c.isCurrent(gen, StatusSuccess) {
			return
		}
		c.agg.Reset(ctx)
		c.resetSteps()
		c.publish(gen, SubmissionState{Status: StatusIdle})
	})
}

func (c *Controller) fail(gen uint64, err error) error {
	msg := UserMessage(err)
	c.log.Error().Err(err).Str("user_message", msg).Msg("submission failed")
	c.publish(gen, SubmissionState{Status: StatusError, Message: msg})

	c.clock.AfterFunc(c.errorCooldown, func() {
		if c.isCurrent(gen, StatusError) {
			c.publish(gen, SubmissionState{Status: StatusIdle})
		}
	})
	return err
}
