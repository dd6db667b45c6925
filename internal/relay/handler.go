package relay

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"

	"github.com/almanova/preocupacional/internal/delivery"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// Response texts.
const (
	msgMalformed       = "Solicitud inválida"
	msgMissing         = "Faltan datos requeridos"
	msgBadAttachment   = "Adjunto inválido"
	msgBadEmail        = "Email del paciente inválido"
	msgTooLarge        = "La solicitud es demasiado grande"
	msgMethod          = "Método no permitido"
	msgPatientNotSent  = "No se pudo enviar la copia al paciente"
	msgInternal        = "Error interno del servidor"
	msgTooManyRequests = "Demasiadas solicitudes - intente más tarde"
)

// SendHandler accepts delivery requests and dispatches both messages.
type SendHandler struct {
	mailer      Mailer
	clinicEmail string
	clock       clockwork.Clock
}

// NewSendHandler returns a handler sending clinic copies to clinicEmail.
func NewSendHandler(m Mailer, clinicEmail string, clock clockwork.Clock) *SendHandler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SendHandler{mailer: m, clinicEmail: clinicEmail, clock: clock}
}

func (h *SendHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := zerolog.Ctx(r.Context())

	var req delivery.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, msgTooLarge)
			return
		}
		writeError(w, r, http.StatusBadRequest, msgMalformed)
		return
	}
	if missing := req.Missing(); len(missing) > 0 {
		log.Warn().Strs("missing", missing).Msg("incomplete delivery request")
		writeError(w, r, http.StatusBadRequest, msgMissing)
		return
	}
	if _, err := mail.ParseAddress(req.Patient.Email); err != nil {
		writeError(w, r, http.StatusBadRequest, msgBadEmail)
		return
	}
	clinicPDF, err := base64.StdEncoding.DecodeString(req.ClinicAttachment)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, msgBadAttachment)
		return
	}
	patientPDF, err := base64.StdEncoding.DecodeString(req.PatientAttachment)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, msgBadAttachment)
		return
	}

	clinic, patient, err := compose(h.clinicEmail, req.Patient, clinicPDF, patientPDF, h.clock.Now())
	if err != nil {
		log.Error().Err(err).Msg("compose messages")
		writeError(w, r, http.StatusInternalServerError, msgInternal)
		return
	}

	start := h.clock.Now()
	id, err := h.mailer.Send(r.Context(), clinic)
	if err != nil {
		log.Error().Err(err).Str("run", req.Patient.NationalID).Msg("clinic message failed")
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	log.Info().Str("message_id", id).Dur("took", h.clock.Since(start)).Msg("clinic message sent")

	resp := delivery.Response{Success: true, MessageID: id}
	if pid, err := h.mailer.Send(r.Context(), patient); err != nil {
		log.Warn().Err(err).Msg("patient message failed")
		resp.Warning = msgPatientNotSent
	} else {
		log.Info().Str("message_id", pid).Msg("patient message sent")
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusMethodNotAllowed, msgMethod)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotFound, "Recurso no encontrado")
}

func healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
