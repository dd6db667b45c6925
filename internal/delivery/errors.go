package delivery

import (
	"errors"
	"fmt"
	"net/http"
)

var statusMessages = map[int]string{
	http.StatusBadRequest:          "Datos inválidos en la solicitud",
	http.StatusUnauthorized:        "No autorizado",
	http.StatusForbidden:           "Acceso prohibido",
	http.StatusNotFound:            "Recurso no encontrado",
	http.StatusRequestTimeout:      "Tiempo de espera agotado",
	http.StatusTooManyRequests:     "Demasiadas solicitudes - intenta más tarde",
	http.StatusInternalServerError: "Error interno del servidor",
	http.StatusBadGateway:          "Servidor no disponible",
	http.StatusServiceUnavailable:  "Servicio temporalmente no disponible",
	http.StatusGatewayTimeout:      "Tiempo de espera del servidor agotado",
}

// StatusMessage returns the user-facing text for an HTTP status.
func StatusMessage(code int) string {
	if msg, ok := statusMessages[code]; ok {
		return msg
	}
	return fmt.Sprintf("Error del servidor (%d)", code)
}

// StatusError is a non-2xx relay response.
type StatusError struct {
	Code int
	// RelayMessage is the relay's own error text, when it sent one.
	RelayMessage string
}

func (e *StatusError) Error() string {
	if e.RelayMessage != "" {
		return fmt.Sprintf("relay status %d: %s", e.Code, e.RelayMessage)
	}
	return fmt.Sprintf("relay status %d", e.Code)
}

// NetworkError is a failure to reach the relay at all.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "network: " + e.Err.Error() }

func (e *NetworkError) Unwrap() error { return e.Err }

// RejectedError is a 2xx response with success=false.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string { return "relay rejected: " + e.Message }

// UserMessage maps a delivery error to Spanish text for the patient.
func UserMessage(err error) string {
	var (
		netErr    *NetworkError
		statusErr *StatusError
		rejErr    *RejectedError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &netErr):
		return "Error de red: " + netErr.Err.Error()
	case errors.As(err, &statusErr):
		return StatusMessage(statusErr.Code)
	case errors.As(err, &rejErr) && rejErr.Message != "":
		return rejErr.Message
	}
	return "Error al enviar el formulario"
}

// IsNetworkError reports whether the relay was unreachable.
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsRetryable reports whether retrying the same request may succeed.
func IsRetryable(err error) bool {
	if IsNetworkError(err) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code >= 500 || statusErr.Code == http.StatusRequestTimeout
	}
	return false
}
