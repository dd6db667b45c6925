package intake

import (
	"errors"
	"fmt"

	"github.com/almanova/preocupacional/internal/aggregator"
	"github.com/almanova/preocupacional/internal/delivery"
)

var (
	// ErrNotReady is returned by Submit when some step is not valid.
	ErrNotReady = errors.New("form is not ready to submit")
	// ErrSubmissionInProgress is returned by Submit while a previous run has
	// not returned to idle.
	ErrSubmissionInProgress = errors.New("submission already in progress")
)

// ValidationError is a pipeline precondition failure found before rendering.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// UserMessage returns the Spanish text shown to the patient.
func (e *ValidationError) UserMessage() string { return e.Message }

// RendererError wraps a PDF rendering failure.
type RendererError struct {
	Variant string
	Err     error
}

func (e *RendererError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Variant, e.Err)
}

func (e *RendererError) Unwrap() error { return e.Err }

func (e *RendererError) UserMessage() string { return "Error al generar los PDFs" }

// TransportError wraps a delivery failure, including a relay that answered
// success=false.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "deliver: " + e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) UserMessage() string { return delivery.UserMessage(e.Err) }

// PersistenceError is a draft store failure. It is logged where it happens and
// never reaches the submission state.
type PersistenceError = aggregator.PersistenceError

// UserMessage maps any pipeline error to the text shown in the error state.
func UserMessage(err error) string {
	var (
		valErr    *ValidationError
		renderErr *RendererError
		transErr  *TransportError
		persErr   *PersistenceError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &valErr):
		return valErr.UserMessage()
	case errors.As(err, &renderErr):
		return renderErr.UserMessage()
	case errors.As(err, &transErr):
		return transErr.UserMessage()
	case errors.As(err, &persErr):
		return "No se pudo guardar el borrador"
	case errors.Is(err, ErrSubmissionInProgress):
		return "Ya hay un envío en curso"
	case errors.Is(err, ErrNotReady):
		return "Complete todos los pasos antes de enviar"
	}
	return "Error al enviar el formulario"
}
