package form

import (
	"encoding/base64"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"
)

// FieldError describes one invalid field of a section.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors collects the field errors of one section.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

// Field returns the message for field, if any.
func (v ValidationErrors) Field(field string) (string, bool) {
	for _, e := range v {
		if e.Field == field {
			return e.Message, true
		}
	}
	return "", false
}

// Messages shown next to invalid fields.
const (
	MsgRequired   = "Campo requerido"
	MsgEmail      = "Email inválido"
	MsgRUT        = "RUT inválido"
	MsgDate       = "Fecha inválida (AAAA-MM-DD)"
	MsgYesNo      = "Seleccione Sí o No"
	MsgPositive   = "Debe ser un número mayor a 0"
	MsgMustAccept = "Debe aceptar para continuar"
	MsgSignature  = "Firma requerida"
	MsgBadPNG     = "La firma debe ser una imagen PNG"
)

// DateLayout is the date format used by every date field.
const DateLayout = "2006-01-02"

// PNGDataURLPrefix prefixes signature data URLs.
const PNGDataURLPrefix = "data:image/png;base64,"

type checker struct {
	errs ValidationErrors
}

func (c *checker) add(field, msg string) {
	c.errs = append(c.errs, FieldError{Field: field, Message: msg})
}

func (c *checker) required(field, value string) bool {
	if strings.TrimSpace(value) == "" {
		c.add(field, MsgRequired)
		return false
	}
	return true
}

func (c *checker) date(field, value string) {
	if !c.required(field, value) {
		return
	}
	if _, err := time.Parse(DateLayout, strings.TrimSpace(value)); err != nil {
		c.add(field, MsgDate)
	}
}

func (c *checker) yesNo(field, value string) bool {
	if !c.required(field, value) {
		return false
	}
	if value != Yes && value != No {
		c.add(field, MsgYesNo)
		return false
	}
	return true
}

// yesNoDetail requires detail when the answer is Yes.
func (c *checker) yesNoDetail(field, value, detailField, detail string) {
	if c.yesNo(field, value) && value == Yes {
		c.required(detailField, detail)
	}
}

func (c *checker) positiveInt(field, value string) {
	if !c.required(field, value) {
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 1 {
		c.add(field, MsgPositive)
	}
}

func (c *checker) positiveNumber(field, value string) {
	if !c.required(field, value) {
		return
	}
	n, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(value), ",", "."), 64)
	if err != nil || n <= 0 {
		c.add(field, MsgPositive)
	}
}

func (c *checker) err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return c.errs
}

// Validate checks the personal section.
func (p PersonalInfo) Validate() error {
	var c checker
	c.required("nombres", p.Nombres)
	c.required("apellidos", p.Apellidos)
	if c.required("run", p.RUN) && !ValidRUT(p.RUN) {
		c.add("run", MsgRUT)
	}
	c.required("genero", p.Genero)
	c.date("fechaNacimiento", p.FechaNacimiento)
	c.required("telefono", p.Telefono)
	if c.required("email", p.Email) {
		if _, err := mail.ParseAddress(p.Email); err != nil {
			c.add("email", MsgEmail)
		}
	}
	c.required("nacionalidad", p.Nacionalidad)
	c.required("direccion", p.Direccion)
	c.required("region", p.Region)
	c.required("ciudad", p.Ciudad)
	c.required("comuna", p.Comuna)
	c.required("prevision", p.Prevision)
	return c.err()
}

// Validate checks the employer section.
func (e EmployerInfo) Validate() error {
	var c checker
	c.required("empresaNombre", e.EmpresaNombre)
	if c.required("empresaRut", e.EmpresaRut) && !ValidRUT(e.EmpresaRut) {
		c.add("empresaRut", MsgRUT)
	}
	c.required("cargo", e.Cargo)
	c.date("fechaIngreso", e.FechaIngreso)
	c.required("tipoContrato", e.TipoContrato)
	c.required("telefonoEmpresa", e.TelefonoEmpresa)
	c.required("direccionEmpresa", e.DireccionEmpresa)
	return c.err()
}

// Validate checks the medical questionnaire, including conditional details.
func (m MedicalInfo) Validate() error {
	var c checker
	c.required("sintomas", m.Sintomas)
	c.required("cuandoInicioSintomas", m.CuandoInicioSintomas)

	c.yesNoDetail("enfermedadCronica", m.EnfermedadCronica, "detalleEnfermedadCronica", m.DetalleEnfermedadCronica)
	c.yesNoDetail("enfermedadMental", m.EnfermedadMental, "detalleEnfermedadMental", m.DetalleEnfermedadMental)
	c.yesNo("cirugiaPrevia", m.CirugiaPrevia)
	c.yesNoDetail("reaccionAlergica", m.ReaccionAlergica, "detalleReaccionAlergica", m.DetalleReaccionAlergica)
	c.yesNoDetail("antecedenteFamiliar", m.AntecedenteFamiliar, "detalleAntecedenteFamiliar", m.DetalleAntecedenteFamiliar)

	c.required("estadoCivil", m.EstadoCivil)
	if c.yesNo("tieneHijos", m.TieneHijos) && m.TieneHijos == Yes {
		c.positiveInt("cuantosHijos", m.CuantosHijos)
	}
	c.positiveInt("cuantasPersonasViven", m.CuantasPersonasViven)

	c.yesNo("fuma", m.Fuma)
	c.yesNo("consumeAlcohol", m.ConsumeAlcohol)
	c.yesNo("tieneLicenciaMedica", m.TieneLicenciaMedica)
	c.positiveNumber("pesoKilos", m.PesoKilos)
	c.positiveNumber("estaturaMetros", m.EstaturaMetros)
	c.yesNo("puedeComerBien", m.PuedeComerBien)
	c.yesNo("haceEjercicio", m.HaceEjercicio)
	c.yesNo("problemasParaDormir", m.ProblemasParaDormir)

	c.date("fechaAtencion", m.FechaAtencion)
	c.date("fechaInicioLM", m.FechaInicioLM)
	c.positiveInt("diasLicencia", m.DiasLicencia)

	c.yesNo("tieneEstudiosLaboratorio", m.TieneEstudiosLaboratorio)
	c.yesNo("tieneValoracionEspecialista", m.TieneValoracionEspecialista)

	if m.TieneCondicionPreexistente {
		c.required("detalleCondicion", m.DetalleCondicion)
	}
	return c.err()
}

// Validate requires the three acceptances.
func (a Affidavit) Validate() error {
	var c checker
	if !a.AceptaVeracidadInfo {
		c.add("aceptaVeracidadInfo", MsgMustAccept)
	}
	if !a.AceptaTratamientoDatos {
		c.add("aceptaTratamientoDatos", MsgMustAccept)
	}
	if !a.AceptaEnvioPorEmail {
		c.add("aceptaEnvioPorEmail", MsgMustAccept)
	}
	return c.err()
}

// Validate requires a PNG data URL.
func (s Signature) Validate() error {
	var c checker
	if strings.TrimSpace(s.Base64) == "" {
		c.add("base64", MsgSignature)
		return c.err()
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(s.Base64, PNGDataURLPrefix))
	if err != nil || !strings.HasPrefix(string(raw), "\x89PNG\r\n\x1a\n") {
		c.add("base64", MsgBadPNG)
	}
	return c.err()
}

// ValidateSection validates a payload of any section type.
func ValidateSection(value any) error {
	type validator interface{ Validate() error }
	switch v := value.(type) {
	case validator:
		return v.Validate()
	case nil:
		return fmt.Errorf("nil section payload")
	}
	return fmt.Errorf("unsupported section payload %T", value)
}
