package form

// ConsentVersion is the version of the affidavit text patients accept.
const ConsentVersion = "v1.0_2025"

// Yes/no answers used by the medical questionnaire.
const (
	Yes = "si"
	No  = "no"
)

// PersonalInfo is the "Datos personales" section.
type PersonalInfo struct {
	Nombres         string `json:"nombres" yaml:"nombres"`
	Apellidos       string `json:"apellidos" yaml:"apellidos"`
	RUN             string `json:"run" yaml:"run"`
	Genero          string `json:"genero" yaml:"genero"`
	FechaNacimiento string `json:"fechaNacimiento" yaml:"fechaNacimiento"`
	Telefono        string `json:"telefono" yaml:"telefono"`
	Email           string `json:"email" yaml:"email"`
	Nacionalidad    string `json:"nacionalidad" yaml:"nacionalidad"`
	Direccion       string `json:"direccion" yaml:"direccion"`
	Region          string `json:"region" yaml:"region"`
	Ciudad          string `json:"ciudad" yaml:"ciudad"`
	Comuna          string `json:"comuna" yaml:"comuna"`
	Prevision       string `json:"prevision" yaml:"prevision"`
}

// FullName returns "Nombres Apellidos".
func (p PersonalInfo) FullName() string {
	switch {
	case p.Nombres == "":
		return p.Apellidos
	case p.Apellidos == "":
		return p.Nombres
	}
	return p.Nombres + " " + p.Apellidos
}

// EmployerInfo is the "Información del empleador" section.
type EmployerInfo struct {
	EmpresaNombre    string `json:"empresaNombre" yaml:"empresaNombre"`
	EmpresaRut       string `json:"empresaRut" yaml:"empresaRut"`
	Cargo            string `json:"cargo" yaml:"cargo"`
	FechaIngreso     string `json:"fechaIngreso" yaml:"fechaIngreso"`
	TipoContrato     string `json:"tipoContrato" yaml:"tipoContrato"`
	TelefonoEmpresa  string `json:"telefonoEmpresa" yaml:"telefonoEmpresa"`
	DireccionEmpresa string `json:"direccionEmpresa" yaml:"direccionEmpresa"`
}

// MedicalInfo is the "Información médica" questionnaire. Yes/no questions
// hold Yes or No; Detalle* fields are required when the matching answer is Yes.
type MedicalInfo struct {
	Sintomas             string `json:"sintomas" yaml:"sintomas"`
	CuandoInicioSintomas string `json:"cuandoInicioSintomas" yaml:"cuandoInicioSintomas"`

	EnfermedadCronica          string `json:"enfermedadCronica" yaml:"enfermedadCronica"`
	DetalleEnfermedadCronica   string `json:"detalleEnfermedadCronica,omitempty" yaml:"detalleEnfermedadCronica,omitempty"`
	EnfermedadMental           string `json:"enfermedadMental" yaml:"enfermedadMental"`
	DetalleEnfermedadMental    string `json:"detalleEnfermedadMental,omitempty" yaml:"detalleEnfermedadMental,omitempty"`
	CirugiaPrevia              string `json:"cirugiaPrevia" yaml:"cirugiaPrevia"`
	ReaccionAlergica           string `json:"reaccionAlergica" yaml:"reaccionAlergica"`
	DetalleReaccionAlergica    string `json:"detalleReaccionAlergica,omitempty" yaml:"detalleReaccionAlergica,omitempty"`
	AntecedenteFamiliar        string `json:"antecedenteFamiliar" yaml:"antecedenteFamiliar"`
	DetalleAntecedenteFamiliar string `json:"detalleAntecedenteFamiliar,omitempty" yaml:"detalleAntecedenteFamiliar,omitempty"`

	EstadoCivil          string `json:"estadoCivil" yaml:"estadoCivil"`
	TieneHijos           string `json:"tieneHijos" yaml:"tieneHijos"`
	CuantosHijos         string `json:"cuantosHijos,omitempty" yaml:"cuantosHijos,omitempty"`
	CuantasPersonasViven string `json:"cuantasPersonasViven" yaml:"cuantasPersonasViven"`

	Fuma                string `json:"fuma" yaml:"fuma"`
	ConsumeAlcohol      string `json:"consumeAlcohol" yaml:"consumeAlcohol"`
	TieneLicenciaMedica string `json:"tieneLicenciaMedica" yaml:"tieneLicenciaMedica"`
	PesoKilos           string `json:"pesoKilos" yaml:"pesoKilos"`
	EstaturaMetros      string `json:"estaturaMetros" yaml:"estaturaMetros"`
	PuedeComerBien      string `json:"puedeComerBien" yaml:"puedeComerBien"`
	HaceEjercicio       string `json:"haceEjercicio" yaml:"haceEjercicio"`
	ProblemasParaDormir string `json:"problemasParaDormir" yaml:"problemasParaDormir"`

	FechaAtencion string `json:"fechaAtencion" yaml:"fechaAtencion"`
	FechaInicioLM string `json:"fechaInicioLM" yaml:"fechaInicioLM"`
	DiasLicencia  string `json:"diasLicencia" yaml:"diasLicencia"`

	TieneEstudiosLaboratorio    string `json:"tieneEstudiosLaboratorio" yaml:"tieneEstudiosLaboratorio"`
	TieneValoracionEspecialista string `json:"tieneValoracionEspecialista" yaml:"tieneValoracionEspecialista"`

	TieneCondicionPreexistente bool   `json:"tieneCondicionPreexistente" yaml:"tieneCondicionPreexistente"`
	DetalleCondicion           string `json:"detalleCondicion,omitempty" yaml:"detalleCondicion,omitempty"`
}

// Affidavit is the "Declaración jurada" section.
type Affidavit struct {
	AceptaVeracidadInfo    bool   `json:"aceptaVeracidadInfo" yaml:"aceptaVeracidadInfo"`
	AceptaTratamientoDatos bool   `json:"aceptaTratamientoDatos" yaml:"aceptaTratamientoDatos"`
	AceptaEnvioPorEmail    bool   `json:"aceptaEnvioPorEmail" yaml:"aceptaEnvioPorEmail"`
	VersionConsentimiento  string `json:"versionConsentimiento" yaml:"versionConsentimiento"`
	Timestamp              int64  `json:"timestamp" yaml:"timestamp"`
}

// Signature is the "Firma" section: a PNG data URL plus capture time.
type Signature struct {
	Base64    string `json:"base64" yaml:"base64"`
	Timestamp int64  `json:"timestamp" yaml:"timestamp"`
}
