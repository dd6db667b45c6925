package help

// HelpText contains information about a field
type HelpText struct {
	Title       string
	Description string
	Details     string
}

// Texts contains help for wizard fields, keyed by field name
var Texts = map[string]HelpText{
	"run": {
		Title:       "RUN",
		Description: "Rol Único Nacional del paciente.",
		Details:     "Formato 12.345.678-5. Se verifica el dígito verificador.",
	},
	"fechaNacimiento": {
		Title:       "FECHA DE NACIMIENTO",
		Description: "Fecha de nacimiento del paciente.",
		Details:     "Formato AAAA-MM-DD, por ejemplo 1988-11-02.",
	},
	"email": {
		Title:       "EMAIL",
		Description: "Correo donde recibirá la copia de su declaración jurada.",
		Details:     "Es obligatorio para enviar el formulario.",
	},
	"prevision": {
		Title:       "PREVISIÓN",
		Description: "Sistema de salud del paciente.",
		Details:     "FONASA o el nombre de su Isapre.",
	},
	"empresaRut": {
		Title:       "RUT EMPRESA",
		Description: "RUT de la empresa empleadora.",
		Details:     "Formato 76.086.428-5.",
	},
	"fechaIngreso": {
		Title:       "FECHA DE INGRESO",
		Description: "Fecha en que comienza o comenzó a trabajar.",
		Details:     "Formato AAAA-MM-DD.",
	},
	"tipoContrato": {
		Title:       "TIPO DE CONTRATO",
		Description: "Indefinido, plazo fijo o por obra o faena.",
	},
	"sintomas": {
		Title:       "SÍNTOMAS",
		Description: "Síntomas actuales. Escriba \"Ninguno\" si no tiene.",
	},
	"pesoKilos": {
		Title:       "PESO",
		Description: "Peso en kilogramos.",
		Details:     "Acepta decimales con punto o coma.",
	},
	"estaturaMetros": {
		Title:       "ESTATURA",
		Description: "Estatura en metros, por ejemplo 1,72.",
	},
	"diasLicencia": {
		Title:       "DÍAS DE LICENCIA",
		Description: "Cantidad de días de la licencia médica.",
		Details:     "Número entero mayor a 0.",
	},
	"tieneCondicionPreexistente": {
		Title:       "CONDICIÓN PREEXISTENTE",
		Description: "Cualquier condición que pueda afectar su desempeño laboral.",
		Details:     "Si responde Sí, debe detallarla.",
	},
	"aceptaTratamientoDatos": {
		Title:       "TRATAMIENTO DE DATOS",
		Description: "Autorización según la Ley 19.628.",
		Details:     "Sus datos se usan solo para la evaluación pre-ocupacional.",
	},
	"aceptaEnvioPorEmail": {
		Title:       "ENVÍO POR EMAIL",
		Description: "Los documentos se envían cifrados (TLS) a la clínica y a usted.",
	},
	"path": {
		Title:       "ARCHIVO DE FIRMA",
		Description: "Ruta a una imagen PNG con su firma.",
		Details:     "Se ajusta automáticamente sobre fondo blanco.",
	},
}
