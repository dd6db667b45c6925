package pdf

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/almanova/preocupacional/internal/form"
)

var labels = map[string]string{
	"nombres":         "Nombres",
	"apellidos":       "Apellidos",
	"run":             "RUN",
	"genero":          "Género",
	"fechaNacimiento": "Fecha de Nacimiento",
	"telefono":        "Teléfono",
	"email":           "Email",
	"nacionalidad":    "Nacionalidad",
	"direccion":       "Dirección",
	"region":          "Región",
	"ciudad":          "Ciudad",
	"comuna":          "Comuna",
	"prevision":       "Previsión",

	"empresaNombre":    "Empresa",
	"empresaRut":       "RUT Empresa",
	"cargo":            "Cargo",
	"fechaIngreso":     "Fecha de Ingreso",
	"tipoContrato":     "Tipo de Contrato",
	"telefonoEmpresa":  "Teléfono Empresa",
	"direccionEmpresa": "Dirección Empresa",

	"sintomas":                    "Síntomas",
	"cuandoInicioSintomas":        "Inicio de Síntomas",
	"enfermedadCronica":           "Enfermedad Crónica",
	"detalleEnfermedadCronica":    "Detalle Enfermedad Crónica",
	"enfermedadMental":            "Enfermedad Mental",
	"detalleEnfermedadMental":     "Detalle Enfermedad Mental",
	"cirugiaPrevia":               "Cirugía Previa",
	"reaccionAlergica":            "Reacción Alérgica",
	"detalleReaccionAlergica":     "Detalle Reacción Alérgica",
	"antecedenteFamiliar":         "Antecedente Familiar",
	"detalleAntecedenteFamiliar":  "Detalle Antecedente Familiar",
	"estadoCivil":                 "Estado Civil",
	"tieneHijos":                  "Tiene Hijos",
	"cuantosHijos":                "Cantidad de Hijos",
	"cuantasPersonasViven":        "Personas en el Hogar",
	"fuma":                        "Fuma",
	"consumeAlcohol":              "Consume Alcohol",
	"tieneLicenciaMedica":         "Licencia Médica",
	"pesoKilos":                   "Peso (kg)",
	"estaturaMetros":              "Estatura (m)",
	"puedeComerBien":              "Puede Comer Bien",
	"haceEjercicio":               "Hace Ejercicio",
	"problemasParaDormir":         "Problemas para Dormir",
	"fechaAtencion":               "Fecha de Atención",
	"fechaInicioLM":               "Inicio Licencia Médica",
	"diasLicencia":                "Días de Licencia",
	"tieneEstudiosLaboratorio":    "Estudios de Laboratorio",
	"tieneValoracionEspecialista": "Valoración de Especialista",
	"tieneCondicionPreexistente":  "Condición Preexistente",
	"detalleCondicion":            "Detalle Condición",
}

type field struct {
	Label string
	Value string
}

// fields lists the non-empty fields of a section struct in declaration order,
// labelled by their JSON name.
func fields(section any) []field {
	v := reflect.ValueOf(section)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	t := v.Type()

	var out []field
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		value := formatValue(v.Field(i))
		if name == "" || value == "" {
			continue
		}
		label, ok := labels[name]
		if !ok {
			label = name
		}
		out = append(out, field{Label: label, Value: value})
	}
	return out
}

func formatValue(v reflect.Value) string {
	switch v.Kind() {
	case reflect.Bool:
		return yesNo(v.Bool())
	case reflect.String:
		switch s := strings.TrimSpace(v.String()); s {
		case form.Yes:
			return "Sí"
		case form.No:
			return "No"
		default:
			return s
		}
	case reflect.Int, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	}
	return ""
}

func yesNo(b bool) string {
	if b {
		return "Sí"
	}
	return "No"
}
