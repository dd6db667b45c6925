package util

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/almanova/preocupacional/internal/form"
)

// Profile selects how the medical questionnaire of a sample is answered.
type Profile int

const (
	ProfileHealthy Profile = iota
	ProfileConditions
	ProfileRandom
)

// String returns the flag spelling of the profile
func (p Profile) String() string {
	switch p {
	case ProfileConditions:
		return "conditions"
	case ProfileRandom:
		return "random"
	default:
		return "healthy"
	}
}

// ParseProfile parses a string into a Profile
func ParseProfile(s string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "healthy", "":
		return ProfileHealthy, nil
	case "conditions":
		return ProfileConditions, nil
	case "random":
		return ProfileRandom, nil
	default:
		return ProfileHealthy, fmt.Errorf("invalid profile: %s (valid: healthy, conditions, random)", s)
	}
}

// answer returns Yes with probability p under ProfileRandom, always Yes under
// ProfileConditions and always No under ProfileHealthy.
func (p Profile) answer(rng *rand.Rand, prob float64) string {
	switch p {
	case ProfileConditions:
		return form.Yes
	case ProfileRandom:
		if rng.Float64() < prob {
			return form.Yes
		}
	}
	return form.No
}

var (
	chronic   = []string{"Hipertensión arterial", "Diabetes tipo 2", "Asma bronquial", "Hipotiroidismo"}
	mental    = []string{"Trastorno de ansiedad en tratamiento", "Episodio depresivo 2019, alta médica"}
	allergies = []string{"Penicilina", "AINEs", "Mariscos", "Látex"}
	family    = []string{"Padre con diabetes", "Madre con cáncer de mama", "Abuelo con infarto"}
	symptoms  = []string{"Ninguno", "Dolor lumbar ocasional", "Cefalea leve", "Cansancio"}
	estados   = []string{"Soltero/a", "Casado/a", "Conviviente civil", "Divorciado/a"}
)

// GenerateMedical answers the questionnaire according to profile. Every
// Yes carries its detail, so the result always validates.
// Distribution under ProfileRandom: each condition ~20%, habits ~35%.
func GenerateMedical(p Profile, now time.Time, rng *rand.Rand) form.MedicalInfo {
	if rng == nil {
		rng = defaultRNG
	}

	m := form.MedicalInfo{
		Sintomas:             pick(rng, symptoms),
		CuandoInicioSintomas: "No aplica",
		EstadoCivil:          pick(rng, estados),
		CuantasPersonasViven: strconv.Itoa(1 + rng.IntN(6)),
		PesoKilos:            strconv.Itoa(50 + rng.IntN(60)),
		EstaturaMetros:       fmt.Sprintf("%.2f", 1.50+rng.Float64()*0.40),
		PuedeComerBien:       form.Yes,
		HaceEjercicio:        p.answer(rng, 0.5),
		ProblemasParaDormir:  p.answer(rng, 0.2),
		FechaAtencion:        now.Format(form.DateLayout),
		FechaInicioLM:        now.AddDate(0, 0, -rng.IntN(30)).Format(form.DateLayout),
		DiasLicencia:         strconv.Itoa(1 + rng.IntN(14)),
	}

	m.EnfermedadCronica = p.answer(rng, 0.2)
	if m.EnfermedadCronica == form.Yes {
		m.DetalleEnfermedadCronica = pick(rng, chronic)
	}
	m.EnfermedadMental = p.answer(rng, 0.2)
	if m.EnfermedadMental == form.Yes {
		m.DetalleEnfermedadMental = pick(rng, mental)
	}
	m.CirugiaPrevia = p.answer(rng, 0.2)
	m.ReaccionAlergica = p.answer(rng, 0.2)
	if m.ReaccionAlergica == form.Yes {
		m.DetalleReaccionAlergica = pick(rng, allergies)
	}
	m.AntecedenteFamiliar = p.answer(rng, 0.2)
	if m.AntecedenteFamiliar == form.Yes {
		m.DetalleAntecedenteFamiliar = pick(rng, family)
	}

	m.TieneHijos = p.answer(rng, 0.5)
	if m.TieneHijos == form.Yes {
		m.CuantosHijos = strconv.Itoa(1 + rng.IntN(4))
	}
	m.Fuma = p.answer(rng, 0.35)
	m.ConsumeAlcohol = p.answer(rng, 0.35)
	m.TieneLicenciaMedica = p.answer(rng, 0.2)
	m.TieneEstudiosLaboratorio = p.answer(rng, 0.2)
	m.TieneValoracionEspecialista = p.answer(rng, 0.2)

	m.TieneCondicionPreexistente = p.answer(rng, 0.2) == form.Yes
	if m.TieneCondicionPreexistente {
		m.DetalleCondicion = "Lesión de rodilla derecha, operada"
	}
	return m
}
