package util

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/almanova/preocupacional/internal/form"
)

// EdgeCaseType represents a category of awkward but valid input.
type EdgeCaseType string

const (
	// SpecialChars uses names with characters outside cp1252.
	SpecialChars EdgeCaseType = "special-chars"
	// LongNames uses very long compound names and company names.
	LongNames EdgeCaseType = "long-names"
	// OldDates moves the birth date back to 1930-1960.
	OldDates EdgeCaseType = "old-dates"
	// LongText fills every medical detail with paragraphs.
	LongText EdgeCaseType = "long-text"
	// VariedIDs writes the RUN unformatted, lowercase or with a K digit.
	VariedIDs EdgeCaseType = "varied-ids"
)

// AllEdgeCaseTypes returns all valid edge case types
func AllEdgeCaseTypes() []EdgeCaseType {
	return []EdgeCaseType{SpecialChars, LongNames, OldDates, LongText, VariedIDs}
}

// EdgeCaseConfig holds edge case generation settings.
type EdgeCaseConfig struct {
	Percentage int            // 0-100, chance a snapshot gets edge cases
	Types      []EdgeCaseType // which edge case types to enable
}

// ParseEdgeCaseTypes parses comma-separated edge case types.
func ParseEdgeCaseTypes(input string) ([]EdgeCaseType, error) {
	if input == "" {
		return nil, nil
	}
	valid := make(map[EdgeCaseType]bool)
	for _, t := range AllEdgeCaseTypes() {
		valid[t] = true
	}
	var out []EdgeCaseType
	for _, p := range strings.Split(input, ",") {
		t := EdgeCaseType(strings.TrimSpace(p))
		if !valid[t] {
			return nil, fmt.Errorf("unknown edge case type %q, valid types: %v", p, AllEdgeCaseTypes())
		}
		out = append(out, t)
	}
	return out, nil
}

// Validate checks if config is valid
func (c EdgeCaseConfig) Validate() error {
	if c.Percentage < 0 || c.Percentage > 100 {
		return fmt.Errorf("edge-cases percentage must be 0-100, got %d", c.Percentage)
	}
	if c.Percentage > 0 && len(c.Types) == 0 {
		return fmt.Errorf("edge-cases enabled but no types specified")
	}
	return nil
}

// IsEnabled returns true if edge cases are enabled
func (c EdgeCaseConfig) IsEnabled() bool {
	return c.Percentage > 0 && len(c.Types) > 0
}

var (
	specialFirstNames = []string{"Łukasz", "Søren", "Zoë", "Škoda", "Ōta", "Đorđe", "Siân", "Ğülşen"}
	specialLastNames  = []string{"Østergaard", "Škvorecký", "Çelik-Ñúñez", "Wałęsa", "O'Higgins", "Dvořák"}

	longFirstNames = []string{
		"María de los Ángeles Guadalupe Esperanza",
		"Juan Bautista Francisco Javier Segundo",
	}
	longLastNames = []string{
		"Fernández de Córdoba y Montalvo Larraín",
		"Errázuriz Echaurren Vicuña Mackenna",
	}
	longCompany = "Sociedad Constructora e Inmobiliaria de Obras Civiles y Montajes Industriales del Norte Grande Limitada"

	paragraph = "Paciente refiere antecedentes extensos que requieren descripción detallada, incluyendo tratamientos previos, controles periódicos, exámenes complementarios y evolución clínica durante los últimos años. "
)

// ApplyEdgeCases rewrites fields of s according to cfg. Every change keeps
// the snapshot valid.
func ApplyEdgeCases(s *form.Snapshot, cfg EdgeCaseConfig, rng *rand.Rand) []EdgeCaseType {
	if rng == nil {
		rng = defaultRNG
	}
	if !cfg.IsEnabled() || rng.IntN(100) >= cfg.Percentage {
		return nil
	}

	var applied []EdgeCaseType
	for _, t := range cfg.Types {
		switch t {
		case SpecialChars:
			if p := s.PersonalInfo; p != nil {
				p.Nombres = pick(rng, specialFirstNames)
				p.Apellidos = pick(rng, specialLastNames) + " " + pick(rng, specialLastNames)
			}
		case LongNames:
			if p := s.PersonalInfo; p != nil {
				p.Nombres = pick(rng, longFirstNames)
				p.Apellidos = pick(rng, longLastNames)
			}
			if e := s.EmployerInfo; e != nil {
				e.EmpresaNombre = longCompany
			}
		case OldDates:
			if p := s.PersonalInfo; p != nil {
				born := time.Date(1930+rng.IntN(31), time.Month(1+rng.IntN(12)), 1+rng.IntN(28), 0, 0, 0, 0, time.UTC)
				p.FechaNacimiento = born.Format(form.DateLayout)
			}
		case LongText:
			if m := s.MedicalInfo; m != nil {
				long := strings.Repeat(paragraph, 4+rng.IntN(4))
				m.EnfermedadCronica, m.DetalleEnfermedadCronica = form.Yes, long
				m.AntecedenteFamiliar, m.DetalleAntecedenteFamiliar = form.Yes, long
				m.TieneCondicionPreexistente, m.DetalleCondicion = true, long
			}
		case VariedIDs:
			if p := s.PersonalInfo; p != nil {
				p.RUN = variedRUN(rng)
			}
		default:
			continue
		}
		applied = append(applied, t)
	}
	return applied
}

// variedRUN returns a valid RUN in one of the spellings patients type.
func variedRUN(rng *rand.Rand) string {
	var body string
	var dv byte
	for {
		body = fmt.Sprint(5_000_000 + rng.IntN(20_000_000))
		dv, _ = form.RUTCheckDigit(body)
		// Prefer K digits half of the time.
		if dv == 'K' || rng.IntN(2) == 0 {
			break
		}
	}
	switch rng.IntN(3) {
	case 0:
		return body + string(dv)
	case 1:
		return body + "-" + strings.ToLower(string(dv))
	}
	return form.FormatRUT(body + string(dv))
}
