// Package util generates realistic sample submissions and applies field
// overrides to them. The render command and the tests use it.
package util

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/almanova/preocupacional/internal/form"
)

// Package-level default RNG to avoid allocations when rng is nil
var defaultRNG = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))

// ForeignNameProbability is the probability of generating a non-Chilean name.
const ForeignNameProbability = 0.15

var (
	MaleFirstNames = []string{
		"José", "Juan", "Luis", "Carlos", "Jorge", "Manuel", "Francisco", "Pedro",
		"Cristián", "Rodrigo", "Sebastián", "Matías", "Felipe", "Diego", "Nicolás", "Benjamín",
		"Vicente", "Agustín", "Tomás", "Joaquín", "Patricio", "Claudio", "Mauricio", "Héctor",
	}

	FemaleFirstNames = []string{
		"María", "Ana", "Carolina", "Daniela", "Camila", "Javiera", "Constanza", "Francisca",
		"Valentina", "Catalina", "Fernanda", "Paula", "Macarena", "Isidora", "Sofía", "Florencia",
		"Claudia", "Patricia", "Verónica", "Marcela", "Lorena", "Ximena", "Paola", "Gabriela",
	}

	LastNames = []string{
		"González", "Muñoz", "Rojas", "Díaz", "Pérez", "Soto", "Contreras", "Silva",
		"Martínez", "Sepúlveda", "Morales", "Rodríguez", "López", "Fuentes", "Hernández", "Torres",
		"Araya", "Flores", "Espinoza", "Valenzuela", "Castillo", "Tapia", "Reyes", "Gutiérrez",
		"Castro", "Pizarro", "Álvarez", "Vásquez", "Sánchez", "Fernández", "Ramírez", "Carrasco",
	}

	// Venezuelan, Peruvian and Haitian names are common among new hires.
	ForeignFirstNames = []string{
		"Yohandry", "Wilmer", "Jean", "Rosa", "Yessenia", "Luz", "Milagros", "Jhonatan",
	}

	ForeignNationalities = []string{"Venezolana", "Peruana", "Haitiana", "Colombiana", "Boliviana"}

	places = []struct{ region, city, comuna string }{
		{"Metropolitana", "Santiago", "Providencia"},
		{"Metropolitana", "Santiago", "Maipú"},
		{"Metropolitana", "Santiago", "Puente Alto"},
		{"Valparaíso", "Viña del Mar", "Viña del Mar"},
		{"Biobío", "Concepción", "Talcahuano"},
		{"Antofagasta", "Antofagasta", "Antofagasta"},
		{"Los Lagos", "Puerto Montt", "Puerto Montt"},
	}

	streets = []string{"Av. Libertador Bernardo O'Higgins", "Los Carrera", "Av. Providencia", "San Martín", "Arturo Prat", "Baquedano"}

	previsiones = []string{"FONASA", "Isapre Colmena", "Isapre Cruz Blanca", "Isapre Banmédica", "Isapre Consalud"}
)

// GeneratePatient generates realistic personal data based on sex.
//
// Sex should be "M" or "F". Invalid values default to "F".
// If rng is nil, uses shared default RNG.
func GeneratePatient(sex string, rng *rand.Rand) form.PersonalInfo {
	if rng == nil {
		rng = defaultRNG
	}

	first := pick(rng, FemaleFirstNames)
	genero := "Femenino"
	if sex == "M" {
		first = pick(rng, MaleFirstNames)
		genero = "Masculino"
	}
	nationality := "Chilena"
	if rng.Float64() < ForeignNameProbability {
		first = pick(rng, ForeignFirstNames)
		nationality = pick(rng, ForeignNationalities)
	}
	// Chileans carry both parents' surnames.
	last := pick(rng, LastNames) + " " + pick(rng, LastNames)
	place := places[rng.IntN(len(places))]
	born := time.Date(1960+rng.IntN(45), time.Month(1+rng.IntN(12)), 1+rng.IntN(28), 0, 0, 0, 0, time.UTC)

	return form.PersonalInfo{
		Nombres:         first,
		Apellidos:       last,
		RUN:             GenerateRUT(5_000_000, 26_000_000, rng),
		Genero:          genero,
		FechaNacimiento: born.Format(form.DateLayout),
		Telefono:        fmt.Sprintf("+56 9 %04d %04d", rng.IntN(10000), rng.IntN(10000)),
		Email:           emailFor(first, last, rng),
		Nacionalidad:    nationality,
		Direccion:       fmt.Sprintf("%s %d", pick(rng, streets), 100+rng.IntN(3900)),
		Region:          place.region,
		Ciudad:          place.city,
		Comuna:          place.comuna,
		Prevision:       pick(rng, previsiones),
	}
}

// GenerateRUT returns a formatted RUT with a body in [lo, hi) and a valid
// check digit.
func GenerateRUT(lo, hi int, rng *rand.Rand) string {
	if rng == nil {
		rng = defaultRNG
	}
	body := fmt.Sprint(lo + rng.IntN(hi-lo))
	dv, _ := form.RUTCheckDigit(body)
	return form.FormatRUT(body + string(dv))
}

var accents = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ñ", "n",
	"Á", "a", "É", "e", "Í", "i", "Ó", "o", "Ú", "u", "Ñ", "n",
)

func emailFor(first, last string, rng *rand.Rand) string {
	surname, _, _ := strings.Cut(last, " ")
	local := strings.ToLower(accents.Replace(first + "." + surname))
	return fmt.Sprintf("%s%d@example.cl", local, rng.IntN(100))
}

func pick(rng *rand.Rand, list []string) string {
	return list[rng.IntN(len(list))]
}
