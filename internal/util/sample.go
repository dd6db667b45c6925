package util

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/almanova/preocupacional/internal/form"
	"github.com/almanova/preocupacional/internal/signature"
)

var (
	employers = []struct{ name, rut, address string }{
		{"Constructora Andes SpA", "76.086.428-5", "Av. Apoquindo 4501, Las Condes"},
		{"Transportes del Pacífico Ltda.", "77.261.280-K", "Camino a Melipilla 10300, Maipú"},
		{"Minera Cordillera S.A.", "96.790.240-3", "Av. Grecia 1200, Antofagasta"},
	}
	roles     = []string{"Operador de grúa", "Conductor clase A4", "Ayudante de bodega", "Prevencionista de riesgos", "Capataz"}
	contracts = []string{"Indefinido", "Plazo fijo", "Por obra o faena"}
)

// SampleOptions tunes GenerateSnapshot.
type SampleOptions struct {
	Sex     string
	Profile Profile
	Seed    uint64

	// EdgeCases optionally rewrites fields with awkward but valid values.
	EdgeCases EdgeCaseConfig
}

// GenerateSnapshot returns a complete, valid submission started at now.
// The same options and now always produce the same snapshot.
func GenerateSnapshot(now time.Time, opts SampleOptions) (form.Snapshot, error) {
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	sex := opts.Sex
	if sex == "" {
		sex = "F"
		if rng.IntN(2) == 0 {
			sex = "M"
		}
	}

	s := form.New(now.Add(-20 * time.Minute))
	s.Metadata.WelcomeAcknowledged = true

	personal := GeneratePatient(sex, rng)
	s.PersonalInfo = &personal

	emp := employers[rng.IntN(len(employers))]
	s.EmployerInfo = &form.EmployerInfo{
		EmpresaNombre:    emp.name,
		EmpresaRut:       emp.rut,
		Cargo:            pick(rng, roles),
		FechaIngreso:     now.AddDate(0, 0, 7+rng.IntN(21)).Format(form.DateLayout),
		TipoContrato:     pick(rng, contracts),
		TelefonoEmpresa:  fmt.Sprintf("+56 2 %04d %04d", rng.IntN(10000), rng.IntN(10000)),
		DireccionEmpresa: emp.address,
	}

	medical := GenerateMedical(opts.Profile, now, rng)
	s.MedicalInfo = &medical

	signed := now.Add(-time.Minute).UnixMilli()
	s.Affidavit = &form.Affidavit{
		AceptaVeracidadInfo:    true,
		AceptaTratamientoDatos: true,
		AceptaEnvioPorEmail:    true,
		VersionConsentimiento:  form.ConsentVersion,
		Timestamp:              signed,
	}

	png, err := signature.EncodePNG(signature.Sample(400, 160, int64(opts.Seed)))
	if err != nil {
		return form.Snapshot{}, fmt.Errorf("sample signature: %w", err)
	}
	s.Signature = &form.Signature{Base64: signature.ToDataURL(png), Timestamp: signed}

	ApplyEdgeCases(&s, opts.EdgeCases, rng)
	return s, nil
}
