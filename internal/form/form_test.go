package form

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestValidRUT(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"11.111.111-1", true},
		{"12.345.678-5", true},
		{"12345678-5", true},
		{"123456785", true},
		{"12.345.678-4", false},
		{"76.086.428-K", false},
		{"", false},
		{"1", false},
		{"12.3A5.678-5", false},
	}

	for _, tt := range tests {
		if got := ValidRUT(tt.input); got != tt.expected {
			t.Errorf("ValidRUT(%q) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}

func TestRUTCheckDigitK(t *testing.T) {
	// 10.000.013: weights 2,3,4,5,6,7,2,3 from the right give a remainder of 1.
	dv, err := RUTCheckDigit("10000013")
	if err != nil {
		t.Fatalf("RUTCheckDigit failed: %v", err)
	}
	if dv != 'K' {
		t.Errorf("Expected check digit K, got %c", dv)
	}
	if !ValidRUT("10.000.013-k") {
		t.Error("Expected lowercase k check digit to be accepted")
	}
}

func TestFormatRUT(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"123456785", "12.345.678-5"},
		{"11111111-1", "11.111.111-1"},
		{"9.876.543-3", "9.876.543-3"},
		{"x", "x"},
	}

	for _, tt := range tests {
		if got := FormatRUT(tt.input); got != tt.expected {
			t.Errorf("FormatRUT(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestKeyForStep(t *testing.T) {
	tests := []struct {
		step     int
		expected SectionKey
		ok       bool
	}{
		{StepWelcome, "", false},
		{StepPersonal, KeyPersonal, true},
		{StepEmployer, KeyEmployer, true},
		{StepMedical, KeyMedical, true},
		{StepAffidavit, KeyAffidavit, true},
		{StepSignature, KeySignature, true},
		{TotalSteps, "", false},
		{-1, "", false},
	}

	for _, tt := range tests {
		key, ok := KeyForStep(tt.step)
		if key != tt.expected || ok != tt.ok {
			t.Errorf("KeyForStep(%d) = (%q, %v), expected (%q, %v)", tt.step, key, ok, tt.expected, tt.ok)
		}
		if ok && StepForKey(key) != tt.step {
			t.Errorf("StepForKey(%q) = %d, expected %d", key, StepForKey(key), tt.step)
		}
	}
}

func TestSnapshotCloneIsIndependent(t *testing.T) {
	finished := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s := New(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	s.Metadata.FinishedAt = &finished
	if err := s.SetSection(KeyPersonal, PersonalInfo{Nombres: "Ana", Email: "ana@example.cl"}); err != nil {
		t.Fatalf("SetSection failed: %v", err)
	}

	c := s.Clone()
	c.PersonalInfo.Nombres = "Beatriz"
	*c.Metadata.FinishedAt = finished.Add(time.Hour)

	if s.PersonalInfo.Nombres != "Ana" {
		t.Errorf("Expected original name to stay Ana, got %s", s.PersonalInfo.Nombres)
	}
	if !s.Metadata.FinishedAt.Equal(finished) {
		t.Errorf("Expected original finish time to stay %v, got %v", finished, *s.Metadata.FinishedAt)
	}
}

func TestSetSectionAcceptsValueAndPointer(t *testing.T) {
	var s Snapshot
	emp := &EmployerInfo{EmpresaNombre: "Minera Norte"}
	if err := s.SetSection(KeyEmployer, emp); err != nil {
		t.Fatalf("SetSection failed: %v", err)
	}
	emp.EmpresaNombre = "changed"
	if s.EmployerInfo.EmpresaNombre != "Minera Norte" {
		t.Errorf("Expected stored copy, got %s", s.EmployerInfo.EmpresaNombre)
	}

	if err := s.SetSection(KeyEmployer, (*EmployerInfo)(nil)); err != nil {
		t.Fatalf("SetSection(nil) failed: %v", err)
	}
	if s.Has(KeyEmployer) {
		t.Error("Expected nil pointer to clear the section")
	}
}

func TestSetSectionRejectsMismatchedType(t *testing.T) {
	var s Snapshot
	err := s.SetSection(KeyPersonal, EmployerInfo{})
	var typeErr *SectionTypeError
	if !errors.As(err, &typeErr) {
		t.Fatalf("Expected SectionTypeError, got %v", err)
	}
	if s.HasAnySection() {
		t.Error("Expected snapshot to stay empty after a rejected set")
	}
	if err := s.SetSection("unknown", PersonalInfo{}); err == nil {
		t.Error("Expected error for unknown section key")
	}
}

func TestSnapshotJSONKeys(t *testing.T) {
	s := New(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	s.Metadata.WelcomeAcknowledged = true
	_ = s.SetSection(KeyPersonal, PersonalInfo{Email: "a@b.cl"})

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if _, ok := raw["datosPersonales"]; !ok {
		t.Errorf("Expected datosPersonales key in %s", data)
	}
	if _, ok := raw["firma"]; ok {
		t.Errorf("Expected absent sections to be omitted, got %s", data)
	}
	meta, _ := raw["metadata"].(map[string]any)
	if meta["bienvenidaCompletada"] != true {
		t.Errorf("Expected bienvenidaCompletada=true, got %v", meta)
	}

	var back Snapshot
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal into Snapshot failed: %v", err)
	}
	if !reflect.DeepEqual(back.PersonalInfo, s.PersonalInfo) {
		t.Errorf("Expected personal info %+v, got %+v", s.PersonalInfo, back.PersonalInfo)
	}
}

func validPersonal() PersonalInfo {
	return PersonalInfo{
		Nombres: "Ana", Apellidos: "Pérez Soto", RUN: "12.345.678-5", Genero: "femenino",
		FechaNacimiento: "1990-04-12", Telefono: "+56911112222", Email: "ana@example.cl",
		Nacionalidad: "Chilena", Direccion: "Av. Siempre Viva 742", Region: "Metropolitana",
		Ciudad: "Santiago", Comuna: "Ñuñoa", Prevision: "Fonasa",
	}
}

func TestPersonalValidate(t *testing.T) {
	if err := validPersonal().Validate(); err != nil {
		t.Fatalf("Expected valid personal info, got %v", err)
	}

	p := validPersonal()
	p.Email = "not-an-email"
	p.RUN = "12.345.678-9"
	p.FechaNacimiento = "12/04/1990"
	p.Comuna = " "

	err := p.Validate()
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("Expected ValidationErrors, got %v", err)
	}

	expected := map[string]string{
		"email":           MsgEmail,
		"run":             MsgRUT,
		"fechaNacimiento": MsgDate,
		"comuna":          MsgRequired,
	}
	for field, msg := range expected {
		got, ok := verrs.Field(field)
		if !ok || got != msg {
			t.Errorf("Expected %s error %q, got %q (present=%v)", field, msg, got, ok)
		}
	}
	if len(verrs) != len(expected) {
		t.Errorf("Expected %d errors, got %d: %v", len(expected), len(verrs), verrs)
	}
}

func TestMedicalConditionalDetails(t *testing.T) {
	base := MedicalInfo{
		Sintomas: "ninguno", CuandoInicioSintomas: "n/a",
		EnfermedadCronica: No, EnfermedadMental: No, CirugiaPrevia: No,
		ReaccionAlergica: No, AntecedenteFamiliar: No,
		EstadoCivil: "soltero", TieneHijos: No, CuantasPersonasViven: "2",
		Fuma: No, ConsumeAlcohol: No, TieneLicenciaMedica: No,
		PesoKilos: "70", EstaturaMetros: "1,72",
		PuedeComerBien: Yes, HaceEjercicio: Yes, ProblemasParaDormir: No,
		FechaAtencion: "2025-01-10", FechaInicioLM: "2025-01-10", DiasLicencia: "3",
		TieneEstudiosLaboratorio: No, TieneValoracionEspecialista: No,
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("Expected valid medical info, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*MedicalInfo)
		field  string
	}{
		{"chronic without detail", func(m *MedicalInfo) { m.EnfermedadCronica = Yes }, "detalleEnfermedadCronica"},
		{"allergy without detail", func(m *MedicalInfo) { m.ReaccionAlergica = Yes }, "detalleReaccionAlergica"},
		{"children without count", func(m *MedicalInfo) { m.TieneHijos = Yes }, "cuantosHijos"},
		{"children count zero", func(m *MedicalInfo) { m.TieneHijos = Yes; m.CuantosHijos = "0" }, "cuantosHijos"},
		{"preexisting without detail", func(m *MedicalInfo) { m.TieneCondicionPreexistente = true }, "detalleCondicion"},
		{"bad yes/no", func(m *MedicalInfo) { m.Fuma = "tal vez" }, "fuma"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := base
			tt.mutate(&m)
			var verrs ValidationErrors
			if !errors.As(m.Validate(), &verrs) {
				t.Fatal("Expected validation errors")
			}
			if _, ok := verrs.Field(tt.field); !ok {
				t.Errorf("Expected error on %s, got %v", tt.field, verrs)
			}
		})
	}
}

func TestAffidavitAndSignatureValidate(t *testing.T) {
	a := Affidavit{AceptaVeracidadInfo: true, AceptaTratamientoDatos: true}
	if a.Validate() == nil {
		t.Error("Expected affidavit without email consent to be invalid")
	}
	a.AceptaEnvioPorEmail = true
	if err := a.Validate(); err != nil {
		t.Errorf("Expected affidavit to be valid, got %v", err)
	}

	if (Signature{}).Validate() == nil {
		t.Error("Expected empty signature to be invalid")
	}
	if (Signature{Base64: PNGDataURLPrefix + "aGVsbG8="}).Validate() == nil {
		t.Error("Expected non-PNG signature to be invalid")
	}
	// 8-byte PNG magic is enough for the shape check.
	sig := Signature{Base64: PNGDataURLPrefix + "iVBORw0KGgo="}
	if err := sig.Validate(); err != nil {
		t.Errorf("Expected PNG signature to be valid, got %v", err)
	}
}

func TestValidateSection(t *testing.T) {
	if err := ValidateSection(nil); err == nil {
		t.Error("Expected error for nil payload")
	}
	if err := ValidateSection(42); err == nil {
		t.Error("Expected error for unsupported payload")
	}
	p := validPersonal()
	if err := ValidateSection(&p); err != nil {
		t.Errorf("Expected pointer payload to validate, got %v", err)
	}
}
