// Package form defines the pre-occupational form data model: the section
// payloads, the snapshot that aggregates them and the step layout of the
// wizard.
package form

import (
	"fmt"
	"time"
)

// SectionKey identifies one section of the snapshot.
type SectionKey string

const (
	KeyPersonal  SectionKey = "datosPersonales"
	KeyEmployer  SectionKey = "informacionEmpleador"
	KeyMedical   SectionKey = "informacionMedica"
	KeyAffidavit SectionKey = "declaracionJurada"
	KeySignature SectionKey = "firma"
)

// Step indices of the wizard.
const (
	StepWelcome = iota
	StepPersonal
	StepEmployer
	StepMedical
	StepAffidavit
	StepSignature

	TotalSteps
)

// SectionOrder lists the section keys in step order (steps 1..5).
var SectionOrder = []SectionKey{KeyPersonal, KeyEmployer, KeyMedical, KeyAffidavit, KeySignature}

// KeyForStep returns the section key owned by step. Step 0 has no key.
func KeyForStep(step int) (SectionKey, bool) {
	if step < StepPersonal || step > StepSignature {
		return "", false
	}
	return SectionOrder[step-1], true
}

// StepForKey returns the step index that owns key, or 0 when unknown.
func StepForKey(key SectionKey) int {
	for i, k := range SectionOrder {
		if k == key {
			return i + 1
		}
	}
	return StepWelcome
}

// Metadata carries bookkeeping that is not owned by any section.
type Metadata struct {
	StartedAt           time.Time  `json:"fechaInicio" yaml:"fechaInicio"`
	FinishedAt          *time.Time `json:"fechaFin,omitempty" yaml:"fechaFin,omitempty"`
	WelcomeAcknowledged bool       `json:"bienvenidaCompletada" yaml:"bienvenidaCompletada"`
}

// Snapshot is the aggregate of every section payload plus metadata.
type Snapshot struct {
	PersonalInfo *PersonalInfo `json:"datosPersonales,omitempty" yaml:"datosPersonales,omitempty"`
	EmployerInfo *EmployerInfo `json:"informacionEmpleador,omitempty" yaml:"informacionEmpleador,omitempty"`
	MedicalInfo  *MedicalInfo  `json:"informacionMedica,omitempty" yaml:"informacionMedica,omitempty"`
	Affidavit    *Affidavit    `json:"declaracionJurada,omitempty" yaml:"declaracionJurada,omitempty"`
	Signature    *Signature    `json:"firma,omitempty" yaml:"firma,omitempty"`
	Metadata     Metadata      `json:"metadata" yaml:"metadata"`
}

// New returns an empty snapshot started at now.
func New(now time.Time) Snapshot {
	return Snapshot{Metadata: Metadata{StartedAt: now}}
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{Metadata: s.Metadata}
	if s.Metadata.FinishedAt != nil {
		t := *s.Metadata.FinishedAt
		out.Metadata.FinishedAt = &t
	}
	if s.PersonalInfo != nil {
		v := *s.PersonalInfo
		out.PersonalInfo = &v
	}
	if s.EmployerInfo != nil {
		v := *s.EmployerInfo
		out.EmployerInfo = &v
	}
	if s.MedicalInfo != nil {
		v := *s.MedicalInfo
		out.MedicalInfo = &v
	}
	if s.Affidavit != nil {
		v := *s.Affidavit
		out.Affidavit = &v
	}
	if s.Signature != nil {
		v := *s.Signature
		out.Signature = &v
	}
	return out
}

// Has reports whether the section for key is present.
func (s *Snapshot) Has(key SectionKey) bool {
	_, ok := s.Section(key)
	return ok
}

// LastCompletedStep returns the highest step whose section is present, or
// StepWelcome. Presence counts, not validity.
func (s *Snapshot) LastCompletedStep() int {
	for i := len(SectionOrder) - 1; i >= 0; i-- {
		if s.Has(SectionOrder[i]) {
			return i + 1
		}
	}
	return StepWelcome
}

// HasAnySection reports whether at least one section is populated.
func (s *Snapshot) HasAnySection() bool {
	for _, k := range SectionOrder {
		if s.Has(k) {
			return true
		}
	}
	return false
}

// Section returns a copy of the payload stored under key.
func (s *Snapshot) Section(key SectionKey) (any, bool) {
	switch key {
	case KeyPersonal:
		if s.PersonalInfo != nil {
			return *s.PersonalInfo, true
		}
	case KeyEmployer:
		if s.EmployerInfo != nil {
			return *s.EmployerInfo, true
		}
	case KeyMedical:
		if s.MedicalInfo != nil {
			return *s.MedicalInfo, true
		}
	case KeyAffidavit:
		if s.Affidavit != nil {
			return *s.Affidavit, true
		}
	case KeySignature:
		if s.Signature != nil {
			return *s.Signature, true
		}
	}
	return nil, false
}

// SetSection replaces the payload for key with a copy of value. value may be
// the section struct or a pointer to it; a nil pointer clears the section.
func (s *Snapshot) SetSection(key SectionKey, value any) error {
	switch key {
	case KeyPersonal:
		v, ok, err := sectionValue[PersonalInfo](key, value)
		if err != nil {
			return err
		}
		s.PersonalInfo = ptrIf(v, ok)
	case KeyEmployer:
		v, ok, err := sectionValue[EmployerInfo](key, value)
		if err != nil {
			return err
		}
		s.EmployerInfo = ptrIf(v, ok)
	case KeyMedical:
		v, ok, err := sectionValue[MedicalInfo](key, value)
		if err != nil {
			return err
		}
		s.MedicalInfo = ptrIf(v, ok)
	case KeyAffidavit:
		v, ok, err := sectionValue[Affidavit](key, value)
		if err != nil {
			return err
		}
		s.Affidavit = ptrIf(v, ok)
	case KeySignature:
		v, ok, err := sectionValue[Signature](key, value)
		if err != nil {
			return err
		}
		s.Signature = ptrIf(v, ok)
	default:
		return fmt.Errorf("unknown section %q", key)
	}
	return nil
}

// SectionTypeError is returned when a payload does not match its section key.
type SectionTypeError struct {
	Key SectionKey
	Got any
}

func (e *SectionTypeError) Error() string {
	return fmt.Sprintf("section %s: unexpected payload type %T", e.Key, e.Got)
}

func sectionValue[T any](key SectionKey, value any) (T, bool, error) {
	var zero T
	switch v := value.(type) {
	case T:
		return v, true, nil
	case *T:
		if v == nil {
			return zero, false, nil
		}
		return *v, true, nil
	}
	return zero, false, &SectionTypeError{Key: key, Got: value}
}

func ptrIf[T any](v T, ok bool) *T {
	if !ok {
		return nil
	}
	return &v
}
