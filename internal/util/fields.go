package util

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/almanova/preocupacional/internal/form"
)

// FieldInfo locates one overridable field inside a snapshot.
type FieldInfo struct {
	Name    string // JSON name, e.g. "empresaRut"
	Section form.SectionKey
	index   int
	kind    reflect.Kind
}

// fieldRegistry maps lowercase field names to their FieldInfo.
var fieldRegistry = buildRegistry()

func buildRegistry() map[string]FieldInfo {
	sections := map[form.SectionKey]any{
		form.KeyPersonal:  form.PersonalInfo{},
		form.KeyEmployer:  form.EmployerInfo{},
		form.KeyMedical:   form.MedicalInfo{},
		form.KeyAffidavit: form.Affidavit{},
	}
	reg := make(map[string]FieldInfo)
	for key, v := range sections {
		t := reflect.TypeOf(v)
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if k := f.Type.Kind(); k != reflect.String && k != reflect.Bool {
				continue
			}
			reg[strings.ToLower(name)] = FieldInfo{Name: name, Section: key, index: i, kind: f.Type.Kind()}
		}
	}
	return reg
}

// GetFieldByName returns FieldInfo for a given field name.
// The lookup is case-insensitive. If the field is not found, an error is
// returned with a suggestion for the closest matching name.
func GetFieldByName(name string) (FieldInfo, error) {
	normalizedName := strings.ToLower(strings.TrimSpace(name))

	if info, ok := fieldRegistry[normalizedName]; ok {
		return info, nil
	}

	if suggestion := findClosestFieldName(normalizedName); suggestion != "" {
		return FieldInfo{}, fmt.Errorf("unknown field %q, did you mean %q?", name, suggestion)
	}
	return FieldInfo{}, fmt.Errorf("unknown field %q", name)
}

// Override is one parsed name=value flag.
type Override struct {
	Field FieldInfo
	Value string
}

// ParseOverrides parses repeated name=value flags.
func ParseOverrides(flags []string) ([]Override, error) {
	out := make([]Override, 0, len(flags))
	for _, f := range flags {
		name, value, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("invalid override %q (expected name=value)", f)
		}
		info, err := GetFieldByName(name)
		if err != nil {
			return nil, err
		}
		if info.kind == reflect.Bool {
			if _, err := parseBool(value); err != nil {
				return nil, fmt.Errorf("override %s: %w", info.Name, err)
			}
		}
		out = append(out, Override{Field: info, Value: value})
	}
	return out, nil
}

// ApplyOverrides writes each override into s, creating missing sections.
func ApplyOverrides(s *form.Snapshot, overrides []Override) error {
	for _, o := range overrides {
		cur, ok := s.Section(o.Field.Section)
		if !ok {
			cur = zeroSection(o.Field.Section)
		}
		v := reflect.New(reflect.TypeOf(cur)).Elem()
		v.Set(reflect.ValueOf(cur))

		f := v.Field(o.Field.index)
		if o.Field.kind == reflect.Bool {
			b, err := parseBool(o.Value)
			if err != nil {
				return fmt.Errorf("override %s: %w", o.Field.Name, err)
			}
			f.SetBool(b)
		} else {
			f.SetString(o.Value)
		}
		if err := s.SetSection(o.Field.Section, v.Interface()); err != nil {
			return err
		}
	}
	return nil
}

func zeroSection(key form.SectionKey) any {
	switch key {
	case form.KeyPersonal:
		return form.PersonalInfo{}
	case form.KeyEmployer:
		return form.EmployerInfo{}
	case form.KeyMedical:
		return form.MedicalInfo{}
	}
	return form.Affidavit{}
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "si", "sí", "1":
		return true, nil
	case "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}

// findClosestFieldName finds the closest matching field name using
// Levenshtein distance. Returns empty string if nothing is within 4 edits.
func findClosestFieldName(input string) string {
	const maxDistance = 4
	bestDistance := maxDistance + 1
	var bestMatch string

	for key, info := range fieldRegistry {
		distance := levenshteinDistance(input, key)
		if distance < bestDistance || (distance == bestDistance && info.Name < bestMatch) {
			bestDistance = distance
			bestMatch = info.Name
		}
	}

	if bestDistance <= maxDistance {
		return bestMatch
	}
	return ""
}

// levenshteinDistance is the minimum number of single-byte edits turning a
// into b.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
