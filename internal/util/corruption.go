package util

import (
	"fmt"
	"strings"
)

// CorruptionType is a way a stored draft can be damaged.
type CorruptionType string

const (
	// Truncated keeps the first half of the value, as after a partial write.
	Truncated CorruptionType = "truncated"
	// NotJSON prefixes the value so it no longer parses.
	NotJSON CorruptionType = "not-json"
	// WrongType replaces the value with JSON of the wrong shape.
	WrongType CorruptionType = "wrong-type"
	// Tampered flips one character in the middle. Aimed at sealed values,
	// whose authentication then fails.
	Tampered CorruptionType = "tampered"
)

// AllCorruptionTypes returns all valid corruption types
func AllCorruptionTypes() []CorruptionType {
	return []CorruptionType{Truncated, NotJSON, WrongType, Tampered}
}

// ParseCorruptionTypes parses comma-separated corruption types.
// The special value "all" enables all corruption types.
func ParseCorruptionTypes(input string) ([]CorruptionType, error) {
	if input == "" {
		return nil, nil
	}
	valid := make(map[CorruptionType]bool)
	for _, t := range AllCorruptionTypes() {
		valid[t] = true
	}
	seen := make(map[CorruptionType]bool)
	var out []CorruptionType
	for _, p := range strings.Split(input, ",") {
		p = strings.TrimSpace(p)
		if p == "all" {
			return AllCorruptionTypes(), nil
		}
		t := CorruptionType(p)
		if !valid[t] {
			return nil, fmt.Errorf("unknown corruption type %q, valid types: %v (or 'all')", p, AllCorruptionTypes())
		}
		if !seen[t] {
			out = append(out, t)
			seen[t] = true
		}
	}
	return out, nil
}

// CorruptDraft returns raw damaged according to t.
func CorruptDraft(raw string, t CorruptionType) (string, error) {
	switch t {
	case Truncated:
		return raw[:len(raw)/2], nil
	case NotJSON:
		return "draft=" + raw, nil
	case WrongType:
		return `{"metadata":"yesterday","datosPersonales":["not","an","object"]}`, nil
	case Tampered:
		if raw == "" {
			return "", fmt.Errorf("cannot tamper with an empty value")
		}
		b := []byte(raw)
		i := len(b) / 2
		if b[i] == 'A' {
			b[i] = 'B'
		} else {
			b[i] = 'A'
		}
		return string(b), nil
	}
	return "", fmt.Errorf("unknown corruption type %q", t)
}
