package wizard

import (
	"fmt"
	"os"

	"github.com/almanova/preocupacional/internal/form"
	"gopkg.in/yaml.v3"
)

// LoadSnapshotYAML reads a snapshot from a YAML file.
func LoadSnapshotYAML(path string) (form.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return form.Snapshot{}, fmt.Errorf("reading snapshot: %w", err)
	}

	var s form.Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return form.Snapshot{}, fmt.Errorf("parsing snapshot: %w", err)
	}
	return s, nil
}

// SaveSnapshotYAML writes s to path. The file holds personal and medical
// data, so it is created 0600.
func SaveSnapshotYAML(s form.Snapshot, path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}
