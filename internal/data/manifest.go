package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ControllerEntry toggles one compiled-in controller by its registration name.
type ControllerEntry struct {
	Name    string `yaml:"name"`
	Enabled bool   `yaml:"enabled"`
}

// Manifest selects which controllers a host run registers and which Lua
// controller scripts it loads.
type Manifest struct {
	Controllers []ControllerEntry `yaml:"controllers"`
	Scripts     []string          `yaml:"scripts"`

	enabled map[string]bool
}

// LoadManifest loads controllers.yaml.
func LoadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read controller manifest: %w", err)
	}
	m, err := ParseManifest(raw)
	if err != nil {
		return nil, fmt.Errorf("parse controller manifest: %w", err)
	}
	return m, nil
}

// ParseManifest decodes a manifest. Duplicate controller names are rejected.
func ParseManifest(raw []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	m.enabled = make(map[string]bool, len(m.Controllers))
	for _, c := range m.Controllers {
		if c.Name == "" {
			return nil, fmt.Errorf("controller entry without name")
		}
		if _, dup := m.enabled[c.Name]; dup {
			return nil, fmt.Errorf("controller %q listed twice", c.Name)
		}
		m.enabled[c.Name] = c.Enabled
	}
	return &m, nil
}

// Enabled reports whether the named controller should be registered.
// Controllers the manifest does not mention are enabled.
func (m *Manifest) Enabled(name string) bool {
	if m == nil {
		return true
	}
	on, ok := m.enabled[name]
	return !ok || on
}

// Count returns the number of controller entries.
func (m *Manifest) Count() int {
	return len(m.Controllers)
}
