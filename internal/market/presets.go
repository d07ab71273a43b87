package market

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PatternPreset overrides one pattern's activation knobs in market.yaml.
// Nil fields keep the built-in defaults.
type PatternPreset struct {
	Enabled     *bool    `yaml:"enabled"`
	Probability *float64 `yaml:"probability"`
	MinDuration *int     `yaml:"min_duration"`
	MaxDuration *int     `yaml:"max_duration"`
}

// Presets is the top-level market.yaml structure.
type Presets struct {
	Patterns map[string]PatternPreset `yaml:"patterns"`
}

// LoadPresets reads pattern overrides from a YAML file.
func LoadPresets(path string) (*Presets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var p Presets
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse market presets: %w", err)
	}

	for name, preset := range p.Patterns {
		if _, ok := patternByName(name); !ok {
			return nil, fmt.Errorf("market presets: unknown pattern %q", name)
		}
		if preset.Probability != nil && (*preset.Probability < 0 || *preset.Probability > 1) {
			return nil, fmt.Errorf("market presets: pattern %q probability out of range: %v", name, *preset.Probability)
		}
	}
	return &p, nil
}

func patternByName(name string) (Pattern, bool) {
	for p := PatternPump; p < patternCount; p++ {
		if patternNames[p] == name {
			return p, true
		}
	}
	return 0, false
}

// apply folds the presets into the regime parameter table and toggles.
func (p *Presets) apply(params *[patternCount]regimeParams, toggles *PatternToggles) {
	for name, preset := range p.Patterns {
		pat, ok := patternByName(name)
		if !ok {
			continue
		}
		if preset.Probability != nil {
			params[pat].Probability = *preset.Probability
		}
		if preset.MinDuration != nil {
			params[pat].MinDuration = *preset.MinDuration
		}
		if preset.MaxDuration != nil {
			params[pat].MaxDuration = *preset.MaxDuration
		}
		if preset.Enabled != nil {
			setToggle(toggles, pat, *preset.Enabled)
		}
	}
}

func setToggle(t *PatternToggles, p Pattern, enabled bool) {
	switch p {
	case PatternPump:
		t.Pump = enabled
	case PatternDump:
		t.Dump = enabled
	case PatternRug:
		t.Rug = enabled
	case PatternWhale:
		t.Whale = enabled
	case PatternParabolic:
		t.Parabolic = enabled
	case PatternSlowGrind:
		t.SlowGrind = enabled
	case PatternChop:
		t.Chop = enabled
	}
}
