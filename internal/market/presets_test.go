package market

import (
	"os"
	"path/filepath"
	"testing"
)

func writePresets(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "market.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write presets: %v", err)
	}
	return path
}

func TestLoadPresetsAppliesOverrides(t *testing.T) {
	path := writePresets(t, `
patterns:
  rug:
    enabled: false
  pump:
    probability: 0.5
    min_duration: 5
    max_duration: 10
`)

	presets, err := LoadPresets(path)
	if err != nil {
		t.Fatalf("LoadPresets: %v", err)
	}

	params := defaultParams()
	toggles := DefaultToggles()
	presets.apply(&params, &toggles)

	if toggles.Rug {
		t.Error("rug should be disabled by preset")
	}
	if params[PatternPump].Probability != 0.5 {
		t.Errorf("pump probability=%v, expected 0.5", params[PatternPump].Probability)
	}
	if params[PatternPump].MinDuration != 5 || params[PatternPump].MaxDuration != 10 {
		t.Errorf("pump duration=[%d,%d], expected [5,10]",
			params[PatternPump].MinDuration, params[PatternPump].MaxDuration)
	}
	// Untouched patterns keep defaults.
	if params[PatternDump].Probability != 0.02 {
		t.Errorf("dump probability=%v, expected default 0.02", params[PatternDump].Probability)
	}
}

func TestLoadPresetsRejectsUnknownPattern(t *testing.T) {
	path := writePresets(t, `
patterns:
  moon:
    probability: 1
`)

	if _, err := LoadPresets(path); err == nil {
		t.Error("expected error for unknown pattern")
	}
}

func TestLoadPresetsRejectsBadProbability(t *testing.T) {
	path := writePresets(t, `
patterns:
  pump:
    probability: 1.5
`)

	if _, err := LoadPresets(path); err == nil {
		t.Error("expected error for out-of-range probability")
	}
}
