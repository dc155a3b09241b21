// Package tuning loads the service tuning file, including the default
// capture policy the trap engine starts with.
package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	Policy        Policy        `yaml:"policy"`
	Notifications Notifications `yaml:"notifications"`
}

// Policy mirrors the engine's decision flags one-to-one.
type Policy struct {
	AllowSoulDiversion            bool   `yaml:"allow_soul_diversion"`
	PerformDiversionLocally       bool   `yaml:"perform_diversion_locally"`
	AllowNotifications            bool   `yaml:"allow_notifications"`
	AllowExtraSoulRelocation      bool   `yaml:"allow_extra_soul_relocation"`
	PreserveOwnership             bool   `yaml:"preserve_ownership"`
	AllowSoulDisplacement         bool   `yaml:"allow_soul_displacement"`
	AllowSoulRelocation           bool   `yaml:"allow_soul_relocation"`
	AllowPartiallyFillingSoulGems bool   `yaml:"allow_partially_filling_soul_gems"`
	AllowProfiling                bool   `yaml:"allow_profiling"`
	SoulShrinkingTechnique        string `yaml:"soul_shrinking_technique"` // none | shrink | split
}

type Notifications struct {
	MaxPerCapture int `yaml:"max_per_capture"`
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	switch t.Policy.SoulShrinkingTechnique {
	case "", "none", "shrink", "split":
	default:
		return t, fmt.Errorf("tuning.yaml: unknown soul_shrinking_technique %q", t.Policy.SoulShrinkingTechnique)
	}
	if t.Notifications.MaxPerCapture <= 0 {
		t.Notifications.MaxPerCapture = 1
	}
	return t, nil
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion: "1.0",
		Policy: Policy{
			AllowNotifications:            true,
			AllowExtraSoulRelocation:      true,
			PreserveOwnership:             true,
			AllowSoulDisplacement:         true,
			AllowSoulRelocation:           true,
			AllowPartiallyFillingSoulGems: true,
			SoulShrinkingTechnique:        "none",
		},
		Notifications: Notifications{MaxPerCapture: 1},
	}
}
