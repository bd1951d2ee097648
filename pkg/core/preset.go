// pkg/core/preset.go
package core

import (
	"fmt"
	"strings"
)

// Preset names an arena and ruleset that can be loaded into a session
type Preset string

const (
	PresetStandard           Preset = "standard"
	PresetDropshot           Preset = "dropshot"
	PresetHoops              Preset = "hoops"
	PresetStandardThrowback  Preset = "standard_throwback"
	PresetStandardHeatseeker Preset = "standard_heatseeker"
)

// Presets lists every loadable preset in a stable order.
var Presets = []Preset{
	PresetStandard,
	PresetDropshot,
	PresetHoops,
	PresetStandardThrowback,
	PresetStandardHeatseeker,
}

// presetAliases maps the older "soccar" names onto their presets
var presetAliases = map[string]Preset{
	"soccar":           PresetStandard,
	"soccer":           PresetStandard,
	"soccar_throwback": PresetStandardThrowback,
	"soccer_throwback": PresetStandardThrowback,
}

// ParsePreset resolves a preset name, accepting the legacy aliases.
func ParsePreset(name string) (Preset, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if p, ok := presetAliases[n]; ok {
		return p, nil
	}
	for _, p := range Presets {
		if string(p) == n {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown preset: %q", name)
}

// Heatseeker reports whether the preset uses heatseeker ball physics.
func (p Preset) Heatseeker() bool {
	return p == PresetStandardHeatseeker
}
