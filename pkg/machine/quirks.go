// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package machine

import (
	"fmt"
	"sort"
	"strings"
)

// Quirks selects between the behaviours historical interpreters disagree on.
// The zero value is the COSMAC VIP behaviour with wrapping draws and no
// vblank gating. Quirks are read by Step only and never modified by it.
type Quirks struct {
	// 8XY6/8XYE shift VX in place instead of VY into VX
	Shift bool

	// FX55/FX65 leave I pointing past the last register transferred
	LoadStore bool

	// BXNN jumps to XNN + VX instead of NNN + V0
	Jump bool

	// 8XY1/8XY2/8XY3 leave VF untouched instead of zeroing it
	Logic bool

	// DXYN drops pixels past the display edges instead of wrapping them
	Clip bool

	// DXYN waits for the next 60Hz tick before drawing
	VBlank bool
}

const (
	PRESET_CHIP8   = "chip8"
	PRESET_SCHIP   = "schip"
	PRESET_XOCHIP  = "xochip"
	PRESET_DEFAULT = "default"
)

var presets = map[string]Quirks{
	PRESET_CHIP8: {
		LoadStore: true,
		Clip:      true,
		VBlank:    true,
	},
	PRESET_SCHIP: {
		Shift: true,
		Jump:  true,
		Logic: true,
		Clip:  true,
	},
	PRESET_XOCHIP: {
		LoadStore: true,
		Logic:     true,
	},
	PRESET_DEFAULT: {
		Shift: true,
		Logic: true,
	},
}

// QuirkNames lists the individual toggles accepted by Quirks.Apply.
var QuirkNames = []string{"shift", "loadstore", "jump", "logic", "clip", "vblank"}

type UnknownQuirkError struct {
	Name string
}

func (err *UnknownQuirkError) Error() string {
	return fmt.Sprintf("Unknown quirk '%s'", err.Name)
}

type UnknownPresetError struct {
	Name string
}

func (err *UnknownPresetError) Error() string {
	return fmt.Sprintf(
		"Unknown quirk preset '%s' (want one of %s)",
		err.Name,
		strings.Join(PresetNames(), ", "),
	)
}

func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func QuirksPreset(name string) (Quirks, error) {
	quirks, exists := presets[strings.ToLower(name)]

	if !exists {
		return Quirks{}, &UnknownPresetError{name}
	}

	return quirks, nil
}

// Apply returns a copy of q with the named toggle set to enabled.
func (q Quirks) Apply(name string, enabled bool) (Quirks, error) {
	switch strings.ToLower(name) {
	case "shift":
		q.Shift = enabled
	case "loadstore", "memory":
		q.LoadStore = enabled
	case "jump", "jumping":
		q.Jump = enabled
	case "logic", "vf":
		q.Logic = enabled
	case "clip", "clipping":
		q.Clip = enabled
	case "vblank", "displaywait":
		q.VBlank = enabled
	default:
		return q, &UnknownQuirkError{name}
	}

	return q, nil
}

// ParseQuirks builds a configuration from a preset followed by comma
// separated toggles to enable and to disable.
func ParseQuirks(preset, set, unset string) (Quirks, error) {
	quirks, err := QuirksPreset(preset)

	if err != nil {
		return quirks, err
	}

	for _, list := range []struct {
		names   string
		enabled bool
	}{{set, true}, {unset, false}} {
		for _, name := range strings.Split(list.names, ",") {
			if name = strings.TrimSpace(name); name == "" {
				continue
			}

			if quirks, err = quirks.Apply(name, list.enabled); err != nil {
				return quirks, err
			}
		}
	}

	return quirks, nil
}

func (q Quirks) String() string {
	values := []bool{q.Shift, q.LoadStore, q.Jump, q.Logic, q.Clip, q.VBlank}
	enabled := make([]string, 0, len(values))

	for i, value := range values {
		if value {
			enabled = append(enabled, QuirkNames[i])
		}
	}

	if len(enabled) == 0 {
		return "none"
	}

	return strings.Join(enabled, ",")
}
