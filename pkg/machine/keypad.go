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

func (kp *Keypad) SetKey(key uint8, pressed bool) {
	if key >= KEY_COUNT {
		panic("Invalid key index")
	}

	if pressed && !kp.Keys[key] {
		kp.Edges |= 1 << key
	}

	kp.Keys[key] = pressed
}

func (kp *Keypad) IsPressed(key uint8) bool {
	return key < KEY_COUNT && kp.Keys[key]
}

// takeEdge returns the lowest key pressed since the edges were last cleared.
func (kp *Keypad) takeEdge() (uint8, bool) {
	for key := uint8(0); key < KEY_COUNT; key++ {
		if kp.Edges&(1<<key) != 0 {
			kp.Edges = 0
			return key, true
		}
	}

	return 0, false
}

// SetKey is called by the host between steps.
func (mc *Machine) SetKey(key uint8, pressed bool) {
	mc.State.Keypad.SetKey(key, pressed)
}

// SetKeys pushes a full keypad snapshot.
func (mc *Machine) SetKeys(keys [KEY_COUNT]bool) {
	for key, pressed := range keys {
		mc.State.Keypad.SetKey(uint8(key), pressed)
	}
}

// Waiting reports the target register of a pending FX0A.
func (mc *Machine) Waiting() (uint8, bool) {
	return mc.State.WaitTarget, mc.State.Waiting
}
