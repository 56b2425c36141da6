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

func (d *Display) Clear() {
	d.Pixels = Frame{}
	d.Dirty = true
}

// DrawSprite XORs each sprite row onto the display with its top-left corner at
// (x, y), which always wrap onto the display. Pixels running past an edge are
// wrapped or, with clip set, dropped. Reports whether any lit pixel was
// turned off.
func (d *Display) DrawSprite(x, y int, sprite []byte, clip bool) bool {
	x %= DISPLAY_WIDTH
	y %= DISPLAY_HEIGHT

	collision := false

	for row, bits := range sprite {
		py := y + row

		if py >= DISPLAY_HEIGHT {
			if clip {
				break
			}
			py %= DISPLAY_HEIGHT
		}

		for col := 0; col < 8; col++ {
			if (bits>>(7-col))&0x1 == 0 {
				continue
			}

			px := x + col

			if px >= DISPLAY_WIDTH {
				if clip {
					break
				}
				px %= DISPLAY_WIDTH
			}

			mask := uint64(1) << (DISPLAY_WIDTH - 1 - px)

			if d.Pixels[py]&mask != 0 {
				collision = true
			}

			d.Pixels[py] ^= mask
		}
	}

	d.Dirty = true

	return collision
}

// Frame returns a snapshot of the display and whether it changed since the
// previous call, clearing the dirty flag.
func (mc *Machine) Frame() (Frame, bool) {
	dirty := mc.State.Display.Dirty
	mc.State.Display.Dirty = false

	return mc.State.Display.Pixels, dirty
}
