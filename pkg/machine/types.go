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
	"math/rand"
)

type MachineState struct {
	// V0 - VF
	Registers [REGISTER_COUNT]uint8

	// I
	Index uint16

	Program uint16

	// Return addresses, Stack[:StackSize] are live
	Stack     [STACK_DEPTH]uint16
	StackSize int

	Delay uint8
	Sound uint8

	Memory [MEMORY_SIZE]byte

	Display Display
	Keypad  Keypad

	// Key-wait sub-state entered by FX0A
	Waiting    bool
	WaitTarget uint8

	// Set by the 60Hz tick, consumed by a vblank-gated draw
	VBlank bool
}

type MachineDebugger interface {
	Step(mc *Machine)
	Read(addr uint16, mc *Machine)
	Write(addr uint16, mc *Machine)
}

type Machine struct {
	State    MachineState
	Quirks   Quirks
	Rand     *rand.Rand
	Debugger MachineDebugger

	// Last image passed to LoadProgram, replayed by Reset
	image []byte
}

// Frame is a snapshot of the display buffer, one row per word with the
// leftmost pixel in the most significant bit.
type Frame [DISPLAY_HEIGHT]uint64

func (f *Frame) Pixel(x, y int) bool {
	return (f[y]>>(DISPLAY_WIDTH-1-x))&0x1 == 1
}

type Display struct {
	Pixels Frame
	Dirty  bool
}

type Keypad struct {
	Keys [KEY_COUNT]bool

	// One bit per key, latched on a released -> pressed transition
	Edges uint16
}
