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
	"io"
)

func (mc *MachineState) Reset() {
	*mc = MachineState{}

	for i, glyph := range FontSprites {
		copy(mc.Memory[int(MEMSPACE_FONT)+i*FONT_HEIGHT:], glyph[:])
	}

	mc.Program = MEMSPACE_PROGRAM
	mc.Display.Dirty = true
}

// LoadProgram resets the machine and copies image to the program space.
func (mc *Machine) LoadProgram(image []byte) error {
	if len(image) > PROGRAM_LIMIT {
		return &ImageTooLargeError{len(image), PROGRAM_LIMIT}
	}

	mc.image = append(mc.image[:0], image...)
	mc.Reset()

	return nil
}

// LoadBin reads a raw image from reader in full before loading it.
func (mc *Machine) LoadBin(reader io.Reader) error {
	image, err := io.ReadAll(io.LimitReader(reader, int64(PROGRAM_LIMIT)+1))

	if err != nil {
		return err
	}

	return mc.LoadProgram(image)
}

// Reset restores the load-time state, replaying the last loaded image.
func (mc *Machine) Reset() {
	mc.State.Reset()
	copy(mc.State.Memory[MEMSPACE_PROGRAM:], mc.image)
}

func (mc *Machine) ReadMem(addr uint16) (byte, error) {
	return mc.read(uint32(addr))
}

func (mc *Machine) WriteMem(addr uint16, value byte) error {
	return mc.write(uint32(addr), value)
}

func (mc *Machine) read(addr uint32) (byte, error) {
	if addr >= MEMORY_SIZE {
		return 0, &OutOfBoundsError{addr, MEMORY_SIZE}
	}

	if mc.Debugger != nil {
		mc.Debugger.Read(uint16(addr), mc)
	}

	return mc.State.Memory[addr], nil
}

func (mc *Machine) write(addr uint32, value byte) error {
	if addr >= MEMORY_SIZE {
		return &OutOfBoundsError{addr, MEMORY_SIZE}
	}

	mc.State.Memory[addr] = value

	if mc.Debugger != nil {
		mc.Debugger.Write(uint16(addr), mc)
	}

	return nil
}

// fetch reads the big-endian opcode at PC without notifying the debugger.
func (mc *Machine) fetch() (uint16, error) {
	addr := uint32(mc.State.Program)

	if addr+1 >= MEMORY_SIZE {
		return 0, &FetchError{
			mc.State.Program,
			&OutOfBoundsError{addr + 1, MEMORY_SIZE},
		}
	}

	return uint16(mc.State.Memory[addr])<<8 | uint16(mc.State.Memory[addr+1]), nil
}
