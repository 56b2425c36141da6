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
	"time"

	"github.com/lassandro/gochip8/pkg/encoding"
)

// Skip moves PC past the current opcode. Hosts use it to step over an
// instruction Step refused to execute.
func (mc *Machine) Skip() {
	mc.State.Program += OPCODE_SIZE
}

func (mc *Machine) random() byte {
	if mc.Rand == nil {
		mc.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return byte(mc.Rand.Intn(256))
}

// span checks that count bytes starting at I are addressable.
func (mc *Machine) span(count uint32) error {
	if last := uint32(mc.State.Index) + count - 1; last >= MEMORY_SIZE {
		return &OutOfBoundsError{last, MEMORY_SIZE}
	}

	return nil
}

func boolFlag(value bool) uint8 {
	if value {
		return 1
	}

	return 0
}

// Step executes a single instruction. A failing step leaves PC on the
// offending opcode.
func (mc *Machine) Step() error {
	state := &mc.State

	// A pending FX0A completes on the first key pressed since it began
	if state.Waiting {
		if key, ok := state.Keypad.takeEdge(); ok {
			state.Registers[state.WaitTarget] = key
			state.Waiting = false
			state.Program += OPCODE_SIZE
		}

		if mc.Debugger != nil {
			mc.Debugger.Step(mc)
		}

		return nil
	}

	instruction, err := mc.fetch()

	if err != nil {
		return err
	}

	x := encoding.X(instruction)
	y := encoding.Y(instruction)
	n := encoding.N(instruction)
	nn := encoding.NN(instruction)
	nnn := encoding.NNN(instruction)

	illegal := &IllegalInstructionError{instruction, state.Program}
	next := state.Program + OPCODE_SIZE

	switch encoding.Group(instruction) {
	// CLS  |0000    |0000   |1110   |0000   | Clear display
	// RET  |0000    |0000   |1110   |1110   | Return from subroutine
	// SYS  |0000    |nnn                    | Machine code call (unsupported)
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_SYS:
		switch instruction {
		case SYS_CLS:
			state.Display.Clear()

		case SYS_RET:
			addr, err := mc.pop()

			if err != nil {
				return err
			}

			next = addr

		default:
			return illegal
		}

	// JP   |0001    |nnn                    | Jump
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_JP:
		next = nnn

	// CALL |0010    |nnn                    | Call subroutine
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_CALL:
		if err := mc.push(next); err != nil {
			return err
		}

		next = nnn

	// SE   |0011    |x      |nn             | Skip if VX == nn
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_SEI:
		if state.Registers[x] == nn {
			next += OPCODE_SIZE
		}

	// SNE  |0100    |x      |nn             | Skip if VX != nn
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_SNEI:
		if state.Registers[x] != nn {
			next += OPCODE_SIZE
		}

	// SE   |0101    |x      |y      |0000   | Skip if VX == VY
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_SER:
		if n != 0 {
			return illegal
		}

		if state.Registers[x] == state.Registers[y] {
			next += OPCODE_SIZE
		}

	// LD   |0110    |x      |nn             | VX = nn
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_LDI:
		state.Registers[x] = nn

	// ADD  |0111    |x      |nn             | VX += nn, VF untouched
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_ADDI:
		state.Registers[x] += nn

	// LD   |1000    |x      |y      |0000   | VX = VY
	// OR   |1000    |x      |y      |0001   | VX |= VY
	// AND  |1000    |x      |y      |0010   | VX &= VY
	// XOR  |1000    |x      |y      |0011   | VX ^= VY
	// ADD  |1000    |x      |y      |0100   | VX += VY, VF = carry
	// SUB  |1000    |x      |y      |0101   | VX -= VY, VF = !borrow
	// SHR  |1000    |x      |y      |0110   | VX = VY >> 1, VF = lsb
	// SUBN |1000    |x      |y      |0111   | VX = VY - VX, VF = !borrow
	// SHL  |1000    |x      |y      |1110   | VX = VY << 1, VF = msb
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_ALU:
		if !mc.alu(uint16(n), x, y) {
			return illegal
		}

	// SNE  |1001    |x      |y      |0000   | Skip if VX != VY
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_SNER:
		if n != 0 {
			return illegal
		}

		if state.Registers[x] != state.Registers[y] {
			next += OPCODE_SIZE
		}

	// LD   |1010    |nnn                    | I = nnn
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_LDA:
		state.Index = nnn

	// JP   |1011    |nnn                    | Jump to nnn + V0 (or VX)
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_JPV:
		if mc.Quirks.Jump {
			next = nnn + uint16(state.Registers[x])
		} else {
			next = nnn + uint16(state.Registers[0])
		}

	// RND  |1100    |x      |nn             | VX = random & nn
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_RND:
		state.Registers[x] = mc.random() & nn

	// DRW  |1101    |x      |y      |n      | Draw n rows from I at (VX, VY)
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_DRW:
		if mc.Quirks.VBlank && !state.VBlank {
			next = state.Program
			break
		}

		sprite := make([]byte, n)

		if n > 0 {
			if err := mc.span(uint32(n)); err != nil {
				return err
			}
		}

		for i := range sprite {
			sprite[i], _ = mc.read(uint32(state.Index) + uint32(i))
		}

		collision := state.Display.DrawSprite(
			int(state.Registers[x]),
			int(state.Registers[y]),
			sprite,
			mc.Quirks.Clip,
		)

		state.Registers[REG_FLAG] = boolFlag(collision)
		state.VBlank = false

	// SKP  |1110    |x      |10011110       | Skip if key VX is down
	// SKNP |1110    |x      |10100001       | Skip if key VX is up
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_KEY:
		pressed := state.Keypad.IsPressed(state.Registers[x] & 0xF)

		switch uint16(nn) {
		case KEY_SKP:
			if pressed {
				next += OPCODE_SIZE
			}

		case KEY_SKNP:
			if !pressed {
				next += OPCODE_SIZE
			}

		default:
			return illegal
		}

	// LD   |1111    |x      |00000111       | VX = DT
	// LD   |1111    |x      |00001010       | VX = next key press
	// LD   |1111    |x      |00010101       | DT = VX
	// LD   |1111    |x      |00011000       | ST = VX
	// ADD  |1111    |x      |00011110       | I += VX
	// LD   |1111    |x      |00101001       | I = font glyph VX
	// LD   |1111    |x      |00110011       | [I..I+2] = BCD of VX
	// LD   |1111    |x      |01010101       | [I..I+x] = V0..VX
	// LD   |1111    |x      |01100101       | V0..VX = [I..I+x]
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case OP_MISC:
		switch uint16(nn) {
		case MISC_LD_DT:
			state.Registers[x] = state.Delay

		case MISC_LD_K:
			state.Waiting = true
			state.WaitTarget = x
			state.Keypad.Edges = 0
			next = state.Program

		case MISC_SET_DT:
			state.Delay = state.Registers[x]

		case MISC_SET_ST:
			state.Sound = state.Registers[x]

		case MISC_ADD_I:
			sum := uint32(state.Index) + uint32(state.Registers[x])

			if sum > 0xFFFF {
				return &OutOfBoundsError{sum, 0x10000}
			}

			state.Index = uint16(sum)

		case MISC_LD_F:
			state.Index = MEMSPACE_FONT +
				uint16(state.Registers[x]&0xF)*FONT_HEIGHT

		case MISC_LD_B:
			if err := mc.span(3); err != nil {
				return err
			}

			value := state.Registers[x]
			addr := uint32(state.Index)

			mc.write(addr, value/100)
			mc.write(addr+1, value/10%10)
			mc.write(addr+2, value%10)

		case MISC_STORE:
			if err := mc.span(uint32(x) + 1); err != nil {
				return err
			}

			for i := uint32(0); i <= uint32(x); i++ {
				mc.write(uint32(state.Index)+i, state.Registers[i])
			}

			if mc.Quirks.LoadStore {
				state.Index += uint16(x) + 1
			}

		case MISC_LOAD:
			if err := mc.span(uint32(x) + 1); err != nil {
				return err
			}

			for i := uint32(0); i <= uint32(x); i++ {
				state.Registers[i], _ = mc.read(uint32(state.Index) + i)
			}

			if mc.Quirks.LoadStore {
				state.Index += uint16(x) + 1
			}

		default:
			return illegal
		}
	}

	state.Program = next

	if mc.Debugger != nil {
		mc.Debugger.Step(mc)
	}

	return nil
}

// alu executes the 8XYN register operations. The flag is always written
// after the destination so VF holds the flag even when X is F.
func (mc *Machine) alu(op uint16, x, y uint8) bool {
	regs := &mc.State.Registers
	vx, vy := regs[x], regs[y]

	switch op {
	case ALU_LD:
		regs[x] = vy

	case ALU_OR, ALU_AND, ALU_XOR:
		switch op {
		case ALU_OR:
			regs[x] = vx | vy
		case ALU_AND:
			regs[x] = vx & vy
		case ALU_XOR:
			regs[x] = vx ^ vy
		}

		if !mc.Quirks.Logic {
			regs[REG_FLAG] = 0
		}

	case ALU_ADD:
		sum := uint16(vx) + uint16(vy)
		regs[x] = uint8(sum)
		regs[REG_FLAG] = uint8(sum >> 8)

	case ALU_SUB:
		regs[x] = vx - vy
		regs[REG_FLAG] = boolFlag(vx >= vy)

	case ALU_SUBN:
		regs[x] = vy - vx
		regs[REG_FLAG] = boolFlag(vy >= vx)

	case ALU_SHR, ALU_SHL:
		src := vy
		if mc.Quirks.Shift {
			src = vx
		}

		if op == ALU_SHR {
			regs[x] = src >> 1
			regs[REG_FLAG] = src & 0x1
		} else {
			regs[x] = src << 1
			regs[REG_FLAG] = src >> 7
		}

	default:
		return false
	}

	return true
}
