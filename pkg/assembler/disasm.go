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

package assembler

import (
	"fmt"

	"github.com/lassandro/gochip8/pkg/encoding"
	"github.com/lassandro/gochip8/pkg/machine"
)

// Disassemble renders an opcode in the syntax accepted by AssembleSource.
// Opcodes with no mnemonic are rendered as a .DW directive.
func Disassemble(opcode uint16) string {
	return DisassembleLabeled(opcode, nil)
}

// DisassembleLabeled is Disassemble with address operands replaced by their
// label where one is known.
func DisassembleLabeled(opcode uint16, labels map[uint16]string) string {
	x := encoding.X(opcode)
	y := encoding.Y(opcode)
	nn := encoding.NN(opcode)

	target := func() string {
		if label, exists := labels[encoding.NNN(opcode)]; exists {
			return label
		}

		return fmt.Sprintf("0x%03X", encoding.NNN(opcode))
	}

	switch encoding.Group(opcode) {
	case machine.OP_SYS:
		switch opcode {
		case machine.SYS_CLS:
			return "CLS"
		case machine.SYS_RET:
			return "RET"
		}

		return "SYS " + target()

	case machine.OP_JP:
		return "JP " + target()

	case machine.OP_CALL:
		return "CALL " + target()

	case machine.OP_SEI:
		return fmt.Sprintf("SE V%X, 0x%02X", x, nn)

	case machine.OP_SNEI:
		return fmt.Sprintf("SNE V%X, 0x%02X", x, nn)

	case machine.OP_SER:
		if encoding.N(opcode) == 0 {
			return fmt.Sprintf("SE V%X, V%X", x, y)
		}

	case machine.OP_LDI:
		return fmt.Sprintf("LD V%X, 0x%02X", x, nn)

	case machine.OP_ADDI:
		return fmt.Sprintf("ADD V%X, 0x%02X", x, nn)

	case machine.OP_ALU:
		var mnemonic string

		switch uint16(encoding.N(opcode)) {
		case machine.ALU_LD:
			mnemonic = "LD"
		case machine.ALU_OR:
			mnemonic = "OR"
		case machine.ALU_AND:
			mnemonic = "AND"
		case machine.ALU_XOR:
			mnemonic = "XOR"
		case machine.ALU_ADD:
			mnemonic = "ADD"
		case machine.ALU_SUB:
			mnemonic = "SUB"
		case machine.ALU_SUBN:
			mnemonic = "SUBN"
		case machine.ALU_SHR:
			mnemonic = "SHR"
		case machine.ALU_SHL:
			mnemonic = "SHL"
		}

		if mnemonic == "" {
			break
		}

		if (mnemonic == "SHR" || mnemonic == "SHL") && x == y {
			return fmt.Sprintf("%s V%X", mnemonic, x)
		}

		return fmt.Sprintf("%s V%X, V%X", mnemonic, x, y)

	case machine.OP_SNER:
		if encoding.N(opcode) == 0 {
			return fmt.Sprintf("SNE V%X, V%X", x, y)
		}

	case machine.OP_LDA:
		return "LD I, " + target()

	case machine.OP_JPV:
		return "JP V0, " + target()

	case machine.OP_RND:
		return fmt.Sprintf("RND V%X, 0x%02X", x, nn)

	case machine.OP_DRW:
		return fmt.Sprintf("DRW V%X, V%X, %d", x, y, encoding.N(opcode))

	case machine.OP_KEY:
		switch uint16(nn) {
		case machine.KEY_SKP:
			return fmt.Sprintf("SKP V%X", x)
		case machine.KEY_SKNP:
			return fmt.Sprintf("SKNP V%X", x)
		}

	case machine.OP_MISC:
		switch uint16(nn) {
		case machine.MISC_LD_DT:
			return fmt.Sprintf("LD V%X, DT", x)
		case machine.MISC_LD_K:
			return fmt.Sprintf("LD V%X, K", x)
		case machine.MISC_SET_DT:
			return fmt.Sprintf("LD DT, V%X", x)
		case machine.MISC_SET_ST:
			return fmt.Sprintf("LD ST, V%X", x)
		case machine.MISC_ADD_I:
			return fmt.Sprintf("ADD I, V%X", x)
		case machine.MISC_LD_F:
			return fmt.Sprintf("LD F, V%X", x)
		case machine.MISC_LD_B:
			return fmt.Sprintf("LD B, V%X", x)
		case machine.MISC_STORE:
			return fmt.Sprintf("LD [I], V%X", x)
		case machine.MISC_LOAD:
			return fmt.Sprintf("LD V%X, [I]", x)
		}
	}

	return fmt.Sprintf(".DW 0x%04X", opcode)
}
