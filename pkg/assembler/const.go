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

const (
	TOKEN_NONE TokenType = iota
	TOKEN_IDENT
	TOKEN_DIRECTIVE
	TOKEN_STRING
	TOKEN_LITERAL
)

const (
	OPERAND_NONE OperandType = iota
	OPERAND_REGISTER
	OPERAND_NUMBER
	OPERAND_LABEL
	OPERAND_STRING
	OPERAND_I        // I
	OPERAND_INDIRECT // [I]
	OPERAND_DT
	OPERAND_ST
	OPERAND_K
	OPERAND_F
	OPERAND_B

	// Slot-only kinds, matched against the parsed kinds above
	OPERAND_ADDR   // 12 bit number or label
	OPERAND_BYTE   // 8 bit number
	OPERAND_NIBBLE // 4 bit number
	OPERAND_V0     // register 0 only
)

const (
	DIRECTIVE_INVALID DirectiveType = iota
	DIRECTIVE_ORG
	DIRECTIVE_DB
	DIRECTIVE_DW
)

const (
	LIMIT_ADDR   = 0x0FFF
	LIMIT_BYTE   = 0xFF
	LIMIT_NIBBLE = 0xF
	LIMIT_WORD   = 0xFFFF
)
