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

package encoding

import (
	"errors"
	"strconv"
	"strings"
)

// CHIP-8 opcode fields:
//
//	<-- msb                                   lsb -->
//	+-----------+-----------+-----------+-----------+
//	|   group   |     x     |     y     |     n     |
//	+-----------+-----------+-----------+-----------+
//	            |---             nnn             ---|
//	                        |---        nn       ---|

func Group(opcode uint16) uint16 {
	return opcode >> 12
}

func X(opcode uint16) uint8 {
	return uint8((opcode >> 8) & 0xF)
}

func Y(opcode uint16) uint8 {
	return uint8((opcode >> 4) & 0xF)
}

func N(opcode uint16) uint8 {
	return uint8(opcode & 0xF)
}

func NN(opcode uint16) uint8 {
	return uint8(opcode & 0xFF)
}

func NNN(opcode uint16) uint16 {
	return opcode & 0xFFF
}

// Pack assembles an opcode from its group and a 12 bit operand.
func Pack(group uint16, operand uint16) uint16 {
	return (group&0xF)<<12 | operand&0xFFF
}

// PackXYN assembles an opcode from its group and three nibble operands.
func PackXYN(group uint16, x, y, n uint8) uint16 {
	return Pack(group, uint16(x&0xF)<<8|uint16(y&0xF)<<4|uint16(n&0xF))
}

// PackXNN assembles an opcode from its group, a register and a byte.
func PackXNN(group uint16, x uint8, nn uint8) uint16 {
	return Pack(group, uint16(x&0xF)<<8|uint16(nn))
}

func DecodeHex(s string) (uint16, error) {
	if i := strings.IndexAny(s, "xX"); i == 0 {
		s = "0" + s
	} else if i == -1 || i != 1 {
		return 0, errors.New("Invalid hex string")
	}

	result, err := strconv.ParseUint(s, 0, 16)

	if err != nil {
		return 0, err
	}

	return uint16(result), nil
}

func DecodeInt(s string) (int16, error) {
	if i := strings.Index(s, "#"); i == 0 {
		s = s[1:]
	}

	result, err := strconv.ParseInt(s, 10, 16)

	if err != nil {
		return 0, err
	}

	return int16(result), nil
}

// DecodeNumber accepts either a hex literal (0x2A, x2A) or a decimal one
// (#42, 42).
func DecodeNumber(s string) (uint16, error) {
	if strings.ContainsAny(s, "xX") {
		return DecodeHex(s)
	}

	value, err := DecodeInt(s)

	if err != nil {
		return 0, err
	}

	return uint16(value), nil
}

// DecodeByte decodes a number that must fit in eight bits.
func DecodeByte(s string) (uint8, error) {
	if strings.ContainsAny(s, "xX") {
		value, err := DecodeHex(s)

		if err != nil {
			return 0, err
		}

		if value > 0xFF {
			return 0, errors.New("Value exceeds byte range")
		}

		return uint8(value), nil
	}

	value, err := DecodeInt(s)

	if err != nil {
		return 0, err
	}

	if value < -128 || value > 0xFF {
		return 0, errors.New("Value exceeds byte range")
	}

	return uint8(value), nil
}
