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

package encoding_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lassandro/gochip8/pkg/encoding"
)

func TestFields(t *testing.T) {
	const opcode uint16 = 0xD12F

	assert.Equal(t, uint16(0xD), encoding.Group(opcode))
	assert.Equal(t, uint8(0x1), encoding.X(opcode))
	assert.Equal(t, uint8(0x2), encoding.Y(opcode))
	assert.Equal(t, uint8(0xF), encoding.N(opcode))
	assert.Equal(t, uint8(0x2F), encoding.NN(opcode))
	assert.Equal(t, uint16(0x12F), encoding.NNN(opcode))
}

func TestPack(t *testing.T) {
	assert.Equal(t, uint16(0x1ABC), encoding.Pack(0x1, 0xABC))
	assert.Equal(t, uint16(0x1ABC), encoding.Pack(0x11, 0xFABC))
	assert.Equal(t, uint16(0x8126), encoding.PackXYN(0x8, 0x1, 0x2, 0x6))
	assert.Equal(t, uint16(0x6A2A), encoding.PackXNN(0x6, 0xA, 0x2A))
}

func TestDecodeHex(t *testing.T) {
	for input, want := range map[string]uint16{
		"0x200": 0x200,
		"x200":  0x200,
		"0XFFF": 0xFFF,
	} {
		have, err := encoding.DecodeHex(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, have, input)
	}

	for _, input := range []string{"200", "1x20", "0xZZ", "0x10000"} {
		_, err := encoding.DecodeHex(input)
		assert.Error(t, err, input)
	}
}

func TestDecodeNumber(t *testing.T) {
	for input, want := range map[string]uint16{
		"#42":  42,
		"42":   42,
		"0x2A": 0x2A,
		"-1":   0xFFFF,
	} {
		have, err := encoding.DecodeNumber(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, have, input)
	}

	_, err := encoding.DecodeNumber("forty")
	assert.Error(t, err)
}

func TestDecodeByte(t *testing.T) {
	for input, want := range map[string]uint8{
		"0xFF": 0xFF,
		"#255": 255,
		"-1":   0xFF,
		"-128": 0x80,
	} {
		have, err := encoding.DecodeByte(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, have, input)
	}

	for _, input := range []string{"0x100", "256", "-129"} {
		_, err := encoding.DecodeByte(input)
		assert.Error(t, err, input)
	}
}
