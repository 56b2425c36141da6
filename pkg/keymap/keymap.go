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

// Package keymap maps host keyboards onto the 4x4 CHIP-8 keypad.
//
//	Keyboard                   CHIP-8
//	+---+---+---+---+          +---+---+---+---+
//	| 1 | 2 | 3 | 4 |          | 1 | 2 | 3 | C |
//	+---+---+---+---+          +---+---+---+---+
//	| Q | W | E | R |          | 4 | 5 | 6 | D |
//	+---+---+---+---+    =>    +---+---+---+---+
//	| A | S | D | F |          | 7 | 8 | 9 | E |
//	+---+---+---+---+          +---+---+---+---+
//	| Z | X | C | V |          | A | 0 | B | F |
//	+---+---+---+---+          +---+---+---+---+
package keymap

import (
	"strings"
	"unicode"
)

var Layout = [4][4]uint8{
	{0x1, 0x2, 0x3, 0xC},
	{0x4, 0x5, 0x6, 0xD},
	{0x7, 0x8, 0x9, 0xE},
	{0xA, 0x0, 0xB, 0xF},
}

var Keyboard = [4]string{"1234", "qwer", "asdf", "zxcv"}

// FromRune returns the keypad index bound to a keyboard character.
func FromRune(r rune) (uint8, bool) {
	r = unicode.ToLower(r)

	for row, keys := range Keyboard {
		if col := strings.IndexRune(keys, r); col >= 0 {
			return Layout[row][col], true
		}
	}

	return 0, false
}

// ToRune returns the keyboard character bound to a keypad index.
func ToRune(key uint8) (rune, bool) {
	for row, keys := range Layout {
		for col, value := range keys {
			if value == key {
				return rune(Keyboard[row][col]), true
			}
		}
	}

	return 0, false
}

// Describe renders the keypad as it appears on the keyboard, one row per line.
func Describe() string {
	var builder strings.Builder

	for row, keys := range Layout {
		for col, key := range keys {
			if col > 0 {
				builder.WriteByte(' ')
			}

			builder.WriteString(strings.ToUpper(string(Keyboard[row][col])))
			builder.WriteByte('=')
			builder.WriteString(strings.ToUpper(string("0123456789abcdef"[key])))
		}

		builder.WriteByte('\n')
	}

	return builder.String()
}
