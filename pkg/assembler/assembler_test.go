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

package assembler_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/lassandro/gochip8/pkg/assembler"
)

type testCase struct {
	Name     string
	Input    string
	Output   map[uint16]byte
	SymTable *assembler.SymTable
}

type failCase struct {
	Name  string
	Input string
	Error error
}

func testAssemblerSuccess(t *testing.T, test *testCase) {
	var symtarget *assembler.SymTable = nil

	if test.SymTable != nil {
		symtarget = assembler.NewSymTable("")
	}

	result, errs := assembler.AssembleSource(
		strings.NewReader(test.Input), symtarget,
	)

	if len(errs) > 0 {
		t.Fatal(errs[0])
	}

	size := 0
	for addr := range test.Output {
		if end := int(addr) - 0x200 + 1; end > size {
			size = end
		}
	}

	if len(result) != size {
		t.Fatalf(
			"Invalid image length\n"+
				"want:%d\n"+
				"have:%d",
			size,
			len(result),
		)
	}

	for i, have := range result {
		addr := uint16(i + 0x200)
		want, exists := test.Output[addr]

		if exists && have != want {
			t.Fatalf(
				"Encoding mismatch\n"+
					"want:%#02x (test.Output[%#04x])\n"+
					"have:%#02x",
				want,
				addr,
				have,
			)
		} else if !exists && have != 0 {
			t.Fatalf(
				"Unexpected byte\n"+
					"want:0x00\n"+
					"have:%#02x (result [%#04x])",
				have,
				addr,
			)
		}
	}

	if test.SymTable != nil {
		if !reflect.DeepEqual(test.SymTable.Symbols, symtarget.Symbols) {
			t.Fatalf(
				"Symtable symbols mismatch\nwant:%v\nhave:%v",
				test.SymTable.Symbols,
				symtarget.Symbols,
			)
		}

		if !reflect.DeepEqual(test.SymTable.Labels, symtarget.Labels) {
			t.Fatalf(
				"Symtable labels mismatch\nwant:%v\nhave:%v",
				test.SymTable.Labels,
				symtarget.Labels,
			)
		}
	}
}

func testAssemblerFail(t *testing.T, test *failCase) {
	_, errs := assembler.AssembleSource(strings.NewReader(test.Input), nil)

	if test.Error == nil {
		panic("Fail case missing error value")
	}

	if len(errs) == 0 {
		t.Fatalf(
			"%s produced error of incorrect type"+
				"\nwant:%T (test.Error)\nhave:<nil>",
			t.Name(),
			test.Error,
		)
	}

	if len(errs) > 1 {
		errTypes := make([]reflect.Type, 0, len(errs))
		for _, err := range errs {
			errTypes = append(errTypes, reflect.TypeOf(err))
		}

		t.Fatalf(
			"%s produced multiple errors:\n\twant:%T (test.Error)\n\thave:%v",
			t.Name(),
			test.Error,
			errTypes,
		)
	}

	if reflect.TypeOf(errs[0]) != reflect.TypeOf(test.Error) {
		t.Fatalf(
			"%s produced error of incorrect type"+
				"\nwant:%T (test.Error)\nhave:%T",
			t.Name(),
			test.Error,
			errs[0],
		)
	}
}

func testSuccess(t *testing.T, tests []testCase) {
	t.Run("Success", func(t *testing.T) {
		for _, test := range tests {
			t.Run(test.Name, func(t *testing.T) {
				testAssemblerSuccess(t, &test)
			})
		}
	})
}

func testFail(t *testing.T, tests []failCase) {
	t.Run("Fail", func(t *testing.T) {
		for _, test := range tests {
			t.Run(test.Name, func(t *testing.T) {
				testAssemblerFail(t, &test)
			})
		}
	})
}

func opcode(hi, lo byte) map[uint16]byte {
	return map[uint16]byte{0x200: hi, 0x201: lo}
}

func TestInstructions(t *testing.T) {
	testSuccess(t, []testCase{
		{Name: "CLS", Input: `CLS`, Output: opcode(0x00, 0xE0)},
		{Name: "RET", Input: `RET`, Output: opcode(0x00, 0xEE)},
		{Name: "SYS", Input: `SYS 0x123`, Output: opcode(0x01, 0x23)},
		{Name: "JP", Input: `JP 0x208`, Output: opcode(0x12, 0x08)},
		{Name: "JP V0", Input: `JP V0, 0x300`, Output: opcode(0xB3, 0x00)},
		{Name: "CALL", Input: `CALL 0x2F0`, Output: opcode(0x22, 0xF0)},
		{Name: "SE imm", Input: `SE V3, 0x42`, Output: opcode(0x33, 0x42)},
		{Name: "SE reg", Input: `SE V3, V4`, Output: opcode(0x53, 0x40)},
		{Name: "SNE imm", Input: `SNE VA, #7`, Output: opcode(0x4A, 0x07)},
		{Name: "SNE reg", Input: `SNE VA, VB`, Output: opcode(0x9A, 0xB0)},
		{Name: "LD imm", Input: `LD V5, 255`, Output: opcode(0x65, 0xFF)},
		{Name: "LD negative", Input: `LD V5, -1`, Output: opcode(0x65, 0xFF)},
		{Name: "LD reg", Input: `LD V5, V6`, Output: opcode(0x85, 0x60)},
		{Name: "LD I", Input: `LD I, 0x2A0`, Output: opcode(0xA2, 0xA0)},
		{Name: "LD DT", Input: `LD V2, DT`, Output: opcode(0xF2, 0x07)},
		{Name: "LD K", Input: `LD V2, K`, Output: opcode(0xF2, 0x0A)},
		{Name: "SET DT", Input: `LD DT, V2`, Output: opcode(0xF2, 0x15)},
		{Name: "SET ST", Input: `LD ST, V2`, Output: opcode(0xF2, 0x18)},
		{Name: "LD F", Input: `LD F, V2`, Output: opcode(0xF2, 0x29)},
		{Name: "LD B", Input: `LD B, V2`, Output: opcode(0xF2, 0x33)},
		{Name: "Store", Input: `LD [I], V2`, Output: opcode(0xF2, 0x55)},
		{Name: "Load", Input: `LD V2, [I]`, Output: opcode(0xF2, 0x65)},
		{Name: "ADD imm", Input: `ADD V1, 1`, Output: opcode(0x71, 0x01)},
		{Name: "ADD reg", Input: `ADD V1, V2`, Output: opcode(0x81, 0x24)},
		{Name: "ADD I", Input: `ADD I, V1`, Output: opcode(0xF1, 0x1E)},
		{Name: "OR", Input: `OR V1, V2`, Output: opcode(0x81, 0x21)},
		{Name: "AND", Input: `AND V1, V2`, Output: opcode(0x81, 0x22)},
		{Name: "XOR", Input: `XOR V1, V2`, Output: opcode(0x81, 0x23)},
		{Name: "SUB", Input: `SUB V1, V2`, Output: opcode(0x81, 0x25)},
		{Name: "SUBN", Input: `SUBN V1, V2`, Output: opcode(0x81, 0x27)},
		{Name: "SHR", Input: `SHR V1`, Output: opcode(0x81, 0x16)},
		{Name: "SHR source", Input: `SHR V1, V2`, Output: opcode(0x81, 0x26)},
		{Name: "SHL", Input: `SHL V1`, Output: opcode(0x81, 0x1E)},
		{Name: "SHL source", Input: `SHL V1, V2`, Output: opcode(0x81, 0x2E)},
		{Name: "RND", Input: `RND V0, 0x0F`, Output: opcode(0xC0, 0x0F)},
		{Name: "DRW", Input: `DRW V0, V1, 5`, Output: opcode(0xD0, 0x15)},
		{Name: "SKP", Input: `SKP V9`, Output: opcode(0xE9, 0x9E)},
		{Name: "SKNP", Input: `SKNP V9`, Output: opcode(0xE9, 0xA1)},
		{Name: "Lowercase", Input: `ld v0, 0x10`, Output: opcode(0x60, 0x10)},
	})

	testFail(t, []failCase{
		{
			Name:  "Missing Operand",
			Input: `LD V0`,
			Error: &assembler.InvalidNumArgumentsError{},
		},
		{
			Name:  "Extra Operand",
			Input: `CLS V0`,
			Error: &assembler.InvalidNumArgumentsError{},
		},
		{
			Name:  "Oversized Nibble",
			Input: `DRW V0, V1, 16`,
			Error: &assembler.OversizedLiteralError{},
		},
		{
			Name:  "Oversized Byte",
			Input: `LD V0, 256`,
			Error: &assembler.OversizedLiteralError{},
		},
		{
			Name:  "Undersized Byte",
			Input: `LD V0, -129`,
			Error: &assembler.OversizedLiteralError{},
		},
		{
			Name:  "Oversized Address",
			Input: `JP 0x1000`,
			Error: &assembler.OversizedLiteralError{},
		},
		{
			Name:  "Bad Register",
			Input: `LD V0, VG`,
			Error: &assembler.InvalidRegisterError{},
		},
		{
			Name:  "JP Offset Register",
			Input: `JP V1, 0x200`,
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  "String Operand",
			Input: `LD V0, "foo"`,
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  "Literal Destination",
			Input: `SE 5, V0`,
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  "Register Index",
			Input: `LD I, V0`,
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  "Unknown Mnemonic",
			Input: `MOV V0, V1`,
			Error: &assembler.UnknownIdentifierError{},
		},
		{
			Name:  "Bad Literal",
			Input: `LD V0, 0x1G`,
			Error: &assembler.InvalidLiteralError{},
		},
		{
			Name:  "Bad Character",
			Input: `LD V0, $`,
			Error: &assembler.UnexpectedCharacterError{},
		},
		{
			Name:  "Non-ASCII",
			Input: `LD V0, 1 é`,
			Error: &assembler.OversizedCharacterError{},
		},
	})
}

func TestLiterals(t *testing.T) {
	testSuccess(t, []testCase{
		{Name: "Decimal", Input: `LD V0, #42`, Output: opcode(0x60, 0x2A)},
		{Name: "Bare Decimal", Input: `LD V0, 42`, Output: opcode(0x60, 0x2A)},
		{Name: "Hex", Input: `LD V0, 0x2A`, Output: opcode(0x60, 0x2A)},
		{Name: "Upper Hex", Input: `LD V0, 0X2a`, Output: opcode(0x60, 0x2A)},
		{Name: "Signed Decimal", Input: `LD V0, #-2`, Output: opcode(0x60, 0xFE)},
	})
}

func TestDirectives(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:  ".DB",
			Input: `.DB 1, 2, 0xFF`,
			Output: map[uint16]byte{
				0x200: 0x01,
				0x201: 0x02,
				0x202: 0xFF,
			},
		},
		{
			Name:  ".DB String",
			Input: `.DB "HI", 0`,
			Output: map[uint16]byte{
				0x200: 'H',
				0x201: 'I',
				0x202: 0x00,
			},
		},
		{
			Name:  ".DB String Comment",
			Input: `.DB "A;B"`,
			Output: map[uint16]byte{
				0x200: 'A',
				0x201: ';',
				0x202: 'B',
			},
		},
		{
			Name:  ".DW",
			Input: `.DW 0x1234, 5`,
			Output: map[uint16]byte{
				0x200: 0x12,
				0x201: 0x34,
				0x202: 0x00,
				0x203: 0x05,
			},
		},
		{
			Name: ".ORG",
			Input: `
			.ORG 0x204
			CLS
			`,
			Output: map[uint16]byte{
				0x204: 0x00,
				0x205: 0xE0,
			},
		},
	})

	testFail(t, []failCase{
		{
			Name:  ".ORG Interpreter Space",
			Input: `.ORG 0x100`,
			Error: &assembler.InvalidOriginError{},
		},
		{
			Name:  ".ORG Past Memory",
			Input: `.ORG 0x1000`,
			Error: &assembler.InvalidOriginError{},
		},
		{
			Name:  ".ORG Label",
			Input: `.ORG start`,
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  ".ORG No Operand",
			Input: `.ORG`,
			Error: &assembler.InvalidNumArgumentsError{},
		},
		{
			Name:  ".DB No Operand",
			Input: `.DB`,
			Error: &assembler.InvalidNumArgumentsError{},
		},
		{
			Name:  ".DB Oversized",
			Input: `.DB 256`,
			Error: &assembler.OversizedLiteralError{},
		},
		{
			Name:  ".DB Register",
			Input: `.DB V0`,
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  ".DW String",
			Input: `.DW "x"`,
			Error: &assembler.InvalidOperandError{},
		},
		{
			Name:  ".DB Unterminated",
			Input: `.DB "abc`,
			Error: &assembler.InvalidStringError{},
		},
		{
			Name:  "Unknown Directive",
			Input: `.FOO 1`,
			Error: &assembler.UnknownIdentifierError{},
		},
	})
}

func TestComment(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:   "Trailing Comment",
			Input:  `CLS ; clear the screen`,
			Output: opcode(0x00, 0xE0),
		},
		{
			Name:   "Comment Only",
			Input:  `; nothing here`,
			Output: map[uint16]byte{},
		},
		{
			Name:   "Adjacent Comment",
			Input:  `LD V0, 1;x`,
			Output: opcode(0x60, 0x01),
		},
	})
}

func TestLabel(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "Backwards Label",
			Input: `
			loop:
				ADD V0, 1
				JP loop
			`,
			Output: map[uint16]byte{
				0x200: 0x70, 0x201: 0x01, // ADD V0, 1
				0x202: 0x12, 0x203: 0x00, // JP 0x200
			},
		},
		{
			Name: "Forwards Label",
			Input: `
				JP end
				CLS
			end: RET
			`,
			Output: map[uint16]byte{
				0x200: 0x12, 0x201: 0x04, // JP 0x204
				0x202: 0x00, 0x203: 0xE0, // CLS
				0x204: 0x00, 0x205: 0xEE, // RET
			},
		},
		{
			Name: "Bare Label",
			Input: `
			start
				JP start
			`,
			Output: opcode(0x12, 0x00),
		},
		{
			Name: "Word Label",
			Input: `
				.DW data
			data: .DB 7
			`,
			Output: map[uint16]byte{
				0x200: 0x02,
				0x201: 0x02,
				0x202: 0x07,
			},
		},
		{
			Name: "Sprite Label",
			Input: `
				LD I, sprite
			sprite .DB 0xF0
			`,
			Output: map[uint16]byte{
				0x200: 0xA2,
				0x201: 0x02,
				0x202: 0xF0,
			},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "Unknown Label",
			Input: `JP nowhere`,
			Error: &assembler.UnknownLabelError{},
		},
		{
			Name: "Redeclared Label",
			Input: `
			again:
			again:
			`,
			Error: &assembler.RedeclaredLabelError{},
		},
		{
			Name:  "Register Label",
			Input: `V0: CLS`,
			Error: &assembler.ReservedLabelError{},
		},
		{
			Name:  "Timer Label",
			Input: `DT:`,
			Error: &assembler.ReservedLabelError{},
		},
		{
			Name:  "Misplaced Colon",
			Input: `LD V0, 1:`,
			Error: &assembler.UnexpectedCharacterError{},
		},
	})
}

func TestProgramSize(t *testing.T) {
	testFail(t, []failCase{
		{
			Name: "Oversized Binary",
			Input: `
			.ORG 0xFFF
			CLS
			`,
			Error: &assembler.OversizedBinaryError{},
		},
		{
			Name: "Oversized Data",
			Input: `
			.ORG 0xFFE
			.DB 1, 2, 3
			`,
			Error: &assembler.OversizedBinaryError{},
		},
	})
}

func TestSymtable(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "Symtable",
			/*
				+ 11	.ORG 0x300
				+  7	start:
				+  4	CLS
				+ 15	data: .DB 1, 2
				+  3	RET
			*/
			Input: (".ORG 0x300\n" +
				"start:\n" +
				"CLS\n" +
				"data: .DB 1, 2\n" +
				"RET"),
			Output: map[uint16]byte{
				0x300: 0x00,
				0x301: 0xE0,
				0x302: 0x01,
				0x303: 0x02,
				0x304: 0x00,
				0x305: 0xEE,
			},
			SymTable: &assembler.SymTable{
				Symbols: map[uint16]int64{
					0x300: 18, // CLS
					0x302: 22, // .DB
					0x304: 37, // RET
				},
				Labels: map[uint16]string{
					0x300: "start",
					0x302: "data",
				},
			},
		},
	})
}
