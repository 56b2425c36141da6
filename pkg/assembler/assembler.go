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
	"bufio"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/lassandro/gochip8/pkg/encoding"
	"github.com/lassandro/gochip8/pkg/machine"
)

type operand struct {
	Kind  OperandType
	Value int
	Text  string
	Token *Token
}

type encoder func(ops []operand) uint16

type form struct {
	Operands []OperandType
	Encode   encoder
}

func slots(encode encoder, kinds ...OperandType) form {
	return form{kinds, encode}
}

func fixed(opcode uint16) encoder {
	return func([]operand) uint16 {
		return opcode
	}
}

// Address in the last operand
func withAddr(group uint16) encoder {
	return func(ops []operand) uint16 {
		return encoding.Pack(group, uint16(ops[len(ops)-1].Value))
	}
}

func withXNN(group uint16) encoder {
	return func(ops []operand) uint16 {
		return encoding.PackXNN(
			group, uint8(ops[0].Value), uint8(ops[1].Value),
		)
	}
}

func withXY(group uint16, n uint16) encoder {
	return func(ops []operand) uint16 {
		return encoding.PackXYN(
			group, uint8(ops[0].Value), uint8(ops[1].Value), uint8(n),
		)
	}
}

func withXYN(group uint16) encoder {
	return func(ops []operand) uint16 {
		return encoding.PackXYN(
			group,
			uint8(ops[0].Value),
			uint8(ops[1].Value),
			uint8(ops[2].Value),
		)
	}
}

// Register in operand slot, fixed low byte
func withX(group uint16, nn uint16, slot int) encoder {
	return func(ops []operand) uint16 {
		return encoding.PackXNN(group, uint8(ops[slot].Value), uint8(nn))
	}
}

// A shift without a source register shifts Vx in place
func withShift(n uint16) encoder {
	return func(ops []operand) uint16 {
		y := ops[0].Value

		if len(ops) > 1 {
			y = ops[1].Value
		}

		return encoding.PackXYN(
			machine.OP_ALU, uint8(ops[0].Value), uint8(y), uint8(n),
		)
	}
}

const (
	vx  = OPERAND_REGISTER
	nnn = OPERAND_ADDR
	nn  = OPERAND_BYTE
	n   = OPERAND_NIBBLE
)

var instructions = map[string][]form{
	// CLS  |0000|0000|1110|0000| Clear display
	"CLS": {slots(fixed(machine.SYS_CLS))},

	// RET  |0000|0000|1110|1110| Return from subroutine
	"RET": {slots(fixed(machine.SYS_RET))},

	// SYS  |0000|nnn           | Machine routine (unsupported at runtime)
	"SYS": {slots(withAddr(machine.OP_SYS), nnn)},

	// JP   |0001|nnn           | Jump
	// JP   |1011|nnn           | Jump offset by V0
	"JP": {
		slots(withAddr(machine.OP_JP), nnn),
		slots(withAddr(machine.OP_JPV), OPERAND_V0, nnn),
	},

	// CALL |0010|nnn           | Call subroutine
	"CALL": {slots(withAddr(machine.OP_CALL), nnn)},

	// SE   |0011|x   |nn       | Skip if Vx == nn
	// SE   |0101|x   |y   |0000| Skip if Vx == Vy
	"SE": {
		slots(withXNN(machine.OP_SEI), vx, nn),
		slots(withXY(machine.OP_SER, 0), vx, vx),
	},

	// SNE  |0100|x   |nn       | Skip if Vx != nn
	// SNE  |1001|x   |y   |0000| Skip if Vx != Vy
	"SNE": {
		slots(withXNN(machine.OP_SNEI), vx, nn),
		slots(withXY(machine.OP_SNER, 0), vx, vx),
	},

	// LD   |0110|x   |nn       | Vx = nn
	// LD   |1000|x   |y   |0000| Vx = Vy
	// LD   |1010|nnn           | I = nnn
	// LD   |1111|x   |0000|0111| Vx = DT
	// LD   |1111|x   |0000|1010| Vx = next key press
	// LD   |1111|x   |0001|0101| DT = Vx
	// LD   |1111|x   |0001|1000| ST = Vx
	// LD   |1111|x   |0010|1001| I = glyph address of Vx
	// LD   |1111|x   |0011|0011| BCD of Vx at [I]
	// LD   |1111|x   |0101|0101| Store V0..Vx at [I]
	// LD   |1111|x   |0110|0101| Load V0..Vx from [I]
	"LD": {
		slots(withXNN(machine.OP_LDI), vx, nn),
		slots(withXY(machine.OP_ALU, machine.ALU_LD), vx, vx),
		slots(withAddr(machine.OP_LDA), OPERAND_I, nnn),
		slots(withX(machine.OP_MISC, machine.MISC_LD_DT, 0), vx, OPERAND_DT),
		slots(withX(machine.OP_MISC, machine.MISC_LD_K, 0), vx, OPERAND_K),
		slots(withX(machine.OP_MISC, machine.MISC_SET_DT, 1), OPERAND_DT, vx),
		slots(withX(machine.OP_MISC, machine.MISC_SET_ST, 1), OPERAND_ST, vx),
		slots(withX(machine.OP_MISC, machine.MISC_LD_F, 1), OPERAND_F, vx),
		slots(withX(machine.OP_MISC, machine.MISC_LD_B, 1), OPERAND_B, vx),
		slots(withX(machine.OP_MISC, machine.MISC_STORE, 1), OPERAND_INDIRECT, vx),
		slots(withX(machine.OP_MISC, machine.MISC_LOAD, 0), vx, OPERAND_INDIRECT),
	},

	// ADD  |0111|x   |nn       | Vx += nn, no flag
	// ADD  |1000|x   |y   |0100| Vx += Vy, VF = carry
	// ADD  |1111|x   |0001|1110| I += Vx
	"ADD": {
		slots(withXNN(machine.OP_ADDI), vx, nn),
		slots(withXY(machine.OP_ALU, machine.ALU_ADD), vx, vx),
		slots(withX(machine.OP_MISC, machine.MISC_ADD_I, 1), OPERAND_I, vx),
	},

	// OR   |1000|x   |y   |0001|
	// AND  |1000|x   |y   |0010|
	// XOR  |1000|x   |y   |0011|
	// SUB  |1000|x   |y   |0101| Vx -= Vy, VF = no borrow
	// SUBN |1000|x   |y   |0111| Vx = Vy - Vx, VF = no borrow
	"OR":   {slots(withXY(machine.OP_ALU, machine.ALU_OR), vx, vx)},
	"AND":  {slots(withXY(machine.OP_ALU, machine.ALU_AND), vx, vx)},
	"XOR":  {slots(withXY(machine.OP_ALU, machine.ALU_XOR), vx, vx)},
	"SUB":  {slots(withXY(machine.OP_ALU, machine.ALU_SUB), vx, vx)},
	"SUBN": {slots(withXY(machine.OP_ALU, machine.ALU_SUBN), vx, vx)},

	// SHR  |1000|x   |y   |0110| Shift right, VF = shifted out bit
	// SHL  |1000|x   |y   |1110| Shift left, VF = shifted out bit
	"SHR": {
		slots(withShift(machine.ALU_SHR), vx),
		slots(withShift(machine.ALU_SHR), vx, vx),
	},
	"SHL": {
		slots(withShift(machine.ALU_SHL), vx),
		slots(withShift(machine.ALU_SHL), vx, vx),
	},

	// RND  |1100|x   |nn       | Vx = random & nn
	"RND": {slots(withXNN(machine.OP_RND), vx, nn)},

	// DRW  |1101|x   |y   |n   | Draw n rows from [I] at (Vx, Vy)
	"DRW": {slots(withXYN(machine.OP_DRW), vx, vx, n)},

	// SKP  |1110|x   |1001|1110| Skip if key Vx down
	// SKNP |1110|x   |1010|0001| Skip if key Vx up
	"SKP":  {slots(withX(machine.OP_KEY, machine.KEY_SKP, 0), vx)},
	"SKNP": {slots(withX(machine.OP_KEY, machine.KEY_SKNP, 0), vx)},
}

func isMnemonic(ident string) bool {
	_, exists := instructions[strings.ToUpper(ident)]
	return exists
}

func parseDirective(ident string) DirectiveType {
	if strings.EqualFold(ident, ".ORG") {
		return DIRECTIVE_ORG
	} else if strings.EqualFold(ident, ".DB") {
		return DIRECTIVE_DB
	} else if strings.EqualFold(ident, ".DW") {
		return DIRECTIVE_DW
	}

	return DIRECTIVE_INVALID
}

func parseNumber(s string) (int, error) {
	if strings.ContainsAny(s, "xX") {
		value, err := encoding.DecodeHex(s)
		return int(value), err
	}

	value, err := encoding.DecodeInt(s)
	return int(value), err
}

func parseOperand(token *Token) (operand, error) {
	result := operand{Token: token}

	switch token.Type {
	case TOKEN_LITERAL:
		value, err := parseNumber(token.Value)

		if err != nil {
			return result, &InvalidLiteralError{token.Position}
		}

		result.Kind = OPERAND_NUMBER
		result.Value = value

	case TOKEN_STRING:
		text, err := strconv.Unquote(token.Value)

		if err != nil {
			return result, &InvalidStringError{token.Position}
		}

		result.Kind = OPERAND_STRING
		result.Text = text

	case TOKEN_IDENT:
		ident := strings.ToUpper(token.Value)

		switch ident {
		case "I":
			result.Kind = OPERAND_I
		case "[I]":
			result.Kind = OPERAND_INDIRECT
		case "DT":
			result.Kind = OPERAND_DT
		case "ST":
			result.Kind = OPERAND_ST
		case "K":
			result.Kind = OPERAND_K
		case "F":
			result.Kind = OPERAND_F
		case "B":
			result.Kind = OPERAND_B
		default:
			if len(ident) == 2 && ident[0] == 'V' {
				index, err := strconv.ParseUint(ident[1:], 16, 8)

				if err != nil {
					return result, &InvalidRegisterError{token.Position}
				}

				result.Kind = OPERAND_REGISTER
				result.Value = int(index)
			} else {
				result.Kind = OPERAND_LABEL
				result.Text = token.Value
			}
		}

	default:
		return result, &InvalidOperandError{
			token.Position,
			[]OperandType{OPERAND_NUMBER, OPERAND_LABEL},
			OPERAND_NONE,
		}
	}

	return result, nil
}

func slotAccepts(slot OperandType, op *operand) bool {
	switch slot {
	case OPERAND_ADDR:
		return op.Kind == OPERAND_NUMBER || op.Kind == OPERAND_LABEL
	case OPERAND_BYTE, OPERAND_NIBBLE:
		return op.Kind == OPERAND_NUMBER
	case OPERAND_V0:
		return op.Kind == OPERAND_REGISTER && op.Value == 0
	}

	return op.Kind == slot
}

// checkRange validates a numeric operand for its slot, folding negative
// bytes into their two's complement form.
func checkRange(slot OperandType, op *operand) error {
	var lower, upper int

	switch slot {
	case OPERAND_ADDR:
		lower, upper = 0, LIMIT_ADDR
	case OPERAND_BYTE:
		lower, upper = -0x80, LIMIT_BYTE
	case OPERAND_NIBBLE:
		lower, upper = 0, LIMIT_NIBBLE
	default:
		return nil
	}

	if op.Value < lower || op.Value > upper {
		return &OversizedLiteralError{op.Token.Position, upper, op.Value}
	}

	op.Value &= upper

	return nil
}

type labelRef struct {
	Label    string
	Addr     uint16
	Word     bool
	Position Cursor
}

type assembly struct {
	memory   [machine.MEMORY_SIZE]byte
	program  int
	high     int
	emitted  int
	overflow bool

	labels    map[string]uint16
	labelRefs []labelRef

	symtable *SymTable
	cursor   Cursor
	errs     []error
}

func (asm *assembly) emit(data ...byte) {
	for _, b := range data {
		if asm.program >= machine.MEMORY_SIZE {
			asm.overflow = true
			return
		}

		asm.memory[asm.program] = b
		asm.program++
		asm.emitted++

		if asm.program > asm.high {
			asm.high = asm.program
		}
	}
}

func (asm *assembly) fail(err error) {
	asm.errs = append(asm.errs, err)
}

func (asm *assembly) reference(label string, word bool, position Cursor) {
	asm.labelRefs = append(
		asm.labelRefs,
		labelRef{label, uint16(asm.program), word, position},
	)
}

func (asm *assembly) declareLabel(token *Token) {
	if op, err := parseOperand(token); err != nil || op.Kind != OPERAND_LABEL {
		asm.fail(&ReservedLabelError{token.Position, token.Value})
		return
	}

	if _, exists := asm.labels[token.Value]; exists {
		asm.fail(&RedeclaredLabelError{token.Position, token.Value})
		return
	}

	asm.labels[token.Value] = uint16(asm.program)
}

func (asm *assembly) assembleLine(line string) {
	tokens, errs := tokenizeLine(line, asm.cursor)

	// Lines with syntax errors are not assembled
	if len(errs) > 0 {
		asm.errs = append(asm.errs, errs...)
		return
	}

	if len(tokens) == 0 {
		return
	}

	start := 0

	if tokens[0].Type == TOKEN_IDENT && !isMnemonic(tokens[0].Value) {
		if len(tokens) > 1 &&
			tokens[1].Type != TOKEN_DIRECTIVE &&
			!isMnemonic(tokens[1].Value) {
			asm.fail(&UnknownIdentifierError{tokens[0].Position, tokens[0].Value})
			return
		}

		asm.declareLabel(&tokens[0])
		start = 1
	}

	// No need to assemble label-only statements
	if start == len(tokens) {
		return
	}

	keyword := &tokens[start]
	operands := make([]operand, 0, len(tokens)-start-1)
	failed := false

	for i := start + 1; i < len(tokens); i++ {
		op, err := parseOperand(&tokens[i])

		if err != nil {
			asm.fail(err)
			failed = true
			continue
		}

		operands = append(operands, op)
	}

	if failed {
		return
	}

	addr := asm.program
	emitted := asm.emitted

	if keyword.Type == TOKEN_DIRECTIVE {
		asm.assembleDirective(keyword, operands)
	} else if forms, exists := instructions[strings.ToUpper(keyword.Value)]; exists {
		asm.assembleInstruction(keyword, forms, operands)
	} else {
		asm.fail(&UnknownIdentifierError{keyword.Position, keyword.Value})
	}

	if asm.symtable != nil && asm.emitted > emitted {
		asm.symtable.Symbols[uint16(addr)] = asm.cursor.LineByte
	}
}

func (asm *assembly) assembleInstruction(
	keyword *Token, forms []form, operands []operand,
) {
	var candidates []form

	for _, f := range forms {
		if len(f.Operands) == len(operands) {
			candidates = append(candidates, f)
		}
	}

	if len(candidates) == 0 {
		asm.fail(&InvalidNumArgumentsError{
			keyword.Position, len(forms[0].Operands), len(operands),
		})

		return
	}

	// Pick the first form accepting every operand, remembering how far the
	// closest forms got for the error report otherwise.
	var match *form
	var best int
	var prefixes = make([]int, len(candidates))

	for i := range candidates {
		for prefixes[i] < len(operands) &&
			slotAccepts(candidates[i].Operands[prefixes[i]], &operands[prefixes[i]]) {
			prefixes[i]++
		}

		if prefixes[i] == len(operands) {
			match = &candidates[i]
			break
		}

		if prefixes[i] > best {
			best = prefixes[i]
		}
	}

	if match == nil {
		var required []OperandType

	next:
		for i := range candidates {
			if prefixes[i] != best {
				continue
			}

			for _, kind := range required {
				if kind == candidates[i].Operands[best] {
					continue next
				}
			}

			required = append(required, candidates[i].Operands[best])
		}

		asm.fail(&InvalidOperandError{
			operands[best].Token.Position, required, operands[best].Kind,
		})

		return
	}

	for i := range operands {
		op := &operands[i]

		if op.Kind == OPERAND_LABEL {
			asm.reference(op.Text, false, op.Token.Position)
			op.Value = 0
			continue
		}

		if op.Kind != OPERAND_NUMBER {
			continue
		}

		if err := checkRange(match.Operands[i], op); err != nil {
			asm.fail(err)
			return
		}
	}

	opcode := match.Encode(operands)
	asm.emit(byte(opcode>>8), byte(opcode))
}

func (asm *assembly) assembleDirective(keyword *Token, operands []operand) {
	directive := parseDirective(keyword.Value)

	if directive == DIRECTIVE_INVALID {
		asm.fail(&UnknownIdentifierError{keyword.Position, keyword.Value})
		return
	}

	if directive == DIRECTIVE_ORG {
		if count := len(operands); count != 1 {
			asm.fail(&InvalidNumArgumentsError{keyword.Position, 1, count})
			return
		}
	} else if len(operands) == 0 {
		asm.fail(&InvalidNumArgumentsError{keyword.Position, 1, 0})
		return
	}

	switch directive {
	// .ORG addr
	case DIRECTIVE_ORG:
		op := operands[0]

		if op.Kind != OPERAND_NUMBER {
			asm.fail(&InvalidOperandError{
				op.Token.Position, []OperandType{OPERAND_NUMBER}, op.Kind,
			})

			return
		}

		if op.Value < int(machine.MEMSPACE_PROGRAM) || op.Value > LIMIT_ADDR {
			asm.fail(&InvalidOriginError{op.Token.Position, op.Value})
			return
		}

		asm.program = op.Value

	// .DB byte|"string", ...
	case DIRECTIVE_DB:
		for i := range operands {
			op := &operands[i]

			switch op.Kind {
			case OPERAND_NUMBER:
				if err := checkRange(OPERAND_BYTE, op); err != nil {
					asm.fail(err)
					return
				}

				asm.emit(byte(op.Value))

			case OPERAND_STRING:
				asm.emit([]byte(op.Text)...)

			default:
				asm.fail(&InvalidOperandError{
					op.Token.Position,
					[]OperandType{OPERAND_NUMBER, OPERAND_STRING},
					op.Kind,
				})

				return
			}
		}

	// .DW word|label, ...
	case DIRECTIVE_DW:
		for _, op := range operands {
			switch op.Kind {
			case OPERAND_NUMBER:
				if op.Value < -0x8000 || op.Value > LIMIT_WORD {
					asm.fail(&OversizedLiteralError{
						op.Token.Position, LIMIT_WORD, op.Value,
					})

					return
				}

				asm.emit(byte(op.Value>>8), byte(op.Value))

			case OPERAND_LABEL:
				asm.reference(op.Text, true, op.Token.Position)
				asm.emit(0, 0)

			default:
				asm.fail(&InvalidOperandError{
					op.Token.Position,
					[]OperandType{OPERAND_NUMBER, OPERAND_LABEL},
					op.Kind,
				})

				return
			}
		}
	}
}

// resolve patches every label reference once all labels are known.
func (asm *assembly) resolve() {
	for _, ref := range asm.labelRefs {
		addr, exists := asm.labels[ref.Label]

		if !exists {
			asm.fail(&UnknownLabelError{ref.Position, ref.Label})
			continue
		}

		if int(ref.Addr)+1 >= machine.MEMORY_SIZE {
			continue
		}

		if ref.Word {
			asm.memory[ref.Addr] = byte(addr >> 8)
		} else {
			asm.memory[ref.Addr] |= byte(addr>>8) & 0x0F
		}

		asm.memory[ref.Addr+1] = byte(addr)
	}

	if asm.symtable != nil {
		for label, addr := range asm.labels {
			asm.symtable.Labels[addr] = label
		}
	}
}

// AssembleSource assembles CHIP-8 source into a program image to be loaded
// at 0x200. When symtable is non-nil it is filled with the address of every
// emitting source line and every label.
func AssembleSource(input io.Reader, symtable *SymTable) (result []byte, errs []error) {
	asm := assembly{
		program:  int(machine.MEMSPACE_PROGRAM),
		high:     int(machine.MEMSPACE_PROGRAM),
		labels:   make(map[string]uint16),
		symtable: symtable,
		cursor:   Cursor{Line: 1},
		errs:     make([]error, 0),
	}

	scanner := bufio.NewScanner(input)

	for scanner.Scan() {
		line := scanner.Text()

		asm.cursor.Size = int64(len(line))
		asm.cursor.Byte = asm.cursor.LineByte
		asm.assembleLine(line)

		if asm.overflow {
			asm.fail(&OversizedBinaryError{machine.PROGRAM_LIMIT})
			return nil, asm.errs
		}

		asm.cursor.Line++
		asm.cursor.LineByte += int64(len(line) + 1)
	}

	if err := scanner.Err(); err != nil {
		asm.fail(err)
	}

	asm.resolve()

	result = make([]byte, asm.high-int(machine.MEMSPACE_PROGRAM))
	copy(result, asm.memory[machine.MEMSPACE_PROGRAM:asm.high])

	return result, asm.errs
}

// tokenizeLine splits a source line into tokens, reporting syntax errors.
// Comments start at ';', operands are separated by ',' or whitespace and a
// trailing ':' ends a label.
func tokenizeLine(line string, cursor Cursor) (tokens []Token, errs []error) {
	var builder strings.Builder
	var tokenStart int
	var tokenType = TOKEN_NONE

	flushToken := func() {
		if builder.Len() > 0 {
			tokens = append(tokens, Token{
				Type: tokenType,
				Position: Cursor{
					Line:     cursor.Line,
					Column:   tokenStart,
					Byte:     cursor.LineByte + int64(tokenStart-1),
					Size:     int64(builder.Len()),
					LineByte: cursor.LineByte,
				},
				Value: builder.String(),
			})

			builder.Reset()
		}

		tokenType = TOKEN_NONE
	}

	builder.Grow(len(line))

	for column, char := range line {
		cursor.Column = column + 1

		var flush bool = false
		var skip bool = false

		if tokenType == TOKEN_NONE {
			tokenStart = cursor.Column
		}

		switch {
		// String Contents
		case tokenType == TOKEN_STRING && char != '"':
			if char > unicode.MaxASCII {
				errs = append(errs, &OversizedCharacterError{cursor})
			}

		// Whitespace
		case unicode.IsSpace(char):
			if tokenType == TOKEN_NONE {
				continue
			}

			flush = true

		// Comments
		case char == ';':
			flush = true
			skip = true

		// Operand Separator
		case char == ',':
			flush = true

		// Label Terminator
		case char == ':':
			if tokenType != TOKEN_IDENT {
				errs = append(errs, &UnexpectedCharacterError{cursor, char})
			}

			flush = true

		// Assembler Directives
		case char == '.':
			if tokenType == TOKEN_NONE {
				tokenType = TOKEN_DIRECTIVE
			} else {
				errs = append(errs, &UnexpectedCharacterError{cursor, char})
			}

		// Base 10 Literal (i.e. #42)
		case char == '#':
			if tokenType == TOKEN_NONE {
				tokenType = TOKEN_LITERAL
			} else {
				errs = append(errs, &UnexpectedCharacterError{cursor, char})
			}

		// String Literal
		case char == '"':
			if tokenType == TOKEN_NONE {
				tokenType = TOKEN_STRING
			} else if tokenType == TOKEN_STRING {
				builder.WriteRune(char)
				flush = true
			} else {
				errs = append(errs, &UnexpectedCharacterError{cursor, char})
			}

		// Numeric Literal (i.e. 42, 0x2A)
		case unicode.IsDigit(char):
			if tokenType == TOKEN_NONE {
				tokenType = TOKEN_LITERAL
			}

		// Numeric Sign
		case char == '-':
			if tokenType == TOKEN_NONE {
				tokenType = TOKEN_LITERAL
			} else if tokenType != TOKEN_LITERAL {
				errs = append(errs, &UnexpectedCharacterError{cursor, char})
			}

		// Indirect Operand (i.e. [I])
		case char == '[' || char == ']':
			if tokenType == TOKEN_NONE && char == '[' {
				tokenType = TOKEN_IDENT
			} else if tokenType != TOKEN_IDENT {
				errs = append(errs, &UnexpectedCharacterError{cursor, char})
			}

		// Identifier
		case char == '_' || unicode.IsLetter(char):
			if char > unicode.MaxASCII {
				errs = append(errs, &OversizedCharacterError{cursor})
			}

			if tokenType == TOKEN_NONE {
				tokenType = TOKEN_IDENT
			}

		default:
			if char > unicode.MaxASCII {
				errs = append(errs, &OversizedCharacterError{cursor})
			} else {
				errs = append(errs, &UnexpectedCharacterError{cursor, char})
			}
		}

		if flush {
			flushToken()
		} else if !skip {
			builder.WriteRune(char)
		}

		if skip {
			break
		}
	}

	if tokenType == TOKEN_STRING {
		errs = append(errs, &InvalidStringError{cursor})
	} else {
		flushToken()
	}

	return tokens, errs
}
