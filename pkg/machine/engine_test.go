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

package machine_test

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/lassandro/gochip8/pkg/machine"
)

func loadOpcodes(t *testing.T, mc *machine.Machine, opcodes ...uint16) {
	image := make([]byte, 0, len(opcodes)*2)

	for _, opcode := range opcodes {
		image = append(image, byte(opcode>>8), byte(opcode))
	}

	if err := mc.LoadProgram(image); err != nil {
		t.Fatal(err)
	}
}

func stepN(t *testing.T, mc *machine.Machine, count int) {
	for i := 0; i < count; i++ {
		if err := mc.Step(); err != nil {
			t.Fatalf("Unexpected error on step %d: %s", i, err)
		}
	}
}

func TestLoadProgram(t *testing.T) {
	var mc machine.Machine

	if err := mc.LoadProgram(make([]byte, machine.PROGRAM_LIMIT)); err != nil {
		t.Fatalf("Maximum sized image rejected: %s", err)
	}

	err := mc.LoadProgram(make([]byte, machine.PROGRAM_LIMIT+1))

	var tooLarge *machine.ImageTooLargeError
	if !errors.As(err, &tooLarge) {
		t.Fatalf(
			"Oversized image error mismatch"+
				"\nwant:*machine.ImageTooLargeError\nhave:%T",
			err,
		)
	}

	if tooLarge.Size != machine.PROGRAM_LIMIT+1 {
		t.Errorf(
			"Reported size mismatch\nwant:%d\nhave:%d",
			machine.PROGRAM_LIMIT+1,
			tooLarge.Size,
		)
	}
}

func TestLoadBin(t *testing.T) {
	var mc machine.Machine

	if err := mc.LoadBin(bytes.NewReader([]byte{0x6A, 0x2C})); err != nil {
		t.Fatal(err)
	}

	if mc.State.Program != machine.MEMSPACE_PROGRAM {
		t.Fatalf(
			"Program register mismatch\nwant:%#04x\nhave:%#04x",
			machine.MEMSPACE_PROGRAM,
			mc.State.Program,
		)
	}

	for i, glyph := range machine.FontSprites {
		for row, want := range glyph {
			addr := int(machine.MEMSPACE_FONT) + i*machine.FONT_HEIGHT + row
			if have := mc.State.Memory[addr]; have != want {
				t.Fatalf("Font mismatch [%#04x]\nwant:%#02x\nhave:%#02x", addr, want, have)
			}
		}
	}

	stepN(t, &mc, 1)

	if have := mc.State.Registers[0xA]; have != 0x2C {
		t.Fatalf("First opcode not executed\nwant:0x2c\nhave:%#02x", have)
	}

	oversized := bytes.NewReader(make([]byte, machine.PROGRAM_LIMIT+1))

	var tooLarge *machine.ImageTooLargeError
	if err := mc.LoadBin(oversized); !errors.As(err, &tooLarge) {
		t.Fatalf("Oversized reader accepted: %v", err)
	}
}

func TestReset(t *testing.T) {
	var mc machine.Machine
	loadOpcodes(t, &mc, 0x6101, 0x7101, 0x1202)

	stepN(t, &mc, 5)

	mc.Reset()

	if mc.State.Registers[1] != 0 || mc.State.Program != machine.MEMSPACE_PROGRAM {
		t.Fatalf("Reset left state behind: V1=%#02x PC=%#04x", mc.State.Registers[1], mc.State.Program)
	}

	if mc.State.Memory[machine.MEMSPACE_PROGRAM] != 0x61 {
		t.Fatalf("Reset discarded the program image")
	}
}

func TestReadWriteMem(t *testing.T) {
	var mc machine.Machine
	mc.State.Reset()

	if err := mc.WriteMem(machine.MEMORY_SIZE-1, 0x5A); err != nil {
		t.Fatal(err)
	}

	if value, err := mc.ReadMem(machine.MEMORY_SIZE - 1); err != nil || value != 0x5A {
		t.Fatalf("Read back mismatch\nwant:0x5a\nhave:%#02x (%v)", value, err)
	}

	var oob *machine.OutOfBoundsError

	if _, err := mc.ReadMem(machine.MEMORY_SIZE); !errors.As(err, &oob) {
		t.Fatalf("Out of bounds read accepted: %v", err)
	}

	if err := mc.WriteMem(machine.MEMORY_SIZE, 0); !errors.As(err, &oob) {
		t.Fatalf("Out of bounds write accepted: %v", err)
	}
}

func TestAddIndexOverflow(t *testing.T) {
	var mc machine.Machine
	loadOpcodes(t, &mc, 0x6004, 0xF01E, 0xF065)

	mc.State.Index = 0xFFFE
	stepN(t, &mc, 1)

	var oob *machine.OutOfBoundsError

	if err := mc.Step(); !errors.As(err, &oob) {
		t.Fatalf("I overflow accepted: %v", err)
	}

	if oob.Addr != 0x10002 {
		t.Errorf("Reported address mismatch\nwant:0x10002\nhave:%#04x", oob.Addr)
	}

	if mc.State.Index != 0xFFFE {
		t.Errorf("I modified on overflow\nwant:0xfffe\nhave:%#04x", mc.State.Index)
	}

	if mc.State.Program != 0x202 {
		t.Errorf("PC advanced past FX1E\nwant:0x0202\nhave:%#04x", mc.State.Program)
	}

	mc.State.Index = 0xFFFB
	stepN(t, &mc, 1)

	if mc.State.Index != 0xFFFF {
		t.Errorf("I mismatch\nwant:0xffff\nhave:%#04x", mc.State.Index)
	}
}

// nestedCalls lays out a chain of subroutines, each calling the next and
// returning, with depth calls in total before the innermost RET.
func nestedCalls(depth int) []uint16 {
	opcodes := make([]uint16, 0, depth*2+1)

	for i := 1; i <= depth; i++ {
		opcodes = append(opcodes, 0x2000|(machine.MEMSPACE_PROGRAM+uint16(i)*4), 0x00EE)
	}

	return append(opcodes, 0x00EE)
}

func TestStackDepth(t *testing.T) {
	var mc machine.Machine
	loadOpcodes(t, &mc, nestedCalls(machine.STACK_DEPTH)...)

	stepN(t, &mc, machine.STACK_DEPTH)

	if mc.State.StackSize != machine.STACK_DEPTH {
		t.Fatalf("Stack depth mismatch\nwant:%d\nhave:%d", machine.STACK_DEPTH, mc.State.StackSize)
	}

	stepN(t, &mc, machine.STACK_DEPTH)

	if mc.State.StackSize != 0 || mc.State.Program != machine.MEMSPACE_PROGRAM+2 {
		t.Fatalf("Stack not unwound: depth %d PC %#04x", mc.State.StackSize, mc.State.Program)
	}

	// One level deeper overflows
	loadOpcodes(t, &mc, nestedCalls(machine.STACK_DEPTH+1)...)

	stepN(t, &mc, machine.STACK_DEPTH)

	var overflow *machine.StackOverflowError
	if err := mc.Step(); !errors.As(err, &overflow) {
		t.Fatalf("Overflow error mismatch\nwant:*machine.StackOverflowError\nhave:%T", err)
	}

	if want := machine.MEMSPACE_PROGRAM + machine.STACK_DEPTH*4; mc.State.Program != want {
		t.Fatalf("Failed step moved PC\nwant:%#04x\nhave:%#04x", want, mc.State.Program)
	}
}

func TestStackUnderflow(t *testing.T) {
	var mc machine.Machine
	loadOpcodes(t, &mc, 0x00EE)

	var underflow *machine.StackUnderflowError
	if err := mc.Step(); !errors.As(err, &underflow) {
		t.Fatalf("Underflow error mismatch\nwant:*machine.StackUnderflowError\nhave:%T", err)
	}
}

func TestIllegal(t *testing.T) {
	opcodes := []uint16{
		0x0123, 0x00FF, 0x5121, 0x800F, 0x8128, 0x912F, 0xE1FF, 0xE000, 0xF1FF, 0xF000,
	}

	for _, opcode := range opcodes {
		var mc machine.Machine
		loadOpcodes(t, &mc, opcode)

		err := mc.Step()

		var illegal *machine.IllegalInstructionError
		if !errors.As(err, &illegal) {
			t.Errorf("%#04x: want *machine.IllegalInstructionError, have %T", opcode, err)
			continue
		}

		if illegal.Opcode != opcode || illegal.Addr != machine.MEMSPACE_PROGRAM {
			t.Errorf(
				"Illegal instruction details mismatch\nwant:%#04x@0x200\nhave:%#04x@%#04x",
				opcode, illegal.Opcode, illegal.Addr,
			)
		}

		mc.Skip()

		if mc.State.Program != machine.MEMSPACE_PROGRAM+2 {
			t.Errorf("Skip did not advance PC: %#04x", mc.State.Program)
		}
	}
}

func TestFetchOutOfBounds(t *testing.T) {
	var mc machine.Machine
	mc.State.Reset()
	mc.State.Program = machine.MEMORY_SIZE - 1

	err := mc.Step()

	var fetch *machine.FetchError
	var oob *machine.OutOfBoundsError

	if !errors.As(err, &fetch) || !errors.As(err, &oob) {
		t.Fatalf("Fetch error mismatch\nwant:*machine.FetchError(*machine.OutOfBoundsError)\nhave:%v", err)
	}

	mc.State.Program = machine.MEMORY_SIZE - 2
	if err := mc.Step(); errors.As(err, &fetch) {
		t.Fatalf("Last opcode in memory refused: %v", err)
	}
}

func TestMemoryOutOfBounds(t *testing.T) {
	tests := []struct {
		Name   string
		Opcode uint16
		Index  uint16
	}{
		{"LD [I], VX", 0xF155, machine.MEMORY_SIZE - 1},
		{"LD VX, [I]", 0xF165, machine.MEMORY_SIZE - 1},
		{"LD B, VX", 0xF033, machine.MEMORY_SIZE - 2},
		{"DRW", 0xD002, machine.MEMORY_SIZE - 1},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			var mc machine.Machine
			loadOpcodes(t, &mc, test.Opcode)
			mc.State.Index = test.Index
			mc.State.Registers[0] = 0x77
			mc.State.Registers[1] = 0x66

			var oob *machine.OutOfBoundsError
			if err := mc.Step(); !errors.As(err, &oob) {
				t.Fatalf("want *machine.OutOfBoundsError, have %v", err)
			}

			if mc.State.Memory[machine.MEMORY_SIZE-1] != 0 {
				t.Fatalf("Failed step wrote memory")
			}

			if mc.State.Program != machine.MEMSPACE_PROGRAM {
				t.Fatalf("Failed step moved PC: %#04x", mc.State.Program)
			}
		})
	}
}

func TestTimerTick(t *testing.T) {
	var mc machine.Machine
	mc.State.Reset()
	mc.State.Delay = 2
	mc.State.Sound = 1

	if !mc.SoundActive() {
		t.Fatal("Sound inactive with a running sound timer")
	}

	mc.Tick60Hz()

	if mc.State.Delay != 1 || mc.State.Sound != 0 || mc.SoundActive() {
		t.Fatalf("First tick mismatch: DT=%d ST=%d", mc.State.Delay, mc.State.Sound)
	}

	mc.Tick60Hz()
	mc.Tick60Hz()

	if mc.State.Delay != 0 || mc.State.Sound != 0 {
		t.Fatalf("Timers went below zero: DT=%d ST=%d", mc.State.Delay, mc.State.Sound)
	}
}

func TestKeyWait(t *testing.T) {
	var mc machine.Machine
	loadOpcodes(t, &mc, 0xF70A, 0x6001)

	for i := 0; i < 10; i++ {
		stepN(t, &mc, 1)

		if mc.State.Program != machine.MEMSPACE_PROGRAM {
			t.Fatalf("PC moved while waiting: %#04x", mc.State.Program)
		}
	}

	if reg, waiting := mc.Waiting(); !waiting || reg != 7 {
		t.Fatalf("Wait state mismatch\nwant:V7 waiting\nhave:V%X %t", reg, waiting)
	}

	mc.SetKey(0xC, true)
	stepN(t, &mc, 1)

	if mc.State.Registers[7] != 0xC {
		t.Fatalf("Pressed key not stored\nwant:0xc\nhave:%#x", mc.State.Registers[7])
	}

	if _, waiting := mc.Waiting(); waiting {
		t.Fatal("Still waiting after key press")
	}

	if mc.State.Program != machine.MEMSPACE_PROGRAM+2 {
		t.Fatalf("PC not past FX0A: %#04x", mc.State.Program)
	}

	stepN(t, &mc, 1)

	if mc.State.Registers[0] != 1 || mc.State.Program != machine.MEMSPACE_PROGRAM+4 {
		t.Fatalf("Execution did not resume: V0=%d PC=%#04x", mc.State.Registers[0], mc.State.Program)
	}
}

func TestKeyWaitTransientPress(t *testing.T) {
	var mc machine.Machine
	loadOpcodes(t, &mc, 0xF30A)

	stepN(t, &mc, 1)

	// Pressed and released between two steps still counts
	mc.SetKey(0x5, true)
	mc.SetKey(0x5, false)
	stepN(t, &mc, 1)

	if mc.State.Registers[3] != 0x5 {
		t.Fatalf("Transient press lost\nwant:0x5\nhave:%#x", mc.State.Registers[3])
	}
}

func TestKeyWaitSnapshot(t *testing.T) {
	var mc machine.Machine
	loadOpcodes(t, &mc, 0xF10A)

	var keys [machine.KEY_COUNT]bool
	keys[0x2] = true
	mc.SetKeys(keys)

	stepN(t, &mc, 1)

	// Held key pushed again is not a new press
	mc.SetKeys(keys)
	stepN(t, &mc, 1)

	if _, waiting := mc.Waiting(); !waiting {
		t.Fatal("Held key ended the wait")
	}

	keys[0x9] = true
	mc.SetKeys(keys)
	stepN(t, &mc, 1)

	if mc.State.Registers[1] != 0x9 {
		t.Fatalf("Newly pressed key not stored\nwant:0x9\nhave:%#x", mc.State.Registers[1])
	}
}

func TestRandomSeeded(t *testing.T) {
	var mc machine.Machine
	loadOpcodes(t, &mc, 0xC10F)
	mc.Rand = rand.New(rand.NewSource(42))

	want := byte(rand.New(rand.NewSource(42)).Intn(256)) & 0x0F

	stepN(t, &mc, 1)

	if have := mc.State.Registers[1]; have != want {
		t.Fatalf("Random value mismatch\nwant:%#02x\nhave:%#02x", want, have)
	}
}

func TestQuirkIndependence(t *testing.T) {
	// V1 = 0x03, V2 = 0x80, SHL V1, V2
	opcodes := []uint16{0x6103, 0x6280, 0x812E}

	var plain, quirked machine.Machine
	loadOpcodes(t, &plain, opcodes...)
	loadOpcodes(t, &quirked, opcodes...)
	quirked.Quirks.Shift = true

	stepN(t, &plain, 3)
	stepN(t, &quirked, 3)

	if plain.State.Registers[1] != 0x00 || plain.State.Registers[0xF] != 1 {
		t.Errorf("SHL from VY: V1=%#02x VF=%d", plain.State.Registers[1], plain.State.Registers[0xF])
	}

	if quirked.State.Registers[1] != 0x06 || quirked.State.Registers[0xF] != 0 {
		t.Errorf("SHL in place: V1=%#02x VF=%d", quirked.State.Registers[1], quirked.State.Registers[0xF])
	}
}
