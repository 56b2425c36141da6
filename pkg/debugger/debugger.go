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

package debugger

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/lassandro/gochip8/pkg/assembler"
	"github.com/lassandro/gochip8/pkg/machine"
)

func (dbg *Debugger) out() io.Writer {
	if dbg.Out == nil {
		return os.Stdout
	}

	return dbg.Out
}

func (dbg *Debugger) stop(mc *machine.Machine) {
	if dbg.HandleBreak != nil {
		dbg.HandleBreak(dbg, mc)
	}
}

// Step runs after every instruction, with PC on the next one to execute.
func (dbg *Debugger) Step(mc *machine.Machine) {
	if dbg.Script != nil {
		halt, err := dbg.Script.OnStep()

		if err != nil {
			fmt.Fprintf(dbg.out(), "Script detached: %s\n", err)
			dbg.Script.Close()
			dbg.Script = nil
		} else if halt {
			dbg.stop(mc)
			return
		}
	}

	if dbg.Break.Load() {
		dbg.stop(mc)
		return
	}

	for _, breakpoint := range dbg.Breakpoints {
		if mc.State.Program == breakpoint.Addr {
			dbg.stop(mc)
			break
		}
	}
}

func (dbg *Debugger) Read(addr uint16, mc *machine.Machine) {
	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == WriteWatch {
			continue
		}

		if addr == watchpoint.Addr && dbg.HandleRead != nil {
			dbg.HandleRead(addr, dbg, mc)
			break
		}
	}
}

func (dbg *Debugger) Write(addr uint16, mc *machine.Machine) {
	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == ReadWatch {
			continue
		}

		if addr == watchpoint.Addr && dbg.HandleWrite != nil {
			dbg.HandleWrite(addr, dbg, mc)
			break
		}
	}
}

// AddBreakpoint reports false if addr already had a breakpoint.
func (dbg *Debugger) AddBreakpoint(addr uint16) bool {
	for _, breakpoint := range dbg.Breakpoints {
		if breakpoint.Addr == addr {
			return false
		}
	}

	dbg.Breakpoints = append(dbg.Breakpoints, Breakpoint{addr})

	return true
}

// RemoveBreakpoint removes the i-th breakpoint, without preserving order.
func (dbg *Debugger) RemoveBreakpoint(i int) bool {
	if i < 0 || i >= len(dbg.Breakpoints) {
		return false
	}

	dbg.Breakpoints[i] = dbg.Breakpoints[len(dbg.Breakpoints)-1]
	dbg.Breakpoints = dbg.Breakpoints[:len(dbg.Breakpoints)-1]

	return true
}

func (dbg *Debugger) AddWatchpoint(addr uint16, wtype WatchpointType) bool {
	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Addr == addr && watchpoint.Type == wtype {
			return false
		}
	}

	dbg.Watchpoints = append(dbg.Watchpoints, Watchpoint{addr, wtype})

	return true
}

func (dbg *Debugger) RemoveWatchpoint(i int) bool {
	if i < 0 || i >= len(dbg.Watchpoints) {
		return false
	}

	dbg.Watchpoints[i] = dbg.Watchpoints[len(dbg.Watchpoints)-1]
	dbg.Watchpoints = dbg.Watchpoints[:len(dbg.Watchpoints)-1]

	return true
}

// LookupLabel resolves a label name from the symbol table.
func (dbg *Debugger) LookupLabel(name string) (uint16, bool) {
	if dbg.SymTable == nil {
		return 0, false
	}

	for addr, label := range dbg.SymTable.Labels {
		if label == name {
			return addr, true
		}
	}

	return 0, false
}

func (dbg *Debugger) labels() map[uint16]string {
	if dbg.SymTable == nil {
		return nil
	}

	return dbg.SymTable.Labels
}

// PrintSource lists count source lines from addr when a source file and
// symbol table are loaded, and falls back to disassembling memory.
func (dbg *Debugger) PrintSource(mc *machine.MachineState, addr uint16, count uint16) {
	out := dbg.out()

	if dbg.Source == nil || dbg.SymTable == nil {
		dbg.PrintDisassembly(mc, addr, count)
		return
	}

	offset, exists := dbg.SymTable.Symbols[addr]

	if !exists {
		fmt.Fprintf(out, "No instruction found at %#04x\n", addr)
		return
	}

	if _, err := dbg.Source.Seek(offset, io.SeekStart); err != nil {
		fmt.Fprintln(out, err)
		return
	}

	lines := make(map[int64]uint16, len(dbg.SymTable.Symbols))
	for lineaddr, linebyte := range dbg.SymTable.Symbols {
		lines[linebyte] = lineaddr
	}

	scanner := bufio.NewScanner(dbg.Source)
	scanner.Split(bufio.ScanLines)

	for i := uint16(0); i < count; i++ {
		if !scanner.Scan() {
			break
		}

		line := scanner.Text()

		if lineaddr, found := lines[offset]; found {
			marker := " "
			if lineaddr == mc.Program {
				marker = ">"
			}

			fmt.Fprintf(out, "%s\033[1m[%#04x]\033[0m ", marker, lineaddr)
		} else {
			fmt.Fprint(out, " \033[1;30m~~~~~~~~\033[0m ")
		}

		fmt.Fprintln(out, line)

		offset += int64(len(line) + 1)
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintln(out, err)
	}
}

// PrintDisassembly decodes count opcodes starting at addr.
func (dbg *Debugger) PrintDisassembly(mc *machine.MachineState, addr uint16, count uint16) {
	out := dbg.out()
	labels := dbg.labels()

	for i := uint16(0); i < count; i++ {
		if int(addr)+1 >= machine.MEMORY_SIZE {
			break
		}

		opcode := uint16(mc.Memory[addr])<<8 | uint16(mc.Memory[addr+1])

		if label, exists := labels[addr]; exists {
			fmt.Fprintf(out, "\033[1;30m%s:\033[0m\n", label)
		}

		marker := " "
		if addr == mc.Program {
			marker = ">"
		}

		fmt.Fprintf(
			out,
			"%s\033[1m[%#04x]\033[0m %04X  %s\n",
			marker,
			addr,
			opcode,
			assembler.DisassembleLabeled(opcode, labels),
		)

		addr += machine.OPCODE_SIZE
	}
}

func (dbg *Debugger) PrintMem(mc *machine.MachineState, addr, count uint16) {
	out := dbg.out()
	end := int(addr) + int(count)

	if end > machine.MEMORY_SIZE {
		end = machine.MEMORY_SIZE
	}

	for i := int(addr); i < end; i++ {
		if i == int(addr) {
			fmt.Fprintf(out, "\033[1m[%#04x]\033[0m ", i)
		} else if (i-int(addr))%8 == 0 {
			fmt.Fprintln(out)
			fmt.Fprintf(out, "\033[1m[%#04x]\033[0m ", i)
		}

		result := mc.Memory[i]

		if result == 0 {
			fmt.Fprintf(out, "\033[1;30m%#02x\033[0m ", result)
		} else {
			fmt.Fprintf(out, "%#02x ", result)
		}
	}

	fmt.Fprintln(out)
}
