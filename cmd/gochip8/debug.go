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

package main

import (
	"fmt"
	"log"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/lassandro/gochip8/pkg/debugger"
	"github.com/lassandro/gochip8/pkg/encoding"
	"github.com/lassandro/gochip8/pkg/keymap"
	"github.com/lassandro/gochip8/pkg/machine"
)

var lastcmd []string

// resolveAddr accepts a hex address or a label.
func resolveAddr(dbg *debugger.Debugger, arg string) (uint16, error) {
	if addr, ok := dbg.LookupLabel(arg); ok {
		return addr, nil
	}

	addr, err := encoding.DecodeHex(arg)

	if err != nil {
		return 0, err
	}

	if addr >= machine.MEMORY_SIZE {
		return 0, &machine.OutOfBoundsError{
			Addr: uint32(addr), Limit: machine.MEMORY_SIZE,
		}
	}

	return addr, nil
}

func debugBreak(dbg *debugger.Debugger, args []string) {
	const usage = "break [add|list|remove|clear]"

	if len(args) == 0 {
		args = append(args, "l")
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "a", "add":
		const usage = "break add [0x###|label]"

		if len(args) != 1 {
			log.Println(usage)
			return
		}

		addr, err := resolveAddr(dbg, args[0])

		if err != nil {
			log.Println(err)
			return
		}

		if dbg.AddBreakpoint(addr) {
			fmt.Printf("Breakpoint added [%#04x]\n", addr)
		}

	case "l", "ls", "list":
		const usage = "break list"

		if len(args) != 0 {
			log.Println(usage)
			return
		}

		var fmtstring string
		{
			digits := math.Floor(math.Log10(float64(len(dbg.Breakpoints) + 1)))
			fmtstring = fmt.Sprintf("#%%0%dd: %%#04x\n", int64(digits)+1)
		}

		for i, breakpoint := range dbg.Breakpoints {
			fmt.Printf(fmtstring, i, breakpoint.Addr)
		}

	case "r", "rm", "remove":
		const usage = "break remove [#]"

		if len(args) != 1 {
			log.Println(usage)
			return
		}

		i, err := strconv.Atoi(args[0])

		if err != nil {
			log.Println(err)
			return
		}

		if !dbg.RemoveBreakpoint(i) {
			log.Println("Invalid breakpoint number")
			return
		}

		fmt.Printf("Breakpoint removed [%d]\n", i)

	case "clear":
		dbg.Breakpoints = nil
		fmt.Println("Breakpoints reset")

	default:
		log.Printf("break: '%s' is not a valid command\n%s\n", cmd, usage)
	}
}

func debugWatch(dbg *debugger.Debugger, args []string) {
	const usage = "watch [add|list|rm|clear]"

	if len(args) == 0 {
		args = append(args, "l")
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "a", "add":
		const usage = "watch add [0x###|label] [read|write|readwrite]"

		if len(args) != 2 {
			log.Println(usage)
			return
		}

		addr, err := resolveAddr(dbg, args[0])

		if err != nil {
			log.Println(err)
			return
		}

		var wtype debugger.WatchpointType

		switch args[1] {
		case "r", "read":
			wtype = debugger.ReadWatch
		case "w", "write":
			wtype = debugger.WriteWatch
		case "rw", "readwrite":
			wtype = debugger.ReadWriteWatch
		default:
			log.Println(usage)
			return
		}

		if dbg.AddWatchpoint(addr, wtype) {
			fmt.Printf("Watchpoint added [%#04x] (%s)\n", addr, wtype)
		}

	case "l", "ls", "list":
		const usage = "watch list"

		if len(args) != 0 {
			log.Println(usage)
			return
		}

		var fmtstring string
		{
			digits := math.Floor(math.Log10(float64(len(dbg.Watchpoints) + 1)))
			fmtstring = fmt.Sprintf("#%%0%dd: %%#04x %%s\n", int64(digits)+1)
		}

		for i, watchpoint := range dbg.Watchpoints {
			fmt.Printf(fmtstring, i, watchpoint.Addr, watchpoint.Type)
		}

	case "r", "rm", "remove":
		const usage = "watch rm [#]"

		if len(args) != 1 {
			log.Println(usage)
			return
		}

		i, err := strconv.Atoi(args[0])

		if err != nil {
			log.Println(err)
			return
		}

		if !dbg.RemoveWatchpoint(i) {
			log.Println("Invalid watchpoint number")
			return
		}

		fmt.Printf("Watchpoint removed [%d]\n", i)

	case "clear":
		dbg.Watchpoints = nil
		fmt.Println("Watchpoints reset")

	default:
		log.Printf("watch: '%s' is not a valid command\n%s\n", cmd, usage)
	}
}

func debugReg(mc *machine.MachineState, args []string) {
	const usage = "register [V0-VF|I|PC|DT|ST] [value]"

	if len(args) > 0 {
		if len(args) != 2 {
			log.Println(usage)
			return
		}

		value, err := encoding.DecodeNumber(args[1])

		if err != nil {
			log.Println(err)
			return
		}

		name := strings.ToUpper(args[0])

		switch {
		case name == "I":
			mc.Index = value
		case name == "PC":
			mc.Program = value
		case name == "DT":
			mc.Delay = uint8(value)
		case name == "ST":
			mc.Sound = uint8(value)
		case len(name) == 2 && name[0] == 'V':
			x, err := strconv.ParseUint(name[1:], 16, 8)

			if err != nil {
				log.Println("Invalid register")
				return
			}

			mc.Registers[x] = uint8(value)
		default:
			log.Println("Invalid register")
			return
		}

		fmt.Printf("\033[1m%s:\033[0m %#04x\n", name, value)
		return
	}

	for i, register := range mc.Registers {
		fmt.Printf("\033[1mV%X:\033[0m %#02x\t", i, register)
		if i%8 == 7 {
			fmt.Println()
		}
	}

	fmt.Printf(
		"\033[1mPC:\033[0m %#04x\t\033[1mI:\033[0m %#04x\t"+
			"\033[1mSP:\033[0m %d\t\033[1mDT:\033[0m %d\t\033[1mST:\033[0m %d\n",
		mc.Program,
		mc.Index,
		mc.StackSize,
		mc.Delay,
		mc.Sound,
	)

	if mc.Waiting {
		fmt.Printf("Waiting for key into V%X\n", mc.WaitTarget)
	}
}

func debugSource(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "source [0x###|label] [#]"

	if len(args) > 2 {
		log.Println(usage)
		return
	}

	var addr uint16 = mc.Program
	var size uint16 = 8
	var err error = nil

	if len(args) > 0 {
		addr, err = resolveAddr(dbg, args[0])

		if err != nil {
			var value int64
			value, err = strconv.ParseInt(args[0], 10, 16)

			if err != nil {
				log.Println(err)
				return
			}

			addr = mc.Program
			size = uint16(value)
		}
	}

	if len(args) > 1 {
		var value int64
		value, err = strconv.ParseInt(args[1], 10, 16)

		if err != nil {
			log.Println(err)
			return
		}

		size = uint16(value)
	}

	dbg.PrintSource(mc, addr, size)
}

func debugLabels(dbg *debugger.Debugger, args []string) {
	const usage = "labels"

	if len(args) > 0 {
		fmt.Println(usage)
		return
	}

	if dbg.SymTable == nil {
		fmt.Println("No symbol table loaded")
		return
	}

	keys := make([]uint16, 0, len(dbg.SymTable.Labels))
	for addr := range dbg.SymTable.Labels {
		keys = append(keys, addr)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, addr := range keys {
		fmt.Printf(
			"\033[1m[%#04x]\033[0m %s\n", addr, dbg.SymTable.Labels[addr],
		)
	}
}

func debugJump(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "jump [0x###|label]"

	if len(args) != 1 {
		fmt.Println(usage)
		return
	}

	addr, err := resolveAddr(dbg, args[0])

	if err != nil {
		fmt.Printf("Unable to find '%s'\n", args[0])
		return
	}

	mc.Program = addr
	fmt.Printf("\033[1mPC:\033[0m %#04x\n", addr)
}

func debugMemory(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "memory [0x###|label|#] [#]"

	if len(args) > 2 {
		log.Println(usage)
		return
	}

	var size uint16 = 1
	var addr uint16 = mc.Index
	var err error

	if len(args) > 0 {
		addr, err = resolveAddr(dbg, args[0])

		if err != nil {
			var value int64
			value, err = strconv.ParseInt(args[0], 10, 16)

			if err != nil {
				log.Println(err)
				return
			}

			addr = mc.Index
			size = uint16(value)
		}
	}

	if len(args) > 1 {
		var value int64
		value, err = strconv.ParseInt(args[1], 10, 16)

		if err != nil {
			log.Println(err)
			return
		}

		size = uint16(value)
	}

	dbg.PrintMem(mc, addr, size)
}

func debugSet(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "set [0x###|label] [value]"

	if len(args) != 2 {
		log.Println(usage)
		return
	}

	addr, err := resolveAddr(dbg, args[0])

	if err != nil {
		log.Println(err)
		return
	}

	value, err := encoding.DecodeByte(args[1])

	if err != nil {
		log.Println(err)
		return
	}

	mc.Memory[addr] = value
	dbg.PrintMem(mc, addr, 1)
}

func debugKeys(mc *machine.Machine, args []string) {
	const usage = "keys [0-F] [down|up]"

	if len(args) == 0 {
		fmt.Println(keymap.Describe())

		pressed := make([]string, 0, machine.KEY_COUNT)
		for key, down := range mc.State.Keypad.Keys {
			if down {
				pressed = append(pressed, fmt.Sprintf("%X", key))
			}
		}

		fmt.Printf("\033[1mPressed:\033[0m %s\n", strings.Join(pressed, " "))
		return
	}

	if len(args) != 2 {
		log.Println(usage)
		return
	}

	key, err := strconv.ParseUint(args[0], 16, 8)

	if err != nil || key >= machine.KEY_COUNT {
		log.Println(usage)
		return
	}

	switch args[1] {
	case "d", "down":
		mc.SetKey(uint8(key), true)
	case "u", "up":
		mc.SetKey(uint8(key), false)
	default:
		log.Println(usage)
	}
}

func debugTimers(mc *machine.MachineState, args []string) {
	if len(args) == 0 {
		fmt.Printf(
			"\033[1mDT:\033[0m %d\t\033[1mST:\033[0m %d\n", mc.Delay, mc.Sound,
		)
		return
	}

	debugReg(mc, args)
}

func debugQuirks(mc *machine.Machine, args []string) {
	const usage = "quirks [preset|+name|-name]..."

	quirks := mc.Quirks

	for _, arg := range args {
		var err error

		switch {
		case strings.HasPrefix(arg, "+"):
			quirks, err = quirks.Apply(arg[1:], true)
		case strings.HasPrefix(arg, "-"):
			quirks, err = quirks.Apply(arg[1:], false)
		default:
			quirks, err = machine.QuirksPreset(arg)
		}

		if err != nil {
			log.Println(err)
			log.Println(usage)
			return
		}
	}

	mc.Quirks = quirks

	fmt.Printf("\033[1mQuirks:\033[0m %s\n", mc.Quirks)
}

func debugScript(dbg *debugger.Debugger, mc *machine.Machine, args []string) {
	const usage = "script [path|off]"

	if len(args) == 0 {
		if dbg.Script == nil {
			fmt.Println("No script attached")
		} else {
			fmt.Printf("\033[1mScript:\033[0m %s\n", dbg.Script.Name)
		}
		return
	}

	if len(args) != 1 {
		log.Println(usage)
		return
	}

	if dbg.Script != nil {
		dbg.Script.Close()
		dbg.Script = nil
	}

	if args[0] == "off" {
		fmt.Println("Script detached")
		return
	}

	script, err := debugger.LoadScript(mc, args[0], nil)

	if err != nil {
		log.Println(err)
		return
	}

	dbg.Script = script
	fmt.Printf("Script attached (%s)\n", script.Name)
}

func debugDisplay(mc *machine.Machine) {
	frame := mc.State.Display.Pixels

	fmt.Println("+" + strings.Repeat("-", machine.DISPLAY_WIDTH) + "+")
	for _, line := range renderFrame(frame) {
		fmt.Println("|" + line + "|")
	}
	fmt.Println("+" + strings.Repeat("-", machine.DISPLAY_WIDTH) + "+")
}

func debugREPL(dbg *debugger.Debugger, mc *machine.Machine) {
	raw := termRaw
	if raw {
		exitRawTerm()
		defer enterRawTerm()
	}

	input.Drain()

	for {
		fmt.Print("\033[1;30m(dbg)\033[0m ")

		line, ok := input.ReadLine()

		if !ok {
			fmt.Println()
			shouldexit.Store(true)
			return
		}

		args := strings.Fields(line)

		if len(args) == 0 {
			if len(lastcmd) == 0 {
				continue
			}
			args = lastcmd
		} else {
			lastcmd = make([]string, len(args))
			copy(lastcmd, args)
		}

		cmd := args[0]
		args = args[1:]

		switch cmd {
		case "b", "bp", "break", "breakpoint":
			debugBreak(dbg, args)

		case "w", "wp", "watch", "watchpoint":
			debugWatch(dbg, args)

		case "r", "reg", "register", "registers":
			debugReg(&mc.State, args)

		case "s", "src", "source":
			debugSource(dbg, &mc.State, args)

		case "l", "label", "labels":
			debugLabels(dbg, args)

		case "j", "jmp", "jump":
			debugJump(dbg, &mc.State, args)

		case "m", "mem", "memory":
			debugMemory(dbg, &mc.State, args)

		case "set":
			debugSet(dbg, &mc.State, args)

		case "k", "key", "keys":
			debugKeys(mc, args)

		case "t", "timer", "timers":
			debugTimers(&mc.State, args)

		case "quirk", "quirks":
			debugQuirks(mc, args)

		case "script":
			debugScript(dbg, mc, args)

		case "d", "display":
			debugDisplay(mc)

		case "c", "continue":
			dbg.Break.Store(false)
			return

		case "n", "next":
			dbg.Break.Store(true)
			return

		case "q", "quit", "exit":
			shouldexit.Store(true)
			return

		case "clear":
			fmt.Print("\033[H\033[2J")

		case "reset":
			mc.Reset()
			fmt.Printf("\033[1mPC:\033[0m %#04x\n", mc.State.Program)

		default:
			fmt.Printf("error: '%s' is not a valid command\n", cmd)
		}
	}
}

func handleBreak(dbg *debugger.Debugger, mc *machine.Machine) {
	if !dbg.Break.Load() {
		fmt.Println()
		fmt.Println("Program stopped")
	}

	dbg.PrintSource(&mc.State, mc.State.Program, 4)
	debugREPL(dbg, mc)
}

func handleRead(addr uint16, dbg *debugger.Debugger, mc *machine.Machine) {
	fmt.Println()
	fmt.Printf("Read watchpoint hit by [%#04x]\n", mc.State.Program)
	dbg.PrintMem(&mc.State, addr, 1)
	debugREPL(dbg, mc)
}

func handleWrite(addr uint16, dbg *debugger.Debugger, mc *machine.Machine) {
	fmt.Println()
	fmt.Printf("Write watchpoint hit by [%#04x]\n", mc.State.Program)
	dbg.PrintMem(&mc.State, addr, 1)
	debugREPL(dbg, mc)
}
