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
	"context"
	"encoding/gob"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/term"

	"github.com/lassandro/gochip8/pkg/assembler"
	"github.com/lassandro/gochip8/pkg/debugger"
	"github.com/lassandro/gochip8/pkg/host"
	"github.com/lassandro/gochip8/pkg/machine"
)

var helpvar bool
var debugvar bool
var guivar bool
var skipvar bool
var mutevar bool
var freqvar int
var seedvar int64
var quirksvar string
var setvar string
var unsetvar string
var scriptvar string

var shouldexit atomic.Bool
var input *console

const usage = "gochip8 [-debug] [-gui] [-freq hz] [-quirks preset] filename"

func init() {
	exe, _ := os.Executable()
	log.SetFlags(0)
	log.SetPrefix(fmt.Sprintf("%s: ", filepath.Base(exe)))
	log.SetOutput(os.Stderr)
}

func init() {
	flag.BoolVar(&helpvar, "help", false, "Displays command usage")
	flag.BoolVar(&debugvar, "debug", false, "Runs the machine in a debug CLI")
	flag.BoolVar(&guivar, "gui", false, "Opens a window instead of drawing to the terminal")
	flag.BoolVar(
		&skipvar, "skip-illegal", false,
		"Steps over illegal instructions instead of stopping",
	)
	flag.BoolVar(&mutevar, "mute", false, "Disables the sound timer tone")
	flag.IntVar(
		&freqvar, "freq", machine.CLOCK_DEFAULT,
		fmt.Sprintf(
			"Instructions executed per second (%d-%d)",
			machine.CLOCK_MIN, machine.CLOCK_MAX,
		),
	)
	flag.Int64Var(
		&seedvar, "seed", 0,
		"Seeds the CXNN random source, 0 seeds from the clock",
	)
	flag.StringVar(
		&quirksvar, "quirks", machine.PRESET_DEFAULT,
		fmt.Sprintf(
			"Quirk preset (%s)", strings.Join(machine.PresetNames(), ", "),
		),
	)
	flag.StringVar(
		&setvar, "set", "",
		"Comma separated quirks to enable on top of the preset",
	)
	flag.StringVar(
		&unsetvar, "unset", "",
		"Comma separated quirks to disable on top of the preset",
	)
	flag.StringVar(
		&scriptvar, "script", "",
		"Attaches a Lua script called before every instruction, implies -debug",
	)
}

func loadSymbols(dbg *debugger.Debugger, romfile string) {
	filename := filepath.Join(
		filepath.Dir(romfile),
		strings.TrimSuffix(filepath.Base(romfile), filepath.Ext(romfile))+
			".c8db",
	)

	if file, err := os.Open(filename); err == nil {
		var symtable assembler.SymTable

		if err := gob.NewDecoder(file).Decode(&symtable); err == nil {
			dbg.SymTable = &symtable
		} else {
			log.Println("Error loading symbol file")
			log.Println(err)
		}

		file.Close()
	} else if !os.IsNotExist(err) {
		log.Println("Error loading symbol file")
		log.Println(err)
	}

	if dbg.SymTable != nil && dbg.SymTable.Source != "" {
		if file, err := os.Open(dbg.SymTable.Source); err == nil {
			dbg.Source = file
		} else {
			log.Println("Error loading source file")
			log.Println(err)
		}
	}
}

func gochip8() int {
	flag.Parse()

	if helpvar {
		fmt.Println(usage)
		flag.PrintDefaults()
		return 0
	}

	args := flag.Args()

	if len(args) != 1 {
		log.Println(usage)
		return 1
	}

	if scriptvar != "" {
		debugvar = true
	}

	if err := host.ValidateClock(freqvar); err != nil {
		log.Println(err)
		return 1
	}

	var mc machine.Machine

	if quirks, err := machine.ParseQuirks(quirksvar, setvar, unsetvar); err != nil {
		log.Println(err)
		return 1
	} else {
		mc.Quirks = quirks
	}

	if seedvar == 0 {
		seedvar = time.Now().UnixNano()
	}

	mc.Rand = rand.New(rand.NewSource(seedvar))

	{
		file, err := os.Open(args[0])

		if err != nil {
			log.Println(err)
			return 1
		}

		err = mc.LoadBin(file)
		file.Close()

		if err != nil {
			log.Println(err)
			return 1
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var dbg *debugger.Debugger

	if debugvar {
		dbg = &debugger.Debugger{
			HandleBreak: handleBreak,
			HandleRead:  handleRead,
			HandleWrite: handleWrite,
		}
		mc.Debugger = dbg

		loadSymbols(dbg, args[0])

		if dbg.Source != nil {
			defer dbg.Source.Close()
		}

		if scriptvar != "" {
			script, err := debugger.LoadScript(&mc, scriptvar, os.Stdout)

			if err != nil {
				log.Println(err)
				return 1
			}

			dbg.Script = script
			defer func() {
				if dbg.Script != nil {
					dbg.Script.Close()
				}
			}()
		}
	}

	{
		c := make(chan os.Signal, 1)
		defer signal.Stop(c)

		signal.Notify(c, os.Interrupt)
		go func() {
			for range c {
				if dbg != nil {
					fmt.Println()
					dbg.Break.Store(true)
				} else {
					shouldexit.Store(true)
					cancel()
				}
			}
		}()
	}

	newRunner := func(frontend host.Frontend) (*host.Runner, error) {
		runner, err := host.NewRunner(&mc, frontend, freqvar)

		if err != nil {
			return nil, err
		}

		runner.SkipIllegal = skipvar
		runner.Log = log.Default()

		return runner, nil
	}

	if guivar {
		if debugvar {
			input = newConsole(os.Stdin)
			debugREPL(dbg, &mc)
		}

		if err := runGUI(newRunner, dbg, !mutevar); err != nil {
			log.Println(err)
			return 1
		}

		return 0
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		log.Println("Standard input is not a terminal, try -gui")
		return 1
	}

	if err := enterRawTerm(); err != nil {
		log.Println(err)
		return 1
	}

	defer exitRawTerm()

	input = newConsole(os.Stdin)

	runner, err := newRunner(
		newTerminalFrontend(input, os.Stdout, !mutevar, &shouldexit),
	)

	if err != nil {
		log.Println(err)
		return 1
	}

	if debugvar {
		debugREPL(dbg, &mc)
	}

	for !shouldexit.Load() {
		err := runner.Run(ctx)

		if err == nil || ctx.Err() != nil {
			break
		}

		fmt.Print("\r\n")
		log.Print(err)

		if !debugvar {
			return 1
		}

		dbg.PrintSource(&mc.State, mc.State.Program, 4)
		debugREPL(dbg, &mc)
	}

	return 0
}

func main() {
	os.Exit(gochip8())
}
