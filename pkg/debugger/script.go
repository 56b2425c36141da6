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
	"fmt"
	"io"
	"os"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/lassandro/gochip8/pkg/machine"
)

// Script is a Lua program attached to the debugger. After every instruction
// its global on_step(pc) is called, and a truthy result breaks into the
// debugger. The machine is exposed through these globals:
//
//	pc()            setpc(addr)
//	reg(x)          setreg(x, value)
//	index()         setindex(addr)
//	peek(addr)      poke(addr, value)
//	key(k)          waiting()
//	dt()            st()
type Script struct {
	Name string

	// print() output, os.Stdout when nil
	Out io.Writer

	mc    *machine.Machine
	state *lua.LState
}

func LoadScript(mc *machine.Machine, path string, out io.Writer) (*Script, error) {
	file, err := os.Open(path)

	if err != nil {
		return nil, err
	}

	defer file.Close()

	return NewScript(mc, path, file, out)
}

// NewScript compiles and runs the chunk in source once, leaving its globals
// in place for later on_step calls.
func NewScript(mc *machine.Machine, name string, source io.Reader, out io.Writer) (*Script, error) {
	script := &Script{Name: name, Out: out, mc: mc, state: lua.NewState()}
	script.bind()

	chunk, err := script.state.Load(source, name)

	if err != nil {
		script.Close()
		return nil, err
	}

	script.state.Push(chunk)

	if err := script.state.PCall(0, lua.MultRet, nil); err != nil {
		script.Close()
		return nil, err
	}

	return script, nil
}

func (script *Script) Close() {
	if script.state != nil {
		script.state.Close()
		script.state = nil
	}
}

// OnStep reports whether the script asked to break.
func (script *Script) OnStep() (bool, error) {
	if script.state == nil {
		return false, nil
	}

	L := script.state
	fn := L.GetGlobal("on_step")

	if fn.Type() != lua.LTFunction {
		return false, nil
	}

	if err := L.CallByParam(
		lua.P{Fn: fn, NRet: 1, Protect: true},
		lua.LNumber(script.mc.State.Program),
	); err != nil {
		return false, err
	}

	result := L.Get(-1)
	L.Pop(1)

	return lua.LVAsBool(result), nil
}

func (script *Script) out() io.Writer {
	if script.Out == nil {
		return os.Stdout
	}

	return script.Out
}

func checkRange(L *lua.LState, n int, limit int) int {
	value := L.CheckInt(n)

	if value < 0 || value >= limit {
		L.ArgError(n, fmt.Sprintf("%d out of range [0, %d)", value, limit))
	}

	return value
}

func (script *Script) bind() {
	L := script.state
	state := &script.mc.State

	getter := func(get func() int) *lua.LFunction {
		return L.NewFunction(func(L *lua.LState) int {
			L.Push(lua.LNumber(get()))
			return 1
		})
	}

	L.SetGlobal("pc", getter(func() int { return int(state.Program) }))
	L.SetGlobal("index", getter(func() int { return int(state.Index) }))
	L.SetGlobal("dt", getter(func() int { return int(state.Delay) }))
	L.SetGlobal("st", getter(func() int { return int(state.Sound) }))

	L.SetGlobal("setpc", L.NewFunction(func(L *lua.LState) int {
		state.Program = uint16(checkRange(L, 1, machine.MEMORY_SIZE))
		return 0
	}))

	L.SetGlobal("setindex", L.NewFunction(func(L *lua.LState) int {
		state.Index = uint16(L.CheckInt(1))
		return 0
	}))

	L.SetGlobal("reg", L.NewFunction(func(L *lua.LState) int {
		x := checkRange(L, 1, machine.REGISTER_COUNT)
		L.Push(lua.LNumber(state.Registers[x]))
		return 1
	}))

	L.SetGlobal("setreg", L.NewFunction(func(L *lua.LState) int {
		x := checkRange(L, 1, machine.REGISTER_COUNT)
		state.Registers[x] = uint8(L.CheckInt(2))
		return 0
	}))

	L.SetGlobal("peek", L.NewFunction(func(L *lua.LState) int {
		addr := checkRange(L, 1, machine.MEMORY_SIZE)
		L.Push(lua.LNumber(state.Memory[addr]))
		return 1
	}))

	L.SetGlobal("poke", L.NewFunction(func(L *lua.LState) int {
		addr := checkRange(L, 1, machine.MEMORY_SIZE)
		state.Memory[addr] = uint8(L.CheckInt(2))
		return 0
	}))

	L.SetGlobal("key", L.NewFunction(func(L *lua.LState) int {
		k := checkRange(L, 1, machine.KEY_COUNT)
		L.Push(lua.LBool(state.Keypad.Keys[k]))
		return 1
	}))

	L.SetGlobal("waiting", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(state.Waiting))
		return 1
	}))

	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		args := make([]string, 0, L.GetTop())

		for i := 1; i <= L.GetTop(); i++ {
			args = append(args, L.ToStringMeta(L.Get(i)).String())
		}

		fmt.Fprintln(script.out(), strings.Join(args, "\t"))
		return 0
	}))
}
