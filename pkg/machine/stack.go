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

package machine

func (mc *Machine) push(addr uint16) error {
	if mc.State.StackSize >= STACK_DEPTH {
		return &StackOverflowError{STACK_DEPTH}
	}

	mc.State.Stack[mc.State.StackSize] = addr
	mc.State.StackSize++

	return nil
}

func (mc *Machine) pop() (uint16, error) {
	if mc.State.StackSize == 0 {
		return 0, &StackUnderflowError{}
	}

	mc.State.StackSize--

	return mc.State.Stack[mc.State.StackSize], nil
}
