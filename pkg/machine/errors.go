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

import (
	"fmt"
)

type ImageTooLargeError struct {
	Size  int
	Limit int
}

func (err *ImageTooLargeError) Error() string {
	return fmt.Sprintf(
		"Program image exceeds available memory\n\twant:<=%d\n\thave:%d",
		err.Limit,
		err.Size,
	)
}

type OutOfBoundsError struct {
	Addr  uint32
	Limit uint32
}

func (err *OutOfBoundsError) Error() string {
	return fmt.Sprintf(
		"Memory access out of bounds [%#04x] (limit %#04x)",
		err.Addr,
		err.Limit,
	)
}

type FetchError struct {
	Addr uint16
	Err  error
}

func (err *FetchError) Error() string {
	return fmt.Sprintf("Fetch failed at %#04x: %s", err.Addr, err.Err)
}

func (err *FetchError) Unwrap() error {
	return err.Err
}

type StackOverflowError struct {
	Depth int
}

func (err *StackOverflowError) Error() string {
	return fmt.Sprintf("Stack overflow (depth %d)", err.Depth)
}

type StackUnderflowError struct{}

func (err *StackUnderflowError) Error() string {
	return "Stack underflow"
}

type IllegalInstructionError struct {
	Opcode uint16
	Addr   uint16
}

func (err *IllegalInstructionError) Error() string {
	return fmt.Sprintf(
		"Illegal instruction %#04x at [%#04x]", err.Opcode, err.Addr,
	)
}
