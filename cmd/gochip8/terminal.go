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
	"bufio"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/term"

	"github.com/lassandro/gochip8/pkg/keymap"
	"github.com/lassandro/gochip8/pkg/machine"
)

// A terminal only reports key presses, so a key counts as held until it
// has not been seen for this long.
const keyExpiry = 100 * time.Millisecond

const (
	asciiETX = 0x03 // Ctrl-C
	asciiESC = 0x1B
	asciiBEL = 0x07
)

// console owns stdin. A single goroutine pumps bytes so the keypad and the
// debugger prompt can share the stream.
type console struct {
	input chan byte
}

func newConsole(r io.Reader) *console {
	c := &console{input: make(chan byte, 256)}
	go c.pump(r)
	return c
}

func (c *console) pump(r io.Reader) {
	buffer := make([]byte, 64)

	for {
		n, err := r.Read(buffer)

		for _, b := range buffer[:n] {
			c.input <- b
		}

		if err != nil {
			close(c.input)
			return
		}
	}
}

// Drain discards everything typed so far.
func (c *console) Drain() {
	for {
		select {
		case _, ok := <-c.input:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

// ReadLine blocks for a full line; false once stdin is closed.
func (c *console) ReadLine() (string, bool) {
	var builder strings.Builder

	for b := range c.input {
		switch b {
		case '\n':
			return strings.TrimSuffix(builder.String(), "\r"), true
		default:
			builder.WriteByte(b)
		}
	}

	return builder.String(), builder.Len() > 0
}

type terminalFrontend struct {
	console *console
	out     *bufio.Writer
	fd      int
	sound   bool

	quit    *atomic.Bool
	seen    [machine.KEY_COUNT]time.Time
	now     func() time.Time
	cleared bool
}

func newTerminalFrontend(c *console, out *os.File, sound bool, quit *atomic.Bool) *terminalFrontend {
	return &terminalFrontend{
		console: c,
		out:     bufio.NewWriter(out),
		fd:      int(out.Fd()),
		sound:   sound,
		quit:    quit,
		now:     time.Now,
	}
}

func (tf *terminalFrontend) PollKeys() (keys [machine.KEY_COUNT]bool, quit bool) {
	now := tf.now()

poll:
	for {
		select {
		case b, ok := <-tf.console.input:
			if !ok {
				tf.quit.Store(true)
				break poll
			}

			switch b {
			case asciiETX, asciiESC:
				tf.quit.Store(true)
			default:
				if key, ok := keymap.FromRune(rune(b)); ok {
					tf.seen[key] = now
				}
			}

		default:
			break poll
		}
	}

	for key, seen := range tf.seen {
		keys[key] = !seen.IsZero() && now.Sub(seen) < keyExpiry
	}

	return keys, tf.quit.Load()
}

func (tf *terminalFrontend) Present(frame machine.Frame) {
	width, height, err := term.GetSize(tf.fd)

	if err != nil {
		width, height = machine.DISPLAY_WIDTH, machine.DISPLAY_HEIGHT/2
	}

	if !tf.cleared {
		tf.out.WriteString("\033[2J")
		tf.cleared = true
	}

	left := max((width-machine.DISPLAY_WIDTH)/2, 0)
	top := max((height-machine.DISPLAY_HEIGHT/2)/2, 0)

	tf.out.WriteString("\033[H")
	tf.out.WriteString(strings.Repeat("\r\n", top))

	for _, line := range renderFrame(frame) {
		tf.out.WriteString(strings.Repeat(" ", left))
		tf.out.WriteString(line)
		tf.out.WriteString("\r\n")
	}

	tf.out.Flush()
}

func (tf *terminalFrontend) Beep(on bool) {
	if on && tf.sound {
		tf.out.WriteByte(asciiBEL)
		tf.out.Flush()
	}
}

// renderFrame packs two pixel rows into each text row with half blocks.
func renderFrame(frame machine.Frame) []string {
	lines := make([]string, 0, machine.DISPLAY_HEIGHT/2)

	for y := 0; y < machine.DISPLAY_HEIGHT; y += 2 {
		var builder strings.Builder

		for x := 0; x < machine.DISPLAY_WIDTH; x++ {
			upper := frame.Pixel(x, y)
			lower := frame.Pixel(x, y+1)

			switch {
			case upper && lower:
				builder.WriteRune('█')
			case upper:
				builder.WriteRune('▀')
			case lower:
				builder.WriteRune('▄')
			default:
				builder.WriteByte(' ')
			}
		}

		lines = append(lines, builder.String())
	}

	return lines
}
