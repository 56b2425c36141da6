//go:build !headless

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
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.design/x/clipboard"
	"golang.org/x/image/font/basicfont"

	"github.com/lassandro/gochip8/pkg/debugger"
	"github.com/lassandro/gochip8/pkg/host"
	"github.com/lassandro/gochip8/pkg/keymap"
	"github.com/lassandro/gochip8/pkg/machine"
)

const guiScale = 10

var (
	colorOn  = color.RGBA{0xE0, 0xE0, 0xE0, 0xFF}
	colorOff = color.RGBA{0x10, 0x10, 0x10, 0xFF}
)

var guiKeys = map[rune]ebiten.Key{
	'1': ebiten.KeyDigit1, '2': ebiten.KeyDigit2,
	'3': ebiten.KeyDigit3, '4': ebiten.KeyDigit4,
	'q': ebiten.KeyQ, 'w': ebiten.KeyW, 'e': ebiten.KeyE, 'r': ebiten.KeyR,
	'a': ebiten.KeyA, 's': ebiten.KeyS, 'd': ebiten.KeyD, 'f': ebiten.KeyF,
	'z': ebiten.KeyZ, 'x': ebiten.KeyX, 'c': ebiten.KeyC, 'v': ebiten.KeyV,
}

type gui struct {
	runner *host.Runner
	dbg    *debugger.Debugger
	beeper *beeper

	window *ebiten.Image
	pixels []byte
	status bool

	clipboardOnce sync.Once
	clipboardOK   bool
}

func runGUI(
	newRunner func(host.Frontend) (*host.Runner, error),
	dbg *debugger.Debugger,
	sound bool,
) error {
	g := &gui{
		dbg:    dbg,
		pixels: make([]byte, machine.DISPLAY_WIDTH*machine.DISPLAY_HEIGHT*4),
	}

	runner, err := newRunner(g)

	if err != nil {
		return err
	}

	g.runner = runner
	g.Present(runner.Machine.State.Display.Pixels)

	if sound {
		if g.beeper, err = newBeeper(); err != nil {
			log.Println("Audio unavailable")
			log.Println(err)
		} else {
			defer g.beeper.Close()
		}
	}

	ebiten.SetWindowSize(
		machine.DISPLAY_WIDTH*guiScale, machine.DISPLAY_HEIGHT*guiScale,
	)
	ebiten.SetWindowTitle("gochip8")
	ebiten.SetTPS(machine.TIMER_HZ)

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}

	return nil
}

func (g *gui) PollKeys() (keys [machine.KEY_COUNT]bool, quit bool) {
	for r, key := range guiKeys {
		if index, ok := keymap.FromRune(r); ok {
			keys[index] = ebiten.IsKeyPressed(key)
		}
	}

	quit = shouldexit.Load() ||
		ebiten.IsWindowBeingClosed() ||
		inpututil.IsKeyJustPressed(ebiten.KeyEscape)

	return keys, quit
}

func (g *gui) Present(frame machine.Frame) {
	for y := 0; y < machine.DISPLAY_HEIGHT; y++ {
		for x := 0; x < machine.DISPLAY_WIDTH; x++ {
			c := colorOff
			if frame.Pixel(x, y) {
				c = colorOn
			}

			i := (y*machine.DISPLAY_WIDTH + x) * 4
			g.pixels[i+0] = c.R
			g.pixels[i+1] = c.G
			g.pixels[i+2] = c.B
			g.pixels[i+3] = c.A
		}
	}
}

func (g *gui) Beep(on bool) {
	if g.beeper != nil {
		g.beeper.Set(on)
	}
}

func (g *gui) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.runner.Paused = !g.runner.Paused
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF9) {
		g.screenshot()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		g.status = !g.status
	}

	err := g.runner.RunFrame()

	switch {
	case err == nil:
		return nil
	case errors.Is(err, host.ErrQuit):
		return ebiten.Termination
	case g.dbg == nil:
		return err
	}

	log.Println(err)

	mc := g.runner.Machine
	g.dbg.PrintSource(&mc.State, mc.State.Program, 4)
	debugREPL(g.dbg, mc)

	if shouldexit.Load() {
		return ebiten.Termination
	}

	return nil
}

func (g *gui) Draw(screen *ebiten.Image) {
	if g.window == nil {
		g.window = ebiten.NewImage(machine.DISPLAY_WIDTH, machine.DISPLAY_HEIGHT)
	}

	g.window.WritePixels(g.pixels)

	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(guiScale, guiScale)
	screen.DrawImage(g.window, opts)

	if g.status {
		g.drawStatusBar(screen)
	}
}

func (g *gui) Layout(_, _ int) (int, int) {
	return machine.DISPLAY_WIDTH * guiScale, machine.DISPLAY_HEIGHT * guiScale
}

func (g *gui) drawStatusBar(screen *ebiten.Image) {
	face := basicfont.Face7x13
	mc := g.runner.Machine

	state := "running"
	if g.runner.Paused {
		state = "paused"
	}

	line := fmt.Sprintf(
		"%s  %dHz  PC:%#04x  I:%#04x  DT:%d  ST:%d  frame:%d",
		state,
		g.runner.Clock,
		mc.State.Program,
		mc.State.Index,
		mc.State.Delay,
		mc.State.Sound,
		g.runner.Frames(),
	)

	height := machine.DISPLAY_HEIGHT * guiScale
	text.Draw(screen, line, face, 6, height-22, color.RGBA{0x00, 0xDC, 0x5A, 0xFF})
	text.Draw(screen, mc.Quirks.String(), face, 6, height-6, color.RGBA{0xBE, 0xBE, 0xBE, 0xFF})
}

// screenshot copies the display to the clipboard as a PNG.
func (g *gui) screenshot() {
	g.clipboardOnce.Do(func() {
		g.clipboardOK = clipboard.Init() == nil
	})

	if !g.clipboardOK {
		log.Println("Clipboard unavailable")
		return
	}

	img := image.NewRGBA(image.Rect(0, 0, machine.DISPLAY_WIDTH, machine.DISPLAY_HEIGHT))
	copy(img.Pix, g.pixels)

	var buffer bytes.Buffer

	if err := png.Encode(&buffer, img); err != nil {
		log.Println(err)
		return
	}

	clipboard.Write(clipboard.FmtImage, buffer.Bytes())
}
