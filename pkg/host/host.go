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

// Package host drives a machine from a frontend: it interleaves instruction
// steps at the configured clock with the fixed 60Hz timer tick, pushes
// keypad snapshots in and pulls frames and the sound signal out.
package host

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lassandro/gochip8/pkg/machine"
)

type Frontend interface {
	// PollKeys returns the current keypad and whether the user asked to quit.
	PollKeys() (keys [machine.KEY_COUNT]bool, quit bool)

	Present(frame machine.Frame)

	Beep(on bool)
}

var ErrQuit = errors.New("Frontend requested exit")

type ClockRangeError struct {
	Clock int
}

func (err *ClockRangeError) Error() string {
	return fmt.Sprintf(
		"Clock rate out of range\n\twant:%d-%d\n\thave:%d",
		machine.CLOCK_MIN,
		machine.CLOCK_MAX,
		err.Clock,
	)
}

func ValidateClock(hz int) error {
	if hz < machine.CLOCK_MIN || hz > machine.CLOCK_MAX {
		return &ClockRangeError{hz}
	}

	return nil
}

type Runner struct {
	Machine  *machine.Machine
	Frontend Frontend

	// Instructions per second
	Clock int

	// Step over illegal instructions instead of stopping
	SkipIllegal bool

	// Frames run with keys and presentation but without steps or ticks
	Paused bool

	Log *log.Logger

	remainder int
	sounding  bool
	frames    uint64
}

func NewRunner(mc *machine.Machine, frontend Frontend, clock int) (*Runner, error) {
	if err := ValidateClock(clock); err != nil {
		return nil, err
	}

	if frontend == nil {
		frontend = NullFrontend{}
	}

	return &Runner{Machine: mc, Frontend: frontend, Clock: clock}, nil
}

// Frames returns the number of frames run so far.
func (r *Runner) Frames() uint64 {
	return r.frames
}

// stepsForFrame spreads Clock steps evenly over TIMER_HZ frames.
func (r *Runner) stepsForFrame() int {
	r.remainder += r.Clock
	steps := r.remainder / machine.TIMER_HZ
	r.remainder %= machine.TIMER_HZ

	return steps
}

func (r *Runner) absorb(err error) bool {
	var illegal *machine.IllegalInstructionError

	if !r.SkipIllegal || !errors.As(err, &illegal) {
		return false
	}

	if r.Log != nil {
		r.Log.Printf("Skipping %s", err)
	}

	r.Machine.Skip()

	return true
}

// RunFrame runs one 60Hz frame: keys in, a batch of steps, one timer tick,
// then the frame and sound signal out.
func (r *Runner) RunFrame() error {
	keys, quit := r.Frontend.PollKeys()

	if quit {
		return ErrQuit
	}

	r.Machine.SetKeys(keys)

	if !r.Paused {
		for steps := r.stepsForFrame(); steps > 0; steps-- {
			if err := r.Machine.Step(); err != nil && !r.absorb(err) {
				return err
			}
		}

		r.Machine.Tick60Hz()
	}

	if frame, dirty := r.Machine.Frame(); dirty {
		r.Frontend.Present(frame)
	}

	if sound := r.Machine.SoundActive() && !r.Paused; sound != r.sounding {
		r.sounding = sound
		r.Frontend.Beep(sound)
	}

	r.frames++

	return nil
}

// Run paces RunFrame at 60Hz until ctx is done or the frontend quits.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / machine.TIMER_HZ)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
			if err := r.RunFrame(); err != nil {
				if errors.Is(err, ErrQuit) {
					return nil
				}

				return err
			}
		}
	}
}

// NullFrontend never presses a key and discards all output.
type NullFrontend struct{}

func (NullFrontend) PollKeys() ([machine.KEY_COUNT]bool, bool) {
	return [machine.KEY_COUNT]bool{}, false
}

func (NullFrontend) Present(machine.Frame) {}

func (NullFrontend) Beep(bool) {}
