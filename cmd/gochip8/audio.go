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
	"encoding/binary"
	"math"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
)

const (
	beepSampleRate = 44100
	beepPitch      = 440
	beepVolume     = 0.2
)

// beeper plays a square wave while the sound timer runs.
type beeper struct {
	ctx    *oto.Context
	player *oto.Player
	on     atomic.Bool
	phase  int
}

func newBeeper() (*beeper, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   beepSampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   50 * time.Millisecond,
	})

	if err != nil {
		return nil, err
	}

	<-ready

	b := &beeper{ctx: ctx}
	b.player = ctx.NewPlayer(b)
	b.player.Play()

	return b, nil
}

func (b *beeper) Set(on bool) {
	b.on.Store(on)
}

func (b *beeper) Read(p []byte) (int, error) {
	const period = beepSampleRate / beepPitch

	on := b.on.Load()
	samples := len(p) / 4

	for i := 0; i < samples; i++ {
		var sample float32

		if on {
			sample = beepVolume
			if b.phase >= period/2 {
				sample = -beepVolume
			}
		}

		b.phase = (b.phase + 1) % period
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(sample))
	}

	return samples * 4, nil
}

func (b *beeper) Close() {
	if b.player != nil {
		b.player.Close()
		b.player = nil
	}
}
