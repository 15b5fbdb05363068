// video_surface.go - Double-buffered RGBA paint target

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/ccemux
License: GPLv3 or later
*/

package main

import (
	"image"
	"sync"
	"sync/atomic"
)

const maxPaintAttempts = 4

// Surface is a pair of RGBA buffers. A painter fills the back buffer and
// swaps it to the front; the presenter only ever reads the front. The
// generation counter moves whenever the presenter loses its copy of the
// surface, which forces an in-flight paint to start over.
type Surface struct {
	width  int
	height int

	bufferMutex sync.RWMutex
	back        *image.RGBA
	front       *image.RGBA

	generation atomic.Uint64
	frameCount atomic.Uint64
	retries    atomic.Uint64
}

func NewSurface(width, height int) *Surface {
	r := image.Rect(0, 0, width, height)
	return &Surface{
		width:  width,
		height: height,
		back:   image.NewRGBA(r),
		front:  image.NewRGBA(r),
	}
}

func (s *Surface) Size() (int, int) { return s.width, s.height }

// Invalidate marks the presented contents as lost.
func (s *Surface) Invalidate() {
	s.generation.Add(1)
}

// Paint runs paint against the back buffer until a pass completes without
// the surface being invalidated, then presents it. After maxPaintAttempts
// contested passes the last one is presented anyway and ok is false.
// Only one goroutine may paint at a time.
func (s *Surface) Paint(paint func(dst *image.RGBA)) (attempts int, ok bool) {
	for attempts = 1; ; attempts++ {
		gen := s.generation.Load()
		paint(s.back)
		ok = s.generation.Load() == gen
		if ok || attempts >= maxPaintAttempts {
			break
		}
		s.retries.Add(1)
	}
	s.bufferMutex.Lock()
	s.back, s.front = s.front, s.back
	s.bufferMutex.Unlock()
	s.frameCount.Add(1)
	return attempts, ok
}

// Front gives read access to the presented frame.
func (s *Surface) Front(fn func(img *image.RGBA)) {
	s.bufferMutex.RLock()
	defer s.bufferMutex.RUnlock()
	fn(s.front)
}

func (s *Surface) GetFrameCount() uint64 { return s.frameCount.Load() }

func (s *Surface) Retries() uint64 { return s.retries.Load() }
