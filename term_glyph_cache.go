// term_glyph_cache.go - Tinted glyph tiles keyed by character and resolved colour

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
	"fmt"
	"image"
	"image/color"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/image/draw"
)

const (
	glyphCacheTTL        = 10 * time.Second
	glyphCacheSweepEvery = time.Second
)

type glyphKey struct {
	ch     rune
	colour color.RGBA
}

type glyphEntry struct {
	ready      chan struct{}
	tile       *image.NRGBA
	err        error
	lastAccess time.Time
}

// GlyphCache lazily rasterizes tinted glyph tiles. Entries idle for
// glyphCacheTTL are dropped on a later access; there is no size bound and
// no background sweeper. Concurrent requests for one key share a single
// rasterization.
type GlyphCache struct {
	font *TerminalFont
	now  func() time.Time
	ttl  time.Duration

	mu        sync.Mutex
	entries   map[glyphKey]*glyphEntry
	lastSweep time.Time

	rasterized atomic.Uint64
}

func NewGlyphCache(font *TerminalFont, now func() time.Time) *GlyphCache {
	if now == nil {
		now = time.Now
	}
	return &GlyphCache{
		font:    font,
		now:     now,
		ttl:     glyphCacheTTL,
		entries: make(map[glyphKey]*glyphEntry),
	}
}

// Tile returns the tile for ch tinted with colour, rasterizing on a miss.
// Failed rasterizations are not cached.
func (c *GlyphCache) Tile(ch rune, colour color.RGBA) (*image.NRGBA, error) {
	key := glyphKey{ch: ch, colour: colour}
	now := c.now()

	c.mu.Lock()
	c.sweepLocked(now)
	e, ok := c.entries[key]
	if ok && now.Sub(e.lastAccess) >= c.ttl {
		delete(c.entries, key)
		ok = false
	}
	if ok {
		e.lastAccess = now
		c.mu.Unlock()
		<-e.ready
		return e.tile, e.err
	}
	e = &glyphEntry{ready: make(chan struct{}), lastAccess: now}
	c.entries[key] = e
	c.mu.Unlock()

	e.tile, e.err = tintGlyph(c.font, ch, colour)
	c.rasterized.Add(1)
	if e.err != nil {
		c.mu.Lock()
		if c.entries[key] == e {
			delete(c.entries, key)
		}
		c.mu.Unlock()
	}
	close(e.ready)
	return e.tile, e.err
}

func (c *GlyphCache) sweepLocked(now time.Time) {
	if now.Sub(c.lastSweep) < glyphCacheSweepEvery {
		return
	}
	c.lastSweep = now
	for key, e := range c.entries {
		if now.Sub(e.lastAccess) >= c.ttl {
			delete(c.entries, key)
		}
	}
}

func (c *GlyphCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Rasterized counts tint operations performed so far.
func (c *GlyphCache) Rasterized() uint64 {
	return c.rasterized.Load()
}

// tintGlyph cuts ch out of the sheet and multiplies its RGB channels by
// colour. Alpha is left untouched.
func tintGlyph(f *TerminalFont, ch rune, colour color.RGBA) (*image.NRGBA, error) {
	if f == nil || f.Sheet() == nil {
		return nil, &RenderError{Operation: "glyph rasterize", Details: "no font loaded"}
	}
	r := f.CharRect(ch)
	if !r.In(f.Sheet().Bounds()) {
		return nil, &RenderError{
			Operation: "glyph rasterize",
			Details:   fmt.Sprintf("glyph %q at %v outside sheet %v", ch, r, f.Sheet().Bounds()),
		}
	}
	tile := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(tile, tile.Bounds(), f.Sheet(), r.Min, draw.Src)
	for i := 0; i+3 < len(tile.Pix); i += 4 {
		tile.Pix[i] = scaleChannel(tile.Pix[i], colour.R)
		tile.Pix[i+1] = scaleChannel(tile.Pix[i+1], colour.G)
		tile.Pix[i+2] = scaleChannel(tile.Pix[i+2], colour.B)
	}
	return tile, nil
}

func scaleChannel(v, by uint8) uint8 {
	return uint8((uint16(v)*uint16(by) + 127) / 255)
}
