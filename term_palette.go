// term_palette.go - 16-slot terminal palette and slot resolution

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
	"image/color"
	"math"
	"math/bits"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	paletteSize   = 16
	base16Digits  = "0123456789abcdef"
	slotWhite     = 0
	slotRed       = 14
	slotBlack     = 15
	defaultBgSlot = slotBlack
)

// defaultPaletteRGB is the stock ComputerCraft palette, slot 0 (white) to 15 (black).
var defaultPaletteRGB = [paletteSize]uint32{
	0xF0F0F0, 0xF2B233, 0xE57FD8, 0x99B2F2,
	0xDEDE6C, 0x7FCC19, 0xF2B2CC, 0x4C4C4C,
	0x999999, 0x4C99B2, 0xB266E5, 0x3366CC,
	0x7F664C, 0x57A64E, 0xCC4C4C, 0x111111,
}

// Palette holds the live RGB value of every colour slot. Components are
// kept in [0,1]; writes are clamped.
type Palette struct {
	colors  [paletteSize]colorful.Color
	changed bool
}

func NewPalette() *Palette {
	p := &Palette{}
	p.Reset()
	return p
}

func (p *Palette) Reset() {
	for i, rgb := range defaultPaletteRGB {
		p.colors[i] = colorFromHex(rgb)
	}
	p.changed = true
}

// Set writes slot i. Out-of-range slots are ignored.
func (p *Palette) Set(i int, r, g, b float64) {
	if i < 0 || i >= paletteSize {
		return
	}
	p.colors[i] = colorful.Color{R: unNaN(r), G: unNaN(g), B: unNaN(b)}.Clamped()
	p.changed = true
}

// unNaN maps NaN to 0; Clamped passes NaN through.
func unNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

func (p *Palette) Get(i int) colorful.Color {
	if i < 0 || i >= paletteSize {
		return colorful.Color{}
	}
	return p.colors[i]
}

func (p *Palette) Changed() bool {
	return p.changed
}

func (p *Palette) SetChanged(changed bool) {
	p.changed = changed
}

func colorFromHex(rgb uint32) colorful.Color {
	return colorful.Color{
		R: float64((rgb>>16)&0xFF) / 255,
		G: float64((rgb>>8)&0xFF) / 255,
		B: float64(rgb&0xFF) / 255,
	}
}

// PaletteResolver maps a slot to a concrete colour by reading the live
// palette. The result is a plain value so equal colours compare equal
// regardless of which palette read produced them.
type PaletteResolver struct {
	palette *Palette
}

func NewPaletteResolver(p *Palette) PaletteResolver {
	return PaletteResolver{palette: p}
}

func (r PaletteResolver) Resolve(slot int) (color.RGBA, bool) {
	if r.palette == nil || slot < 0 || slot >= paletteSize {
		return color.RGBA{}, false
	}
	red, green, blue := r.palette.Get(slot).RGB255()
	return color.RGBA{R: red, G: green, B: blue, A: 0xFF}, true
}

// ResolveBackground resolves a background cell; rows without background
// data fall back to black.
func (r PaletteResolver) ResolveBackground(line []byte, x int) color.RGBA {
	slot := defaultBgSlot
	if line != nil && x >= 0 && x < len(line) {
		if s := base16ToInt(line[x]); s >= 0 {
			slot = s
		}
	}
	c, _ := r.Resolve(slot)
	return c
}

// base16ToInt converts a single hex digit, returning -1 if it is not one.
func base16ToInt(c byte) int {
	return strings.IndexByte(base16Digits, lowerASCII(c))
}

func intToBase16(v int) byte {
	if v < 0 || v >= paletteSize {
		return base16Digits[defaultBgSlot]
	}
	return base16Digits[v]
}

func lowerASCII(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// colourFromBit converts a colours API bit flag (1, 2, 4, ... 32768) to a slot.
func colourFromBit(v int) (int, bool) {
	if v <= 0 || v >= 1<<paletteSize || bits.OnesCount(uint(v)) != 1 {
		return 0, false
	}
	return bits.TrailingZeros(uint(v)), true
}

func colourToBit(slot int) int {
	return 1 << slot
}
