// term_palette_test.go - Tests for palette storage and slot resolution

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
	"testing"
)

func TestPaletteResolveReturnsWrittenColour(t *testing.T) {
	p := NewPalette()
	r := NewPaletteResolver(p)
	for slot := 0; slot < paletteSize; slot++ {
		p.Set(slot, 1, 0, 0.2)
		got, ok := r.Resolve(slot)
		if !ok {
			t.Fatalf("slot %d: resolve failed", slot)
		}
		want := color.RGBA{R: 255, G: 0, B: 51, A: 255}
		if got != want {
			t.Fatalf("slot %d: got %v, want %v", slot, got, want)
		}
	}
}

func TestPaletteSetClamps(t *testing.T) {
	p := NewPalette()
	p.Set(3, 2.5, -1, 0.5)
	c := p.Get(3)
	if c.R != 1 || c.G != 0 || c.B != 0.5 {
		t.Fatalf("expected clamped (1,0,0.5), got (%v,%v,%v)", c.R, c.G, c.B)
	}
	if !p.Changed() {
		t.Fatal("expected palette marked changed")
	}
}

func TestPaletteSetRejectsNaN(t *testing.T) {
	p := NewPalette()
	p.Set(5, math.NaN(), 0.25, math.Inf(1))
	c := p.Get(5)
	if c.R != 0 || c.G != 0.25 || c.B != 1 {
		t.Fatalf("expected (0,0.25,1), got (%v,%v,%v)", c.R, c.G, c.B)
	}
	got, ok := NewPaletteResolver(p).Resolve(5)
	if !ok || got != (color.RGBA{0, 64, 255, 255}) {
		t.Fatalf("resolved %v ok=%v", got, ok)
	}
}

func TestPaletteChangedFlagCleared(t *testing.T) {
	p := NewPalette()
	p.SetChanged(false)
	p.Set(99, 1, 1, 1)
	if p.Changed() {
		t.Fatal("out-of-range write should not mark changed")
	}
	p.Set(0, 0, 0, 0)
	if !p.Changed() {
		t.Fatal("expected changed after write")
	}
}

func TestPaletteResolveRejectsBadSlot(t *testing.T) {
	r := NewPaletteResolver(NewPalette())
	for _, slot := range []int{-1, 16, 100} {
		if _, ok := r.Resolve(slot); ok {
			t.Fatalf("slot %d resolved", slot)
		}
	}
}

func TestResolveBackgroundDefaultsToBlack(t *testing.T) {
	p := NewPalette()
	r := NewPaletteResolver(p)
	black, _ := r.Resolve(slotBlack)

	if got := r.ResolveBackground(nil, 0); got != black {
		t.Fatalf("nil row: got %v, want %v", got, black)
	}
	if got := r.ResolveBackground([]byte("z"), 0); got != black {
		t.Fatalf("invalid digit: got %v, want %v", got, black)
	}
	red, _ := r.Resolve(slotRed)
	if got := r.ResolveBackground([]byte("0E"), 1); got != red {
		t.Fatalf("upper-case digit: got %v, want %v", got, red)
	}
}

func TestBase16Conversions(t *testing.T) {
	tests := []struct {
		in   byte
		want int
	}{
		{'0', 0}, {'9', 9}, {'a', 10}, {'F', 15}, {'g', -1}, {' ', -1},
	}
	for _, tt := range tests {
		if got := base16ToInt(tt.in); got != tt.want {
			t.Fatalf("base16ToInt(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
	if intToBase16(11) != 'b' || intToBase16(-3) != 'f' {
		t.Fatal("intToBase16 mismatch")
	}
}

func TestColourFromBit(t *testing.T) {
	if slot, ok := colourFromBit(1); !ok || slot != 0 {
		t.Fatalf("white: got %d %v", slot, ok)
	}
	if slot, ok := colourFromBit(32768); !ok || slot != 15 {
		t.Fatalf("black: got %d %v", slot, ok)
	}
	for _, v := range []int{0, 3, 65536, -2} {
		if _, ok := colourFromBit(v); ok {
			t.Fatalf("colourFromBit(%d) accepted", v)
		}
	}
	if colourToBit(14) != 16384 {
		t.Fatalf("colourToBit(14) = %d", colourToBit(14))
	}
}
