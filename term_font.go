// term_font.go - Fixed-width glyph sheet used by the pixel renderers

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
	"image/png"
	"os"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"pkt.systems/pslog"
)

const (
	fontGridCols  = 16
	fontGridRows  = 16
	fontCellInset = 1
)

// TerminalFont is a 16x16 grid of glyph cells. Each cell carries a one
// pixel border around the glyph itself; glyphs are white on transparent.
type TerminalFont struct {
	sheet image.Image
	cellW int
	cellH int
}

func NewTerminalFont(sheet image.Image) (*TerminalFont, error) {
	b := sheet.Bounds()
	if b.Dx()%fontGridCols != 0 || b.Dy()%fontGridRows != 0 {
		return nil, &RenderError{
			Operation: "font load",
			Details:   fmt.Sprintf("sheet %dx%d is not a %dx%d grid", b.Dx(), b.Dy(), fontGridCols, fontGridRows),
		}
	}
	cellW, cellH := b.Dx()/fontGridCols, b.Dy()/fontGridRows
	if cellW <= 2*fontCellInset || cellH <= 2*fontCellInset {
		return nil, &RenderError{
			Operation: "font load",
			Details:   fmt.Sprintf("cells %dx%d too small", cellW, cellH),
		}
	}
	return &TerminalFont{sheet: sheet, cellW: cellW, cellH: cellH}, nil
}

// LoadTerminalFont reads a PNG glyph sheet from disk.
func LoadTerminalFont(path string) (*TerminalFont, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &RenderError{Operation: "font load", Details: path, Err: err}
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, &RenderError{Operation: "font load", Details: path, Err: err}
	}
	return NewTerminalFont(img)
}

// builtinTerminalFont rasterizes basicfont's 7x13 face into a glyph sheet.
func builtinTerminalFont() *TerminalFont {
	face := basicfont.Face7x13
	cellW := face.Advance + 2*fontCellInset
	cellH := face.Height + 2*fontCellInset
	sheet := image.NewNRGBA(image.Rect(0, 0, cellW*fontGridCols, cellH*fontGridRows))
	d := font.Drawer{Dst: sheet, Src: image.White, Face: face}
	for c := 0x20; c < fontGridCols*fontGridRows; c++ {
		if c == 0x7F {
			continue
		}
		col, row := c%fontGridCols, c/fontGridCols
		d.Dot = fixed.P(col*cellW+fontCellInset, row*cellH+fontCellInset+face.Ascent)
		d.DrawString(string(rune(c)))
	}
	return &TerminalFont{sheet: sheet, cellW: cellW, cellH: cellH}
}

// loadBestFont returns the sheet at path, or the built-in sheet when path
// is empty or unreadable.
func loadBestFont(path string, log pslog.Logger) *TerminalFont {
	if path == "" {
		return builtinTerminalFont()
	}
	f, err := LoadTerminalFont(path)
	if err != nil {
		log.Warn("failed to load font, using built-in", "path", path, "err", err)
		return builtinTerminalFont()
	}
	return f
}

func (f *TerminalFont) Sheet() image.Image { return f.sheet }

// GlyphSize is the size of one glyph without its border.
func (f *TerminalFont) GlyphSize() (w, h int) {
	return f.cellW - 2*fontCellInset, f.cellH - 2*fontCellInset
}

// CharRect locates ch on the sheet. Characters outside the sheet map to '?'.
func (f *TerminalFont) CharRect(ch rune) image.Rectangle {
	idx := int(ch)
	if idx < 0 || idx >= fontGridCols*fontGridRows {
		idx = '?'
	}
	col, row := idx%fontGridCols, idx/fontGridCols
	origin := f.sheet.Bounds().Min
	x := origin.X + col*f.cellW + fontCellInset
	y := origin.Y + row*f.cellH + fontCellInset
	gw, gh := f.GlyphSize()
	return image.Rect(x, y, x+gw, y+gh)
}

// fontKeyThreshold is the channel value below which a sheet pixel counts
// as background when keying out an opaque sheet.
const fontKeyThreshold = 16

// keyOutBackground copies sheet, making near-black pixels transparent so
// an opaque glyph sheet can be tinted.
func keyOutBackground(sheet image.Image) *image.NRGBA {
	b := sheet.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), sheet, b.Min, draw.Src)
	for i := 0; i+3 < len(out.Pix); i += 4 {
		if out.Pix[i] < fontKeyThreshold && out.Pix[i+1] < fontKeyThreshold && out.Pix[i+2] < fontKeyThreshold {
			out.Pix[i+3] = 0
		}
	}
	return out
}

// ConvertFontSheet keys out the background of the PNG at in and writes
// the result to out, validating the grid on the way.
func ConvertFontSheet(in, out string) (*TerminalFont, error) {
	src, err := LoadTerminalFont(in)
	if err != nil {
		return nil, err
	}
	f, err := NewTerminalFont(keyOutBackground(src.Sheet()))
	if err != nil {
		return nil, err
	}
	return f, f.WritePNG(out)
}

// WritePNG saves the glyph sheet so it can be edited and loaded back.
func (f *TerminalFont) WritePNG(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return &RenderError{Operation: "font save", Details: path, Err: err}
	}
	if err := png.Encode(file, f.sheet); err != nil {
		file.Close()
		return &RenderError{Operation: "font save", Details: path, Err: err}
	}
	if err := file.Close(); err != nil {
		return &RenderError{Operation: "font save", Details: path, Err: err}
	}
	return nil
}
