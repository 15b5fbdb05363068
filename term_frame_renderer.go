// term_frame_renderer.go - Paints a terminal grid, cursor and shutdown overlay into a surface

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
	"image/color"
	"time"
	"unicode"

	"golang.org/x/image/draw"
	"pkt.systems/pslog"
)

const defaultCursorChar = '_'

var (
	shutdownMessage      = []rune("Computer is shutdown. Hold Ctrl+R to reboot")
	overlayShadowColour  = color.RGBA{0x4C, 0x4C, 0x4C, 0xFF}
	overlayBoxColour     = color.RGBA{0x88, 0x88, 0x88, 0xFF}
	overlayMessageColour = slotWhite
)

// frameGeometry derives the pixel cell size and border from the display scale.
func frameGeometry(scale float64) (pixelWidth, pixelHeight, margin int) {
	return int(6 * scale), int(9 * scale), int(2 * scale)
}

// FrameRenderer is the pixel TerminalView: it repaints the whole terminal
// into a Surface on every Render.
type FrameRenderer struct {
	term     *TerminalBuffer
	surface  *Surface
	glyphs   *GlyphCache
	resolver PaletteResolver
	log      pslog.Logger

	pixelWidth  int
	pixelHeight int
	margin      int
	cursorChar  rune
}

func NewFrameRenderer(term *TerminalBuffer, font *TerminalFont, scale float64, log pslog.Logger, now func() time.Time) *FrameRenderer {
	pw, ph, margin := frameGeometry(scale)
	fr := &FrameRenderer{
		term:        term,
		glyphs:      NewGlyphCache(font, now),
		resolver:    NewPaletteResolver(term.Palette()),
		log:         log,
		pixelWidth:  pw,
		pixelHeight: ph,
		margin:      margin,
		cursorChar:  defaultCursorChar,
	}
	fr.surface = NewSurface(fr.Size())
	return fr
}

// Size is the full surface size including the border.
func (fr *FrameRenderer) Size() (int, int) {
	return fr.term.Width()*fr.pixelWidth + fr.margin*2, fr.term.Height()*fr.pixelHeight + fr.margin*2
}

func (fr *FrameRenderer) Surface() *Surface { return fr.surface }

func (fr *FrameRenderer) Glyphs() *GlyphCache { return fr.glyphs }

func (fr *FrameRenderer) Render(st FrameState) {
	attempts, ok := fr.surface.Paint(func(dst *image.RGBA) {
		fr.paint(dst, st)
	})
	fr.reportPaint(attempts, ok)
}

// reportPaint logs repaints; a frame presented while still contested is
// a warning.
func (fr *FrameRenderer) reportPaint(attempts int, ok bool) {
	switch {
	case !ok:
		fr.log.Warn("presented a frame painted over a contested surface", "attempts", attempts)
	case attempts > 1:
		fr.log.Debug("terminal repainted after surface invalidation", "attempts", attempts)
	}
}

func (fr *FrameRenderer) Dispose() {}

func (fr *FrameRenderer) paint(dst *image.RGBA, st FrameState) {
	term := fr.term
	width, height := term.Width(), term.Height()

	dy := 0
	for y := range height {
		textLine := term.Line(y)
		fgLine := term.TextColourLine(y)
		bgLine := term.BackgroundColourLine(y)

		rowH := fr.pixelHeight
		if y == 0 || y == height-1 {
			rowH += fr.margin
		}

		dx := 0
		for x := range width {
			cellW := fr.pixelWidth
			if x == 0 || x == width-1 {
				cellW += fr.margin
			}
			fillRect(dst, image.Rect(dx, dy, dx+cellW, dy+rowH), fr.resolver.ResolveBackground(bgLine, x))

			ch := ' '
			if textLine != nil {
				ch = textLine[x]
			}
			slot := -1
			if fgLine != nil {
				slot = base16ToInt(fgLine[x])
			}
			fr.drawChar(dst, ch, x*fr.pixelWidth+fr.margin, y*fr.pixelHeight+fr.margin, slot)
			dx += cellW
		}
		dy += rowH
	}

	if term.CursorBlink() && (st.BlinkLocked || st.Blink) {
		cx, cy := term.CursorPos()
		if cx >= 0 && cx < width && cy >= 0 && cy < height {
			fr.drawChar(dst, fr.cursorChar, cx*fr.pixelWidth+fr.margin, cy*fr.pixelHeight+fr.margin, term.TextColour())
		}
	}

	if st.Shutdown {
		fr.drawShutdownOverlay(dst)
	}
}

// drawShutdownOverlay centres the shutdown notice on the last row. A
// terminal narrower than the message gets no overlay at all.
func (fr *FrameRenderer) drawShutdownOverlay(dst *image.RGBA) {
	remaining := fr.term.Width() - len(shutdownMessage)
	if remaining < 0 {
		return
	}
	m := fr.margin
	startX := m + remaining*fr.pixelWidth/2
	startY := m + fr.pixelHeight*(fr.term.Height()-1)
	boxW := len(shutdownMessage)*fr.pixelWidth + m*2
	boxH := fr.pixelHeight + m*2

	fillRect(dst, image.Rect(startX, startY-m*2, startX+boxW, startY-m*2+boxH), overlayShadowColour)
	fillRect(dst, image.Rect(startX-m, startY-m, startX-m+boxW, startY-m+boxH), overlayBoxColour)
	for i, ch := range shutdownMessage {
		fr.drawChar(dst, ch, startX+i*fr.pixelWidth, startY, overlayMessageColour)
	}
}

func (fr *FrameRenderer) drawChar(dst *image.RGBA, ch rune, x, y, slot int) {
	if ch == 0 || unicode.IsSpace(ch) {
		return
	}
	colour, ok := fr.resolver.Resolve(slot)
	if !ok {
		return
	}
	tile, err := fr.glyphs.Tile(ch, colour)
	if err != nil {
		fr.log.Error("could not rasterize glyph", "char", string(ch), "err", err)
		return
	}
	draw.NearestNeighbor.Scale(dst, image.Rect(x, y, x+fr.pixelWidth, y+fr.pixelHeight), tile, tile.Bounds(), draw.Over, nil)
}

func fillRect(dst *image.RGBA, r image.Rectangle, c color.RGBA) {
	draw.Draw(dst, r, &image.Uniform{C: c}, image.Point{}, draw.Src)
}
