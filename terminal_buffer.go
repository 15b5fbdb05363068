// terminal_buffer.go - Character grid, colour rows and cursor state for one computer

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
	"unicode/utf8"
)

// TerminalBuffer is the text surface a computer draws into. Text is stored
// per row as runes; colours as base-16 digit bytes indexing the palette.
// Every row always has exactly width entries.
//
// The buffer is not safe for concurrent use; callers serialize access with
// the owning instance's lock.
type TerminalBuffer struct {
	width  int
	height int
	text   [][]rune
	fg     [][]byte
	bg     [][]byte

	cursorX     int
	cursorY     int
	cursorBlink bool
	textColour  int
	bgColour    int

	palette *Palette
	changed bool
}

func NewTerminalBuffer(width, height int) *TerminalBuffer {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	tb := &TerminalBuffer{
		width:   width,
		height:  height,
		palette: NewPalette(),
	}
	tb.Reset()
	return tb
}

func (tb *TerminalBuffer) Width() int  { return tb.width }
func (tb *TerminalBuffer) Height() int { return tb.height }

func (tb *TerminalBuffer) Palette() *Palette { return tb.palette }

// Line returns row y's characters, or nil when y is off-screen.
func (tb *TerminalBuffer) Line(y int) []rune {
	if y < 0 || y >= tb.height {
		return nil
	}
	return tb.text[y]
}

func (tb *TerminalBuffer) TextColourLine(y int) []byte {
	if y < 0 || y >= tb.height {
		return nil
	}
	return tb.fg[y]
}

func (tb *TerminalBuffer) BackgroundColourLine(y int) []byte {
	if y < 0 || y >= tb.height {
		return nil
	}
	return tb.bg[y]
}

func (tb *TerminalBuffer) CursorPos() (x, y int) {
	return tb.cursorX, tb.cursorY
}

// SetCursorPos moves the cursor. Off-screen positions are allowed; writes
// there are clipped.
func (tb *TerminalBuffer) SetCursorPos(x, y int) {
	if x == tb.cursorX && y == tb.cursorY {
		return
	}
	tb.cursorX, tb.cursorY = x, y
	tb.changed = true
}

func (tb *TerminalBuffer) CursorBlink() bool { return tb.cursorBlink }

func (tb *TerminalBuffer) SetCursorBlink(blink bool) {
	if tb.cursorBlink != blink {
		tb.cursorBlink = blink
		tb.changed = true
	}
}

func (tb *TerminalBuffer) TextColour() int { return tb.textColour }

func (tb *TerminalBuffer) SetTextColour(slot int) {
	if slot < 0 || slot >= paletteSize || slot == tb.textColour {
		return
	}
	tb.textColour = slot
	tb.changed = true
}

func (tb *TerminalBuffer) BackgroundColour() int { return tb.bgColour }

func (tb *TerminalBuffer) SetBackgroundColour(slot int) {
	if slot < 0 || slot >= paletteSize {
		return
	}
	tb.bgColour = slot
}

// Write places s at the cursor using the current colours and advances the
// cursor by the number of runes written. Nothing wraps.
func (tb *TerminalBuffer) Write(s string) {
	fg := intToBase16(tb.textColour)
	bg := intToBase16(tb.bgColour)
	x := tb.cursorX
	for _, r := range s {
		tb.setCell(x, tb.cursorY, r, fg, bg)
		x++
	}
	tb.cursorX = x
	tb.changed = true
}

// Blit writes text with explicit per-cell colours. All three strings must
// have the same length.
func (tb *TerminalBuffer) Blit(text, fg, bg string) error {
	n := utf8.RuneCountInString(text)
	if n != len(fg) || n != len(bg) {
		return fmt.Errorf("blit: arguments must be the same length (%d, %d, %d)", n, len(fg), len(bg))
	}
	x := tb.cursorX
	i := 0
	for _, r := range text {
		fc, bc := fg[i], bg[i]
		if base16ToInt(fc) < 0 {
			fc = intToBase16(tb.textColour)
		}
		if base16ToInt(bc) < 0 {
			bc = intToBase16(tb.bgColour)
		}
		tb.setCell(x, tb.cursorY, r, lowerASCII(fc), lowerASCII(bc))
		x++
		i++
	}
	tb.cursorX = x
	tb.changed = true
	return nil
}

func (tb *TerminalBuffer) setCell(x, y int, r rune, fg, bg byte) {
	if x < 0 || x >= tb.width || y < 0 || y >= tb.height {
		return
	}
	tb.text[y][x] = r
	tb.fg[y][x] = fg
	tb.bg[y][x] = bg
}

// Clear blanks every row with the current background colour.
func (tb *TerminalBuffer) Clear() {
	for y := range tb.height {
		tb.blankRow(y)
	}
	tb.changed = true
}

// ClearLine blanks the cursor's row.
func (tb *TerminalBuffer) ClearLine() {
	if tb.cursorY < 0 || tb.cursorY >= tb.height {
		return
	}
	tb.blankRow(tb.cursorY)
	tb.changed = true
}

func (tb *TerminalBuffer) blankRow(y int) {
	fg := intToBase16(tb.textColour)
	bg := intToBase16(tb.bgColour)
	for x := range tb.width {
		tb.text[y][x] = ' '
		tb.fg[y][x] = fg
		tb.bg[y][x] = bg
	}
}

// Scroll moves content up by n rows (down when n is negative); exposed rows
// are blanked.
func (tb *TerminalBuffer) Scroll(n int) {
	if n == 0 {
		return
	}
	text := make([][]rune, tb.height)
	fg := make([][]byte, tb.height)
	bg := make([][]byte, tb.height)
	for y := range tb.height {
		src := y + n
		if src >= 0 && src < tb.height {
			text[y], fg[y], bg[y] = tb.text[src], tb.fg[src], tb.bg[src]
			continue
		}
		text[y] = make([]rune, tb.width)
		fg[y] = make([]byte, tb.width)
		bg[y] = make([]byte, tb.width)
	}
	tb.text, tb.fg, tb.bg = text, fg, bg
	for y := range tb.height {
		if src := y + n; src < 0 || src >= tb.height {
			tb.blankRow(y)
		}
	}
	tb.changed = true
}

// Reset restores the power-on state: default colours and palette, cursor
// at the origin, blink off, blank screen.
func (tb *TerminalBuffer) Reset() {
	tb.cursorX, tb.cursorY = 0, 0
	tb.cursorBlink = false
	tb.textColour = slotWhite
	tb.bgColour = slotBlack
	tb.palette.Reset()
	tb.allocate()
	tb.changed = true
}

// Resize changes the grid size and clears it.
func (tb *TerminalBuffer) Resize(width, height int) {
	if width < 1 || height < 1 || (width == tb.width && height == tb.height) {
		return
	}
	tb.width, tb.height = width, height
	tb.allocate()
	tb.changed = true
}

func (tb *TerminalBuffer) allocate() {
	tb.text = make([][]rune, tb.height)
	tb.fg = make([][]byte, tb.height)
	tb.bg = make([][]byte, tb.height)
	for y := range tb.height {
		tb.text[y] = make([]rune, tb.width)
		tb.fg[y] = make([]byte, tb.width)
		tb.bg[y] = make([]byte, tb.width)
		tb.blankRow(y)
	}
}

func (tb *TerminalBuffer) Changed() bool { return tb.changed }

func (tb *TerminalBuffer) ClearChanged() { tb.changed = false }

// newline moves the cursor to the start of the next row, scrolling when it
// would leave the screen.
func (tb *TerminalBuffer) newline() {
	tb.cursorX = 0
	if tb.cursorY+1 >= tb.height {
		tb.Scroll(1)
		tb.cursorY = tb.height - 1
	} else {
		tb.cursorY++
	}
	tb.changed = true
}

// WriteWrapped writes s, wrapping at the right edge and honouring '\n'.
// Returns the number of line breaks taken.
func (tb *TerminalBuffer) WriteWrapped(s string) int {
	lines := 0
	for _, r := range s {
		if r == '\n' {
			tb.newline()
			lines++
			continue
		}
		if tb.cursorX >= tb.width {
			tb.newline()
			lines++
		}
		tb.Write(string(r))
	}
	return lines
}
