// terminal_buffer_test.go - Tests for the terminal text grid

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

import "testing"

func newTerminalBufferForTest(t *testing.T, w, h int) *TerminalBuffer {
	t.Helper()
	tb := NewTerminalBuffer(w, h)
	tb.ClearChanged()
	return tb
}

func checkRowInvariant(t *testing.T, tb *TerminalBuffer) {
	t.Helper()
	for y := 0; y < tb.Height(); y++ {
		if len(tb.Line(y)) != tb.Width() || len(tb.TextColourLine(y)) != tb.Width() || len(tb.BackgroundColourLine(y)) != tb.Width() {
			t.Fatalf("row %d does not have width %d", y, tb.Width())
		}
	}
}

func TestTerminalWriteClipsWithoutWrapping(t *testing.T) {
	tb := newTerminalBufferForTest(t, 5, 2)
	tb.SetCursorPos(3, 0)
	tb.Write("hello")
	if got := string(tb.Line(0)); got != "   he" {
		t.Fatalf("row 0 = %q", got)
	}
	if got := string(tb.Line(1)); got != "     " {
		t.Fatalf("row 1 = %q", got)
	}
	if x, _ := tb.CursorPos(); x != 8 {
		t.Fatalf("cursor x = %d, want 8", x)
	}
	if !tb.Changed() {
		t.Fatal("expected changed")
	}
	checkRowInvariant(t, tb)
}

func TestTerminalWriteUsesCurrentColours(t *testing.T) {
	tb := newTerminalBufferForTest(t, 4, 1)
	tb.SetTextColour(slotRed)
	tb.SetBackgroundColour(11)
	tb.Write("ab")
	if got := string(tb.TextColourLine(0)[:2]); got != "ee" {
		t.Fatalf("fg = %q", got)
	}
	if got := string(tb.BackgroundColourLine(0)[:2]); got != "bb" {
		t.Fatalf("bg = %q", got)
	}
}

func TestTerminalBlit(t *testing.T) {
	tb := newTerminalBufferForTest(t, 4, 1)
	if err := tb.Blit("ab", "0", "ff"); err == nil {
		t.Fatal("expected length mismatch error")
	}
	if err := tb.Blit("ab", "0E", "f?"); err != nil {
		t.Fatalf("blit: %v", err)
	}
	if got := string(tb.TextColourLine(0)[:2]); got != "0e" {
		t.Fatalf("fg = %q", got)
	}
	if got := string(tb.BackgroundColourLine(0)[:2]); got != "ff" {
		t.Fatalf("bg = %q (invalid digit should use current background)", got)
	}
}

func TestTerminalScroll(t *testing.T) {
	tb := newTerminalBufferForTest(t, 3, 3)
	for y, s := range []string{"aaa", "bbb", "ccc"} {
		tb.SetCursorPos(0, y)
		tb.Write(s)
	}
	tb.Scroll(1)
	if string(tb.Line(0)) != "bbb" || string(tb.Line(1)) != "ccc" || string(tb.Line(2)) != "   " {
		t.Fatalf("after scroll up: %q %q %q", string(tb.Line(0)), string(tb.Line(1)), string(tb.Line(2)))
	}
	tb.Scroll(-2)
	if string(tb.Line(0)) != "   " || string(tb.Line(2)) != "bbb" {
		t.Fatalf("after scroll down: %q %q %q", string(tb.Line(0)), string(tb.Line(1)), string(tb.Line(2)))
	}
	checkRowInvariant(t, tb)
}

func TestTerminalWriteWrapped(t *testing.T) {
	tb := newTerminalBufferForTest(t, 3, 2)
	lines := tb.WriteWrapped("abcdef\ng")
	if lines != 2 {
		t.Fatalf("line breaks = %d, want 2", lines)
	}
	if string(tb.Line(0)) != "def" || string(tb.Line(1)) != "g  " {
		t.Fatalf("rows %q %q", string(tb.Line(0)), string(tb.Line(1)))
	}
}

func TestTerminalResizeKeepsInvariant(t *testing.T) {
	tb := newTerminalBufferForTest(t, 3, 3)
	tb.Resize(7, 2)
	if tb.Width() != 7 || tb.Height() != 2 {
		t.Fatalf("size %dx%d", tb.Width(), tb.Height())
	}
	checkRowInvariant(t, tb)
	if tb.Line(2) != nil {
		t.Fatal("expected nil for off-screen row")
	}
}

func TestTerminalResetRestoresPalette(t *testing.T) {
	tb := newTerminalBufferForTest(t, 2, 2)
	tb.Palette().Set(0, 0, 0, 0)
	tb.SetCursorBlink(true)
	tb.Reset()
	if c := tb.Palette().Get(0); c.R == 0 {
		t.Fatal("palette not restored")
	}
	if tb.CursorBlink() {
		t.Fatal("cursor blink not reset")
	}
}
