// term_renderer_test.go - Tests for the per-instance terminal renderer

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
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

var ctrl = Modifiers{Ctrl: true}

func scaleOneConfig() EmuConfig {
	cfg := DefaultConfig()
	cfg.TermScale = 1
	return cfg
}

func takeEvents(c *fakeComputer) []string {
	ev := c.events
	c.events = nil
	return ev
}

func TestRendererDeliversKeys(t *testing.T) {
	r, c, _ := newRendererForTest(t, DefaultConfig())
	r.KeyDown(ebiten.KeyA, Modifiers{}, false)
	r.KeyDown(ebiten.KeyA, Modifiers{}, true)
	r.CharTyped('a')
	r.KeyUp(ebiten.KeyA)
	want := []string{"key 30 false", "key 30 true", "char a", "key_up 30"}
	if got := takeEvents(c); !slices.Equal(got, want) {
		t.Fatalf("events %q, want %q", got, want)
	}
}

func TestRendererUnmappedKeyIgnored(t *testing.T) {
	r, c, _ := newRendererForTest(t, DefaultConfig())
	r.KeyDown(ebiten.KeyF11, Modifiers{}, false)
	r.KeyUp(ebiten.KeyF11)
	if ev := takeEvents(c); len(ev) != 0 {
		t.Fatalf("unexpected events %q", ev)
	}
}

func TestRendererSuppressesInputWhileActionHeld(t *testing.T) {
	r, c, _ := newRendererForTest(t, DefaultConfig())
	r.KeyDown(ebiten.KeyControlLeft, ctrl, false)
	r.KeyDown(ebiten.KeyT, ctrl, false)
	if !r.ActionArmed(ActionTerminate) {
		t.Fatal("Ctrl+T did not arm terminate")
	}
	takeEvents(c)

	r.KeyDown(ebiten.KeyA, ctrl, false)
	r.CharTyped('a')
	if ev := takeEvents(c); len(ev) != 0 {
		t.Fatalf("input delivered while combo held: %q", ev)
	}

	r.KeyUp(ebiten.KeyControlLeft)
	if r.ActionArmed(ActionTerminate) {
		t.Fatal("releasing Ctrl left terminate armed")
	}
	r.KeyDown(ebiten.KeyA, Modifiers{}, false)
	r.CharTyped('a')
	ev := takeEvents(c)
	if !slices.Contains(ev, "key 30 false") || !slices.Contains(ev, "char a") {
		t.Fatalf("delivery not restored after modifier release: %q", ev)
	}
}

func TestRendererReleasingComboKeyResetsOnlyThatAction(t *testing.T) {
	r, _, _ := newRendererForTest(t, DefaultConfig())
	r.KeyDown(ebiten.KeyS, ctrl, false)
	r.KeyDown(ebiten.KeyR, ctrl, false)
	r.KeyUp(ebiten.KeyS)
	if r.ActionArmed(ActionShutdown) || !r.ActionArmed(ActionReboot) {
		t.Fatal("releasing S should only cancel shutdown")
	}
}

func TestRendererRebootFiresAfterHold(t *testing.T) {
	r, c, _ := newRendererForTest(t, DefaultConfig())
	r.KeyDown(ebiten.KeyR, ctrl, false)
	for range 9 {
		r.inst.WithLock(func(Computer) { r.OnAdvance(0.05, true) })
	}
	if c.reboots != 0 {
		t.Fatal("rebooted before the hold threshold")
	}
	for range 5 {
		r.inst.WithLock(func(Computer) { r.OnAdvance(0.05, true) })
	}
	if c.reboots != 1 {
		t.Fatalf("reboots=%d, want 1", c.reboots)
	}
}

func TestRendererShutdownThenRebootTurnsOn(t *testing.T) {
	r, c, v := newRendererForTest(t, DefaultConfig())
	c.on = false
	r.KeyDown(ebiten.KeyR, ctrl, false)
	for range 10 {
		r.OnAdvance(0.05, true)
	}
	if c.turnOns != 1 || !c.IsOn() {
		t.Fatalf("turnOns=%d on=%v", c.turnOns, c.IsOn())
	}
	if v.last.Shutdown {
		t.Fatal("frame still shows the shutdown overlay")
	}
}

func TestRendererRendersOnlyWhenDirty(t *testing.T) {
	r, c, v := newRendererForTest(t, DefaultConfig())
	r.OnAdvance(0.05, true)
	if v.renders != 1 {
		t.Fatalf("first advance renders=%d, want 1", v.renders)
	}
	r.OnAdvance(0.05, true)
	if v.renders != 1 {
		t.Fatal("rendered without any change")
	}
	c.term.Write("x")
	r.OnAdvance(0.05, true)
	if v.renders != 2 {
		t.Fatal("terminal change did not render")
	}
	r.OnAdvance(0.05, false)
	if v.renders != 3 || v.last.Blink {
		t.Fatalf("blink change: renders=%d blink=%v", v.renders, v.last.Blink)
	}
	c.term.Palette().Set(3, 1, 0, 0)
	r.OnAdvance(0.05, false)
	if v.renders != 4 {
		t.Fatal("palette change did not render")
	}
	c.on = false
	r.OnAdvance(0.05, false)
	if v.renders != 5 || !v.last.Shutdown {
		t.Fatal("power change did not render the overlay")
	}
}

func TestRendererHiddenSkipsRender(t *testing.T) {
	r, _, v := newRendererForTest(t, DefaultConfig())
	r.SetVisible(false)
	r.OnAdvance(0.05, true)
	if v.renders != 0 {
		t.Fatal("hidden renderer painted")
	}
	r.SetVisible(true)
	r.OnAdvance(0.05, true)
	if v.renders != 1 {
		t.Fatal("becoming visible did not force a paint")
	}
}

func TestRendererBlinkLockAfterTyping(t *testing.T) {
	r, _, v := newRendererForTest(t, DefaultConfig())
	r.CharTyped('q')
	r.OnAdvance(0.05, false)
	if !v.last.BlinkLocked {
		t.Fatal("cursor not locked after typing")
	}
	for range 5 {
		r.OnAdvance(0.05, false)
	}
	if v.last.BlinkLocked {
		t.Fatal("blink lock did not expire")
	}
}

func TestRendererDropsUnprintableChars(t *testing.T) {
	r, c, _ := newRendererForTest(t, DefaultConfig())
	r.CharTyped('\a')
	r.CharTyped(0xFFFD)
	if ev := takeEvents(c); len(ev) != 0 {
		t.Fatalf("unprintable chars delivered: %q", ev)
	}
}

func TestRendererMouseMapping(t *testing.T) {
	r, c, _ := newRendererForTest(t, scaleOneConfig())
	r.MouseDown(5, 6, ebiten.MouseButtonLeft)
	r.MouseDrag(7, 8, ebiten.MouseButtonLeft)
	r.MouseDrag(14, 6, ebiten.MouseButtonLeft)
	r.MouseDrag(15, 7, ebiten.MouseButtonLeft)
	r.MouseUp(14, 6, ebiten.MouseButtonLeft)
	r.MouseDown(-40, 5000, ebiten.MouseButtonRight)
	want := []string{
		"mouse_click 1 1 1",
		"mouse_drag 1 3 1",
		"mouse_up 1 3 1",
		"mouse_click 2 1 19",
	}
	if got := takeEvents(c); !slices.Equal(got, want) {
		t.Fatalf("events %q, want %q", got, want)
	}
}

func TestRendererMouseWheel(t *testing.T) {
	r, c, _ := newRendererForTest(t, scaleOneConfig())
	r.MouseWheel(5, 6, 1)
	r.MouseWheel(5, 6, -2.5)
	r.MouseWheel(5, 6, 0)
	want := []string{"mouse_scroll 1 1 1", "mouse_scroll -1 1 1"}
	if got := takeEvents(c); !slices.Equal(got, want) {
		t.Fatalf("events %q, want %q", got, want)
	}
}

func TestRendererCellCentreRoundTrips(t *testing.T) {
	r, _, _ := newRendererForTest(t, DefaultConfig())
	px, py := r.CellCentre(7, 4)
	if p := r.cellAt(px, py); p.X != 7 || p.Y != 4 {
		t.Fatalf("cell %v, want (7,4)", p)
	}
}

func TestRendererFocusLostReleasesKeys(t *testing.T) {
	r, c, _ := newRendererForTest(t, DefaultConfig())
	r.KeyDown(ebiten.KeyA, Modifiers{}, false)
	r.KeyDown(ebiten.KeyControlLeft, ctrl, false)
	r.KeyDown(ebiten.KeyS, ctrl, false)
	takeEvents(c)

	r.FocusLost()
	ev := takeEvents(c)
	if !slices.Contains(ev, "key_up 30") || !slices.Contains(ev, "key_up 29") {
		t.Fatalf("held keys not released: %q", ev)
	}
	if r.ActionArmed(ActionShutdown) {
		t.Fatal("focus loss left shutdown armed")
	}
	r.KeyUp(ebiten.KeyA)
	if ev := takeEvents(c); len(ev) != 0 {
		t.Fatalf("duplicate release %q", ev)
	}
}

func TestRendererPaste(t *testing.T) {
	r, c, _ := newRendererForTest(t, DefaultConfig())
	r.clip = func() (string, error) { return "hello\tthere\nsecond line", nil }
	r.KeyDown(ebiten.KeyV, ctrl, false)
	if got := takeEvents(c); !slices.Equal(got, []string{"paste hellothere"}) {
		t.Fatalf("events %q", got)
	}
}

func TestRendererNativePasteStroke(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NativePaste = true
	r, c, _ := newRendererForTest(t, cfg)
	r.clip = func() (string, error) { return "abc", nil }
	r.KeyDown(ebiten.KeyInsert, Modifiers{Shift: true}, false)
	if got := takeEvents(c); !slices.Equal(got, []string{"paste abc"}) {
		t.Fatalf("events %q", got)
	}
}

func TestRendererPasteErrorLogged(t *testing.T) {
	r, c, _ := newRendererForTest(t, DefaultConfig())
	capture := &logCapture{}
	r.log = newTestLogger(capture)
	r.clip = func() (string, error) { return "", errors.New("no display") }
	r.Paste()
	if ev := takeEvents(c); len(ev) != 0 {
		t.Fatalf("paste delivered despite error: %q", ev)
	}
	if !strings.Contains(capture.String(), "clipboard read failed") {
		t.Fatalf("error not logged: %q", capture.String())
	}
}

func TestRendererDispose(t *testing.T) {
	r, _, v := newRendererForTest(t, DefaultConfig())
	r.Dispose()
	r.Dispose()
	if !v.disposed || r.IsVisible() || !r.Disposed() {
		t.Fatal("dispose did not hide and release the view")
	}
	r.OnAdvance(0.05, true)
	if v.renders != 0 {
		t.Fatal("disposed renderer painted")
	}
}

func TestWindowTitle(t *testing.T) {
	if got := windowTitle(3, ""); got != "CCEmuX - Computer #3" {
		t.Fatalf("title %q", got)
	}
	if got := windowTitle(3, "turtle"); got != "CCEmuX - turtle (Computer #3)" {
		t.Fatalf("title %q", got)
	}
}
