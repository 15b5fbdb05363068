// video_backend_ebiten_test.go - Tests for the windowed host's key dispatch

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
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func newEbitenHostForTest(t *testing.T) (*EbitenHost, *Emulator, map[int]*fakeComputer, *fakeClock) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.TermScale = 1
	rh, err := newEbitenHostFactory(cfg, newTestLogger(nil))
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	host := rh.(*EbitenHost)
	computers := make(map[int]*fakeComputer)
	emu := NewEmulator(cfg, host, fakeComputerFactory(computers), newTestLogger(nil))
	clock := newFakeClock()
	emu.SetClock(clock)
	emu.Start()
	host.attach(emu)
	if _, err := emu.CreateComputer(); err != nil {
		t.Fatalf("create: %v", err)
	}
	return host, emu, computers, clock
}

func TestEbitenDispatchContinuesAfterHotkey(t *testing.T) {
	host, emu, computers, clock := newEbitenHostForTest(t)
	r := host.Focused()
	shortcut := Modifiers{Ctrl: true, Shift: true}
	r.KeyDown(ebiten.KeyControlLeft, Modifiers{Ctrl: true}, false)
	r.KeyDown(ebiten.KeyShiftLeft, shortcut, false)

	// Ctrl+Shift+N and the Shift release land in the same frame.
	host.dispatchKeys(r, []ebiten.Key{ebiten.KeyN}, []ebiten.Key{ebiten.KeyShiftLeft}, shortcut)
	if got := host.Focused().Instance().ID(); got != 1 {
		t.Fatalf("focus %d, want the new computer", got)
	}
	emu.Step(clock.Advance(tickStep))

	want := []string{"key 29 false", "key 42 false", "key_up 42", "key_up 29"}
	ev := computers[0].events
	if len(ev) != len(want) {
		t.Fatalf("computer 0 events %q, want %q", ev, want)
	}
	for i := range want {
		if ev[i] != want[i] {
			t.Fatalf("computer 0 events %q, want %q", ev, want)
		}
	}
}

func TestEbitenDispatchDeliversKeysAroundHotkey(t *testing.T) {
	host, _, computers, _ := newEbitenHostForTest(t)
	r := host.Focused()
	host.dispatchKeys(r, []ebiten.Key{ebiten.KeyF12, ebiten.KeyB}, []ebiten.Key{ebiten.KeyB}, Modifiers{})
	ev := computers[0].events
	if len(ev) != 2 || ev[0] != "key 48 false" || ev[1] != "key_up 48" {
		t.Fatalf("events %q, want B pressed and released", ev)
	}
}
