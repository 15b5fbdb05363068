// emulator_helpers_test.go - Shared fakes for emulator, renderer and host tests

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
	"bytes"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"pkt.systems/pslog"
)

func newTestLogger(w io.Writer) pslog.Logger {
	if w == nil {
		w = io.Discard
	}
	return pslog.NewWithOptions(w, pslog.Options{
		Mode:          pslog.ModeStructured,
		NoColor:       true,
		MinLevel:      pslog.DebugLevel,
		VerboseFields: true,
	})
}

// fakeClock is a manually advanced Clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// fakeComputer records every call made by the emulator and renderers.
type fakeComputer struct {
	id    int
	label string
	term  *TerminalBuffer
	on    bool

	advances  []float64
	events    []string
	shutdowns int
	reboots   int
	turnOns   int
	terms     int

	onAdvance func(dt float64)
}

func newFakeComputer(id int, term *TerminalBuffer) *fakeComputer {
	return &fakeComputer{id: id, term: term}
}

func (c *fakeComputer) ID() int                   { return c.id }
func (c *fakeComputer) Label() string             { return c.label }
func (c *fakeComputer) Terminal() *TerminalBuffer { return c.term }
func (c *fakeComputer) IsOn() bool                { return c.on }

func (c *fakeComputer) Advance(dt float64) {
	c.advances = append(c.advances, dt)
	if c.onAdvance != nil {
		c.onAdvance(dt)
	}
}

func (c *fakeComputer) TurnOn()   { c.on = true; c.turnOns++ }
func (c *fakeComputer) Shutdown() { c.on = false; c.shutdowns++ }
func (c *fakeComputer) Reboot()   { c.reboots++ }
func (c *fakeComputer) Terminate() {
	c.terms++
	c.events = append(c.events, "terminate")
}

func (c *fakeComputer) PressKey(code int, repeat bool) {
	c.events = append(c.events, fmt.Sprintf("key %d %v", code, repeat))
}
func (c *fakeComputer) ReleaseKey(code int) {
	c.events = append(c.events, fmt.Sprintf("key_up %d", code))
}
func (c *fakeComputer) PressChar(ch rune) {
	c.events = append(c.events, fmt.Sprintf("char %c", ch))
}
func (c *fakeComputer) Paste(text string) {
	c.events = append(c.events, "paste "+text)
}
func (c *fakeComputer) Click(button, x, y int, release bool) {
	name := "mouse_click"
	if release {
		name = "mouse_up"
	}
	c.events = append(c.events, fmt.Sprintf("%s %d %d %d", name, button, x, y))
}
func (c *fakeComputer) Drag(button, x, y int) {
	c.events = append(c.events, fmt.Sprintf("mouse_drag %d %d %d", button, x, y))
}
func (c *fakeComputer) Scroll(dir, x, y int) {
	c.events = append(c.events, fmt.Sprintf("mouse_scroll %d %d %d", dir, x, y))
}

// recordingView counts renders and keeps the last frame state.
type recordingView struct {
	renders  int
	last     FrameState
	disposed bool
}

func (v *recordingView) Render(st FrameState) { v.renders++; v.last = st }
func (v *recordingView) Dispose()             { v.disposed = true }

// testFactory builds TerminalRenderers over recordingViews.
type testFactory struct {
	noConfigEditor
	mu        sync.Mutex
	renderers map[int]*TerminalRenderer
	views     map[int]*recordingView
	clip      ClipboardReader
	fail      error
}

func newTestFactory() *testFactory {
	return &testFactory{
		renderers: make(map[int]*TerminalRenderer),
		views:     make(map[int]*recordingView),
	}
}

func (f *testFactory) Create(inst *Instance, cfg EmuConfig) (Renderer, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	v := &recordingView{}
	r := newTerminalRenderer(inst, v, cfg, f.clip, newTestLogger(nil))
	f.mu.Lock()
	f.renderers[inst.ID()] = r
	f.views[inst.ID()] = v
	f.mu.Unlock()
	return r, nil
}

func (f *testFactory) renderer(t *testing.T, id int) *TerminalRenderer {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.renderers[id]
	if !ok {
		t.Fatalf("no renderer for computer %d", id)
	}
	return r
}

func fakeComputerFactory(computers map[int]*fakeComputer) ComputerFactory {
	var mu sync.Mutex
	return func(id int, term *TerminalBuffer, cfg EmuConfig, host ComputerHost, log pslog.Logger) (Computer, error) {
		c := newFakeComputer(id, term)
		mu.Lock()
		computers[id] = c
		mu.Unlock()
		return c, nil
	}
}

func newEmulatorForTest(t *testing.T) (*Emulator, *testFactory, map[int]*fakeComputer, *fakeClock) {
	t.Helper()
	computers := make(map[int]*fakeComputer)
	factory := newTestFactory()
	emu := NewEmulator(DefaultConfig(), factory, fakeComputerFactory(computers), newTestLogger(nil))
	clock := newFakeClock()
	emu.SetClock(clock)
	return emu, factory, computers, clock
}

// newRendererForTest wires a renderer to a fake computer outside any emulator.
func newRendererForTest(t *testing.T, cfg EmuConfig) (*TerminalRenderer, *fakeComputer, *recordingView) {
	t.Helper()
	term := NewTerminalBuffer(cfg.TermWidth, cfg.TermHeight)
	c := newFakeComputer(0, term)
	c.on = true
	inst := &Instance{id: 0, computer: c, closeRequests: make(chan int, 4), done: make(chan struct{})}
	v := &recordingView{}
	r := newTerminalRenderer(inst, v, cfg, nil, newTestLogger(nil))
	inst.renderer = r
	r.SetVisible(true)
	return r, c, v
}

type logCapture struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (c *logCapture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

func (c *logCapture) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}
