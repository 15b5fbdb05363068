// video_host.go - Backend-neutral host state: attached renderers, focus and status

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
	"sync"
	"time"

	"pkt.systems/pslog"
)

// viewConstructor builds the TerminalView a backend paints with.
type viewConstructor func(inst *Instance, term *TerminalBuffer, cfg EmuConfig) (TerminalView, error)

// hostBase keeps the renderers a backend created, in creation order, and
// which one currently has focus. Locking order is instance lock, then mu:
// never take an instance lock while holding mu.
type hostBase struct {
	noConfigEditor

	name    string
	cfg     EmuConfig
	log     pslog.Logger
	clip    ClipboardReader
	newView viewConstructor

	mu         sync.RWMutex
	renderers  []*TerminalRenderer
	focused    int
	showStatus bool
	emu        *Emulator
}

func newHostBase(name string, cfg EmuConfig, log pslog.Logger, newView viewConstructor) *hostBase {
	return &hostBase{
		name:       name,
		cfg:        cfg,
		log:        withRenderer(log, name),
		clip:       systemClipboard,
		newView:    newView,
		showStatus: true,
	}
}

// Create implements RendererFactory. New renderers take focus; the one
// losing it releases its held keys on its next advance, since Create can
// run under that instance's lock (ccemux.openEmu).
func (h *hostBase) Create(inst *Instance, cfg EmuConfig) (Renderer, error) {
	view, err := h.newView(inst, inst.computer.Terminal(), cfg)
	if err != nil {
		return nil, err
	}
	r := newTerminalRenderer(inst, view, cfg, h.clip, withComputer(h.log, inst.ID()))
	h.mu.Lock()
	var prev *TerminalRenderer
	if h.focused >= 0 && h.focused < len(h.renderers) {
		prev = h.renderers[h.focused]
	}
	h.renderers = append(h.renderers, r)
	h.focused = len(h.renderers) - 1
	h.mu.Unlock()

	if prev != nil {
		prev.focusLostLater()
	}
	return r, nil
}

func (h *hostBase) attach(emu *Emulator) {
	h.mu.Lock()
	h.emu = emu
	h.mu.Unlock()
}

// pruneLocked drops disposed renderers, keeping focus on the same
// renderer when it survives.
func (h *hostBase) pruneLocked() {
	var current *TerminalRenderer
	if h.focused >= 0 && h.focused < len(h.renderers) {
		current = h.renderers[h.focused]
	}
	live := h.renderers[:0]
	for _, r := range h.renderers {
		if !r.Disposed() {
			live = append(live, r)
		}
	}
	clear(h.renderers[len(live):])
	h.renderers = live
	h.focused = len(live) - 1
	for i, r := range live {
		if r == current {
			h.focused = i
		}
	}
}

// Focused returns the renderer receiving input, or nil.
func (h *hostBase) Focused() *TerminalRenderer {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pruneLocked()
	if h.focused < 0 || h.focused >= len(h.renderers) {
		return nil
	}
	return h.renderers[h.focused]
}

// Renderers returns the live renderers in creation order.
func (h *hostBase) Renderers() []*TerminalRenderer {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pruneLocked()
	return append([]*TerminalRenderer(nil), h.renderers...)
}

// CycleFocus moves focus by delta, wrapping. The renderer losing focus
// releases its held keys.
func (h *hostBase) CycleFocus(delta int) *TerminalRenderer {
	h.mu.Lock()
	h.pruneLocked()
	n := len(h.renderers)
	if n == 0 {
		h.mu.Unlock()
		return nil
	}
	prev := h.renderers[h.focused]
	h.focused = ((h.focused+delta)%n + n) % n
	next := h.renderers[h.focused]
	h.mu.Unlock()

	if prev != next {
		prev.FocusLost()
		if next.unfocused.Swap(false) {
			next.FocusLost()
		}
		invalidateView(next)
	}
	return next
}

// invalidateView makes an in-flight paint of r start over and forces the
// next step to repaint.
func invalidateView(r *TerminalRenderer) {
	if fr, ok := r.View().(*FrameRenderer); ok {
		fr.Surface().Invalidate()
	}
	r.redraw.Store(true)
}

// NewComputer opens another computer through the attached emulator.
func (h *hostBase) NewComputer() {
	h.mu.RLock()
	emu := h.emu
	h.mu.RUnlock()
	if emu == nil {
		return
	}
	if _, err := emu.CreateComputer(); err != nil {
		h.log.Error("open computer failed", "err", err)
	}
}

// CloseFocused asks the emulator to remove the focused computer.
func (h *hostBase) CloseFocused() {
	if r := h.Focused(); r != nil {
		r.Instance().RequestClose()
	}
}

// CloseAll asks the emulator to remove every computer.
func (h *hostBase) CloseAll() {
	for _, r := range h.Renderers() {
		r.Instance().RequestClose()
	}
}

func (h *hostBase) ToggleStatus() {
	h.mu.Lock()
	h.showStatus = !h.showStatus
	h.mu.Unlock()
}

// hostStatus is what the status bar shows.
type hostStatus struct {
	Renderer  string
	Computers int
	Focused   int
	Title     string
	Ticks     uint64
	Uptime    time.Duration
	Visible   bool
}

func (h *hostBase) status() hostStatus {
	h.mu.Lock()
	h.pruneLocked()
	st := hostStatus{
		Renderer:  h.name,
		Computers: len(h.renderers),
		Focused:   -1,
		Visible:   h.showStatus,
	}
	var focused *TerminalRenderer
	if h.focused >= 0 && h.focused < len(h.renderers) {
		focused = h.renderers[h.focused]
	}
	emu := h.emu
	h.mu.Unlock()

	if focused != nil {
		st.Focused = focused.Instance().ID()
		st.Title = focused.WindowTitle()
	}
	if emu != nil {
		st.Ticks = emu.TicksSinceStart()
		st.Uptime = time.Duration(st.Ticks) * tickStep
	}
	return st
}
