// term_renderer.go - Per-instance renderer: dirty tracking, action keys and input delivery

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
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"pkt.systems/pslog"
)

// blinkLockTime keeps the cursor solid for a moment after typing.
const blinkLockTime = 0.25

// TerminalRenderer is the Renderer attached to one instance. The emulator
// calls OnAdvance with the instance lock held; every input method takes
// that lock itself.
type TerminalRenderer struct {
	inst     *Instance
	computer Computer
	term     *TerminalBuffer
	view     TerminalView
	cfg      EmuConfig
	log      pslog.Logger
	clip     ClipboardReader

	pixelWidth  int
	pixelHeight int
	margin      int

	visible  atomic.Bool
	disposed atomic.Bool
	redraw   atomic.Bool
	// set when focus moved away from a caller that may hold inst.mu;
	// consumed by OnAdvance
	unfocused atomic.Bool

	// guarded by inst.mu
	lastBlink       bool
	lastShutdown    bool
	lastBlinkLocked bool
	blinkLock       float64
	actions         ActionKeys
	keysDown        keyBitset
	lastDrag        image.Point
	hasDrag         bool
}

func newTerminalRenderer(inst *Instance, view TerminalView, cfg EmuConfig, clip ClipboardReader, log pslog.Logger) *TerminalRenderer {
	pw, ph, margin := frameGeometry(cfg.TermScale)
	r := &TerminalRenderer{
		inst:        inst,
		computer:    inst.computer,
		term:        inst.computer.Terminal(),
		view:        view,
		cfg:         cfg,
		log:         log,
		clip:        clip,
		pixelWidth:  pw,
		pixelHeight: ph,
		margin:      margin,
		actions:     newActionKeys(),
	}
	r.redraw.Store(true)
	return r
}

func (r *TerminalRenderer) Instance() *Instance { return r.inst }

func (r *TerminalRenderer) View() TerminalView { return r.view }

func (r *TerminalRenderer) IsVisible() bool { return r.visible.Load() }

func (r *TerminalRenderer) SetVisible(visible bool) {
	if r.visible.Swap(visible) != visible && visible {
		r.redraw.Store(true)
	}
}

// Dispose is called by the emulator with the instance lock held.
func (r *TerminalRenderer) Dispose() {
	if r.disposed.Swap(true) {
		return
	}
	r.visible.Store(false)
	r.view.Dispose()
}

func (r *TerminalRenderer) Disposed() bool { return r.disposed.Load() }

// OnAdvance steps the action timers and repaints when anything visible
// changed since the last paint.
func (r *TerminalRenderer) OnAdvance(dt float64, blink bool) {
	if r.unfocused.Swap(false) {
		r.focusLostLocked(r.computer)
	}
	if r.blinkLock > 0 {
		r.blinkLock -= dt
	}
	if !r.visible.Load() || r.disposed.Load() {
		return
	}

	r.actions.Advance(dt, func(a Action) {
		r.log.Info("action key fired", "action", a.String())
		applyAction(r.computer, a)
	})

	shutdown := !r.computer.IsOn()
	blinkLocked := r.blinkLock > 0
	palette := r.term.Palette()
	dirty := r.redraw.Swap(false) ||
		r.term.Changed() ||
		palette.Changed() ||
		blink != r.lastBlink ||
		shutdown != r.lastShutdown ||
		blinkLocked != r.lastBlinkLocked
	if !dirty {
		return
	}
	r.term.ClearChanged()
	palette.SetChanged(false)
	r.lastBlink = blink
	r.lastShutdown = shutdown
	r.lastBlinkLocked = blinkLocked

	r.view.Render(FrameState{
		DT:          dt,
		Blink:       blink,
		BlinkLocked: blinkLocked,
		Shutdown:    shutdown,
	})
}

// KeyDown handles a key press or repeat.
func (r *TerminalRenderer) KeyDown(key ebiten.Key, mods Modifiers, repeat bool) {
	r.inst.WithLock(func(c Computer) {
		if isPasteStroke(key, mods, r.cfg.NativePaste) {
			r.pasteLocked(c)
			return
		}
		if !r.actions.AnyArmed() {
			if code, ok := translateToCC(key); ok {
				r.keysDown.set(key)
				c.PressKey(code, repeat)
			}
		}
		if mods.Shortcut() {
			switch key {
			case ebiten.KeyS:
				r.actions.Arm(ActionShutdown)
			case ebiten.KeyR:
				r.actions.Arm(ActionReboot)
			case ebiten.KeyT:
				r.actions.Arm(ActionTerminate)
			}
		}
	})
}

// KeyUp cancels the matching action timer; releasing the shortcut
// modifier cancels all of them.
func (r *TerminalRenderer) KeyUp(key ebiten.Key) {
	r.inst.WithLock(func(c Computer) {
		switch key {
		case ebiten.KeyS:
			r.actions.Reset(ActionShutdown)
		case ebiten.KeyR:
			r.actions.Reset(ActionReboot)
		case ebiten.KeyT:
			r.actions.Reset(ActionTerminate)
		}
		if isModifierKey(key) {
			r.actions.ResetAll()
		}
		r.releaseLocked(c, key)
	})
}

func (r *TerminalRenderer) releaseLocked(c Computer, key ebiten.Key) {
	if !r.keysDown.get(key) {
		return
	}
	r.keysDown.clear(key)
	if code, ok := translateToCC(key); ok {
		c.ReleaseKey(code)
	}
}

// CharTyped delivers a printable character.
func (r *TerminalRenderer) CharTyped(ch rune) {
	r.inst.WithLock(func(c Computer) {
		if r.actions.AnyArmed() || !isPrintableChar(ch) {
			return
		}
		r.blinkLock = blinkLockTime
		c.PressChar(ch)
	})
}

// Paste reads the clipboard and delivers a paste event.
func (r *TerminalRenderer) Paste() {
	r.inst.WithLock(r.pasteLocked)
}

func (r *TerminalRenderer) pasteLocked(c Computer) {
	if r.clip == nil {
		return
	}
	raw, err := r.clip()
	if err != nil {
		r.log.Error("clipboard read failed", "err", err)
		return
	}
	if text := pasteText(raw); text != "" {
		c.Paste(text)
	}
}

// cellAt maps a pixel position to a 1-indexed cell inside the grid.
func (r *TerminalRenderer) cellAt(px, py int) image.Point {
	p := mapPointToCC(px, py, r.margin, r.pixelWidth, r.pixelHeight)
	p.X = min(max(p.X, 1), r.term.Width())
	p.Y = min(max(p.Y, 1), r.term.Height())
	return p
}

// CellCentre is the pixel position of the middle of a 1-indexed cell.
func (r *TerminalRenderer) CellCentre(x, y int) (int, int) {
	return r.margin + (x-1)*r.pixelWidth + r.pixelWidth/2, r.margin + (y-1)*r.pixelHeight + r.pixelHeight/2
}

func (r *TerminalRenderer) MouseDown(px, py int, button ebiten.MouseButton) {
	r.inst.WithLock(func(c Computer) {
		p := r.cellAt(px, py)
		r.lastDrag, r.hasDrag = p, true
		c.Click(ccMouseButton(button), p.X, p.Y, false)
	})
}

func (r *TerminalRenderer) MouseUp(px, py int, button ebiten.MouseButton) {
	r.inst.WithLock(func(c Computer) {
		p := r.cellAt(px, py)
		r.hasDrag = false
		c.Click(ccMouseButton(button), p.X, p.Y, true)
	})
}

// MouseDrag reports a drag only when it moves to a new cell.
func (r *TerminalRenderer) MouseDrag(px, py int, button ebiten.MouseButton) {
	r.inst.WithLock(func(c Computer) {
		p := r.cellAt(px, py)
		if r.hasDrag && p == r.lastDrag {
			return
		}
		r.lastDrag, r.hasDrag = p, true
		c.Drag(ccMouseButton(button), p.X, p.Y)
	})
}

// MouseWheel scrolls by one step; positive amounts scroll down.
func (r *TerminalRenderer) MouseWheel(px, py int, amount float64) {
	if amount == 0 {
		return
	}
	r.inst.WithLock(func(c Computer) {
		p := r.cellAt(px, py)
		c.Scroll(wheelDirection(amount), p.X, p.Y)
	})
}

// FocusLost releases every held key and cancels the action timers.
func (r *TerminalRenderer) FocusLost() {
	r.inst.WithLock(r.focusLostLocked)
}

// focusLostLater defers FocusLost to the next advance, for callers that
// may already hold the instance lock.
func (r *TerminalRenderer) focusLostLater() {
	r.unfocused.Store(true)
}

func (r *TerminalRenderer) focusLostLocked(c Computer) {
	for k := ebiten.Key(0); k <= ebiten.KeyMax; k++ {
		r.releaseLocked(c, k)
	}
	r.actions.ResetAll()
	r.hasDrag = false
}

// ActionArmed reports whether the given action combo is held.
func (r *TerminalRenderer) ActionArmed(a Action) bool {
	var armed bool
	r.inst.WithLock(func(Computer) { armed = r.actions.Armed(a) })
	return armed
}

func (r *TerminalRenderer) WindowTitle() string {
	var label string
	r.inst.WithLock(func(c Computer) { label = c.Label() })
	return windowTitle(r.inst.id, label)
}

func windowTitle(id int, label string) string {
	if label == "" {
		return fmt.Sprintf("CCEmuX - Computer #%d", id)
	}
	return fmt.Sprintf("CCEmuX - %s (Computer #%d)", label, id)
}
