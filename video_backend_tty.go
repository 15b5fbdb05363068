// video_backend_tty.go - Console renderer host on tcell for running computers inside a terminal

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
	"context"
	"os"
	"sync"
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/term"
	"pkt.systems/pslog"
)

// ttyReleaseMargin is added to the action dwell before a synthetic key
// release, since terminals never report releases.
const ttyReleaseMargin = 150 * time.Millisecond

var ttyLetterKeys = [26]ebiten.Key{
	ebiten.KeyA, ebiten.KeyB, ebiten.KeyC, ebiten.KeyD, ebiten.KeyE, ebiten.KeyF, ebiten.KeyG,
	ebiten.KeyH, ebiten.KeyI, ebiten.KeyJ, ebiten.KeyK, ebiten.KeyL, ebiten.KeyM, ebiten.KeyN,
	ebiten.KeyO, ebiten.KeyP, ebiten.KeyQ, ebiten.KeyR, ebiten.KeyS, ebiten.KeyT, ebiten.KeyU,
	ebiten.KeyV, ebiten.KeyW, ebiten.KeyX, ebiten.KeyY, ebiten.KeyZ,
}

var ttyDigitKeys = [10]ebiten.Key{
	ebiten.KeyDigit0, ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4,
	ebiten.KeyDigit5, ebiten.KeyDigit6, ebiten.KeyDigit7, ebiten.KeyDigit8, ebiten.KeyDigit9,
}

var ttyRuneKeys = map[rune]ebiten.Key{
	' ': ebiten.KeySpace, '-': ebiten.KeyMinus, '=': ebiten.KeyEqual,
	'[': ebiten.KeyBracketLeft, ']': ebiten.KeyBracketRight, ';': ebiten.KeySemicolon,
	'\'': ebiten.KeyQuote, '`': ebiten.KeyBackquote, '\\': ebiten.KeyBackslash,
	',': ebiten.KeyComma, '.': ebiten.KeyPeriod, '/': ebiten.KeySlash,
}

var ttySpecialKeys = map[tcell.Key]ebiten.Key{
	tcell.KeyEnter:      ebiten.KeyEnter,
	tcell.KeyTab:        ebiten.KeyTab,
	tcell.KeyBackspace:  ebiten.KeyBackspace,
	tcell.KeyBackspace2: ebiten.KeyBackspace,
	tcell.KeyEscape:     ebiten.KeyEscape,
	tcell.KeyUp:         ebiten.KeyArrowUp,
	tcell.KeyDown:       ebiten.KeyArrowDown,
	tcell.KeyLeft:       ebiten.KeyArrowLeft,
	tcell.KeyRight:      ebiten.KeyArrowRight,
	tcell.KeyHome:       ebiten.KeyHome,
	tcell.KeyEnd:        ebiten.KeyEnd,
	tcell.KeyPgUp:       ebiten.KeyPageUp,
	tcell.KeyPgDn:       ebiten.KeyPageDown,
	tcell.KeyInsert:     ebiten.KeyInsert,
	tcell.KeyDelete:     ebiten.KeyDelete,
	tcell.KeyF1:         ebiten.KeyF1,
	tcell.KeyF2:         ebiten.KeyF2,
	tcell.KeyF3:         ebiten.KeyF3,
	tcell.KeyF4:         ebiten.KeyF4,
	tcell.KeyF5:         ebiten.KeyF5,
	tcell.KeyF6:         ebiten.KeyF6,
	tcell.KeyF7:         ebiten.KeyF7,
	tcell.KeyF8:         ebiten.KeyF8,
	tcell.KeyF9:         ebiten.KeyF9,
	tcell.KeyF10:        ebiten.KeyF10,
	tcell.KeyF11:        ebiten.KeyF11,
	tcell.KeyF12:        ebiten.KeyF12,
}

// ttyKey is a decoded terminal key event.
type ttyKey struct {
	key    ebiten.Key
	mapped bool
	ch     rune
	mods   Modifiers
}

// decodeTTYKey maps a tcell key event onto the host key model.
func decodeTTYKey(ev *tcell.EventKey) ttyKey {
	m := ev.Modifiers()
	k := ttyKey{mods: Modifiers{
		Ctrl:  m&tcell.ModCtrl != 0,
		Shift: m&tcell.ModShift != 0,
		Alt:   m&tcell.ModAlt != 0,
		Meta:  m&tcell.ModMeta != 0,
	}}
	if key, ok := ttySpecialKeys[ev.Key()]; ok {
		k.key, k.mapped = key, true
		return k
	}
	if ev.Key() >= tcell.KeyCtrlA && ev.Key() <= tcell.KeyCtrlZ {
		k.key, k.mapped = ttyLetterKeys[ev.Key()-tcell.KeyCtrlA], true
		k.mods.Ctrl = true
		return k
	}
	if ev.Key() != tcell.KeyRune {
		return k
	}
	r := ev.Rune()
	lower := unicode.ToLower(r)
	switch {
	case lower >= 'a' && lower <= 'z':
		k.key, k.mapped = ttyLetterKeys[lower-'a'], true
		if r != lower {
			k.mods.Shift = true
		}
	case r >= '0' && r <= '9':
		k.key, k.mapped = ttyDigitKeys[r-'0'], true
	default:
		k.key, k.mapped = ttyRuneKeys[r]
	}
	if !k.mods.Ctrl && !k.mods.Alt {
		k.ch = r
	}
	return k
}

// TTYHost draws the focused computer with terminal cells instead of pixels.
type TTYHost struct {
	*hostBase
	screen tcell.Screen

	tmu      sync.Mutex
	releases map[ebiten.Key]*time.Timer

	buttons tcell.ButtonMask
}

func newTTYHostFactory(cfg EmuConfig, log pslog.Logger) (RendererHost, error) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return nil, &RenderError{Operation: "init", Details: "tty renderer needs a terminal on stdout"}
	}
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, &RenderError{Operation: "init", Details: "open terminal", Err: err}
	}
	return NewTTYHost(screen, cfg, log)
}

// NewTTYHost initializes screen and builds a host drawing into it.
func NewTTYHost(screen tcell.Screen, cfg EmuConfig, log pslog.Logger) (*TTYHost, error) {
	if err := screen.Init(); err != nil {
		return nil, &RenderError{Operation: "init", Details: "initialize terminal", Err: err}
	}
	h := &TTYHost{screen: screen, releases: make(map[ebiten.Key]*time.Timer)}
	h.hostBase = newHostBase("tty", cfg, log, h.newView)
	h.showStatus = false
	return h, nil
}

func (h *TTYHost) newView(inst *Instance, term *TerminalBuffer, cfg EmuConfig) (TerminalView, error) {
	return &cellView{
		screen:   h.screen,
		term:     term,
		resolver: NewPaletteResolver(term.Palette()),
		focused: func() bool {
			r := h.Focused()
			return r != nil && r.Instance() == inst
		},
	}, nil
}

// Run polls terminal events until the emulator stops or ctx ends.
func (h *TTYHost) Run(ctx context.Context, emu *Emulator) error {
	h.attach(emu)
	h.screen.EnableMouse()
	h.screen.EnableFocus()
	defer h.shutdown()

	events := make(chan tcell.Event, 16)
	go func() {
		defer close(events)
		for {
			ev := h.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-emu.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			h.handleEvent(ev)
		}
	}
}

func (h *TTYHost) shutdown() {
	h.tmu.Lock()
	for k, t := range h.releases {
		t.Stop()
		delete(h.releases, k)
	}
	h.tmu.Unlock()
	h.screen.Fini()
}

func (h *TTYHost) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		h.handleKey(ev)
	case *tcell.EventMouse:
		h.handleMouse(ev)
	case *tcell.EventFocus:
		if !ev.Focused {
			if r := h.Focused(); r != nil {
				r.FocusLost()
			}
		}
	case *tcell.EventResize:
		h.screen.Clear()
		if r := h.Focused(); r != nil {
			r.redraw.Store(true)
		}
	}
}

func (h *TTYHost) hotkey(k ttyKey) bool {
	if !k.mods.Ctrl || !k.mods.Shift || !k.mapped {
		return false
	}
	switch k.key {
	case ebiten.KeyN:
		h.NewComputer()
	case ebiten.KeyW:
		h.CloseFocused()
	case ebiten.KeyQ:
		h.CloseAll()
	case ebiten.KeyArrowLeft:
		h.CycleFocus(-1)
	case ebiten.KeyArrowRight:
		h.CycleFocus(1)
	default:
		return false
	}
	return true
}

func (h *TTYHost) handleKey(ev *tcell.EventKey) {
	k := decodeTTYKey(ev)
	if h.hotkey(k) {
		return
	}
	r := h.Focused()
	if r == nil {
		return
	}
	if k.mapped {
		r.KeyDown(k.key, k.mods, false)
	}
	if k.ch != 0 {
		r.CharTyped(k.ch)
	}
	if !k.mapped {
		return
	}
	if k.mods.Shortcut() && isActionKey(k.key) {
		h.releaseLater(r, k.key)
		return
	}
	r.KeyUp(k.key)
}

func isActionKey(key ebiten.Key) bool {
	return key == ebiten.KeyS || key == ebiten.KeyR || key == ebiten.KeyT
}

// releaseLater synthesizes the release of an action key once the hold
// would have fired. Repeats push the release further out.
func (h *TTYHost) releaseLater(r *TerminalRenderer, key ebiten.Key) {
	h.tmu.Lock()
	defer h.tmu.Unlock()
	if t, ok := h.releases[key]; ok {
		t.Stop()
	}
	h.releases[key] = time.AfterFunc(actionThreshold+ttyReleaseMargin, func() {
		h.tmu.Lock()
		delete(h.releases, key)
		h.tmu.Unlock()
		r.KeyUp(key)
	})
}

func (h *TTYHost) handleMouse(ev *tcell.EventMouse) {
	r := h.Focused()
	if r == nil {
		return
	}
	cx, cy := ev.Position()
	px, py := r.CellCentre(cx+1, cy+1)
	buttons := ev.Buttons()

	switch {
	case buttons&tcell.WheelUp != 0:
		r.MouseWheel(px, py, -1)
		return
	case buttons&tcell.WheelDown != 0:
		r.MouseWheel(px, py, 1)
		return
	}

	for _, b := range []struct {
		mask   tcell.ButtonMask
		button ebiten.MouseButton
	}{
		{tcell.Button1, ebiten.MouseButtonLeft},
		{tcell.Button2, ebiten.MouseButtonRight},
		{tcell.Button3, ebiten.MouseButtonMiddle},
	} {
		was := h.buttons&b.mask != 0
		now := buttons&b.mask != 0
		switch {
		case now && !was:
			r.MouseDown(px, py, b.button)
		case !now && was:
			r.MouseUp(px, py, b.button)
		case now:
			r.MouseDrag(px, py, b.button)
		}
	}
	h.buttons = buttons & (tcell.Button1 | tcell.Button2 | tcell.Button3)
}

// cellView paints a terminal into tcell cells, one cell per character.
type cellView struct {
	screen   tcell.Screen
	term     *TerminalBuffer
	resolver PaletteResolver
	focused  func() bool
}

func (v *cellView) style(fg, bg int) tcell.Style {
	f, _ := v.resolver.Resolve(fg)
	b, _ := v.resolver.Resolve(bg)
	return tcell.StyleDefault.
		Foreground(tcell.NewRGBColor(int32(f.R), int32(f.G), int32(f.B))).
		Background(tcell.NewRGBColor(int32(b.R), int32(b.G), int32(b.B)))
}

func (v *cellView) Render(st FrameState) {
	if v.focused != nil && !v.focused() {
		return
	}
	t := v.term
	for y := 0; y < t.Height(); y++ {
		text, fg, bg := t.Line(y), t.TextColourLine(y), t.BackgroundColourLine(y)
		for x := 0; x < t.Width(); x++ {
			fslot, bslot := slotBlack, slotBlack
			if fg != nil && x < len(fg) {
				if s := base16ToInt(fg[x]); s >= 0 {
					fslot = s
				}
			}
			if bg != nil && x < len(bg) {
				if s := base16ToInt(bg[x]); s >= 0 {
					bslot = s
				}
			}
			ch := ' '
			if text != nil && x < len(text) && text[x] != 0 {
				ch = text[x]
			}
			v.screen.SetContent(x, y, ch, nil, v.style(fslot, bslot))
		}
	}

	cx, cy := t.CursorPos()
	if t.CursorBlink() && (st.BlinkLocked || st.Blink) && cx >= 0 && cx < t.Width() && cy >= 0 && cy < t.Height() {
		v.screen.SetContent(cx, cy, defaultCursorChar, nil, v.style(t.TextColour(), base16ToInt(t.BackgroundColourLine(cy)[cx])))
	}

	if st.Shutdown && len(shutdownMessage) <= t.Width() {
		y := t.Height() - 1
		x0 := (t.Width() - len(shutdownMessage)) / 2
		box := tcell.StyleDefault.
			Foreground(tcell.NewRGBColor(0xF0, 0xF0, 0xF0)).
			Background(tcell.NewRGBColor(int32(overlayBoxColour.R), int32(overlayBoxColour.G), int32(overlayBoxColour.B)))
		for i, ch := range shutdownMessage {
			v.screen.SetContent(x0+i, y, ch, nil, box)
		}
	}
	v.screen.Show()
}

func (v *cellView) Dispose() {}
