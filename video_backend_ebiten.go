// video_backend_ebiten.go - Windowed renderer host on Ebiten: input pump, presentation, hotkeys

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
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
	"pkt.systems/pslog"
)

const (
	// key repeat timing in ticks of the host's update loop
	keyRepeatDelay    = 30
	keyRepeatInterval = 3

	statusBarHeight = 16
)

var hostMouseButtons = []ebiten.MouseButton{
	ebiten.MouseButtonLeft,
	ebiten.MouseButtonRight,
	ebiten.MouseButtonMiddle,
}

// EbitenHost shows the focused computer in a window and feeds it the
// window's keyboard and mouse input.
type EbitenHost struct {
	*hostBase
	font *TerminalFont
	icon image.Image

	width  int
	height int

	ctx    context.Context
	window *ebiten.Image

	fullscreen bool
	hadFocus   bool
	title      string
	lastMouse  image.Point

	keys     []ebiten.Key
	pressed  []ebiten.Key
	released []ebiten.Key
	chars    []rune
}

func newEbitenHostFactory(cfg EmuConfig, log pslog.Logger) (RendererHost, error) {
	h := &EbitenHost{font: loadBestFont(cfg.FontPath, log)}
	h.hostBase = newHostBase("ebiten", cfg, log, h.newView)
	h.showStatus = false
	pw, ph, margin := frameGeometry(cfg.TermScale)
	h.width = cfg.TermWidth*pw + margin*2
	h.height = cfg.TermHeight*ph + margin*2
	h.icon = loadIcon(cfg.IconPath, h.log)
	return h, nil
}

func (h *EbitenHost) newView(inst *Instance, term *TerminalBuffer, cfg EmuConfig) (TerminalView, error) {
	return NewFrameRenderer(term, h.font, cfg.TermScale, withComputer(h.log, inst.ID()), nil), nil
}

// loadIcon reads the window icon. Failures only cost the icon.
func loadIcon(path string, log pslog.Logger) image.Image {
	if path == "" {
		return nil
	}
	_, img, err := ebitenutil.NewImageFromFile(path)
	if err != nil {
		log.Warn("window icon unavailable", "path", path, "err", err)
		return nil
	}
	return img
}

// Run opens the window and blocks until it closes. Must be called from
// the main goroutine.
func (h *EbitenHost) Run(ctx context.Context, emu *Emulator) error {
	h.attach(emu)
	h.ctx = ctx
	ebiten.SetWindowSize(h.width, h.height)
	ebiten.SetWindowTitle("CCEmuX")
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetWindowClosingHandled(true)
	if h.icon != nil {
		ebiten.SetWindowIcon([]image.Image{h.icon})
	}
	if err := ebiten.RunGame(h); err != nil && !errors.Is(err, ebiten.Termination) {
		return &RenderError{Operation: "run", Details: "ebiten game loop", Err: err}
	}
	return nil
}

func (h *EbitenHost) Update() error {
	if h.ctx != nil && h.ctx.Err() != nil {
		return ebiten.Termination
	}
	if h.emu != nil {
		select {
		case <-h.emu.Done():
			return ebiten.Termination
		default:
		}
	}
	if ebiten.IsWindowBeingClosed() {
		h.CloseAll()
		return ebiten.Termination
	}

	focused := ebiten.IsFocused()
	if h.hadFocus && !focused {
		if r := h.Focused(); r != nil {
			r.FocusLost()
		}
	}
	h.hadFocus = focused

	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		h.fullscreen = !h.fullscreen
		ebiten.SetFullscreen(h.fullscreen)
		if !h.fullscreen {
			ebiten.SetWindowSize(h.width, h.height)
		}
		if r := h.Focused(); r != nil {
			invalidateView(r)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		h.ToggleStatus()
	}

	if r := h.Focused(); r != nil {
		h.pumpInput(r)
	}
	if r := h.Focused(); r != nil {
		if title := r.WindowTitle(); title != h.title {
			h.title = title
			ebiten.SetWindowTitle(title)
		}
	}
	return nil
}

func currentModifiers() Modifiers {
	return Modifiers{
		Ctrl:  ebiten.IsKeyPressed(ebiten.KeyControl),
		Shift: ebiten.IsKeyPressed(ebiten.KeyShift),
		Alt:   ebiten.IsKeyPressed(ebiten.KeyAlt),
		Meta:  ebiten.IsKeyPressed(ebiten.KeyMeta),
	}
}

// hotkey runs a host-level shortcut, reporting whether key was consumed.
func (h *EbitenHost) hotkey(key ebiten.Key, mods Modifiers) bool {
	switch key {
	case ebiten.KeyF11, ebiten.KeyF12:
		return true
	}
	if !mods.Ctrl || !mods.Shift {
		return false
	}
	switch key {
	case ebiten.KeyN:
		h.NewComputer()
	case ebiten.KeyW:
		h.CloseFocused()
	case ebiten.KeyArrowLeft:
		h.CycleFocus(-1)
	case ebiten.KeyArrowRight:
		h.CycleFocus(1)
	default:
		return false
	}
	return true
}

// dispatchKeys delivers one frame of key edges to r. A key consumed as a
// hotkey still lets the rest of the frame through.
func (h *EbitenHost) dispatchKeys(r *TerminalRenderer, pressed, released []ebiten.Key, mods Modifiers) {
	for _, k := range pressed {
		if h.hotkey(k, mods) {
			continue
		}
		r.KeyDown(k, mods, false)
	}
	for _, k := range released {
		r.KeyUp(k)
	}
}

func (h *EbitenHost) pumpInput(r *TerminalRenderer) {
	mods := currentModifiers()

	h.pressed = inpututil.AppendPressedKeys(h.pressed[:0])
	for _, k := range h.pressed {
		d := inpututil.KeyPressDuration(k)
		if d > keyRepeatDelay && (d-keyRepeatDelay)%keyRepeatInterval == 0 {
			r.KeyDown(k, mods, true)
		}
	}
	h.keys = inpututil.AppendJustPressedKeys(h.keys[:0])
	h.released = inpututil.AppendJustReleasedKeys(h.released[:0])
	h.dispatchKeys(r, h.keys, h.released, mods)
	h.chars = ebiten.AppendInputChars(h.chars[:0])
	for _, ch := range h.chars {
		r.CharTyped(ch)
	}

	x, y := ebiten.CursorPosition()
	moved := image.Pt(x, y) != h.lastMouse
	h.lastMouse = image.Pt(x, y)
	for _, b := range hostMouseButtons {
		switch {
		case inpututil.IsMouseButtonJustPressed(b):
			r.MouseDown(x, y, b)
		case inpututil.IsMouseButtonJustReleased(b):
			r.MouseUp(x, y, b)
		case moved && ebiten.IsMouseButtonPressed(b):
			r.MouseDrag(x, y, b)
		}
	}
	if _, wy := ebiten.Wheel(); wy != 0 {
		r.MouseWheel(x, y, -wy)
	}
}

func (h *EbitenHost) Draw(screen *ebiten.Image) {
	r := h.Focused()
	if r == nil {
		screen.Fill(color.Black)
		return
	}
	fr, ok := r.View().(*FrameRenderer)
	if !ok {
		return
	}
	reallocated := false
	fr.Surface().Front(func(img *image.RGBA) {
		b := img.Bounds()
		if h.window == nil || h.window.Bounds().Size() != b.Size() {
			if h.window != nil {
				h.window.Deallocate()
			}
			h.window = ebiten.NewImage(b.Dx(), b.Dy())
			reallocated = true
		}
		h.window.WritePixels(img.Pix)
	})
	if reallocated {
		invalidateView(r)
	}
	screen.DrawImage(h.window, nil)

	if st := h.status(); st.Visible {
		h.drawStatusBar(screen, st)
	}
}

func (h *EbitenHost) Layout(_, _ int) (int, int) {
	return h.width, h.height
}

func (h *EbitenHost) drawStatusBar(screen *ebiten.Image, st hostStatus) {
	if statusBarHeight >= h.height {
		return
	}
	y := h.height - statusBarHeight
	ebitenutil.DrawRect(screen, 0, float64(y), float64(h.width), statusBarHeight, color.RGBA{0, 0, 0, 180})
	line := fmt.Sprintf("#%d  %d open  %s", st.Focused, st.Computers, st.Uptime.Truncate(1e9))
	text.Draw(screen, line, basicfont.Face7x13, 4, y+12, color.RGBA{190, 190, 190, 255})
}
