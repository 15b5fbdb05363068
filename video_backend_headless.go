// video_backend_headless.go - Renderer host without a display, painting frames off-screen

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
	"image"
	"time"

	"pkt.systems/pslog"
)

// HeadlessHost runs the full paint pipeline with nothing to present to.
// Useful for scripted runs and tests.
type HeadlessHost struct {
	*hostBase
	font *TerminalFont
}

func newHeadlessHostFactory(cfg EmuConfig, log pslog.Logger) (RendererHost, error) {
	return NewHeadlessHost(cfg, log), nil
}

func NewHeadlessHost(cfg EmuConfig, log pslog.Logger) *HeadlessHost {
	h := &HeadlessHost{font: loadBestFont(cfg.FontPath, log)}
	h.hostBase = newHostBase("headless", cfg, log, h.newView)
	h.clip = nil
	return h
}

func (h *HeadlessHost) newView(inst *Instance, term *TerminalBuffer, cfg EmuConfig) (TerminalView, error) {
	return NewFrameRenderer(term, h.font, cfg.TermScale, withComputer(h.log, inst.ID()), time.Now), nil
}

// Run blocks until the emulator stops or ctx ends.
func (h *HeadlessHost) Run(ctx context.Context, emu *Emulator) error {
	h.attach(emu)
	select {
	case <-ctx.Done():
	case <-emu.Done():
	}
	return nil
}

// Snapshot copies the focused computer's last presented frame.
func (h *HeadlessHost) Snapshot() (*image.RGBA, bool) {
	r := h.Focused()
	if r == nil {
		return nil, false
	}
	fr, ok := r.View().(*FrameRenderer)
	if !ok {
		return nil, false
	}
	var out *image.RGBA
	fr.Surface().Front(func(img *image.RGBA) {
		out = image.NewRGBA(img.Bounds())
		copy(out.Pix, img.Pix)
	})
	return out, true
}
