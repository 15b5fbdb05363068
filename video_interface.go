// video_interface.go - Renderer contracts and backend registry

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
	"sort"

	"pkt.systems/pslog"
)

var ErrUnknownRenderer = errors.New("unknown renderer")

// RenderError provides detailed error context for rendering operations
type RenderError struct {
	Operation string // What operation was being attempted
	Details   string // Additional error context
	Err       error  // Underlying error if any
}

func (e *RenderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("render %s failed: %s: %v", e.Operation, e.Details, e.Err)
	}
	return fmt.Sprintf("render %s failed: %s", e.Operation, e.Details)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// FrameState is everything a view needs besides the terminal itself.
type FrameState struct {
	DT          float64
	Blink       bool // global blink phase
	BlinkLocked bool // cursor held visible after typing
	Shutdown    bool
}

// TerminalView paints a terminal snapshot. Render is only called while the
// owning instance's lock is held.
type TerminalView interface {
	Render(st FrameState)
	Dispose()
}

// Renderer is the per-instance lifecycle the emulator drives.
type Renderer interface {
	IsVisible() bool
	SetVisible(visible bool)
	Dispose()
	// OnAdvance runs after every fixed step with the instance lock held.
	OnAdvance(dt float64, blink bool)
}

// RendererFactory builds a renderer for a newly created instance.
type RendererFactory interface {
	Create(inst *Instance, cfg EmuConfig) (Renderer, error)
	// CreateConfigEditor opens an editor for cfg, reporting whether one was shown.
	CreateConfigEditor(cfg EmuConfig) bool
}

// RendererHost is a factory that also owns a display loop.
type RendererHost interface {
	RendererFactory
	// Run blocks until the display goes away, ctx ends or emu stops.
	Run(ctx context.Context, emu *Emulator) error
}

type hostConstructor func(cfg EmuConfig, log pslog.Logger) (RendererHost, error)

// Predefined renderer backends
var rendererHosts = map[string]hostConstructor{
	"ebiten":   newEbitenHostFactory,
	"tty":      newTTYHostFactory,
	"headless": newHeadlessHostFactory,
}

// NewRendererHost creates the named backend.
func NewRendererHost(name string, cfg EmuConfig, log pslog.Logger) (RendererHost, error) {
	ctor, ok := rendererHosts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrUnknownRenderer, name, rendererNames())
	}
	return ctor(cfg, log)
}

func rendererNames() []string {
	names := make([]string, 0, len(rendererHosts))
	for name := range rendererHosts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// noConfigEditor provides the default CreateConfigEditor.
type noConfigEditor struct{}

func (noConfigEditor) CreateConfigEditor(EmuConfig) bool { return false }
