// computer_lua.go - Computer implementation running Lua programs on gopher-lua

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
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	lua "github.com/yuin/gopher-lua"
	"pkt.systems/pslog"
)

//go:embed rom/bios.lua
var biosSource string

//go:embed rom/shell.lua
var shellSource string

const (
	maxEventQueue       = 256
	maxEventsPerAdvance = 64
	// luaStepTimeout aborts a program that does not yield.
	luaStepTimeout = 250 * time.Millisecond
)

var errTooLongWithoutYielding = errors.New("too long without yielding")

type luaEvent struct {
	name string
	args []lua.LValue
}

// LuaComputer runs a Lua program as a coroutine that is resumed once per
// queued event, in the manner of ComputerCraft.
type LuaComputer struct {
	id    int
	label string
	term  *TerminalBuffer
	cfg   EmuConfig
	host  ComputerHost
	log   pslog.Logger

	program     string
	programName string

	on      bool
	started bool
	halted  bool

	L       *lua.LState
	co      *lua.LState
	main    *lua.LFunction
	timeout time.Duration

	events []luaEvent
	filter string

	clock     float64
	timers    map[int]float64
	nextTimer int

	pendingShutdown bool
	pendingReboot   bool
}

// NewLuaComputer is a ComputerFactory. When cfg.StartupScript is set that
// file replaces the built-in shell.
func NewLuaComputer(id int, term *TerminalBuffer, cfg EmuConfig, host ComputerHost, log pslog.Logger) (Computer, error) {
	c := &LuaComputer{
		id:          id,
		term:        term,
		cfg:         cfg,
		host:        host,
		log:         log,
		program:     shellSource,
		programName: "shell",
		timeout:     luaStepTimeout,
	}
	if cfg.StartupScript != "" {
		src, err := os.ReadFile(cfg.StartupScript)
		if err != nil {
			return nil, fmt.Errorf("read startup script: %w", err)
		}
		c.program = string(src)
		c.programName = cfg.StartupScript
	}
	return c, nil
}

// newLuaComputerWithProgram builds a computer running src instead of the shell.
func newLuaComputerWithProgram(id int, term *TerminalBuffer, cfg EmuConfig, host ComputerHost, log pslog.Logger, src string) *LuaComputer {
	return &LuaComputer{
		id:          id,
		term:        term,
		cfg:         cfg,
		host:        host,
		log:         log,
		program:     src,
		programName: "program",
		timeout:     luaStepTimeout,
	}
}

func (c *LuaComputer) ID() int                   { return c.id }
func (c *LuaComputer) Label() string             { return c.label }
func (c *LuaComputer) Terminal() *TerminalBuffer { return c.term }
func (c *LuaComputer) IsOn() bool                { return c.on }

// Halted reports whether the program finished or crashed.
func (c *LuaComputer) Halted() bool { return c.halted }

func (c *LuaComputer) TurnOn() {
	if c.on {
		return
	}
	c.term.Reset()
	c.events = c.events[:0]
	c.filter = ""
	c.clock = 0
	c.timers = make(map[int]float64)
	c.nextTimer = 0
	c.started = false
	c.halted = false
	c.on = true
	if err := c.boot(); err != nil {
		c.crash(err)
	}
}

func (c *LuaComputer) boot() error {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibs(L)
	c.L = L
	c.registerAPIs(L)
	if err := L.DoString(biosSource); err != nil {
		return fmt.Errorf("bios: %w", err)
	}
	fn, err := L.LoadString(c.program)
	if err != nil {
		return fmt.Errorf("%s: %w", c.programName, err)
	}
	c.main = fn
	c.co, _ = L.NewThread()
	return nil
}

func (c *LuaComputer) Shutdown() {
	c.pendingShutdown = false
	c.pendingReboot = false
	if !c.on {
		return
	}
	c.on = false
	if c.L != nil {
		c.L.Close()
	}
	c.L, c.co, c.main = nil, nil, nil
	c.events = nil
	c.timers = nil
	c.term.Reset()
	c.term.SetCursorBlink(false)
}

func (c *LuaComputer) Reboot() {
	c.Shutdown()
	c.TurnOn()
}

// Terminate queues a terminate event; it passes any event filter.
func (c *LuaComputer) Terminate() {
	c.queue("terminate")
}

func (c *LuaComputer) queue(name string, args ...lua.LValue) {
	if !c.on || c.halted {
		return
	}
	if len(c.events) >= maxEventQueue {
		c.log.Debug("event queue full", "event", name)
		return
	}
	c.events = append(c.events, luaEvent{name: name, args: args})
}

func (c *LuaComputer) PressKey(code int, repeat bool) {
	c.queue("key", lua.LNumber(code), lua.LBool(repeat))
}

func (c *LuaComputer) ReleaseKey(code int) {
	c.queue("key_up", lua.LNumber(code))
}

func (c *LuaComputer) PressChar(ch rune) {
	c.queue("char", lua.LString(string(ch)))
}

func (c *LuaComputer) Paste(text string) {
	c.queue("paste", lua.LString(text))
}

func (c *LuaComputer) Click(button, x, y int, release bool) {
	name := "mouse_click"
	if release {
		name = "mouse_up"
	}
	c.queue(name, lua.LNumber(button), lua.LNumber(x), lua.LNumber(y))
}

func (c *LuaComputer) Drag(button, x, y int) {
	c.queue("mouse_drag", lua.LNumber(button), lua.LNumber(x), lua.LNumber(y))
}

func (c *LuaComputer) Scroll(dir, x, y int) {
	c.queue("mouse_scroll", lua.LNumber(dir), lua.LNumber(x), lua.LNumber(y))
}

// Advance fires due timers and resumes the program once per pending
// event that passes its filter.
func (c *LuaComputer) Advance(dt float64) {
	c.applyPending()
	if !c.on {
		return
	}
	c.clock += dt
	c.fireTimers()
	if c.halted {
		return
	}
	if !c.started {
		c.started = true
		c.resume(nil)
	}
	for n := 0; n < maxEventsPerAdvance && len(c.events) > 0 && !c.halted && c.on; n++ {
		ev := c.events[0]
		c.events = c.events[1:]
		if c.filter != "" && ev.name != c.filter && ev.name != "terminate" {
			continue
		}
		c.resume(&ev)
		c.applyPending()
	}
}

func (c *LuaComputer) applyPending() {
	switch {
	case c.pendingReboot:
		c.Reboot()
	case c.pendingShutdown:
		c.Shutdown()
	}
}

func (c *LuaComputer) fireTimers() {
	if len(c.timers) == 0 {
		return
	}
	var due []int
	for id, at := range c.timers {
		if c.clock >= at {
			due = append(due, id)
		}
	}
	sort.Ints(due)
	for _, id := range due {
		delete(c.timers, id)
		c.queue("timer", lua.LNumber(id))
	}
}

func (c *LuaComputer) resume(ev *luaEvent) {
	var args []lua.LValue
	if ev != nil {
		args = append(args, lua.LString(ev.name))
		args = append(args, ev.args...)
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	c.co.SetContext(ctx)
	st, err, values := c.L.Resume(c.co, c.main, args...)
	c.co.RemoveContext()
	deadline := ctx.Err() != nil
	cancel()

	switch st {
	case lua.ResumeYield:
		c.filter = ""
		if len(values) > 0 {
			if s, ok := values[0].(lua.LString); ok {
				c.filter = string(s)
			}
		}
	case lua.ResumeOK:
		c.halt()
	case lua.ResumeError:
		if deadline {
			err = errTooLongWithoutYielding
		}
		c.crash(err)
	}
}

func (c *LuaComputer) halt() {
	c.halted = true
	c.term.SetCursorBlink(false)
}

// crash prints err in red and halts the program. The computer stays on.
func (c *LuaComputer) crash(err error) {
	c.halt()
	msg := err.Error()
	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) && apiErr.Object != nil {
		msg = apiErr.Object.String()
	}
	c.log.Warn("lua program failed", "program", c.programName, "err", msg)
	c.term.SetTextColour(slotRed)
	c.term.SetBackgroundColour(slotBlack)
	x, _ := c.term.CursorPos()
	if x > 0 {
		c.term.WriteWrapped("\n")
	}
	c.term.WriteWrapped(msg + "\n")
}

func (c *LuaComputer) startTimer(seconds float64) int {
	c.nextTimer++
	c.timers[c.nextTimer] = c.clock + seconds
	return c.nextTimer
}

func (c *LuaComputer) cancelTimer(id int) {
	delete(c.timers, id)
}

func openSafeLibs(L *lua.LState) {
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenPackage},
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
		{lua.CoroutineLibName, lua.OpenCoroutine},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	for _, name := range []string{"dofile", "loadfile", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
}
