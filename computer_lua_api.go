// computer_lua_api.go - Lua globals exposed to programs: term, colours, keys, os, fs and ccemux

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
	"strings"
	"unicode/utf8"

	lua "github.com/yuin/gopher-lua"
)

const osVersion = "CraftOS 1.8"

const maxLabelLength = 32

var colourNames = [paletteSize]string{
	"white", "orange", "magenta", "lightBlue", "yellow", "lime", "pink", "gray",
	"lightGray", "cyan", "purple", "blue", "brown", "green", "red", "black",
}

func (c *LuaComputer) registerAPIs(L *lua.LState) {
	L.SetGlobal("print", L.NewFunction(c.luaPrint))
	L.SetGlobal("write", L.NewFunction(c.luaWrite))

	term := L.NewTable()
	L.SetFuncs(term, map[string]lua.LGFunction{
		"write":               c.termWrite,
		"blit":                c.termBlit,
		"clear":               c.termClear,
		"clearLine":           c.termClearLine,
		"getCursorPos":        c.termGetCursorPos,
		"setCursorPos":        c.termSetCursorPos,
		"getCursorBlink":      c.termGetCursorBlink,
		"setCursorBlink":      c.termSetCursorBlink,
		"getSize":             c.termGetSize,
		"scroll":              c.termScroll,
		"isColour":            luaTrue,
		"isColor":             luaTrue,
		"getTextColour":       c.termGetTextColour,
		"getTextColor":        c.termGetTextColour,
		"setTextColour":       c.termSetTextColour,
		"setTextColor":        c.termSetTextColour,
		"getBackgroundColour": c.termGetBackgroundColour,
		"getBackgroundColor":  c.termGetBackgroundColour,
		"setBackgroundColour": c.termSetBackgroundColour,
		"setBackgroundColor":  c.termSetBackgroundColour,
		"getPaletteColour":    c.termGetPaletteColour,
		"getPaletteColor":     c.termGetPaletteColour,
		"setPaletteColour":    c.termSetPaletteColour,
		"setPaletteColor":     c.termSetPaletteColour,
	})
	L.SetGlobal("term", term)

	colours := L.NewTable()
	for slot, name := range colourNames {
		L.SetField(colours, name, lua.LNumber(colourToBit(slot)))
	}
	L.SetField(colours, "grey", lua.LNumber(colourToBit(7)))
	L.SetField(colours, "lightGrey", lua.LNumber(colourToBit(8)))
	L.SetField(colours, "toBlit", L.NewFunction(luaColourToBlit))
	L.SetField(colours, "fromBlit", L.NewFunction(luaColourFromBlit))
	L.SetGlobal("colours", colours)
	L.SetGlobal("colors", colours)

	keys := L.NewTable()
	names := L.NewTable()
	for name, code := range ccKeyNames {
		L.SetField(keys, name, lua.LNumber(code))
		names.RawSetInt(code, lua.LString(name))
	}
	L.SetField(keys, "getName", L.NewFunction(func(L *lua.LState) int {
		L.Push(names.RawGetInt(L.CheckInt(1)))
		return 1
	}))
	L.SetGlobal("keys", keys)

	osTable := L.NewTable()
	L.SetFuncs(osTable, map[string]lua.LGFunction{
		"version":          func(L *lua.LState) int { L.Push(lua.LString(osVersion)); return 1 },
		"getComputerID":    c.osGetComputerID,
		"computerID":       c.osGetComputerID,
		"getComputerLabel": c.osGetComputerLabel,
		"computerLabel":    c.osGetComputerLabel,
		"setComputerLabel": c.osSetComputerLabel,
		"queueEvent":       c.osQueueEvent,
		"startTimer":       c.osStartTimer,
		"cancelTimer":      c.osCancelTimer,
		"clock":            c.osClock,
		"time":             c.osTime,
		"day":              c.osDay,
		"shutdown":         c.osShutdown,
		"reboot":           c.osReboot,
	})
	L.SetGlobal("os", osTable)

	fs := L.NewTable()
	L.SetFuncs(fs, map[string]lua.LGFunction{
		"getCapacity":  c.fsGetCapacity,
		"getFreeSpace": c.fsGetCapacity,
	})
	L.SetGlobal("fs", fs)

	emu := L.NewTable()
	L.SetFuncs(emu, map[string]lua.LGFunction{
		"getVersion": c.emuGetVersion,
		"openEmu":    c.emuOpen,
		"closeEmu":   c.emuClose,
	})
	L.SetGlobal("ccemux", emu)
}

func luaTrue(L *lua.LState) int {
	L.Push(lua.LTrue)
	return 1
}

func argsToString(L *lua.LState, from int) string {
	var sb strings.Builder
	for i := from; i <= L.GetTop(); i++ {
		if i > from {
			sb.WriteByte('\t')
		}
		sb.WriteString(L.ToStringMeta(L.Get(i)).String())
	}
	return sb.String()
}

func (c *LuaComputer) luaPrint(L *lua.LState) int {
	lines := c.term.WriteWrapped(argsToString(L, 1) + "\n")
	L.Push(lua.LNumber(lines))
	return 1
}

func (c *LuaComputer) luaWrite(L *lua.LState) int {
	lines := c.term.WriteWrapped(L.ToStringMeta(L.Get(1)).String())
	L.Push(lua.LNumber(lines))
	return 1
}

func (c *LuaComputer) termWrite(L *lua.LState) int {
	c.term.Write(L.ToStringMeta(L.Get(1)).String())
	return 0
}

func (c *LuaComputer) termBlit(L *lua.LState) int {
	if err := c.term.Blit(L.CheckString(1), L.CheckString(2), L.CheckString(3)); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}

func (c *LuaComputer) termClear(L *lua.LState) int {
	c.term.Clear()
	return 0
}

func (c *LuaComputer) termClearLine(L *lua.LState) int {
	c.term.ClearLine()
	return 0
}

func (c *LuaComputer) termGetCursorPos(L *lua.LState) int {
	x, y := c.term.CursorPos()
	L.Push(lua.LNumber(x + 1))
	L.Push(lua.LNumber(y + 1))
	return 2
}

func (c *LuaComputer) termSetCursorPos(L *lua.LState) int {
	c.term.SetCursorPos(L.CheckInt(1)-1, L.CheckInt(2)-1)
	return 0
}

func (c *LuaComputer) termGetCursorBlink(L *lua.LState) int {
	L.Push(lua.LBool(c.term.CursorBlink()))
	return 1
}

func (c *LuaComputer) termSetCursorBlink(L *lua.LState) int {
	c.term.SetCursorBlink(L.CheckBool(1))
	return 0
}

func (c *LuaComputer) termGetSize(L *lua.LState) int {
	L.Push(lua.LNumber(c.term.Width()))
	L.Push(lua.LNumber(c.term.Height()))
	return 2
}

func (c *LuaComputer) termScroll(L *lua.LState) int {
	c.term.Scroll(L.CheckInt(1))
	return 0
}

func checkColour(L *lua.LState, n int) int {
	slot, ok := colourFromBit(L.CheckInt(n))
	if !ok {
		L.ArgError(n, "colour out of range")
	}
	return slot
}

func (c *LuaComputer) termGetTextColour(L *lua.LState) int {
	L.Push(lua.LNumber(colourToBit(c.term.TextColour())))
	return 1
}

func (c *LuaComputer) termSetTextColour(L *lua.LState) int {
	c.term.SetTextColour(checkColour(L, 1))
	return 0
}

func (c *LuaComputer) termGetBackgroundColour(L *lua.LState) int {
	L.Push(lua.LNumber(colourToBit(c.term.BackgroundColour())))
	return 1
}

func (c *LuaComputer) termSetBackgroundColour(L *lua.LState) int {
	c.term.SetBackgroundColour(checkColour(L, 1))
	return 0
}

func (c *LuaComputer) termGetPaletteColour(L *lua.LState) int {
	col := c.term.Palette().Get(checkColour(L, 1))
	L.Push(lua.LNumber(col.R))
	L.Push(lua.LNumber(col.G))
	L.Push(lua.LNumber(col.B))
	return 3
}

// termSetPaletteColour accepts either a 0xRRGGBB integer or three
// components in [0,1].
func (c *LuaComputer) termSetPaletteColour(L *lua.LState) int {
	slot := checkColour(L, 1)
	if L.GetTop() == 2 {
		rgb := colorFromHex(uint32(L.CheckInt(2)))
		c.term.Palette().Set(slot, rgb.R, rgb.G, rgb.B)
		return 0
	}
	r := float64(L.CheckNumber(2))
	g := float64(L.CheckNumber(3))
	b := float64(L.CheckNumber(4))
	c.term.Palette().Set(slot, r, g, b)
	return 0
}

func luaColourToBlit(L *lua.LState) int {
	slot := checkColour(L, 1)
	L.Push(lua.LString(string(intToBase16(slot))))
	return 1
}

func luaColourFromBlit(L *lua.LState) int {
	s := L.CheckString(1)
	if len(s) != 1 || base16ToInt(s[0]) < 0 {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(colourToBit(base16ToInt(s[0]))))
	return 1
}

func (c *LuaComputer) osGetComputerID(L *lua.LState) int {
	L.Push(lua.LNumber(c.id))
	return 1
}

func (c *LuaComputer) osGetComputerLabel(L *lua.LState) int {
	if c.label == "" {
		L.Push(lua.LNil)
	} else {
		L.Push(lua.LString(c.label))
	}
	return 1
}

func (c *LuaComputer) osSetComputerLabel(L *lua.LState) int {
	c.label = truncateLabel(L.OptString(1, ""))
	return 0
}

// truncateLabel drops invalid UTF-8 and caps the label at maxLabelLength
// bytes without splitting a rune.
func truncateLabel(label string) string {
	label = strings.ToValidUTF8(label, "")
	if len(label) <= maxLabelLength {
		return label
	}
	cut := maxLabelLength
	for cut > 0 && !utf8.RuneStart(label[cut]) {
		cut--
	}
	return label[:cut]
}

func (c *LuaComputer) osQueueEvent(L *lua.LState) int {
	name := L.CheckString(1)
	args := make([]lua.LValue, 0, L.GetTop()-1)
	for i := 2; i <= L.GetTop(); i++ {
		args = append(args, L.Get(i))
	}
	c.queue(name, args...)
	return 0
}

func (c *LuaComputer) osStartTimer(L *lua.LState) int {
	L.Push(lua.LNumber(c.startTimer(float64(L.CheckNumber(1)))))
	return 1
}

func (c *LuaComputer) osCancelTimer(L *lua.LState) int {
	c.cancelTimer(L.CheckInt(1))
	return 0
}

func (c *LuaComputer) osClock(L *lua.LState) int {
	L.Push(lua.LNumber(c.clock))
	return 1
}

func (c *LuaComputer) osTime(L *lua.LState) int {
	var t float64
	if c.host != nil {
		t = c.host.TimeOfDay()
	}
	L.Push(lua.LNumber(t))
	return 1
}

func (c *LuaComputer) osDay(L *lua.LState) int {
	day := 1
	if c.host != nil {
		day = c.host.Day()
	}
	L.Push(lua.LNumber(day))
	return 1
}

// osShutdown and osReboot only record the request; it is applied once the
// program yields.
func (c *LuaComputer) osShutdown(L *lua.LState) int {
	c.pendingShutdown = true
	return 0
}

func (c *LuaComputer) osReboot(L *lua.LState) int {
	c.pendingReboot = true
	return 0
}

func (c *LuaComputer) fsGetCapacity(L *lua.LState) int {
	L.Push(lua.LNumber(c.cfg.MaxComputerCapacity))
	return 1
}

func (c *LuaComputer) emuGetVersion(L *lua.LState) int {
	v := "unknown"
	if c.host != nil {
		v = c.host.Version()
	}
	L.Push(lua.LString(v))
	return 1
}

func (c *LuaComputer) emuOpen(L *lua.LState) int {
	if c.host == nil {
		L.Push(lua.LNil)
		L.Push(lua.LString("no emulator"))
		return 2
	}
	id, err := c.host.OpenComputer()
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LNumber(id))
	return 1
}

func (c *LuaComputer) emuClose(L *lua.LState) int {
	ok := c.host != nil && c.host.CloseComputer(c.id)
	L.Push(lua.LBool(ok))
	return 1
}
