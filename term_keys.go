// term_keys.go - Host key, mouse button and character translation

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
	"image"
	"unicode"
	"unicode/utf8"

	"github.com/hajimehoshi/ebiten/v2"
)

// ccKeys maps host keys to the computer's key codes.
var ccKeys = map[ebiten.Key]int{
	ebiten.KeyEscape: 1,
	ebiten.KeyDigit1: 2, ebiten.KeyDigit2: 3, ebiten.KeyDigit3: 4, ebiten.KeyDigit4: 5, ebiten.KeyDigit5: 6,
	ebiten.KeyDigit6: 7, ebiten.KeyDigit7: 8, ebiten.KeyDigit8: 9, ebiten.KeyDigit9: 10, ebiten.KeyDigit0: 11,
	ebiten.KeyMinus:     12,
	ebiten.KeyEqual:     13,
	ebiten.KeyBackspace: 14,
	ebiten.KeyTab:       15,
	ebiten.KeyQ:         16, ebiten.KeyW: 17, ebiten.KeyE: 18, ebiten.KeyR: 19, ebiten.KeyT: 20,
	ebiten.KeyY: 21, ebiten.KeyU: 22, ebiten.KeyI: 23, ebiten.KeyO: 24, ebiten.KeyP: 25,
	ebiten.KeyBracketLeft:  26,
	ebiten.KeyBracketRight: 27,
	ebiten.KeyEnter:        28,
	ebiten.KeyControlLeft:  29,
	ebiten.KeyA:            30, ebiten.KeyS: 31, ebiten.KeyD: 32, ebiten.KeyF: 33, ebiten.KeyG: 34,
	ebiten.KeyH: 35, ebiten.KeyJ: 36, ebiten.KeyK: 37, ebiten.KeyL: 38,
	ebiten.KeySemicolon: 39,
	ebiten.KeyQuote:     40,
	ebiten.KeyBackquote: 41,
	ebiten.KeyShiftLeft: 42,
	ebiten.KeyBackslash: 43,
	ebiten.KeyZ:         44, ebiten.KeyX: 45, ebiten.KeyC: 46, ebiten.KeyV: 47, ebiten.KeyB: 48,
	ebiten.KeyN: 49, ebiten.KeyM: 50,
	ebiten.KeyComma:          51,
	ebiten.KeyPeriod:         52,
	ebiten.KeySlash:          53,
	ebiten.KeyShiftRight:     54,
	ebiten.KeyNumpadMultiply: 55,
	ebiten.KeyAltLeft:        56,
	ebiten.KeySpace:          57,
	ebiten.KeyCapsLock:       58,
	ebiten.KeyF1:             59, ebiten.KeyF2: 60, ebiten.KeyF3: 61, ebiten.KeyF4: 62, ebiten.KeyF5: 63,
	ebiten.KeyF6: 64, ebiten.KeyF7: 65, ebiten.KeyF8: 66, ebiten.KeyF9: 67, ebiten.KeyF10: 68,
	ebiten.KeyNumLock:    69,
	ebiten.KeyScrollLock: 70,
	ebiten.KeyNumpad7:    71, ebiten.KeyNumpad8: 72, ebiten.KeyNumpad9: 73,
	ebiten.KeyNumpadSubtract: 74,
	ebiten.KeyNumpad4:        75, ebiten.KeyNumpad5: 76, ebiten.KeyNumpad6: 77,
	ebiten.KeyNumpadAdd: 78,
	ebiten.KeyNumpad1:   79, ebiten.KeyNumpad2: 80, ebiten.KeyNumpad3: 81, ebiten.KeyNumpad0: 82,
	ebiten.KeyNumpadDecimal: 83,
	ebiten.KeyF11:           87,
	ebiten.KeyF12:           88,
	ebiten.KeyNumpadEnter:   156,
	ebiten.KeyControlRight:  157,
	ebiten.KeyNumpadDivide:  181,
	ebiten.KeyAltRight:      184,
	ebiten.KeyPause:         197,
	ebiten.KeyHome:          199,
	ebiten.KeyArrowUp:       200,
	ebiten.KeyPageUp:        201,
	ebiten.KeyArrowLeft:     203,
	ebiten.KeyArrowRight:    205,
	ebiten.KeyEnd:           207,
	ebiten.KeyArrowDown:     208,
	ebiten.KeyPageDown:      209,
	ebiten.KeyInsert:        210,
	ebiten.KeyDelete:        211,
}

// ccKeyNames is the subset of key codes exposed to scripts as the keys table.
var ccKeyNames = map[string]int{
	"escape": 1, "backspace": 14, "tab": 15, "enter": 28, "space": 57,
	"leftCtrl": 29, "rightCtrl": 157, "leftShift": 42, "rightShift": 54,
	"leftAlt": 56, "rightAlt": 184,
	"home": 199, "up": 200, "pageUp": 201, "left": 203, "right": 205,
	"end": 207, "down": 208, "pageDown": 209, "insert": 210, "delete": 211,
	"a": 30, "b": 48, "c": 46, "d": 32, "e": 18, "f": 33, "g": 34, "h": 35, "i": 23,
	"j": 36, "k": 37, "l": 38, "m": 50, "n": 49, "o": 24, "p": 25, "q": 16, "r": 19,
	"s": 31, "t": 20, "u": 22, "v": 47, "w": 17, "x": 45, "y": 21, "z": 44,
	"f1": 59, "f2": 60, "f3": 61, "f4": 62, "f5": 63, "f6": 64,
	"f7": 65, "f8": 66, "f9": 67, "f10": 68, "f11": 87, "f12": 88,
}

// translateToCC maps a host key; unmapped keys report false.
func translateToCC(key ebiten.Key) (int, bool) {
	code, ok := ccKeys[key]
	return code, ok
}

// ccMouseButton maps host buttons to 1 (left), 2 (right), 3 (middle).
func ccMouseButton(b ebiten.MouseButton) int {
	switch b {
	case ebiten.MouseButtonRight:
		return 2
	case ebiten.MouseButtonMiddle:
		return 3
	default:
		return 1
	}
}

// Modifiers is the modifier state accompanying a key event.
type Modifiers struct {
	Ctrl  bool
	Shift bool
	Alt   bool
	Meta  bool
}

// Shortcut reports whether the menu shortcut modifier is held.
func (m Modifiers) Shortcut() bool {
	return m.Ctrl || m.Meta
}

func isModifierKey(key ebiten.Key) bool {
	switch key {
	case ebiten.KeyControl, ebiten.KeyControlLeft, ebiten.KeyControlRight,
		ebiten.KeyMeta, ebiten.KeyMetaLeft, ebiten.KeyMetaRight:
		return true
	}
	return false
}

// isPasteStroke reports whether key+mods requests a paste. Native paste
// additionally accepts Shift+Insert.
func isPasteStroke(key ebiten.Key, mods Modifiers, nativePaste bool) bool {
	if key == ebiten.KeyV && mods.Shortcut() {
		return true
	}
	return nativePaste && key == ebiten.KeyInsert && mods.Shift && !mods.Shortcut()
}

// isPrintableChar rejects control codes, invalid runes and the Specials block.
func isPrintableChar(r rune) bool {
	if !utf8.ValidRune(r) || unicode.IsControl(r) {
		return false
	}
	return r < 0xFFF0 || r > 0xFFFF
}

// mapPointToCC converts a pixel position to a 1-indexed cell.
func mapPointToCC(px, py, margin, pixelWidth, pixelHeight int) image.Point {
	x := (px - margin) / pixelWidth
	y := (py - margin) / pixelHeight
	return image.Pt(x+1, y+1)
}

// wheelDirection collapses a scroll amount to a unit step.
func wheelDirection(amount float64) int {
	if amount > 0 {
		return 1
	}
	return -1
}

// keyBitset tracks which host keys are currently held.
type keyBitset [int(ebiten.KeyMax)/64 + 1]uint64

func (b *keyBitset) get(k ebiten.Key) bool {
	if k < 0 || k > ebiten.KeyMax {
		return false
	}
	return b[k/64]&(1<<(uint(k)%64)) != 0
}

func (b *keyBitset) set(k ebiten.Key) {
	if k < 0 || k > ebiten.KeyMax {
		return
	}
	b[k/64] |= 1 << (uint(k) % 64)
}

func (b *keyBitset) clear(k ebiten.Key) {
	if k < 0 || k > ebiten.KeyMax {
		return
	}
	b[k/64] &^= 1 << (uint(k) % 64)
}
