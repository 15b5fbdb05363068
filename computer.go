// computer.go - Computer contract driven by the emulator and its renderers

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

import "pkt.systems/pslog"

// Computer is one emulated machine. Every method is called with the
// owning Instance's lock held.
type Computer interface {
	ID() int
	Label() string
	Terminal() *TerminalBuffer

	// Advance runs the machine for dt seconds of simulated time.
	Advance(dt float64)

	IsOn() bool
	TurnOn()
	Shutdown()
	Reboot()
	Terminate()

	PressKey(code int, repeat bool)
	ReleaseKey(code int)
	PressChar(ch rune)
	Paste(text string)
	Click(button, x, y int, release bool)
	Drag(button, x, y int)
	Scroll(dir, x, y int)
}

// ComputerHost is the part of the emulator a running computer may call
// back into. Implementations must not hold an instance lock when invoked
// from outside Advance.
type ComputerHost interface {
	OpenComputer() (int, error)
	CloseComputer(id int) bool
	Version() string
	Day() int
	TimeOfDay() float64
}

// ComputerFactory builds the computer for a newly allocated instance id.
type ComputerFactory func(id int, term *TerminalBuffer, cfg EmuConfig, host ComputerHost, log pslog.Logger) (Computer, error)
