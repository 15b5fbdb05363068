// term_action_keys.go - Hold-to-trigger shutdown, reboot and terminate timers

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
	"math"
	"time"
)

// actionThreshold is how long an action combo must be held.
const actionThreshold = 500 * time.Millisecond

const actionIdle time.Duration = -1

type Action int

const (
	ActionShutdown Action = iota
	ActionReboot
	ActionTerminate
	numActions
)

var actionNames = [numActions]string{"shutdown", "reboot", "terminate"}

func (a Action) String() string {
	if a < 0 || a >= numActions {
		return "unknown"
	}
	return actionNames[a]
}

// ActionTimer measures how long one action combo has been held. It is
// idle (-1) until armed, counts up while held and fires once on reaching
// actionThreshold. Only Reset returns it to idle.
type ActionTimer struct {
	held time.Duration
}

func newActionTimer() ActionTimer {
	return ActionTimer{held: actionIdle}
}

// Armed reports whether the combo is currently held.
func (t *ActionTimer) Armed() bool { return t.held >= 0 }

// Arm starts the timer if it is idle. Key repeat must not restart it.
func (t *ActionTimer) Arm() {
	if t.held < 0 {
		t.held = 0
	}
}

func (t *ActionTimer) Reset() { t.held = actionIdle }

// Advance adds dt seconds and reports whether the threshold was crossed
// by this call.
func (t *ActionTimer) Advance(dt float64) bool {
	if t.held < 0 || t.held >= actionThreshold {
		return false
	}
	t.held += secondsToDuration(dt)
	return t.held >= actionThreshold
}

func secondsToDuration(dt float64) time.Duration {
	return time.Duration(math.Round(dt * float64(time.Second)))
}

// ActionKeys holds the three action timers of one renderer.
type ActionKeys struct {
	timers [numActions]ActionTimer
}

func newActionKeys() ActionKeys {
	var ak ActionKeys
	ak.ResetAll()
	return ak
}

// AnyArmed reports whether any combo is held; key delivery is
// suppressed while it is.
func (ak *ActionKeys) AnyArmed() bool {
	for i := range ak.timers {
		if ak.timers[i].Armed() {
			return true
		}
	}
	return false
}

func (ak *ActionKeys) Arm(a Action)        { ak.timers[a].Arm() }
func (ak *ActionKeys) Reset(a Action)      { ak.timers[a].Reset() }
func (ak *ActionKeys) Armed(a Action) bool { return ak.timers[a].Armed() }

func (ak *ActionKeys) ResetAll() {
	for i := range ak.timers {
		ak.timers[i].Reset()
	}
}

// Advance steps every armed timer and calls fire for each that crossed
// the threshold.
func (ak *ActionKeys) Advance(dt float64, fire func(Action)) {
	for i := range ak.timers {
		if ak.timers[i].Advance(dt) {
			fire(Action(i))
		}
	}
}

// applyAction performs an action's effect on c.
func applyAction(c Computer, a Action) {
	switch a {
	case ActionShutdown:
		c.Shutdown()
	case ActionReboot:
		if c.IsOn() {
			c.Reboot()
		} else {
			c.TurnOn()
		}
	case ActionTerminate:
		c.Terminate()
	}
}
