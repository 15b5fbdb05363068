// term_action_keys_test.go - Tests for the held-combo action timers

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
	"testing"
)

func TestActionTimerFiresOnceAtThreshold(t *testing.T) {
	timer := newActionTimer()
	timer.Arm()
	fired := 0
	for range 10 {
		if timer.Advance(0.05) {
			fired++
		}
	}
	if fired != 1 {
		t.Fatalf("fired %d times after 10x0.05s, want 1", fired)
	}
	for range 20 {
		if timer.Advance(0.05) {
			t.Fatal("timer fired again while still held")
		}
	}
	if !timer.Armed() {
		t.Fatal("fired timer should stay armed until reset")
	}
}

func TestActionTimerBelowThreshold(t *testing.T) {
	timer := newActionTimer()
	timer.Arm()
	for range 9 {
		if timer.Advance(0.05) {
			t.Fatal("fired before 0.5s")
		}
	}
}

func TestActionTimerIdleDoesNotCount(t *testing.T) {
	timer := newActionTimer()
	if timer.Armed() {
		t.Fatal("new timer should be idle")
	}
	if timer.Advance(10) {
		t.Fatal("idle timer fired")
	}
}

func TestActionTimerArmIsIdempotent(t *testing.T) {
	timer := newActionTimer()
	timer.Arm()
	timer.Advance(0.3)
	timer.Arm() // key repeat
	if !timer.Advance(0.2) {
		t.Fatal("re-arming restarted the timer")
	}
}

func TestActionTimerResetRearms(t *testing.T) {
	timer := newActionTimer()
	timer.Arm()
	timer.Advance(0.5)
	timer.Reset()
	if timer.Armed() {
		t.Fatal("reset timer still armed")
	}
	timer.Arm()
	if timer.Advance(0.45) {
		t.Fatal("rearmed timer kept old progress")
	}
	if !timer.Advance(0.05) {
		t.Fatal("rearmed timer did not fire")
	}
}

func TestActionKeysAdvanceFiresArmedOnly(t *testing.T) {
	ak := newActionKeys()
	if ak.AnyArmed() {
		t.Fatal("fresh keys armed")
	}
	ak.Arm(ActionReboot)
	var fired []Action
	for range 10 {
		ak.Advance(0.05, func(a Action) { fired = append(fired, a) })
	}
	if len(fired) != 1 || fired[0] != ActionReboot {
		t.Fatalf("fired %v, want [reboot]", fired)
	}
	ak.ResetAll()
	if ak.AnyArmed() {
		t.Fatal("ResetAll left a timer armed")
	}
}

func TestApplyAction(t *testing.T) {
	c := newFakeComputer(1, NewTerminalBuffer(4, 4))
	applyAction(c, ActionReboot)
	if c.turnOns != 1 || c.reboots != 0 {
		t.Fatalf("reboot of an off computer: turnOns=%d reboots=%d", c.turnOns, c.reboots)
	}
	applyAction(c, ActionReboot)
	if c.reboots != 1 {
		t.Fatalf("reboots=%d, want 1", c.reboots)
	}
	applyAction(c, ActionTerminate)
	applyAction(c, ActionShutdown)
	if c.terms != 1 || c.shutdowns != 1 || c.IsOn() {
		t.Fatalf("terms=%d shutdowns=%d on=%v", c.terms, c.shutdowns, c.IsOn())
	}
}

func TestActionString(t *testing.T) {
	if ActionTerminate.String() != "terminate" || Action(9).String() != "unknown" {
		t.Fatal("unexpected action names")
	}
}
