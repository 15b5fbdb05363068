// emulator.go - Fixed-step scheduler owning the live computer instances

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
	"sync"
	"sync/atomic"
	"time"

	"pkt.systems/pslog"
)

const (
	// tickStep is the fixed simulation step (20 Hz).
	tickStep = 50 * time.Millisecond
	// maxCatchUpSteps bounds how many steps one iteration may run after a
	// stall; the rest of the backlog is dropped.
	maxCatchUpSteps = 10
	// blinkPeriod is one half of the global cursor blink cycle.
	blinkPeriod = 400 * time.Millisecond

	ticksPerDay = 24000
)

var ErrNotRunning = errors.New("emulator not running")

// emulatorVersion is reported to scripts and in the host string.
const emulatorVersion = "1.0.0"

// Clock is the time source for the scheduler loop.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Instance is one live computer plus the renderer attached to it. Its lock
// serializes the advance+render step with input handlers.
type Instance struct {
	id       int
	mu       sync.Mutex
	computer Computer
	renderer Renderer

	closeRequests chan<- int
	done          <-chan struct{}
}

func (inst *Instance) ID() int { return inst.id }

// WithLock runs fn while holding the instance lock.
func (inst *Instance) WithLock(fn func(c Computer)) {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	fn(inst.computer)
}

// RequestClose asks the emulator to remove this instance on its next
// iteration. It never blocks and is safe to call with the lock held.
func (inst *Instance) RequestClose() {
	select {
	case inst.closeRequests <- inst.id:
	default:
		go func() {
			select {
			case inst.closeRequests <- inst.id:
			case <-inst.done:
			}
		}()
	}
}

// Emulator owns the live instance set and drives every instance at a
// fixed cadence from one goroutine.
type Emulator struct {
	cfg      EmuConfig
	log      pslog.Logger
	factory  RendererFactory
	computer ComputerFactory
	clock    Clock
	sleep    func(ctx context.Context, d time.Duration)

	mu        sync.Mutex
	instances map[int]*Instance
	nextID    int

	closeRequests chan int
	running       atomic.Bool
	done          chan struct{}
	doneOnce      sync.Once

	started  time.Time
	lastTime time.Time
	acc      time.Duration
	elapsed  time.Duration
	ticks    atomic.Uint64
}

// NewEmulator builds an emulator; computers are built with newComputer and
// displayed through factory.
func NewEmulator(cfg EmuConfig, factory RendererFactory, newComputer ComputerFactory, log pslog.Logger) *Emulator {
	return &Emulator{
		cfg:           cfg,
		log:           log,
		factory:       factory,
		computer:      newComputer,
		clock:         systemClock{},
		sleep:         sleepContext,
		instances:     make(map[int]*Instance),
		closeRequests: make(chan int, 64),
		done:          make(chan struct{}),
	}
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// SetClock replaces the time source. Must be called before Start.
func (e *Emulator) SetClock(c Clock) { e.clock = c }

func (e *Emulator) Config() EmuConfig { return e.cfg }

func (e *Emulator) Running() bool { return e.running.Load() }

// Done is closed when the loop exits.
func (e *Emulator) Done() <-chan struct{} { return e.done }

// Start marks the emulator running and resets the step accumulator.
func (e *Emulator) Start() {
	now := e.clock.Now()
	e.started = now
	e.lastTime = now
	e.acc = 0
	e.running.Store(true)
}

// Stop asks the loop to exit; an in-flight step completes first.
func (e *Emulator) Stop() {
	e.running.Store(false)
}

// Run starts the emulator and blocks in the loop.
func (e *Emulator) Run(ctx context.Context) {
	e.Start()
	e.Loop(ctx)
}

// Loop steps the emulator until it is stopped or ctx ends.
func (e *Emulator) Loop(ctx context.Context) {
	defer e.doneOnce.Do(func() { close(e.done) })
	for e.running.Load() {
		if ctx.Err() != nil {
			e.running.Store(false)
			break
		}
		begin := e.clock.Now()
		e.Step(begin)
		if spent := e.clock.Now().Sub(begin); spent < tickStep {
			e.sleep(ctx, tickStep-spent)
		}
	}
	e.log.Info("emulation stopped", "ticks", e.ticks.Load())
}

// Step runs one loop iteration at time now: pending close requests are
// applied, the elapsed wall time is accumulated and every live instance is
// advanced once per whole tickStep.
func (e *Emulator) Step(now time.Time) int {
	e.drainCloseRequests()
	if !e.running.Load() {
		return 0
	}
	dt := now.Sub(e.lastTime)
	e.lastTime = now
	if dt < 0 {
		dt = 0
	}
	e.acc += dt

	steps := 0
	for e.acc >= tickStep && e.running.Load() {
		if steps == maxCatchUpSteps {
			e.log.Debug("dropping step backlog", "backlog", e.acc)
			e.acc = 0
			break
		}
		e.advance(tickStep)
		e.acc -= tickStep
		steps++
	}
	return steps
}

func (e *Emulator) drainCloseRequests() {
	for {
		select {
		case id := <-e.closeRequests:
			e.RemoveComputer(id)
		default:
			return
		}
	}
}

func (e *Emulator) advance(step time.Duration) {
	e.elapsed += step
	e.ticks.Add(1)
	blink := cursorBlinkAt(e.elapsed)
	dt := step.Seconds()
	for _, inst := range e.Instances() {
		e.advanceInstance(inst, dt, blink)
	}
}

// cursorBlinkAt is the global blink phase after elapsed emulated time.
func cursorBlinkAt(elapsed time.Duration) bool {
	return (elapsed/blinkPeriod)%2 == 0
}

func (e *Emulator) advanceInstance(inst *Instance, dt float64, blink bool) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("instance step panicked", "computer", inst.id, "panic", fmt.Sprint(r))
		}
	}()
	inst.mu.Lock()
	defer inst.mu.Unlock()
	inst.computer.Advance(dt)
	if inst.renderer != nil {
		inst.renderer.OnAdvance(dt, blink)
	}
}

// Instances returns a snapshot of the live set ordered by id.
func (e *Emulator) Instances() []*Instance {
	e.mu.Lock()
	out := make([]*Instance, 0, len(e.instances))
	for _, inst := range e.instances {
		out = append(out, inst)
	}
	e.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func (e *Emulator) Instance(id int) (*Instance, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	inst, ok := e.instances[id]
	return inst, ok
}

// CreateComputer allocates the next id, builds the computer and its
// renderer, and powers it on. It is advanced from the next step.
func (e *Emulator) CreateComputer() (*Instance, error) {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.mu.Unlock()

	log := withComputer(e.log, id)
	term := NewTerminalBuffer(e.cfg.TermWidth, e.cfg.TermHeight)
	c, err := e.computer(id, term, e.cfg, e, log)
	if err != nil {
		return nil, fmt.Errorf("create computer %d: %w", id, err)
	}
	inst := &Instance{
		id:            id,
		computer:      c,
		closeRequests: e.closeRequests,
		done:          e.done,
	}
	r, err := e.factory.Create(inst, e.cfg)
	if err != nil {
		c.Shutdown()
		return nil, fmt.Errorf("create renderer for computer %d: %w", id, err)
	}
	inst.renderer = r
	r.SetVisible(true)

	e.mu.Lock()
	e.instances[id] = inst
	e.mu.Unlock()

	inst.WithLock(func(c Computer) { c.TurnOn() })
	log.Info("computer created")
	return inst, nil
}

// RemoveComputer disposes the instance's renderer and drops it. Removing
// the last instance stops the emulator. It must not be called with any
// instance lock held.
func (e *Emulator) RemoveComputer(id int) bool {
	e.mu.Lock()
	inst, ok := e.instances[id]
	if ok {
		delete(e.instances, id)
	}
	empty := len(e.instances) == 0
	e.mu.Unlock()
	if !ok {
		return false
	}

	inst.mu.Lock()
	if inst.renderer != nil {
		inst.renderer.Dispose()
	}
	inst.computer.Shutdown()
	inst.mu.Unlock()

	withComputer(e.log, id).Info("computer removed")
	if empty && e.running.Load() {
		e.Stop()
	}
	return true
}

// OpenComputer implements ComputerHost.
func (e *Emulator) OpenComputer() (int, error) {
	if !e.running.Load() {
		return 0, ErrNotRunning
	}
	inst, err := e.CreateComputer()
	if err != nil {
		return 0, err
	}
	return inst.id, nil
}

// CloseComputer implements ComputerHost. Removal happens on the next step
// so a computer may close itself from inside Advance.
func (e *Emulator) CloseComputer(id int) bool {
	inst, ok := e.Instance(id)
	if !ok {
		return false
	}
	inst.RequestClose()
	return true
}

func (e *Emulator) Version() string {
	return "CCEmuX-Go " + emulatorVersion
}

// TicksSinceStart counts fixed steps since Start.
func (e *Emulator) TicksSinceStart() uint64 { return e.ticks.Load() }

// Day is the in-game day, starting at 1.
func (e *Emulator) Day() int {
	return int(e.ticks.Load()/ticksPerDay) + 1
}

// TimeOfDay is the in-game hour in [0, 24).
func (e *Emulator) TimeOfDay() float64 {
	t := (e.ticks.Load() + 6000) % ticksPerDay
	return float64(t) / 1000
}
