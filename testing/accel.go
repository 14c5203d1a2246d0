// Package testing provides a simulated accelerator for writing device tests
// without hardware.
package testing

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/clktmr/doomdev/hw"
	"github.com/clktmr/doomdev/hw/cmd"
)

// DefaultFree is the FIFO free count reported while slots aren't scripted.
const DefaultFree = 512

// Accel simulates the accelerator's register window and interrupt line. It
// records every command word written to the FIFO and doesn't render
// anything.
//
// By default the FIFO never fills up and PING_ASYNC is retired immediately.
// After SetFree the free count is scripted: every written word takes a slot
// and only Release returns them.
type Accel struct {
	// Delay between retiring a PING_SYNC and raising PONG_SYNC.
	SyncDelay time.Duration

	mtx        sync.Mutex
	enable     uint32
	intr       hw.InterruptFlag
	intrEnable hw.InterruptFlag
	feCode     uint32
	feCmd      uint32

	scripted bool
	free     int

	words  []cmd.Command
	events []string

	masked bool
	irq    chan struct{}
	armed  chan struct{}
}

func NewAccel() *Accel {
	return &Accel{
		irq:   make(chan struct{}, 1),
		armed: make(chan struct{}, 1),
	}
}

func (a *Accel) Load(r hw.Reg) uint32 {
	a.mtx.Lock()
	defer a.mtx.Unlock()

	switch r {
	case hw.RegEnable:
		return a.enable
	case hw.RegIntr:
		return uint32(a.intr)
	case hw.RegIntrEnable:
		return uint32(a.intrEnable)
	case hw.RegFEErrorCode:
		return a.feCode
	case hw.RegFEErrorCmd:
		return a.feCmd
	case hw.RegFIFOFree:
		if a.scripted {
			return uint32(a.free)
		}
		return DefaultFree
	}
	return 0
}

func (a *Accel) Store(r hw.Reg, v uint32) {
	a.mtx.Lock()
	defer a.mtx.Unlock()

	switch r {
	case hw.RegEnable:
		a.enable = v
	case hw.RegReset:
		a.logLocked(fmt.Sprintf("reset %#x", v))
	case hw.RegIntr:
		a.intr &^= hw.InterruptFlag(v)
	case hw.RegIntrEnable:
		old := a.intrEnable
		a.intrEnable = hw.InterruptFlag(v) & hw.IntrAll
		if old&hw.IntrPongAsync == 0 && a.intrEnable&hw.IntrPongAsync != 0 {
			select {
			case a.armed <- struct{}{}:
			default:
			}
		}
		a.kickLocked()
	case hw.RegFIFOSend:
		a.sendLocked(cmd.Command(v))
	}
}

func (a *Accel) sendLocked(c cmd.Command) {
	if a.scripted {
		if a.free == 0 {
			a.raiseLocked(hw.IntrFIFOOverflow)
			return
		}
		a.free--
	}
	a.words = append(a.words, c)

	switch c.Op() {
	case cmd.OpPingSync:
		time.AfterFunc(a.SyncDelay, func() {
			a.mtx.Lock()
			defer a.mtx.Unlock()
			a.logLocked("pong sync")
			a.raiseLocked(hw.IntrPongSync)
		})
	case cmd.OpPingAsync:
		if !a.scripted {
			a.raiseLocked(hw.IntrPongAsync)
		}
	}
}

func (a *Accel) raiseLocked(f hw.InterruptFlag) {
	a.intr |= f
	a.kickLocked()
}

// kickLocked asserts the interrupt line if an enabled interrupt is pending
// and the line isn't masked.
func (a *Accel) kickLocked() {
	if a.masked || a.intr&a.intrEnable == 0 {
		return
	}
	a.masked = true
	select {
	case a.irq <- struct{}{}:
	default:
	}
}

// Wait implements hw.IRQ.
func (a *Accel) Wait(ctx context.Context) error {
	select {
	case <-a.irq:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Unmask implements hw.IRQ.
func (a *Accel) Unmask() error {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	a.masked = false
	a.kickLocked()
	return nil
}

// SetFree switches to scripted FIFO slots and sets the free count to n.
func (a *Accel) SetFree(n int) {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	a.scripted = true
	a.free = n
}

// Release frees n scripted FIFO slots and raises PONG_ASYNC, as if the
// front-end fetched a heartbeat.
func (a *Accel) Release(n int) {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	a.free += n
	a.logLocked(fmt.Sprintf("release %d", n))
	a.raiseLocked(hw.IntrPongAsync)
}

// Armed receives whenever PONG_ASYNC becomes enabled, i.e. a writer is about
// to sleep on a full FIFO.
func (a *Accel) Armed() <-chan struct{} { return a.armed }

// Fault raises a front-end error for the given code and command word.
func (a *Accel) Fault(code uint32, c cmd.Command) {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	a.feCode, a.feCmd = code, uint32(c)
	a.raiseLocked(hw.IntrFEError)
}

// Words returns a copy of all command words written so far.
func (a *Accel) Words() []cmd.Command {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	return slices.Clone(a.words)
}

// ClearWords forgets the recorded command words.
func (a *Accel) ClearWords() {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	a.words = nil
}

// Log appends ev to the event log. The accelerator logs resets, slot
// releases and sync pongs, tests can add their own events to check the
// ordering.
func (a *Accel) Log(ev string) {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	a.logLocked(ev)
}

func (a *Accel) logLocked(ev string) { a.events = append(a.events, ev) }

// Events returns a copy of the event log.
func (a *Accel) Events() []string {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	return slices.Clone(a.events)
}

// Enabled returns the enabled interrupts.
func (a *Accel) Enabled() hw.InterruptFlag {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	return a.intrEnable
}
