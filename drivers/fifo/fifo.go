// Package fifo feeds command words into the accelerator's command FIFO.
//
// The FIFO is shallow, so writers frequently have to wait for free slots.
// Instead of polling FIFO_FREE, a writer enables the PONG_ASYNC interrupt and
// sleeps until the front-end retires one of the PING_ASYNC heartbeats that
// are injected into the stream at a fixed interval.
package fifo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/clktmr/doomdev/debug"
	"github.com/clktmr/doomdev/hw"
	"github.com/clktmr/doomdev/hw/cmd"
)

// Free slots required to write a word: one for the word itself and one for
// a heartbeat that might follow it.
const reserve = 2

// DefaultHeartbeat is the number of words between two heartbeats.
const DefaultHeartbeat = 32

var (
	ErrInterrupted = errors.New("fifo: interrupted")
	ErrDeviceFault = errors.New("fifo: device fault")
)

type State int32

const (
	Idle                 State = iota
	Draining                   // writing words
	AwaitingSlot               // sleeping until PONG_ASYNC
	AwaitingDrainBarrier       // sleeping until PONG_SYNC
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Draining:
		return "draining"
	case AwaitingSlot:
		return "awaiting slot"
	case AwaitingDrainBarrier:
		return "awaiting drain barrier"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Fault describes an error interrupt raised by the device.
type Fault struct {
	Intr hw.InterruptFlag
	Code uint32      // FE_ERROR_CODE, only valid with IntrFEError
	Cmd  cmd.Command // FE_ERROR_CMD, only valid with IntrFEError
}

func (f Fault) Error() string {
	if f.Intr&hw.IntrFEError != 0 {
		return fmt.Sprintf("%v %v: code 0x%x at %v", ErrDeviceFault, f.Intr, f.Code, f.Cmd)
	}
	return fmt.Sprintf("%v %v", ErrDeviceFault, f.Intr)
}

func (f Fault) Unwrap() error { return ErrDeviceFault }

// Queue owns the command FIFO of one device.
//
// Send and Sync must not be called concurrently, the caller serializes them
// with its device lock. HandleInterrupt may be called concurrently from the
// interrupt goroutine.
type Queue struct {
	regs *hw.Registers

	// Guards the free slot check against enabling and acknowledging
	// interrupts. Never held while sleeping.
	mtx sync.Mutex

	syncDone  hw.Note
	asyncDone hw.Note

	heartbeat int
	sent      int // words since the last heartbeat

	state atomic.Int32
	log   *logrus.Entry
}

// New returns a queue writing to regs. The caller must have enabled
// IntrPongSync, the queue manages IntrPongAsync itself.
func New(regs *hw.Registers, heartbeat int, log *logrus.Entry) *Queue {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	if log == nil {
		log = logrus.NewEntry(debug.Log)
	}
	return &Queue{
		regs:      regs,
		heartbeat: heartbeat,
		log:       log,
	}
}

func (q *Queue) State() State { return State(q.state.Load()) }

func (q *Queue) setState(s State) {
	if old := State(q.state.Swap(int32(s))); old != s && q.log.Logger.IsLevelEnabled(logrus.DebugLevel) {
		q.log.WithField("state", s).Debug("fifo state")
	}
}

// Send writes words to the FIFO in order, blocking while the FIFO is full.
// It returns the number of words written. If ctx is done while waiting, the
// remaining words are dropped and the error wraps ErrInterrupted. A word is
// either written completely or not at all.
func (q *Queue) Send(ctx context.Context, words []cmd.Command) (n int, err error) {
	q.setState(Draining)
	defer q.setState(Idle)

	for n = range words {
		if err = q.put(ctx, words[n]); err != nil {
			return n, err
		}
		q.sent++
		if q.sent >= q.heartbeat {
			q.beat()
		}
	}
	return len(words), nil
}

// beat writes a heartbeat into the slot put reserved for it.
func (q *Queue) beat() {
	q.mtx.Lock()
	defer q.mtx.Unlock()
	debug.Assert(q.regs.FIFOFree() > 0, "fifo: no slot left for heartbeat")
	q.regs.Send(uint32(cmd.PingAsync()))
	q.sent = 0
}

func (q *Queue) put(ctx context.Context, w cmd.Command) error {
	for {
		if q.tryPut(w) {
			return nil
		}

		q.setState(AwaitingSlot)
		err := q.asyncDone.Sleep(ctx)

		q.mtx.Lock()
		q.regs.DisableInterrupts(hw.IntrPongAsync)
		q.mtx.Unlock()

		q.setState(Draining)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInterrupted, err)
		}
	}
}

// tryPut writes w if there are enough free slots. Otherwise it arms the
// PONG_ASYNC interrupt and returns false.
func (q *Queue) tryPut(w cmd.Command) bool {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	if q.regs.FIFOFree() >= reserve {
		q.regs.Send(uint32(w))
		return true
	}

	q.asyncDone.Clear()
	q.regs.Ack(hw.IntrPongAsync) // stale pong from an earlier heartbeat
	q.regs.EnableInterrupts(hw.IntrPongAsync)

	// Slots might have been freed before the interrupt was enabled.
	if q.regs.FIFOFree() >= reserve {
		q.regs.DisableInterrupts(hw.IntrPongAsync)
		q.regs.Send(uint32(w))
		return true
	}
	return false
}

// Sync writes a PING_SYNC and blocks until the device retired it, i.e. until
// all previously written commands are done. Only writing the barrier can be
// interrupted, once it's queued Sync waits for its completion.
func (q *Queue) Sync(ctx context.Context) error {
	q.setState(Draining)
	defer q.setState(Idle)

	q.syncDone.Clear()
	if err := q.put(ctx, cmd.PingSync()); err != nil {
		return err
	}

	q.setState(AwaitingDrainBarrier)
	return q.syncDone.Sleep(context.Background())
}

// HandleInterrupt acknowledges all pending and enabled interrupts and wakes
// the respective sleepers. It returns the fault if an error interrupt was
// pending.
func (q *Queue) HandleInterrupt() (f Fault, ok bool) {
	q.mtx.Lock()
	pending := q.regs.Pending() & q.regs.Enabled()
	if pending&hw.IntrFEError != 0 {
		code, c := q.regs.FrontEndError()
		f.Code, f.Cmd = code, cmd.Command(c)
	}
	q.regs.Ack(pending)
	q.mtx.Unlock()

	if pending&hw.IntrPongSync != 0 {
		q.syncDone.Wakeup()
	}
	if pending&hw.IntrPongAsync != 0 {
		q.asyncDone.Wakeup()
	}

	f.Intr = pending & hw.IntrFaults
	return f, f.Intr != 0
}
