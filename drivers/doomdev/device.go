// Package doomdev drives a Doom rendering accelerator.
//
// A Device turns draw calls on surfaces into command words for the
// accelerator's FIFO. Surfaces, textures, flats and colormaps live in DMA
// memory and are referenced by the device through page tables or aligned
// addresses.
//
// All submissions and all operations that need the device to be idle, like
// reading back a surface or destroying a resource, are serialized by a
// single device lock. Waiting for the lock or for free FIFO slots can be
// interrupted by cancelling the context.
package doomdev

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/clktmr/doomdev/debug"
	"github.com/clktmr/doomdev/drivers/fifo"
	"github.com/clktmr/doomdev/hw"
	"github.com/clktmr/doomdev/hw/dma"
)

// Interrupts enabled while the device is open. PONG_ASYNC is managed by the
// FIFO writer.
const intrMask = hw.IntrPongSync | hw.IntrFaults

type Device struct {
	regs  *hw.Registers
	irq   hw.IRQ
	alloc dma.Allocator
	queue *fifo.Queue

	lock   *semaphore.Weighted
	st     state // guarded by lock
	closed bool  // guarded by lock

	faults    atomic.Uint64
	lastFault atomic.Pointer[fifo.Fault]

	log    *logrus.Entry
	cancel context.CancelFunc
	done   chan struct{}
	closer io.Closer
}

// New resets the device behind win and starts handling its interrupts.
// Resources are allocated from alloc.
func New(win hw.Window, irq hw.IRQ, alloc dma.Allocator, cfg Config) *Device {
	log := debug.Log.WithField("device", cfg.name())
	regs := hw.NewRegisters(win)

	d := &Device{
		regs:  regs,
		irq:   irq,
		alloc: alloc,
		queue: fifo.New(regs, cfg.Heartbeat, log),
		lock:  semaphore.NewWeighted(1),
		log:   log,
		done:  make(chan struct{}),
	}
	d.st.reset()

	regs.SetEnable(0)
	regs.Reset(hw.ResetAll)
	regs.Ack(hw.IntrAll)
	regs.SetEnabled(intrMask)
	regs.SetEnable(hw.EnableFetch)

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	go d.serve(ctx)

	log.WithField("heartbeat", cfg.Heartbeat).Info("device ready")
	return d
}

// serve handles interrupts until ctx is done. Faults are only logged, there
// is no way to tell which caller's command caused them.
func (d *Device) serve(ctx context.Context) {
	defer close(d.done)
	for {
		if err := d.irq.Wait(ctx); err != nil {
			if ctx.Err() == nil {
				d.log.WithError(err).Error("waiting for interrupt failed")
			}
			return
		}
		if f, ok := d.queue.HandleInterrupt(); ok {
			d.faults.Add(1)
			d.lastFault.Store(&f)
			d.log.WithFields(logrus.Fields{
				"intr": f.Intr,
				"code": f.Code,
				"cmd":  f.Cmd,
			}).Error("device fault")
		}
		if err := d.irq.Unmask(); err != nil {
			d.log.WithError(err).Error("unmasking interrupt failed")
			return
		}
	}
}

// Faults returns the number of fault interrupts seen so far and the last
// one, which wraps ErrDeviceFault.
func (d *Device) Faults() (n uint64, last error) {
	n = d.faults.Load()
	if f := d.lastFault.Load(); f != nil {
		last = *f
	}
	return n, last
}

// Close waits for all submitted commands to finish and disables the device.
// Resources that weren't destroyed yet can still be destroyed afterwards.
func (d *Device) Close() error {
	err := d.drain(context.Background(), func() error {
		if d.closed {
			return ErrClosed
		}
		d.closed = true
		d.regs.SetEnabled(0)
		d.regs.SetEnable(0)
		return nil
	})
	if err != nil {
		return err
	}

	d.cancel()
	<-d.done
	d.log.Info("device closed")

	if d.closer != nil {
		return d.closer.Close()
	}
	return nil
}

// acquire takes the device lock for a submission.
func (d *Device) acquire(ctx context.Context) error {
	if err := d.lock.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("%w: %w", ErrInterrupted, err)
	}
	if d.closed {
		d.lock.Release(1)
		return ErrClosed
	}
	return nil
}

func (d *Device) release() { d.lock.Release(1) }

// drain takes the device lock, waits until the device retired all commands
// and runs fn. Nothing happens if the lock can't be taken or the barrier
// can't be queued before ctx is done. Once queued, the barrier is waited for
// regardless of ctx.
func (d *Device) drain(ctx context.Context, fn func() error) error {
	if err := d.lock.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("%w: %w", ErrInterrupted, err)
	}
	defer d.lock.Release(1)

	if !d.closed {
		if err := d.queue.Sync(ctx); err != nil {
			return err
		}
	}
	return fn()
}

// Sync waits until the device retired all commands submitted so far.
func (d *Device) Sync(ctx context.Context) error {
	return d.drain(ctx, func() error { return nil })
}

// submit sends the primitives encoded in e and commits e's state. verr is
// the error that stopped encoding early, if any. The surfaces' dirty flags
// are updated for the words that made it to the FIFO.
//
// The returned count is the number of primitives sent. If it's lower than
// the number of primitives requested, the error tells why.
func (d *Device) submit(ctx context.Context, e *encoder, verr error, dst, src *Surface) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n := e.primitives()
	if n == 0 {
		return 0, verr
	}

	sent, err := d.queue.Send(ctx, e.words)
	if err != nil {
		// Whatever got through changed the rasterizer's state.
		d.st.reset()
		if sent > 0 {
			dst.dirty = true
		}
		d.log.WithError(err).WithField("words", sent).Debug("submission interrupted")
		return e.primitivesIn(sent), err
	}

	d.st = e.st
	if src != nil {
		src.dirty = false
	}
	dst.dirty = true
	return n, verr
}
