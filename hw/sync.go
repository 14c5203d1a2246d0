package hw

import (
	"context"
	"sync"
)

// Note is a completion signal which can be woken from the interrupt handler
// goroutine. After Wakeup all current and future sleepers return until the
// note is cleared again.
//
// The zero value is a cleared note.
type Note struct {
	mtx   sync.Mutex
	ch    chan struct{}
	woken bool
}

func (n *Note) wait() chan struct{} {
	if n.ch == nil {
		n.ch = make(chan struct{})
	}
	return n.ch
}

// Clear rearms the note. Sleepers of a note that wasn't woken keep sleeping.
func (n *Note) Clear() {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	if n.woken {
		n.ch = nil
		n.woken = false
	}
}

// Wakeup wakes all sleepers. Waking an already woken note is a no-op.
func (n *Note) Wakeup() {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	if !n.woken {
		close(n.wait())
		n.woken = true
	}
}

// Woken reports whether Wakeup was called since the last Clear.
func (n *Note) Woken() bool {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	return n.woken
}

// Sleep blocks until the note is woken or ctx is done, in which case the
// context's error is returned.
func (n *Note) Sleep(ctx context.Context) error {
	n.mtx.Lock()
	ch := n.wait()
	n.mtx.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
