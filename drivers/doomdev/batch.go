package doomdev

import (
	"errors"
	"sort"

	"github.com/clktmr/doomdev/debug"
	"github.com/clktmr/doomdev/hw/cmd"
)

var errBatchFull = errors.New("doomdev: batch full")

// batch collects the command words of one draw call. Its capacity is fixed
// when it's created.
type batch struct {
	words []cmd.Command
	marks []int // end of each primitive in words
}

func newBatch(capacity int) batch {
	return batch{words: make([]cmd.Command, 0, capacity)}
}

// push appends ws, or nothing if they don't fit.
func (b *batch) push(ws ...cmd.Command) error {
	if len(b.words)+len(ws) > cap(b.words) {
		return errBatchFull
	}
	b.words = append(b.words, ws...)
	return nil
}

// mark ends the current primitive.
func (b *batch) mark() { b.marks = append(b.marks, len(b.words)) }

func (b *batch) primitives() int { return len(b.marks) }

// primitivesIn returns the number of primitives completely contained in the
// first n words.
func (b *batch) primitivesIn(n int) int {
	return sort.Search(len(b.marks), func(i int) bool { return b.marks[i] > n })
}

// encoder emits words into a batch while tracking the state they leave the
// rasterizer in. It starts from a copy of the device's cached state which is
// only committed once the batch was sent.
type encoder struct {
	batch
	st  state
	err error
}

func (d *Device) newEncoder(capacity int) *encoder {
	return &encoder{batch: newBatch(capacity), st: d.st}
}

func (e *encoder) emit(ws ...cmd.Command) {
	if e.err != nil {
		return
	}
	e.err = e.push(ws...)
	debug.AssertErrNil(e.err)
}

// set emits c unless reg already holds it.
func (e *encoder) set(reg *cmd.Command, c cmd.Command) {
	if *reg != c {
		e.emit(c)
		*reg = c
	}
}

func (e *encoder) dest(s *Surface) {
	e.set(&e.st.dstDims, cmd.SurfDims(s.width, s.height))
	e.set(&e.st.dstPT, cmd.SurfDstPT(s.pt.Addr()))
}
