package testing

import (
	"fmt"
	"sync"

	"github.com/clktmr/doomdev/hw"
	"github.com/clktmr/doomdev/hw/dma"
)

// HeapBase is the device address of memory returned by NewAllocator.
const HeapBase hw.Addr = 0x1000_0000

// Allocator wraps a dma.Heap on plain memory and keeps track of the blocks
// handed out. It can be scripted to fail.
type Allocator struct {
	heap *dma.Heap

	// Fail allocations once Limit blocks were allocated. Zero means no
	// limit.
	Limit int

	// Called for every freed block, before it is returned to the heap.
	OnFree func(b dma.Block)

	mtx    sync.Mutex
	allocs int
	live   int
}

// NewAllocator returns an allocator with size bytes of memory.
func NewAllocator(size int) *Allocator {
	return &Allocator{heap: dma.NewHeap(make([]byte, size), HeapBase)}
}

func (a *Allocator) Alloc(n int) (dma.Block, error) {
	a.mtx.Lock()
	if a.Limit > 0 && a.allocs >= a.Limit {
		a.mtx.Unlock()
		return dma.Block{}, fmt.Errorf("%w: limit of %d blocks", dma.ErrOutOfMemory, a.Limit)
	}
	a.mtx.Unlock()

	b, err := a.heap.Alloc(n)
	if err != nil {
		return b, err
	}

	a.mtx.Lock()
	a.allocs++
	a.live++
	a.mtx.Unlock()
	return b, nil
}

func (a *Allocator) Free(b dma.Block) {
	if a.OnFree != nil {
		a.OnFree(b)
	}
	a.mtx.Lock()
	a.live--
	a.mtx.Unlock()
	a.heap.Free(b)
}

// Allocs returns the number of successful allocations.
func (a *Allocator) Allocs() int {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	return a.allocs
}

// Live returns the number of blocks not freed yet.
func (a *Allocator) Live() int {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	return a.live
}

// Heap returns the underlying heap.
func (a *Allocator) Heap() *dma.Heap { return a.heap }
