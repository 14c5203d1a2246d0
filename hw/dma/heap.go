package dma

import (
	"fmt"
	"sync"

	"github.com/google/btree"

	"github.com/clktmr/doomdev/debug"
	"github.com/clktmr/doomdev/hw"
)

// Smallest unit of allocation. Keeps all blocks aligned for word access.
const heapGranule = 8

type extent struct {
	off, size int
}

func extentLess(a, b extent) bool { return a.off < b.off }

// Heap is an Allocator carving blocks from one contiguous DMA region, e.g.
// a UIO map or a reserved memory range. Free space is kept in an index of
// extents ordered by offset, allocation is first-fit and freed blocks are
// merged with their neighbours.
//
// Heap is safe for concurrent use.
type Heap struct {
	mtx  sync.Mutex
	mem  []byte
	base hw.Addr

	free *btree.BTreeG[extent]
	used map[int]int // offset to size of live blocks

	stats HeapStats
}

type HeapStats struct {
	Allocs, Frees int // number of calls that succeeded
	Live          int // number of live blocks
	FreeBytes     int
}

// NewHeap returns a heap managing mem, which the device sees at base.
func NewHeap(mem []byte, base hw.Addr) *Heap {
	h := &Heap{
		mem:  mem,
		base: base,
		free: btree.NewG(8, extentLess),
		used: make(map[int]int),
	}
	// Skip the start of mem to keep block addresses granule aligned.
	start := int(-base) & (heapGranule - 1)
	if size := (len(mem) - start) &^ (heapGranule - 1); size > 0 {
		h.free.ReplaceOrInsert(extent{start, size})
		h.stats.FreeBytes = size
	}
	return h
}

func (h *Heap) Alloc(n int) (Block, error) {
	if n <= 0 {
		return Block{}, fmt.Errorf("%w: invalid size %d", ErrOutOfMemory, n)
	}
	size := (n + heapGranule - 1) &^ (heapGranule - 1)

	h.mtx.Lock()
	defer h.mtx.Unlock()

	var found extent
	h.free.Ascend(func(e extent) bool {
		if e.size >= size {
			found = e
			return false
		}
		return true
	})
	if found.size == 0 {
		return Block{}, fmt.Errorf("%w: %d bytes", ErrOutOfMemory, n)
	}

	h.free.Delete(found)
	if found.size > size {
		h.free.ReplaceOrInsert(extent{found.off + size, found.size - size})
	}
	h.used[found.off] = size
	h.stats.Allocs++
	h.stats.Live++
	h.stats.FreeBytes -= size

	return Block{
		Buf:  h.mem[found.off : found.off+n : found.off+n],
		Addr: h.base + hw.Addr(found.off),
	}, nil
}

func (h *Heap) Free(b Block) {
	off := int(b.Addr - h.base)

	h.mtx.Lock()
	defer h.mtx.Unlock()

	size, ok := h.used[off]
	debug.Assert(ok, "dma: free of unknown block 0x%08x", b.Addr)
	if !ok {
		return
	}
	delete(h.used, off)
	h.stats.Frees++
	h.stats.Live--
	h.stats.FreeBytes += size

	// The tree can't be modified while iterating, look up neighbours first.
	var prev, next extent
	h.free.DescendLessOrEqual(extent{off: off}, func(e extent) bool {
		prev = e
		return false
	})
	h.free.AscendGreaterOrEqual(extent{off: off}, func(e extent) bool {
		next = e
		return false
	})

	e := extent{off, size}
	if prev.size != 0 && prev.off+prev.size == e.off {
		h.free.Delete(prev)
		e = extent{prev.off, prev.size + e.size}
	}
	if next.size != 0 && next.off == off+size {
		h.free.Delete(next)
		e.size += next.size
	}
	h.free.ReplaceOrInsert(e)
}

// Stats returns a snapshot of the heap's counters.
func (h *Heap) Stats() HeapStats {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	return h.stats
}
