// Package dma manages memory shared with the accelerator.
//
// Memory is handed out by an Allocator in DMA-coherent blocks, i.e. the CPU
// and the device see the same contents without cache maintenance. Pages are
// aligned views into such blocks and page tables group pages behind a
// descriptor array the device walks to reach a scattered buffer.
package dma

import (
	"errors"

	"github.com/clktmr/doomdev/hw"
)

var (
	ErrOutOfMemory   = errors.New("dma: out of memory")
	ErrResourceLimit = errors.New("dma: resource limit exceeded")
)

// Block is a DMA-coherent memory block.
type Block struct {
	Buf  []byte  // CPU view
	Addr hw.Addr // device view of Buf[0]
}

// Allocator hands out DMA-coherent memory blocks. Blocks are physically
// contiguous, so the device can address them by Addr plus offset.
//
// Implementations must be safe for concurrent use.
type Allocator interface {
	// Alloc returns a block of n bytes or an error wrapping
	// ErrOutOfMemory.
	Alloc(n int) (Block, error)

	// Free releases a block previously returned by Alloc.
	Free(b Block)
}
