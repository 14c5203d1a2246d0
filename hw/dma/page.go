package dma

import (
	"errors"
	"fmt"

	"github.com/clktmr/doomdev/debug"
	"github.com/clktmr/doomdev/hw"
)

// Page is an aligned view into a DMA-coherent block.
type Page struct {
	Buf   []byte  // CPU view, len(Buf) is the page size
	Addr  hw.Addr // device view of Buf[0], aligned to Align
	Align int

	block Block
	alloc Allocator
	freed bool
}

// AllocPage allocates size zeroed bytes aligned to align, which must be a power of
// two. The block is over-allocated by align-1 bytes and the page shifted to
// the first aligned address in it.
func AllocPage(a Allocator, size, align int) (*Page, error) {
	debug.Assert(size > 0, "dma: invalid page size %d", size)
	debug.Assert(align > 0 && align&(align-1) == 0, "dma: alignment %d not a power of two", align)

	b, err := a.Alloc(size + align - 1)
	if err != nil {
		if !errors.Is(err, ErrOutOfMemory) {
			err = fmt.Errorf("%w: %w", ErrOutOfMemory, err)
		}
		return nil, err
	}

	shift := int((hw.Addr(align) - b.Addr%hw.Addr(align)) % hw.Addr(align))
	buf := b.Buf[shift : shift+size : shift+size]
	clear(buf)
	return &Page{
		Buf:   buf,
		Addr:  b.Addr + hw.Addr(shift),
		Align: align,
		block: b,
		alloc: a,
	}, nil
}

// Free returns the page's block to its allocator. Must be called exactly
// once, further calls are ignored.
func (p *Page) Free() {
	debug.Assert(!p.freed, "dma: double free of page 0x%08x", p.Addr)
	if p.freed {
		return
	}
	p.freed = true
	p.alloc.Free(p.block)
	p.Buf = nil
}
