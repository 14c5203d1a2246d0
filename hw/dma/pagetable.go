package dma

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/clktmr/doomdev/debug"
	"github.com/clktmr/doomdev/hw"
)

const (
	// PageSize is the size of the pages the device's TLBs map.
	PageSize = 4096

	// MaxPages is the maximum number of pages behind a page table.
	MaxPages = 1024

	// TableAlign is the alignment the device requires for page tables.
	TableAlign = 64

	descSize  = 4
	descValid = 1 << 0
)

// PageTable maps a buffer scattered over pages into one linear range the
// device can address. The header page holds one little-endian descriptor per
// data page, each the page's device address with the valid bit set.
type PageTable struct {
	header   *Page
	pages    []*Page
	pageSize int
}

// NewPageTable allocates count pages of pageSize bytes, aligned to align,
// and a header describing them. Either all memory is allocated or none.
func NewPageTable(a Allocator, pageSize, align, count int) (*PageTable, error) {
	if count > MaxPages || count <= 0 {
		return nil, fmt.Errorf("%w: %d pages", ErrResourceLimit, count)
	}
	debug.Assert(align > descValid, "dma: page alignment %d leaves no room for flags", align)

	header, err := AllocPage(a, count*descSize, TableAlign)
	if err != nil {
		return nil, err
	}

	t := &PageTable{
		header:   header,
		pages:    make([]*Page, 0, count),
		pageSize: pageSize,
	}
	for i := range count {
		p, err := AllocPage(a, pageSize, align)
		if err != nil {
			t.Free()
			return nil, err
		}
		t.pages = append(t.pages, p)
		binary.LittleEndian.PutUint32(header.Buf[i*descSize:], uint32(p.Addr)|descValid)
	}

	return t, nil
}

// Addr returns the device address of the header, which is passed to the
// device in place of the buffer's address.
func (t *PageTable) Addr() hw.Addr { return t.header.Addr }

// Len returns the number of pages.
func (t *PageTable) Len() int { return len(t.pages) }

// Size returns the number of bytes mapped.
func (t *PageTable) Size() int { return len(t.pages) * t.pageSize }

func (t *PageTable) Page(i int) *Page { return t.pages[i] }

// Descriptor returns the raw descriptor of page i as seen by the device.
func (t *PageTable) Descriptor(i int) uint32 {
	return binary.LittleEndian.Uint32(t.header.Buf[i*descSize:])
}

// Free releases all data pages and then the header. The device must not
// access the table anymore.
func (t *PageTable) Free() {
	for _, p := range t.pages {
		p.Free()
	}
	t.pages = nil
	t.header.Free()
}

// WriteAt copies p into the mapped range, scattering it over the pages.
func (t *PageTable) WriteAt(p []byte, off int64) (n int, err error) {
	if off < 0 || off > int64(t.Size()) {
		return 0, fmt.Errorf("dma: offset %d out of range", off)
	}
	for n < len(p) {
		i, o := int(off)/t.pageSize, int(off)%t.pageSize
		if i >= len(t.pages) {
			return n, io.ErrShortWrite
		}
		nn := copy(t.pages[i].Buf[o:], p[n:])
		n += nn
		off += int64(nn)
	}
	return n, nil
}

// ReadAt copies from the mapped range into p, gathering it from the pages.
func (t *PageTable) ReadAt(p []byte, off int64) (n int, err error) {
	if off < 0 {
		return 0, fmt.Errorf("dma: offset %d out of range", off)
	}
	for n < len(p) {
		i, o := int(off)/t.pageSize, int(off)%t.pageSize
		if i >= len(t.pages) {
			return n, io.EOF
		}
		nn := copy(p[n:], t.pages[i].Buf[o:])
		n += nn
		off += int64(nn)
	}
	return n, nil
}
