package doomdev

import (
	"context"
	"fmt"
	"io"

	"github.com/clktmr/doomdev/hw"
	"github.com/clktmr/doomdev/hw/cmd"
	"github.com/clktmr/doomdev/hw/dma"
)

// Sizes of the device's memory objects.
const (
	FlatSize     = 64 * 64
	ColormapSize = 256

	MaxColormaps = 255

	MinSurfaceWidth  = 64
	MaxSurfaceWidth  = 2048
	SurfaceWidthStep = 64
	MaxSurfaceHeight = 2048
)

// resource is implemented by Surface, Texture, Flat and Colormaps.
type resource interface {
	base() *handle
	free()
}

// handle ties a resource to the device that created it.
type handle struct {
	dev  *Device
	dead bool // guarded by the device lock
}

func (h *handle) base() *handle { return h }

// check returns ErrInvalidHandle unless r is a live resource of d. Must be
// called with the device lock held.
func (d *Device) check(r resource) error {
	var isNil bool
	switch r := r.(type) {
	case *Surface:
		isNil = r == nil
	case *Texture:
		isNil = r == nil
	case *Flat:
		isNil = r == nil
	case *Colormaps:
		isNil = r == nil
	default:
		isNil = r == nil
	}
	if isNil {
		return fmt.Errorf("%w: nil resource", ErrInvalidHandle)
	}
	if h := r.base(); h.dev != d || h.dead {
		return ErrInvalidHandle
	}
	return nil
}

// destroy frees r once the device is done with all submitted commands.
func (d *Device) destroy(ctx context.Context, r resource) error {
	return d.drain(ctx, func() error {
		if err := d.check(r); err != nil {
			return err
		}
		r.free()
		r.base().dead = true
		// Freed addresses may be handed out again for a different
		// resource.
		d.st.reset()
		return nil
	})
}

// Surface is a 8-bit paletted image the device draws into.
type Surface struct {
	handle
	pt            *dma.PageTable
	width, height int
	dirty         bool // written by the device since last read as copy source
}

// NewSurface allocates a zeroed surface. The width must be a multiple of 64
// in [64, 2048] and the height in [1, 2048].
func (d *Device) NewSurface(width, height int) (*Surface, error) {
	if width < MinSurfaceWidth || width > MaxSurfaceWidth || width%SurfaceWidthStep != 0 ||
		height < 1 || height > MaxSurfaceHeight {
		return nil, fmt.Errorf("%w: surface %dx%d", ErrResourceLimit, width, height)
	}

	pages := (width*height + dma.PageSize - 1) / dma.PageSize
	pt, err := dma.NewPageTable(d.alloc, dma.PageSize, dma.PageSize, pages)
	if err != nil {
		return nil, err
	}
	return &Surface{
		handle: handle{dev: d},
		pt:     pt,
		width:  width,
		height: height,
	}, nil
}

func (s *Surface) Width() int  { return s.width }
func (s *Surface) Height() int { return s.height }

func (s *Surface) free() { s.pt.Free() }

// Destroy frees the surface after the device finished drawing.
func (s *Surface) Destroy(ctx context.Context) error { return s.dev.destroy(ctx, s) }

func (s *Surface) Close() error { return s.Destroy(context.Background()) }

// ReadAt reads the surface's pixels in row-major order after the device
// finished drawing, so the result is never torn by a pending command.
func (s *Surface) ReadAt(p []byte, off int64) (n int, err error) {
	err = s.dev.drain(context.Background(), func() error {
		if err := s.dev.check(s); err != nil {
			return err
		}
		size := int64(s.width * s.height)
		if off < 0 {
			return fmt.Errorf("%w: offset %d", ErrInvalidArgument, off)
		}
		if off >= size {
			return io.EOF
		}
		if rest := size - off; int64(len(p)) > rest {
			p = p[:rest]
		}
		var rerr error
		n, rerr = s.pt.ReadAt(p, off)
		if rerr != nil {
			return rerr
		}
		if off+int64(n) == size {
			return io.EOF
		}
		return nil
	})
	return n, err
}

func (s *Surface) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < s.width && y < s.height
}

func (s *Surface) contains(x, y, w, h int) bool {
	return w > 0 && h > 0 && w <= cmd.MaxRectSize && h <= cmd.MaxRectSize &&
		s.inside(x, y) && x+w <= s.width && y+h <= s.height
}

// Texture holds column data sampled by DrawColumns.
type Texture struct {
	handle
	pt     *dma.PageTable
	size   int
	height int
}

// NewTexture allocates a texture of size bytes read from r. Columns wrap
// every height texels, unless height is zero.
func (d *Device) NewTexture(r io.Reader, size, height int) (*Texture, error) {
	if size < 1 || size > cmd.MaxTextureSize || height < 0 || height > cmd.MaxTextureHeight {
		return nil, fmt.Errorf("%w: texture of %d bytes, height %d", ErrResourceLimit, size, height)
	}

	pages := (size + dma.PageSize - 1) / dma.PageSize
	pt, err := dma.NewPageTable(d.alloc, dma.PageSize, dma.PageSize, pages)
	if err != nil {
		return nil, err
	}

	// Pages are zeroed, so the last one is padded already.
	for i, rest := 0, size; rest > 0; i++ {
		n := min(rest, dma.PageSize)
		if _, err := io.ReadFull(r, pt.Page(i).Buf[:n]); err != nil {
			pt.Free()
			return nil, fmt.Errorf("%w: reading texture: %w", ErrInvalidArgument, err)
		}
		rest -= n
	}

	return &Texture{
		handle: handle{dev: d},
		pt:     pt,
		size:   size,
		height: height,
	}, nil
}

func (t *Texture) Size() int   { return t.size }
func (t *Texture) Height() int { return t.height }

func (t *Texture) free() { t.pt.Free() }

func (t *Texture) Destroy(ctx context.Context) error { return t.dev.destroy(ctx, t) }

func (t *Texture) Close() error { return t.Destroy(context.Background()) }

// Flat is a 64x64 texture sampled by DrawSpans and DrawBackground.
type Flat struct {
	handle
	page *dma.Page
}

// NewFlat allocates a flat read from r, which must provide FlatSize bytes.
func (d *Device) NewFlat(r io.Reader) (*Flat, error) {
	p, err := dma.AllocPage(d.alloc, FlatSize, cmd.FlatAlign)
	if err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(r, p.Buf); err != nil {
		p.Free()
		return nil, fmt.Errorf("%w: reading flat: %w", ErrInvalidArgument, err)
	}
	return &Flat{handle: handle{dev: d}, page: p}, nil
}

func (f *Flat) addr() hw.Addr { return f.page.Addr }

func (f *Flat) free() { f.page.Free() }

func (f *Flat) Destroy(ctx context.Context) error { return f.dev.destroy(ctx, f) }

func (f *Flat) Close() error { return f.Destroy(context.Background()) }

// Colormaps is an array of palette remapping tables, used as colormaps or
// as translation tables.
type Colormaps struct {
	handle
	maps []*dma.Page
}

// NewColormaps allocates n colormaps of ColormapSize bytes each, read from
// r.
func (d *Device) NewColormaps(r io.Reader, n int) (*Colormaps, error) {
	if n < 1 || n > MaxColormaps {
		return nil, fmt.Errorf("%w: %d colormaps", ErrResourceLimit, n)
	}

	c := &Colormaps{handle: handle{dev: d}, maps: make([]*dma.Page, 0, n)}
	for range n {
		p, err := dma.AllocPage(d.alloc, ColormapSize, cmd.ColormapAlign)
		if err != nil {
			c.free()
			return nil, err
		}
		c.maps = append(c.maps, p)
		if _, err := io.ReadFull(r, p.Buf); err != nil {
			c.free()
			return nil, fmt.Errorf("%w: reading colormap: %w", ErrInvalidArgument, err)
		}
	}
	return c, nil
}

func (c *Colormaps) Len() int { return len(c.maps) }

func (c *Colormaps) addr(i int) hw.Addr { return c.maps[i].Addr }

func (c *Colormaps) free() {
	for _, p := range c.maps {
		p.Free()
	}
	c.maps = nil
}

func (c *Colormaps) Destroy(ctx context.Context) error { return c.dev.destroy(ctx, c) }

func (c *Colormaps) Close() error { return c.Destroy(context.Background()) }
