package doomdev

import (
	"context"
	"fmt"

	"github.com/clktmr/doomdev/hw/cmd"
	"github.com/clktmr/doomdev/hw/fixed"
)

// Upper bounds of the words emitted per draw call, used to size batches.
const (
	destWords       = 2 // SURF_DIMS, SURF_DST_PT
	fillWords       = 3
	lineWords       = 4
	copyHeaderWords = destWords + 2 // INTERLOCK, SURF_SRC_PT
	copyWords       = 3
	bgWords         = destWords + 2
	colHeaderWords  = destWords + 4 // DRAW_PARAMS, TEXTURE_DIMS, TEXTURE_PT, TRANSLATION_ADDR
	colWords        = 6             // COLORMAP_ADDR, USTART, USTEP, XY_A, XY_B, DRAW_COLUMN
	spanHeaderWords = destWords + 3 // FLAT_ADDR, DRAW_PARAMS, TRANSLATION_ADDR
	spanWords       = 8             // COLORMAP_ADDR, USTART, VSTART, USTEP, VSTEP, XY_A, XY_B, DRAW_SPAN
)

// FillRect fills W×H pixels at X, Y with Color.
type FillRect struct {
	X, Y, W, H int
	Color      uint8
}

// Line is drawn from X0, Y0 to X1, Y1 inclusive.
type Line struct {
	X0, Y0, X1, Y1 int
	Color          uint8
}

// CopyRect copies W×H pixels from SrcX, SrcY in the source surface to
// DstX, DstY in the destination surface.
type CopyRect struct {
	DstX, DstY int
	SrcX, SrcY int
	W, H       int
}

// Column is a vertical strip at X from Y1 to Y2 inclusive. It samples the
// texture at byte Offset, starting at texel coordinate UStart advanced by
// UStep per pixel.
type Column struct {
	X, Y1, Y2     int
	Offset        int
	UStart, UStep fixed.UInt10_16
	Colormap      int // index into Paint.Colormaps
}

// Span is a horizontal strip at Y from X1 to X2 inclusive. It samples the
// flat starting at (UStart, VStart) advanced by (UStep, VStep) per pixel.
type Span struct {
	X1, X2, Y      int
	UStart, VStart fixed.UInt10_16
	UStep, VStep   fixed.UInt10_16
	Colormap       int // index into Paint.Colormaps
}

// Paint selects how columns and spans are shaded.
//
// With cmd.DrawColormap texels are remapped through the primitive's
// colormap, with cmd.DrawTranslate through the translation table selected
// by Translation. cmd.DrawFuzz darkens the destination through the
// primitive's colormap instead of sampling a texture and excludes the other
// flags. It's only supported for columns.
type Paint struct {
	Flags        cmd.DrawFlags
	Colormaps    *Colormaps
	Translations *Colormaps
	Translation  int
}

func (p *Paint) usesColormap() bool {
	return p.Flags&(cmd.DrawColormap|cmd.DrawFuzz) != 0
}

// checkPaint validates p for the call and returns the flags to draw with.
func (d *Device) checkPaint(p *Paint, fuzzOK bool) (cmd.DrawFlags, error) {
	f := p.Flags
	if f&^(cmd.DrawFuzz|cmd.DrawTranslate|cmd.DrawColormap) != 0 {
		return 0, fmt.Errorf("%w: draw flags %#x", ErrInvalidArgument, f)
	}
	if f&cmd.DrawFuzz != 0 {
		if !fuzzOK {
			return 0, fmt.Errorf("%w: fuzz not supported", ErrInvalidArgument)
		}
		f = cmd.DrawFuzz
	}
	if f&(cmd.DrawColormap|cmd.DrawFuzz) != 0 {
		if err := d.check(p.Colormaps); err != nil {
			return 0, err
		}
	}
	if f&cmd.DrawTranslate != 0 {
		if err := d.check(p.Translations); err != nil {
			return 0, err
		}
		if p.Translation < 0 || p.Translation >= p.Translations.Len() {
			return 0, fmt.Errorf("%w: translation %d", ErrInvalidArgument, p.Translation)
		}
	}
	return f, nil
}

// FillRects fills rects in dst. It stops at the first rectangle that isn't
// inside dst, but still draws the ones before it. The number of rectangles
// drawn is returned, with an error if it's less than len(rects).
func (d *Device) FillRects(ctx context.Context, dst *Surface, rects []FillRect) (int, error) {
	if err := d.acquire(ctx); err != nil {
		return 0, err
	}
	defer d.release()
	if err := d.check(dst); err != nil {
		return 0, err
	}

	e := d.newEncoder(destWords + fillWords*len(rects))
	e.dest(dst)

	var verr error
	for i, r := range rects {
		if !dst.contains(r.X, r.Y, r.W, r.H) {
			verr = fmt.Errorf("%w: rect %d out of bounds", ErrInvalidArgument, i)
			break
		}
		e.set(&e.st.fillColor, cmd.FillColor(r.Color))
		e.emit(cmd.XYA(r.X, r.Y), cmd.FillRect(r.W, r.H))
		e.mark()
	}
	return d.submit(ctx, e, verr, dst, nil)
}

// DrawLines draws lines into dst, stopping at the first line with an
// endpoint outside of dst. See FillRects for the result.
func (d *Device) DrawLines(ctx context.Context, dst *Surface, lines []Line) (int, error) {
	if err := d.acquire(ctx); err != nil {
		return 0, err
	}
	defer d.release()
	if err := d.check(dst); err != nil {
		return 0, err
	}

	e := d.newEncoder(destWords + lineWords*len(lines))
	e.dest(dst)

	var verr error
	for i, l := range lines {
		if !dst.inside(l.X0, l.Y0) || !dst.inside(l.X1, l.Y1) {
			verr = fmt.Errorf("%w: line %d out of bounds", ErrInvalidArgument, i)
			break
		}
		e.set(&e.st.fillColor, cmd.FillColor(l.Color))
		e.emit(cmd.XYA(l.X0, l.Y0), cmd.XYB(l.X1, l.Y1), cmd.DrawLine())
		e.mark()
	}
	return d.submit(ctx, e, verr, dst, nil)
}

// CopyRects copies rects from src to dst, which must have the same
// dimensions. src and dst may be the same surface. See FillRects for the
// result.
func (d *Device) CopyRects(ctx context.Context, dst, src *Surface, rects []CopyRect) (int, error) {
	if dst != nil && src != nil && (dst.width != src.width || dst.height != src.height) {
		return 0, fmt.Errorf("%w: copy from %dx%d to %dx%d surface", ErrInvalidArgument,
			src.width, src.height, dst.width, dst.height)
	}

	if err := d.acquire(ctx); err != nil {
		return 0, err
	}
	defer d.release()
	if err := d.check(dst); err != nil {
		return 0, err
	}
	if err := d.check(src); err != nil {
		return 0, err
	}

	e := d.newEncoder(copyHeaderWords + copyWords*len(rects))
	e.dest(dst)
	if src.dirty {
		e.emit(cmd.Interlock())
	}
	e.emit(cmd.SurfSrcPT(src.pt.Addr()))

	var verr error
	for i, r := range rects {
		if !dst.contains(r.DstX, r.DstY, r.W, r.H) || !src.contains(r.SrcX, r.SrcY, r.W, r.H) {
			verr = fmt.Errorf("%w: rect %d out of bounds", ErrInvalidArgument, i)
			break
		}
		e.emit(cmd.XYA(r.DstX, r.DstY), cmd.XYB(r.SrcX, r.SrcY), cmd.CopyRect(r.W, r.H))
		e.mark()
	}
	return d.submit(ctx, e, verr, dst, src)
}

// DrawBackground tiles dst with flat.
func (d *Device) DrawBackground(ctx context.Context, dst *Surface, flat *Flat) error {
	if err := d.acquire(ctx); err != nil {
		return err
	}
	defer d.release()
	if err := d.check(dst); err != nil {
		return err
	}
	if err := d.check(flat); err != nil {
		return err
	}

	e := d.newEncoder(bgWords)
	e.dest(dst)
	e.set(&e.st.flat, cmd.FlatAddr(flat.addr()))
	e.emit(cmd.DrawBackground())
	e.mark()

	_, err := d.submit(ctx, e, nil, dst, nil)
	return err
}

// DrawColumns draws textured columns into dst, stopping at the first column
// that is out of bounds, has an invalid fixed point parameter or colormap
// index. tex may be nil for fuzz columns. See FillRects for the result.
func (d *Device) DrawColumns(ctx context.Context, dst *Surface, tex *Texture, p Paint, cols []Column) (int, error) {
	if err := d.acquire(ctx); err != nil {
		return 0, err
	}
	defer d.release()
	if err := d.check(dst); err != nil {
		return 0, err
	}
	flags, err := d.checkPaint(&p, true)
	if err != nil {
		return 0, err
	}
	fuzz := flags&cmd.DrawFuzz != 0
	if !fuzz {
		if err := d.check(tex); err != nil {
			return 0, err
		}
	}

	e := d.newEncoder(colHeaderWords + colWords*len(cols))
	e.dest(dst)
	e.set(&e.st.params, cmd.DrawParams(flags))
	if !fuzz {
		e.set(&e.st.texDims, cmd.TextureDims(tex.size, tex.height))
		e.set(&e.st.texPT, cmd.TexturePT(tex.pt.Addr()))
	}
	e.st.colormap = cmd.Invalid
	e.st.translation = cmd.Invalid
	if flags&cmd.DrawTranslate != 0 {
		e.set(&e.st.translation, cmd.TranslationAddr(p.Translations.addr(p.Translation)))
	}

	var verr error
	for i, c := range cols {
		if verr = d.checkColumn(dst, tex, &p, fuzz, c); verr != nil {
			verr = fmt.Errorf("column %d: %w", i, verr)
			break
		}
		if p.usesColormap() {
			e.set(&e.st.colormap, cmd.ColormapAddr(p.Colormaps.addr(c.Colormap)))
		}
		offset := 0
		if !fuzz {
			e.emit(cmd.UStart(c.UStart), cmd.UStep(c.UStep))
			offset = c.Offset
		}
		e.emit(cmd.XYA(c.X, c.Y1), cmd.XYB(c.X, c.Y2), cmd.DrawColumn(offset))
		e.mark()
	}
	return d.submit(ctx, e, verr, dst, nil)
}

func (d *Device) checkColumn(dst *Surface, tex *Texture, p *Paint, fuzz bool, c Column) error {
	if c.Y1 > c.Y2 || !dst.inside(c.X, c.Y1) || !dst.inside(c.X, c.Y2) {
		return fmt.Errorf("%w: out of bounds", ErrInvalidArgument)
	}
	if !fuzz {
		if c.Offset < 0 || c.Offset >= tex.size {
			return fmt.Errorf("%w: texture offset %d", ErrInvalidArgument, c.Offset)
		}
		if !c.UStart.Valid() || !c.UStep.Valid() {
			return fmt.Errorf("%w: texture coordinates out of range", ErrInvalidArgument)
		}
	}
	if p.usesColormap() && (c.Colormap < 0 || c.Colormap >= p.Colormaps.Len()) {
		return fmt.Errorf("%w: colormap %d", ErrInvalidArgument, c.Colormap)
	}
	return nil
}

// DrawSpans draws spans textured with flat into dst, stopping at the first
// span that is out of bounds, has an invalid fixed point parameter or
// colormap index. See FillRects for the result.
func (d *Device) DrawSpans(ctx context.Context, dst *Surface, flat *Flat, p Paint, spans []Span) (int, error) {
	if err := d.acquire(ctx); err != nil {
		return 0, err
	}
	defer d.release()
	if err := d.check(dst); err != nil {
		return 0, err
	}
	if err := d.check(flat); err != nil {
		return 0, err
	}
	flags, err := d.checkPaint(&p, false)
	if err != nil {
		return 0, err
	}

	e := d.newEncoder(spanHeaderWords + spanWords*len(spans))
	e.dest(dst)
	e.set(&e.st.flat, cmd.FlatAddr(flat.addr()))
	e.set(&e.st.params, cmd.DrawParams(flags))
	e.st.colormap = cmd.Invalid
	e.st.translation = cmd.Invalid
	if flags&cmd.DrawTranslate != 0 {
		e.set(&e.st.translation, cmd.TranslationAddr(p.Translations.addr(p.Translation)))
	}

	var verr error
	for i, s := range spans {
		if verr = checkSpan(dst, &p, s); verr != nil {
			verr = fmt.Errorf("span %d: %w", i, verr)
			break
		}
		if p.usesColormap() {
			e.set(&e.st.colormap, cmd.ColormapAddr(p.Colormaps.addr(s.Colormap)))
		}
		e.emit(
			cmd.UStart(s.UStart), cmd.VStart(s.VStart),
			cmd.UStep(s.UStep), cmd.VStep(s.VStep),
			cmd.XYA(s.X1, s.Y), cmd.XYB(s.X2, s.Y),
			cmd.DrawSpan(),
		)
		e.mark()
	}
	return d.submit(ctx, e, verr, dst, nil)
}

func checkSpan(dst *Surface, p *Paint, s Span) error {
	if s.X1 > s.X2 || !dst.inside(s.X1, s.Y) || !dst.inside(s.X2, s.Y) {
		return fmt.Errorf("%w: out of bounds", ErrInvalidArgument)
	}
	if !s.UStart.Valid() || !s.VStart.Valid() || !s.UStep.Valid() || !s.VStep.Valid() {
		return fmt.Errorf("%w: texture coordinates out of range", ErrInvalidArgument)
	}
	if p.usesColormap() && (s.Colormap < 0 || s.Colormap >= p.Colormaps.Len()) {
		return fmt.Errorf("%w: colormap %d", ErrInvalidArgument, s.Colormap)
	}
	return nil
}
