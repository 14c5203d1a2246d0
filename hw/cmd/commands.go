// Package cmd encodes the accelerator's command words.
//
// Each command is a single 32-bit word with the opcode in the upper 6 bits
// and the payload in the lower 26 bits. Most commands only update a state
// register of the rasterizer, e.g. the destination surface or the current
// colormap. The draw commands then render a primitive using that state.
//
// The encoders don't validate their arguments beyond debug assertions;
// callers have to range check everything that comes from userspace.
package cmd

import (
	"github.com/clktmr/doomdev/debug"
	"github.com/clktmr/doomdev/hw"
	"github.com/clktmr/doomdev/hw/fixed"
)

// Command is a single command word.
type Command uint32

type Opcode uint8

const (
	OpFillColor       Opcode = 0x01
	OpColormapAddr    Opcode = 0x02
	OpTranslationAddr Opcode = 0x03
	OpSurfDstPT       Opcode = 0x04
	OpSurfSrcPT       Opcode = 0x05
	OpTexturePT       Opcode = 0x06
	OpFlatAddr        Opcode = 0x07
	OpSurfDims        Opcode = 0x08
	OpTextureDims     Opcode = 0x09
	OpDrawParams      Opcode = 0x0a
	OpXYA             Opcode = 0x0b
	OpXYB             Opcode = 0x0c
	OpUStart          Opcode = 0x0d
	OpVStart          Opcode = 0x0e
	OpUStep           Opcode = 0x0f
	OpVStep           Opcode = 0x10

	OpCopyRect       Opcode = 0x20
	OpFillRect       Opcode = 0x21
	OpDrawLine       Opcode = 0x22
	OpDrawBackground Opcode = 0x23
	OpDrawColumn     Opcode = 0x24
	OpDrawSpan       Opcode = 0x25

	OpInterlock Opcode = 0x30
	OpPingSync  Opcode = 0x31
	OpPingAsync Opcode = 0x32
)

const (
	opShift     = 26
	payloadMask = 1<<opShift - 1
)

// Invalid is never a valid command. Use it to mark cached state as unknown.
const Invalid Command = 0xffff_ffff

// Alignment the device requires for the addresses it's given.
const (
	PageTableAlign = 1 << 6
	ColormapAlign  = 1 << 8
	FlatAlign      = 1 << 12
)

// Coordinate and size limits of the rasterizer.
const (
	MaxCoord         = 1<<11 - 1
	MaxRectSize      = 1 << 11
	MaxTextureOffset = 1<<22 - 1
	MaxTextureSize   = 1 << 22
	MaxTextureHeight = 1<<10 - 1
)

func encode(op Opcode, payload uint32) Command {
	debug.Assert(payload&^payloadMask == 0, "cmd: payload overflow 0x%x for opcode 0x%02x", payload, op)
	return Command(uint32(op)<<opShift | payload&payloadMask)
}

func (c Command) Op() Opcode      { return Opcode(c >> opShift) }
func (c Command) Payload() uint32 { return uint32(c) & payloadMask }

// Sets the color for FillRect and DrawLine.
func FillColor(c uint8) Command { return encode(OpFillColor, uint32(c)) }

// Sets the colormap used with DrawColormap and DrawFuzz.
func ColormapAddr(addr hw.Addr) Command {
	debug.Assert(addr%ColormapAlign == 0, "cmd: unaligned colormap")
	return encode(OpColormapAddr, uint32(addr)>>8)
}

// Sets the colormap used with DrawTranslate.
func TranslationAddr(addr hw.Addr) Command {
	debug.Assert(addr%ColormapAlign == 0, "cmd: unaligned translation")
	return encode(OpTranslationAddr, uint32(addr)>>8)
}

// Sets the page table of the surface all draw commands render into.
func SurfDstPT(pt hw.Addr) Command {
	debug.Assert(pt%PageTableAlign == 0, "cmd: unaligned page table")
	return encode(OpSurfDstPT, uint32(pt)>>6)
}

// Sets the page table of the surface CopyRect reads from. The source shares
// its dimensions with the destination.
func SurfSrcPT(pt hw.Addr) Command {
	debug.Assert(pt%PageTableAlign == 0, "cmd: unaligned page table")
	return encode(OpSurfSrcPT, uint32(pt)>>6)
}

// Sets the page table of the texture DrawColumn samples.
func TexturePT(pt hw.Addr) Command {
	debug.Assert(pt%PageTableAlign == 0, "cmd: unaligned page table")
	return encode(OpTexturePT, uint32(pt)>>6)
}

// Sets the flat DrawSpan and DrawBackground sample.
func FlatAddr(addr hw.Addr) Command {
	debug.Assert(addr%FlatAlign == 0, "cmd: unaligned flat")
	return encode(OpFlatAddr, uint32(addr)>>12)
}

// Sets the dimensions of the source and destination surfaces. The width
// must be a multiple of 64.
func SurfDims(width, height int) Command {
	debug.Assert(width%64 == 0 && width > 0 && width <= 2048, "cmd: invalid surface width %d", width)
	debug.Assert(height > 0 && height <= 2048, "cmd: invalid surface height %d", height)
	return encode(OpSurfDims, uint32(width>>6)&0x3f<<12|uint32(height-1)&0x7ff)
}

// Sets the size in bytes and the repeat height of the current texture. A
// height of 0 disables repetition.
func TextureDims(size, height int) Command {
	debug.Assert(size > 0 && size <= MaxTextureSize, "cmd: invalid texture size %d", size)
	debug.Assert(height >= 0 && height <= MaxTextureHeight, "cmd: invalid texture height %d", height)
	return encode(OpTextureDims, uint32(size-1)>>8<<12|uint32(height))
}

type DrawFlags uint32

const (
	DrawFuzz      DrawFlags = 1 << iota // darken destination pixels using the colormap
	DrawTranslate                       // remap texels through the translation
	DrawColormap                        // remap texels through the colormap

	drawFlagsMask = DrawFuzz | DrawTranslate | DrawColormap
)

// Sets the flags for the following DrawColumn and DrawSpan commands.
func DrawParams(f DrawFlags) Command {
	debug.Assert(f&^drawFlagsMask == 0, "cmd: invalid draw flags 0x%x", f)
	return encode(OpDrawParams, uint32(f))
}

func xy(x, y int) uint32 {
	debug.Assert(x >= 0 && x <= MaxCoord && y >= 0 && y <= MaxCoord, "cmd: coordinate out of range (%d,%d)", x, y)
	return uint32(x)&0x7ff | uint32(y)&0x7ff<<11
}

// Sets the first point: top left corner of rectangles, start of lines,
// columns and spans.
func XYA(x, y int) Command { return encode(OpXYA, xy(x, y)) }

// Sets the second point: the source position of CopyRect, end of lines,
// columns and spans.
func XYB(x, y int) Command { return encode(OpXYB, xy(x, y)) }

func UStart(v fixed.UInt10_16) Command { return fixedCmd(OpUStart, v) }
func VStart(v fixed.UInt10_16) Command { return fixedCmd(OpVStart, v) }
func UStep(v fixed.UInt10_16) Command  { return fixedCmd(OpUStep, v) }
func VStep(v fixed.UInt10_16) Command  { return fixedCmd(OpVStep, v) }

func fixedCmd(op Opcode, v fixed.UInt10_16) Command {
	debug.Assert(v.Valid(), "cmd: fixed point out of range %v", v)
	return encode(op, uint32(v))
}

func rect(width, height int) uint32 {
	debug.Assert(width > 0 && width <= MaxRectSize && height > 0 && height <= MaxRectSize,
		"cmd: invalid rectangle size %dx%d", width, height)
	return uint32(width)&0xfff | uint32(height)&0xfff<<12
}

// Copies a rectangle from XYB in the source surface to XYA in the
// destination surface.
func CopyRect(width, height int) Command { return encode(OpCopyRect, rect(width, height)) }

// Fills a rectangle at XYA with the fill color.
func FillRect(width, height int) Command { return encode(OpFillRect, rect(width, height)) }

// Draws a line from XYA to XYB with the fill color.
func DrawLine() Command { return encode(OpDrawLine, 0) }

// Tiles the whole destination surface with the flat.
func DrawBackground() Command { return encode(OpDrawBackground, 0) }

// Draws a vertical column from XYA to XYB, sampling the texture starting at
// byte offset with coordinate UStart advanced by UStep per pixel.
func DrawColumn(offset int) Command {
	debug.Assert(offset >= 0 && offset <= MaxTextureOffset, "cmd: texture offset out of range %d", offset)
	return encode(OpDrawColumn, uint32(offset))
}

// Draws a horizontal span from XYA to XYB, sampling the flat at
// (UStart, VStart) advanced by (UStep, VStep) per pixel.
func DrawSpan() Command { return encode(OpDrawSpan, 0) }

// Waits until all previous writes to surfaces have finished before any
// following command reads a surface.
func Interlock() Command { return encode(OpInterlock, 0) }

// Raises IntrPongSync once all previous commands have finished.
func PingSync() Command { return encode(OpPingSync, 0) }

// Raises IntrPongAsync once the command is fetched from the FIFO. Used to
// get notified about free FIFO slots.
func PingAsync() Command { return encode(OpPingAsync, 0) }
