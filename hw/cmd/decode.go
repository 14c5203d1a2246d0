package cmd

import (
	"fmt"

	"github.com/clktmr/doomdev/hw/fixed"
)

var opNames = map[Opcode]string{
	OpFillColor:       "FILL_COLOR",
	OpColormapAddr:    "COLORMAP_ADDR",
	OpTranslationAddr: "TRANSLATION_ADDR",
	OpSurfDstPT:       "SURF_DST_PT",
	OpSurfSrcPT:       "SURF_SRC_PT",
	OpTexturePT:       "TEXTURE_PT",
	OpFlatAddr:        "FLAT_ADDR",
	OpSurfDims:        "SURF_DIMS",
	OpTextureDims:     "TEXTURE_DIMS",
	OpDrawParams:      "DRAW_PARAMS",
	OpXYA:             "XY_A",
	OpXYB:             "XY_B",
	OpUStart:          "USTART",
	OpVStart:          "VSTART",
	OpUStep:           "USTEP",
	OpVStep:           "VSTEP",
	OpCopyRect:        "COPY_RECT",
	OpFillRect:        "FILL_RECT",
	OpDrawLine:        "DRAW_LINE",
	OpDrawBackground:  "DRAW_BACKGROUND",
	OpDrawColumn:      "DRAW_COLUMN",
	OpDrawSpan:        "DRAW_SPAN",
	OpInterlock:       "INTERLOCK",
	OpPingSync:        "PING_SYNC",
	OpPingAsync:       "PING_ASYNC",
}

func (op Opcode) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("OP_%02x", uint8(op))
}

// XY decodes the point of an XY_A or XY_B command.
func (c Command) XY() (x, y int) {
	p := c.Payload()
	return int(p & 0x7ff), int(p >> 11 & 0x7ff)
}

// Size decodes the rectangle size of a COPY_RECT or FILL_RECT command.
func (c Command) Size() (width, height int) {
	p := c.Payload()
	return int(p & 0xfff), int(p >> 12 & 0xfff)
}

// Addr decodes the device address of an address or page table command.
func (c Command) Addr() uint32 {
	switch c.Op() {
	case OpColormapAddr, OpTranslationAddr:
		return c.Payload() << 8
	case OpSurfDstPT, OpSurfSrcPT, OpTexturePT:
		return c.Payload() << 6
	case OpFlatAddr:
		return c.Payload() << 12
	}
	return 0
}

func (c Command) String() string {
	p := c.Payload()
	switch op := c.Op(); op {
	case OpFillColor:
		return fmt.Sprintf("%v %d", op, p&0xff)
	case OpColormapAddr, OpTranslationAddr, OpSurfDstPT, OpSurfSrcPT, OpTexturePT, OpFlatAddr:
		return fmt.Sprintf("%v 0x%08x", op, c.Addr())
	case OpSurfDims:
		return fmt.Sprintf("%v %dx%d", op, int(p>>12&0x3f)<<6, int(p&0x7ff)+1)
	case OpTextureDims:
		return fmt.Sprintf("%v size=%d height=%d", op, (int(p>>12)+1)<<8, int(p&0x3ff))
	case OpDrawParams:
		return fmt.Sprintf("%v 0x%x", op, p)
	case OpXYA, OpXYB:
		x, y := c.XY()
		return fmt.Sprintf("%v (%d,%d)", op, x, y)
	case OpUStart, OpVStart, OpUStep, OpVStep:
		return fmt.Sprintf("%v %v", op, fixed.UInt10_16(p))
	case OpCopyRect, OpFillRect:
		w, h := c.Size()
		return fmt.Sprintf("%v %dx%d", op, w, h)
	case OpDrawColumn:
		return fmt.Sprintf("%v %d", op, p)
	default:
		if p != 0 {
			return fmt.Sprintf("%v 0x%07x", op, p)
		}
		return op.String()
	}
}
