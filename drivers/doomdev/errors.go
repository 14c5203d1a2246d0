package doomdev

import (
	"errors"

	"github.com/clktmr/doomdev/drivers/fifo"
	"github.com/clktmr/doomdev/hw/dma"
)

var (
	ErrOutOfMemory     = dma.ErrOutOfMemory
	ErrResourceLimit   = dma.ErrResourceLimit
	ErrInterrupted     = fifo.ErrInterrupted
	ErrDeviceFault     = fifo.ErrDeviceFault
	ErrInvalidArgument = errors.New("doomdev: invalid argument")
	ErrInvalidHandle   = errors.New("doomdev: invalid handle")
	ErrClosed          = errors.New("doomdev: device closed")
)
