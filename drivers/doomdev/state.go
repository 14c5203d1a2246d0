package doomdev

import "github.com/clktmr/doomdev/hw/cmd"

// state mirrors the rasterizer's state registers as last written to the
// FIFO. Each field holds the command word that set the register, or
// cmd.Invalid if the register's content is unknown. Owned by the holder of
// the device lock.
type state struct {
	dstDims     cmd.Command
	dstPT       cmd.Command
	texDims     cmd.Command
	texPT       cmd.Command
	flat        cmd.Command
	params      cmd.Command
	fillColor   cmd.Command
	colormap    cmd.Command
	translation cmd.Command
}

func (s *state) reset() {
	*s = state{
		dstDims:     cmd.Invalid,
		dstPT:       cmd.Invalid,
		texDims:     cmd.Invalid,
		texPT:       cmd.Invalid,
		flat:        cmd.Invalid,
		params:      cmd.Invalid,
		fillColor:   cmd.Invalid,
		colormap:    cmd.Invalid,
		translation: cmd.Invalid,
	}
}
