//go:build linux

package doomdev

import (
	"fmt"

	"github.com/clktmr/doomdev/debug"
	"github.com/clktmr/doomdev/hw"
	"github.com/clktmr/doomdev/hw/dma"
)

// Open binds the accelerator through the UIO device in cfg. Registers are
// taken from map 0 and resources are allocated from map cfg.DMAMap.
func Open(cfg Config) (*Device, error) {
	if err := debug.SetLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("doomdev: %w", err)
	}

	u, err := hw.OpenUIO(cfg.UIO)
	if err != nil {
		return nil, err
	}
	win, err := u.Window()
	if err != nil {
		u.Close()
		return nil, err
	}
	if cfg.DMAMap == 0 {
		u.Close()
		return nil, fmt.Errorf("doomdev: map 0 is the register window")
	}
	mem, base, err := u.Map(cfg.DMAMap)
	if err != nil {
		u.Close()
		return nil, err
	}

	d := New(win, u, dma.NewHeap(mem, base), cfg)
	d.closer = u
	return d, nil
}
