package doomdev

import "github.com/clktmr/doomdev/hw/dma"

func (s *Surface) PageTable() *dma.PageTable { return s.pt }
func (t *Texture) PageTable() *dma.PageTable { return t.pt }
