package hw

import (
	"sync/atomic"
	"unsafe"

	"github.com/clktmr/doomdev/debug"
)

// MemWindow is a Window backed by mapped memory, usually a PCI BAR mapped
// via UIO. Every access is a single aligned 32-bit load or store, which the
// device requires.
type MemWindow struct {
	mem []byte
}

// NewMemWindow returns a Window for mem, which must be 4-byte aligned and
// span at least WindowSize bytes.
func NewMemWindow(mem []byte) *MemWindow {
	debug.Assert(len(mem) >= WindowSize, "hw: register window too small: %d", len(mem))
	debug.Assert(uintptr(unsafe.Pointer(unsafe.SliceData(mem)))&0x3 == 0, "hw: unaligned register window")
	return &MemWindow{mem: mem}
}

func (w *MemWindow) reg(r Reg) *uint32 {
	debug.Assert(r&0x3 == 0 && int(r) < len(w.mem), "hw: invalid register 0x%03x", r)
	return (*uint32)(unsafe.Pointer(&w.mem[r]))
}

func (w *MemWindow) Load(r Reg) uint32 {
	return atomic.LoadUint32(w.reg(r))
}

func (w *MemWindow) Store(r Reg, v uint32) {
	atomic.StoreUint32(w.reg(r), v)
}
