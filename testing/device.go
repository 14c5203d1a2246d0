package testing

import (
	"testing"

	"github.com/clktmr/doomdev/drivers/doomdev"
)

// HeapSize is the DMA memory available to devices created by NewDevice.
const HeapSize = 16 << 20

// NewDevice returns a device on a simulated accelerator. The device is
// closed when the test finishes.
func NewDevice(t testing.TB) (*doomdev.Device, *Accel, *Allocator) {
	t.Helper()
	accel := NewAccel()
	alloc := NewAllocator(HeapSize)
	cfg := doomdev.DefaultConfig()
	cfg.Name = t.Name()
	dev := doomdev.New(accel, accel, alloc, cfg)
	t.Cleanup(func() { dev.Close() })
	accel.ClearWords()
	return dev, accel, alloc
}
