package hw_test

import (
	"context"
	"errors"
	"testing"
	"time"
	"unsafe"

	"github.com/clktmr/doomdev/hw"
)

func TestNote(t *testing.T) {
	var n hw.Note

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := n.Sleep(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("sleep on cleared note: got %v", err)
	}

	done := make(chan error)
	go func() { done <- n.Sleep(context.Background()) }()
	n.Wakeup()
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if !n.Woken() {
		t.Error("note not woken")
	}

	// Woken notes don't block until cleared.
	n.Wakeup()
	if err := n.Sleep(context.Background()); err != nil {
		t.Fatal(err)
	}
	n.Clear()
	if n.Woken() {
		t.Error("note still woken after clear")
	}

	// Wakeup without a prior sleeper closes a fresh channel.
	n.Wakeup()
	if err := n.Sleep(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestRegisters(t *testing.T) {
	mem := make([]uint32, hw.WindowSize/4)
	w := hw.NewMemWindow(bytesOf(mem))
	regs := hw.NewRegisters(w)

	regs.SetEnabled(hw.IntrPongSync)
	regs.EnableInterrupts(hw.IntrFEError | hw.IntrPongAsync)
	regs.DisableInterrupts(hw.IntrPongAsync)
	if got := regs.Enabled(); got != hw.IntrPongSync|hw.IntrFEError {
		t.Errorf("enabled %v", got)
	}
	if mem[hw.RegIntrEnable/4] != uint32(hw.IntrPongSync|hw.IntrFEError) {
		t.Errorf("register holds 0x%x", mem[hw.RegIntrEnable/4])
	}

	regs.Send(0xcafe)
	if mem[hw.RegFIFOSend/4] != 0xcafe {
		t.Errorf("FIFO_SEND holds 0x%x", mem[hw.RegFIFOSend/4])
	}
	mem[hw.RegFIFOFree/4] = 17
	if regs.FIFOFree() != 17 {
		t.Errorf("FIFO_FREE reads %d", regs.FIFOFree())
	}
}

func TestInterruptString(t *testing.T) {
	for f, want := range map[hw.InterruptFlag]string{
		0:                                    "0",
		hw.IntrPongSync:                      "PONG_SYNC",
		hw.IntrFEError | hw.IntrSurfOverflow: "FE_ERROR|SURF_OVERFLOW",
		hw.IntrPageFaultTexture | 1<<31:      "PAGE_FAULT_TEXTURE|?",
	} {
		if got := f.String(); got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	}
}

// bytesOf returns the memory of s as bytes, keeping s's alignment.
func bytesOf(s []uint32) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), len(s)*4)
}
