package hw

import (
	"context"
	"strings"
)

// All interrupts of the device are routed to the same IRQ line. The driver
// must read RegIntr to find out which one fired.
type InterruptFlag uint32

const (
	IntrPongSync        InterruptFlag = 1 << iota // PING_SYNC retired, all prior commands are done
	IntrPongAsync                                 // PING_ASYNC retired
	IntrFEError                                   // front-end couldn't decode a command
	IntrFIFOOverflow                              // word written to a full FIFO
	IntrSurfOverflow                              // draw outside of the destination surface
	IntrPageFaultSurfDst                          // invalid descriptor in destination page table
	IntrPageFaultSurfSrc                          // invalid descriptor in source page table
	IntrPageFaultTexture                          // invalid descriptor in texture page table

	IntrLast

	IntrFaults = IntrFEError | IntrFIFOOverflow | IntrSurfOverflow |
		IntrPageFaultSurfDst | IntrPageFaultSurfSrc | IntrPageFaultTexture
	IntrAll = IntrLast - 1
)

var intrNames = [...]string{
	"PONG_SYNC", "PONG_ASYNC", "FE_ERROR", "FIFO_OVERFLOW",
	"SURF_OVERFLOW", "PAGE_FAULT_SURF_DST", "PAGE_FAULT_SURF_SRC",
	"PAGE_FAULT_TEXTURE",
}

func (f InterruptFlag) String() string {
	if f == 0 {
		return "0"
	}
	var names []string
	for i, flag := 0, InterruptFlag(1); flag != IntrLast; i, flag = i+1, flag<<1 {
		if f&flag != 0 {
			names = append(names, intrNames[i])
		}
	}
	if rest := f &^ IntrAll; rest != 0 {
		names = append(names, "?")
	}
	return strings.Join(names, "|")
}

// IRQ is the device's interrupt line as seen from userspace.
//
// Wait blocks until the line was asserted or ctx is done. The line stays
// masked after Wait returned until Unmask is called, so the handler can't
// be reentered.
type IRQ interface {
	Wait(ctx context.Context) error
	Unmask() error
}
