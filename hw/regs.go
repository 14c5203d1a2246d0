package hw

// Reg is the byte offset of a 32-bit register in the device's register
// window.
type Reg uint32

const (
	RegEnable      Reg = 0x000 // fetch enable, see EnableFlag
	RegReset       Reg = 0x004 // write-only, see ResetFlag
	RegIntr        Reg = 0x008 // pending interrupts, write 1s to acknowledge
	RegIntrEnable  Reg = 0x00c // interrupts routed to the IRQ line
	RegFEErrorCode Reg = 0x010 // front-end fault code, valid while IntrFEError is pending
	RegFEErrorCmd  Reg = 0x014 // command word that caused the front-end fault
	RegFIFOSend    Reg = 0x030 // write-only, enqueues one command word
	RegFIFOFree    Reg = 0x034 // read-only, free command FIFO slots

	WindowSize = 0x1000
)

// Addr is an address as seen by the device, i.e. a DMA address.
type Addr uint32

type EnableFlag uint32

const (
	EnableFetch EnableFlag = 1 << iota // process commands from the FIFO
)

type ResetFlag uint32

const (
	ResetFrontEnd ResetFlag = 1 << iota
	ResetFIFO
	ResetTLB
	ResetCache

	ResetAll = ResetFrontEnd | ResetFIFO | ResetTLB | ResetCache
)

// Window is a memory mapped register window. Implementations must perform
// every access as a single 32-bit load or store.
type Window interface {
	Load(r Reg) uint32
	Store(r Reg, v uint32)
}

// Registers gives typed access to the registers in a Window.
type Registers struct {
	w Window
}

func NewRegisters(w Window) *Registers {
	return &Registers{w: w}
}

func (r *Registers) SetEnable(f EnableFlag) { r.w.Store(RegEnable, uint32(f)) }
func (r *Registers) Reset(f ResetFlag)      { r.w.Store(RegReset, uint32(f)) }

// Pending returns the pending interrupts, including those not enabled.
func (r *Registers) Pending() InterruptFlag { return InterruptFlag(r.w.Load(RegIntr)) }

// Ack acknowledges the interrupts in mask.
func (r *Registers) Ack(mask InterruptFlag) { r.w.Store(RegIntr, uint32(mask)) }

func (r *Registers) Enabled() InterruptFlag         { return InterruptFlag(r.w.Load(RegIntrEnable)) }
func (r *Registers) SetEnabled(mask InterruptFlag) { r.w.Store(RegIntrEnable, uint32(mask)) }

// EnableInterrupts adds mask to the enabled interrupts. The read-modify-write
// isn't atomic, callers must serialize it against DisableInterrupts.
func (r *Registers) EnableInterrupts(mask InterruptFlag) {
	r.SetEnabled(r.Enabled() | mask)
}

// DisableInterrupts removes mask from the enabled interrupts.
func (r *Registers) DisableInterrupts(mask InterruptFlag) {
	r.SetEnabled(r.Enabled() &^ mask)
}

// FIFOFree returns the number of command words the FIFO can accept.
func (r *Registers) FIFOFree() int { return int(r.w.Load(RegFIFOFree)) }

// Send writes one command word to the FIFO. Writing to a full FIFO raises
// IntrFIFOOverflow and drops the word.
func (r *Registers) Send(word uint32) { r.w.Store(RegFIFOSend, word) }

// FrontEndError returns the diagnostics latched with IntrFEError.
func (r *Registers) FrontEndError() (code, cmd uint32) {
	return r.w.Load(RegFEErrorCode), r.w.Load(RegFEErrorCmd)
}
