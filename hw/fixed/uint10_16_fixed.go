package fixed

import "fmt"

func UInt10_16U(i int) UInt10_16     { return UInt10_16(i << 16) }
func UInt10_16F(f float32) UInt10_16 { return UInt10_16(f * (1 << 16)) }

func (x UInt10_16) Floor() int                { return int(x >> 16) }
func (x UInt10_16) Ceil() int                 { return int((uint64(x) + (1<<16 - 1)) >> 16) }
func (x UInt10_16) Mul(y UInt10_16) UInt10_16 { return UInt10_16((uint64(x) * uint64(y)) >> 16) }
func (x UInt10_16) Div(y UInt10_16) UInt10_16 { return UInt10_16(uint64(x) << 16 / uint64(y)) }

func (x UInt10_16) String() string {
	const shift, mask = 16, 1<<16 - 1
	return fmt.Sprintf("%d:%05d", uint64(x>>shift), uint64(x&mask))
}

// Valid reports whether x fits into the 26 bits used by the hardware.
func (x UInt10_16) Valid() bool { return x < 1<<26 }
