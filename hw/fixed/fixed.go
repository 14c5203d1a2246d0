// Package fixed provides the fixed-point types used by the accelerator's
// texture coordinate registers.
package fixed

// UInt10_16 is an unsigned 10.16 fixed-point number stored in the lower 26
// bits of a word, as used by USTART, VSTART, USTEP and VSTEP.
//
//go:generate go run mkfixed.go UInt10_16 uint32
type UInt10_16 uint32
