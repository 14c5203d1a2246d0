package fixed_test

import (
	"testing"

	"github.com/clktmr/doomdev/hw/fixed"
)

func TestUInt10_16(t *testing.T) {
	x := fixed.UInt10_16F(2.5)
	if x.Floor() != 2 || x.Ceil() != 3 {
		t.Errorf("%v: floor %d, ceil %d", x, x.Floor(), x.Ceil())
	}
	if got := x.Mul(fixed.UInt10_16U(2)); got != fixed.UInt10_16U(5) {
		t.Errorf("2.5*2 = %v", got)
	}
	if got := fixed.UInt10_16U(5).Div(fixed.UInt10_16U(2)); got != x {
		t.Errorf("5/2 = %v", got)
	}
	if u := fixed.UInt10_16U(3); u.Ceil() != 3 {
		t.Errorf("ceil of integer %v is %d", u, u.Ceil())
	}
}

func TestUInt10_16Valid(t *testing.T) {
	if !fixed.UInt10_16U(1023).Valid() {
		t.Error("1023 should be valid")
	}
	if !(fixed.UInt10_16U(1024) - 1).Valid() {
		t.Error("largest value should be valid")
	}
	if fixed.UInt10_16U(1024).Valid() {
		t.Error("1024 should be invalid")
	}
}
