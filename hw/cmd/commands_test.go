package cmd_test

import (
	"testing"

	"github.com/clktmr/doomdev/hw"
	"github.com/clktmr/doomdev/hw/cmd"
	"github.com/clktmr/doomdev/hw/fixed"
)

func TestEncoding(t *testing.T) {
	tests := []struct {
		c    cmd.Command
		want uint32
	}{
		{cmd.FillColor(0xab), 0x01<<26 | 0xab},
		{cmd.ColormapAddr(0x1234_5600), 0x02<<26 | 0x12_3456},
		{cmd.SurfDstPT(0x1000_0040), 0x04<<26 | 0x1000_0040>>6},
		{cmd.FlatAddr(0x1234_5000), 0x07<<26 | 0x1_2345},
		{cmd.SurfDims(2048, 2048), 0x08<<26 | 32<<12 | 2047},
		{cmd.SurfDims(64, 1), 0x08<<26 | 1<<12},
		{cmd.TextureDims(1024, 100), 0x09<<26 | 3<<12 | 100},
		{cmd.DrawParams(cmd.DrawColormap | cmd.DrawFuzz), 0x0a<<26 | 5},
		{cmd.XYA(2047, 1), 0x0b<<26 | 1<<11 | 2047},
		{cmd.UStep(fixed.UInt10_16U(1)), 0x0f<<26 | 1<<16},
		{cmd.FillRect(2048, 1), 0x21<<26 | 1<<12 | 2048},
		{cmd.DrawColumn(0x3f_ffff), 0x24<<26 | 0x3f_ffff},
		{cmd.PingAsync(), 0x32 << 26},
	}
	for _, tc := range tests {
		if uint32(tc.c) != tc.want {
			t.Errorf("%v: got 0x%08x, want 0x%08x", tc.c, uint32(tc.c), tc.want)
		}
	}
}

func TestDecode(t *testing.T) {
	if x, y := cmd.XYB(12, 34).XY(); x != 12 || y != 34 {
		t.Errorf("got (%d,%d)", x, y)
	}
	if w, h := cmd.CopyRect(640, 480).Size(); w != 640 || h != 480 {
		t.Errorf("got %dx%d", w, h)
	}
	if a := cmd.TexturePT(hw.Addr(0x2000_0080)).Addr(); a != 0x2000_0080 {
		t.Errorf("got 0x%08x", a)
	}
	if cmd.Invalid.Op() == cmd.OpFillColor {
		t.Error("invalid command decodes as a valid opcode")
	}

	for c, want := range map[cmd.Command]string{
		cmd.SurfDims(320, 200):      "SURF_DIMS 320x200",
		cmd.TextureDims(4096, 128):  "TEXTURE_DIMS size=4096 height=128",
		cmd.XYA(1, 2):               "XY_A (1,2)",
		cmd.FlatAddr(0x0010_0000):   "FLAT_ADDR 0x00100000",
		cmd.DrawSpan():              "DRAW_SPAN",
		cmd.Command(0x3f<<26 | 0x1): "OP_3f 0x0000001",
	} {
		if got := c.String(); got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	}
}
