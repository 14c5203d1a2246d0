package texture_test

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/clktmr/doomdev/asset"
	"github.com/clktmr/doomdev/drivers/doomdev"
	"github.com/clktmr/doomdev/tools/texture"
)

var gray = color.Palette{
	color.RGBA{0, 0, 0, 0xff},
	color.RGBA{0x80, 0x80, 0x80, 0xff},
	color.RGBA{0xff, 0xff, 0xff, 0xff},
}

func TestTextureColumnMajor(t *testing.T) {
	src := image.NewPaletted(image.Rect(0, 0, 2, 3), gray)
	src.SetColorIndex(1, 0, 2) // top of the second column
	src.SetColorIndex(0, 2, 1) // bottom of the first column

	a := texture.Texture(src, gray, 3, false)
	if a.Kind != asset.KindTexture || a.Height != 3 {
		t.Fatalf("got %v with height %d", a.Kind, a.Height)
	}
	want := []byte{0, 0, 1, 2, 0, 0}
	if string(a.Data) != string(want) {
		t.Errorf("got %v, want %v", a.Data, want)
	}
}

func TestFlatScaled(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 16, 16))
	draw.Draw(src, src.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	a := texture.Flat(src, gray, false)
	if len(a.Data) != doomdev.FlatSize {
		t.Fatalf("got %d bytes", len(a.Data))
	}
	for i, c := range a.Data {
		if c != 2 {
			t.Fatalf("pixel %d is %d, want white", i, c)
		}
	}
}

func TestColormaps(t *testing.T) {
	a := texture.Colormaps(gray, 2)
	if a.Count != 2 || len(a.Data) != 2*doomdev.ColormapSize {
		t.Fatalf("got %d maps in %d bytes", a.Count, len(a.Data))
	}
	for i := range gray {
		if a.Data[i] != byte(i) {
			t.Errorf("first map isn't the identity at %d: %d", i, a.Data[i])
		}
	}
	// White at half brightness is closest to gray.
	if got := a.Data[doomdev.ColormapSize+2]; got != 1 {
		t.Errorf("dimmed white maps to %d", got)
	}
}
