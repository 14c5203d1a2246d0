// Package texture converts images to device assets.
package texture

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/ericpauley/go-quantize/quantize"
	"golang.org/x/image/draw"

	"github.com/clktmr/doomdev/asset"
	"github.com/clktmr/doomdev/drivers/doomdev"
)

const flatDim = 64

var (
	flags = flag.NewFlagSet("texture", flag.ExitOnError)

	dither  = flags.Bool("dither", false, "enable Floyd-Steinberg error diffusion")
	palette = flags.String("palette", "", "image providing the palette, defaults to a palette quantized from the input")
	height  = flags.Int("height", 0, "repeat height of textures, 0 to disable repetition")
	levels  = flags.Int("levels", 32, "number of colormaps, from bright to dark")
	output  = flags.String("o", "", "output file, defaults to the input with the kind as extension")

	kindName string
)

const usageString = `Image to device asset converter.

Usage: %s [flags] <image>

Textures are stored column by column. Flats are scaled to 64x64. Colormaps
fade the palette of the image to black.

`

func usage() {
	fmt.Fprintf(flags.Output(), usageString, kindName)
	flags.PrintDefaults()
}

// Main runs the converter. args[0] selects the kind of asset: "texture",
// "flat" or "colormap".
func Main(args []string) {
	kindName = args[0]
	flags.Usage = usage
	flags.Parse(args[1:])

	if flags.NArg() != 1 {
		flags.Usage()
		os.Exit(1)
	}
	imagefile := flags.Arg(0)

	src, err := decode(imagefile)
	if err != nil {
		log.Fatalln(err)
	}

	var pal color.Palette
	if *palette != "" {
		pimg, err := decode(*palette)
		if err != nil {
			log.Fatalln(err)
		}
		pal = Palette(pimg)
	} else {
		q := quantize.MedianCutQuantizer{}
		pal = q.Quantize(make(color.Palette, 0, 256), src)
	}

	var a *asset.Asset
	switch kindName {
	case "texture":
		a = Texture(src, pal, *height, *dither)
	case "flat":
		a = Flat(src, pal, *dither)
	case "colormap":
		a = Colormaps(pal, *levels)
	default:
		log.Fatal("unsupported asset kind: ", kindName)
	}

	outfile := *output
	if outfile == "" {
		outfile = strings.TrimSuffix(imagefile, filepath.Ext(imagefile)) + "." + kindName
	}
	w, err := os.Create(outfile)
	if err != nil {
		log.Fatalln(err)
	}
	defer w.Close()

	if err := a.Store(w); err != nil {
		log.Fatalln(err)
	}
}

func decode(name string) (image.Image, error) {
	r, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	img, _, err := image.Decode(r)
	return img, err
}

// Palette returns the colors of img in row-major order, without duplicates
// and at most 256 of them.
func Palette(img image.Image) color.Palette {
	var pal color.Palette
	seen := make(map[color.RGBA]bool)
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y && len(pal) < 256; y++ {
		for x := b.Min.X; x < b.Max.X && len(pal) < 256; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			if !seen[c] {
				seen[c] = true
				pal = append(pal, c)
			}
		}
	}
	return pal
}

func paletted(src image.Image, r image.Rectangle, pal color.Palette, dither bool) *image.Paletted {
	dst := image.NewPaletted(r, pal)
	var d draw.Drawer = draw.Src
	if dither {
		d = draw.FloydSteinberg
	}
	if src.Bounds().Size() == r.Size() {
		d.Draw(dst, r, src, src.Bounds().Min)
		return dst
	}
	scaled := image.NewRGBA(r)
	draw.CatmullRom.Scale(scaled, r, src, src.Bounds(), draw.Src, nil)
	d.Draw(dst, r, scaled, r.Min)
	return dst
}

// Texture converts src into a texture with its pixels stored column by
// column, as sampled by DrawColumns.
func Texture(src image.Image, pal color.Palette, height int, dither bool) *asset.Asset {
	r := src.Bounds().Sub(src.Bounds().Min)
	img := paletted(src, r, pal, dither)

	data := make([]byte, 0, r.Dx()*r.Dy())
	for x := 0; x < r.Dx(); x++ {
		for y := 0; y < r.Dy(); y++ {
			data = append(data, img.ColorIndexAt(x, y))
		}
	}
	return &asset.Asset{Kind: asset.KindTexture, Height: height, Data: data}
}

// Flat scales src to 64x64 and stores it row by row.
func Flat(src image.Image, pal color.Palette, dither bool) *asset.Asset {
	img := paletted(src, image.Rect(0, 0, flatDim, flatDim), pal, dither)
	data := make([]byte, doomdev.FlatSize)
	copy(data, img.Pix)
	return &asset.Asset{Kind: asset.KindFlat, Data: data}
}

// Colormaps returns n colormaps dimming the palette linearly, the first one
// being the identity.
func Colormaps(pal color.Palette, n int) *asset.Asset {
	n = max(1, min(n, doomdev.MaxColormaps))
	data := make([]byte, 0, n*doomdev.ColormapSize)
	for i := range n {
		scale := uint32(n - i)
		for j := range doomdev.ColormapSize {
			if j >= len(pal) {
				data = append(data, byte(j))
				continue
			}
			r, g, b, _ := pal[j].RGBA()
			dim := color.RGBA64{
				R: uint16(r * scale / uint32(n)),
				G: uint16(g * scale / uint32(n)),
				B: uint16(b * scale / uint32(n)),
				A: 0xffff,
			}
			data = append(data, byte(pal.Index(dim)))
		}
	}
	return &asset.Asset{Kind: asset.KindColormaps, Count: n, Data: data}
}
