package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/clktmr/doomdev/asset"
	"github.com/clktmr/doomdev/tools/texture"
)

const usageString = `ddtool prepares assets for the Doom rendering accelerator.

Usage:

	%s <command> [arguments]

The commands are:

	texture  convert an image to a column texture
	flat     convert an image to a 64x64 flat
	colormap generate colormaps from an image's palette
	info     print the header of asset files
`

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), usageString, os.Args[0])
	flag.PrintDefaults()
}

func main() {
	log.Default().SetFlags(0)
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	switch flag.Arg(0) {
	case "texture", "flat", "colormap":
		texture.Main(flag.Args())
	case "info":
		info(flag.Args()[1:])
	default:
		fmt.Fprintf(flag.CommandLine.Output(), "unknown command: %s\n", flag.Arg(0))
		flag.Usage()
		os.Exit(1)
	}
}

func info(files []string) {
	for _, name := range files {
		f, err := os.Open(name)
		if err != nil {
			log.Fatalln(err)
		}
		a, err := asset.Load(f)
		f.Close()
		if err != nil {
			log.Fatalf("%s: %v", name, err)
		}

		switch a.Kind {
		case asset.KindTexture:
			fmt.Printf("%s: texture, %d bytes, height %d\n", name, len(a.Data), a.Height)
		case asset.KindColormaps:
			fmt.Printf("%s: %d colormaps\n", name, a.Count)
		default:
			fmt.Printf("%s: %v\n", name, a.Kind)
		}
	}
}
