// Package asset stores textures, flats and colormaps in files, ready to be
// uploaded to a device.
//
// A file is a zlib stream of a big-endian header followed by the payload.
// The header carries a CRC-8 of the payload.
package asset

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/sigurn/crc8"

	"github.com/clktmr/doomdev/drivers/doomdev"
	"github.com/clktmr/doomdev/hw/cmd"
)

var (
	ErrFormat   = errors.New("asset: invalid format")
	ErrChecksum = errors.New("asset: checksum mismatch")
)

var magic = [4]byte{'D', 'D', 'A', '1'}

var crcTable = crc8.MakeTable(crc8.CRC8)

type Kind uint8

const (
	KindTexture Kind = iota + 1
	KindFlat
	KindColormaps
)

func (k Kind) String() string {
	switch k {
	case KindTexture:
		return "texture"
	case KindFlat:
		return "flat"
	case KindColormaps:
		return "colormaps"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

type header struct {
	Magic  [4]byte
	Kind   Kind
	Height uint16 // texture repeat height
	Count  uint16 // number of colormaps
	Size   uint32 // payload bytes
	CRC    uint8
}

// Asset is the decoded content of an asset file.
type Asset struct {
	Kind   Kind
	Height int // repeat height of a texture
	Count  int // number of colormaps
	Data   []byte
}

func (a *Asset) validate() error {
	switch a.Kind {
	case KindTexture:
		if len(a.Data) < 1 || len(a.Data) > cmd.MaxTextureSize || a.Height < 0 || a.Height > cmd.MaxTextureHeight {
			return fmt.Errorf("%w: texture of %d bytes, height %d", ErrFormat, len(a.Data), a.Height)
		}
	case KindFlat:
		if len(a.Data) != doomdev.FlatSize {
			return fmt.Errorf("%w: flat of %d bytes", ErrFormat, len(a.Data))
		}
	case KindColormaps:
		if a.Count < 1 || a.Count > doomdev.MaxColormaps || len(a.Data) != a.Count*doomdev.ColormapSize {
			return fmt.Errorf("%w: %d colormaps in %d bytes", ErrFormat, a.Count, len(a.Data))
		}
	default:
		return fmt.Errorf("%w: unknown kind %v", ErrFormat, a.Kind)
	}
	return nil
}

// Load reads an asset file.
func Load(r io.Reader) (*Asset, error) {
	zr, err := zlib.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var hdr header
	if err := binary.Read(zr, binary.BigEndian, &hdr); err != nil {
		return nil, err
	}
	if hdr.Magic != magic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrFormat, hdr.Magic[:])
	}
	if hdr.Size > cmd.MaxTextureSize {
		return nil, fmt.Errorf("%w: payload of %d bytes", ErrFormat, hdr.Size)
	}

	a := &Asset{
		Kind:   hdr.Kind,
		Height: int(hdr.Height),
		Count:  int(hdr.Count),
		Data:   make([]byte, hdr.Size),
	}
	if _, err := io.ReadFull(zr, a.Data); err != nil {
		return nil, err
	}
	if crc8.Checksum(a.Data, crcTable) != hdr.CRC {
		return nil, ErrChecksum
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Store writes a to w as an asset file.
func (a *Asset) Store(w io.Writer) error {
	if err := a.validate(); err != nil {
		return err
	}

	hdr := header{
		Magic:  magic,
		Kind:   a.Kind,
		Height: uint16(a.Height),
		Count:  uint16(a.Count),
		Size:   uint32(len(a.Data)),
		CRC:    crc8.Checksum(a.Data, crcTable),
	}

	zw := zlib.NewWriter(w)
	if err := binary.Write(zw, binary.BigEndian, hdr); err != nil {
		return err
	}
	if _, err := zw.Write(a.Data); err != nil {
		return err
	}
	return zw.Close()
}

// Texture uploads a texture asset to dev.
func (a *Asset) Texture(dev *doomdev.Device) (*doomdev.Texture, error) {
	if a.Kind != KindTexture {
		return nil, fmt.Errorf("%w: %v is not a texture", ErrFormat, a.Kind)
	}
	return dev.NewTexture(bytes.NewReader(a.Data), len(a.Data), a.Height)
}

// Flat uploads a flat asset to dev.
func (a *Asset) Flat(dev *doomdev.Device) (*doomdev.Flat, error) {
	if a.Kind != KindFlat {
		return nil, fmt.Errorf("%w: %v is not a flat", ErrFormat, a.Kind)
	}
	return dev.NewFlat(bytes.NewReader(a.Data))
}

// Colormaps uploads a colormaps asset to dev.
func (a *Asset) Colormaps(dev *doomdev.Device) (*doomdev.Colormaps, error) {
	if a.Kind != KindColormaps {
		return nil, fmt.Errorf("%w: %v is not a colormap array", ErrFormat, a.Kind)
	}
	return dev.NewColormaps(bytes.NewReader(a.Data), a.Count)
}
