package asset_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/clktmr/doomdev/asset"
	"github.com/clktmr/doomdev/drivers/doomdev"
	ddtesting "github.com/clktmr/doomdev/testing"
)

func TestStoreLoad(t *testing.T) {
	want := &asset.Asset{Kind: asset.KindTexture, Height: 128, Data: bytes.Repeat([]byte{1, 2, 3}, 1000)}

	var buf bytes.Buffer
	if err := want.Store(&buf); err != nil {
		t.Fatal(err)
	}
	got, err := asset.Load(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("asset mismatch (-want +got):\n%s", diff)
	}
}

func TestInvalid(t *testing.T) {
	flat := &asset.Asset{Kind: asset.KindFlat, Data: make([]byte, 100)}
	if err := flat.Store(&bytes.Buffer{}); !errors.Is(err, asset.ErrFormat) {
		t.Errorf("short flat: got %v", err)
	}

	cm := &asset.Asset{Kind: asset.KindColormaps, Count: 2, Data: make([]byte, doomdev.ColormapSize)}
	if err := cm.Store(&bytes.Buffer{}); !errors.Is(err, asset.ErrFormat) {
		t.Errorf("colormap count mismatch: got %v", err)
	}

	if _, err := asset.Load(bytes.NewReader([]byte("not zlib"))); err == nil {
		t.Error("loaded garbage")
	}
}

func TestUpload(t *testing.T) {
	dev, _, alloc := ddtesting.NewDevice(t)

	a := &asset.Asset{Kind: asset.KindColormaps, Count: 3, Data: make([]byte, 3*doomdev.ColormapSize)}
	cm, err := a.Colormaps(dev)
	if err != nil {
		t.Fatal(err)
	}
	if cm.Len() != 3 || alloc.Live() != 3 {
		t.Errorf("got %d maps in %d blocks", cm.Len(), alloc.Live())
	}

	if _, err := a.Flat(dev); !errors.Is(err, asset.ErrFormat) {
		t.Errorf("colormaps as flat: got %v", err)
	}
}
