package doomdev_test

import (
	"bytes"
	"testing"

	"github.com/clktmr/doomdev/hw/dma"
	ddtesting "github.com/clktmr/doomdev/testing"
)

// dirty leaves garbage in the allocator's memory, so later allocations
// can't pass as zeroed by accident.
func dirty(t *testing.T, alloc *ddtesting.Allocator) {
	t.Helper()
	b, err := alloc.Alloc(1 << 20)
	if err != nil {
		t.Fatal(err)
	}
	for i := range b.Buf {
		b.Buf[i] = 0xaa
	}
	alloc.Free(b)
}

func TestTextureContents(t *testing.T) {
	dev, _, alloc := ddtesting.NewDevice(t)
	dirty(t, alloc)

	data := bytes.Repeat([]byte{7}, 5000)
	tex, err := dev.NewTexture(bytes.NewReader(data), len(data), 0)
	if err != nil {
		t.Fatal(err)
	}
	defer tex.Close()

	pt := tex.PageTable()
	if pt.Len() != 2 {
		t.Fatalf("got %d pages, want 2", pt.Len())
	}
	got := make([]byte, pt.Size())
	if _, err := pt.ReadAt(got, 0); err != nil {
		t.Fatal(err)
	}
	want := make([]byte, 2*dma.PageSize)
	copy(want, data)
	if i := mismatch(got, want); i >= 0 {
		t.Errorf("byte %d: got %#x, want %#x", i, got[i], want[i])
	}
}

func TestSurfacePages(t *testing.T) {
	dev, _, alloc := ddtesting.NewDevice(t)
	dirty(t, alloc)

	for _, tc := range []struct {
		w, h  int
		pages int
	}{
		{64, 1, 1},
		{64, 64, 1},
		{128, 64, 2},
		{320, 200, 16},
		{640, 400, 63},
		{2048, 2048, 1024},
	} {
		s := newSurface(t, dev, tc.w, tc.h)
		pt := s.PageTable()
		if pt.Len() != tc.pages {
			t.Errorf("%dx%d: got %d pages, want %d", tc.w, tc.h, pt.Len(), tc.pages)
		}
		buf := make([]byte, pt.Size())
		if _, err := pt.ReadAt(buf, 0); err != nil {
			t.Fatal(err)
		}
		if i := mismatch(buf, make([]byte, len(buf))); i >= 0 {
			t.Errorf("%dx%d: byte %d not cleared: %#x", tc.w, tc.h, i, buf[i])
		}
		if err := s.Close(); err != nil {
			t.Fatal(err)
		}
	}
}

func mismatch(a, b []byte) int {
	for i := range min(len(a), len(b)) {
		if a[i] != b[i] {
			return i
		}
	}
	if len(a) != len(b) {
		return min(len(a), len(b))
	}
	return -1
}
