//go:build linux

package hw

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// Poll period for noticing a cancelled context while waiting for interrupts.
const pollInterval = 100 // ms

// UIO binds the accelerator through the Linux userspace I/O framework. The
// kernel stub exposes the register BAR as map 0 and a physically contiguous,
// DMA-coherent region as a further map.
//
// UIO implements IRQ.
type UIO struct {
	f    *os.File
	fd   int
	name string
	maps [][]byte
}

// OpenUIO opens a UIO device node like /dev/uio0.
func OpenUIO(path string) (*UIO, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	return &UIO{f: f, fd: int(f.Fd()), name: filepath.Base(path)}, nil
}

// Map maps region i of the device and returns it with the address the
// device sees it at.
func (u *UIO) Map(i int) (mem []byte, addr Addr, err error) {
	dir := fmt.Sprintf("/sys/class/uio/%s/maps/map%d", u.name, i)
	size, err := readHex(filepath.Join(dir, "size"))
	if err != nil {
		return nil, 0, err
	}
	base, err := readHex(filepath.Join(dir, "addr"))
	if err != nil {
		return nil, 0, err
	}
	if base+size > 1<<32 {
		return nil, 0, fmt.Errorf("uio: map%d at 0x%x not addressable by device", i, base)
	}

	// UIO selects the map by the page-sized offset.
	off := int64(i * unix.Getpagesize())
	mem, err = unix.Mmap(u.fd, off, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, 0, fmt.Errorf("uio: mmap map%d: %w", i, err)
	}
	u.maps = append(u.maps, mem)
	return mem, Addr(base), nil
}

// Window maps the register BAR.
func (u *UIO) Window() (*MemWindow, error) {
	mem, _, err := u.Map(0)
	if err != nil {
		return nil, err
	}
	if len(mem) < WindowSize {
		return nil, fmt.Errorf("uio: register map too small: %d", len(mem))
	}
	return NewMemWindow(mem), nil
}

func (u *UIO) Wait(ctx context.Context) error {
	var buf [4]byte // total interrupt count, unused
	fds := []unix.PollFd{{Fd: int32(u.fd), Events: unix.POLLIN}}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := unix.Poll(fds, pollInterval)
		if errors.Is(err, unix.EINTR) || n == 0 {
			continue
		} else if err != nil {
			return err
		}
		_, err = unix.Read(u.fd, buf[:])
		if errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN) {
			continue
		}
		return err
	}
}

func (u *UIO) Unmask() error {
	var buf [4]byte
	binary.NativeEndian.PutUint32(buf[:], 1)
	_, err := unix.Write(u.fd, buf[:])
	return err
}

func (u *UIO) Close() error {
	var errs []error
	for _, m := range u.maps {
		errs = append(errs, unix.Munmap(m))
	}
	u.maps = nil
	errs = append(errs, u.f.Close())
	return errors.Join(errs...)
}

func readHex(path string) (uint64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	s := strings.TrimPrefix(strings.TrimSpace(string(b)), "0x")
	return strconv.ParseUint(s, 16, 64)
}
