package mmap

import (
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

// MemoryMap is a mapped window of physical memory, addressed relative to
// the base passed to NewMemoryMap.
type MemoryMap struct {
	addr   uintptr
	skew   uintptr
	region []byte
}

// NewMemoryMap maps size bytes of /dev/mem starting at addr. addr need not
// be page aligned.
func NewMemoryMap(addr, size uintptr) (*MemoryMap, error) {
	f, err := os.OpenFile("/dev/mem", os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open /dev/mem: %w", err)
	}
	defer f.Close()

	base, skew := pageAlign(addr, uintptr(os.Getpagesize()))
	region, err := unix.Mmap(
		int(f.Fd()),
		int64(base),
		int(size+skew),
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_SHARED,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to mmap %#x: %w", addr, err)
	}

	return &MemoryMap{
		addr:   addr,
		skew:   skew,
		region: region,
	}, nil
}

// Close unmaps the memory region
func (m *MemoryMap) Close() error {
	return unix.Munmap(m.region)
}

// Read32 reads a 32-bit register at offset from the mapped base.
func (m *MemoryMap) Read32(offset uintptr) uint32 {
	return atomic.LoadUint32(m.word(offset))
}

// Write32 writes a 32-bit register at offset from the mapped base.
func (m *MemoryMap) Write32(offset uintptr, value uint32) {
	atomic.StoreUint32(m.word(offset), value)
}

func (m *MemoryMap) word(offset uintptr) *uint32 {
	i := m.skew + offset
	if offset%4 != 0 || i+4 > uintptr(len(m.region)) {
		panic(fmt.Sprintf("mmap: bad register offset %#x", offset))
	}
	return (*uint32)(unsafe.Pointer(&m.region[i]))
}

func pageAlign(addr, page uintptr) (base, skew uintptr) {
	skew = addr % page
	return addr - skew, skew
}
