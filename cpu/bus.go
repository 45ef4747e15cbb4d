package cpu

import (
	"errors"
	"fmt"
)

// Default memory map.
const (
	TextBegin  = 0x00400000
	TextEnd    = 0x0040FFFF
	DataBegin  = 0x10010000
	DataEnd    = 0x10011FFF
	StackBegin = 0x7FF00000
	StackEnd   = 0x7FFFFFFF
	KDataBegin = 0x90000000
	KDataEnd   = 0x9000FFFF
	KTextBegin = 0x80000000
	KTextEnd   = 0x8000FFFF

	// TextBase is where programs are loaded and where the PC starts.
	TextBase = TextBegin
)

// ErrOverlap is returned when a new region would share addresses with an existing one.
var ErrOverlap = errors.New("memory regions overlap")

// RegionSpec describes a region before its buffer is allocated.
type RegionSpec struct {
	Name  string
	Begin uint32
	End   uint32 // Inclusive
}

// DefaultLayout returns the standard text/data/stack/kernel map.
func DefaultLayout() []RegionSpec {
	return []RegionSpec{
		{Name: "text", Begin: TextBegin, End: TextEnd},
		{Name: "data", Begin: DataBegin, End: DataEnd},
		{Name: "stack", Begin: StackBegin, End: StackEnd},
		{Name: "kdata", Begin: KDataBegin, End: KDataEnd},
		{Name: "ktext", Begin: KTextBegin, End: KTextEnd},
	}
}

// MemoryRegion is a contiguous, zero-initialised byte range. The range never changes
// after creation.
type MemoryRegion struct {
	Name  string
	Begin uint32
	End   uint32 // Inclusive
	Bytes []byte
}

// Contains reports whether addr falls inside the region.
func (r *MemoryRegion) Contains(addr uint32) bool {
	return addr >= r.Begin && addr <= r.End
}

// Size in bytes.
func (r *MemoryRegion) Size() uint32 {
	return r.End - r.Begin + 1
}

// Bus routes 32-bit accesses to a set of disjoint regions.
// Unmapped reads return 0 and unmapped writes are dropped.
type Bus struct {
	regions []*MemoryRegion
}

// NewBus allocates every region in layout.
func NewBus(layout []RegionSpec) (*Bus, error) {
	b := &Bus{}
	for _, spec := range layout {
		err := b.AddRegion(spec.Name, spec.Begin, spec.End)
		if err != nil {
			return nil, err
		}
	}

	return b, nil
}

// AddRegion allocates a zeroed region covering [begin, end].
func (b *Bus) AddRegion(name string, begin, end uint32) error {
	if begin > end {
		return fmt.Errorf("invalid region %s: begin 0x%08X > end 0x%08X", name, begin, end)
	}

	for _, r := range b.regions {
		if begin <= r.End && r.Begin <= end {
			return fmt.Errorf("%w: %s [0x%08X-0x%08X] and %s [0x%08X-0x%08X]",
				ErrOverlap, name, begin, end, r.Name, r.Begin, r.End)
		}
	}

	b.regions = append(b.regions, &MemoryRegion{
		Name:  name,
		Begin: begin,
		End:   end,
		Bytes: make([]byte, uint64(end)-uint64(begin)+1),
	})
	return nil
}

// Regions returns the regions in the order they were added.
func (b *Bus) Regions() []*MemoryRegion {
	return b.regions
}

// Region returns the region containing addr, or nil.
func (b *Bus) Region(addr uint32) *MemoryRegion {
	for _, r := range b.regions {
		if r.Contains(addr) {
			return r
		}
	}

	return nil
}

// Mapped reports whether addr belongs to any region.
func (b *Bus) Mapped(addr uint32) bool {
	return b.Region(addr) != nil
}

// Read32 composes a little-endian word from the four bytes starting at addr.
// No alignment check is made. An unmapped addr reads as 0, as do bytes that run past
// the end of the region holding addr.
func (b *Bus) Read32(addr uint32) uint32 {
	r := b.Region(addr)
	if r == nil {
		return 0
	}

	var v uint32
	off := addr - r.Begin
	for i := uint32(0); i < 4; i++ {
		if uint64(off)+uint64(i) >= uint64(len(r.Bytes)) {
			break
		}
		v |= uint32(r.Bytes[off+i]) << (8 * i)
	}
	return v
}

// Write32 stores value least-significant byte first at addr.
// Writes to unmapped addresses are dropped without error.
func (b *Bus) Write32(addr, value uint32) {
	r := b.Region(addr)
	if r == nil {
		return
	}

	off := addr - r.Begin
	for i := uint32(0); i < 4; i++ {
		if uint64(off)+uint64(i) >= uint64(len(r.Bytes)) {
			break
		}
		r.Bytes[off+i] = byte(value >> (8 * i))
	}
}

// Load copies raw bytes starting at addr, one word at a time through Write32.
// A trailing partial word is padded with zero bytes.
func (b *Bus) Load(addr uint32, data []byte) {
	words := BytesToWords(data)
	for i, w := range words {
		b.Write32(addr+uint32(i*4), w)
	}
}

// Clear zeroes every region.
func (b *Bus) Clear() {
	for _, r := range b.regions {
		clear(r.Bytes)
	}
}
