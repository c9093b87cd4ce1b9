// Package arena owns the fixed byte region a buddy allocator partitions
// and provides the address/page-index/buddy-address arithmetic every
// other component builds on.
package arena

import "fmt"

// Canonical defaults: 4KiB pages, 1MiB arena.
const (
	DefaultMinOrder uint = 12
	DefaultMaxOrder uint = 20
)

// Arena is a contiguous byte region of exactly 2^MaxOrder bytes starting
// at a fixed base address. It holds no mutable state: splitting and
// coalescing live in the registry and engine layers above it.
type Arena struct {
	base      uint64
	minOrder  uint
	maxOrder  uint
	pageSize  uint64
	pageCount uint64
}

// New validates the order bounds and builds an Arena rooted at base.
func New(base uint64, minOrder, maxOrder uint) (*Arena, error) {
	if minOrder == 0 {
		return nil, fmt.Errorf("arena: MinOrder must be > 0, got %d", minOrder)
	}
	if minOrder > maxOrder {
		return nil, fmt.Errorf("arena: MinOrder %d exceeds MaxOrder %d", minOrder, maxOrder)
	}
	if maxOrder > 63 {
		return nil, fmt.Errorf("arena: MaxOrder %d exceeds word size - 1", maxOrder)
	}

	pageSize := uint64(1) << minOrder
	pageCount := uint64(1) << (maxOrder - minOrder)

	return &Arena{
		base:      base,
		minOrder:  minOrder,
		maxOrder:  maxOrder,
		pageSize:  pageSize,
		pageCount: pageCount,
	}, nil
}

// Base returns the arena's fixed base address B.
func (a *Arena) Base() uint64 { return a.base }

// MinOrder returns the minimum block order.
func (a *Arena) MinOrder() uint { return a.minOrder }

// MaxOrder returns the maximum block order.
func (a *Arena) MaxOrder() uint { return a.maxOrder }

// PageSize returns 2^MinOrder, the size of one page in bytes.
func (a *Arena) PageSize() uint64 { return a.pageSize }

// PageCount returns N, the number of page slots in the arena.
func (a *Arena) PageCount() uint64 { return a.pageCount }

// Size returns 2^MaxOrder, the total size of the arena in bytes.
func (a *Arena) Size() uint64 { return uint64(1) << a.maxOrder }

// AddrOf computes addr(i) = B + i*PAGE_SIZE.
func (a *Arena) AddrOf(pageIndex uint64) uint64 {
	return a.base + pageIndex*a.pageSize
}

// PageOf computes page(addr) = (addr - B) / PAGE_SIZE.
func (a *Arena) PageOf(addr uint64) uint64 {
	return (addr - a.base) / a.pageSize
}

// BuddyOf computes buddy(a, o) = B + ((a - B) XOR 2^o) for a block of
// order o based at addr. It is only meaningful when addr is 2^o-aligned
// relative to B, an invariant callers (the registry/engine layers) are
// responsible for preserving.
func (a *Arena) BuddyOf(addr uint64, order uint) uint64 {
	offset := addr - a.base
	return a.base + (offset ^ (uint64(1) << order))
}

// Contains reports whether addr falls within [B, B+2^MaxOrder).
func (a *Arena) Contains(addr uint64) bool {
	return addr >= a.base && addr < a.base+a.Size()
}
