package buddy

// UsedSize returns the total size, in bytes, of all currently allocated
// blocks. This is an observability convenience (not part of spec.md's
// invariants), grounded in the teacher's BuddyAllocator.GetUsedSize.
func (a *Allocator) UsedSize() uint64 {
	var used uint64
	for _, h := range a.allocated {
		used += uint64(1) << h.Order
	}
	return used
}

// TotalSize returns 2^MaxOrder, the arena's total capacity in bytes.
func (a *Allocator) TotalSize() uint64 {
	return a.arena.Size()
}

// Base returns the arena's fixed base address.
func (a *Allocator) Base() uint64 {
	return a.arena.Base()
}
