package buddy

import "errors"

// Error definitions. Alloc and Free each fail in exactly the two ways
// spec.md describes; neither mutates allocator state on failure.
var (
	// ErrSizeTooLarge is returned when the requested size exceeds the
	// arena's capacity (2^MaxOrder bytes).
	ErrSizeTooLarge = errors.New("buddy: requested size exceeds arena capacity")
	// ErrOutOfMemory is returned when no free block at or above the
	// target order is available.
	ErrOutOfMemory = errors.New("buddy: no free block large enough")
	// ErrUnknownAddress is returned when Free is called with an address
	// that is not a live allocation's base and is outside the arena, not
	// page-aligned, or inside an allocated block.
	ErrUnknownAddress = errors.New("buddy: free on unallocated address")
	// ErrDoubleFree is returned when Free is called with a page-aligned
	// address that lies inside a currently free block, whether it is that
	// block's base or a page that has since coalesced into it.
	ErrDoubleFree = errors.New("buddy: free on already-free page")
	// ErrInvalidOrders is returned by New when MinOrder/MaxOrder violate
	// 0 < MinOrder <= MaxOrder <= 63.
	ErrInvalidOrders = errors.New("buddy: MinOrder/MaxOrder out of range")
)
