package buddy

import (
	"math/bits"

	"github.com/shenjiangwei/buddyalloc/registry"
)

// targetOrder computes the smallest t with 2^t >= size and t >= MinOrder,
// per spec.md §4.3 step 1. size == 0 is implementation-defined by
// spec.md §8; this rounds it up to MinOrder like any other tiny request
// (see DESIGN.md's Open Question decisions).
func (a *Allocator) targetOrder(size uint64) uint {
	if size <= 1 {
		return a.arena.MinOrder()
	}
	order := uint(bits.Len64(size - 1))
	if order < a.arena.MinOrder() {
		return a.arena.MinOrder()
	}
	return order
}

// Alloc satisfies a request for size bytes by locating the smallest
// free block at or above the target order, splitting it down to size,
// and returning the base address of the left half. It returns
// ErrSizeTooLarge or ErrOutOfMemory without mutating allocator state.
func (a *Allocator) Alloc(size uint64) (uint64, error) {
	targetOrder := a.targetOrder(size)
	if targetOrder > a.arena.MaxOrder() {
		Error("requested size %d exceeds arena capacity (order %d > max %d)", size, targetOrder, a.arena.MaxOrder())
		return 0, ErrSizeTooLarge
	}

	var left *registry.Head
	var activeOrder uint
	for o := targetOrder; o <= a.arena.MaxOrder(); o++ {
		if h := a.reg.PopAnyFree(o); h != nil {
			left = h
			activeOrder = o
			break
		}
	}
	if left == nil {
		Error("out of memory: no free block >= order %d", targetOrder)
		return 0, ErrOutOfMemory
	}

	for activeOrder > targetOrder {
		rightAddr := a.arena.BuddyOf(left.Address, activeOrder-1)
		rightPage := a.arena.PageOf(rightAddr)
		right := &a.descs[rightPage]
		right.Page = rightPage
		right.Address = rightAddr
		a.reg.Push(activeOrder-1, right)
		a.markCovered(right, activeOrder-1)
		Debug("split order %d: left=%d right=%d", activeOrder, left.Address, right.Address)
		activeOrder--
	}

	left.Free = false
	left.Order = targetOrder
	a.allocated[left.Address] = left

	Debug("allocated %d bytes at address %d (order %d)", size, left.Address, targetOrder)
	return left.Address, nil
}

// Free releases a previously allocated block and recursively coalesces
// it with its buddy for as long as the buddy is also free, per
// spec.md §4.3. Double-free and unknown-address attempts are reported
// and leave state unchanged.
//
// A double free is detected even after the original block has gone on
// to coalesce into a larger free block: covered[page] still resolves
// to whichever head now owns that page, and a free head means the
// page is sitting inside live free memory, whether or not address is
// that head's own base address.
func (a *Allocator) Free(address uint64) error {
	if head, ok := a.allocated[address]; ok {
		order := head.Order
		delete(a.allocated, address)
		a.coalesceAndRelease(head, order)
		Debug("freed address %d", address)
		return nil
	}

	if !a.arena.Contains(address) {
		Error("free on unallocated address %d", address)
		return ErrUnknownAddress
	}
	page := a.arena.PageOf(address)
	if a.arena.AddrOf(page) != address {
		Error("free on unallocated address %d", address)
		return ErrUnknownAddress
	}

	if head := a.covered[page]; head.Free {
		Error("double free detected at address %d (order %d)", address, head.Order)
		return ErrDoubleFree
	}

	Error("free on unallocated address %d", address)
	return ErrUnknownAddress
}

// coalesceAndRelease implements spec.md §4.3's coalesce loop: merge
// upward with the buddy for as long as it is present and free, then
// mark the surviving head free and (if no merge happened) register it.
func (a *Allocator) coalesceAndRelease(head *registry.Head, order uint) {
	registered := false

	for order < a.arena.MaxOrder() {
		buddyAddr := a.arena.BuddyOf(head.Address, order)
		buddy := a.reg.FindAt(order, buddyAddr)
		if buddy == nil || !buddy.Free {
			break
		}

		if registered {
			a.reg.Remove(order, head)
		}
		a.reg.Remove(order, buddy)

		winner, loser := head, buddy
		if buddy.Address < head.Address {
			winner, loser = buddy, head
		}
		loser.Free = false

		order++
		a.reg.Push(order, winner)
		a.markCovered(winner, order)
		Debug("coalesced into order %d at address %d", order, winner.Address)

		head = winner
		registered = true
	}

	if !registered {
		a.reg.Push(order, head)
	}
}

// markCovered records head as the current owner of every page in its
// order-sized span, so covered[p] always resolves to the live head
// (free or allocated) that currently contains page p.
func (a *Allocator) markCovered(head *registry.Head, order uint) {
	span := uint64(1) << (order - a.arena.MinOrder())
	for p := head.Page; p < head.Page+span; p++ {
		a.covered[p] = head
	}
}
