// Package registry maintains, for each order in [MinOrder, MaxOrder], an
// ordered collection of the currently free block descriptors at that
// order. Only free heads are ever linked into a registry list; the
// engine above this package tracks allocated blocks separately.
package registry

// Head is one block descriptor. It is meaningful only while it is the
// head of a live block (free or allocated); descriptors dormant within
// a larger block are never referenced by a Registry.
//
// Head values are allocated once, in a fixed-size table owned by the
// engine, and are never moved or freed — prev/next link descriptors
// within that same table, so a *Head is a stable handle for the
// lifetime of the allocator, not a dangling reference into
// reallocatable storage.
type Head struct {
	Page    uint64 // page index this descriptor represents
	Address uint64 // base address of the block; always arena.AddrOf(Page)
	Order   uint   // current order; meaningful only while this is a head
	Free    bool

	prev, next *Head
}

// Registry holds one free list per order, indexed by order-minOrder.
type Registry struct {
	minOrder, maxOrder uint
	heads              []*Head
	counts             []int
}

// New builds an empty registry spanning [minOrder, maxOrder].
func New(minOrder, maxOrder uint) *Registry {
	n := int(maxOrder-minOrder) + 1
	return &Registry{
		minOrder: minOrder,
		maxOrder: maxOrder,
		heads:    make([]*Head, n),
		counts:   make([]int, n),
	}
}

func (r *Registry) slot(order uint) int { return int(order - r.minOrder) }

// Push inserts a free head at order. It becomes the new list head; O(1).
func (r *Registry) Push(order uint, h *Head) {
	i := r.slot(order)

	h.Order = order
	h.Free = true
	h.prev = nil
	h.next = r.heads[i]
	if r.heads[i] != nil {
		r.heads[i].prev = h
	}
	r.heads[i] = h
	r.counts[i]++
}

// Remove unlinks a specific head known to be present at order; O(1).
func (r *Registry) Remove(order uint, h *Head) {
	i := r.slot(order)

	if h.prev != nil {
		h.prev.next = h.next
	} else {
		r.heads[i] = h.next
	}
	if h.next != nil {
		h.next.prev = h.prev
	}
	h.prev, h.next = nil, nil
	r.counts[i]--
}

// PopAnyFree removes and returns any free head at order, or nil if the
// list is empty; O(1), since the list head is always free by
// construction (only free heads are ever linked in).
func (r *Registry) PopAnyFree(order uint) *Head {
	h := r.heads[r.slot(order)]
	if h == nil {
		return nil
	}
	r.Remove(order, h)
	return h
}

// FindAt linearly scans the free list at order for a head whose base
// address matches exactly; O(length at that order).
func (r *Registry) FindAt(order uint, address uint64) *Head {
	for h := r.heads[r.slot(order)]; h != nil; h = h.next {
		if h.Address == address {
			return h
		}
	}
	return nil
}

// CountFree returns the number of free heads currently registered at order.
func (r *Registry) CountFree(order uint) int {
	return r.counts[r.slot(order)]
}
