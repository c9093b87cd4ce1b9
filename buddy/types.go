// Package buddy implements the allocator engine: Init (via New),
// Alloc, Free, and Dump, built on top of the arena and registry
// packages below it.
package buddy

import (
	"github.com/shenjiangwei/buddyalloc/arena"
	"github.com/shenjiangwei/buddyalloc/registry"
)

// Allocator owns the fixed descriptor table, the arena it describes,
// the free-list registry, and the allocated-address index that lets
// Free locate a head in O(1) instead of scanning every order.
type Allocator struct {
	arena *arena.Arena
	reg   *registry.Registry

	// descs is indexed by page number; it never grows or is
	// reallocated after New returns, so a *registry.Head handed out
	// from it stays valid for the allocator's lifetime.
	descs []registry.Head

	// allocated maps a live allocation's base address to its
	// descriptor. The registry only ever holds free heads (see
	// DESIGN.md); this index bridges Alloc to Free the way spec.md's
	// Design Notes recommend.
	allocated map[uint64]*registry.Head

	// covered maps every page to the head of whichever block (free or
	// allocated) currently owns it. Pages that are not themselves a
	// head point at the same head as the rest of their enclosing
	// block, which is what lets Free tell a double-free on a page that
	// has since coalesced into a larger free block (head.Free true)
	// apart from a genuinely invalid address inside a live allocation
	// (head.Free false).
	covered []*registry.Head
}

// config collects Option values before New validates and applies them.
type config struct {
	base     uint64
	minOrder uint
	maxOrder uint
	logLevel LogLevel
}

// Option configures a new Allocator. This is the idiomatic Go rendering
// of spec.md's "compile-time configuration" (MinOrder/MaxOrder default
// to 12/20 and are fixed for the Allocator's lifetime).
type Option func(*config)

// WithOrders overrides the default MinOrder/MaxOrder (12/20).
func WithOrders(minOrder, maxOrder uint) Option {
	return func(c *config) {
		c.minOrder = minOrder
		c.maxOrder = maxOrder
	}
}

// WithBase overrides the arena's base address B (default 0).
func WithBase(base uint64) Option {
	return func(c *config) {
		c.base = base
	}
}

// WithLogLevel overrides the package's default logging level.
func WithLogLevel(level LogLevel) Option {
	return func(c *config) {
		c.logLevel = level
	}
}

// New builds a fresh Allocator: the arena, the N descriptors, the
// registry, and the single descriptor for page 0 at MaxOrder as the
// initial head of one free block covering the whole arena. This is
// Init from spec.md §3/§5; calling New again produces an
// independent, identically-initialized Allocator (the "idempotent
// init" law holds trivially since there is no shared package state).
func New(opts ...Option) (*Allocator, error) {
	cfg := config{
		minOrder: arena.DefaultMinOrder,
		maxOrder: arena.DefaultMaxOrder,
		logLevel: currentLogLevel,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	a, err := arena.New(cfg.base, cfg.minOrder, cfg.maxOrder)
	if err != nil {
		return nil, ErrInvalidOrders
	}
	SetLogLevel(cfg.logLevel)

	alloc := &Allocator{
		arena:     a,
		reg:       registry.New(a.MinOrder(), a.MaxOrder()),
		descs:     make([]registry.Head, a.PageCount()),
		allocated: make(map[uint64]*registry.Head),
		covered:   make([]*registry.Head, a.PageCount()),
	}

	root := &alloc.descs[0]
	root.Page = 0
	root.Address = a.AddrOf(0)
	alloc.reg.Push(a.MaxOrder(), root)
	alloc.markCovered(root, a.MaxOrder())

	Debug("initialized arena base=%d minOrder=%d maxOrder=%d pages=%d", a.Base(), a.MinOrder(), a.MaxOrder(), a.PageCount())
	return alloc, nil
}
