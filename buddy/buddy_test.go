package buddy

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func newDefault(t *testing.T) *Allocator {
	t.Helper()
	a, err := New()
	require.NoError(t, err)
	return a
}

func dumpString(t *testing.T, a *Allocator) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, a.Dump(&buf))
	return buf.String()
}

// --- Concrete scenarios (spec.md §8) ---

func TestScenarioSingleMaximalAllocation(t *testing.T) {
	a := newDefault(t)

	addr, err := a.Alloc(1048576)
	require.NoError(t, err)
	require.Equal(t, a.Base(), addr)

	require.Equal(t, "0:4K 0:8K 0:16K 0:32K 0:64K 0:128K 0:256K 0:512K 0:1024K \n", dumpString(t, a))

	require.NoError(t, a.Free(addr))
	require.Equal(t, "0:4K 0:8K 0:16K 0:32K 0:64K 0:128K 0:256K 0:512K 1:1024K \n", dumpString(t, a))
}

func TestScenarioSmallestAllocationSplitsFully(t *testing.T) {
	a := newDefault(t)

	addr, err := a.Alloc(1)
	require.NoError(t, err)
	require.Equal(t, a.Base(), addr)

	require.Equal(t, "1:4K 1:8K 1:16K 1:32K 1:64K 1:128K 1:256K 1:512K 0:1024K \n", dumpString(t, a))
}

func TestScenarioCoalesceChain(t *testing.T) {
	a := newDefault(t)
	initial := dumpString(t, a)

	a1, err := a.Alloc(4096)
	require.NoError(t, err)
	a2, err := a.Alloc(4096)
	require.NoError(t, err)

	require.NoError(t, a.Free(a2))
	require.NoError(t, a.Free(a1))

	require.Equal(t, initial, dumpString(t, a))
}

func TestScenarioBestFitSelection(t *testing.T) {
	a := newDefault(t)

	_, err := a.Alloc(65536)
	require.NoError(t, err)
	_, err = a.Alloc(65536)
	require.NoError(t, err)
	_, err = a.Alloc(65536)
	require.NoError(t, err)

	addr, err := a.Alloc(4096)
	require.NoError(t, err)

	require.Less(t, addr-a.Base(), uint64(256*1024))
}

func TestScenarioOutOfMemory(t *testing.T) {
	a := newDefault(t)

	for i := 0; i < 4; i++ {
		_, err := a.Alloc(262144)
		require.NoError(t, err)
	}

	_, err := a.Alloc(262144)
	require.ErrorIs(t, err, ErrOutOfMemory)

	for o := uint(18); o <= a.arena.MaxOrder(); o++ {
		require.Zero(t, a.reg.CountFree(o))
	}
}

func TestScenarioInvalidFree(t *testing.T) {
	a := newDefault(t)

	addr, err := a.Alloc(4096)
	require.NoError(t, err)
	postAlloc := dumpString(t, a)

	err = a.Free(addr + 1)
	require.Error(t, err)
	require.Equal(t, postAlloc, dumpString(t, a))

	require.NoError(t, a.Free(addr))
}

func TestDoubleFreeAfterCoalesceIsDetected(t *testing.T) {
	a := newDefault(t)

	left, err := a.Alloc(4096)
	require.NoError(t, err)
	right, err := a.Alloc(4096)
	require.NoError(t, err)

	require.NoError(t, a.Free(left))
	require.NoError(t, a.Free(right))

	// left and right have since coalesced into a single larger free
	// block; freeing either address again must still be reported as a
	// double free, not an unknown address.
	err = a.Free(left)
	require.ErrorIs(t, err, ErrDoubleFree)
	err = a.Free(right)
	require.ErrorIs(t, err, ErrDoubleFree)
}

// --- Boundary behaviors ---

func TestAllocMaxOrderSucceedsOnce(t *testing.T) {
	a := newDefault(t)

	addr, err := a.Alloc(1 << 20)
	require.NoError(t, err)
	require.Equal(t, a.Base(), addr)

	_, err = a.Alloc(1)
	require.ErrorIs(t, err, ErrOutOfMemory)
}

func TestAllocOneAndMinOrderSameOrder(t *testing.T) {
	a1 := newDefault(t)
	a2 := newDefault(t)

	addr1, err := a1.Alloc(1)
	require.NoError(t, err)
	addr2, err := a2.Alloc(1 << 12)
	require.NoError(t, err)

	require.Equal(t, dumpString(t, a1), dumpString(t, a2))
	require.Equal(t, addr1, addr2)
}

func TestFreeNeverAllocatedDoesNotMutate(t *testing.T) {
	a := newDefault(t)
	before := dumpString(t, a)

	err := a.Free(0xdeadbeef)
	require.ErrorIs(t, err, ErrUnknownAddress)
	require.Equal(t, before, dumpString(t, a))
}

func TestFreeTwiceDoesNotMutate(t *testing.T) {
	a := newDefault(t)

	addr, err := a.Alloc(4096)
	require.NoError(t, err)
	require.NoError(t, a.Free(addr))
	after := dumpString(t, a)

	err = a.Free(addr)
	require.Error(t, err)
	require.Equal(t, after, dumpString(t, a))
}

// --- Laws ---

func TestRoundTripFreeRestoresDump(t *testing.T) {
	sizes := []uint64{1, 4096, 4097, 65536, 1 << 19, 1 << 20}
	for _, size := range sizes {
		a := newDefault(t)
		before := dumpString(t, a)

		addr, err := a.Alloc(size)
		require.NoError(t, err)
		require.NoError(t, a.Free(addr))

		require.Equal(t, before, dumpString(t, a), "round trip failed for size %d", size)
	}
}

func TestIdempotentInit(t *testing.T) {
	a1, err := New()
	require.NoError(t, err)
	a2, err := New()
	require.NoError(t, err)

	require.Equal(t, dumpString(t, a1), dumpString(t, a2))
}

func TestSplittingDeterminism(t *testing.T) {
	sizes := []uint64{1, 100, 4096, 100000, 1 << 20}
	for _, size := range sizes {
		a := newDefault(t)
		addr, err := a.Alloc(size)
		require.NoError(t, err)
		require.Equal(t, a.Base(), addr, "size %d did not return base address", size)
	}
}

// --- Quantified invariants, exercised across a mixed alloc/free sequence ---

func TestInvariantsAfterMixedSequence(t *testing.T) {
	a := newDefault(t)

	sizes := []uint64{4096, 8192, 16384, 32768, 65536, 131072}
	var live []uint64

	for round := 0; round < 50; round++ {
		size := sizes[round%len(sizes)]
		if addr, err := a.Alloc(size); err == nil {
			live = append(live, addr)
		}
		if len(live) > 3 {
			require.NoError(t, a.Free(live[0]))
			live = live[1:]
		}
	}
	for _, addr := range live {
		require.NoError(t, a.Free(addr))
	}

	require.Equal(t, uint64(0), a.UsedSize())

	// Sum of 2^order over all live (free) blocks equals 2^MaxOrder.
	var total uint64
	for o := a.arena.MinOrder(); o <= a.arena.MaxOrder(); o++ {
		total += uint64(a.reg.CountFree(o)) << o
	}
	require.Equal(t, a.TotalSize(), total)
}

func TestNewRejectsInvalidOrders(t *testing.T) {
	_, err := New(WithOrders(0, 20))
	require.ErrorIs(t, err, ErrInvalidOrders)

	_, err = New(WithOrders(20, 12))
	require.ErrorIs(t, err, ErrInvalidOrders)
}

func TestAllocSizeTooLarge(t *testing.T) {
	a := newDefault(t)
	_, err := a.Alloc(1 << 21)
	require.ErrorIs(t, err, ErrSizeTooLarge)
}
