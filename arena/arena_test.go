package arena

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewValidatesOrders(t *testing.T) {
	_, err := New(0, 0, 20)
	require.Error(t, err)

	_, err = New(0, 20, 12)
	require.Error(t, err)

	_, err = New(0, 12, 64)
	require.Error(t, err)

	a, err := New(0, DefaultMinOrder, DefaultMaxOrder)
	require.NoError(t, err)
	require.EqualValues(t, 4096, a.PageSize())
	require.EqualValues(t, 256, a.PageCount())
	require.EqualValues(t, 1<<20, a.Size())
}

func TestAddrPageRoundTrip(t *testing.T) {
	a, err := New(0x1000, 12, 20)
	require.NoError(t, err)

	for i := uint64(0); i < a.PageCount(); i++ {
		require.Equal(t, i, a.PageOf(a.AddrOf(i)))
	}
}

func TestBuddyOfIsInvolution(t *testing.T) {
	a, err := New(0, 12, 20)
	require.NoError(t, err)

	for order := a.MinOrder(); order <= a.MaxOrder(); order++ {
		blockSize := uint64(1) << order
		for addr := a.Base(); addr < a.Base()+a.Size(); addr += blockSize {
			buddy := a.BuddyOf(addr, order)
			require.Equal(t, addr, a.BuddyOf(buddy, order), "involution failed for order %d addr %d", order, addr)
		}
	}
}

func TestContains(t *testing.T) {
	a, err := New(0x2000, 12, 16)
	require.NoError(t, err)

	require.True(t, a.Contains(a.Base()))
	require.True(t, a.Contains(a.Base()+a.Size()-1))
	require.False(t, a.Contains(a.Base()+a.Size()))
	require.False(t, a.Contains(a.Base()-1))
}
