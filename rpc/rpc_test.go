package rpc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shenjiangwei/buddyalloc/buddy"
)

func TestRPCClientServer(t *testing.T) {
	// An 8 MiB arena, so all five 1 MiB allocations can be live at once.
	server, err := NewServer(buddy.WithOrders(12, 23))
	require.NoError(t, err)

	ready := make(chan struct{})
	go func() {
		_ = server.Start("127.0.0.1:0", ready)
	}()
	<-ready
	defer server.Close()

	const numClients = 5
	clients := make([]*Client, numClients)
	for i := 0; i < numClients; i++ {
		client, err := NewClient(i, server.Addr().String())
		require.NoError(t, err)
		clients[i] = client
		defer client.Close()
	}

	done := make(chan error, numClients)
	for i, client := range clients {
		go func(id int, c *Client) {
			addr, err := c.Allocate(1024 * 1024)
			if err != nil {
				done <- err
				return
			}
			done <- c.Free(addr)
		}(i, client)
	}

	for i := 0; i < numClients; i++ {
		require.NoError(t, <-done)
	}

	require.Equal(t, uint64(0), server.UsedSize())
}

func TestRPCFreeUnknownAddressReportsServerError(t *testing.T) {
	server, err := NewServer()
	require.NoError(t, err)

	ready := make(chan struct{})
	go func() {
		_ = server.Start("127.0.0.1:0", ready)
	}()
	<-ready
	defer server.Close()

	client, err := NewClient(0, server.Addr().String())
	require.NoError(t, err)
	defer client.Close()

	err = client.Free(0xdeadbeef)
	require.Error(t, err)
}
