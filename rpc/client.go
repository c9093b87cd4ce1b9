package rpc

import (
	"fmt"
	"net/rpc"
	"sync"
)

// Client is a remote handle onto a Server's Allocator.
type Client struct {
	id        int
	client    *rpc.Client
	allocated map[uint64]struct{}
	mu        sync.Mutex
}

// NewClient dials address and returns a Client identified by id.
func NewClient(id int, address string) (*Client, error) {
	client, err := rpc.Dial("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server: %v", err)
	}

	return &Client{
		id:        id,
		client:    client,
		allocated: make(map[uint64]struct{}),
	}, nil
}

// Allocate requests size bytes from the server.
func (c *Client) Allocate(size uint64) (uint64, error) {
	req := &AllocRequest{Size: size}
	resp := &AllocResponse{}

	if err := c.client.Call("Server.Allocate", req, resp); err != nil {
		return 0, fmt.Errorf("RPC call failed: %v", err)
	}
	if resp.Error != "" {
		return 0, fmt.Errorf("server error: %s", resp.Error)
	}

	c.mu.Lock()
	c.allocated[resp.Address] = struct{}{}
	c.mu.Unlock()

	return resp.Address, nil
}

// Free releases a previously allocated address through the server.
func (c *Client) Free(address uint64) error {
	req := &FreeRequest{Address: address}
	resp := &FreeResponse{}

	if err := c.client.Call("Server.Free", req, resp); err != nil {
		return fmt.Errorf("RPC call failed: %v", err)
	}
	if resp.Error != "" {
		return fmt.Errorf("server error: %s", resp.Error)
	}

	c.mu.Lock()
	delete(c.allocated, address)
	c.mu.Unlock()

	return nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.client.Close()
}
