package rpc

import (
	"fmt"
	"net"
	"net/rpc"
	"sync"

	"github.com/shenjiangwei/buddyalloc/buddy"
)

// Server exposes an Allocator's Alloc/Free over net/rpc. The mutex
// only serializes concurrent clients; the allocator core underneath
// stays single-threaded and synchronous.
type Server struct {
	allocator *buddy.Allocator
	rpcServer *rpc.Server
	listener  net.Listener
	mu        sync.Mutex
}

// AllocRequest represents a memory allocation request.
type AllocRequest struct {
	Size uint64
}

// AllocResponse represents a memory allocation response.
type AllocResponse struct {
	Address uint64
	Error   string
}

// FreeRequest represents a memory free request. Unlike the teacher's
// version, it carries only the address: the engine finds the block
// from the address alone through its allocated-address index, so no
// size hint is needed.
type FreeRequest struct {
	Address uint64
}

// FreeResponse represents a memory free response.
type FreeResponse struct {
	Error string
}

// NewServer creates a server backed by a fresh Allocator.
func NewServer(opts ...buddy.Option) (*Server, error) {
	allocator, err := buddy.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create allocator: %v", err)
	}

	server := &Server{allocator: allocator, rpcServer: rpc.NewServer()}
	if err := server.rpcServer.Register(server); err != nil {
		return nil, fmt.Errorf("failed to register server: %v", err)
	}
	return server, nil
}

// Start listens on address and serves RPC connections until Close is
// called. ready, if non-nil, is closed once the listener is bound so
// callers can synchronize without sleeping.
func (s *Server) Start(address string, ready chan<- struct{}) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to start server: %v", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	if ready != nil {
		close(ready)
	}

	for {
		conn, err := listener.Accept()
		if err != nil {
			return nil
		}
		go s.rpcServer.ServeConn(conn)
	}
}

// Addr returns the listener's bound address. Call only after Start's
// ready channel has closed.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Allocate is the RPC method backing Client.Allocate.
func (s *Server) Allocate(req *AllocRequest, resp *AllocResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	addr, err := s.allocator.Alloc(req.Size)
	if err != nil {
		resp.Error = err.Error()
		return nil
	}

	resp.Address = addr
	return nil
}

// Free is the RPC method backing Client.Free.
func (s *Server) Free(req *FreeRequest, resp *FreeResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.allocator.Free(req.Address); err != nil {
		resp.Error = err.Error()
	}
	return nil
}

// UsedSize reports the allocator's current live-allocation total.
func (s *Server) UsedSize() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.allocator.UsedSize()
}

// Close stops accepting new connections.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}
