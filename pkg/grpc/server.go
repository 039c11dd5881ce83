// Package grpc provides a lightweight JSON-over-TCP RPC framework
// for internal service-to-service communication.
//
// Protocol: newline-delimited JSON over a persistent TCP connection. Errors
// travel as a stable code plus message so that callers can match them with
// errors.Is against the pkg/errors sentinels.
//
// Example server:
//
//	s := grpc.NewServer()
//	s.Register(proto.MethodLookup, func(ctx context.Context, req json.RawMessage) (any, error) {
//	    var in proto.LookupRequest
//	    if err := json.Unmarshal(req, &in); err != nil {
//	        return nil, err
//	    }
//	    return lookup(ctx, in.Term)
//	})
//	s.Serve(":9100")
//
// Example client:
//
//	c, _ := grpc.Dial(ctx, "localhost:9100")
//	var resp proto.LookupResponse
//	err := c.Call(ctx, proto.MethodLookup, &proto.LookupRequest{Term: "AI"}, &resp)
package grpc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"sync"

	apperrors "github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/errors"
)

// HandlerFunc processes an RPC request and returns a response or error.
type HandlerFunc func(ctx context.Context, req json.RawMessage) (any, error)

// Request is the wire format for an RPC request.
type Request struct {
	Method string          `json:"method"`
	ID     string          `json:"id"`
	Params json.RawMessage `json:"params"`
}

// Response is the wire format for an RPC response.
type Response struct {
	ID    string          `json:"id"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error *Error          `json:"error,omitempty"`
}

// Error is the wire form of a failed call.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Server is a lightweight JSON-over-TCP RPC server.
type Server struct {
	handlers map[string]HandlerFunc
	listener net.Listener
	logger   *slog.Logger
	mu       sync.RWMutex
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	conns    map[net.Conn]struct{}
}

// NewServer creates a new RPC server.
func NewServer() *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		handlers: make(map[string]HandlerFunc),
		logger:   slog.Default().With("component", "rpc-server"),
		ctx:      ctx,
		cancel:   cancel,
		conns:    make(map[net.Conn]struct{}),
	}
}

// Register adds a handler for the given RPC method name.
func (s *Server) Register(method string, handler HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = handler
	s.logger.Debug("method registered", "method", method)
}

// Serve listens on addr and blocks until Stop is called.
func (s *Server) Serve(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.ServeListener(ln)
}

// ServeListener accepts connections on ln and blocks until Stop is called.
func (s *Server) ServeListener(ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	s.logger.Info("rpc server listening", "addr", ln.Addr().String())

	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.ctx.Err() != nil {
				return nil
			}
			s.logger.Error("accept error", "error", err)
			continue
		}
		s.mu.Lock()
		s.conns[conn] = struct{}{}
		s.mu.Unlock()
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	decoder := json.NewDecoder(conn)
	encoder := json.NewEncoder(conn)

	for {
		var req Request
		if err := decoder.Decode(&req); err != nil {
			return
		}
		resp := s.dispatch(req)
		if err := encoder.Encode(resp); err != nil {
			s.logger.Error("write error", "method", req.Method, "error", err)
			return
		}
	}
}

func (s *Server) dispatch(req Request) (resp Response) {
	resp.ID = req.ID
	s.mu.RLock()
	handler, exists := s.handlers[req.Method]
	s.mu.RUnlock()
	if !exists {
		resp.Error = &Error{Code: "invalid_input", Message: fmt.Sprintf("unknown method: %s", req.Method)}
		return resp
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("handler panic", "method", req.Method, "panic", r)
			resp.Data = nil
			resp.Error = &Error{Code: "internal", Message: "internal error"}
		}
	}()

	data, err := handler(s.ctx, req.Params)
	if err != nil {
		resp.Error = &Error{Code: apperrors.Code(err), Message: apperrors.Message(err, err.Error())}
		return resp
	}
	raw, err := json.Marshal(data)
	if err != nil {
		resp.Error = &Error{Code: "internal", Message: "encoding response"}
		return resp
	}
	resp.Data = raw
	return resp
}

// MethodCount returns the number of registered methods.
func (s *Server) MethodCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.handlers)
}

// Addr returns the listener address once serving has started.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop closes the listener and open connections, cancels in-flight handler
// contexts, and waits for connection goroutines to exit.
func (s *Server) Stop() {
	s.cancel()
	s.mu.Lock()
	if s.listener != nil {
		s.listener.Close()
	}
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
	s.logger.Info("rpc server stopped")
}
