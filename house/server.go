package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cloudx-io/auctionhouse/core"
)

// Server accepts one JSON request per connection and writes one JSON response.
// Clients signal the end of a request by closing their write side.
type Server struct {
	house       *core.House
	keyManager  *KeyManager
	receipts    *ReceiptIssuer
	maxWorkers  int
	readTimeout time.Duration
	logger      *slog.Logger
}

func NewServer(house *core.House, keyManager *KeyManager, maxWorkers int, readTimeout time.Duration, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	if readTimeout <= 0 {
		readTimeout = 30 * time.Second
	}
	return &Server{
		house:       house,
		keyManager:  keyManager,
		receipts:    NewReceiptIssuer(keyManager),
		maxWorkers:  maxWorkers,
		readTimeout: readTimeout,
		logger:      logger,
	}
}

// Serve handles connections from listener until ctx is cancelled or the
// listener is closed, then waits for in-flight requests to finish.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		if err := listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.logger.Error("failed to close listener", "error", err)
		}
		return nil
	})

	semaphore := make(chan struct{}, s.maxWorkers)
	s.logger.Info("worker pool initialized", "max_workers", s.maxWorkers)
	s.logger.Info("house server listening", "addr", listener.Addr().String())

	g.Go(func() error {
		defer cancel()
		for {
			conn, err := listener.Accept()
			if err != nil {
				if gctx.Err() != nil || errors.Is(err, net.ErrClosed) {
					return nil
				}
				s.logger.Error("failed to accept connection", "error", err)
				continue
			}

			// Acquire worker slot - immediate rejection if pool full
			select {
			case semaphore <- struct{}{}:
				g.Go(func() error {
					defer func() { <-semaphore }()
					s.handleConnection(gctx, conn)
					return nil
				})
			default:
				s.logger.Warn("no workers available, rejecting connection")
				if err := conn.Close(); err != nil {
					s.logger.Error("failed to close rejected connection", "error", err)
				}
			}
		}
	})

	return g.Wait()
}

func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic recovered in handleConnection", "panic", r)
		}
		if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.logger.Error("failed to close connection", "error", err)
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(s.readTimeout))

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, conn); err != nil {
		s.logger.Error("failed to read request", "error", err)
		return
	}

	response := s.handleRequest(ctx, buf.Bytes())

	if err := json.NewEncoder(conn).Encode(response); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}
