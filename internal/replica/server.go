// Package replica streams configuration snapshots between gateways over
// QUIC. A standby gateway fetches a compressed snapshot from the primary
// and applies it to its own storage.
package replica

import (
	"context"
	"crypto/ed25519"
	"crypto/tls"
	"fmt"
	"sync"
	"time"

	"github.com/quic-go/quic-go"

	"github.com/Arctek/core/internal/logger"
	"github.com/Arctek/core/internal/snapshot"
	"github.com/Arctek/core/internal/storage"
)

// alpnProtocol is the ALPN protocol identifier.
const alpnProtocol = "gateway-replica/1"

// Server serves snapshots of the local configuration state.
type Server struct {
	db         *storage.Storage
	listenAddr string
	tlsConfig  *tls.Config
	quicConfig *quic.Config

	listener *quic.Listener

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer creates a snapshot server for the given storage.
func NewServer(db *storage.Storage, privateKey ed25519.PrivateKey, listenAddr string) (*Server, error) {
	if db == nil {
		return nil, fmt.Errorf("storage is required")
	}

	if privateKey == nil {
		return nil, fmt.Errorf("private key is required")
	}

	cert, err := generateCertificate(privateKey)
	if err != nil {
		return nil, fmt.Errorf("generate certificate: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		db:         db,
		listenAddr: listenAddr,
		tlsConfig: &tls.Config{
			Certificates: []tls.Certificate{cert},
			NextProtos:   []string{alpnProtocol},
		},
		quicConfig: &quic.Config{
			MaxIdleTimeout:  30 * time.Second,
			KeepAlivePeriod: 10 * time.Second,
		},
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Addr returns the listener's address. Returns empty string if not started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

// Start begins accepting replication connections.
func (s *Server) Start() error {
	listener, err := quic.ListenAddr(s.listenAddr, s.tlsConfig, s.quicConfig)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	s.listener = listener

	s.wg.Add(1)
	go s.acceptLoop()

	logger.Info("replica server listening", "addr", s.Addr())

	return nil
}

// Stop shuts the server down and waits for in-flight handlers.
func (s *Server) Stop() {
	s.cancel()

	if s.listener != nil {
		s.listener.Close()
	}

	s.wg.Wait()
}

// acceptLoop accepts connections until the server stops.
func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept(s.ctx)
		if err != nil {
			return
		}

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

// handleConnection serves snapshot streams on one connection.
func (s *Server) handleConnection(conn *quic.Conn) {
	defer s.wg.Done()

	for {
		stream, err := conn.AcceptStream(s.ctx)
		if err != nil {
			return
		}

		s.handleStream(stream)
	}
}

// handleStream answers one snapshot request.
func (s *Server) handleStream(stream *quic.Stream) {
	defer stream.Close()

	msgType, _, err := readMessage(stream)
	if err != nil {
		logger.Warn("replica request read failed", "err", err)
		return
	}

	if msgType != msgSnapshotRequest {
		writeMessage(stream, msgError, []byte(fmt.Sprintf("unexpected message type %d", msgType)))
		return
	}

	start := time.Now()

	data, err := snapshot.Create(s.db)
	if err != nil {
		logger.Error("snapshot creation failed", "err", err)
		writeMessage(stream, msgError, []byte("snapshot creation failed"))
		return
	}

	compressed, err := snapshot.Compress(data)
	if err != nil {
		logger.Error("snapshot compression failed", "err", err)
		writeMessage(stream, msgError, []byte("snapshot compression failed"))
		return
	}

	if err := writeMessage(stream, msgSnapshotData, compressed); err != nil {
		logger.Warn("snapshot send failed", "err", err)
		return
	}

	logger.Info("snapshot served",
		"raw", len(data), "compressed", len(compressed), logger.Timed(start))
}
