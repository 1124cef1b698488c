package replica

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/quic-go/quic-go"

	"github.com/Arctek/core/internal/logger"
	"github.com/Arctek/core/internal/snapshot"
	"github.com/Arctek/core/internal/storage"
)

// Fetch downloads a snapshot from the gateway at addr and applies it to db.
// Returns the number of restored entries.
func Fetch(ctx context.Context, db *storage.Storage, addr string) (int, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: true, // self-signed peer certificate
		NextProtos:         []string{alpnProtocol},
	}

	quicConfig := &quic.Config{
		MaxIdleTimeout: 30 * time.Second,
	}

	conn, err := quic.DialAddr(ctx, addr, tlsConfig, quicConfig)
	if err != nil {
		return 0, fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.CloseWithError(0, "done")

	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		return 0, fmt.Errorf("open stream: %w", err)
	}
	defer stream.Close()

	if err := writeMessage(stream, msgSnapshotRequest, nil); err != nil {
		return 0, fmt.Errorf("send request: %w", err)
	}

	msgType, payload, err := readMessage(stream)
	if err != nil {
		return 0, fmt.Errorf("read response: %w", err)
	}

	switch msgType {
	case msgSnapshotData:
	case msgError:
		return 0, fmt.Errorf("remote error: %s", payload)
	default:
		return 0, fmt.Errorf("unexpected message type %d", msgType)
	}

	data, err := snapshot.Decompress(payload)
	if err != nil {
		return 0, fmt.Errorf("decompress snapshot: %w", err)
	}

	n, err := snapshot.Apply(db, data)
	if err != nil {
		return 0, fmt.Errorf("apply snapshot: %w", err)
	}

	logger.Info("snapshot fetched", "addr", addr, "entries", n)

	return n, nil
}
