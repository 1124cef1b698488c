package replica

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	// maxMessageSize is the maximum allowed message size (64 MB).
	maxMessageSize = 64 << 20

	// lengthPrefixSize is the size of the length prefix in bytes.
	lengthPrefixSize = 4
)

// Message types exchanged on a replication stream.
const (
	msgSnapshotRequest = byte(1)
	msgSnapshotData    = byte(2)
	msgError           = byte(3)
)

// writeMessage writes a typed, length-prefixed message to the writer.
// Format: [1 byte type] [4 bytes big-endian length] [payload]
func writeMessage(w io.Writer, msgType byte, data []byte) error {
	if len(data) > maxMessageSize {
		return fmt.Errorf("message too large: %d > %d", len(data), maxMessageSize)
	}

	header := make([]byte, 1+lengthPrefixSize)
	header[0] = msgType
	binary.BigEndian.PutUint32(header[1:], uint32(len(data)))

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}

	return nil
}

// readMessage reads a typed, length-prefixed message from the reader.
func readMessage(r io.Reader) (byte, []byte, error) {
	header := make([]byte, 1+lengthPrefixSize)

	if _, err := io.ReadFull(r, header); err != nil {
		return 0, nil, fmt.Errorf("read header: %w", err)
	}

	length := binary.BigEndian.Uint32(header[1:])
	if length > maxMessageSize {
		return 0, nil, fmt.Errorf("message too large: %d > %d", length, maxMessageSize)
	}

	data := make([]byte, length)

	if _, err := io.ReadFull(r, data); err != nil {
		return 0, nil, fmt.Errorf("read payload: %w", err)
	}

	return header[0], data, nil
}
