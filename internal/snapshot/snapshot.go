// Package snapshot serializes the full gateway configuration state into a
// checksummed, compressed blob, and restores it. Standby gateways use it to
// mirror a primary.
package snapshot

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"

	"github.com/Arctek/core/internal/storage"
)

const (
	// formatVersion is the current snapshot format version.
	formatVersion = 1

	// checksumSize is the size of the trailing blake3 checksum.
	checksumSize = 32

	// maxEntrySize bounds a single key or value during decoding.
	maxEntrySize = 1 << 20
)

// configPrefixes are the storage prefixes that make up gateway state.
var configPrefixes = [][]byte{
	[]byte("vp:"),
	[]byte("mp:"),
	[]byte("or:"),
	[]byte("cr:"),
	[]byte("v:"),
}

// entry is one key/value pair in a snapshot.
type entry struct {
	key   []byte
	value []byte
}

// Create serializes the current configuration state.
// Format: u32 version | u32 count | count * (u32 keyLen, key, u32 valLen, val)
// | 32-byte blake3 checksum. Iteration order is key order, so the encoding
// is deterministic.
func Create(db *storage.Storage) ([]byte, error) {
	entries, err := collectEntries(db)
	if err != nil {
		return nil, fmt.Errorf("collect entries:\n%w", err)
	}

	var buf bytes.Buffer
	var scratch [4]byte

	binary.BigEndian.PutUint32(scratch[:], formatVersion)
	buf.Write(scratch[:])

	binary.BigEndian.PutUint32(scratch[:], uint32(len(entries)))
	buf.Write(scratch[:])

	for _, e := range entries {
		binary.BigEndian.PutUint32(scratch[:], uint32(len(e.key)))
		buf.Write(scratch[:])
		buf.Write(e.key)

		binary.BigEndian.PutUint32(scratch[:], uint32(len(e.value)))
		buf.Write(scratch[:])
		buf.Write(e.value)
	}

	checksum := blake3.Sum256(buf.Bytes())
	buf.Write(checksum[:])

	return buf.Bytes(), nil
}

// collectEntries iterates storage and returns all configuration entries.
func collectEntries(db *storage.Storage) ([]entry, error) {
	var entries []entry

	err := db.Iterate(func(key, value []byte) error {
		if !isConfigKey(key) {
			return nil
		}

		// Copy key and value to avoid iterator invalidation
		keyCopy := make([]byte, len(key))
		copy(keyCopy, key)

		valueCopy := make([]byte, len(value))
		copy(valueCopy, value)

		entries = append(entries, entry{key: keyCopy, value: valueCopy})

		return nil
	})

	if err != nil {
		return nil, err
	}

	return entries, nil
}

// isConfigKey returns true if the key belongs to gateway configuration state.
func isConfigKey(key []byte) bool {
	for _, prefix := range configPrefixes {
		if bytes.HasPrefix(key, prefix) {
			return true
		}
	}

	return false
}

// Apply verifies and restores a snapshot, writing all entries atomically.
func Apply(db *storage.Storage, data []byte) (int, error) {
	entries, err := decode(data)
	if err != nil {
		return 0, fmt.Errorf("decode snapshot:\n%w", err)
	}

	pairs := make([]storage.KeyValue, len(entries))
	for i, e := range entries {
		pairs[i] = storage.KeyValue{Key: e.key, Value: e.value}
	}

	if err := db.SetBatch(pairs); err != nil {
		return 0, fmt.Errorf("write entries:\n%w", err)
	}

	return len(entries), nil
}

// decode parses a snapshot and verifies its checksum.
func decode(data []byte) ([]entry, error) {
	if len(data) < 8+checksumSize {
		return nil, fmt.Errorf("snapshot too short: %d bytes", len(data))
	}

	body := data[:len(data)-checksumSize]
	stored := data[len(data)-checksumSize:]

	computed := blake3.Sum256(body)
	if !bytes.Equal(computed[:], stored) {
		return nil, fmt.Errorf("checksum mismatch")
	}

	version := binary.BigEndian.Uint32(body[:4])
	if version != formatVersion {
		return nil, fmt.Errorf("unsupported snapshot version: %d", version)
	}

	count := binary.BigEndian.Uint32(body[4:8])
	body = body[8:]

	entries := make([]entry, 0, count)

	for i := uint32(0); i < count; i++ {
		key, rest, err := readChunk(body)
		if err != nil {
			return nil, fmt.Errorf("entry %d key:\n%w", i, err)
		}

		value, rest, err := readChunk(rest)
		if err != nil {
			return nil, fmt.Errorf("entry %d value:\n%w", i, err)
		}

		body = rest

		entries = append(entries, entry{key: key, value: value})
	}

	if len(body) != 0 {
		return nil, fmt.Errorf("trailing bytes after %d entries", count)
	}

	return entries, nil
}

// readChunk reads one u32-length-prefixed chunk.
func readChunk(data []byte) ([]byte, []byte, error) {
	if len(data) < 4 {
		return nil, nil, fmt.Errorf("truncated length prefix")
	}

	n := binary.BigEndian.Uint32(data[:4])
	if n > maxEntrySize {
		return nil, nil, fmt.Errorf("chunk too large: %d", n)
	}

	data = data[4:]
	if uint32(len(data)) < n {
		return nil, nil, fmt.Errorf("truncated chunk: want %d, have %d", n, len(data))
	}

	return data[:n], data[n:], nil
}

// Compress compresses snapshot data using zstd.
func Compress(data []byte) ([]byte, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create encoder:\n%w", err)
	}
	defer encoder.Close()

	return encoder.EncodeAll(data, nil), nil
}

// Decompress decompresses zstd-compressed snapshot data.
func Decompress(data []byte) ([]byte, error) {
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create decoder:\n%w", err)
	}
	defer decoder.Close()

	return decoder.DecodeAll(data, nil)
}
