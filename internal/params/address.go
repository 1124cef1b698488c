package params

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
)

// AddressSize is the size of an address in bytes.
const AddressSize = 20

// Address identifies an asset, oracle, or principal.
type Address [AddressSize]byte

// ZeroAddress is the all-zero address; it is never a valid target.
var ZeroAddress Address

// ParseAddress decodes a hex address, with or without a 0x prefix.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimPrefix(s, "0x")

	b, err := hex.DecodeString(s)
	if err != nil || len(b) != AddressSize {
		return Address{}, fmt.Errorf("invalid address: %q", s)
	}

	var a Address
	copy(a[:], b)

	return a, nil
}

// String returns the 0x-prefixed hex form of the address.
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// IsZero returns true if the address is the zero address.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// MarshalText implements encoding.TextMarshaler; addresses serialize as
// 0x-prefixed hex in JSON payloads.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}

	*a = parsed

	return nil
}

// encodeUint64 encodes v as 8 big-endian bytes for storage values.
func encodeUint64(v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)

	return buf[:]
}

// decodeUint64 decodes a stored 8-byte value. Returns 0 for absent values.
func decodeUint64(b []byte) uint64 {
	if len(b) != 8 {
		return 0
	}

	return binary.BigEndian.Uint64(b)
}
