// Package githash contains the hashing primitives used to derive and
// represent git object identifiers. Two algorithms are supported: SHA-1,
// which every on-disk format in this module is pinned to, and SHA-256,
// kept as a forward-compatibility seam with no on-disk fixtures of its
// own.
package githash

import (
	"encoding/hex"
	"errors"
	"hash"
)

var (
	// ErrInvalidOid is returned when a given value isn't a valid Oid
	ErrInvalidOid = errors.New("invalid Oid")
	// ErrInvalidHexLength is returned when a hex-encoded Oid doesn't have
	// the expected number of characters
	ErrInvalidHexLength = errors.New("invalid hex length")
	// ErrInvalidHexCharacter is returned when a hex-encoded Oid contains
	// a non-hexadecimal character
	ErrInvalidHexCharacter = errors.New("invalid hex character")
	// ErrInvalidBufferLength is returned when a destination buffer passed
	// to ToHex or ParseHex doesn't have the expected length
	ErrInvalidBufferLength = errors.New("invalid buffer length")
)

// Hash represents an Hash algorithm supported by Git
type Hash interface {
	// Name returns the name of the hash
	Name() string
	// OidSize returns the size, in bytes, of an Oid produced by this Hash
	OidSize() int
	// New returns a streaming hash.Hash that can be fed data over time
	// with Write() and finalized with Sum(nil)
	New() hash.Hash
	// Sum returns the Oid of the given content.
	// The oid will be the sum of the content
	Sum(bytes []byte) Oid
	// ConvertFromString returns an Oid from the given string
	// For the SHA 9b91da06e69613397b38e0808e0ba5ee6983251b
	// the oid will be {0x9b, 0x91, 0xda, ...}
	ConvertFromString(id string) (Oid, error)
	// ConvertFromChars returns an Oid from the given char bytes
	// For the SHA {'9', 'b', '9', '1', 'd', 'a', ...}
	// the oid will be {0x9b, 0x91, 0xda, ...}
	ConvertFromChars(id []byte) (Oid, error)
	// ConvertFromBytes returns an Oid from the provided byte-encoded oid
	// This basically casts a slice that contains an encoded oid into
	// a Oid object
	ConvertFromBytes(id []byte) (Oid, error)
	// NullOid returns an empty Oid
	NullOid() Oid
}

// Oid represents a git Object ID
type Oid interface {
	// Bytes returns the raw Oid as []byte.
	// This is different than doing []byte(oid.String())
	// For the oid 642480605b8b0fd464ab5762e044269cf29a60a3:
	// oid.Bytes(): []byte{ 0x64, 0x24, 0x80, ... }
	// []byte(oid.String()): []byte{ '6', '4', '2', '4', '8' '0', ... }
	Bytes() []byte
	// String converts an oid to its lowercase hex representation
	String() string
	// IsZero returns whether the oid has the zero value (NullOid)
	IsZero() bool
}

// ToHex fills dst with the lowercase hex representation of src. dst must
// be exactly 2*len(src) bytes long.
func ToHex(src, dst []byte) error {
	if len(dst) != hex.EncodedLen(len(src)) {
		return ErrInvalidBufferLength
	}
	hex.Encode(dst, src)
	return nil
}

// ParseHex decodes the hex string src into dst. dst must be exactly
// len(src)/2 bytes long. On any failure dst is left zero-filled; no
// partial write is ever observable by the caller.
func ParseHex(src, dst []byte) error {
	if len(src)%2 != 0 || hex.DecodedLen(len(src)) != len(dst) {
		return ErrInvalidBufferLength
	}

	scratch := make([]byte, len(dst))
	if _, err := hex.Decode(scratch, src); err != nil {
		var invalidByteErr hex.InvalidByteError
		if errors.As(err, &invalidByteErr) {
			return ErrInvalidHexCharacter
		}
		return err
	}
	copy(dst, scratch)
	return nil
}
