package ginternals

import "github.com/hollowtree/gitcore/ginternals/githash"

// hashMethod is the hash algorithm used by this package to derive and
// parse object ids. Every on-disk format this module implements is
// pinned to SHA-1; githash.Hash is the seam that would let a future
// SHA-256 repository reuse the same object/tree/commit/tag code.
var hashMethod = githash.NewSHA1()

// Oid represents a git Object ID
type Oid = githash.Oid

// NullOid is the zero-value Oid
var NullOid = hashMethod.NullOid()

// NewOidFromStr returns an Oid from its hex string representation
// (ex. "9b91da06e69613397b38e0808e0ba5ee6983251b")
func NewOidFromStr(id string) (Oid, error) {
	return hashMethod.ConvertFromString(id)
}

// NewOidFromChars returns an Oid from its hex-encoded ascii representation
// (ex. []byte{'9', 'b', '9', '1', ...})
func NewOidFromChars(id []byte) (Oid, error) {
	return hashMethod.ConvertFromChars(id)
}

// NewOidFromHex returns an Oid from its raw binary representation.
// Despite the name, it does not decode hex text: it casts an
// already-decoded 20-byte oid, as found inline in a tree object entry.
func NewOidFromHex(id []byte) (Oid, error) {
	return hashMethod.ConvertFromBytes(id)
}

// NewOidFromContent returns the Oid obtained by hashing the given bytes
// (the full "<type> <len>\0<content>" frame of an object, not just its
// content).
func NewOidFromContent(data []byte) Oid {
	return hashMethod.Sum(data)
}
