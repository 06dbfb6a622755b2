// Package utils implements the binary codec shared by the digest
// builders and the proof verifiers: big-endian integer writes and the
// one-byte prefix wrapping applied to keys, values and tree nodes.
package utils

import (
	"encoding/binary"
	"path/filepath"
)

// Prefixes applied before hashing or storing a buffer. Leaf and node
// prefixes separate the two layers of the Merkle trees; key and value
// prefixes separate the plain key-value space from the sorted-set space
// and plain values from references.
const (
	LeafPrefix           = byte(0)
	NodePrefix           = byte(1)
	SetKeyPrefix         = byte(0)
	SortedSetKeyPrefix   = byte(1)
	PlainValuePrefix     = byte(0)
	ReferenceValuePrefix = byte(1)
)

// UInt16ToBytes converts an uint16 variable to a byte array
// in big endian format.
func UInt16ToBytes(num uint16) []byte {
	buf := make([]byte, 2)
	binary.BigEndian.PutUint16(buf, num)
	return buf
}

// UInt32ToBytes converts an uint32 variable to a byte array
// in big endian format.
func UInt32ToBytes(num uint32) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, num)
	return buf
}

// UInt64ToBytes converts an uint64 variable to a byte array
// in big endian format.
func UInt64ToBytes(num uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, num)
	return buf
}

// Int64ToBytes converts an int64 variable to a byte array
// in big endian format.
func Int64ToBytes(num int64) []byte {
	return UInt64ToBytes(uint64(num))
}

// PutUint32 writes num into b at offset off in big endian format and
// returns the offset just past the written bytes.
func PutUint32(b []byte, off int, num uint32) int {
	binary.BigEndian.PutUint32(b[off:], num)
	return off + 4
}

// PutUint64 writes num into b at offset off in big endian format and
// returns the offset just past the written bytes.
func PutUint64(b []byte, off int, num uint64) int {
	binary.BigEndian.PutUint64(b[off:], num)
	return off + 8
}

// WrapWithPrefix returns prefix || b in a fresh buffer.
func WrapWithPrefix(b []byte, prefix byte) []byte {
	wrapped := make([]byte, len(b)+1)
	wrapped[0] = prefix
	copy(wrapped[1:], b)
	return wrapped
}

// WrapReferenceValueAt builds the canonical value form of a reference:
// ReferenceValuePrefix || u64be(atTx) || referencedKey.
// The result is always 9 + len(referencedKey) bytes.
func WrapReferenceValueAt(referencedKey []byte, atTx uint64) []byte {
	wrapped := make([]byte, 1+8+len(referencedKey))
	wrapped[0] = ReferenceValuePrefix
	binary.BigEndian.PutUint64(wrapped[1:], atTx)
	copy(wrapped[9:], referencedKey)
	return wrapped
}

// ResolvePath returns file unchanged when it is absolute; otherwise it
// joins file to the directory of other.
func ResolvePath(file, other string) string {
	if !filepath.IsAbs(file) {
		file = filepath.Join(filepath.Dir(other), file)
	}
	return file
}
