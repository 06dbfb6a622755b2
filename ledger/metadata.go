package ledger

import (
	"encoding/binary"
	"errors"
)

// Attribute codes of the canonical metadata serialization.
const (
	deletedAttrCode      = byte(0x00)
	expiresAtAttrCode    = byte(0x01)
	nonIndexableAttrCode = byte(0x02)
)

const expiresAtAttrSize = 1 + 8

var ErrCorruptedMetadata = errors.New("[ledger] Corrupted metadata")
var ErrNonExpirable = errors.New("[ledger] Entry is not expirable")

// KVMetadata holds the attributes attached to a key-value entry.
// Its byte form is part of the version-1 entry digest, so the
// serialization order is fixed: deleted, non-indexable, expiration.
type KVMetadata struct {
	deleted      bool
	nonIndexable bool
	expirable    bool
	expiresAt    int64
}

func NewKVMetadata() *KVMetadata {
	return &KVMetadata{}
}

func (md *KVMetadata) AsDeleted(deleted bool) *KVMetadata {
	md.deleted = deleted
	return md
}

func (md *KVMetadata) Deleted() bool {
	return md.deleted
}

func (md *KVMetadata) AsNonIndexable(nonIndexable bool) *KVMetadata {
	md.nonIndexable = nonIndexable
	return md
}

func (md *KVMetadata) NonIndexable() bool {
	return md.nonIndexable
}

// ExpiresAt marks the entry as expiring at the given unix time in seconds.
func (md *KVMetadata) ExpiresAt(expiresAt int64) *KVMetadata {
	md.expirable = true
	md.expiresAt = expiresAt
	return md
}

// NonExpirable clears a previously set expiration.
func (md *KVMetadata) NonExpirable() *KVMetadata {
	md.expirable = false
	md.expiresAt = 0
	return md
}

func (md *KVMetadata) IsExpirable() bool {
	return md.expirable
}

func (md *KVMetadata) ExpirationTime() (int64, error) {
	if !md.expirable {
		return 0, ErrNonExpirable
	}
	return md.expiresAt, nil
}

// Len returns the serialized length without serializing.
func (md *KVMetadata) Len() int {
	n := 0
	if md.deleted {
		n++
	}
	if md.nonIndexable {
		n++
	}
	if md.expirable {
		n += expiresAtAttrSize
	}
	return n
}

// Bytes serializes the metadata into its canonical byte form.
func (md *KVMetadata) Bytes() []byte {
	b := make([]byte, 0, md.Len())
	if md.deleted {
		b = append(b, deletedAttrCode)
	}
	if md.nonIndexable {
		b = append(b, nonIndexableAttrCode)
	}
	if md.expirable {
		var exp [expiresAtAttrSize]byte
		exp[0] = expiresAtAttrCode
		binary.BigEndian.PutUint64(exp[1:], uint64(md.expiresAt))
		b = append(b, exp[:]...)
	}
	return b
}

// ReadFrom parses the canonical byte form produced by Bytes.
func (md *KVMetadata) ReadFrom(b []byte) error {
	deleted := false
	nonIndexable := false
	expirable := false
	var expiresAt int64

	for i := 0; i < len(b); {
		switch b[i] {
		case deletedAttrCode:
			deleted = true
			i++
		case nonIndexableAttrCode:
			nonIndexable = true
			i++
		case expiresAtAttrCode:
			if len(b)-i < expiresAtAttrSize {
				return ErrCorruptedMetadata
			}
			expirable = true
			expiresAt = int64(binary.BigEndian.Uint64(b[i+1:]))
			i += expiresAtAttrSize
		default:
			return ErrCorruptedMetadata
		}
	}

	md.deleted = deleted
	md.nonIndexable = nonIndexable
	md.expirable = expirable
	md.expiresAt = expiresAt
	return nil
}
