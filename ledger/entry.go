package ledger

import (
	"bytes"
	"errors"
	"math"

	"github.com/elslush/immudb4go/crypto"
	"github.com/elslush/immudb4go/utils"
)

var ErrMetadataUnsupported = errors.New(
	"[ledger] Metadata is not supported by tx header version 0",
)

// EntrySpec is the canonical, already encoded form of a key-value
// write: the prefixed key, the prefixed (or reference-wrapped) value
// and the metadata. Digests of server responses are rebuilt from
// EntrySpecs and never from raw wire bytes.
type EntrySpec struct {
	Key      []byte
	Metadata *KVMetadata
	Value    []byte
}

// EncodeEntrySpec encodes a plain key-value write.
func EncodeEntrySpec(key []byte, md *KVMetadata, value []byte) *EntrySpec {
	return &EntrySpec{
		Key:      utils.WrapWithPrefix(key, utils.SetKeyPrefix),
		Metadata: md,
		Value:    utils.WrapWithPrefix(value, utils.PlainValuePrefix),
	}
}

// EncodeReference encodes a reference entry: the reference key maps to
// the encoded form of the referenced key, bound at atTx (zero for an
// unbound reference).
func EncodeReference(key []byte, md *KVMetadata, referencedKey []byte, atTx uint64) *EntrySpec {
	return &EntrySpec{
		Key:      utils.WrapWithPrefix(key, utils.SetKeyPrefix),
		Metadata: md,
		Value: utils.WrapReferenceValueAt(
			utils.WrapWithPrefix(referencedKey, utils.SetKeyPrefix), atTx),
	}
}

// EncodeZAdd encodes a sorted-set addition. The composite key carries
// the set name, the big-endian float64 score, the encoded member key
// and the bound transaction id; the value is empty.
func EncodeZAdd(set, key []byte, score float64, atTx uint64) *EntrySpec {
	ekey := utils.WrapWithPrefix(key, utils.SetKeyPrefix)

	var b bytes.Buffer
	b.WriteByte(utils.SortedSetKeyPrefix)
	b.Write(utils.UInt64ToBytes(uint64(len(set))))
	b.Write(set)
	b.Write(utils.UInt64ToBytes(math.Float64bits(score)))
	b.Write(utils.UInt64ToBytes(uint64(len(ekey))))
	b.Write(ekey)
	b.Write(utils.UInt64ToBytes(atTx))

	return &EntrySpec{
		Key:   b.Bytes(),
		Value: nil,
	}
}

// EntrySpecDigest computes the canonical digest of an encoded entry.
// The header version is server-supplied, so a spec the version cannot
// represent surfaces as an error, never as a panic.
type EntrySpecDigest func(kv *EntrySpec) ([crypto.HashSizeByte]byte, error)

// EntrySpecDigestFor resolves the digest function matching a tx header
// version.
func EntrySpecDigestFor(version int) (EntrySpecDigest, error) {
	switch version {
	case TxHeaderVersion0:
		return entrySpecDigestV0, nil
	case TxHeaderVersion1:
		return entrySpecDigestV1, nil
	default:
		return nil, ErrUnsupportedTxHeaderVersion
	}
}

// entrySpecDigestV0 is sha256(encodedKey || sha256(encodedValue)).
// Version 0 predates metadata; its presence means key and version
// cannot belong to the same transaction.
func entrySpecDigestV0(kv *EntrySpec) ([crypto.HashSizeByte]byte, error) {
	if kv.Metadata != nil {
		return [crypto.HashSizeByte]byte{}, ErrMetadataUnsupported
	}
	hvalue := crypto.Digest(kv.Value)
	return crypto.Digest(kv.Key, hvalue[:]), nil
}

// entrySpecDigestV1 hashes the metadata and key with explicit lengths:
// sha256(u16be(mdLen) || md || u16be(keyLen) || encodedKey || sha256(encodedValue)).
func entrySpecDigestV1(kv *EntrySpec) ([crypto.HashSizeByte]byte, error) {
	var mdbs []byte
	if kv.Metadata != nil {
		mdbs = kv.Metadata.Bytes()
	}

	var b bytes.Buffer
	b.Write(utils.UInt16ToBytes(uint16(len(mdbs))))
	b.Write(mdbs)
	b.Write(utils.UInt16ToBytes(uint16(len(kv.Key))))
	b.Write(kv.Key)
	hvalue := crypto.Digest(kv.Value)
	b.Write(hvalue[:])

	return crypto.Digest(b.Bytes()), nil
}
