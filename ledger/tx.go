package ledger

import (
	"bytes"
	"errors"

	"github.com/elslush/immudb4go/crypto"
	"github.com/elslush/immudb4go/utils"
)

const (
	// TxHeaderVersion0 is the original header layout: a 16-bit entry
	// count and no per-entry metadata.
	TxHeaderVersion0 = 0
	// TxHeaderVersion1 widens the entry count to 32 bits and reserves
	// room for transaction metadata (currently always empty).
	TxHeaderVersion1 = 1

	MaxTxHeaderVersion = TxHeaderVersion1
)

var ErrUnsupportedTxHeaderVersion = errors.New("[ledger] Unsupported tx header version")
var ErrKeyNotFoundInTx = errors.New("[ledger] Key not found in tx")

// TxHeader is the authenticated summary of a transaction. Alh over a
// header chain is the value a client pins as its trusted state.
type TxHeader struct {
	Version  int
	ID       uint64
	PrevAlh  [crypto.HashSizeByte]byte
	Ts       int64
	NEntries int
	Eh       [crypto.HashSizeByte]byte
	BlTxID   uint64
	BlRoot   [crypto.HashSizeByte]byte
}

// Alh computes the accumulated linear hash of the header:
// sha256(u64be(id) || prevAlh || innerHash).
func (h *TxHeader) Alh() [crypto.HashSizeByte]byte {
	inner := h.InnerHash()
	return crypto.Digest(utils.UInt64ToBytes(h.ID), h.PrevAlh[:], inner[:])
}

// InnerHash computes the version-dependent inner hash covered by Alh.
// Proof generators need it to produce linear terms.
func (h *TxHeader) InnerHash() [crypto.HashSizeByte]byte {
	var b bytes.Buffer
	b.Write(utils.UInt64ToBytes(uint64(h.Ts)))
	b.Write(utils.UInt16ToBytes(uint16(h.Version)))

	switch h.Version {
	case TxHeaderVersion0:
		b.Write(utils.UInt16ToBytes(uint16(h.NEntries)))
	case TxHeaderVersion1:
		// reserved tx metadata length, always zero for now
		b.Write(utils.UInt16ToBytes(0))
		b.Write(utils.UInt32ToBytes(uint32(h.NEntries)))
	default:
		panic("[ledger] innerHash: tx header version must be validated upfront")
	}

	b.Write(h.Eh[:])
	b.Write(utils.UInt64ToBytes(h.BlTxID))
	b.Write(h.BlRoot[:])

	return crypto.Digest(b.Bytes())
}

// TxEntry is one key-value slot of a transaction: the encoded key, the
// metadata, the plain value length and the hash of the encoded value.
type TxEntry struct {
	k        []byte
	Metadata *KVMetadata
	VLen     int
	HVal     [crypto.HashSizeByte]byte
}

func NewTxEntry(key []byte, md *KVMetadata, vLen int, hVal [crypto.HashSizeByte]byte) *TxEntry {
	return &TxEntry{
		k:        key,
		Metadata: md,
		VLen:     vLen,
		HVal:     hVal,
	}
}

func (e *TxEntry) Key() []byte {
	return e.k
}

// Digest computes the hash-tree leaf input for the entry under the
// given header version. It is byte-identical to the digest of the
// EntrySpec the entry was committed from.
func (e *TxEntry) Digest(version int) ([crypto.HashSizeByte]byte, error) {
	switch version {
	case TxHeaderVersion0:
		return e.digestV0()
	case TxHeaderVersion1:
		return e.digestV1(), nil
	default:
		return [crypto.HashSizeByte]byte{}, ErrUnsupportedTxHeaderVersion
	}
}

func (e *TxEntry) digestV0() ([crypto.HashSizeByte]byte, error) {
	if e.Metadata != nil {
		return [crypto.HashSizeByte]byte{}, ErrMetadataUnsupported
	}
	return crypto.Digest(e.k, e.HVal[:]), nil
}

func (e *TxEntry) digestV1() [crypto.HashSizeByte]byte {
	var mdbs []byte
	if e.Metadata != nil {
		mdbs = e.Metadata.Bytes()
	}

	var b bytes.Buffer
	b.Write(utils.UInt16ToBytes(uint16(len(mdbs))))
	b.Write(mdbs)
	b.Write(utils.UInt16ToBytes(uint16(len(e.k))))
	b.Write(e.k)
	b.Write(e.HVal[:])

	return crypto.Digest(b.Bytes())
}

// Tx is a fully materialized transaction: its header plus one TxEntry
// per key. Rebuilding its hash tree yields the entries hash the header
// authenticates.
type Tx struct {
	Header  *TxHeader
	Entries []*TxEntry

	htree *HTree
}

func NewTxWithEntries(header *TxHeader, entries []*TxEntry) *Tx {
	return &Tx{
		Header:  header,
		Entries: entries,
	}
}

// BuildHashTree recomputes the hash tree over the entry digests and
// overwrites the header's entries hash with the resulting root, so that
// any later Alh computation is bound to the actual entries.
func (tx *Tx) BuildHashTree() error {
	digests := make([][crypto.HashSizeByte]byte, len(tx.Entries))
	for i, e := range tx.Entries {
		d, err := e.Digest(tx.Header.Version)
		if err != nil {
			return err
		}
		digests[i] = d
	}

	htree, err := NewHTree(len(digests))
	if err != nil {
		return err
	}
	if err := htree.BuildWith(digests); err != nil {
		return err
	}

	tx.htree = htree
	tx.Header.Eh = htree.Root()
	return nil
}

// IndexOf returns the position of the entry holding the given encoded key.
func (tx *Tx) IndexOf(key []byte) (int, error) {
	for i, e := range tx.Entries {
		if bytes.Equal(e.k, key) {
			return i, nil
		}
	}
	return 0, ErrKeyNotFoundInTx
}

// Proof builds the inclusion proof of the entry holding the given
// encoded key against the transaction's hash tree. The tree is built
// on first use when BuildHashTree has not been called.
func (tx *Tx) Proof(key []byte) (*InclusionProof, error) {
	if tx.htree == nil {
		if err := tx.BuildHashTree(); err != nil {
			return nil, err
		}
	}
	kindex, err := tx.IndexOf(key)
	if err != nil {
		return nil, err
	}
	return tx.htree.InclusionProof(kindex)
}
