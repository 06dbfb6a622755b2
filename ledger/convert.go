package ledger

import (
	"errors"

	"github.com/elslush/immudb4go/crypto"
	"github.com/elslush/immudb4go/schema"
)

var ErrMissingHeader = errors.New("[ledger] Missing tx header")

func digest32(b []byte) [crypto.HashSizeByte]byte {
	var d [crypto.HashSizeByte]byte
	copy(d[:], b)
	return d
}

func digests32(bs [][]byte) [][crypto.HashSizeByte]byte {
	if bs == nil {
		return nil
	}
	ds := make([][crypto.HashSizeByte]byte, len(bs))
	for i, b := range bs {
		ds[i] = digest32(b)
	}
	return ds
}

// KVMetadataFromSchema converts wire metadata into its domain form.
func KVMetadataFromSchema(md *schema.KVMetadata) *KVMetadata {
	if md == nil {
		return nil
	}
	kvmd := NewKVMetadata().
		AsDeleted(md.Deleted).
		AsNonIndexable(md.NonIndexable)
	if md.Expiration != nil {
		kvmd.ExpiresAt(md.Expiration.ExpiresAt)
	}
	return kvmd
}

// TxHeaderFromSchema converts a wire header, rejecting versions this
// client cannot serialize bit-exactly.
func TxHeaderFromSchema(h *schema.TxHeader) (*TxHeader, error) {
	if h == nil {
		return nil, ErrMissingHeader
	}
	if h.Version < 0 || int(h.Version) > MaxTxHeaderVersion {
		return nil, ErrUnsupportedTxHeaderVersion
	}
	return &TxHeader{
		Version:  int(h.Version),
		ID:       h.Id,
		PrevAlh:  digest32(h.PrevAlh),
		Ts:       h.Ts,
		NEntries: int(h.Nentries),
		Eh:       digest32(h.EH),
		BlTxID:   h.BlTxId,
		BlRoot:   digest32(h.BlRoot),
	}, nil
}

// TxFromSchema materializes a wire transaction and rebuilds its hash
// tree, binding the header's entries hash to the actual entries.
func TxFromSchema(stx *schema.Tx) (*Tx, error) {
	if stx == nil {
		return nil, ErrMissingHeader
	}
	header, err := TxHeaderFromSchema(stx.Header)
	if err != nil {
		return nil, err
	}

	entries := make([]*TxEntry, len(stx.Entries))
	for i, e := range stx.Entries {
		entries[i] = NewTxEntry(
			e.Key,
			KVMetadataFromSchema(e.Metadata),
			int(e.VLen),
			digest32(e.HValue),
		)
	}

	tx := NewTxWithEntries(header, entries)
	if err := tx.BuildHashTree(); err != nil {
		return nil, err
	}
	return tx, nil
}

// InclusionProofFromSchema converts a wire inclusion proof.
func InclusionProofFromSchema(p *schema.InclusionProof) *InclusionProof {
	if p == nil {
		return nil
	}
	return &InclusionProof{
		Leaf:  int(p.Leaf),
		Width: int(p.Width),
		Terms: digests32(p.Terms),
	}
}

// LinearProofFromSchema converts a wire linear proof.
func LinearProofFromSchema(p *schema.LinearProof) *LinearProof {
	if p == nil {
		return nil
	}
	return &LinearProof{
		SourceTxID: p.SourceTxId,
		TargetTxID: p.TargetTxId,
		Terms:      digests32(p.Terms),
	}
}

// DualProofFromSchema converts a wire dual proof. Header conversion
// errors surface so that an unsupported version is never silently
// verified as a zero header.
func DualProofFromSchema(p *schema.DualProof) (*DualProof, error) {
	if p == nil {
		return nil, ErrMissingHeader
	}
	source, err := TxHeaderFromSchema(p.SourceTxHeader)
	if err != nil {
		return nil, err
	}
	target, err := TxHeaderFromSchema(p.TargetTxHeader)
	if err != nil {
		return nil, err
	}
	return &DualProof{
		SourceTxHeader:     source,
		TargetTxHeader:     target,
		InclusionProof:     digests32(p.InclusionProof),
		ConsistencyProof:   digests32(p.ConsistencyProof),
		TargetBlTxAlh:      digest32(p.TargetBlTxAlh),
		LastInclusionProof: digests32(p.LastInclusionProof),
		LinearProof:        LinearProofFromSchema(p.LinearProof),
	}, nil
}

// EntrySpecFromSchema rebuilds the canonical entry spec a returned
// entry must digest to: plain entries encode their own key and value,
// referenced entries encode the reference key and the wrapped target.
func EntrySpecFromSchema(e *schema.Entry) *EntrySpec {
	if e.ReferencedBy == nil {
		return EncodeEntrySpec(e.Key, KVMetadataFromSchema(e.Metadata), e.Value)
	}
	ref := e.ReferencedBy
	return EncodeReference(ref.Key, KVMetadataFromSchema(ref.Metadata), e.Key, ref.AtTx)
}
