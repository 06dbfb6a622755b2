package ledger

import (
	"testing"

	"github.com/elslush/immudb4go/crypto"
	"github.com/elslush/immudb4go/utils"
)

func sampleHeader(version int, id uint64, prevAlh [crypto.HashSizeByte]byte) *TxHeader {
	return &TxHeader{
		Version:  version,
		ID:       id,
		PrevAlh:  prevAlh,
		Ts:       1688000000_000000,
		NEntries: 1,
		Eh:       crypto.Digest([]byte("eh")),
		BlTxID:   0,
	}
}

func TestAlhDeterminism(t *testing.T) {
	for version := TxHeaderVersion0; version <= MaxTxHeaderVersion; version++ {
		h := sampleHeader(version, 7, crypto.Digest([]byte("prev")))
		if h.Alh() != h.Alh() {
			t.Fatalf("version %d: Alh is not deterministic", version)
		}
	}
}

func TestAlhLayoutV0(t *testing.T) {
	h := sampleHeader(TxHeaderVersion0, 3, crypto.Digest([]byte("prev")))

	var inner []byte
	inner = append(inner, utils.UInt64ToBytes(uint64(h.Ts))...)
	inner = append(inner, utils.UInt16ToBytes(0)...) // version
	inner = append(inner, utils.UInt16ToBytes(uint16(h.NEntries))...)
	inner = append(inner, h.Eh[:]...)
	inner = append(inner, utils.UInt64ToBytes(h.BlTxID)...)
	inner = append(inner, h.BlRoot[:]...)
	innerHash := crypto.Digest(inner)

	want := crypto.Digest(utils.UInt64ToBytes(h.ID), h.PrevAlh[:], innerHash[:])
	if h.Alh() != want {
		t.Fatal("v0 Alh does not match the specified layout")
	}
}

func TestAlhLayoutV1(t *testing.T) {
	h := sampleHeader(TxHeaderVersion1, 3, crypto.Digest([]byte("prev")))

	var inner []byte
	inner = append(inner, utils.UInt64ToBytes(uint64(h.Ts))...)
	inner = append(inner, utils.UInt16ToBytes(1)...) // version
	inner = append(inner, utils.UInt16ToBytes(0)...) // tx metadata length
	inner = append(inner, utils.UInt32ToBytes(uint32(h.NEntries))...)
	inner = append(inner, h.Eh[:]...)
	inner = append(inner, utils.UInt64ToBytes(h.BlTxID)...)
	inner = append(inner, h.BlRoot[:]...)
	innerHash := crypto.Digest(inner)

	want := crypto.Digest(utils.UInt64ToBytes(h.ID), h.PrevAlh[:], innerHash[:])
	if h.Alh() != want {
		t.Fatal("v1 Alh does not match the specified layout")
	}
}

func TestAlhVersionsDiffer(t *testing.T) {
	prev := crypto.Digest([]byte("prev"))
	h0 := sampleHeader(TxHeaderVersion0, 3, prev)
	h1 := sampleHeader(TxHeaderVersion1, 3, prev)
	if h0.Alh() == h1.Alh() {
		t.Fatal("v0 and v1 headers with identical fields must not collide")
	}
}

func TestEntrySpecDigestDeterminism(t *testing.T) {
	md := NewKVMetadata().ExpiresAt(12345)
	spec := EncodeEntrySpec([]byte("k2"), md, []byte("v2"))

	for version := TxHeaderVersion0; version <= MaxTxHeaderVersion; version++ {
		d, err := EntrySpecDigestFor(version)
		if err != nil {
			t.Fatal(err)
		}
		probe := spec
		if version == TxHeaderVersion0 {
			probe = EncodeEntrySpec([]byte("k2"), nil, []byte("v2"))
		}
		d1, err := d(probe)
		if err != nil {
			t.Fatal(err)
		}
		d2, err := d(probe)
		if err != nil {
			t.Fatal(err)
		}
		if d1 != d2 {
			t.Fatalf("version %d: digest is not deterministic", version)
		}
	}
}

func TestEntrySpecDigestV0(t *testing.T) {
	spec := EncodeEntrySpec([]byte("k1"), nil, []byte("v1"))
	d, err := EntrySpecDigestFor(TxHeaderVersion0)
	if err != nil {
		t.Fatal(err)
	}

	got, err := d(spec)
	if err != nil {
		t.Fatal(err)
	}
	hvalue := crypto.Digest(spec.Value)
	want := crypto.Digest(spec.Key, hvalue[:])
	if got != want {
		t.Fatal("v0 digest does not match sha256(ek || sha256(ev))")
	}
}

func TestEntrySpecDigestV0RejectsMetadata(t *testing.T) {
	spec := EncodeEntrySpec([]byte("k"), NewKVMetadata().AsDeleted(true), []byte("v"))
	d, _ := EntrySpecDigestFor(TxHeaderVersion0)
	if _, err := d(spec); err != ErrMetadataUnsupported {
		t.Fatalf("v0 digest with metadata: got %v", err)
	}
}

func TestEntrySpecDigestV1CoversMetadata(t *testing.T) {
	d, err := EntrySpecDigestFor(TxHeaderVersion1)
	if err != nil {
		t.Fatal(err)
	}
	plain := EncodeEntrySpec([]byte("k"), nil, []byte("v"))
	deleted := EncodeEntrySpec([]byte("k"), NewKVMetadata().AsDeleted(true), []byte("v"))
	dPlain, err := d(plain)
	if err != nil {
		t.Fatal(err)
	}
	dDeleted, err := d(deleted)
	if err != nil {
		t.Fatal(err)
	}
	if dPlain == dDeleted {
		t.Fatal("metadata must alter the v1 digest")
	}
}

func TestReferenceEncoding(t *testing.T) {
	spec := EncodeReference([]byte("ref"), nil, []byte("target"), 9)
	if spec.Key[0] != utils.SetKeyPrefix {
		t.Fatal("reference key is not prefixed")
	}
	if spec.Value[0] != utils.ReferenceValuePrefix {
		t.Fatal("reference value is not wrapped")
	}
	// prefix + u64 atTx + encoded target key
	if len(spec.Value) != 9+1+len("target") {
		t.Fatalf("reference value length = %d", len(spec.Value))
	}
}

func TestEntrySpecMatchesTxEntryDigest(t *testing.T) {
	md := NewKVMetadata().AsDeleted(true)
	spec := EncodeEntrySpec([]byte("key"), md, []byte("value"))

	specDigest, err := EntrySpecDigestFor(TxHeaderVersion1)
	if err != nil {
		t.Fatal(err)
	}

	txe := NewTxEntry(spec.Key, spec.Metadata, len(spec.Value), crypto.Digest(spec.Value))
	d, err := txe.Digest(TxHeaderVersion1)
	if err != nil {
		t.Fatal(err)
	}
	want, err := specDigest(spec)
	if err != nil {
		t.Fatal(err)
	}
	if d != want {
		t.Fatal("tx entry digest differs from the entry spec digest")
	}
}

func TestTxProofVerifies(t *testing.T) {
	specs := []*EntrySpec{
		EncodeEntrySpec([]byte("a"), nil, []byte("1")),
		EncodeEntrySpec([]byte("b"), nil, []byte("2")),
		EncodeEntrySpec([]byte("c"), nil, []byte("3")),
		EncodeEntrySpec([]byte("d"), nil, []byte("4")),
		EncodeEntrySpec([]byte("e"), nil, []byte("5")),
	}

	entries := make([]*TxEntry, len(specs))
	for i, s := range specs {
		entries[i] = NewTxEntry(s.Key, s.Metadata, len(s.Value), crypto.Digest(s.Value))
	}

	tx := NewTxWithEntries(&TxHeader{Version: TxHeaderVersion1, ID: 1, NEntries: len(entries)}, entries)
	if err := tx.BuildHashTree(); err != nil {
		t.Fatal(err)
	}

	specDigest, _ := EntrySpecDigestFor(TxHeaderVersion1)
	for i, s := range specs {
		proof, err := tx.Proof(s.Key)
		if err != nil {
			t.Fatalf("entry %d: %v", i, err)
		}
		digest, err := specDigest(s)
		if err != nil {
			t.Fatalf("entry %d: %v", i, err)
		}
		if !VerifyInclusion(proof, digest, tx.Header.Eh) {
			t.Fatalf("entry %d: inclusion proof does not verify", i)
		}
		if VerifyInclusion(proof, digest, crypto.Digest([]byte("other root"))) {
			t.Fatalf("entry %d: proof verified against a wrong root", i)
		}
	}

	if _, err := tx.Proof([]byte("missing")); err != ErrKeyNotFoundInTx {
		t.Fatal("proof for a missing key should fail")
	}
}
