package ledger

import "github.com/elslush/immudb4go/crypto"

// InclusionProof is the Merkle path of one entry inside one
// transaction's hash tree.
type InclusionProof struct {
	Leaf  int
	Width int
	Terms [][crypto.HashSizeByte]byte
}

// LinearProof chains accumulated hashes between two transaction ids
// not yet covered by the binary log.
type LinearProof struct {
	SourceTxID uint64
	TargetTxID uint64
	Terms      [][crypto.HashSizeByte]byte
}

// DualProof links a source and a target transaction: inclusion of the
// source in the target's binary log, consistency between both binary
// log roots, last-inclusion of the last covered transaction and a
// linear proof for the tail.
type DualProof struct {
	SourceTxHeader     *TxHeader
	TargetTxHeader     *TxHeader
	InclusionProof     [][crypto.HashSizeByte]byte
	ConsistencyProof   [][crypto.HashSizeByte]byte
	TargetBlTxAlh      [crypto.HashSizeByte]byte
	LastInclusionProof [][crypto.HashSizeByte]byte
	LinearProof        *LinearProof
}
