// Package state keeps what a client is allowed to trust: the latest
// verified transaction id and accumulated hash per database, persisted
// per server deployment so that distinct servers can never satisfy each
// other's proofs.
package state

import (
	"bytes"
	"errors"

	"github.com/elslush/immudb4go/crypto"
	"github.com/elslush/immudb4go/crypto/sign"
	"github.com/elslush/immudb4go/utils"
)

var ErrBadSignature = errors.New("[state] Bad state signature")

// ImmuState is the latest transaction whose Merkle root this client
// verified for one database. TxID is monotone per database.
type ImmuState struct {
	Database  string `json:"database"`
	TxID      uint64 `json:"txId"`
	TxHash    []byte `json:"txHash"`
	Signature []byte `json:"signature,omitempty"`
}

func NewImmuState(database string, txID uint64, txHash [crypto.HashSizeByte]byte, signature []byte) *ImmuState {
	return &ImmuState{
		Database:  database,
		TxID:      txID,
		TxHash:    txHash[:],
		Signature: signature,
	}
}

// Hash returns the state's tx hash as a fixed-size digest.
func (s *ImmuState) Hash() [crypto.HashSizeByte]byte {
	var d [crypto.HashSizeByte]byte
	copy(d[:], s.TxHash)
	return d
}

// Serialize produces the canonical byte form covered by the server's
// state signature: database || u64be(txId) || txHash.
func (s *ImmuState) Serialize() []byte {
	var b bytes.Buffer
	b.WriteString(s.Database)
	b.Write(utils.UInt64ToBytes(s.TxID))
	b.Write(s.TxHash)
	return b.Bytes()
}

// CheckSignature validates the state signature against the pinned
// server signing key. A nil key accepts the state as-is.
func (s *ImmuState) CheckSignature(key sign.PublicKey) error {
	if key == nil {
		return nil
	}
	if !key.Verify(s.Serialize(), s.Signature) {
		return ErrBadSignature
	}
	return nil
}
