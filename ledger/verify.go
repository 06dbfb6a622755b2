package ledger

import (
	"github.com/elslush/immudb4go/crypto"
	"github.com/elslush/immudb4go/utils"
)

// leafFor hashes a digest into its leaf form inside the binary log.
func leafFor(d [crypto.HashSizeByte]byte) [crypto.HashSizeByte]byte {
	return crypto.Digest([]byte{utils.LeafPrefix}, d[:])
}

// VerifyInclusion checks that digest is a member of the hash tree of
// width proof.Width rooted at root, at position proof.Leaf.
func VerifyInclusion(proof *InclusionProof, digest, root [crypto.HashSizeByte]byte) bool {
	if proof == nil || proof.Leaf < 0 || proof.Width <= proof.Leaf {
		return false
	}

	calcRoot := leafFor(digest)
	i := uint64(proof.Leaf)
	r := uint64(proof.Width - 1)

	for _, t := range proof.Terms {
		if i%2 == 0 && i != r {
			calcRoot = crypto.Digest([]byte{utils.NodePrefix}, calcRoot[:], t[:])
		} else {
			calcRoot = crypto.Digest([]byte{utils.NodePrefix}, t[:], calcRoot[:])
		}
		i >>= 1
		r >>= 1
	}

	return i == r && root == calcRoot
}

// VerifyInclusionAt checks that iLeaf is the leaf at position i of the
// binary log of width j rooted at jRoot. Positions are 1-based
// transaction ids.
func VerifyInclusionAt(iproof [][crypto.HashSizeByte]byte, i, j uint64,
	iLeaf, jRoot [crypto.HashSizeByte]byte) bool {

	if i > j || i == 0 || (i < j && len(iproof) == 0) {
		return false
	}

	i1 := i - 1
	j1 := j - 1
	ciRoot := iLeaf

	for _, h := range iproof {
		if i1%2 == 0 && i1 != j1 {
			ciRoot = crypto.Digest([]byte{utils.NodePrefix}, ciRoot[:], h[:])
		} else {
			ciRoot = crypto.Digest([]byte{utils.NodePrefix}, h[:], ciRoot[:])
		}
		i1 >>= 1
		j1 >>= 1
	}

	return jRoot == ciRoot
}

// VerifyLastInclusion checks that iLeaf is the last leaf (position i)
// of the binary log rooted at root. The last leaf is always a right
// child on its whole path.
func VerifyLastInclusion(iproof [][crypto.HashSizeByte]byte, i uint64,
	iLeaf, root [crypto.HashSizeByte]byte) bool {

	if i == 0 {
		return false
	}

	calcRoot := iLeaf
	for _, h := range iproof {
		calcRoot = crypto.Digest([]byte{utils.NodePrefix}, h[:], calcRoot[:])
	}

	return root == calcRoot
}

// VerifyConsistency checks that the binary log of width j rooted at
// jRoot is an append-only extension of the one of width i rooted at
// iRoot.
func VerifyConsistency(cproof [][crypto.HashSizeByte]byte, i, j uint64,
	iRoot, jRoot [crypto.HashSizeByte]byte) bool {

	if i > j || i == 0 || (i < j && len(cproof) == 0) {
		return false
	}
	if i == j && len(cproof) == 0 {
		return iRoot == jRoot
	}

	fn := i - 1
	sn := j - 1
	for fn%2 == 1 {
		fn >>= 1
		sn >>= 1
	}

	ciRoot, cjRoot := cproof[0], cproof[0]

	for _, h := range cproof[1:] {
		if fn%2 == 1 || fn == sn {
			ciRoot = crypto.Digest([]byte{utils.NodePrefix}, h[:], ciRoot[:])
			cjRoot = crypto.Digest([]byte{utils.NodePrefix}, h[:], cjRoot[:])
			for fn%2 == 0 && fn != 0 {
				fn >>= 1
				sn >>= 1
			}
		} else {
			cjRoot = crypto.Digest([]byte{utils.NodePrefix}, cjRoot[:], h[:])
		}
		fn >>= 1
		sn >>= 1
	}

	return iRoot == ciRoot && jRoot == cjRoot && sn == 0
}

// VerifyLinearProof checks the Alh preimage chain from sourceAlh at
// sourceTxID to targetAlh at targetTxID.
func VerifyLinearProof(proof *LinearProof, sourceTxID, targetTxID uint64,
	sourceAlh, targetAlh [crypto.HashSizeByte]byte) bool {

	if proof == nil || proof.SourceTxID != sourceTxID || proof.TargetTxID != targetTxID {
		return false
	}
	if proof.SourceTxID == 0 || proof.SourceTxID > proof.TargetTxID ||
		len(proof.Terms) == 0 || sourceAlh != proof.Terms[0] {
		return false
	}
	if uint64(len(proof.Terms)) != targetTxID-sourceTxID+1 {
		return false
	}

	calcAlh := proof.Terms[0]
	for k := 1; k < len(proof.Terms); k++ {
		calcAlh = crypto.Digest(
			utils.UInt64ToBytes(proof.SourceTxID+uint64(k)),
			calcAlh[:],
			proof.Terms[k][:],
		)
	}

	return targetAlh == calcAlh
}

// VerifyDualProof is the central check binding the client's trusted
// state (source) to a newer transaction (target). On success the caller
// may adopt (targetTxID, targetAlh) as its new state.
func VerifyDualProof(proof *DualProof, sourceTxID, targetTxID uint64,
	sourceAlh, targetAlh [crypto.HashSizeByte]byte) bool {

	if proof == nil || proof.SourceTxHeader == nil || proof.TargetTxHeader == nil ||
		proof.SourceTxHeader.ID != sourceTxID || proof.TargetTxHeader.ID != targetTxID {
		return false
	}

	if proof.SourceTxHeader.ID == 0 || proof.SourceTxHeader.ID > proof.TargetTxHeader.ID {
		return false
	}

	if sourceAlh != proof.SourceTxHeader.Alh() {
		return false
	}
	if targetAlh != proof.TargetTxHeader.Alh() {
		return false
	}

	if sourceTxID < proof.TargetTxHeader.BlTxID {
		if !VerifyInclusionAt(
			proof.InclusionProof,
			sourceTxID,
			proof.TargetTxHeader.BlTxID,
			leafFor(sourceAlh),
			proof.TargetTxHeader.BlRoot,
		) {
			return false
		}
	}

	if proof.SourceTxHeader.BlTxID > 0 {
		if !VerifyConsistency(
			proof.ConsistencyProof,
			proof.SourceTxHeader.BlTxID,
			proof.TargetTxHeader.BlTxID,
			proof.SourceTxHeader.BlRoot,
			proof.TargetTxHeader.BlRoot,
		) {
			return false
		}
	}

	if proof.TargetTxHeader.BlTxID > 0 {
		if !VerifyLastInclusion(
			proof.LastInclusionProof,
			proof.TargetTxHeader.BlTxID,
			leafFor(proof.TargetBlTxAlh),
			proof.TargetTxHeader.BlRoot,
		) {
			return false
		}
	}

	if sourceTxID < proof.TargetTxHeader.BlTxID {
		return VerifyLinearProof(
			proof.LinearProof,
			proof.TargetTxHeader.BlTxID, targetTxID,
			proof.TargetBlTxAlh, targetAlh,
		)
	}

	return VerifyLinearProof(
		proof.LinearProof,
		sourceTxID, targetTxID,
		sourceAlh, targetAlh,
	)
}
