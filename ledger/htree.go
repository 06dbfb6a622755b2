package ledger

import (
	"errors"

	"github.com/elslush/immudb4go/crypto"
	"github.com/elslush/immudb4go/utils"
)

var ErrIllegalArguments = errors.New("[ledger] Illegal arguments")
var ErrMaxWidthExceeded = errors.New("[ledger] Max width exceeded")

// HTree is the per-transaction Merkle tree over entry digests.
// Leaves are sha256(LeafPrefix || digest), inner nodes
// sha256(NodePrefix || left || right). A node without a sibling is
// promoted to the next level unchanged.
type HTree struct {
	levels   [][][crypto.HashSizeByte]byte
	maxWidth int
	width    int
	root     [crypto.HashSizeByte]byte
}

func NewHTree(maxWidth int) (*HTree, error) {
	if maxWidth < 1 {
		return nil, ErrIllegalArguments
	}

	depth := 1
	for w := maxWidth; w > 1; w = (w + 1) / 2 {
		depth++
	}

	levels := make([][][crypto.HashSizeByte]byte, depth)
	w := maxWidth
	for l := range levels {
		levels[l] = make([][crypto.HashSizeByte]byte, w)
		w = (w + 1) / 2
	}

	return &HTree{
		levels:   levels,
		maxWidth: maxWidth,
	}, nil
}

// BuildWith fills the tree from the given entry digests.
func (t *HTree) BuildWith(digests [][crypto.HashSizeByte]byte) error {
	if len(digests) == 0 {
		return ErrIllegalArguments
	}
	if len(digests) > t.maxWidth {
		return ErrMaxWidthExceeded
	}

	for i, d := range digests {
		t.levels[0][i] = crypto.Digest([]byte{utils.LeafPrefix}, d[:])
	}

	l := 0
	w := len(digests)

	for w > 1 {
		wn := 0

		for i := 0; i+1 < w; i += 2 {
			t.levels[l+1][wn] = crypto.Digest(
				[]byte{utils.NodePrefix},
				t.levels[l][i][:],
				t.levels[l][i+1][:],
			)
			wn++
		}

		if w%2 == 1 {
			t.levels[l+1][wn] = t.levels[l][w-1]
			wn++
		}

		l++
		w = wn
	}

	t.width = len(digests)
	t.root = t.levels[l][0]
	return nil
}

// Root returns the root of the last built tree.
func (t *HTree) Root() [crypto.HashSizeByte]byte {
	return t.root
}

// InclusionProof produces the proof for leaf i against the last built
// tree. Promoted nodes contribute no term; the verifier's index walk
// accounts for the skipped levels.
func (t *HTree) InclusionProof(i int) (*InclusionProof, error) {
	if i < 0 || i >= t.width {
		return nil, ErrIllegalArguments
	}

	terms := make([][crypto.HashSizeByte]byte, 0, len(t.levels))
	m := i
	w := t.width

	for l := 0; w > 1; l++ {
		switch {
		case m%2 == 1:
			terms = append(terms, t.levels[l][m-1])
		case m+1 < w:
			terms = append(terms, t.levels[l][m+1])
		}
		m >>= 1
		w = (w + 1) / 2
	}

	return &InclusionProof{
		Leaf:  i,
		Width: t.width,
		Terms: terms,
	}, nil
}
