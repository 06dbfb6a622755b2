package client

import (
	"context"

	"github.com/elslush/immudb4go/crypto"
	"github.com/elslush/immudb4go/ledger"
	"github.com/elslush/immudb4go/schema"
	"github.com/elslush/immudb4go/session"
	"github.com/elslush/immudb4go/state"
)

// VerifiedSet writes a key-value pair and only returns once the
// server-supplied proofs show the committing transaction both contains
// the pair and extends the locally pinned state. The state advances
// atomically on success.
func (c *ImmuClient) VerifiedSet(ctx context.Context, key, value []byte) (*schema.TxHeader, error) {
	return c.VerifiedSetAll(ctx, &schema.SetRequest{
		KVs: []*schema.KeyValue{{Key: key, Value: value}},
	})
}

// VerifiedSetAll writes several pairs in one transaction and verifies
// the inclusion of every single one before advancing the state.
func (c *ImmuClient) VerifiedSetAll(ctx context.Context, req *schema.SetRequest) (*schema.TxHeader, error) {
	sctx, svc, err := c.sessionContext(ctx)
	if err != nil {
		return nil, err
	}
	sess := c.Session()

	st, err := c.CurrentState(ctx)
	if err != nil {
		return nil, err
	}

	vtx, err := svc.VerifiableSet(sctx, &schema.VerifiableSetRequest{
		SetRequest:   req,
		ProveSinceTx: st.TxID,
	})
	if err != nil {
		return nil, mapServerError(err)
	}

	specs := make([]*ledger.EntrySpec, len(req.KVs))
	for i, kv := range req.KVs {
		specs[i] = ledger.EncodeEntrySpec(kv.Key, ledger.KVMetadataFromSchema(kv.Metadata), kv.Value)
	}
	return c.verifyWriteTx(sess, st, vtx, specs)
}

// VerifiedSetReference writes a reference and verifies it like
// VerifiedSet does a plain pair.
func (c *ImmuClient) VerifiedSetReference(ctx context.Context, key, referencedKey []byte) (*schema.TxHeader, error) {
	return c.VerifiedSetReferenceAt(ctx, key, referencedKey, 0)
}

// VerifiedSetReferenceAt binds the reference at atTx (zero leaves it
// unbound) and verifies the committing transaction.
func (c *ImmuClient) VerifiedSetReferenceAt(ctx context.Context, key, referencedKey []byte, atTx uint64) (*schema.TxHeader, error) {
	sctx, svc, err := c.sessionContext(ctx)
	if err != nil {
		return nil, err
	}
	sess := c.Session()

	st, err := c.CurrentState(ctx)
	if err != nil {
		return nil, err
	}

	vtx, err := svc.VerifiableSetReference(sctx, &schema.VerifiableReferenceRequest{
		ReferenceRequest: &schema.ReferenceRequest{
			Key:           key,
			ReferencedKey: referencedKey,
			AtTx:          atTx,
			BoundRef:      atTx > 0,
		},
		ProveSinceTx: st.TxID,
	})
	if err != nil {
		return nil, mapServerError(err)
	}

	spec := ledger.EncodeReference(key, nil, referencedKey, atTx)
	return c.verifyWriteTx(sess, st, vtx, []*ledger.EntrySpec{spec})
}

// VerifiedZAdd adds a scored member to a sorted set with full
// verification of the committing transaction.
func (c *ImmuClient) VerifiedZAdd(ctx context.Context, set []byte, score float64, key []byte) (*schema.TxHeader, error) {
	return c.VerifiedZAddAt(ctx, set, score, key, 0)
}

// VerifiedZAddAt binds the sorted-set entry at atTx and verifies the
// committing transaction.
func (c *ImmuClient) VerifiedZAddAt(ctx context.Context, set []byte, score float64, key []byte, atTx uint64) (*schema.TxHeader, error) {
	sctx, svc, err := c.sessionContext(ctx)
	if err != nil {
		return nil, err
	}
	sess := c.Session()

	st, err := c.CurrentState(ctx)
	if err != nil {
		return nil, err
	}

	vtx, err := svc.VerifiableZAdd(sctx, &schema.VerifiableZAddRequest{
		ZAddRequest: &schema.ZAddRequest{
			Set:      set,
			Score:    score,
			Key:      key,
			AtTx:     atTx,
			BoundRef: atTx > 0,
		},
		ProveSinceTx: st.TxID,
	})
	if err != nil {
		return nil, mapServerError(err)
	}

	spec := ledger.EncodeZAdd(set, key, score, atTx)
	return c.verifyWriteTx(sess, st, vtx, []*ledger.EntrySpec{spec})
}

// verifyWriteTx runs the write-side verification: entry count, one
// inclusion proof per written spec against the rebuilt hash tree, the
// dual proof from the prior state, and the state signature. Only then
// is the new state published.
func (c *ImmuClient) verifyWriteTx(sess *session.Session, st *state.ImmuState,
	vtx *schema.VerifiableTx, specs []*ledger.EntrySpec) (*schema.TxHeader, error) {

	tx, dualProof, err := verifiableTxFromSchema(vtx)
	if err != nil {
		return nil, err
	}
	if tx.Header.NEntries != len(specs) {
		return nil, ErrCorruptedData
	}

	entrySpecDigest, err := ledger.EntrySpecDigestFor(tx.Header.Version)
	if err != nil {
		return nil, ErrCorruptedData
	}

	for _, spec := range specs {
		proof, err := tx.Proof(spec.Key)
		if err != nil {
			return nil, ErrVerification
		}
		digest, err := entrySpecDigest(spec)
		if err != nil {
			return nil, ErrCorruptedData
		}
		if !ledger.VerifyInclusion(proof, digest, tx.Header.Eh) {
			return nil, ErrVerification
		}
	}

	targetID := tx.Header.ID
	targetAlh := tx.Header.Alh()

	if st.TxID > 0 {
		if !ledger.VerifyDualProof(dualProof, st.TxID, targetID, st.Hash(), targetAlh) {
			return nil, ErrVerification
		}
	}

	newState := state.NewImmuState(c.Database(), targetID, targetAlh, signatureOf(vtx))
	if err := newState.CheckSignature(c.opts.ServerSigningKey); err != nil {
		return nil, ErrVerification
	}
	if err := c.updateState(sess, newState); err != nil {
		return nil, err
	}

	return vtx.Tx.Header, nil
}

// VerifiedGet reads a key and proves both that the entry is contained
// in its transaction and that this transaction belongs to the same
// history as the pinned state.
func (c *ImmuClient) VerifiedGet(ctx context.Context, key []byte, opts ...GetOption) (*schema.Entry, error) {
	sctx, svc, err := c.sessionContext(ctx)
	if err != nil {
		return nil, err
	}
	sess := c.Session()

	st, err := c.CurrentState(ctx)
	if err != nil {
		return nil, err
	}

	req := &schema.KeyRequest{Key: key}
	for _, opt := range opts {
		opt(req)
	}

	ventry, err := svc.VerifiableGet(sctx, &schema.VerifiableGetRequest{
		KeyRequest:   req,
		ProveSinceTx: st.TxID,
	})
	if err != nil {
		return nil, mapServerError(err)
	}
	if ventry == nil || ventry.Entry == nil || ventry.VerifiableTx == nil ||
		ventry.VerifiableTx.Tx == nil || ventry.VerifiableTx.Tx.Header == nil {
		return nil, ErrCorruptedData
	}

	dualProof, err := ledger.DualProofFromSchema(ventry.VerifiableTx.DualProof)
	if err != nil {
		return nil, ErrCorruptedData
	}
	inclusionProof := ledger.InclusionProofFromSchema(ventry.InclusionProof)

	entry := ventry.Entry
	spec := ledger.EntrySpecFromSchema(entry)
	vTx := entry.Tx
	if entry.ReferencedBy != nil {
		vTx = entry.ReferencedBy.Tx
	}

	var eh [crypto.HashSizeByte]byte
	var sourceID, targetID uint64
	var sourceAlh, targetAlh [crypto.HashSizeByte]byte

	if st.TxID <= vTx {
		eh = dualProof.TargetTxHeader.Eh
		sourceID = st.TxID
		sourceAlh = st.Hash()
		targetID = vTx
		targetAlh = dualProof.TargetTxHeader.Alh()
	} else {
		eh = dualProof.SourceTxHeader.Eh
		sourceID = vTx
		sourceAlh = dualProof.SourceTxHeader.Alh()
		targetID = st.TxID
		targetAlh = st.Hash()
	}

	entrySpecDigest, err := ledger.EntrySpecDigestFor(int(ventry.VerifiableTx.Tx.Header.Version))
	if err != nil {
		return nil, ErrCorruptedData
	}
	digest, err := entrySpecDigest(spec)
	if err != nil {
		return nil, ErrCorruptedData
	}

	if !ledger.VerifyInclusion(inclusionProof, digest, eh) {
		return nil, ErrVerification
	}

	if st.TxID > 0 {
		if !ledger.VerifyDualProof(dualProof, sourceID, targetID, sourceAlh, targetAlh) {
			return nil, ErrVerification
		}
	}

	newState := state.NewImmuState(c.Database(), targetID, targetAlh, signatureOf(ventry.VerifiableTx))
	if err := newState.CheckSignature(c.opts.ServerSigningKey); err != nil {
		return nil, ErrVerification
	}
	if err := c.updateState(sess, newState); err != nil {
		return nil, err
	}

	return entry, nil
}

// VerifiedGetAt is VerifiedGet pinned at a transaction.
func (c *ImmuClient) VerifiedGetAt(ctx context.Context, key []byte, atTx uint64) (*schema.Entry, error) {
	return c.VerifiedGet(ctx, key, AtTx(atTx))
}

// VerifiedGetSince is VerifiedGet waiting for an indexing horizon.
func (c *ImmuClient) VerifiedGetSince(ctx context.Context, key []byte, sinceTx uint64) (*schema.Entry, error) {
	return c.VerifiedGet(ctx, key, SinceTx(sinceTx))
}

// VerifiedTxByID fetches a transaction and proves it belongs to the
// same history as the pinned state before returning it.
func (c *ImmuClient) VerifiedTxByID(ctx context.Context, tx uint64) (*schema.Tx, error) {
	sctx, svc, err := c.sessionContext(ctx)
	if err != nil {
		return nil, err
	}
	sess := c.Session()

	st, err := c.CurrentState(ctx)
	if err != nil {
		return nil, err
	}

	vtx, err := svc.VerifiableTxById(sctx, &schema.VerifiableTxRequest{
		Tx:           tx,
		ProveSinceTx: st.TxID,
	})
	if err != nil {
		return nil, mapServerError(err)
	}
	if vtx == nil || vtx.Tx == nil || vtx.Tx.Header == nil {
		return nil, ErrCorruptedData
	}

	dualProof, err := ledger.DualProofFromSchema(vtx.DualProof)
	if err != nil {
		return nil, ErrCorruptedData
	}

	var sourceID, targetID uint64
	var sourceAlh, targetAlh [crypto.HashSizeByte]byte

	if st.TxID <= tx {
		sourceID = st.TxID
		sourceAlh = st.Hash()
		targetID = tx
		targetAlh = dualProof.TargetTxHeader.Alh()
	} else {
		sourceID = tx
		sourceAlh = dualProof.SourceTxHeader.Alh()
		targetID = st.TxID
		targetAlh = st.Hash()
	}

	if st.TxID > 0 {
		if !ledger.VerifyDualProof(dualProof, sourceID, targetID, sourceAlh, targetAlh) {
			return nil, ErrVerification
		}
	}

	newState := state.NewImmuState(c.Database(), targetID, targetAlh, signatureOf(vtx))
	if err := newState.CheckSignature(c.opts.ServerSigningKey); err != nil {
		return nil, ErrVerification
	}
	if err := c.updateState(sess, newState); err != nil {
		return nil, err
	}

	return vtx.Tx, nil
}

// Database returns the database the session currently targets.
func (c *ImmuClient) Database() string {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.database
}

func signatureOf(vtx *schema.VerifiableTx) []byte {
	if vtx.Signature == nil {
		return nil
	}
	return vtx.Signature.Signature
}
