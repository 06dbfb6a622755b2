package client

import (
	"context"
	"sync"
	"time"

	"github.com/elslush/immudb4go/crypto"
	"github.com/elslush/immudb4go/ledger"
	"github.com/elslush/immudb4go/pool"
	"github.com/elslush/immudb4go/schema"
)

// fakeServer is an in-process ImmuService maintaining a real linear
// transaction log, so every proof it hands out is genuine and the
// client's verification code runs unmodified.
type fakeServer struct {
	schema.ImmuService

	uuid string

	mu      sync.Mutex
	headers []*ledger.TxHeader
	alhs    [][crypto.HashSizeByte]byte
	txs     []*ledger.Tx
	kv      map[string]*storedKV

	keepAlives   int
	sessionsOpen int
}

type storedKV struct {
	value []byte
	tx    uint64
}

func newFakeServer(uuid string) *fakeServer {
	return &fakeServer{
		uuid: uuid,
		kv:   make(map[string]*storedKV),
	}
}

func (f *fakeServer) commit(specs []*ledger.EntrySpec) *ledger.Tx {
	entries := make([]*ledger.TxEntry, len(specs))
	for i, spec := range specs {
		entries[i] = ledger.NewTxEntry(
			spec.Key, spec.Metadata, len(spec.Value), crypto.Digest(spec.Value))
	}

	var prevAlh [crypto.HashSizeByte]byte
	if n := len(f.alhs); n > 0 {
		prevAlh = f.alhs[n-1]
	}

	header := &ledger.TxHeader{
		Version:  ledger.TxHeaderVersion1,
		ID:       uint64(len(f.headers) + 1),
		PrevAlh:  prevAlh,
		Ts:       time.Now().UnixMicro(),
		NEntries: len(entries),
	}

	tx := ledger.NewTxWithEntries(header, entries)
	if err := tx.BuildHashTree(); err != nil {
		panic(err)
	}

	f.headers = append(f.headers, header)
	f.alhs = append(f.alhs, header.Alh())
	f.txs = append(f.txs, tx)
	return tx
}

func headerToSchema(h *ledger.TxHeader) *schema.TxHeader {
	return &schema.TxHeader{
		Id:       h.ID,
		PrevAlh:  append([]byte{}, h.PrevAlh[:]...),
		Ts:       h.Ts,
		Version:  int32(h.Version),
		Nentries: int32(h.NEntries),
		EH:       append([]byte{}, h.Eh[:]...),
		BlTxId:   h.BlTxID,
		BlRoot:   append([]byte{}, h.BlRoot[:]...),
	}
}

func txToSchema(tx *ledger.Tx) *schema.Tx {
	entries := make([]*schema.TxEntry, len(tx.Entries))
	for i, e := range tx.Entries {
		entries[i] = &schema.TxEntry{
			Key:    append([]byte{}, e.Key()...),
			HValue: append([]byte{}, e.HVal[:]...),
			VLen:   int32(e.VLen),
		}
	}
	return &schema.Tx{Header: headerToSchema(tx.Header), Entries: entries}
}

// dualProof links source and target through the linear log.
func (f *fakeServer) dualProof(source, target uint64) *schema.DualProof {
	if source == 0 || source > target {
		source = target
	}

	terms := [][]byte{append([]byte{}, f.alhs[source-1][:]...)}
	for id := source + 1; id <= target; id++ {
		inner := f.headers[id-1].InnerHash()
		terms = append(terms, append([]byte{}, inner[:]...))
	}

	return &schema.DualProof{
		SourceTxHeader: headerToSchema(f.headers[source-1]),
		TargetTxHeader: headerToSchema(f.headers[target-1]),
		LinearProof: &schema.LinearProof{
			SourceTxId: source,
			TargetTxId: target,
			Terms:      terms,
		},
	}
}

func (f *fakeServer) OpenSession(ctx context.Context, req *schema.OpenSessionRequest) (*schema.OpenSessionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessionsOpen++
	return &schema.OpenSessionResponse{SessionID: "sess-1", ServerUUID: f.uuid}, nil
}

func (f *fakeServer) CloseSession(ctx context.Context, req *schema.Empty) (*schema.Empty, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessionsOpen--
	return &schema.Empty{}, nil
}

func (f *fakeServer) KeepAlive(ctx context.Context, req *schema.Empty) (*schema.Empty, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keepAlives++
	return &schema.Empty{}, nil
}

func (f *fakeServer) CurrentState(ctx context.Context, req *schema.Empty) (*schema.ImmutableState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	st := &schema.ImmutableState{Db: "defaultdb"}
	if n := len(f.headers); n > 0 {
		st.TxId = uint64(n)
		st.TxHash = append([]byte{}, f.alhs[n-1][:]...)
	}
	return st, nil
}

func (f *fakeServer) Set(ctx context.Context, req *schema.SetRequest) (*schema.TxHeader, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	specs := make([]*ledger.EntrySpec, len(req.KVs))
	for i, kvp := range req.KVs {
		specs[i] = ledger.EncodeEntrySpec(kvp.Key, ledger.KVMetadataFromSchema(kvp.Metadata), kvp.Value)
	}
	tx := f.commit(specs)
	for _, kvp := range req.KVs {
		f.kv[string(kvp.Key)] = &storedKV{value: kvp.Value, tx: tx.Header.ID}
	}
	return headerToSchema(tx.Header), nil
}

func (f *fakeServer) Get(ctx context.Context, req *schema.KeyRequest) (*schema.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.kv[string(req.Key)]
	if !ok {
		return nil, errKeyNotFoundRPC
	}
	return &schema.Entry{Tx: stored.tx, Key: req.Key, Value: stored.value}, nil
}

func (f *fakeServer) VerifiableSet(ctx context.Context, req *schema.VerifiableSetRequest) (*schema.VerifiableTx, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	specs := make([]*ledger.EntrySpec, len(req.SetRequest.KVs))
	for i, kvp := range req.SetRequest.KVs {
		specs[i] = ledger.EncodeEntrySpec(kvp.Key, ledger.KVMetadataFromSchema(kvp.Metadata), kvp.Value)
	}
	tx := f.commit(specs)
	for _, kvp := range req.SetRequest.KVs {
		f.kv[string(kvp.Key)] = &storedKV{value: kvp.Value, tx: tx.Header.ID}
	}

	return &schema.VerifiableTx{
		Tx:        txToSchema(tx),
		DualProof: f.dualProof(req.ProveSinceTx, tx.Header.ID),
	}, nil
}

func (f *fakeServer) VerifiableGet(ctx context.Context, req *schema.VerifiableGetRequest) (*schema.VerifiableEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.kv[string(req.KeyRequest.Key)]
	if !ok {
		return nil, errKeyNotFoundRPC
	}

	vTx := stored.tx
	tx := f.txs[vTx-1]

	spec := ledger.EncodeEntrySpec(req.KeyRequest.Key, nil, stored.value)
	proof, err := tx.Proof(spec.Key)
	if err != nil {
		return nil, err
	}
	terms := make([][]byte, len(proof.Terms))
	for i, t := range proof.Terms {
		terms[i] = append([]byte{}, t[:]...)
	}

	source, target := req.ProveSinceTx, vTx
	if source > target {
		source, target = target, source
	}

	return &schema.VerifiableEntry{
		Entry: &schema.Entry{Tx: vTx, Key: req.KeyRequest.Key, Value: stored.value},
		VerifiableTx: &schema.VerifiableTx{
			Tx:        txToSchema(tx),
			DualProof: f.dualProof(source, target),
		},
		InclusionProof: &schema.InclusionProof{
			Leaf:  int32(proof.Leaf),
			Width: int32(proof.Width),
			Terms: terms,
		},
	}, nil
}

func (f *fakeServer) VerifiableTxById(ctx context.Context, req *schema.VerifiableTxRequest) (*schema.VerifiableTx, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if req.Tx == 0 || req.Tx > uint64(len(f.txs)) {
		return nil, errTxNotFoundRPC
	}

	source, target := req.ProveSinceTx, req.Tx
	if source > target {
		source, target = target, source
	}

	return &schema.VerifiableTx{
		Tx:        txToSchema(f.txs[req.Tx-1]),
		DualProof: f.dualProof(source, target),
	}, nil
}

func (f *fakeServer) Health(ctx context.Context, req *schema.Empty) (*schema.HealthResponse, error) {
	return &schema.HealthResponse{Status: true, Version: "fake"}, nil
}

func (f *fakeServer) keepAliveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.keepAlives
}

// rpcError mimics the text of the server's gRPC failures.
type rpcError string

func (e rpcError) Error() string { return string(e) }

const (
	errKeyNotFoundRPC = rpcError("rpc error: code = Unknown desc = key not found")
	errTxNotFoundRPC  = rpcError("rpc error: code = Unknown desc = tx not found")
)

// testClient builds a client wired to the fake server with an isolated
// pool and state directory.
func testClient(f schema.ImmuService, stateDir string, mutate func(*Options)) *ImmuClient {
	opts := DefaultOptions().
		SetStateDir(stateDir).
		SetPool(pool.New(pool.Options{
			Dial: func(address string) (pool.Connection, error) {
				return &stubConn{target: address}, nil
			},
			IdleCheckInterval: time.Hour,
		})).
		SetServiceFactory(func(conn pool.Connection) schema.ImmuService {
			return f
		})
	if mutate != nil {
		mutate(opts)
	}
	return NewImmuClient(opts)
}

type stubConn struct{ target string }

func (c *stubConn) Target() string { return c.target }
func (c *stubConn) Close() error   { return nil }
