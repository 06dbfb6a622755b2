package client

import (
	"context"

	"github.com/elslush/immudb4go/ledger"
	"github.com/elslush/immudb4go/schema"
)

// GetOption refines a read: pin a transaction, wait for an indexing
// horizon, or address a specific revision.
type GetOption func(req *schema.KeyRequest)

// AtTx pins the read to the entry committed by the given transaction.
func AtTx(tx uint64) GetOption {
	return func(req *schema.KeyRequest) {
		req.AtTx = tx
	}
}

// SinceTx blocks the read until the index covers the given transaction.
func SinceTx(tx uint64) GetOption {
	return func(req *schema.KeyRequest) {
		req.SinceTx = tx
	}
}

// AtRevision addresses the n-th revision of the key; negative values
// count back from the current one.
func AtRevision(rev int64) GetOption {
	return func(req *schema.KeyRequest) {
		req.AtRevision = rev
	}
}

// NoWait lets the read return without waiting for indexing.
func NoWait() GetOption {
	return func(req *schema.KeyRequest) {
		req.NoWait = true
	}
}

// Get retrieves the current entry for key.
func (c *ImmuClient) Get(ctx context.Context, key []byte, opts ...GetOption) (*schema.Entry, error) {
	sctx, svc, err := c.sessionContext(ctx)
	if err != nil {
		return nil, err
	}
	req := &schema.KeyRequest{Key: key}
	for _, opt := range opts {
		opt(req)
	}
	entry, err := svc.Get(sctx, req)
	return entry, mapServerError(err)
}

// GetAll retrieves the current entries of all given keys in one call.
func (c *ImmuClient) GetAll(ctx context.Context, keys [][]byte) (*schema.Entries, error) {
	sctx, svc, err := c.sessionContext(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := svc.GetAll(sctx, &schema.KeyListRequest{Keys: keys})
	return entries, mapServerError(err)
}

// Set writes one key-value pair and returns the committing header.
func (c *ImmuClient) Set(ctx context.Context, key, value []byte) (*schema.TxHeader, error) {
	return c.SetAll(ctx, &schema.SetRequest{
		KVs: []*schema.KeyValue{{Key: key, Value: value}},
	})
}

// SetAll writes several pairs atomically in a single transaction.
func (c *ImmuClient) SetAll(ctx context.Context, req *schema.SetRequest) (*schema.TxHeader, error) {
	sctx, svc, err := c.sessionContext(ctx)
	if err != nil {
		return nil, err
	}
	hdr, err := svc.Set(sctx, req)
	return hdr, mapServerError(err)
}

// ExpirableSet writes a pair that expires at the given unix time.
func (c *ImmuClient) ExpirableSet(ctx context.Context, key, value []byte, expiresAt int64) (*schema.TxHeader, error) {
	return c.SetAll(ctx, &schema.SetRequest{
		KVs: []*schema.KeyValue{{
			Key:   key,
			Value: value,
			Metadata: &schema.KVMetadata{
				Expiration: &schema.Expiration{ExpiresAt: expiresAt},
			},
		}},
	})
}

// Delete marks the given keys as deleted.
func (c *ImmuClient) Delete(ctx context.Context, keys ...[]byte) (*schema.TxHeader, error) {
	sctx, svc, err := c.sessionContext(ctx)
	if err != nil {
		return nil, err
	}
	hdr, err := svc.Delete(sctx, &schema.DeleteKeysRequest{Keys: keys})
	return hdr, mapServerError(err)
}

// SetReference makes key resolve to referencedKey.
func (c *ImmuClient) SetReference(ctx context.Context, key, referencedKey []byte) (*schema.TxHeader, error) {
	return c.SetReferenceAt(ctx, key, referencedKey, 0)
}

// SetReferenceAt binds the reference to the entry committed at atTx.
func (c *ImmuClient) SetReferenceAt(ctx context.Context, key, referencedKey []byte, atTx uint64) (*schema.TxHeader, error) {
	sctx, svc, err := c.sessionContext(ctx)
	if err != nil {
		return nil, err
	}
	hdr, err := svc.SetReference(sctx, &schema.ReferenceRequest{
		Key:           key,
		ReferencedKey: referencedKey,
		AtTx:          atTx,
		BoundRef:      atTx > 0,
	})
	return hdr, mapServerError(err)
}

// Scan iterates entries by key range or prefix.
func (c *ImmuClient) Scan(ctx context.Context, req *schema.ScanRequest) (*schema.Entries, error) {
	sctx, svc, err := c.sessionContext(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := svc.Scan(sctx, req)
	return entries, mapServerError(err)
}

// History lists the revisions of a key.
func (c *ImmuClient) History(ctx context.Context, req *schema.HistoryRequest) (*schema.Entries, error) {
	sctx, svc, err := c.sessionContext(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := svc.History(sctx, req)
	return entries, mapServerError(err)
}

// ZAdd adds key to the sorted set with the given score.
func (c *ImmuClient) ZAdd(ctx context.Context, set []byte, score float64, key []byte) (*schema.TxHeader, error) {
	return c.ZAddAt(ctx, set, score, key, 0)
}

// ZAddAt binds the sorted-set entry to the key's state at atTx.
func (c *ImmuClient) ZAddAt(ctx context.Context, set []byte, score float64, key []byte, atTx uint64) (*schema.TxHeader, error) {
	sctx, svc, err := c.sessionContext(ctx)
	if err != nil {
		return nil, err
	}
	hdr, err := svc.ZAdd(sctx, &schema.ZAddRequest{
		Set:      set,
		Score:    score,
		Key:      key,
		AtTx:     atTx,
		BoundRef: atTx > 0,
	})
	return hdr, mapServerError(err)
}

// ZScan iterates a sorted set in score order.
func (c *ImmuClient) ZScan(ctx context.Context, req *schema.ZScanRequest) (*schema.ZEntries, error) {
	sctx, svc, err := c.sessionContext(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := svc.ZScan(sctx, req)
	return entries, mapServerError(err)
}

// TxByID fetches a transaction by id.
func (c *ImmuClient) TxByID(ctx context.Context, tx uint64) (*schema.Tx, error) {
	sctx, svc, err := c.sessionContext(ctx)
	if err != nil {
		return nil, err
	}
	stx, err := svc.TxById(sctx, &schema.TxRequest{Tx: tx})
	return stx, mapServerError(err)
}

// TxScan iterates transactions starting from an id.
func (c *ImmuClient) TxScan(ctx context.Context, req *schema.TxScanRequest) (*schema.TxList, error) {
	sctx, svc, err := c.sessionContext(ctx)
	if err != nil {
		return nil, err
	}
	txs, err := svc.TxScan(sctx, req)
	return txs, mapServerError(err)
}

// FlushIndex flushes the current database index to disk.
func (c *ImmuClient) FlushIndex(ctx context.Context, cleanupPercentage float32, synced bool) (*schema.FlushIndexResponse, error) {
	sctx, svc, err := c.sessionContext(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := svc.FlushIndex(sctx, &schema.FlushIndexRequest{
		CleanupPercentage: cleanupPercentage,
		Synced:            synced,
	})
	return resp, mapServerError(err)
}

// CompactIndex triggers a full index compaction.
func (c *ImmuClient) CompactIndex(ctx context.Context) error {
	sctx, svc, err := c.sessionContext(ctx)
	if err != nil {
		return err
	}
	_, err = svc.CompactIndex(sctx, &schema.Empty{})
	return mapServerError(err)
}

// CreateDatabase creates a database, tolerating pre-existing ones when
// ifNotExists is set.
func (c *ImmuClient) CreateDatabase(ctx context.Context, name string, ifNotExists bool) (*schema.CreateDatabaseResponse, error) {
	sctx, svc, err := c.sessionContext(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := svc.CreateDatabaseV2(sctx, &schema.CreateDatabaseRequest{
		Name:        name,
		IfNotExists: ifNotExists,
	})
	return resp, mapServerError(err)
}

// UseDatabase re-targets the session and invalidates the in-memory
// state pinned for the previous database.
func (c *ImmuClient) UseDatabase(ctx context.Context, name string) (*schema.UseDatabaseReply, error) {
	sctx, svc, err := c.sessionContext(ctx)
	if err != nil {
		return nil, err
	}
	reply, err := svc.UseDatabase(sctx, &schema.Database{DatabaseName: name})
	if err != nil {
		return nil, mapServerError(err)
	}

	c.stateMu.Lock()
	c.database = name
	c.curState = nil
	c.stateMu.Unlock()

	return reply, nil
}

// DatabaseList enumerates the server's databases.
func (c *ImmuClient) DatabaseList(ctx context.Context) (*schema.DatabaseListResponseV2, error) {
	sctx, svc, err := c.sessionContext(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := svc.DatabaseListV2(sctx, &schema.DatabaseListRequestV2{})
	return resp, mapServerError(err)
}

// Health reports the server's health status and version.
func (c *ImmuClient) Health(ctx context.Context) (*schema.HealthResponse, error) {
	sctx, svc, err := c.sessionContext(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := svc.Health(sctx, &schema.Empty{})
	return resp, mapServerError(err)
}

// ListUsers enumerates the users visible to the session.
func (c *ImmuClient) ListUsers(ctx context.Context) (*schema.UserList, error) {
	sctx, svc, err := c.sessionContext(ctx)
	if err != nil {
		return nil, err
	}
	users, err := svc.ListUsers(sctx, &schema.Empty{})
	return users, mapServerError(err)
}

// CreateUser creates a user with the given permission on a database.
func (c *ImmuClient) CreateUser(ctx context.Context, user, password []byte, permission uint32, database string) error {
	sctx, svc, err := c.sessionContext(ctx)
	if err != nil {
		return err
	}
	_, err = svc.CreateUser(sctx, &schema.CreateUserRequest{
		User:       user,
		Password:   password,
		Permission: permission,
		Database:   database,
	})
	return mapServerError(err)
}

// ChangePassword replaces a user's password.
func (c *ImmuClient) ChangePassword(ctx context.Context, user, oldPassword, newPassword []byte) error {
	sctx, svc, err := c.sessionContext(ctx)
	if err != nil {
		return err
	}
	_, err = svc.ChangePassword(sctx, &schema.ChangePasswordRequest{
		User:        user,
		OldPassword: oldPassword,
		NewPassword: newPassword,
	})
	return mapServerError(err)
}

// verifiableTxFromSchema converts and rebuilds a verifiable tx,
// folding conversion failures into corruption errors.
func verifiableTxFromSchema(vtx *schema.VerifiableTx) (*ledger.Tx, *ledger.DualProof, error) {
	if vtx == nil || vtx.Tx == nil {
		return nil, nil, ErrCorruptedData
	}
	tx, err := ledger.TxFromSchema(vtx.Tx)
	if err != nil {
		return nil, nil, ErrCorruptedData
	}
	dualProof, err := ledger.DualProofFromSchema(vtx.DualProof)
	if err != nil {
		return nil, nil, ErrCorruptedData
	}
	return tx, dualProof, nil
}
