// Package client implements the verified immudb client: it opens
// authenticated sessions over pooled gRPC connections, keeps the
// server alive with a heartbeat, and refuses to return any verified
// result whose cryptographic proofs do not extend the locally pinned
// state.
package client

import (
	"bytes"
	"context"
	"sync"

	"github.com/elslush/immudb4go/ledger"
	"github.com/elslush/immudb4go/pool"
	"github.com/elslush/immudb4go/schema"
	"github.com/elslush/immudb4go/session"
	"github.com/elslush/immudb4go/state"
)

// ImmuClient is the client façade. A single instance may be shared by
// many goroutines once the session has been opened.
type ImmuClient struct {
	opts    *Options
	address string

	pool     *pool.RandomAssignPool
	sessions *session.Manager

	// setupMu serializes Open against Close and against itself.
	setupMu sync.Mutex

	connMu sync.Mutex
	conn   pool.Connection
	svc    schema.ImmuService

	sessionMu sync.Mutex
	session   *session.Session

	stateMu    sync.Mutex
	stateStore state.Store
	curState   *state.ImmuState
	database   string

	hb *heartbeat
}

// NewImmuClient builds a client from the given options. Nothing is
// dialed until Open.
func NewImmuClient(opts *Options) *ImmuClient {
	if opts == nil {
		opts = DefaultOptions()
	}
	address := opts.Address()

	p := opts.Pool
	if p == nil {
		p = pool.Default()
	}

	store := opts.StateStore
	if store == nil {
		store = state.NewFileStore(opts.StateDir, address)
	}

	return &ImmuClient{
		opts:       opts,
		address:    address,
		pool:       p,
		sessions:   session.NewManager(),
		stateStore: store,
		database:   opts.Database,
	}
}

// Session returns the active session, if any.
func (c *ImmuClient) Session() *session.Session {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()
	return c.session
}

func (c *ImmuClient) setSession(sess *session.Session) {
	c.sessionMu.Lock()
	c.session = sess
	c.sessionMu.Unlock()
}

// service returns the RPC surface bound to the current connection.
func (c *ImmuClient) service() schema.ImmuService {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	return c.svc
}

// sessionContext derives the per-RPC context carrying the session
// metadata, or fails when no session is open.
func (c *ImmuClient) sessionContext(ctx context.Context) (context.Context, schema.ImmuService, error) {
	sess := c.Session()
	svc := c.service()
	if sess == nil || svc == nil {
		return nil, nil, ErrNotConnected
	}
	return sess.NewContext(ctx), svc, nil
}

// Open acquires a connection, opens a session for the configured
// database, checks the deployment identity and the stored state
// against the server, and starts the heartbeat. Opening on a client
// with a live session is an error.
func (c *ImmuClient) Open(ctx context.Context, username, password, database string) error {
	c.setupMu.Lock()
	defer c.setupMu.Unlock()

	if c.Session() != nil {
		return ErrSessionAlreadyOpen
	}
	if database == "" {
		database = c.opts.Database
	}

	conn, err := c.pool.Acquire(c.address)
	if err != nil {
		return err
	}
	svc := c.opts.ServiceFactory(conn)
	if svc == nil {
		c.pool.Release(conn)
		return ErrInvalidOperation
	}

	sess, err := c.sessions.OpenSession(ctx, svc, username, password, database)
	if err != nil {
		c.pool.Release(conn)
		return err
	}

	c.connMu.Lock()
	c.conn = conn
	c.svc = svc
	c.connMu.Unlock()
	c.setSession(sess)

	c.stateMu.Lock()
	c.database = database
	c.curState = nil
	c.stateMu.Unlock()

	if err := c.checkDeployment(sess); err != nil {
		c.teardown(ctx)
		return err
	}
	if err := c.validateStateAtOpen(ctx); err != nil {
		c.teardown(ctx)
		return err
	}

	c.hb = newHeartbeat(c, c.opts.HeartbeatInterval)
	c.hb.start()

	c.opts.Logger.Info("session opened",
		"address", c.address, "database", database, "session", sess.ID)
	return nil
}

// Close stops the heartbeat, closes the session and releases the
// connection. A second Close is a no-op.
func (c *ImmuClient) Close(ctx context.Context) error {
	c.setupMu.Lock()
	defer c.setupMu.Unlock()
	return c.teardown(ctx)
}

func (c *ImmuClient) teardown(ctx context.Context) error {
	if c.hb != nil {
		c.hb.stop()
		c.hb = nil
	}

	sess := c.Session()
	svc := c.service()

	var err error
	if sess != nil && svc != nil {
		ctx, cancel := context.WithTimeout(ctx, c.opts.ConnectionShutdownTimeout)
		err = c.sessions.CloseSession(ctx, svc, sess)
		cancel()
	}
	c.setSession(nil)

	c.connMu.Lock()
	conn := c.conn
	c.conn = nil
	c.svc = nil
	c.connMu.Unlock()

	if conn != nil {
		c.pool.Release(conn)
	}

	c.stateMu.Lock()
	c.curState = nil
	c.stateMu.Unlock()

	if sess != nil {
		c.opts.Logger.Info("session closed", "session", sess.ID)
	}
	return err
}

// Reconnect releases the current connection and acquires a fresh one
// without touching the session.
func (c *ImmuClient) Reconnect() error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn != nil {
		c.pool.Release(c.conn)
		c.conn = nil
		c.svc = nil
	}

	conn, err := c.pool.Acquire(c.address)
	if err != nil {
		return err
	}
	svc := c.opts.ServiceFactory(conn)
	if svc == nil {
		c.pool.Release(conn)
		return ErrInvalidOperation
	}
	c.conn = conn
	c.svc = svc
	return nil
}

// checkDeployment enforces that the persisted deployment identity for
// this address matches the server we just authenticated against.
func (c *ImmuClient) checkDeployment(sess *session.Session) error {
	di, err := c.stateStore.GetDeploymentInfo()
	if err != nil {
		return wrapInvalidOperation(err)
	}
	if di == nil {
		if adopted, ok := c.stateStore.AdoptDeployment(sess.ServerUUID); ok {
			di = adopted
		} else {
			if _, err := c.stateStore.CreateDeploymentInfo(sess); err != nil {
				return wrapInvalidOperation(err)
			}
			return nil
		}
	}
	if di.ServerUUID != sess.ServerUUID && c.opts.DeploymentInfoCheck {
		c.opts.Logger.Error("deployment mismatch",
			"stored", di.ServerUUID, "server", sess.ServerUUID)
		return ErrVerification
	}
	return nil
}

// CurrentState returns the locally pinned state for the current
// database. When none exists the server's state is fetched, its
// signature checked, and the result trusted on first use. No lock is
// held across the fetch; a racing verified operation can only push the
// published state forward.
func (c *ImmuClient) CurrentState(ctx context.Context) (*state.ImmuState, error) {
	sess := c.Session()
	if sess == nil {
		return nil, ErrNotConnected
	}

	c.stateMu.Lock()
	if c.curState != nil {
		st := c.curState
		c.stateMu.Unlock()
		return st, nil
	}
	db := c.database
	c.stateMu.Unlock()

	st, err := c.stateStore.GetState(db)
	if err != nil {
		return nil, wrapInvalidOperation(err)
	}
	if st == nil {
		st, err = c.fetchServerState(ctx, sess)
		if err != nil {
			return nil, err
		}
		if err := c.stateStore.SetState(sess, st); err != nil {
			return nil, wrapInvalidOperation(err)
		}
	}

	c.stateMu.Lock()
	if c.curState == nil || st.TxID > c.curState.TxID {
		c.curState = st
	} else {
		st = c.curState
	}
	c.stateMu.Unlock()
	return st, nil
}

func (c *ImmuClient) fetchServerState(ctx context.Context, sess *session.Session) (*state.ImmuState, error) {
	svc := c.service()
	if svc == nil {
		return nil, ErrNotConnected
	}
	resp, err := svc.CurrentState(sess.NewContext(ctx), &schema.Empty{})
	if err != nil {
		return nil, mapServerError(err)
	}

	st := &state.ImmuState{
		Database: resp.Db,
		TxID:     resp.TxId,
		TxHash:   resp.TxHash,
	}
	if resp.Signature != nil {
		st.Signature = resp.Signature.Signature
	}
	if resp.Db == "" {
		st.Database = c.Database()
	}
	if err := st.CheckSignature(c.opts.ServerSigningKey); err != nil {
		return nil, ErrVerification
	}
	return st, nil
}

// validateStateAtOpen reconciles the stored state with the server's:
// a missing local state adopts the server's, anything else must be
// linked to it by a valid dual proof.
func (c *ImmuClient) validateStateAtOpen(ctx context.Context) error {
	sess := c.Session()
	svc := c.service()
	if sess == nil || svc == nil {
		return ErrNotConnected
	}

	// Open is serialized by setupMu and nothing else uses the session
	// yet, so the state mutex is only needed to publish the result.
	local, err := c.stateStore.GetState(c.Database())
	if err != nil {
		return wrapInvalidOperation(err)
	}

	server, err := c.fetchServerState(ctx, sess)
	if err != nil {
		return err
	}

	if local == nil {
		if err := c.stateStore.SetState(sess, server); err != nil {
			return wrapInvalidOperation(err)
		}
		c.publishState(server)
		return nil
	}

	if local.TxID == server.TxID {
		if !bytes.Equal(local.TxHash, server.TxHash) {
			return ErrVerification
		}
		c.publishState(local)
		return nil
	}

	// an empty side cannot anchor a dual proof
	if local.TxID == 0 || server.TxID == 0 {
		if server.TxID > local.TxID {
			if err := c.stateStore.SetState(sess, server); err != nil {
				return wrapInvalidOperation(err)
			}
			c.publishState(server)
			return nil
		}
		return ErrVerification
	}

	source, target := local, server
	if server.TxID < local.TxID {
		source, target = server, local
	}

	vtx, err := svc.VerifiableTxById(sess.NewContext(ctx), &schema.VerifiableTxRequest{
		Tx:           target.TxID,
		ProveSinceTx: source.TxID,
	})
	if err != nil {
		if mapServerError(err) == ErrTxNotFound {
			return ErrVerification
		}
		return mapServerError(err)
	}
	if vtx == nil || vtx.DualProof == nil {
		return ErrCorruptedData
	}

	dualProof, err := ledger.DualProofFromSchema(vtx.DualProof)
	if err != nil {
		return ErrCorruptedData
	}

	if !ledger.VerifyDualProof(dualProof,
		source.TxID, target.TxID, source.Hash(), target.Hash()) {
		return ErrVerification
	}

	if server.TxID > local.TxID {
		if err := c.stateStore.SetState(sess, server); err != nil {
			return wrapInvalidOperation(err)
		}
		c.publishState(server)
	} else {
		c.publishState(local)
	}
	return nil
}

// publishState installs st as the in-memory state unless a newer one
// is already published.
func (c *ImmuClient) publishState(st *state.ImmuState) {
	c.stateMu.Lock()
	if c.curState == nil || st.TxID >= c.curState.TxID {
		c.curState = st
	}
	c.stateMu.Unlock()
}

// updateState publishes a freshly verified state: in-memory first,
// then persisted through the monotone store.
func (c *ImmuClient) updateState(sess *session.Session, st *state.ImmuState) error {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	if c.curState == nil || st.TxID > c.curState.TxID {
		c.curState = st
	}
	if err := c.stateStore.SetState(sess, st); err != nil {
		return wrapInvalidOperation(err)
	}
	return nil
}

func wrapInvalidOperation(err error) error {
	if err == nil {
		return nil
	}
	return &invalidOperationError{cause: err}
}

// invalidOperationError wraps state-store I/O failures so that callers
// can match ErrInvalidOperation while keeping the original cause.
type invalidOperationError struct {
	cause error
}

func (e *invalidOperationError) Error() string {
	return ErrInvalidOperation.Error() + ": " + e.cause.Error()
}

func (e *invalidOperationError) Is(target error) bool {
	return target == ErrInvalidOperation
}

func (e *invalidOperationError) Unwrap() error {
	return e.cause
}
