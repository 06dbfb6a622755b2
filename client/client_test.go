package client

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/elslush/immudb4go/schema"
)

func TestOpenCloseLifecycle(t *testing.T) {
	f := newFakeServer("uuid-1")
	c := testClient(f, t.TempDir(), nil)
	ctx := context.Background()

	if err := c.Open(ctx, "immudb", "immudb", "defaultdb"); err != nil {
		t.Fatal(err)
	}
	if c.Session() == nil {
		t.Fatal("no session after open")
	}

	if err := c.Open(ctx, "immudb", "immudb", "defaultdb"); err != ErrSessionAlreadyOpen {
		t.Fatalf("second open: got %v", err)
	}

	if err := c.Close(ctx); err != nil {
		t.Fatal(err)
	}
	if c.Session() != nil {
		t.Fatal("session survived close")
	}

	// idempotent close
	if err := c.Close(ctx); err != nil {
		t.Fatalf("second close: got %v", err)
	}

	if _, err := c.Get(ctx, []byte("k")); err != ErrNotConnected {
		t.Fatalf("op after close: got %v", err)
	}
}

func TestPlainSetGet(t *testing.T) {
	f := newFakeServer("uuid-1")
	c := testClient(f, t.TempDir(), nil)
	ctx := context.Background()

	if err := c.Open(ctx, "immudb", "immudb", "defaultdb"); err != nil {
		t.Fatal(err)
	}
	defer c.Close(ctx)

	hdr, err := c.Set(ctx, []byte("k1"), []byte("v1"))
	if err != nil {
		t.Fatal(err)
	}

	entry, err := c.Get(ctx, []byte("k1"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(entry.Value, []byte("v1")) {
		t.Fatalf("value = %q", entry.Value)
	}
	if entry.Tx != hdr.Id {
		t.Fatalf("entry tx = %d, set tx = %d", entry.Tx, hdr.Id)
	}

	if _, err := c.Get(ctx, []byte("absent")); err != ErrKeyNotFound {
		t.Fatalf("missing key: got %v", err)
	}
}

func TestVerifiedSetAdvancesState(t *testing.T) {
	f := newFakeServer("uuid-1")
	c := testClient(f, t.TempDir(), nil)
	ctx := context.Background()

	if err := c.Open(ctx, "immudb", "immudb", "defaultdb"); err != nil {
		t.Fatal(err)
	}
	defer c.Close(ctx)

	hdr, err := c.VerifiedSet(ctx, []byte("k2"), []byte("v2"))
	if err != nil {
		t.Fatal(err)
	}

	st, err := c.CurrentState(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.TxID != hdr.Id {
		t.Fatalf("state txId = %d, header id = %d", st.TxID, hdr.Id)
	}
	wantAlh := f.headers[hdr.Id-1].Alh()
	if st.Hash() != wantAlh {
		t.Fatal("state hash is not the committed header's Alh")
	}

	entry, err := c.VerifiedGet(ctx, []byte("k2"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(entry.Value, []byte("v2")) {
		t.Fatalf("verified value = %q", entry.Value)
	}

	st2, _ := c.CurrentState(ctx)
	if st2.TxID < st.TxID {
		t.Fatal("verified get regressed the state")
	}
}

func TestVerifiedChain(t *testing.T) {
	f := newFakeServer("uuid-1")
	c := testClient(f, t.TempDir(), nil)
	ctx := context.Background()

	if err := c.Open(ctx, "immudb", "immudb", "defaultdb"); err != nil {
		t.Fatal(err)
	}
	defer c.Close(ctx)

	// several verified writes chain dual proofs end to end
	keys := [][]byte{[]byte("a"), []byte("b"), []byte("c"), []byte("d")}
	for i, k := range keys {
		if _, err := c.VerifiedSet(ctx, k, []byte{byte(i)}); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}
	for i, k := range keys {
		entry, err := c.VerifiedGet(ctx, k)
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if !bytes.Equal(entry.Value, []byte{byte(i)}) {
			t.Fatalf("read %d: value %x", i, entry.Value)
		}
	}

	if _, err := c.VerifiedTxByID(ctx, 2); err != nil {
		t.Fatalf("verified tx by id: %v", err)
	}
	if _, err := c.VerifiedTxByID(ctx, 99); err != ErrTxNotFound {
		t.Fatalf("missing tx: got %v", err)
	}
}

func TestReopenValidatesStoredState(t *testing.T) {
	f := newFakeServer("uuid-1")
	dir := t.TempDir()
	ctx := context.Background()

	c := testClient(f, dir, nil)
	if err := c.Open(ctx, "immudb", "immudb", "defaultdb"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.VerifiedSet(ctx, []byte("k"), []byte("v")); err != nil {
		t.Fatal(err)
	}
	c.Close(ctx)

	// the server moves on while we are away
	if _, err := f.Set(ctx, &schema.SetRequest{
		KVs: []*schema.KeyValue{{Key: []byte("other"), Value: []byte("x")}},
	}); err != nil {
		t.Fatal(err)
	}

	c2 := testClient(f, dir, nil)
	if err := c2.Open(ctx, "immudb", "immudb", "defaultdb"); err != nil {
		t.Fatalf("reopen with stored state: %v", err)
	}
	c2.Close(ctx)
}

func TestHeartbeatRunsAndStops(t *testing.T) {
	f := newFakeServer("uuid-1")
	c := testClient(f, t.TempDir(), func(o *Options) {
		o.HeartbeatInterval = 20 * time.Millisecond
	})
	ctx := context.Background()

	if err := c.Open(ctx, "immudb", "immudb", "defaultdb"); err != nil {
		t.Fatal(err)
	}

	select {
	case <-c.hb.Called:
	case <-time.After(2 * time.Second):
		t.Fatal("heartbeat never fired")
	}
	if f.keepAliveCount() == 0 {
		t.Fatal("keepalive was not called")
	}

	start := time.Now()
	if err := c.Close(ctx); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed > DefaultShutdownTimeout+time.Second {
		t.Fatalf("close took %v", elapsed)
	}
}

func TestDeploymentMismatch(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	// first contact binds the deployment to uuid-A
	fA := newFakeServer("uuid-A")
	cA := testClient(fA, dir, nil)
	if err := cA.Open(ctx, "immudb", "immudb", "defaultdb"); err != nil {
		t.Fatal(err)
	}
	cA.Close(ctx)

	// a different server behind the same address must be rejected
	fB := newFakeServer("uuid-B")
	cB := testClient(fB, dir, nil)
	if err := cB.Open(ctx, "immudb", "immudb", "defaultdb"); !errors.Is(err, ErrVerification) {
		t.Fatalf("mismatched deployment: got %v", err)
	}

	// and accepted when the check is disabled
	cB2 := testClient(fB, dir, func(o *Options) {
		o.DeploymentInfoCheck = false
	})
	if err := cB2.Open(ctx, "immudb", "immudb", "defaultdb"); err != nil {
		t.Fatalf("disabled check: got %v", err)
	}
	cB2.Close(ctx)
}
