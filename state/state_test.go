package state

import (
	"strings"
	"testing"

	"github.com/elslush/immudb4go/crypto"
	"github.com/elslush/immudb4go/crypto/sign"
)

func TestDeploymentKey(t *testing.T) {
	key := DeploymentKey("localhost:3322")
	if len(key) != DeploymentKeyLen {
		t.Fatalf("deployment key length = %d, want %d", len(key), DeploymentKeyLen)
	}
	if strings.ContainsAny(key, "+/=") {
		t.Fatalf("deployment key %q is not url-safe", key)
	}
	if key != strings.ToUpper(key) {
		t.Fatalf("deployment key %q is not uppercased", key)
	}
	if key != DeploymentKey("localhost:3322") {
		t.Fatal("deployment key is not deterministic")
	}
	if key == DeploymentKey("localhost:3323") {
		t.Fatal("distinct addresses produced the same deployment key")
	}
}

func TestStateSignature(t *testing.T) {
	key, err := sign.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	pk, _ := key.Public()

	st := NewImmuState("defaultdb", 7, crypto.Digest([]byte("alh")), nil)
	st.Signature = key.Sign(st.Serialize())

	if err := st.CheckSignature(pk); err != nil {
		t.Fatal("valid signature rejected")
	}

	st.TxID = 8
	if err := st.CheckSignature(pk); err != ErrBadSignature {
		t.Fatal("signature over altered state accepted")
	}

	// without a pinned key the signature is accepted as-is
	if err := st.CheckSignature(nil); err != nil {
		t.Fatal("nil key must accept any state")
	}
}
