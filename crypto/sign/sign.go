// Package sign wraps the ed25519 signature scheme used to authenticate
// server-issued states. A client configured with the server's public
// signing key refuses any state whose signature does not verify.
package sign

import (
	"crypto/rand"
	"errors"

	"golang.org/x/crypto/ed25519"
)

const (
	PrivateKeySize = ed25519.PrivateKeySize
	PublicKeySize  = ed25519.PublicKeySize
	SignatureSize  = ed25519.SignatureSize
)

var ErrBadKeyLength = errors.New("[sign] Bad signing key length")

type PrivateKey ed25519.PrivateKey
type PublicKey ed25519.PublicKey

// GenerateKey produces a fresh signing key pair.
// Servers sign states with the private half; clients pin the public half.
func GenerateKey() (PrivateKey, error) {
	_, sk, err := ed25519.GenerateKey(rand.Reader)
	return PrivateKey(sk), err
}

// ParsePublicKey validates the length of a raw public key read from
// a key file or a config and converts it.
func ParsePublicKey(raw []byte) (PublicKey, error) {
	if len(raw) != PublicKeySize {
		return nil, ErrBadKeyLength
	}
	return PublicKey(raw), nil
}

func (key PrivateKey) Sign(message []byte) []byte {
	return ed25519.Sign(ed25519.PrivateKey(key), message)
}

func (key PrivateKey) Public() (PublicKey, bool) {
	pk, ok := ed25519.PrivateKey(key).Public().(ed25519.PublicKey)
	return PublicKey(pk), ok
}

func (pk PublicKey) Verify(message, sig []byte) bool {
	if len(sig) != SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pk), message, sig)
}
