package client

import (
	"errors"
	"strings"
)

// Errors surfaced to callers. Verification failures are final: the
// operation that raised one has not advanced the local state.
var (
	ErrKeyNotFound        = errors.New("[client] Key not found")
	ErrTxNotFound         = errors.New("[client] Tx not found")
	ErrCorruptedData      = errors.New("[client] Server data is corrupted")
	ErrVerification       = errors.New("[client] Verification failed")
	ErrInvalidOperation   = errors.New("[client] Invalid client operation")
	ErrSessionAlreadyOpen = errors.New("[client] A session is already open")
	ErrNotConnected       = errors.New("[client] Client is not connected")
)

// mapServerError translates the server's well-known failure texts into
// typed errors and passes everything else through untouched.
func mapServerError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "key not found"):
		return ErrKeyNotFound
	case strings.Contains(msg, "tx not found"):
		return ErrTxNotFound
	}
	return err
}
