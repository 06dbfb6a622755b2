package crypto

import (
	"crypto/sha256"
	"encoding/base64"
)

const (
	// HashSizeByte is the size of a transaction-log digest in bytes.
	HashSizeByte = sha256.Size
	// HashID is the hash algorithm every digest in the protocol is built on.
	HashID = "SHA256"
)

// EmptyDigestB64 is the canonical base-64 encoding of the SHA-256 digest
// of the empty input. Null and zero-length inputs hash to this value.
const EmptyDigestB64 = "47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU="

var emptyDigest [HashSizeByte]byte

func init() {
	raw, err := base64.StdEncoding.DecodeString(EmptyDigestB64)
	if err != nil || len(raw) != HashSizeByte {
		panic("[crypto] Malformed empty-input digest constant")
	}
	copy(emptyDigest[:], raw)
}

// EmptyDigest returns the SHA-256 digest of the empty input without
// running the hash function.
func EmptyDigest() [HashSizeByte]byte {
	return emptyDigest
}

// Digest hashes the concatenation of ms with SHA-256.
// When every input is empty the pinned empty-input digest is returned
// instead of hashing again.
func Digest(ms ...[]byte) [HashSizeByte]byte {
	total := 0
	for _, m := range ms {
		total += len(m)
	}
	if total == 0 {
		return emptyDigest
	}

	h := sha256.New()
	for _, m := range ms {
		h.Write(m)
	}
	var ret [HashSizeByte]byte
	h.Sum(ret[:0])
	return ret
}
