// Package crypto provides the hash primitives used to rebuild and check
// the digests of a transaction log: SHA-256 over contiguous buffers and
// the pinned digest of the empty input.
package crypto
