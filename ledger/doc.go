// Package ledger models the authenticated transaction log of an immudb
// server from the client's point of view: transaction headers and their
// accumulated hashes, canonical entry digests for both supported header
// versions, and the inclusion, consistency, linear and dual proofs a
// client checks before trusting a response.
//
// Every function here is pure. Network and state concerns live in the
// client and state packages.
package ledger
