// Executable immuclient is a terminal client for an immudb server.
// Key-value reads and writes (get, set) can be run in their verified
// forms (safe-get, safe-set), in which the
// server's inclusion and consistency proofs are checked against the
// state pinned on disk before any result is printed.
package main

import (
	"github.com/elslush/immudb4go/immuclient/cli/internal/cmd"
)

func main() {
	cmd.Execute()
}
