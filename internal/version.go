// Package internal holds build-time constants shared by the
// executables.
package internal

// Version is the released version of the immudb4go executables.
const Version = "0.9.0"
