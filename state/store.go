package state

import (
	"errors"

	"github.com/elslush/immudb4go/session"
)

var (
	ErrNoState          = errors.New("[state] No state stored for database")
	ErrNoDeploymentInfo = errors.New("[state] No deployment info stored")
)

// Store persists the latest verified state per database for one server
// deployment.
//
// SetState is monotone: a state whose TxID is not strictly greater than
// the stored one for the same database is silently discarded. Callers
// therefore never have to coordinate concurrent verified operations
// beyond their own read-modify-write windows.
type Store interface {
	// GetState returns the stored state for the database, or
	// (nil, nil) when none exists yet.
	GetState(database string) (*ImmuState, error)

	// SetState persists st for the session's deployment, subject to
	// the monotone write rule.
	SetState(sess *session.Session, st *ImmuState) error

	// GetDeploymentInfo returns the deployment identity bound to this
	// store, or (nil, nil) when none has been created.
	GetDeploymentInfo() (*DeploymentInfo, error)

	// AdoptDeployment rebinds the store to a deployment already
	// holding the given server identity, if one exists.
	AdoptDeployment(serverUUID string) (*DeploymentInfo, bool)

	// CreateDeploymentInfo binds the session's server identity to
	// this store.
	CreateDeploymentInfo(sess *session.Session) (*DeploymentInfo, error)
}
