package state

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"github.com/elslush/immudb4go/session"
)

const defaultCacheSize = 128

// CacheStore keeps verified states in an in-process LRU cache. It is
// meant for shared or stateless deployments where durable per-machine
// state is undesirable; every process start begins from a fresh trust
// anchor.
type CacheStore struct {
	mu     sync.Mutex
	states *lru.Cache
	di     *DeploymentInfo
	label  string
}

// NewCacheStore creates a cache-backed store able to hold up to size
// database states. A non-positive size falls back to the default.
func NewCacheStore(address string, size int) (*CacheStore, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	states, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &CacheStore{
		states: states,
		label:  address,
	}, nil
}

func (s *CacheStore) GetState(database string) (*ImmuState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.states.Get(database)
	if !ok {
		return nil, nil
	}
	return v.(*ImmuState), nil
}

func (s *CacheStore) SetState(sess *session.Session, st *ImmuState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.states.Get(st.Database); ok {
		if cur := v.(*ImmuState); st.TxID <= cur.TxID {
			return nil
		}
	}
	s.states.Add(st.Database, st)
	return nil
}

func (s *CacheStore) GetDeploymentInfo() (*DeploymentInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.di, nil
}

// AdoptDeployment is a no-op for cache-backed stores: nothing outlives
// the process, so there is never a sibling deployment to adopt.
func (s *CacheStore) AdoptDeployment(serverUUID string) (*DeploymentInfo, bool) {
	return nil, false
}

func (s *CacheStore) CreateDeploymentInfo(sess *session.Session) (*DeploymentInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.di = &DeploymentInfo{
		Label:      s.label,
		ServerUUID: sess.ServerUUID,
	}
	return s.di, nil
}
