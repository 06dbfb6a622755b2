package state

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/elslush/immudb4go/session"
	"github.com/elslush/immudb4go/storage/kv"
)

// KVStore persists states in a generic key-value database, one record
// per (deployment, database) pair:
//
//	deployment/<key>/info       -> DeploymentInfo
//	deployment/<key>/state/<db> -> ImmuState
//
// It carries the same monotone write rule as the file store and is the
// backend of choice when several clients on one machine share a single
// leveldb instance.
type KVStore struct {
	db    kv.DB
	label string

	mu            sync.Mutex
	deploymentKey string
}

func NewKVStore(db kv.DB, address string) *KVStore {
	return &KVStore{
		db:            db,
		label:         address,
		deploymentKey: DeploymentKey(address),
	}
}

func (s *KVStore) infoKey() []byte {
	return []byte("deployment/" + s.deploymentKey + "/info")
}

func (s *KVStore) stateKey(database string) []byte {
	return []byte("deployment/" + s.deploymentKey + "/state/" + database)
}

func (s *KVStore) GetState(database string) (*ImmuState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.db.Get(s.stateKey(database))
	if err == s.db.ErrNotFound() {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	st := &ImmuState{}
	if err := json.Unmarshal(raw, st); err != nil {
		return nil, fmt.Errorf("[state] Cannot parse state record: %v", err)
	}
	return st, nil
}

func (s *KVStore) SetState(sess *session.Session, st *ImmuState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.stateKey(st.Database)

	if raw, err := s.db.Get(key); err == nil {
		cur := &ImmuState{}
		if err := json.Unmarshal(raw, cur); err == nil && st.TxID <= cur.TxID {
			return nil
		}
	}

	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.db.Put(key, raw)
}

func (s *KVStore) GetDeploymentInfo() (*DeploymentInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.db.Get(s.infoKey())
	if err == s.db.ErrNotFound() {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	di := &DeploymentInfo{}
	if err := json.Unmarshal(raw, di); err != nil {
		return nil, fmt.Errorf("[state] Cannot parse deployment record: %v", err)
	}
	return di, nil
}

// AdoptDeployment scans deployment records for one already bound to
// the given server identity and rebinds the store to it.
func (s *KVStore) AdoptDeployment(serverUUID string) (*DeploymentInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it := s.db.NewIterator(kv.BytesPrefix([]byte("deployment/")))
	defer it.Release()

	for ok := it.First(); ok; ok = it.Next() {
		key := string(it.Key())
		if len(key) < len("deployment/")+len("/info") ||
			key[len(key)-len("/info"):] != "/info" {
			continue
		}
		di := &DeploymentInfo{}
		if err := json.Unmarshal(it.Value(), di); err != nil {
			continue
		}
		if di.ServerUUID == serverUUID {
			s.deploymentKey = key[len("deployment/") : len(key)-len("/info")]
			return di, true
		}
	}
	return nil, false
}

func (s *KVStore) CreateDeploymentInfo(sess *session.Session) (*DeploymentInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	di := &DeploymentInfo{
		Label:      s.label,
		ServerUUID: sess.ServerUUID,
	}
	raw, err := json.Marshal(di)
	if err != nil {
		return nil, err
	}
	if err := s.db.Put(s.infoKey(), raw); err != nil {
		return nil, err
	}
	return di, nil
}
