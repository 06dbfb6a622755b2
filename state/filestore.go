package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/elslush/immudb4go/session"
)

const (
	deploymentInfoFile = "deploymentinfo"
	stateFilePrefix    = "state_"
)

// FileStore is the default durable state store. Each server deployment
// owns a directory named by its deployment key:
//
//	<root>/<deploymentKey>/deploymentinfo
//	<root>/<deploymentKey>/state_<db>
//
// Writes are write-to-temp-then-rename so a crash can never leave a
// torn state file behind.
type FileStore struct {
	root  string
	label string

	mu            sync.Mutex
	deploymentKey string
}

// NewFileStore creates a store rooted at dir for the deployment
// identified by the given server address. label is the human-readable
// deployment name recorded in deploymentinfo (usually the address).
func NewFileStore(dir, address string) *FileStore {
	return &FileStore{
		root:          dir,
		label:         address,
		deploymentKey: DeploymentKey(address),
	}
}

// DeploymentDir returns the directory currently bound to this store's
// deployment.
func (s *FileStore) DeploymentDir() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filepath.Join(s.root, s.deploymentKey)
}

func (s *FileStore) stateFile(database string) string {
	return filepath.Join(s.root, s.deploymentKey, stateFilePrefix+database)
}

func (s *FileStore) GetState(database string) (*ImmuState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.stateFile(database))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	st := &ImmuState{}
	if err := json.Unmarshal(raw, st); err != nil {
		return nil, fmt.Errorf("[state] Cannot parse state file: %v", err)
	}
	return st, nil
}

func (s *FileStore) SetState(sess *session.Session, st *ImmuState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.stateFile(st.Database)

	if raw, err := os.ReadFile(path); err == nil {
		cur := &ImmuState{}
		if err := json.Unmarshal(raw, cur); err == nil && st.TxID <= cur.TxID {
			return nil
		}
	}

	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, raw)
}

// GetDeploymentInfo reads the identity bound to the configured
// deployment key, or (nil, nil) when the deployment was never seen.
func (s *FileStore) GetDeploymentInfo() (*DeploymentInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readDeploymentInfo(s.deploymentKey)
}

// AdoptDeployment scans sibling deployment directories for one already
// bound to the given server identity and rebinds the store to it. A
// server reachable under several addresses then maps to a single
// on-disk deployment.
func (s *FileStore) AdoptDeployment(serverUUID string) (*DeploymentInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, false
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		di, err := s.readDeploymentInfo(e.Name())
		if err != nil || di == nil {
			continue
		}
		if di.ServerUUID == serverUUID {
			s.deploymentKey = e.Name()
			return di, true
		}
	}
	return nil, false
}

func (s *FileStore) CreateDeploymentInfo(sess *session.Session) (*DeploymentInfo, error) {
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
	path := filepath.Join(s.root, s.deploymentKey, deploymentInfoFile)
	if err := writeFileAtomic(path, raw); err != nil {
		return nil, err
	}
	return di, nil
}

func (s *FileStore) readDeploymentInfo(key string) (*DeploymentInfo, error) {
	raw, err := os.ReadFile(filepath.Join(s.root, key, deploymentInfoFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	di := &DeploymentInfo{}
	if err := json.Unmarshal(raw, di); err != nil {
		return nil, fmt.Errorf("[state] Cannot parse deployment info: %v", err)
	}
	return di, nil
}

// writeFileAtomic writes data to a temp file in the target directory
// and renames it into place. On platforms without atomic-overwrite
// rename the existing target is moved aside first and removed after
// the rename lands.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		if _, statErr := os.Stat(path); statErr != nil {
			os.Remove(tmpName)
			return err
		}
		aside := path + ".old"
		if err := os.Rename(path, aside); err != nil {
			os.Remove(tmpName)
			return err
		}
		if err := os.Rename(tmpName, path); err != nil {
			os.Rename(aside, path)
			os.Remove(tmpName)
			return err
		}
		os.Remove(aside)
	}
	return nil
}
