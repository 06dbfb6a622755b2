// Package session manages the authenticated contexts a server hands
// out at login. Every RPC after OpenSession carries the session id as
// gRPC metadata.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"google.golang.org/grpc/metadata"

	"github.com/elslush/immudb4go/schema"
)

// Kind distinguishes read-only sessions from read-write ones.
type Kind int

const (
	Read Kind = iota
	ReadWrite
)

var ErrNoSession = errors.New("[session] No session")

// Session is one authenticated server context. TxID is set while an
// interactive transaction is in progress on the session.
type Session struct {
	ID         string
	ServerUUID string
	Kind       Kind
	TxID       string

	mdOnce sync.Once
	md     metadata.MD
}

// NewContext returns ctx extended with the session's metadata header.
// The metadata is built once per session and reused.
func (s *Session) NewContext(ctx context.Context) context.Context {
	s.mdOnce.Do(func() {
		s.md = metadata.Pairs("sessionid", s.ID)
	})
	return metadata.NewOutgoingContext(ctx, s.md)
}

// Manager opens and closes sessions and tracks the live ones keyed by
// their server-assigned id.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	credBufs sync.Pool
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		credBufs: sync.Pool{
			New: func() interface{} {
				b := make([]byte, 0, 256)
				return &b
			},
		},
	}
}

// OpenSession authenticates against the server and registers the
// returned session. Credentials pass through a pooled scratch buffer
// that is zeroed before being returned to the pool.
func (m *Manager) OpenSession(ctx context.Context, svc schema.ImmuService,
	username, password, database string) (*Session, error) {

	bufp := m.credBufs.Get().(*[]byte)
	buf := append((*bufp)[:0], username...)
	userLen := len(buf)
	buf = append(buf, password...)
	defer func() {
		for i := range buf {
			buf[i] = 0
		}
		*bufp = buf[:0]
		m.credBufs.Put(bufp)
	}()

	resp, err := svc.OpenSession(ctx, &schema.OpenSessionRequest{
		Username:     buf[:userLen],
		Password:     buf[userLen:],
		DatabaseName: database,
	})
	if err != nil {
		return nil, err
	}

	// servers predating deployment identities report no UUID; bind
	// them all to the nil identity instead of an empty string
	serverUUID := resp.ServerUUID
	if serverUUID == "" {
		serverUUID = uuid.Nil.String()
	}

	sess := &Session{
		ID:         resp.SessionID,
		ServerUUID: serverUUID,
		Kind:       ReadWrite,
	}

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()

	return sess, nil
}

// CloseSession tears the session down on the server and forgets it.
func (m *Manager) CloseSession(ctx context.Context, svc schema.ImmuService, sess *Session) error {
	if sess == nil {
		return ErrNoSession
	}

	_, err := svc.CloseSession(sess.NewContext(ctx), &schema.Empty{})

	m.mu.Lock()
	delete(m.sessions, sess.ID)
	m.mu.Unlock()

	return err
}

// Get returns the live session with the given id, if any.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	return sess, ok
}

// Count reports how many sessions are currently tracked.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
