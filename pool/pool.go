// Package pool implements the process-wide gRPC connection pool:
// bounded per-address connection lists with random assignment, usage
// refcounts and a background reaper retiring idle connections.
package pool

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Connection is the subset of grpc.ClientConn the pool manages. Tests
// substitute in-process fakes.
type Connection interface {
	Target() string
	Close() error
}

// DialFunc opens a new connection to an address.
type DialFunc func(address string) (Connection, error)

// GRPCDial is the default DialFunc.
func GRPCDial(address string) (Connection, error) {
	return grpc.Dial(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
}

const (
	DefaultMaxConnectionsPerServer = 3
	DefaultIdleCheckInterval       = time.Minute
	DefaultTerminateIdleTimeout    = 5 * time.Minute
	DefaultShutdownTimeout         = 2 * time.Second
)

var ErrPoolClosed = errors.New("[pool] Pool is closed")

// Options configures a pool. Zero values fall back to the defaults
// above.
type Options struct {
	MaxConnectionsPerServer int
	IdleCheckInterval       time.Duration
	TerminateIdleTimeout    time.Duration
	ShutdownTimeout         time.Duration
	Dial                    DialFunc
}

func (o Options) withDefaults() Options {
	if o.MaxConnectionsPerServer <= 0 {
		o.MaxConnectionsPerServer = DefaultMaxConnectionsPerServer
	}
	if o.IdleCheckInterval <= 0 {
		o.IdleCheckInterval = DefaultIdleCheckInterval
	}
	if o.TerminateIdleTimeout <= 0 {
		o.TerminateIdleTimeout = DefaultTerminateIdleTimeout
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = DefaultShutdownTimeout
	}
	if o.Dial == nil {
		o.Dial = GRPCDial
	}
	return o
}

type item struct {
	conn       Connection
	refCount   int
	lastChange time.Time
}

func (it *item) touch() {
	it.lastChange = time.Now()
}

// RandomAssignPool hands out connections per address. The first
// connection for an address is created with a zero refcount; only
// connections shared through random assignment are counted, and
// Release decrements the first matching positive count. The reaper
// relies on this accounting: an item is idle once its refcount is back
// to zero and untouched for the idle timeout.
type RandomAssignPool struct {
	opts Options

	mu     sync.Mutex
	conns  map[string][]*item
	closed bool

	closec chan struct{}
	donec  chan struct{}
}

// New creates a pool and starts its reaper.
func New(opts Options) *RandomAssignPool {
	p := &RandomAssignPool{
		opts:   opts.withDefaults(),
		conns:  make(map[string][]*item),
		closec: make(chan struct{}),
		donec:  make(chan struct{}),
	}
	go p.reap()
	return p
}

var (
	defaultPool *RandomAssignPool
	defaultOnce sync.Once
)

// Default returns the lazily constructed process-wide pool.
func Default() *RandomAssignPool {
	defaultOnce.Do(func() {
		defaultPool = New(Options{})
	})
	return defaultPool
}

// Acquire returns a connection to the address, dialing a new one while
// the per-address list is below its cap and randomly sharing an
// existing one afterwards.
func (p *RandomAssignPool) Acquire(address string) (Connection, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	list := p.conns[address]
	if len(list) >= p.opts.MaxConnectionsPerServer {
		it := list[rand.Intn(len(list))]
		it.refCount++
		it.touch()
		conn := it.conn
		p.mu.Unlock()
		return conn, nil
	}
	p.mu.Unlock()

	// dial outside the lock
	conn, err := p.opts.Dial(address)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		conn.Close()
		return nil, ErrPoolClosed
	}
	list = p.conns[address]
	if len(list) >= p.opts.MaxConnectionsPerServer {
		// lost the race; share an existing connection instead
		it := list[rand.Intn(len(list))]
		it.refCount++
		it.touch()
		shared := it.conn
		p.mu.Unlock()
		conn.Close()
		return shared, nil
	}
	it := &item{conn: conn}
	it.touch()
	p.conns[address] = append(list, it)
	p.mu.Unlock()
	return conn, nil
}

// Release gives a shared connection back: the first matching item with
// a positive refcount is decremented.
func (p *RandomAssignPool) Release(conn Connection) {
	if conn == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, list := range p.conns {
		for _, it := range list {
			if it.conn == conn && it.refCount > 0 {
				it.refCount--
				it.touch()
				return
			}
		}
	}
}

// Size reports the number of live connections for an address.
func (p *RandomAssignPool) Size(address string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.conns[address])
}

func (p *RandomAssignPool) reap() {
	defer close(p.donec)

	ticker := time.NewTicker(p.opts.IdleCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.closec:
			return
		case <-ticker.C:
			p.reapIdle()
		}
	}
}

func (p *RandomAssignPool) reapIdle() {
	now := time.Now()

	p.mu.Lock()
	var idle []Connection
	for addr, list := range p.conns {
		kept := list[:0]
		for _, it := range list {
			if it.refCount == 0 && now.Sub(it.lastChange) >= p.opts.TerminateIdleTimeout {
				idle = append(idle, it.conn)
			} else {
				kept = append(kept, it)
			}
		}
		if len(kept) == 0 {
			delete(p.conns, addr)
		} else {
			p.conns[addr] = kept
		}
	}
	p.mu.Unlock()

	var wg sync.WaitGroup
	for _, conn := range idle {
		wg.Add(1)
		go func(c Connection) {
			defer wg.Done()
			c.Close()
		}(conn)
	}
	wg.Wait()
}

// Shutdown stops the reaper and closes every pooled connection. It
// returns once all connections are closed or the shutdown timeout (or
// ctx) expires, whichever comes first.
func (p *RandomAssignPool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	close(p.closec)
	<-p.donec

	p.mu.Lock()
	var all []Connection
	for _, list := range p.conns {
		for _, it := range list {
			all = append(all, it.conn)
		}
	}
	p.conns = make(map[string][]*item)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		var wg sync.WaitGroup
		for _, conn := range all {
			wg.Add(1)
			go func(c Connection) {
				defer wg.Done()
				c.Close()
			}(conn)
		}
		wg.Wait()
		close(done)
	}()

	ctx, cancel := context.WithTimeout(ctx, p.opts.ShutdownTimeout)
	defer cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
