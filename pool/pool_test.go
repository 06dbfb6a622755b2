package pool

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeConn struct {
	target string

	mu     sync.Mutex
	closed bool
}

func (c *fakeConn) Target() string { return c.target }

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func fakeDial(address string) (Connection, error) {
	return &fakeConn{target: address}, nil
}

func newTestPool(max int, idleCheck, idleTimeout time.Duration) *RandomAssignPool {
	return New(Options{
		MaxConnectionsPerServer: max,
		IdleCheckInterval:       idleCheck,
		TerminateIdleTimeout:    idleTimeout,
		ShutdownTimeout:         time.Second,
		Dial:                    fakeDial,
	})
}

func TestAcquireRespectsCap(t *testing.T) {
	p := newTestPool(2, time.Hour, time.Hour)
	defer p.Shutdown(context.Background())

	c1, err := p.Acquire("srv:3322")
	if err != nil {
		t.Fatal(err)
	}
	c2, err := p.Acquire("srv:3322")
	if err != nil {
		t.Fatal(err)
	}
	if c1 == c2 {
		t.Fatal("second acquire below cap should dial a fresh connection")
	}

	// the third acquire must share one of the existing two
	c3, err := p.Acquire("srv:3322")
	if err != nil {
		t.Fatal(err)
	}
	if c3 != c1 && c3 != c2 {
		t.Fatal("acquire above cap returned an unknown connection")
	}
	if got := p.Size("srv:3322"); got != 2 {
		t.Fatalf("pool size = %d, want 2", got)
	}
}

func TestAcquireIsPerAddress(t *testing.T) {
	p := newTestPool(1, time.Hour, time.Hour)
	defer p.Shutdown(context.Background())

	a, _ := p.Acquire("a:3322")
	b, _ := p.Acquire("b:3322")
	if a.Target() == b.Target() {
		t.Fatal("addresses share a connection list")
	}
	if p.Size("a:3322") != 1 || p.Size("b:3322") != 1 {
		t.Fatal("per-address lists are not isolated")
	}
}

func TestConcurrentAcquireNeverExceedsCap(t *testing.T) {
	p := newTestPool(2, time.Hour, time.Hour)
	defer p.Shutdown(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := p.Acquire("srv:3322"); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if got := p.Size("srv:3322"); got > 2 {
		t.Fatalf("pool size = %d exceeds cap", got)
	}
}

func TestIdleReaperRetiresUnreferenced(t *testing.T) {
	p := newTestPool(2, 10*time.Millisecond, 20*time.Millisecond)
	defer p.Shutdown(context.Background())

	c1, _ := p.Acquire("srv:3322")
	c2, _ := p.Acquire("srv:3322")
	c3, _ := p.Acquire("srv:3322") // shared, bumps a refcount
	p.Release(c3)

	deadline := time.Now().Add(2 * time.Second)
	for p.Size("srv:3322") > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	if got := p.Size("srv:3322"); got != 0 {
		t.Fatalf("reaper left %d connections", got)
	}
	if !c1.(*fakeConn).isClosed() || !c2.(*fakeConn).isClosed() {
		t.Fatal("reaped connections were not closed")
	}
}

func TestReaperSkipsReferenced(t *testing.T) {
	p := newTestPool(1, 10*time.Millisecond, 20*time.Millisecond)
	defer p.Shutdown(context.Background())

	c1, _ := p.Acquire("srv:3322") // refCount 0 by accounting
	c2, _ := p.Acquire("srv:3322") // shared: refCount 1
	if c1 != c2 {
		t.Fatal("expected shared connection")
	}

	time.Sleep(100 * time.Millisecond)
	if p.Size("srv:3322") != 1 {
		t.Fatal("reaper retired a referenced connection")
	}

	p.Release(c2)
	deadline := time.Now().Add(2 * time.Second)
	for p.Size("srv:3322") > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if p.Size("srv:3322") != 0 {
		t.Fatal("released connection was never reaped")
	}
}

func TestShutdownClosesEverything(t *testing.T) {
	p := newTestPool(2, time.Hour, time.Hour)

	c1, _ := p.Acquire("a:3322")
	c2, _ := p.Acquire("b:3322")

	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !c1.(*fakeConn).isClosed() || !c2.(*fakeConn).isClosed() {
		t.Fatal("shutdown left connections open")
	}

	if _, err := p.Acquire("a:3322"); err != ErrPoolClosed {
		t.Fatal("acquire after shutdown should fail")
	}
	// second shutdown is a no-op
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}
}
