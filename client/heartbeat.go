package client

import (
	"context"
	"sync"
	"time"

	"github.com/elslush/immudb4go/schema"
)

// heartbeat keeps the session alive while the client is open. It is
// either idle or running; start spawns the loop, stop signals it and
// joins. Transport errors are swallowed: a missed beat is the server's
// problem to notice, not ours to escalate.
type heartbeat struct {
	c        *ImmuClient
	interval time.Duration

	closeRequested chan struct{}
	done           chan struct{}
	stopOnce       sync.Once

	// Called is signalled after every KeepAlive attempt; tests
	// observe it to synchronize with the loop.
	Called chan struct{}
}

func newHeartbeat(c *ImmuClient, interval time.Duration) *heartbeat {
	return &heartbeat{
		c:              c,
		interval:       interval,
		closeRequested: make(chan struct{}),
		done:           make(chan struct{}),
		Called:         make(chan struct{}, 1),
	}
}

func (hb *heartbeat) start() {
	go hb.run()
}

func (hb *heartbeat) run() {
	defer close(hb.done)

	for {
		select {
		case <-hb.closeRequested:
			return
		case <-time.After(hb.interval):
		}

		sess := hb.c.Session()
		svc := hb.c.service()
		if sess != nil && svc != nil {
			if _, err := svc.KeepAlive(sess.NewContext(context.Background()), &schema.Empty{}); err != nil {
				hb.c.opts.Logger.Debug("keepalive failed", "err", err)
			}
		}

		select {
		case hb.Called <- struct{}{}:
		default:
		}
	}
}

func (hb *heartbeat) stop() {
	hb.stopOnce.Do(func() {
		close(hb.closeRequested)
	})
	<-hb.done
}
