package client

import (
	"context"
	"sync"
	"time"

	"http1-client/transport"

	"github.com/benbjohnson/clock"
)

// deadlines sets transport deadlines until expired.
// Once expired, only reset can change them again.
type deadlines struct {
	con   transport.Conn
	clock clock.Clock

	expired bool
	mu      sync.Mutex
}

func (d *deadlines) set(read, write time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.expired {
		return
	}

	now := d.clock.Now()
	d.con.SetReadDeadLine(after(now, read))
	d.con.SetWriteDeadLine(after(now, write))
}

func (d *deadlines) expire() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.expired = true
	now := d.clock.Now()
	d.con.SetReadDeadLine(now)
	d.con.SetWriteDeadLine(now)
}

func (d *deadlines) reset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.expired = false
	d.con.SetReadDeadLine(time.Time{})
	d.con.SetWriteDeadLine(time.Time{})
}

// watch expires the deadlines when ctx is done.
// The returned stop must be called, and it returns after the watcher exited.
func (d *deadlines) watch(ctx context.Context) (stop func()) {
	if ctx.Done() == nil {
		return func() {}
	}

	quit := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		select {
		case <-ctx.Done():
			d.expire()
		case <-quit:
		}
	}()

	return func() {
		close(quit)
		<-exited
	}
}

func after(now time.Time, d time.Duration) time.Time {
	if d <= 0 {
		return time.Time{}
	}
	return now.Add(d)
}
