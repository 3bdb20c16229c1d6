package webclient

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// idleWatcher tracks in-flight requests of a tab and signals once the tab has
// had none for idleAfter.
type idleWatcher struct {
	idleAfter time.Duration
	idle      chan struct{}
	once      sync.Once

	mu       sync.Mutex
	inflight map[network.RequestID]struct{}
	timer    *time.Timer
}

// waitNetworkIdle starts listening on the tab behind ctx. The listener is
// removed when ctx is done. Call arm once navigation has returned so that a
// page which made no further requests still reaches idle.
func waitNetworkIdle(ctx context.Context, idleAfter time.Duration) *idleWatcher {
	w := &idleWatcher{
		idleAfter: idleAfter,
		idle:      make(chan struct{}),
		inflight:  make(map[network.RequestID]struct{}),
	}

	chromedp.ListenTarget(ctx, func(ev any) {
		switch ev := ev.(type) {
		case *network.EventRequestWillBeSent:
			w.started(ev.RequestID)
		case *network.EventLoadingFinished:
			w.finished(ev.RequestID)
		case *network.EventLoadingFailed:
			w.finished(ev.RequestID)
		}
	})

	return w
}

func (w *idleWatcher) started(id network.RequestID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.inflight[id] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *idleWatcher) finished(id network.RequestID) {
	w.mu.Lock()
	delete(w.inflight, id)
	w.mu.Unlock()
	w.arm()
}

// arm (re)starts the quiet-period timer if nothing is in flight.
func (w *idleWatcher) arm() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.inflight) > 0 {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.idleAfter, w.fire)
}

func (w *idleWatcher) fire() {
	w.mu.Lock()
	n := len(w.inflight)
	w.mu.Unlock()
	if n == 0 {
		w.once.Do(func() { close(w.idle) })
	}
}

// Wait blocks until the tab is idle or ctx is done.
func (w *idleWatcher) Wait(ctx context.Context) error {
	select {
	case <-w.idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *idleWatcher) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}
