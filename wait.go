package jaho

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// networkIdleQuiet is how long the network must stay silent after the load
// event before the page counts as idle.
const networkIdleQuiet = 500 * time.Millisecond

// loadWaiter tracks the load event and in-flight requests of one tab. It
// must be created before the document load starts, or a fast page could
// fire its events before anyone is watching. Network events must be enabled
// on the tab.
type loadWaiter struct {
	mu       sync.Mutex
	loaded   bool
	inflight map[network.RequestID]struct{}
	changed  chan struct{}
}

func newLoadWaiter(ctx context.Context) *loadWaiter {
	w := &loadWaiter{
		inflight: make(map[network.RequestID]struct{}),
		changed:  make(chan struct{}, 1),
	}
	chromedp.ListenTarget(ctx, func(ev any) {
		switch e := ev.(type) {
		case *page.EventLoadEventFired:
			w.mu.Lock()
			w.loaded = true
			w.mu.Unlock()
			w.poke()
		case *network.EventRequestWillBeSent:
			w.mu.Lock()
			w.inflight[e.RequestID] = struct{}{}
			w.mu.Unlock()
			w.poke()
		case *network.EventLoadingFinished:
			w.finish(e.RequestID)
		case *network.EventLoadingFailed:
			w.finish(e.RequestID)
		}
	})
	return w
}

func (w *loadWaiter) finish(id network.RequestID) {
	w.mu.Lock()
	delete(w.inflight, id)
	w.mu.Unlock()
	w.poke()
}

func (w *loadWaiter) poke() {
	select {
	case w.changed <- struct{}{}:
	default:
	}
}

func (w *loadWaiter) snapshot() (loaded bool, pending int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loaded, len(w.inflight)
}

// wait blocks until the condition is met: for WaitLoad the document load
// event, for WaitNetworkIdle the load event followed by a quiet period with
// no requests in flight. timeout bounds only this wait.
func (w *loadWaiter) wait(ctx context.Context, cond WaitUntil, timeout time.Duration) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	quiet := time.NewTimer(networkIdleQuiet)
	quiet.Stop()
	defer quiet.Stop()
	quietArmed := false

	for {
		loaded, pending := w.snapshot()
		if loaded && cond == WaitLoad {
			return nil
		}
		idle := loaded && pending == 0
		if idle && !quietArmed {
			quiet.Reset(networkIdleQuiet)
			quietArmed = true
		}
		if !idle && quietArmed {
			if !quiet.Stop() {
				<-quiet.C
			}
			quietArmed = false
		}

		select {
		case <-w.changed:
		case <-quiet.C:
			quietArmed = false
			if loaded, pending := w.snapshot(); loaded && pending == 0 {
				return nil
			}
		case <-deadline.C:
			return fmt.Errorf("waiting for page %s after %s: %w",
				cond, timeout, context.DeadlineExceeded)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
