package jaho

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
)

// testWaiter builds a loadWaiter without a browser; events are simulated by
// driving its state directly.
func testWaiter() *loadWaiter {
	return &loadWaiter{
		inflight: make(map[network.RequestID]struct{}),
		changed:  make(chan struct{}, 1),
	}
}

func (w *loadWaiter) fireLoad() {
	w.mu.Lock()
	w.loaded = true
	w.mu.Unlock()
	w.poke()
}

func (w *loadWaiter) startRequest(id network.RequestID) {
	w.mu.Lock()
	w.inflight[id] = struct{}{}
	w.mu.Unlock()
	w.poke()
}

func TestWaitLoad(t *testing.T) {
	w := testWaiter()
	w.startRequest("r1") // pending requests must not block WaitLoad

	go func() {
		time.Sleep(10 * time.Millisecond)
		w.fireLoad()
	}()
	if err := w.wait(context.Background(), WaitLoad, 5*time.Second); err != nil {
		t.Fatalf("wait: %v", err)
	}
}

func TestWaitLoad_Timeout(t *testing.T) {
	w := testWaiter()
	err := w.wait(context.Background(), WaitLoad, 20*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("got %v, want DeadlineExceeded", err)
	}
}

func TestWaitNetworkIdle(t *testing.T) {
	w := testWaiter()
	w.fireLoad()

	start := time.Now()
	if err := w.wait(context.Background(), WaitNetworkIdle, 5*time.Second); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed < networkIdleQuiet {
		t.Errorf("idle reported after %s, before the quiet period elapsed", elapsed)
	}
}

func TestWaitNetworkIdle_PendingRequestBlocks(t *testing.T) {
	w := testWaiter()
	w.fireLoad()
	w.startRequest("r1")

	err := w.wait(context.Background(), WaitNetworkIdle, 100*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("got %v, want DeadlineExceeded while a request is in flight", err)
	}

	// Finishing the request lets the page go idle.
	w.finish("r1")
	if err := w.wait(context.Background(), WaitNetworkIdle, 5*time.Second); err != nil {
		t.Fatalf("wait after finish: %v", err)
	}
}

func TestWaitNetworkIdle_QuietPeriodRestarts(t *testing.T) {
	w := testWaiter()
	w.fireLoad()

	// A request arriving mid-quiet-period restarts the clock.
	go func() {
		time.Sleep(networkIdleQuiet / 2)
		w.startRequest("late")
		time.Sleep(50 * time.Millisecond)
		w.finish("late")
	}()

	start := time.Now()
	if err := w.wait(context.Background(), WaitNetworkIdle, 5*time.Second); err != nil {
		t.Fatalf("wait: %v", err)
	}
	want := networkIdleQuiet/2 + 50*time.Millisecond + networkIdleQuiet
	if elapsed := time.Since(start); elapsed < want-50*time.Millisecond {
		t.Errorf("idle after %s, want at least ~%s", elapsed, want)
	}
}

func TestWait_ContextCancelled(t *testing.T) {
	w := testWaiter()
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := w.wait(ctx, WaitNetworkIdle, 5*time.Second)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}
