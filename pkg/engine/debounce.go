package engine

import (
	"sync"
	"time"

	"swapquote/pkg/types"
)

// debouncer collapses rapid parameter edits into a single settled value
// after a quiet window. Inactive parameters (empty pair or zero amount)
// settle immediately so stale quotes can be cleared without delay.
//
// Settlements are enqueued under the mutex and drained by a single
// goroutine, so they reach the emit callback one at a time and in
// submission order. A timer settlement can never land after a newer
// immediate one.
type debouncer struct {
	window time.Duration
	emit   func(types.TradeParameters)

	queue chan types.TradeParameters

	mu     sync.Mutex
	gen    uint64 // bumped on every submit; an expired timer whose gen is old must not emit
	timer  *time.Timer
	closed bool
}

func newDebouncer(window time.Duration, emit func(types.TradeParameters)) *debouncer {
	d := &debouncer{
		window: window,
		emit:   emit,
		queue:  make(chan types.TradeParameters, 64),
	}
	go d.drain()
	return d
}

func (d *debouncer) drain() {
	for params := range d.queue {
		d.emit(params)
	}
}

// submit records a parameter mutation. Any pending settlement is
// superseded; at most one settlement fires per quiet window.
func (d *debouncer) submit(params types.TradeParameters) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}

	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	if !params.Active() {
		// Clearing input settles immediately
		d.queue <- params
		return
	}

	gen := d.gen
	d.timer = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		// A timer that lost the Stop race to a newer submit stays silent
		if d.closed || d.gen != gen {
			return
		}
		d.timer = nil
		d.queue <- params
	})
}

// stop discards any pending settlement and rejects further submissions.
// Already-queued settlements still drain.
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	close(d.queue)
}
