package engine

import (
	"context"
	"sync"
)

// EpochController tags every fetch round with a monotonically
// increasing epoch id and owns the single in-flight cancellation
// handle. Beginning an epoch synchronously cancels the previous one, so
// at most one epoch's fetches can ever write results.
type EpochController struct {
	mu     sync.Mutex
	epoch  uint64
	cancel context.CancelFunc
}

// EpochHandle carries one epoch's id and cancellation context. All
// asynchronous callbacks must check Current before mutating shared
// state.
type EpochHandle struct {
	id   uint64
	ctx  context.Context
	ctrl *EpochController
}

// Begin starts a new epoch, cancelling the previous one. The returned
// handle's context is derived from parent.
func (c *EpochController) Begin(parent context.Context) *EpochHandle {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	c.epoch++
	ctx, cancel := context.WithCancel(parent)
	c.cancel = cancel

	return &EpochHandle{
		id:   c.epoch,
		ctx:  ctx,
		ctrl: c,
	}
}

// CurrentID returns the id of the latest epoch, 0 before the first Begin
func (c *EpochController) CurrentID() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

// CancelCurrent aborts the live epoch without starting a new one
func (c *EpochController) CancelCurrent() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// ID returns the epoch id this handle belongs to
func (h *EpochHandle) ID() uint64 {
	return h.id
}

// Context returns the epoch's cancellation context
func (h *EpochHandle) Context() context.Context {
	return h.ctx
}

// Current reports whether this handle still belongs to the controller's
// latest epoch. Results arriving under a non-current handle must be
// discarded unwritten.
func (h *EpochHandle) Current() bool {
	h.ctrl.mu.Lock()
	defer h.ctrl.mu.Unlock()
	return h.ctrl.epoch == h.id
}
