// Package engine gathers candidate execution plans from every
// registered liquidity source in parallel, tolerates partial failure,
// and ranks the survivors into a single reproducible best quote.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"swapquote/pkg/provider"
	"swapquote/pkg/source"
	"swapquote/pkg/types"
)

const (
	// DefaultDebounceWindow is the quiet period after the last
	// parameter edit before a fetch round starts
	DefaultDebounceWindow = 550 * time.Millisecond
	// DefaultSourceTimeout bounds each provider call; one slow source
	// never blocks the others
	DefaultSourceTimeout = 8 * time.Second
)

// Options tunes a quote engine
type Options struct {
	DebounceWindow time.Duration
	SourceTimeout  time.Duration
	Logger         *logrus.Logger
}

// Snapshot is an immutable copy of the engine state at one point in
// time, delivered to subscribers after every change.
type Snapshot struct {
	Epoch            uint64
	Params           types.TradeParameters
	Results          []types.QuoteResult
	BestSourceID     string
	OverrideSourceID string
	ActiveSourceID   string
	// NoRoutes is set when an active trade has no usable route: the
	// registry returned no sources, or every source failed. It is
	// state, not an error.
	NoRoutes bool
	// Err carries a registry-level failure for the round; per-source
	// failures live in Results instead
	Err error
}

// ActiveResult returns the result for the active source, or nil
func (s Snapshot) ActiveResult() *types.QuoteResult {
	for i := range s.Results {
		if s.Results[i].SourceID == s.ActiveSourceID {
			return &s.Results[i]
		}
	}
	return nil
}

// Settled reports whether every source call for the round has settled
func (s Snapshot) Settled() bool {
	for i := range s.Results {
		if s.Results[i].State == types.ResultPending {
			return false
		}
	}
	return true
}

// Engine owns all quote state for one trade-entry session. All
// mutation funnels through one mutex, and every asynchronous write
// re-checks epoch currency first, so no stale round can ever touch
// state.
type Engine struct {
	registry *source.Registry
	factory  provider.Factory
	opts     Options
	log      *logrus.Entry

	baseCtx    context.Context
	baseCancel context.CancelFunc
	epochs     EpochController
	deb        *debouncer

	mu       sync.Mutex
	closed   bool
	params   types.TradeParameters
	results  []*types.QuoteResult
	best     string
	override string
	roundErr error
	subs     map[int]func(Snapshot)
	nextSub  int
}

// New creates an engine over the given registry and provider factory
func New(registry *source.Registry, factory provider.Factory, opts Options) *Engine {
	if opts.DebounceWindow <= 0 {
		opts.DebounceWindow = DefaultDebounceWindow
	}
	if opts.SourceTimeout <= 0 {
		opts.SourceTimeout = DefaultSourceTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logrus.New()
		opts.Logger.SetLevel(logrus.WarnLevel)
	}

	ctx, cancel := context.WithCancel(context.Background())

	e := &Engine{
		registry:   registry,
		factory:    factory,
		opts:       opts,
		log:        opts.Logger.WithField("component", "quote-engine"),
		baseCtx:    ctx,
		baseCancel: cancel,
		subs:       make(map[int]func(Snapshot)),
	}
	e.deb = newDebouncer(opts.DebounceWindow, e.settle)

	return e
}

// Subscribe registers a callback invoked after every state change with
// a snapshot of the new state. The returned function unsubscribes.
func (e *Engine) Subscribe(fn func(Snapshot)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.subs, id)
	}
}

// UpdateParameters records a parameter edit. Edits are debounced: a
// fetch round starts only after the quiet window passes with no further
// edit, and each new round cancels the previous one.
func (e *Engine) UpdateParameters(params types.TradeParameters) {
	e.deb.submit(params)
}

// SelectSource overrides the ranked best quote with an explicit user
// choice. The source must have a resolved quote; the override clears
// automatically when a new round begins or the source later fails.
func (e *Engine) SelectSource(sourceID string) error {
	e.mu.Lock()
	if !resolvedIn(e.results, sourceID) {
		e.mu.Unlock()
		return fmt.Errorf("source %q has no resolved quote", sourceID)
	}
	e.override = sourceID
	snap, subs := e.snapshotLocked()
	e.mu.Unlock()

	notify(snap, subs)
	return nil
}

// ClearOverride reverts to the ranked best quote
func (e *Engine) ClearOverride() {
	e.mu.Lock()
	e.override = ""
	snap, subs := e.snapshotLocked()
	e.mu.Unlock()

	notify(snap, subs)
}

// Snapshot returns a copy of the current engine state
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap, _ := e.snapshotLocked()
	return snap
}

// QuoteOnce runs a single undebounced fetch round and waits for every
// source to settle. Used by one-shot CLI commands; it participates in
// the same epoch sequence, so a concurrent UpdateParameters supersedes
// it.
func (e *Engine) QuoteOnce(ctx context.Context, params types.TradeParameters) (Snapshot, error) {
	if !params.Active() {
		return Snapshot{}, ErrInactiveParameters
	}
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return Snapshot{}, ErrClosed
	}
	e.mu.Unlock()

	h := e.epochs.Begin(ctx)

	e.mu.Lock()
	e.params = params
	e.override = ""
	e.best = ""
	e.results = nil
	e.roundErr = nil
	e.mu.Unlock()

	sources, err := e.registry.Sources(h.Context(), params.Network)
	if err != nil {
		// A registry fetch aborted by a newer round is supersession,
		// not a registry failure
		if !h.Current() {
			return Snapshot{}, ErrSuperseded
		}
		return Snapshot{}, err
	}

	e.mu.Lock()
	if !h.Current() {
		e.mu.Unlock()
		return Snapshot{}, ErrSuperseded
	}
	e.beginRoundLocked(h, sources)
	snap, subs := e.snapshotLocked()
	e.mu.Unlock()
	notify(snap, subs)

	var wg sync.WaitGroup
	for _, src := range sources {
		wg.Add(1)
		go e.fetchOne(h, params, src, &wg)
	}
	wg.Wait()

	final := e.Snapshot()
	if final.Epoch != h.ID() {
		return Snapshot{}, ErrSuperseded
	}
	return final, nil
}

// Close cancels the live round and stops the debouncer
func (e *Engine) Close() {
	e.deb.stop()

	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()

	e.epochs.CancelCurrent()
	e.baseCancel()
}

// settle receives debounced parameter settlements and starts a new
// fetch round. Beginning the epoch synchronously invalidates the
// previous round no matter which settles first.
func (e *Engine) settle(params types.TradeParameters) {
	h := e.epochs.Begin(e.baseCtx)

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.params = params
	e.override = ""
	e.best = ""
	e.results = nil
	e.roundErr = nil

	if !params.Active() {
		snap, subs := e.snapshotLocked()
		e.mu.Unlock()
		e.log.WithField("epoch", h.ID()).Debug("input inactive, cleared quote state")
		notify(snap, subs)
		return
	}
	e.mu.Unlock()

	e.log.WithFields(logrus.Fields{
		"epoch":   h.ID(),
		"network": params.Network.ID,
		"pair":    params.PayToken.Symbol + "/" + params.ReceiveToken.Symbol,
		"amount":  params.PayAmount,
	}).Debug("fetch round started")

	go e.run(h, params)
}

// run fetches the source list and fans out one provider call per
// source under the round's epoch handle
func (e *Engine) run(h *EpochHandle, params types.TradeParameters) {
	sources, err := e.registry.Sources(h.Context(), params.Network)

	e.mu.Lock()
	if e.closed || !h.Current() {
		e.mu.Unlock()
		return
	}
	if err != nil {
		e.roundErr = err
		snap, subs := e.snapshotLocked()
		e.mu.Unlock()
		e.log.WithField("epoch", h.ID()).WithError(err).Warn("source registry fetch failed")
		notify(snap, subs)
		return
	}
	e.beginRoundLocked(h, sources)
	snap, subs := e.snapshotLocked()
	e.mu.Unlock()
	notify(snap, subs)

	for _, src := range sources {
		go e.fetchOne(h, params, src, nil)
	}
}

// beginRoundLocked replaces the result set wholesale: every known
// source starts the round pending
func (e *Engine) beginRoundLocked(h *EpochHandle, sources []types.Source) {
	e.results = make([]*types.QuoteResult, 0, len(sources))
	for _, src := range sources {
		e.results = append(e.results, &types.QuoteResult{
			SourceID: src.ID,
			Source:   src,
			State:    types.ResultPending,
		})
	}
}

// fetchOne issues a single provider call and applies its outcome
func (e *Engine) fetchOne(h *EpochHandle, params types.TradeParameters, src types.Source, wg *sync.WaitGroup) {
	if wg != nil {
		defer wg.Done()
	}

	prov, err := e.factory.Provider(src)
	if err != nil {
		e.applyResult(h, src.ID, nil, err)
		return
	}

	ctx, cancel := context.WithTimeout(h.Context(), e.opts.SourceTimeout)
	defer cancel()

	quote, err := prov.Fetch(ctx, params)
	e.applyResult(h, src.ID, quote, err)
}

// applyResult writes one source's outcome if and only if the handle is
// still current. Late results from a superseded round are discarded
// unwritten.
func (e *Engine) applyResult(h *EpochHandle, sourceID string, quote *types.Quote, ferr error) {
	e.mu.Lock()
	if e.closed || !h.Current() {
		e.mu.Unlock()
		e.log.WithFields(logrus.Fields{
			"epoch":  h.ID(),
			"source": sourceID,
		}).Debug("discarded stale quote result")
		return
	}

	r := e.resultLocked(sourceID)
	if r == nil {
		e.mu.Unlock()
		return
	}

	if ferr != nil {
		r.State = types.ResultFailed
		r.ErrorReason = failureReason(ferr)
		e.log.WithFields(logrus.Fields{
			"epoch":  h.ID(),
			"source": sourceID,
			"reason": r.ErrorReason,
		}).Debug("source failed")
	} else {
		r.State = types.ResultResolved
		r.Quote = quote
	}

	e.rerankLocked()
	snap, subs := e.snapshotLocked()
	e.mu.Unlock()

	notify(snap, subs)
}

// rerankLocked recomputes the best source and drops an override whose
// source failed or vanished
func (e *Engine) rerankLocked() {
	e.best = BestSource(e.results)

	if e.override == "" {
		return
	}
	for _, r := range e.results {
		if r.SourceID == e.override {
			if r.State == types.ResultFailed {
				e.override = ""
			}
			return
		}
	}
	e.override = ""
}

func (e *Engine) resultLocked(sourceID string) *types.QuoteResult {
	for _, r := range e.results {
		if r.SourceID == sourceID {
			return r
		}
	}
	return nil
}

func (e *Engine) snapshotLocked() (Snapshot, []func(Snapshot)) {
	results := make([]types.QuoteResult, 0, len(e.results))
	allFailed := len(e.results) > 0
	for _, r := range e.results {
		results = append(results, *r)
		if r.State != types.ResultFailed {
			allFailed = false
		}
	}

	active := e.override
	if active == "" {
		active = e.best
	}

	noRoutes := false
	if e.params.Active() && e.roundErr == nil && e.results != nil {
		noRoutes = len(e.results) == 0 || allFailed
	}

	snap := Snapshot{
		Epoch:            e.epochs.CurrentID(),
		Params:           e.params,
		Results:          results,
		BestSourceID:     e.best,
		OverrideSourceID: e.override,
		ActiveSourceID:   active,
		NoRoutes:         noRoutes,
		Err:              e.roundErr,
	}

	subs := make([]func(Snapshot), 0, len(e.subs))
	for _, fn := range e.subs {
		subs = append(subs, fn)
	}

	return snap, subs
}

// notify delivers a snapshot to subscribers outside the engine mutex,
// so callbacks may call back into the engine
func notify(snap Snapshot, subs []func(Snapshot)) {
	for _, fn := range subs {
		fn(snap)
	}
}

// failureReason normalizes a provider error into the reason recorded on
// the source's result
func failureReason(err error) string {
	var qerr *provider.QuoteError
	if errors.As(err, &qerr) {
		return qerr.Reason
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out"
	}
	return err.Error()
}
