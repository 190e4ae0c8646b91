// Package view holds the UI-facing state of the catalog browser and the
// flows that drive it: debounced search, selection, the edit/create form and
// deletion. Presentation layers read State snapshots and call the flow
// methods; they never talk to the store directly.
package view

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"HeroCatalog/internal/busy"
	"HeroCatalog/internal/catalog"
	"HeroCatalog/internal/hero"
)

const (
	DefaultDebounce    = 500 * time.Millisecond
	DefaultCreateDelay = 800 * time.Millisecond
)

// Source is the part of the catalog store the orchestrator uses.
type Source interface {
	List(ctx context.Context) ([]hero.Hero, error)
	Search(ctx context.Context, term string) ([]hero.Hero, error)
	Selection(ctx context.Context) (hero.Hero, bool, error)
	Select(ctx context.Context, h *hero.Hero) error
	Create(ctx context.Context, d hero.Draft) (hero.Hero, error)
	Update(ctx context.Context, id string, p hero.Patch) (hero.Hero, bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	Subscribe(fn func(catalog.Event)) (unsubscribe func())
}

type Options struct {
	Clock       clock.Clock
	Busy        *busy.Tracker
	Log         *zap.Logger
	Debounce    time.Duration
	CreateDelay time.Duration

	// OnChange receives a snapshot after every state change once the initial
	// load is done. It runs outside the orchestrator's lock, sometimes from
	// inside a store notification, so it must not wait on store operations.
	OnChange func(State)
}

type Orchestrator struct {
	store       Source
	busy        *busy.Tracker
	clock       clock.Clock
	log         *zap.Logger
	createDelay time.Duration
	onChange    func(State)
	search      *debouncer

	mu         sync.Mutex
	state      State
	dispatched string
	searchSeq  uint64
	synced     bool
	ctx        context.Context
	cancel     context.CancelFunc
	unsubs     []func()
}

func New(store Source, opts Options) *Orchestrator {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Busy == nil {
		opts.Busy = busy.Global()
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.CreateDelay < 0 {
		opts.CreateDelay = 0
	}

	o := &Orchestrator{
		store:       store,
		busy:        opts.Busy,
		clock:       opts.Clock,
		log:         opts.Log,
		createDelay: opts.CreateDelay,
		onChange:    opts.OnChange,
	}
	o.search = newDebouncer(opts.Clock, opts.Debounce, o.stabilized)
	return o
}

// Start loads the collection and the selection and subscribes to store and
// busy changes. Subscriptions are registered first so nothing published
// during the initial load is lost.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	o.ctx, o.cancel = context.WithCancel(ctx)
	runCtx := o.ctx
	o.state.Busy = o.busy.Busy()
	o.unsubs = append(o.unsubs,
		o.store.Subscribe(o.storeChanged),
		o.busy.Subscribe(o.busyChanged),
	)
	o.mu.Unlock()

	heroes, err := o.store.List(runCtx)
	if err != nil {
		return err
	}
	selected, ok, err := o.store.Selection(runCtx)
	if err != nil {
		return err
	}

	o.mu.Lock()
	// Every event carries the whole collection, so one that arrived during
	// the load is at least as fresh as what was loaded.
	if !o.synced {
		o.state.Heroes = heroes
		o.state.Selected = nil
		if ok {
			o.state.Selected = &selected
		}
		o.synced = true
		o.refilterLocked()
	}
	o.mu.Unlock()

	o.changed()
	return nil
}

// Close stops the pending search, drops subscriptions and cancels in-flight
// searches.
func (o *Orchestrator) Close() {
	o.search.Stop()

	o.mu.Lock()
	unsubs := o.unsubs
	o.unsubs = nil
	if o.cancel != nil {
		o.cancel()
	}
	o.mu.Unlock()

	for _, u := range unsubs {
		u()
	}
}

func (o *Orchestrator) Snapshot() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.clone()
}

// SetSearch records the raw input at once; the store is queried only after
// the input has been quiet for the debounce period.
func (o *Orchestrator) SetSearch(text string) {
	o.mu.Lock()
	o.state.Search = text
	o.mu.Unlock()

	o.search.Push(text)
	o.changed()
}

// PendingSearch reports the term waiting out the debounce period, if any.
func (o *Orchestrator) PendingSearch() (string, bool) {
	return o.search.Pending()
}

func (o *Orchestrator) Select(ctx context.Context, h hero.Hero) error {
	return o.store.Select(ctx, &h)
}

func (o *Orchestrator) Edit(h hero.Hero) {
	o.mu.Lock()
	c := h.Clone()
	o.state.Editing = &c
	o.state.FormOpen = true
	o.mu.Unlock()

	o.changed()
}

// CreateNew opens an empty form after the create delay.
func (o *Orchestrator) CreateNew(ctx context.Context) error {
	if o.createDelay > 0 {
		t := o.clock.Timer(o.createDelay)
		defer t.Stop()

		select {
		case <-t.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	o.mu.Lock()
	o.state.Editing = nil
	o.state.FormOpen = true
	o.mu.Unlock()

	o.changed()
	return nil
}

func (o *Orchestrator) CloseForm() {
	o.mu.Lock()
	o.state.FormOpen = false
	o.state.Editing = nil
	o.mu.Unlock()

	o.changed()
}

// Submit updates the record under edit, or creates a new one when nothing is
// being edited, then closes the form. Invalid drafts never reach the store.
func (o *Orchestrator) Submit(ctx context.Context, d hero.Draft) error {
	if err := d.Validate(); err != nil {
		return err
	}

	o.mu.Lock()
	var editingID string
	if o.state.Editing != nil {
		editingID = o.state.Editing.ID
	}
	o.mu.Unlock()

	var err error
	if editingID != "" {
		_, _, err = o.store.Update(ctx, editingID, d.Patch())
	} else {
		_, err = o.store.Create(ctx, d)
	}
	if err != nil {
		return err
	}

	o.CloseForm()
	return nil
}

// Delete dispatches without asking; confirmation belongs to the caller.
func (o *Orchestrator) Delete(ctx context.Context, id string) error {
	_, err := o.store.Delete(ctx, id)
	return err
}

func (o *Orchestrator) stabilized(term string) {
	o.mu.Lock()
	o.dispatched = term
	o.refilterLocked()
	o.mu.Unlock()

	o.changed()
}

func (o *Orchestrator) storeChanged(ev catalog.Event) {
	o.mu.Lock()
	o.state.Selected = ev.Selected
	// A selection change leaves the collection alone, so the current filter
	// still holds.
	if ev.Kind != catalog.EventSelected || !o.synced {
		o.state.Heroes = ev.Heroes
		o.synced = true
		o.refilterLocked()
	}
	o.mu.Unlock()

	o.changed()
}

func (o *Orchestrator) busyChanged(b bool) {
	o.mu.Lock()
	o.state.Busy = b
	o.mu.Unlock()

	o.changed()
}

// refilterLocked applies the dispatched term to the current collection. A
// blank term never reaches the store. Results of a search that has since been
// superseded are dropped.
func (o *Orchestrator) refilterLocked() {
	o.searchSeq++
	seq := o.searchSeq

	term := o.dispatched
	if strings.TrimSpace(term) == "" {
		o.state.Filtered = hero.CloneAll(o.state.Heroes)
		o.state.Query = term
		return
	}

	ctx := o.ctx
	if ctx == nil {
		o.log.Warn("search before start", zap.String("term", term))
		return
	}

	go func() {
		results, err := o.store.Search(ctx, term)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				o.log.Warn("search failed", zap.String("term", term), zap.Error(err))
			}
			return
		}

		o.mu.Lock()
		if seq != o.searchSeq {
			o.mu.Unlock()
			return
		}
		o.state.Filtered = results
		o.state.Query = term
		o.mu.Unlock()

		o.changed()
	}()
}

func (o *Orchestrator) changed() {
	if o.onChange == nil {
		return
	}

	o.mu.Lock()
	if !o.synced {
		o.mu.Unlock()
		return
	}
	st := o.state.clone()
	o.mu.Unlock()

	o.onChange(st)
}
