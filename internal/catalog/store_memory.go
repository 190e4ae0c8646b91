package catalog

import (
	"context"
	"math/rand"
	"slices"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"HeroCatalog/internal/busy"
	"HeroCatalog/internal/hero"
)

type Options struct {
	Latency  Latency
	Clock    clock.Clock
	Busy     *busy.Tracker
	Log      *zap.Logger
	Registry prometheus.Registerer
}

// MemStore keeps the collection in memory. Every operation except Get and
// Ping waits out its configured latency before it touches state; the state
// lock is never held while waiting.
type MemStore struct {
	mu       sync.RWMutex
	heroes   []hero.Hero
	selected *hero.Hero
	entropy  *ulid.MonotonicEntropy

	// notifyMu is taken before mu is released so that subscribers observe
	// events in the order the mutations were applied.
	notifyMu sync.Mutex
	subsMu   sync.Mutex
	subs     map[uint64]func(Event)
	nextSub  uint64

	latency Latency
	clock   clock.Clock
	busy    *busy.Tracker
	log     *zap.Logger
	metrics *storeMetrics
}

var _ Store = (*MemStore)(nil)

// NewMemStore seeds the collection with copies of seed. Records without an id
// get a fresh one; later duplicates of an id are dropped. The first record
// starts out selected.
func NewMemStore(seed []hero.Hero, opts Options) *MemStore {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Busy == nil {
		opts.Busy = busy.Global()
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}

	s := &MemStore{
		heroes:  make([]hero.Hero, 0, len(seed)),
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
		subs:    make(map[uint64]func(Event)),
		latency: opts.Latency,
		clock:   opts.Clock,
		busy:    opts.Busy,
		log:     opts.Log,
		metrics: newStoreMetrics(opts.Registry),
	}

	for _, h := range seed {
		if h.ID == "" {
			h.ID = s.newIDLocked()
		}
		if s.indexLocked(h.ID) >= 0 {
			s.log.Warn("duplicate seed id dropped", zap.String("id", h.ID))
			continue
		}
		s.heroes = append(s.heroes, h.Clone())
	}
	if len(s.heroes) > 0 {
		first := s.heroes[0].Clone()
		s.selected = &first
	}

	return s
}

func (s *MemStore) Ping(ctx context.Context) error { return ctx.Err() }

func (s *MemStore) List(ctx context.Context) ([]hero.Hero, error) {
	var out []hero.Hero
	err := s.run(ctx, opList, s.latency.List, func() {
		s.mu.RLock()
		defer s.mu.RUnlock()
		out = hero.CloneAll(s.heroes)
	})
	return out, err
}

func (s *MemStore) Get(ctx context.Context, id string) (hero.Hero, bool, error) {
	if err := ctx.Err(); err != nil {
		return hero.Hero{}, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexLocked(id)
	if i < 0 {
		return hero.Hero{}, false, nil
	}
	return s.heroes[i].Clone(), true, nil
}

func (s *MemStore) Search(ctx context.Context, term string) ([]hero.Hero, error) {
	var out []hero.Hero
	err := s.run(ctx, opSearch, s.latency.Search, func() {
		s.mu.RLock()
		defer s.mu.RUnlock()
		out = hero.Filter(s.heroes, term)
	})
	return out, err
}

func (s *MemStore) Selection(ctx context.Context) (hero.Hero, bool, error) {
	var (
		out hero.Hero
		ok  bool
	)
	err := s.run(ctx, opSelection, s.latency.Selection, func() {
		s.mu.RLock()
		defer s.mu.RUnlock()
		if s.selected != nil {
			out, ok = s.selected.Clone(), true
		}
	})
	return out, ok, err
}

// Select does not check that h is part of the collection.
func (s *MemStore) Select(ctx context.Context, h *hero.Hero) error {
	return s.run(ctx, opSelect, s.latency.Select, func() {
		s.mu.Lock()
		s.selected = cloneRef(h)

		var id string
		if h != nil {
			id = h.ID
		}
		s.publishAndUnlock(EventSelected, id)
	})
}

func (s *MemStore) Create(ctx context.Context, d hero.Draft) (hero.Hero, error) {
	var created hero.Hero
	err := s.run(ctx, opCreate, s.latency.Create, func() {
		s.mu.Lock()
		created = d.Hero(s.newIDLocked())
		s.heroes = append(s.heroes, created.Clone())
		s.selected = cloneRef(&created)
		s.publishAndUnlock(EventCreated, created.ID)
	})
	if err != nil {
		return hero.Hero{}, err
	}

	s.log.Debug("hero created", zap.String("id", created.ID), zap.String("name", created.Name))
	return created, nil
}

// Update merge-patches the record with the given id and selects it. A missing
// id leaves everything untouched and reports ok=false.
func (s *MemStore) Update(ctx context.Context, id string, p hero.Patch) (hero.Hero, bool, error) {
	var (
		updated hero.Hero
		found   bool
	)
	err := s.run(ctx, opUpdate, s.latency.Update, func() {
		s.mu.Lock()
		i := s.indexLocked(id)
		if i < 0 {
			s.mu.Unlock()
			return
		}

		found = true
		updated = p.Apply(s.heroes[i])
		updated.ID = id
		s.heroes[i] = updated.Clone()
		s.selected = cloneRef(&updated)
		s.publishAndUnlock(EventUpdated, id)
	})
	return updated, found, err
}

// Delete removes the record with the given id. When it was selected, the
// selection moves to the first remaining record, or is cleared.
func (s *MemStore) Delete(ctx context.Context, id string) (bool, error) {
	var found bool
	err := s.run(ctx, opDelete, s.latency.Delete, func() {
		s.mu.Lock()
		i := s.indexLocked(id)
		if i < 0 {
			s.mu.Unlock()
			return
		}

		found = true
		s.heroes = slices.Delete(s.heroes, i, i+1)
		if s.selected != nil && s.selected.ID == id {
			s.selected = nil
			if len(s.heroes) > 0 {
				s.selected = cloneRef(&s.heroes[0])
			}
		}
		s.publishAndUnlock(EventDeleted, id)
	})
	return found, err
}

func (s *MemStore) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}
}

// run holds the busy signal across the simulated delay and fn.
func (s *MemStore) run(ctx context.Context, op string, d time.Duration, fn func()) error {
	end := s.busy.Begin()
	defer end()

	start := s.clock.Now()
	defer func() { s.metrics.observe(op, s.clock.Since(start)) }()

	if err := s.wait(ctx, d); err != nil {
		return err
	}
	fn()
	return nil
}

func (s *MemStore) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := s.clock.Timer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// publishAndUnlock must be called with mu held for writing.
func (s *MemStore) publishAndUnlock(kind EventKind, id string) {
	ev := Event{
		Kind:     kind,
		ID:       id,
		Heroes:   hero.CloneAll(s.heroes),
		Selected: cloneRef(s.selected),
	}

	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	s.subsMu.Lock()
	subs := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range subs {
		fn(ev.Clone())
	}
}

func (s *MemStore) newIDLocked() string {
	for {
		id := ulid.MustNew(ulid.Timestamp(s.clock.Now()), s.entropy).String()
		if s.indexLocked(id) < 0 {
			return id
		}
	}
}

func (s *MemStore) indexLocked(id string) int {
	return slices.IndexFunc(s.heroes, func(h hero.Hero) bool { return h.ID == id })
}

func cloneRef(h *hero.Hero) *hero.Hero {
	if h == nil {
		return nil
	}
	c := h.Clone()
	return &c
}
