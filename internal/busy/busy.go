// Package busy tracks in-flight work for a global "work in progress"
// indicator. A counter is incremented when work starts and decremented when
// it completes; the indicator is on whenever the counter is positive.
package busy

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type Tracker struct {
	mu       sync.Mutex
	inFlight int

	// Each transition takes a ticket under mu and is announced under notifyMu
	// once every earlier ticket has been served, so callbacks see transitions
	// in the order the counter moved without mu being held.
	issued   uint64
	notifyMu sync.Mutex
	turn     *sync.Cond
	served   uint64

	subsMu  sync.Mutex
	subs    map[uint64]func(bool)
	nextSub uint64
}

func NewTracker() *Tracker {
	t := &Tracker{subs: make(map[uint64]func(bool))}
	t.turn = sync.NewCond(&t.notifyMu)
	return t
}

var global = NewTracker()

// Global returns the process-wide tracker. It starts at zero and is only
// moved by Begin and the end funcs it returns.
func Global() *Tracker { return global }

// Begin marks the start of one unit of work. The returned func marks its end
// and is safe to call more than once.
func (t *Tracker) Begin() (end func()) {
	t.move(1)

	var once sync.Once
	return func() {
		once.Do(func() { t.move(-1) })
	}
}

func (t *Tracker) move(delta int) {
	t.mu.Lock()
	before := t.inFlight > 0
	t.inFlight += delta
	if t.inFlight < 0 {
		t.inFlight = 0
	}
	after := t.inFlight > 0
	if before == after {
		t.mu.Unlock()
		return
	}
	ticket := t.issued
	t.issued++
	t.mu.Unlock()

	t.notifyMu.Lock()
	defer t.notifyMu.Unlock()
	for t.served != ticket {
		t.turn.Wait()
	}
	for _, fn := range t.subscribers() {
		fn(after)
	}
	t.served++
	t.turn.Broadcast()
}

func (t *Tracker) Busy() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inFlight > 0
}

func (t *Tracker) InFlight() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inFlight
}

// Subscribe registers fn for busy/idle transitions. fn runs synchronously on
// the goroutine that caused the transition and must not call Begin or an end
// func itself. It may read Busy and InFlight, which can already reflect later
// moves than the transition being announced.
func (t *Tracker) Subscribe(fn func(busy bool)) (unsubscribe func()) {
	t.subsMu.Lock()
	id := t.nextSub
	t.nextSub++
	t.subs[id] = fn
	t.subsMu.Unlock()

	return func() {
		t.subsMu.Lock()
		delete(t.subs, id)
		t.subsMu.Unlock()
	}
}

func (t *Tracker) subscribers() []func(bool) {
	t.subsMu.Lock()
	defer t.subsMu.Unlock()
	out := make([]func(bool), 0, len(t.subs))
	for _, fn := range t.subs {
		out = append(out, fn)
	}
	return out
}

// Instrument exposes the counter as a gauge on reg.
func (t *Tracker) Instrument(reg prometheus.Registerer, service string) {
	reg.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name:        "inflight_operations",
			Help:        "Operations currently in flight",
			ConstLabels: prometheus.Labels{"service": service},
		},
		func() float64 { return float64(t.InFlight()) },
	))
}

// Middleware counts every request passing through it, including ones that
// panic.
func (t *Tracker) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		end := t.Begin()
		defer end()
		next.ServeHTTP(w, r)
	})
}
