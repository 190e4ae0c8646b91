package catalog

import (
	"context"
	"time"

	"HeroCatalog/internal/hero"
)

// Store is the catalog's operation set. Implementations own the collection and
// the selection; callers only ever see copies.
type Store interface {
	Ping(ctx context.Context) error

	List(ctx context.Context) ([]hero.Hero, error)
	Get(ctx context.Context, id string) (hero.Hero, bool, error)
	Search(ctx context.Context, term string) ([]hero.Hero, error)

	Selection(ctx context.Context) (hero.Hero, bool, error)
	Select(ctx context.Context, h *hero.Hero) error

	Create(ctx context.Context, d hero.Draft) (hero.Hero, error)
	Update(ctx context.Context, id string, p hero.Patch) (hero.Hero, bool, error)
	Delete(ctx context.Context, id string) (bool, error)

	Subscribe(fn func(Event)) (unsubscribe func())
}

type EventKind string

const (
	EventCreated  EventKind = "created"
	EventUpdated  EventKind = "updated"
	EventDeleted  EventKind = "deleted"
	EventSelected EventKind = "selected"
)

// Event is published after every mutation and carries the full state that
// resulted from it.
type Event struct {
	Kind     EventKind   `json:"kind"`
	ID       string      `json:"id,omitempty"`
	Heroes   []hero.Hero `json:"heroes"`
	Selected *hero.Hero  `json:"selected"`
}

func (e Event) Clone() Event {
	e.Heroes = hero.CloneAll(e.Heroes)
	e.Selected = cloneRef(e.Selected)
	return e
}

// Latency is the simulated round trip of each operation.
type Latency struct {
	List      time.Duration `mapstructure:"list"`
	Selection time.Duration `mapstructure:"selection"`
	Select    time.Duration `mapstructure:"select"`
	Create    time.Duration `mapstructure:"create"`
	Update    time.Duration `mapstructure:"update"`
	Delete    time.Duration `mapstructure:"delete"`
	Search    time.Duration `mapstructure:"search"`
}

func DefaultLatency() Latency {
	return Latency{
		List:      1200 * time.Millisecond,
		Selection: 500 * time.Millisecond,
		Select:    300 * time.Millisecond,
		Create:    2000 * time.Millisecond,
		Update:    1500 * time.Millisecond,
		Delete:    1000 * time.Millisecond,
		Search:    800 * time.Millisecond,
	}
}
