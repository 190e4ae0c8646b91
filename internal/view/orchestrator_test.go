package view_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HeroCatalog/internal/busy"
	"HeroCatalog/internal/catalog"
	"HeroCatalog/internal/hero"
	"HeroCatalog/internal/seed"
	"HeroCatalog/internal/view"
)

// recordingStore records every term that reaches Search. Terms listed in
// hold block until released.
type recordingStore struct {
	*catalog.MemStore

	mu       sync.Mutex
	searches []string
	hold     map[string]chan struct{}
}

func (s *recordingStore) Search(ctx context.Context, term string) ([]hero.Hero, error) {
	s.mu.Lock()
	s.searches = append(s.searches, term)
	gate := s.hold[term]
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.MemStore.Search(ctx, term)
}

func (s *recordingStore) Searches() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.searches...)
}

type fixture struct {
	orch  *view.Orchestrator
	store *recordingStore
	clock *clock.Mock
	busy  *busy.Tracker
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	tr := busy.NewTracker()
	mock := clock.NewMock()
	store := &recordingStore{
		MemStore: catalog.NewMemStore(seed.Builtin(), catalog.Options{Busy: tr}),
		hold:     map[string]chan struct{}{},
	}
	o := view.New(store, view.Options{Clock: mock, Busy: tr})
	require.NoError(t, o.Start(context.Background()))
	t.Cleanup(o.Close)

	return fixture{orch: o, store: store, clock: mock, busy: tr}
}

func names(hs []hero.Hero) []string {
	out := make([]string, 0, len(hs))
	for _, h := range hs {
		out = append(out, h.Name)
	}
	return out
}

func validDraft(name string) hero.Draft {
	return hero.Draft{
		Name:        name,
		Nationality: "Canadian",
		Image:       "img.jpg",
		Description: "desc",
		Powers:      []string{"Regeneration"},
	}
}

func TestOrchestrator_StartLoadsCollectionAndSelection(t *testing.T) {
	f := newFixture(t)

	st := f.orch.Snapshot()
	assert.Equal(t, 5, st.Count())
	assert.Equal(t, 5, st.FilteredCount())
	require.NotNil(t, st.Selected)
	assert.Equal(t, "1", st.Selected.ID)
	assert.False(t, st.FormOpen)
	assert.Empty(t, f.store.Searches())
}

func TestOrchestrator_TypingDispatchesOnlyTheSettledTerm(t *testing.T) {
	f := newFixture(t)

	for _, term := range []string{"s", "sp", "spi"} {
		f.orch.SetSearch(term)
		f.clock.Add(100 * time.Millisecond)
	}
	assert.Equal(t, "spi", f.orch.Snapshot().Search)
	assert.Empty(t, f.store.Searches())

	f.clock.Add(view.DefaultDebounce)
	require.Eventually(t, func() bool {
		return f.orch.Snapshot().FilteredCount() == 1
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"spi"}, f.store.Searches())
	assert.Equal(t, []string{"Spider-Man"}, names(f.orch.Snapshot().Filtered))
}

func TestOrchestrator_BlankTermNeverReachesStore(t *testing.T) {
	f := newFixture(t)

	f.orch.SetSearch("thor")
	f.clock.Add(time.Second)
	require.Eventually(t, func() bool {
		return f.orch.Snapshot().FilteredCount() == 1
	}, time.Second, 5*time.Millisecond)

	f.orch.SetSearch("   ")
	f.clock.Add(time.Second)
	require.Eventually(t, func() bool {
		return f.orch.Snapshot().FilteredCount() == 5
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"thor"}, f.store.Searches())
}

func TestOrchestrator_RepeatedTermIsNotRedispatched(t *testing.T) {
	f := newFixture(t)

	f.orch.SetSearch("iron")
	f.clock.Add(time.Second)
	require.Eventually(t, func() bool { return len(f.store.Searches()) == 1 }, time.Second, 5*time.Millisecond)

	f.orch.SetSearch("iro")
	f.orch.SetSearch("iron")
	f.clock.Add(time.Second)
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, []string{"iron"}, f.store.Searches())
}

func TestOrchestrator_StaleSearchResultIsDropped(t *testing.T) {
	f := newFixture(t)
	gate := make(chan struct{})
	f.store.mu.Lock()
	f.store.hold["man"] = gate
	f.store.mu.Unlock()

	f.orch.SetSearch("man")
	f.clock.Add(time.Second)
	require.Eventually(t, func() bool { return len(f.store.Searches()) == 1 }, time.Second, 5*time.Millisecond)

	f.orch.SetSearch("thor")
	f.clock.Add(time.Second)
	require.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"Thor"}, names(f.orch.Snapshot().Filtered))
	}, time.Second, 5*time.Millisecond)

	close(gate)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, []string{"Thor"}, names(f.orch.Snapshot().Filtered))
}

func TestOrchestrator_CollectionChangeReappliesFilter(t *testing.T) {
	f := newFixture(t)

	f.orch.SetSearch("canadian")
	f.clock.Add(time.Second)
	require.Eventually(t, func() bool { return len(f.store.Searches()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Zero(t, f.orch.Snapshot().FilteredCount())

	_, err := f.store.Create(context.Background(), validDraft("Wolverine"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"Wolverine"}, names(f.orch.Snapshot().Filtered))
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 6, f.orch.Snapshot().Count())
	assert.Equal(t, []string{"canadian", "canadian"}, f.store.Searches())
}

func TestOrchestrator_SelectUpdatesSelection(t *testing.T) {
	f := newFixture(t)
	thor, ok := f.orch.Snapshot().Find("2")
	require.True(t, ok)

	require.NoError(t, f.orch.Select(context.Background(), thor))

	st := f.orch.Snapshot()
	require.NotNil(t, st.Selected)
	assert.Equal(t, "Thor", st.Selected.Name)
}

func TestOrchestrator_SelectKeepsCurrentResults(t *testing.T) {
	f := newFixture(t)

	f.orch.SetSearch("thor")
	f.clock.Add(time.Second)
	require.Eventually(t, func() bool {
		return f.orch.Snapshot().Query == "thor"
	}, time.Second, 5*time.Millisecond)

	thor, ok := f.orch.Snapshot().Find("2")
	require.True(t, ok)
	require.NoError(t, f.orch.Select(context.Background(), thor))
	time.Sleep(20 * time.Millisecond)

	st := f.orch.Snapshot()
	require.NotNil(t, st.Selected)
	assert.Equal(t, "2", st.Selected.ID)
	assert.Equal(t, []string{"Thor"}, names(st.Filtered))
	assert.Equal(t, []string{"thor"}, f.store.Searches())
}

func TestOrchestrator_PendingSearchClearsOnceDispatched(t *testing.T) {
	f := newFixture(t)

	_, ok := f.orch.PendingSearch()
	assert.False(t, ok)

	f.orch.SetSearch("hulk")
	term, ok := f.orch.PendingSearch()
	require.True(t, ok)
	assert.Equal(t, "hulk", term)

	f.clock.Add(time.Second)
	require.Eventually(t, func() bool {
		_, pending := f.orch.PendingSearch()
		return !pending
	}, time.Second, 5*time.Millisecond)
}

func TestOrchestrator_EditAndSubmitUpdatesRecord(t *testing.T) {
	f := newFixture(t)
	steve, ok := f.orch.Snapshot().Find("3")
	require.True(t, ok)

	f.orch.Edit(steve)
	st := f.orch.Snapshot()
	require.True(t, st.FormOpen)
	require.NotNil(t, st.Editing)
	assert.Equal(t, "3", st.Editing.ID)

	d := steve.Draft()
	d.Name = "Captain Rogers"
	require.NoError(t, f.orch.Submit(context.Background(), d))

	st = f.orch.Snapshot()
	assert.False(t, st.FormOpen)
	assert.Nil(t, st.Editing)
	assert.Equal(t, 5, st.Count())
	got, ok := st.Find("3")
	require.True(t, ok)
	assert.Equal(t, "Captain Rogers", got.Name)
	require.NotNil(t, st.Selected)
	assert.Equal(t, "3", st.Selected.ID)
}

func TestOrchestrator_CreateNewOpensEmptyFormAfterDelay(t *testing.T) {
	f := newFixture(t)

	done := make(chan error, 1)
	go func() { done <- f.orch.CreateNew(context.Background()) }()

	var err error
	require.Eventually(t, func() bool {
		select {
		case err = <-done:
			return true
		default:
			f.clock.Add(100 * time.Millisecond)
			return false
		}
	}, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, err)

	st := f.orch.Snapshot()
	assert.True(t, st.FormOpen)
	assert.Nil(t, st.Editing)

	require.NoError(t, f.orch.Submit(context.Background(), validDraft("Wolverine")))
	st = f.orch.Snapshot()
	assert.False(t, st.FormOpen)
	assert.Equal(t, 6, st.Count())
	require.NotNil(t, st.Selected)
	assert.Equal(t, "Wolverine", st.Selected.Name)
}

func TestOrchestrator_CreateNewHonoursCancel(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, f.orch.CreateNew(ctx), context.Canceled)
	assert.False(t, f.orch.Snapshot().FormOpen)
}

func TestOrchestrator_InvalidSubmitKeepsFormOpen(t *testing.T) {
	f := newFixture(t)
	f.orch.Edit(f.orch.Snapshot().Heroes[0])

	d := validDraft("")
	err := f.orch.Submit(context.Background(), d)
	require.ErrorIs(t, err, hero.ErrInvalidDraft)
	assert.True(t, f.orch.Snapshot().FormOpen)
}

func TestOrchestrator_CloseFormDiscardsEditing(t *testing.T) {
	f := newFixture(t)
	f.orch.Edit(f.orch.Snapshot().Heroes[0])

	f.orch.CloseForm()

	st := f.orch.Snapshot()
	assert.False(t, st.FormOpen)
	assert.Nil(t, st.Editing)
	assert.Equal(t, 5, st.Count())
}

func TestOrchestrator_DeleteSelectedReassignsSelection(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.orch.Delete(context.Background(), "1"))

	st := f.orch.Snapshot()
	assert.Equal(t, 4, st.Count())
	_, found := st.Find("1")
	assert.False(t, found)
	require.NotNil(t, st.Selected)
	assert.Equal(t, "2", st.Selected.ID)
}

func TestOrchestrator_TracksBusy(t *testing.T) {
	f := newFixture(t)

	end := f.busy.Begin()
	require.Eventually(t, func() bool { return f.orch.Snapshot().Busy }, time.Second, 5*time.Millisecond)

	end()
	require.Eventually(t, func() bool { return !f.orch.Snapshot().Busy }, time.Second, 5*time.Millisecond)
}

func TestOrchestrator_OnChangeReceivesSnapshots(t *testing.T) {
	tr := busy.NewTracker()
	store := catalog.NewMemStore(seed.Builtin(), catalog.Options{Busy: tr})

	var mu sync.Mutex
	var last view.State
	o := view.New(store, view.Options{
		Clock: clock.NewMock(),
		Busy:  tr,
		OnChange: func(st view.State) {
			mu.Lock()
			last = st
			mu.Unlock()
		},
	})
	require.NoError(t, o.Start(context.Background()))
	t.Cleanup(o.Close)

	o.SetSearch("hulk")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "hulk", last.Search)
	assert.Equal(t, 5, last.Count())
}

func TestOrchestrator_CloseStopsListening(t *testing.T) {
	f := newFixture(t)
	f.orch.Close()

	_, err := f.store.Create(context.Background(), validDraft("Wolverine"))
	require.NoError(t, err)

	assert.Equal(t, 5, f.orch.Snapshot().Count())
}
