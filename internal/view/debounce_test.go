package view

import (
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fired struct {
	mu    sync.Mutex
	terms []string
}

func (f *fired) add(term string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.terms = append(f.terms, term)
}

func (f *fired) get() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.terms...)
}

func TestDebouncer_OnlyLastTermFires(t *testing.T) {
	mock := clock.NewMock()
	var f fired
	d := newDebouncer(mock, 500*time.Millisecond, f.add)

	for _, term := range []string{"s", "sp", "spi"} {
		d.Push(term)
		mock.Add(100 * time.Millisecond)
	}

	pending, ok := d.Pending()
	require.True(t, ok)
	assert.Equal(t, "spi", pending)
	assert.Empty(t, f.get())

	mock.Add(500 * time.Millisecond)
	require.Eventually(t, func() bool { return len(f.get()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"spi"}, f.get())

	_, ok = d.Pending()
	assert.False(t, ok)
}

func TestDebouncer_SameTermDoesNotFireTwice(t *testing.T) {
	mock := clock.NewMock()
	var f fired
	d := newDebouncer(mock, 500*time.Millisecond, f.add)

	d.Push("thor")
	mock.Add(time.Second)
	require.Eventually(t, func() bool { return len(f.get()) == 1 }, time.Second, 5*time.Millisecond)

	// Typing away and back inside one quiet period ends on the same term.
	d.Push("tho")
	d.Push("thor")
	mock.Add(time.Second)

	d.Push("iron")
	mock.Add(time.Second)
	require.Eventually(t, func() bool { return len(f.get()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"thor", "iron"}, f.get())
}

func TestDebouncer_StopDiscardsPending(t *testing.T) {
	mock := clock.NewMock()
	var f fired
	d := newDebouncer(mock, 500*time.Millisecond, f.add)

	d.Push("x")
	d.Stop()
	mock.Add(time.Second)
	time.Sleep(20 * time.Millisecond)

	assert.Empty(t, f.get())
	_, ok := d.Pending()
	assert.False(t, ok)
}
