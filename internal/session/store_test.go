package session

import (
	"strings"
	"testing"
	"time"

	"ridepulse/internal/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDataset(t *testing.T) *pipeline.Dataset {
	t.Helper()
	p := pipeline.New(pipeline.NewStatusSets(
		[]string{"Completed"}, nil, nil, nil,
	))
	ds, err := p.Run(strings.NewReader(
		"Date,Time,Booking Status,Booking Value\n2024-03-01,10:00,Completed,10\n"))
	require.NoError(t, err)
	return ds
}

func TestStorePutGet(t *testing.T) {
	store := NewStore(time.Hour, 4)
	ds := newDataset(t)

	require.NoError(t, store.Put("s1", ds))
	got, ok := store.Get("s1")
	assert.True(t, ok)
	assert.Same(t, ds, got)
	assert.Equal(t, 1, store.Len())
}

func TestStoreMissing(t *testing.T) {
	store := NewStore(time.Hour, 4)
	_, ok := store.Get("nope")
	assert.False(t, ok)
}

func TestStoreReplace(t *testing.T) {
	store := NewStore(time.Hour, 4)
	first := newDataset(t)
	second := newDataset(t)

	require.NoError(t, store.Put("s1", first))
	require.NoError(t, store.Put("s1", second))

	got, ok := store.Get("s1")
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.Equal(t, 1, store.Len())
}

func TestStoreTTLExpiry(t *testing.T) {
	store := NewStore(time.Minute, 4)
	now := time.Now()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Put("s1", newDataset(t)))

	now = now.Add(2 * time.Minute)
	_, ok := store.Get("s1")
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestStoreEvictsOldestAtCap(t *testing.T) {
	store := NewStore(time.Hour, 2)
	now := time.Now()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Put("old", newDataset(t)))
	now = now.Add(time.Second)
	require.NoError(t, store.Put("new", newDataset(t)))
	now = now.Add(time.Second)
	require.NoError(t, store.Put("newest", newDataset(t)))

	_, ok := store.Get("old")
	assert.False(t, ok, "oldest session is evicted at the cap")
	_, ok = store.Get("newest")
	assert.True(t, ok)
}

func TestStoreDelete(t *testing.T) {
	store := NewStore(time.Hour, 4)
	require.NoError(t, store.Put("s1", newDataset(t)))
	store.Delete("s1")
	assert.Equal(t, 0, store.Len())
}
