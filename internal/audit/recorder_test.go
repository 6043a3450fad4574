package audit

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmaops/pkg/domain"
)

// brokenStore refuses every append, simulating a lost audit table.
type brokenStore struct{ InMemoryStore }

func (*brokenStore) Append(context.Context, Entry) error {
	return errors.New("disk on fire")
}

func TestRecorder_Record(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)

	t.Run("appends with actor and details", func(t *testing.T) {
		store := NewInMemoryStore()
		recorder := NewRecorder(store, logger, nil)
		actorID := domain.NewUserID()

		err := recorder.Record(ctx, &actorID, ActionOrderCreated, map[string]any{"orderId": "x"})
		require.NoError(t, err)

		entries := store.All()
		require.Len(t, entries, 1)
		assert.Equal(t, ActionOrderCreated, entries[0].Action)
		require.NotNil(t, entries[0].ActorID)
		assert.Equal(t, actorID, *entries[0].ActorID)
		assert.Equal(t, "x", entries[0].Details["orderId"])
		assert.False(t, entries[0].CreatedAt.IsZero())
	})

	t.Run("nil actor records a system action", func(t *testing.T) {
		store := NewInMemoryStore()
		recorder := NewRecorder(store, logger, nil)

		require.NoError(t, recorder.Record(ctx, nil, ActionChecklistGenerated, nil))
		require.Len(t, store.All(), 1)
		assert.Nil(t, store.All()[0].ActorID)
	})

	t.Run("empty action is refused", func(t *testing.T) {
		recorder := NewRecorder(NewInMemoryStore(), logger, nil)
		assert.Error(t, recorder.Record(ctx, nil, "", nil))
	})

	t.Run("append failure propagates, never swallowed", func(t *testing.T) {
		recorder := NewRecorder(&brokenStore{}, logger, nil)
		err := recorder.Record(ctx, nil, ActionOrderCreated, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "audit persistence failed")
	})
}

func TestInMemoryStore_Query(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	actorA := domain.NewUserID()
	actorB := domain.NewUserID()

	base := time.Now().Add(-time.Hour)
	seed := []Entry{
		{ID: domain.NewEntryID(), Action: ActionOrderCreated, ActorID: &actorA, CreatedAt: base},
		{ID: domain.NewEntryID(), Action: ActionDocumentApproved, ActorID: &actorB, CreatedAt: base.Add(time.Minute)},
		{ID: domain.NewEntryID(), Action: ActionDocumentApproved, ActorID: &actorA, CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, e := range seed {
		require.NoError(t, store.Append(ctx, e))
	}

	t.Run("filters by action", func(t *testing.T) {
		out, err := store.Query(ctx, Filter{Action: ActionDocumentApproved})
		require.NoError(t, err)
		assert.Len(t, out, 2)
	})

	t.Run("filters by actor", func(t *testing.T) {
		out, err := store.Query(ctx, Filter{ActorID: &actorB})
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, ActionDocumentApproved, out[0].Action)
	})

	t.Run("newest first with limit", func(t *testing.T) {
		out, err := store.Query(ctx, Filter{Limit: 2})
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.True(t, out[0].CreatedAt.After(out[1].CreatedAt))
	})

	t.Run("time window", func(t *testing.T) {
		out, err := store.Query(ctx, Filter{From: base.Add(30 * time.Second)})
		require.NoError(t, err)
		assert.Len(t, out, 2)
	})
}
