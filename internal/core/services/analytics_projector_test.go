package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventlane/ticket-inventory/internal/core/domain"
	"github.com/eventlane/ticket-inventory/internal/core/services"
)

func TestAvailability(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	ctx := context.Background()
	eventID := mustCreate(t, engine, 100, "20")

	token, err := engine.Reserve(ctx, services.ReserveInput{EventID: eventID, Quantity: 40})
	require.NoError(t, err)
	_, err = engine.Confirm(ctx, token.ID)
	require.NoError(t, err)

	projector := services.NewAnalyticsProjector(store, store, nil)
	av, err := projector.Availability(ctx, eventID)
	require.NoError(t, err)

	assert.Equal(t, 100, av.TotalCapacity)
	assert.Equal(t, 60, av.Remaining)
	assert.InDelta(t, 0.4, av.PercentageSold, 1e-9)
	assert.False(t, av.SoldOut)
}

func TestAvailability_SoldOutAndZeroCapacity(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	ctx := context.Background()
	projector := services.NewAnalyticsProjector(store, store, nil)

	soldOut := mustCreate(t, engine, 2, "10")
	token, err := engine.Reserve(ctx, services.ReserveInput{EventID: soldOut, Quantity: 2})
	require.NoError(t, err)
	_, err = engine.Confirm(ctx, token.ID)
	require.NoError(t, err)

	av, err := projector.Availability(ctx, soldOut)
	require.NoError(t, err)
	assert.True(t, av.SoldOut)
	assert.Equal(t, 0, av.Remaining)

	empty := mustCreate(t, engine, 0, "10")
	av, err = projector.Availability(ctx, empty)
	require.NoError(t, err)
	assert.Equal(t, float64(0), av.PercentageSold, "zero-capacity event is 0%% sold")
	assert.True(t, av.SoldOut)
}

func TestSummary_CancellationLog(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	ctx := context.Background()
	eventID := mustCreate(t, engine, 50, "10")

	token, err := engine.Reserve(ctx, services.ReserveInput{EventID: eventID, Quantity: 5})
	require.NoError(t, err)
	_, err = engine.Confirm(ctx, token.ID)
	require.NoError(t, err)

	require.NoError(t, engine.Cancel(ctx, services.CancelInput{
		EventID: eventID, Quantity: 2, RefundAmount: decimal.RequireFromString("20"), ActorRef: "admin:alice",
	}))
	require.NoError(t, engine.Cancel(ctx, services.CancelInput{
		EventID: eventID, Quantity: 1, RefundAmount: decimal.RequireFromString("10"), ActorRef: "admin:bob",
	}))

	projector := services.NewAnalyticsProjector(store, store, nil)
	an, err := projector.Summary(ctx, eventID)
	require.NoError(t, err)

	assert.Equal(t, 2, an.TicketsSold)
	assert.True(t, an.GrossRevenue.Equal(decimal.RequireFromString("50")))
	assert.True(t, an.TotalRefunded.Equal(decimal.RequireFromString("30")))
	assert.True(t, an.NetRevenue.Equal(decimal.RequireFromString("20")))

	require.Len(t, an.Cancellations, 2)
	assert.Equal(t, "admin:alice", an.Cancellations[0].ActorRef)
	assert.Equal(t, 2, an.Cancellations[0].Quantity)
	assert.Equal(t, "admin:bob", an.Cancellations[1].ActorRef)
	assert.True(t, an.Cancellations[1].RefundAmount.Equal(decimal.RequireFromString("10")))
}

func TestSummary_EmptyEvent(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	ctx := context.Background()
	eventID := mustCreate(t, engine, 10, "5")

	projector := services.NewAnalyticsProjector(store, store, nil)
	an, err := projector.Summary(ctx, eventID)
	require.NoError(t, err)

	assert.Equal(t, 0, an.TicketsSold)
	assert.True(t, an.GrossRevenue.IsZero())
	assert.True(t, an.NetRevenue.IsZero())
	assert.Empty(t, an.Cancellations)
}

func TestSummary_UnknownEvent(t *testing.T) {
	_, store, _ := newTestEngine(t)
	projector := services.NewAnalyticsProjector(store, store, nil)

	_, err := projector.Summary(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrInventoryNotFound)
}

func TestProjector_CacheLifecycle(t *testing.T) {
	engine, store, cache := newTestEngine(t)
	ctx := context.Background()
	eventID := mustCreate(t, engine, 10, "5")

	projector := services.NewAnalyticsProjector(store, store, cache)

	av, err := projector.Availability(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, 10, av.Remaining)

	cached, ok, err := cache.GetAvailability(ctx, eventID)
	require.NoError(t, err)
	require.True(t, ok, "projector populates the cache")
	assert.Equal(t, av, cached)

	// A mutation invalidates; the next read reflects the new state.
	_, err = engine.Reserve(ctx, services.ReserveInput{EventID: eventID, Quantity: 4})
	require.NoError(t, err)

	_, ok, err = cache.GetAvailability(ctx, eventID)
	require.NoError(t, err)
	assert.False(t, ok, "engine drops the snapshot on mutation")

	av, err = projector.Availability(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, 6, av.Remaining)
}
