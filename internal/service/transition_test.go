package service

import (
	"context"
	"errors"
	"testing"

	"github.com/abdallah244/store-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placeOrder(t *testing.T, f *fixture, items ...CartItemRequest) *models.Order {
	t.Helper()
	order, err := f.svc.CreateOrder(context.Background(), "user-1", cartWith(items...))
	require.NoError(t, err)
	return order
}

func TestApproveDeductsStock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.catalog.products["p-1"] = &models.Product{ID: "p-1", Name: "T-Shirt", Stock: 5}
	f.catalog.products["p-2"] = &models.Product{ID: "p-2", Name: "Hoodie", Stock: 10}

	order := placeOrder(t, f,
		CartItemRequest{ProductID: "p-1", ProductName: "T-Shirt", Quantity: 3, UnitPrice: 1000},
		CartItemRequest{ProductID: "p-2", ProductName: "Hoodie", Quantity: 2, UnitPrice: 2500},
	)

	updated, err := f.svc.TransitionOrder(ctx, "admin-1", order.ID, models.OrderStatusApproved, "")
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusApproved, updated.Status)
	assert.Equal(t, 2, f.catalog.products["p-1"].Stock)
	assert.Equal(t, 8, f.catalog.products["p-2"].Stock)
	assert.Equal(t, 1, f.publisher.countByType(models.EventTypeOrderApproved))
}

func TestApproveInsufficientStock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.catalog.products["p-1"] = &models.Product{ID: "p-1", Name: "T-Shirt", Stock: 2}

	order := placeOrder(t, f,
		CartItemRequest{ProductID: "p-1", ProductName: "T-Shirt", Quantity: 3, UnitPrice: 1000},
	)

	_, err := f.svc.TransitionOrder(ctx, "admin-1", order.ID, models.OrderStatusApproved, "")

	var stockErr *models.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Len(t, stockErr.Shortfalls, 1)
	assert.Equal(t, "p-1", stockErr.Shortfalls[0].ProductID)
	assert.Equal(t, "T-Shirt", stockErr.Shortfalls[0].ProductName)
	assert.Equal(t, 3, stockErr.Shortfalls[0].Required)
	assert.Equal(t, 2, stockErr.Shortfalls[0].Available)

	assert.Equal(t, 2, f.catalog.products["p-1"].Stock, "stock must be untouched")
	assert.Equal(t, models.OrderStatusPending, f.orders.orders[order.ID].Status)
	assert.Zero(t, f.publisher.countByType(models.EventTypeOrderApproved))
}

func TestApproveReportsEveryShortItem(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.catalog.products["p-1"] = &models.Product{ID: "p-1", Name: "T-Shirt", Stock: 1}
	f.catalog.products["p-2"] = &models.Product{ID: "p-2", Name: "Hoodie", Stock: 100}
	// p-3 missing from the catalog entirely

	order := placeOrder(t, f,
		CartItemRequest{ProductID: "p-1", ProductName: "T-Shirt", Quantity: 5, UnitPrice: 1000},
		CartItemRequest{ProductID: "p-2", ProductName: "Hoodie", Quantity: 2, UnitPrice: 2500},
		CartItemRequest{ProductID: "p-3", ProductName: "Cap", Quantity: 1, UnitPrice: 300},
	)

	_, err := f.svc.TransitionOrder(ctx, "admin-1", order.ID, models.OrderStatusApproved, "")

	var stockErr *models.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Len(t, stockErr.Shortfalls, 2)
	assert.Equal(t, models.StockShortfall{
		ProductID: "p-1", ProductName: "T-Shirt", Required: 5, Available: 1,
	}, stockErr.Shortfalls[0])
	assert.Equal(t, models.StockShortfall{
		ProductID: "p-3", ProductName: "Cap", Required: 1, Available: 0,
	}, stockErr.Shortfalls[1])

	assert.Equal(t, 100, f.catalog.products["p-2"].Stock, "no partial deduction")
}

func TestReapproveIsStockNoOp(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.catalog.products["p-1"] = &models.Product{ID: "p-1", Name: "T-Shirt", Stock: 5}

	order := placeOrder(t, f,
		CartItemRequest{ProductID: "p-1", ProductName: "T-Shirt", Quantity: 3, UnitPrice: 1000},
	)

	_, err := f.svc.TransitionOrder(ctx, "admin-1", order.ID, models.OrderStatusApproved, "")
	require.NoError(t, err)
	require.Equal(t, 2, f.catalog.products["p-1"].Stock)

	_, err = f.svc.TransitionOrder(ctx, "admin-1", order.ID, models.OrderStatusApproved, "")
	require.NoError(t, err)

	assert.Equal(t, 2, f.catalog.products["p-1"].Stock, "re-approval must not double-deduct")
	assert.Equal(t, 1, f.publisher.countByType(models.EventTypeOrderApproved), "no second notification")
}

func TestApproveRollsBackOnConcurrentDeduction(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.catalog.products["p-1"] = &models.Product{ID: "p-1", Name: "T-Shirt", Stock: 5}
	f.catalog.products["p-2"] = &models.Product{ID: "p-2", Name: "Hoodie", Stock: 5}
	// p-2 passes the pre-check but loses its stock to a concurrent approval
	// before the decrement lands
	f.catalog.stolen["p-2"] = true

	order := placeOrder(t, f,
		CartItemRequest{ProductID: "p-1", ProductName: "T-Shirt", Quantity: 2, UnitPrice: 1000},
		CartItemRequest{ProductID: "p-2", ProductName: "Hoodie", Quantity: 2, UnitPrice: 2500},
	)

	_, err := f.svc.TransitionOrder(ctx, "admin-1", order.ID, models.OrderStatusApproved, "")

	var stockErr *models.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "p-2", stockErr.Shortfalls[0].ProductID)
	assert.Equal(t, 0, stockErr.Shortfalls[0].Available, "shortfall must report the stock left after the race")

	assert.Equal(t, 5, f.catalog.products["p-1"].Stock, "earlier deduction must be compensated")
	assert.Equal(t, models.OrderStatusPending, f.orders.orders[order.ID].Status)
}

func TestApproveRestoresStockWhenStatusWriteFails(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.catalog.products["p-1"] = &models.Product{ID: "p-1", Name: "T-Shirt", Stock: 5}

	order := placeOrder(t, f,
		CartItemRequest{ProductID: "p-1", ProductName: "T-Shirt", Quantity: 3, UnitPrice: 1000},
	)

	f.orders.failStatusUpdate = errors.New("connection reset")

	_, err := f.svc.TransitionOrder(ctx, "admin-1", order.ID, models.OrderStatusApproved, "")
	require.Error(t, err)

	assert.Equal(t, 5, f.catalog.products["p-1"].Stock, "deduction must be compensated when the status write fails")
	assert.Equal(t, models.OrderStatusPending, f.orders.orders[order.ID].Status)
	assert.Zero(t, f.publisher.countByType(models.EventTypeOrderApproved))
}

func TestRejectHasNoStockEffect(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.catalog.products["p-1"] = &models.Product{ID: "p-1", Name: "T-Shirt", Stock: 5}

	order := placeOrder(t, f,
		CartItemRequest{ProductID: "p-1", ProductName: "T-Shirt", Quantity: 3, UnitPrice: 1000},
	)

	updated, err := f.svc.TransitionOrder(ctx, "admin-1", order.ID, models.OrderStatusRejected, "out of season")
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusRejected, updated.Status)
	assert.Equal(t, "out of season", updated.AdminNotes)
	assert.Equal(t, 5, f.catalog.products["p-1"].Stock)
	assert.Equal(t, 1, f.publisher.countByType(models.EventTypeOrderRejected))
}

func TestTransitionRequiresAdmin(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	order := placeOrder(t, f,
		CartItemRequest{ProductID: "p-1", ProductName: "T-Shirt", Quantity: 1, UnitPrice: 1000},
	)

	_, err := f.svc.TransitionOrder(ctx, "user-1", order.ID, models.OrderStatusApproved, "")
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = f.svc.TransitionOrder(ctx, "nobody", order.ID, models.OrderStatusApproved, "")
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestTransitionOrderNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.svc.TransitionOrder(context.Background(), "admin-1", "missing", models.OrderStatusApproved, "")
	assert.ErrorIs(t, err, models.ErrOrderNotFound)
}

func TestTransitionInvalidEdges(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	cases := []struct {
		from, to string
	}{
		{models.OrderStatusCancelled, models.OrderStatusApproved},
		{models.OrderStatusRejected, models.OrderStatusApproved},
		{models.OrderStatusCompleted, models.OrderStatusPending},
		{models.OrderStatusApproved, models.OrderStatusPending},
	}

	for _, tc := range cases {
		order := placeOrder(t, f,
			CartItemRequest{ProductID: "p-1", ProductName: "T-Shirt", Quantity: 1, UnitPrice: 1000},
		)
		f.orders.orders[order.ID].Status = tc.from

		_, err := f.svc.TransitionOrder(ctx, "admin-1", order.ID, tc.to, "")
		assert.ErrorIs(t, err, models.ErrInvalidTransition, "%s -> %s must be rejected", tc.from, tc.to)
	}
}

func TestTransitionUnknownStatus(t *testing.T) {
	f := newFixture()

	order := placeOrder(t, f,
		CartItemRequest{ProductID: "p-1", ProductName: "T-Shirt", Quantity: 1, UnitPrice: 1000},
	)

	_, err := f.svc.TransitionOrder(context.Background(), "admin-1", order.ID, "shipped", "")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestTransitionReappliesNotes(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.catalog.products["p-1"] = &models.Product{ID: "p-1", Name: "T-Shirt", Stock: 5}

	order := placeOrder(t, f,
		CartItemRequest{ProductID: "p-1", ProductName: "T-Shirt", Quantity: 1, UnitPrice: 1000},
	)

	_, err := f.svc.TransitionOrder(ctx, "admin-1", order.ID, models.OrderStatusApproved, "")
	require.NoError(t, err)

	// Same-status transition only records the notes
	updated, err := f.svc.TransitionOrder(ctx, "admin-1", order.ID, models.OrderStatusApproved, "call before delivery")
	require.NoError(t, err)
	assert.Equal(t, "call before delivery", updated.AdminNotes)
	assert.Equal(t, "call before delivery", f.orders.orders[order.ID].AdminNotes)
	assert.Equal(t, 4, f.catalog.products["p-1"].Stock)
}

func TestCanTransitionTable(t *testing.T) {
	assert.True(t, canTransition(models.OrderStatusPending, models.OrderStatusApproved))
	assert.True(t, canTransition(models.OrderStatusPending, models.OrderStatusRejected))
	assert.True(t, canTransition(models.OrderStatusPending, models.OrderStatusCancelled))
	assert.True(t, canTransition(models.OrderStatusApproved, models.OrderStatusCompleted))
	assert.True(t, canTransition(models.OrderStatusApproved, models.OrderStatusApproved))

	assert.False(t, canTransition(models.OrderStatusCancelled, models.OrderStatusApproved))
	assert.False(t, canTransition(models.OrderStatusRejected, models.OrderStatusCompleted))
	assert.False(t, canTransition(models.OrderStatusCompleted, models.OrderStatusPending))
}
