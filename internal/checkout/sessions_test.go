package checkout_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_shop/internal/checkout"
	"github.com/GTDGit/gtd_shop/internal/models"
)

func TestSessionsPersistAcrossRequests(t *testing.T) {
	fx := newFixture(t)
	s := checkout.NewSessions(newMemoryDrafts(), fx.products, fx.orders)

	v, err := s.Start(fx.ctx)
	require.NoError(t, err)
	assert.Equal(t, checkout.Browsing, v.State)

	v, err = s.Do(fx.ctx, v.ID, func(f *checkout.Flow) error { return f.SelectProduct(fx.ctx, fx.productID) })
	require.NoError(t, err)
	require.NotNil(t, v.Product)
	assert.Equal(t, "Red Shirt", v.Product.Title)

	v, err = s.Do(fx.ctx, v.ID, func(f *checkout.Flow) error { return f.ToAddress("") })
	assert.True(t, checkout.IsValidation(err))
	assert.Equal(t, checkout.SizeQty, v.State)

	v, err = s.Do(fx.ctx, v.ID, func(f *checkout.Flow) error { return f.ToAddress("S") })
	require.NoError(t, err)
	v, err = s.Do(fx.ctx, v.ID, func(f *checkout.Flow) error {
		_, err := f.ToSummary(fx.ctx, validAddress)
		return err
	})
	require.NoError(t, err)
	require.NotNil(t, v.Summary)
	assert.Equal(t, float64(549), v.Summary.Total)

	v, err = s.Do(fx.ctx, v.ID, func(f *checkout.Flow) error {
		_, err := f.Confirm(fx.ctx, models.PaymentPrepaid)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, checkout.Confirmed, v.State)
	assert.NotEmpty(t, v.OrderID)

	got, err := s.Get(fx.ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, v.OrderID, got.OrderID)
}

func TestSessionsConfirmSurvivesDraftSaveFailure(t *testing.T) {
	fx := newFixture(t)
	drafts := &flakyDrafts{memoryDrafts: newMemoryDrafts()}
	s := checkout.NewSessions(drafts, fx.products, fx.orders)

	v, err := s.Start(fx.ctx)
	require.NoError(t, err)
	id := v.ID
	_, err = s.Do(fx.ctx, id, func(f *checkout.Flow) error { return f.SelectProduct(fx.ctx, fx.productID) })
	require.NoError(t, err)
	_, err = s.Do(fx.ctx, id, func(f *checkout.Flow) error { return f.ToAddress("S") })
	require.NoError(t, err)
	_, err = s.Do(fx.ctx, id, func(f *checkout.Flow) error {
		_, err := f.ToSummary(fx.ctx, validAddress)
		return err
	})
	require.NoError(t, err)

	confirm := func(f *checkout.Flow) error {
		_, err := f.Confirm(fx.ctx, models.PaymentCOD)
		return err
	}
	drafts.failNext = true
	v, err = s.Do(fx.ctx, id, confirm)
	require.NoError(t, err)
	assert.Equal(t, checkout.Confirmed, v.State)
	first := v.OrderID

	// The stored draft still sits on the summary step; confirming again
	// rewrites the same order.
	stale, err := s.Get(fx.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, checkout.Summary, stale.State)
	v, err = s.Do(fx.ctx, id, confirm)
	require.NoError(t, err)
	assert.Equal(t, first, v.OrderID)

	orders, err := fx.orders.List(fx.ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestSessionsSaveFailureBeforeConfirmIsReported(t *testing.T) {
	fx := newFixture(t)
	drafts := &flakyDrafts{memoryDrafts: newMemoryDrafts()}
	s := checkout.NewSessions(drafts, fx.products, fx.orders)

	v, err := s.Start(fx.ctx)
	require.NoError(t, err)
	drafts.failNext = true
	_, err = s.Do(fx.ctx, v.ID, func(f *checkout.Flow) error { return f.SelectProduct(fx.ctx, fx.productID) })
	assert.EqualError(t, err, "redis down")
}

func TestSessionsUnknownID(t *testing.T) {
	fx := newFixture(t)
	s := checkout.NewSessions(newMemoryDrafts(), fx.products, fx.orders)
	_, err := s.Get(fx.ctx, "nope")
	assert.ErrorIs(t, err, checkout.ErrSessionNotFound)
}

func TestStateJSON(t *testing.T) {
	b, err := json.Marshal(checkout.Summary)
	require.NoError(t, err)
	assert.JSONEq(t, `"summary"`, string(b))

	var s checkout.State
	require.NoError(t, json.Unmarshal([]byte(`"size_qty"`), &s))
	assert.Equal(t, checkout.SizeQty, s)
	assert.Error(t, json.Unmarshal([]byte(`"nowhere"`), &s))
}
