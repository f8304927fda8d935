package book

import (
	"testing"
	"time"

	"glaze/internal/common"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrder(id string, side common.Side, product, outlet string, qty int, price string) *common.Order {
	return &common.Order{
		OrderID:      id,
		Side:         side,
		ProductID:    product,
		OutletID:     outlet,
		Quantity:     qty,
		TotalQty:     qty,
		PricePerUnit: decimal.RequireFromString(price),
		Status:       common.Active,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

func TestBook_PeekBest_BidsDescendingAsksAscending(t *testing.T) {
	b := New()

	b.Insert(newOrder("bid-low", common.Buy, "p1", "o1", 5, "2.00"))
	b.Insert(newOrder("bid-high", common.Buy, "p1", "o1", 5, "3.00"))
	b.Insert(newOrder("ask-high", common.Sell, "p1", "o2", 5, "4.00"))
	b.Insert(newOrder("ask-low", common.Sell, "p1", "o2", 5, "3.50"))

	bestBid, ok := b.PeekBest("p1", common.Buy)
	require.True(t, ok)
	assert.Equal(t, "bid-high", bestBid.OrderID)

	bestAsk, ok := b.PeekBest("p1", common.Sell)
	require.True(t, ok)
	assert.Equal(t, "ask-low", bestAsk.OrderID)
}

func TestBook_PeekBest_TimePriorityWithinLevel(t *testing.T) {
	b := New()

	first := newOrder("ask-1", common.Sell, "p1", "o1", 5, "2.00")
	second := newOrder("ask-2", common.Sell, "p1", "o1", 5, "2.00")
	b.Insert(first)
	b.Insert(second)

	best, ok := b.PeekBest("p1", common.Sell)
	require.True(t, ok)
	assert.Equal(t, "ask-1", best.OrderID, "earlier order at the same price must be first")
}

func TestBook_Pop_RemovesOrderAndEmptyLevel(t *testing.T) {
	b := New()
	o := newOrder("ask-1", common.Sell, "p1", "o1", 5, "2.00")
	b.Insert(o)

	b.Pop(o)

	_, ok := b.PeekBest("p1", common.Sell)
	assert.False(t, ok, "level should be gone once its only order is popped")
}

func TestBook_BestCounter_SkipsSameOutlet(t *testing.T) {
	b := New()
	b.Insert(newOrder("ask-self", common.Sell, "p1", "outlet-x", 5, "2.00"))
	b.Insert(newOrder("ask-other", common.Sell, "p1", "outlet-y", 5, "2.50"))

	counter, ok := b.BestCounter("p1", common.Sell, "outlet-x")
	require.True(t, ok)
	assert.Equal(t, "ask-other", counter.OrderID)
}

func TestBook_BestCounter_NoneEligible(t *testing.T) {
	b := New()
	b.Insert(newOrder("ask-self", common.Sell, "p1", "outlet-x", 5, "2.00"))

	_, ok := b.BestCounter("p1", common.Sell, "outlet-x")
	assert.False(t, ok)
}

func TestBook_Snapshot_OmitsOtherProducts(t *testing.T) {
	b := New()
	b.Insert(newOrder("ask-p1", common.Sell, "p1", "o1", 5, "2.00"))
	b.Insert(newOrder("ask-p2", common.Sell, "p2", "o1", 5, "2.00"))

	snap := b.Snapshot("p1", false)
	require.Len(t, snap.Asks, 1)
	assert.Equal(t, "ask-p1", snap.Asks[0].OrderID)
}
