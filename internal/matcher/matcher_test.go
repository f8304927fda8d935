package matcher

import (
	"sync"
	"testing"
	"time"

	"glaze/internal/book"
	"glaze/internal/broadcast"
	"glaze/internal/common"
	"glaze/internal/ledger"
	"glaze/internal/store"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturingSink records every event it receives for test assertions.
type capturingSink struct {
	mu     sync.Mutex
	events []broadcast.Event
}

func (c *capturingSink) record(ev broadcast.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *capturingSink) OnTradeExecuted(ev broadcast.Event)   { c.record(ev) }
func (c *capturingSink) OnBookUpdated(ev broadcast.Event)     { c.record(ev) }
func (c *capturingSink) OnCustomerPurchased(ev broadcast.Event) { c.record(ev) }
func (c *capturingSink) OnError(ev broadcast.Event)           { c.record(ev) }

func (c *capturingSink) byKind(kind broadcast.EventKind) []broadcast.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []broadcast.Event
	for _, ev := range c.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

type harness struct {
	m     *Matcher
	b     *book.Book
	l     *ledger.Ledger
	st    store.Store
	sink  *capturingSink
	bcast *broadcast.Broadcaster
}

func newHarness(t *testing.T, balances map[string]string) *harness {
	t.Helper()

	st := store.NewMemStore()
	b := book.New()
	bc := broadcast.New()
	sink := &capturingSink{}
	bc.Register("test", sink)
	t.Cleanup(bc.Shutdown)

	l := ledger.New(st, decimal.RequireFromString("2.00"), decimal.RequireFromString("10000.00"), "supplier-factory", zerolog.Nop())

	for id, bal := range balances {
		require.NoError(t, l.RegisterOutlet(common.Outlet{
			OutletID: id, Name: id, Balance: decimal.RequireFromString(bal),
			MarginPercent: decimal.RequireFromString("25.00"), IsOpen: true, CreatedAt: time.Now(),
		}))
	}
	require.NoError(t, l.Rehydrate())

	products := []common.Product{{ProductID: "donut", Name: "Donut"}}
	m := New(b, l, bc, st, products, zerolog.Nop())

	return &harness{m: m, b: b, l: l, st: st, sink: sink, bcast: bc}
}

func waitForEvents(t *testing.T, sink *capturingSink, kind broadcast.EventKind, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(sink.byKind(kind)) >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d events of kind %v", n, kind)
}

func TestMatcher_SimpleCross(t *testing.T) {
	h := newHarness(t, map[string]string{"seller": "10000.00", "buyer": "10000.00"})

	ask, err := h.m.NewOrder(common.Sell, "donut", "seller", 10, decimal.RequireFromString("3.00"))
	require.NoError(t, err)

	bid, err := h.m.NewOrder(common.Buy, "donut", "buyer", 4, decimal.RequireFromString("3.00"))
	require.NoError(t, err)

	waitForEvents(t, h.sink, broadcast.TradeExecuted, 1)

	restingAsk, ok := h.b.PeekBest("donut", common.Sell)
	require.True(t, ok)
	assert.Equal(t, ask.OrderID, restingAsk.OrderID)
	assert.Equal(t, 6, restingAsk.Quantity)
	assert.Equal(t, common.PartiallyFilled, restingAsk.Status)

	assert.Equal(t, common.Filled, bid.Status)

	trades := h.sink.byKind(broadcast.TradeExecuted)
	require.Len(t, trades, 1)
	assert.True(t, trades[0].Trade.Quantity == 4)
	assert.True(t, trades[0].Trade.PricePerUnit.Equal(decimal.RequireFromString("3.00")))
}

func TestMatcher_PriceImprovement(t *testing.T) {
	h := newHarness(t, map[string]string{"seller": "10000.00", "buyer": "10000.00"})

	_, err := h.m.NewOrder(common.Sell, "donut", "seller", 5, decimal.RequireFromString("2.50"))
	require.NoError(t, err)

	bid, err := h.m.NewOrder(common.Buy, "donut", "buyer", 5, decimal.RequireFromString("3.00"))
	require.NoError(t, err)

	waitForEvents(t, h.sink, broadcast.TradeExecuted, 1)

	trades := h.sink.byKind(broadcast.TradeExecuted)
	require.Len(t, trades, 1)
	assert.True(t, trades[0].Trade.PricePerUnit.Equal(decimal.RequireFromString("2.50")), "execution price must be the resting order's price")
	assert.Equal(t, common.Filled, bid.Status)
}

func TestMatcher_TimePriority(t *testing.T) {
	h := newHarness(t, map[string]string{"seller": "10000.00", "buyer": "10000.00"})

	ask1, err := h.m.NewOrder(common.Sell, "donut", "seller", 5, decimal.RequireFromString("2.00"))
	require.NoError(t, err)
	ask2, err := h.m.NewOrder(common.Sell, "donut", "seller", 5, decimal.RequireFromString("2.00"))
	require.NoError(t, err)

	bid, err := h.m.NewOrder(common.Buy, "donut", "buyer", 7, decimal.RequireFromString("2.00"))
	require.NoError(t, err)

	waitForEvents(t, h.sink, broadcast.TradeExecuted, 2)

	assert.Equal(t, common.Filled, bid.Status)
	_ = ask1
	_ = ask2

	restingAsk, ok := h.b.PeekBest("donut", common.Sell)
	require.True(t, ok, "ask2 should still be resting, partially filled")
	assert.Equal(t, ask2.OrderID, restingAsk.OrderID)
	assert.Equal(t, 3, restingAsk.Quantity, "ask2 had 5, filled for the bid's remaining 2 after ask1 absorbed 5 of 7")
}

func TestMatcher_SelfTradeSkip(t *testing.T) {
	h := newHarness(t, map[string]string{"outlet-x": "10000.00"})

	_, err := h.m.NewOrder(common.Sell, "donut", "outlet-x", 5, decimal.RequireFromString("2.00"))
	require.NoError(t, err)

	bid, err := h.m.NewOrder(common.Buy, "donut", "outlet-x", 5, decimal.RequireFromString("2.50"))
	require.NoError(t, err)

	assert.Equal(t, common.Active, bid.Status)
	assert.Empty(t, h.sink.byKind(broadcast.TradeExecuted))

	restingBid, ok := h.b.PeekBest("donut", common.Buy)
	require.True(t, ok)
	assert.Equal(t, bid.OrderID, restingBid.OrderID)
}

func TestMatcher_OverdrawAbort(t *testing.T) {
	h := newHarness(t, map[string]string{"seller": "10000.00", "buyer": "5.00"})

	ask, err := h.m.NewOrder(common.Sell, "donut", "seller", 1, decimal.RequireFromString("10.00"))
	require.NoError(t, err)

	bid, err := h.m.NewOrder(common.Buy, "donut", "buyer", 1, decimal.RequireFromString("10.00"))
	require.NoError(t, err)

	assert.Equal(t, common.Cancelled, bid.Status)
	assert.Empty(t, h.sink.byKind(broadcast.TradeExecuted))

	waitForEvents(t, h.sink, broadcast.ErrorEvent, 1)
	errs := h.sink.byKind(broadcast.ErrorEvent)
	require.Len(t, errs, 1)
	assert.Equal(t, "matcher", errs[0].Source)

	restingAsk, ok := h.b.PeekBest("donut", common.Sell)
	require.True(t, ok)
	assert.Equal(t, ask.OrderID, restingAsk.OrderID)
	assert.Equal(t, 1, restingAsk.Quantity, "ask must be unchanged by the aborted fill")
}
