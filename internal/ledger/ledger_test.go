package ledger

import (
	"testing"
	"time"

	"glaze/internal/common"
	"glaze/internal/store"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	st := store.NewMemStore()
	l := New(st, decimal.RequireFromString("2.00"), decimal.RequireFromString("10000.00"), "supplier-factory", zerolog.Nop())
	return l
}

func TestLedger_SellToCustomer_MarginMath(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.RegisterOutlet(common.Outlet{
		OutletID: "outlet-1", Balance: decimal.RequireFromString("10000.00"),
		MarginPercent: decimal.RequireFromString("25.00"), IsOpen: true, CreatedAt: time.Now(),
	}))
	require.NoError(t, l.SetInventory("outlet-1", "donut", 10))

	sale, err := l.SellToCustomer("outlet-1", "donut", 4)
	require.NoError(t, err)

	assert.True(t, sale.CostBasis.Equal(decimal.RequireFromString("8.00")))
	assert.True(t, sale.Revenue.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, sale.Profit.Equal(decimal.RequireFromString("2.00")))

	outlet, ok := l.Outlet("outlet-1")
	require.True(t, ok)
	assert.True(t, outlet.Balance.Equal(decimal.RequireFromString("10010.00")))
	assert.Equal(t, 6, l.InventoryOf("outlet-1", "donut"))
}

func TestLedger_SellToCustomer_InsufficientInventory(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.RegisterOutlet(common.Outlet{
		OutletID: "outlet-1", Balance: decimal.RequireFromString("10000.00"),
		MarginPercent: decimal.RequireFromString("25.00"), IsOpen: true, CreatedAt: time.Now(),
	}))
	require.NoError(t, l.SetInventory("outlet-1", "donut", 2))

	_, err := l.SellToCustomer("outlet-1", "donut", 4)
	assert.ErrorIs(t, err, common.ErrInsufficientInventory)
}

func TestLedger_SellToCustomer_ClosedOutletRejected(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.RegisterOutlet(common.Outlet{
		OutletID: "outlet-1", Balance: decimal.RequireFromString("10000.00"),
		MarginPercent: decimal.RequireFromString("25.00"), IsOpen: false, CreatedAt: time.Now(),
	}))
	require.NoError(t, l.SetInventory("outlet-1", "donut", 10))

	_, err := l.SellToCustomer("outlet-1", "donut", 1)
	assert.ErrorIs(t, err, common.ErrOutletClosed)
	assert.Equal(t, 10, l.InventoryOf("outlet-1", "donut"), "no state change on a rejected sale")
}

func TestLedger_SettleFill_SellerInventoryNeverDecremented(t *testing.T) {
	l := newTestLedger(t)
	now := time.Now()
	require.NoError(t, l.RegisterOutlet(common.Outlet{OutletID: "buyer", Balance: decimal.RequireFromString("100.00"), CreatedAt: now}))
	require.NoError(t, l.RegisterOutlet(common.Outlet{OutletID: "seller", Balance: decimal.RequireFromString("0.00"), CreatedAt: now}))
	require.NoError(t, l.SetInventory("seller", "donut", 5))

	buyOrder := &common.Order{OrderID: "b1", OutletID: "buyer", ProductID: "donut", Side: common.Buy}
	sellOrder := &common.Order{OrderID: "s1", OutletID: "seller", ProductID: "donut", Side: common.Sell}

	_, err := l.SettleFill(buyOrder, sellOrder, 3, decimal.RequireFromString("2.00"), decimal.RequireFromString("6.00"))
	require.NoError(t, err)

	assert.Equal(t, 5, l.InventoryOf("seller", "donut"), "seller's shelf inventory is untouched by an exchange fill")
	assert.Equal(t, 3, l.InventoryOf("buyer", "donut"), "buyer's shelf inventory is credited by the fill")

	buyer, _ := l.Outlet("buyer")
	seller, _ := l.Outlet("seller")
	assert.True(t, buyer.Balance.Equal(decimal.RequireFromString("94.00")))
	assert.True(t, seller.Balance.Equal(decimal.RequireFromString("6.00")))
}

func TestLedger_SettleFill_OverdrawLeavesStateUnchanged(t *testing.T) {
	l := newTestLedger(t)
	now := time.Now()
	require.NoError(t, l.RegisterOutlet(common.Outlet{OutletID: "buyer", Balance: decimal.RequireFromString("5.00"), CreatedAt: now}))
	require.NoError(t, l.RegisterOutlet(common.Outlet{OutletID: "seller", Balance: decimal.RequireFromString("0.00"), CreatedAt: now}))

	buyOrder := &common.Order{OrderID: "b1", OutletID: "buyer", ProductID: "donut", Side: common.Buy}
	sellOrder := &common.Order{OrderID: "s1", OutletID: "seller", ProductID: "donut", Side: common.Sell}

	_, err := l.SettleFill(buyOrder, sellOrder, 1, decimal.RequireFromString("10.00"), decimal.RequireFromString("10.00"))
	assert.ErrorIs(t, err, common.ErrOverdrawAborted)

	buyer, _ := l.Outlet("buyer")
	seller, _ := l.Outlet("seller")
	assert.True(t, buyer.Balance.Equal(decimal.RequireFromString("5.00")), "balances must be untouched on an aborted fill")
	assert.True(t, seller.Balance.Equal(decimal.RequireFromString("0.00")))
}

func TestLedger_Leaderboard_ExcludesSentinel(t *testing.T) {
	l := newTestLedger(t)
	now := time.Now()
	require.NoError(t, l.RegisterOutlet(common.Outlet{OutletID: "supplier-factory", Balance: decimal.RequireFromString("1000000.00"), CreatedAt: now}))
	require.NoError(t, l.RegisterOutlet(common.Outlet{OutletID: "outlet-1", Balance: decimal.RequireFromString("10500.00"), CreatedAt: now}))
	require.NoError(t, l.RegisterOutlet(common.Outlet{OutletID: "outlet-2", Balance: decimal.RequireFromString("9500.00"), CreatedAt: now}))

	board := l.Leaderboard()
	require.Len(t, board, 2)
	assert.Equal(t, "outlet-1", board[0].OutletID, "higher net profit ranks first")
	assert.Equal(t, "outlet-2", board[1].OutletID)
}
