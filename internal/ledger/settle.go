package ledger

import (
	"time"

	"glaze/internal/common"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SettleFill applies one matched quantity between a buy and a sell
// order: it debits the buyer, credits the seller, and credits the
// buyer's inventory (spec.md §4.3, §9 open question: seller inventory
// is never decremented — donuts sold on the exchange are assumed
// drawn from the supplier's unmetered stock, not from the seller's
// own retail shelf). The fill executes at the resting order's price,
// passed in as price by the caller (the Matcher), never the
// incoming order's price.
//
// If the buyer cannot afford qty*price, SettleFill mutates nothing
// and returns ErrOverdrawAborted; the Matcher is responsible for
// cancelling the buy order in that case.
func (l *Ledger) SettleFill(buyOrder, sellOrder *common.Order, qty int, price, total decimal.Decimal) (common.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	buyer, ok := l.outlets[buyOrder.OutletID]
	if !ok {
		return common.Transaction{}, common.ErrUnknownOutlet
	}
	seller, ok := l.outlets[sellOrder.OutletID]
	if !ok {
		return common.Transaction{}, common.ErrUnknownOutlet
	}

	if buyer.Balance.LessThan(total) {
		return common.Transaction{}, common.ErrOverdrawAborted
	}

	buyer.Balance = buyer.Balance.Sub(total)
	seller.Balance = seller.Balance.Add(total)
	l.outlets[buyer.OutletID] = buyer
	l.outlets[seller.OutletID] = seller

	if l.inventory[buyer.OutletID] == nil {
		l.inventory[buyer.OutletID] = make(map[string]int)
	}
	l.inventory[buyer.OutletID][buyOrder.ProductID] += qty

	stats := l.custStats[seller.OutletID]
	stats.OutletID = seller.OutletID
	stats.ExchangeSalesRevenue = stats.ExchangeSalesRevenue.Add(total)
	stats.ExchangeSalesCount++
	l.custStats[seller.OutletID] = stats

	txn := common.Transaction{
		TransactionID:  uuid.NewString(),
		BuyOrderID:     buyOrder.OrderID,
		SellOrderID:    sellOrder.OrderID,
		BuyerOutletID:  buyer.OutletID,
		SellerOutletID: seller.OutletID,
		ProductID:      buyOrder.ProductID,
		Quantity:       qty,
		PricePerUnit:   price,
		TotalAmount:    total,
		ExecutedAt:     time.Now(),
	}

	l.persistWrite("updateBalance:buyer", func() error {
		return l.store.UpdateBalance(buyer.OutletID, buyer.Balance)
	})
	l.persistWrite("updateBalance:seller", func() error {
		return l.store.UpdateBalance(seller.OutletID, seller.Balance)
	})
	l.persistWrite("setInventory:buyer", func() error {
		return l.store.SetInventory(buyer.OutletID, buyOrder.ProductID, l.inventory[buyer.OutletID][buyOrder.ProductID])
	})

	// Transaction persistence is the Matcher's responsibility (it
	// owns the fill record and emits TradeExecuted alongside it); this
	// avoids inserting the same transaction twice.
	return txn, nil
}
