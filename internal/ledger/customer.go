package ledger

import (
	"time"

	"glaze/internal/common"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SellToCustomer fills a simulated customer's walk-in purchase at
// outletID: it debits qty units from the outlet's shelf inventory and
// credits the outlet's balance with the marked-up revenue (spec.md
// §4.5 CustomerSimulator, §9 open question: cost basis is always
// BASE_DONUT_PRICE * qty, a fixed constant, never the outlet's actual
// acquisition price — the simulation does not track per-unit cost
// lots).
func (l *Ledger) SellToCustomer(outletID, productID string, qty int) (common.CustomerSale, error) {
	if qty <= 0 {
		return common.CustomerSale{}, common.ErrInvalidQuantity
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	outlet, ok := l.outlets[outletID]
	if !ok {
		return common.CustomerSale{}, common.ErrUnknownOutlet
	}
	if !outlet.IsOpen {
		return common.CustomerSale{}, common.ErrOutletClosed
	}
	if l.inventory[outletID][productID] < qty {
		return common.CustomerSale{}, common.ErrInsufficientInventory
	}

	costBasis := l.baseDonutPrice.Mul(decimal.NewFromInt(int64(qty)))
	margin := outlet.MarginPercent.Div(decimal.NewFromInt(100))
	revenue := costBasis.Add(costBasis.Mul(margin))
	profit := revenue.Sub(costBasis)

	l.inventory[outletID][productID] -= qty
	outlet.Balance = outlet.Balance.Add(revenue)
	l.outlets[outletID] = outlet

	stats := l.custStats[outletID]
	stats.OutletID = outletID
	stats.CustomerSalesRevenue = stats.CustomerSalesRevenue.Add(revenue)
	stats.CustomerSalesCount++
	l.custStats[outletID] = stats

	sale := common.CustomerSale{
		SaleID:     uuid.NewString(),
		OutletID:   outletID,
		ProductID:  productID,
		Quantity:   qty,
		CostBasis:  costBasis,
		Revenue:    revenue,
		Profit:     profit,
		ExecutedAt: time.Now(),
	}

	l.persistWrite("setInventory:customerSale", func() error {
		return l.store.SetInventory(outletID, productID, l.inventory[outletID][productID])
	})
	l.persistWrite("updateBalance:customerSale", func() error {
		return l.store.UpdateBalance(outletID, outlet.Balance)
	})
	l.persistWrite("insertCustomerSale", func() error {
		return l.store.InsertCustomerSale(sale)
	})

	return sale, nil
}
