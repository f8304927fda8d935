package common

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerSale is a retail sale made directly against an outlet's
// inventory (outside the Book) using the outlet's margin rule.
type CustomerSale struct {
	SaleID     string
	OutletID   string
	ProductID  string
	Quantity   int
	CostBasis  decimal.Decimal
	Revenue    decimal.Decimal
	Profit     decimal.Decimal
	ExecutedAt time.Time
}

// SalesStats is the derived, cached aggregate of an outlet's two sale
// flows: retail customer sales and exchange fills as seller.
type SalesStats struct {
	OutletID              string
	CustomerSalesRevenue  decimal.Decimal
	CustomerSalesCount    int
	ExchangeSalesRevenue  decimal.Decimal
	ExchangeSalesCount    int
	NetProfit             decimal.Decimal
}
