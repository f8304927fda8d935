package common

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single quantity match between a buy and a sell
// order at one price — the spec's "Fill". Append-only, never mutated
// once recorded.
type Transaction struct {
	TransactionID  string
	BuyOrderID     string
	SellOrderID    string
	BuyerOutletID  string
	SellerOutletID string
	ProductID      string
	Quantity       int
	PricePerUnit   decimal.Decimal
	TotalAmount    decimal.Decimal
	ExecutedAt     time.Time
}

func (t Transaction) String() string {
	return fmt.Sprintf(
		`Transaction: [
  id:       %s
  buyer:    %s (order %s)
  seller:   %s (order %s)
  product:  %s
  quantity: %d
  price:    %s
  total:    %s
  executed: %s
]`,
		t.TransactionID,
		t.BuyerOutletID, t.BuyOrderID,
		t.SellerOutletID, t.SellOrderID,
		t.ProductID,
		t.Quantity,
		t.PricePerUnit.String(),
		t.TotalAmount.String(),
		t.ExecutedAt.Format("2006-01-02T15:04:05"),
	)
}
