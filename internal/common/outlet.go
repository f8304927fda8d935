package common

import (
	"time"

	"github.com/shopspring/decimal"
)

// Outlet is a participant on the exchange: a retail donut shop, or the
// sentinel supplier-factory outlet (see Config.SupplierOutletID).
type Outlet struct {
	OutletID      string
	Name          string
	Location      string
	Balance       decimal.Decimal
	MarginPercent decimal.Decimal
	IsOpen        bool
	CreatedAt     time.Time
}

// IsSentinel reports whether this outlet is the supplier factory,
// which participates in the book but is excluded from leaderboards
// and retail-outlet listings.
func (o Outlet) IsSentinel(supplierOutletID string) bool {
	return o.OutletID == supplierOutletID
}
