package book

import (
	"sort"

	"glaze/internal/common"

	"github.com/shopspring/decimal"
)

// PriceLevel holds every resting order at one price, ordered by
// Seq ascending (earliest first) — the time half of price-time
// priority, and the monotonic tiebreaker spec.md §4.1 calls for in
// place of wall-clock CreatedAt.
type PriceLevel struct {
	Price  decimal.Decimal
	Orders []*common.Order
}

// insert adds o to the level at the position its Seq dictates,
// keeping Orders sorted ascending by Seq regardless of the order in
// which concurrent submissions for this product happen to reach here.
func (pl *PriceLevel) insert(o *common.Order) {
	i := sort.Search(len(pl.Orders), func(i int) bool {
		return pl.Orders[i].Seq > o.Seq
	})
	pl.Orders = append(pl.Orders, nil)
	copy(pl.Orders[i+1:], pl.Orders[i:])
	pl.Orders[i] = o
}

// removeAt drops the order at index i, preserving relative order of
// the remainder (strict time priority for what's left).
func (pl *PriceLevel) removeAt(i int) {
	pl.Orders = append(pl.Orders[:i], pl.Orders[i+1:]...)
}

func (pl *PriceLevel) indexOf(orderID string) int {
	for i, o := range pl.Orders {
		if o.OrderID == orderID {
			return i
		}
	}
	return -1
}
