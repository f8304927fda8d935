package book

import "glaze/internal/common"

// OrderBookSnapshot is a read-only view of one product's book, used by
// observers and by the broadcaster's BookUpdated payload.
type OrderBookSnapshot struct {
	ProductID string
	Bids      []*common.Order
	Asks      []*common.Order
}

// Snapshot returns both sides of productID's book. When includeTerminal
// is false (the only case that can occur today, since terminal orders
// are removed from the book immediately), terminal-status orders would
// be excluded; the filter is kept explicit so a future relaxation of
// "remove on terminal" doesn't silently leak cancelled/filled orders
// into observers.
func (b *Book) Snapshot(productID string, includeTerminal bool) OrderBookSnapshot {
	unlock := b.Lock(productID)
	defer unlock()

	pb := b.productBookFor(productID)
	snap := OrderBookSnapshot{ProductID: productID}

	pb.bids.Scan(func(level *PriceLevel) bool {
		for _, o := range level.Orders {
			if includeTerminal || !o.Status.Terminal() {
				snap.Bids = append(snap.Bids, o)
			}
		}
		return true
	})
	pb.asks.Scan(func(level *PriceLevel) bool {
		for _, o := range level.Orders {
			if includeTerminal || !o.Status.Terminal() {
				snap.Asks = append(snap.Asks, o)
			}
		}
		return true
	})
	return snap
}
