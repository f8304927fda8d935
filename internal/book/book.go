// Package book implements the per-product, price-time-priority order
// book: two price-indexed queues (bids, asks) per product, stateless
// beyond ordering. Adapted from the teacher's
// internal/engine/orderbook.go — same tidwall/btree price-level
// structure, generalized to hold many products and to expose
// insert/peek/pop/reduce primitives instead of owning the match loop
// itself (that now lives in internal/matcher). The primitives do no
// locking themselves; Book.Lock(productID) is the per-product critical
// section every multi-step caller (the Matcher's match loop, a
// snapshot read) must hold for the duration of its sequence.
package book

import (
	"sync"
	"sync/atomic"

	"glaze/internal/common"

	"github.com/tidwall/btree"
)

type priceLevels = btree.BTreeG[*PriceLevel]

// productBook is the two-sided book for a single product. mu is the
// per-product critical section spec.md §5 requires ("all Matcher+
// Ledger mutations for a given product are serialised"): Matcher
// holds it via Book.Lock for the full peek-cross-settle-pop/insert
// sequence of one Match call, so two concurrent submissions for the
// same product can never interleave their btree/Order mutations.
type productBook struct {
	mu   sync.Mutex
	bids *priceLevels // sorted highest price first
	asks *priceLevels // sorted lowest price first
}

func newProductBook() *productBook {
	bids := btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.Price.GreaterThan(b.Price)
	})
	asks := btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.Price.LessThan(b.Price)
	})
	return &productBook{bids: bids, asks: asks}
}

func (pb *productBook) levels(side common.Side) *priceLevels {
	if side == common.Buy {
		return pb.bids
	}
	return pb.asks
}

// Book is the collection of every product's order book. The products
// map itself is safe for concurrent use (guarded by mu), but a given
// product's bids/asks trees are NOT safe for unsynchronized concurrent
// access — callers that read or mutate one product's book across more
// than one call (Matcher's match loop, a snapshot read) must bracket
// the sequence with Lock/the returned unlock func (spec.md §5).
type Book struct {
	mu       sync.Mutex
	products map[string]*productBook
	seq      atomic.Uint64
}

func New() *Book {
	return &Book{products: make(map[string]*productBook)}
}

// NextSeq returns the next monotonic sequence number, the authoritative
// time-priority tiebreaker (spec.md §4.1 / Design Note "Monotonic
// ordering").
func (b *Book) NextSeq() uint64 {
	return b.seq.Add(1)
}

func (b *Book) productBookFor(productID string) *productBook {
	b.mu.Lock()
	defer b.mu.Unlock()
	pb, ok := b.products[productID]
	if !ok {
		pb = newProductBook()
		b.products[productID] = pb
	}
	return pb
}

// Lock acquires productID's per-product critical section and returns
// the matching unlock func. Every caller that performs more than one
// Book operation on the same product as one logical unit (the
// Matcher's match loop; a consistent order-book snapshot) must hold
// this for the whole sequence — Insert/PeekBest/BestCounter/Pop
// themselves do no locking of their own, by design, so they can be
// composed inside a single Lock/unlock bracket without deadlocking.
func (b *Book) Lock(productID string) func() {
	pb := b.productBookFor(productID)
	pb.mu.Lock()
	return pb.mu.Unlock
}

// Insert rests an order in its product's book on its own side. Must
// be called with that product's Lock held.
func (b *Book) Insert(o *common.Order) {
	pb := b.productBookFor(o.ProductID)
	levels := pb.levels(o.Side)

	level, ok := levels.Get(&PriceLevel{Price: o.PricePerUnit})
	if ok {
		level.insert(o)
		return
	}
	fresh := &PriceLevel{Price: o.PricePerUnit}
	fresh.insert(o)
	levels.Set(fresh)
}

// PeekBest returns the best resting order on productID's side without
// removing it: highest bid or lowest ask, earliest arrival at that
// price. Returns ok=false if that side is empty. Must be called with
// that product's Lock held. The lock is not reentrant and
// Matcher.Match takes it itself, so a caller that peeks and then
// submits (the PurchasingAgent) releases it in between, and the book
// may have changed by the time the submission is matched.
func (b *Book) PeekBest(productID string, side common.Side) (*common.Order, bool) {
	pb := b.productBookFor(productID)
	level, ok := pb.levels(side).Min()
	if !ok || len(level.Orders) == 0 {
		return nil, false
	}
	return level.Orders[0], true
}

// BestCounter returns the best resting order on productID's side that
// does not belong to excludeOutletID, scanning in strict price-time
// priority order and skipping over (not removing) same-outlet orders
// in between (spec.md §4.2 "self-trade prevention": a crossing order
// never matches its own outlet's resting order, it matches the next
// eligible one instead). Returns ok=false if no eligible order exists.
// Must be called with that product's Lock held.
func (b *Book) BestCounter(productID string, side common.Side, excludeOutletID string) (*common.Order, bool) {
	pb := b.productBookFor(productID)
	var found *common.Order
	pb.levels(side).Scan(func(level *PriceLevel) bool {
		for _, o := range level.Orders {
			if o.OutletID == excludeOutletID {
				continue
			}
			found = o
			return false
		}
		return true
	})
	return found, found != nil
}

// Pop removes a specific order from its resting level (called once an
// order reaches a terminal status: FILLED or CANCELLED). Must be
// called with that product's Lock held.
func (b *Book) Pop(o *common.Order) {
	pb := b.productBookFor(o.ProductID)
	levels := pb.levels(o.Side)

	level, ok := levels.Get(&PriceLevel{Price: o.PricePerUnit})
	if !ok {
		return
	}
	i := level.indexOf(o.OrderID)
	if i == -1 {
		return
	}
	level.removeAt(i)
	if len(level.Orders) == 0 {
		levels.Delete(level)
	}
}

// ReduceQty reduces a resting order's remaining quantity in place
// (spec.md §4.1's reduceQty(order, delta)), called by the Matcher for
// every fill slice instead of it touching Order.Quantity directly.
// Must be called with that product's Lock held.
func (b *Book) ReduceQty(o *common.Order, delta int) {
	o.Quantity -= delta
}
