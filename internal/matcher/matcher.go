// Package matcher implements the crossing algorithm spec.md §4.2
// describes: price-time priority, resting-order-price execution,
// self-trade skip, and overdraw-abort settlement. Adapted from the
// teacher's internal/engine match loop (the same "peek best opposite,
// cross while eligible, rest the remainder" shape), generalized to
// call out to book.Book for price-time ordering and to ledger.Ledger
// for the actual balance/inventory movement instead of doing both
// inline. Match holds book.Book's per-product lock for its entire
// peek-cross-settle-pop/insert sequence, the critical section spec.md
// §5 requires so two submissions for the same product can never
// interleave their mutations.
package matcher

import (
	"errors"
	"time"

	"glaze/internal/book"
	"glaze/internal/broadcast"
	"glaze/internal/common"
	"glaze/internal/ledger"
	"glaze/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Matcher owns the submit-and-match critical section for every
// product: Book for ordering, Ledger for settlement, Broadcaster for
// the resulting domain events.
type Matcher struct {
	book     *book.Book
	ledger   *ledger.Ledger
	bcast    *broadcast.Broadcaster
	store    store.Store
	log      zerolog.Logger
	products map[string]struct{}
}

func New(b *book.Book, l *ledger.Ledger, bcast *broadcast.Broadcaster, st store.Store, products []common.Product, log zerolog.Logger) *Matcher {
	productSet := make(map[string]struct{}, len(products))
	for _, p := range products {
		productSet[p.ProductID] = struct{}{}
	}
	return &Matcher{
		book:     b,
		ledger:   l,
		bcast:    bcast,
		store:    st,
		products: productSet,
		log:      log.With().Str("component", "matcher").Logger(),
	}
}

func (m *Matcher) knownProduct(productID string) bool {
	_, ok := m.products[productID]
	return ok
}

// NewOrder validates and submits a fresh order: quantity/price
// sanity, outlet existence and open state, then hands off to Match.
// The returned Order reflects its final state after matching —
// FILLED, PARTIALLY_FILLED-and-resting, ACTIVE-and-resting, or
// CANCELLED (a buy whose buyer could not cover an attempted fill;
// fills settled before that attempt stand).
func (m *Matcher) NewOrder(side common.Side, productID, outletID string, qty int, price decimal.Decimal) (common.Order, error) {
	if qty <= 0 {
		return common.Order{}, common.ErrInvalidQuantity
	}
	if price.Sign() <= 0 {
		return common.Order{}, common.ErrInvalidPrice
	}
	if !m.knownProduct(productID) {
		return common.Order{}, common.ErrUnknownProduct
	}
	outlet, ok := m.ledger.Outlet(outletID)
	if !ok {
		return common.Order{}, common.ErrUnknownOutlet
	}
	if !outlet.IsOpen {
		return common.Order{}, common.ErrOutletClosed
	}

	now := time.Now()
	order := &common.Order{
		OrderID:      uuid.NewString(),
		Side:         side,
		ProductID:    productID,
		OutletID:     outletID,
		Quantity:     qty,
		TotalQty:     qty,
		PricePerUnit: price,
		Status:       common.Active,
		CreatedAt:    now,
		UpdatedAt:    now,
		Seq:          m.book.NextSeq(),
	}

	if err := m.store.InsertOrder(*order); err != nil {
		m.log.Error().Err(err).Str("orderId", order.OrderID).Msg("failed to persist new order")
	}

	m.Match(order)
	return *order, nil
}

// Match runs the crossing loop for incoming against the resting book
// until it can no longer cross, then rests whatever quantity remains.
// incoming.Status and incoming.Quantity are updated in place.
func (m *Matcher) Match(incoming *common.Order) {
	unlock := m.book.Lock(incoming.ProductID)
	defer unlock()

	opposite := incoming.Side.Opposite()

	for incoming.Quantity > 0 {
		counter, ok := m.book.BestCounter(incoming.ProductID, opposite, incoming.OutletID)
		if !ok || !crosses(incoming, counter) {
			break
		}

		qty := min(incoming.Quantity, counter.Quantity)
		price := counter.PricePerUnit // resting order's price always wins
		total := price.Mul(decimal.NewFromInt(int64(qty)))

		buyOrder, sellOrder := incoming, counter
		if incoming.Side == common.Sell {
			buyOrder, sellOrder = counter, incoming
		}

		txn, err := m.ledger.SettleFill(buyOrder, sellOrder, qty, price, total)
		if err != nil {
			if errors.Is(err, common.ErrOverdrawAborted) {
				m.cancelForOverdraw(buyOrder, buyOrder == counter)
				if buyOrder == incoming {
					// incoming is the insolvent buyer: it's cancelled
					// and done. The resting counter is untouched.
					return
				}
				// incoming is the seller; the insolvent resting buy
				// was popped above, try the next best counter instead.
				continue
			}
			m.log.Error().Err(err).Msg("settle fill failed")
			m.bcast.Emit(broadcast.Event{
				Kind: broadcast.ErrorEvent, At: time.Now(),
				Message: err.Error(), Source: "matcher",
			})
			return
		}

		m.book.ReduceQty(incoming, qty)
		m.book.ReduceQty(counter, qty)
		now := time.Now()
		incoming.UpdatedAt = now
		counter.UpdatedAt = now

		if counter.Quantity == 0 {
			counter.Status = common.Filled
			m.book.Pop(counter)
		} else {
			counter.Status = common.PartiallyFilled
		}
		m.persistOrderState(*counter)

		if incoming.Quantity == 0 {
			incoming.Status = common.Filled
		} else {
			incoming.Status = common.PartiallyFilled
		}
		m.persistOrderState(*incoming)

		if err := m.store.InsertTransaction(txn); err != nil {
			m.log.Error().Err(err).Msg("failed to persist transaction")
		}

		m.bcast.Emit(broadcast.Event{Kind: broadcast.TradeExecuted, At: now, Trade: txn})
		m.bcast.Emit(broadcast.Event{Kind: broadcast.BookUpdated, At: now, ProductID: incoming.ProductID})
	}

	if incoming.Quantity > 0 {
		m.book.Insert(incoming)
		m.bcast.Emit(broadcast.Event{Kind: broadcast.BookUpdated, At: time.Now(), ProductID: incoming.ProductID})
	}
}

// crosses reports whether incoming's limit price crosses counter's
// resting price — the only price test the matcher ever makes.
func crosses(incoming, counter *common.Order) bool {
	if incoming.Side == common.Buy {
		return incoming.PricePerUnit.GreaterThanOrEqual(counter.PricePerUnit)
	}
	return incoming.PricePerUnit.LessThanOrEqual(counter.PricePerUnit)
}

// cancelForOverdraw cancels the buy order outright with no partial
// fill recorded for this attempted slice — the buy order is cancelled
// whether it was the incoming order or a resting one, and earlier
// fills from prior loop iterations of this same Match call already
// settled and are not undone.
func (m *Matcher) cancelForOverdraw(buyOrder *common.Order, wasResting bool) {
	buyOrder.Status = common.Cancelled
	buyOrder.UpdatedAt = time.Now()
	if wasResting {
		m.book.Pop(buyOrder)
	}
	m.persistOrderState(*buyOrder)
	m.bcast.Emit(broadcast.Event{
		Kind: broadcast.ErrorEvent, At: time.Now(),
		Message: "buy order cancelled: insufficient balance to cover next fill",
		Source:  "matcher",
	})
}

func (m *Matcher) persistOrderState(o common.Order) {
	if err := m.store.UpdateOrderQuantity(o.OrderID, o.Quantity, o.UpdatedAt); err != nil {
		m.log.Error().Err(err).Str("orderId", o.OrderID).Msg("failed to persist order quantity")
	}
	if err := m.store.UpdateOrderStatus(o.OrderID, o.Status, o.UpdatedAt); err != nil {
		m.log.Error().Err(err).Str("orderId", o.OrderID).Msg("failed to persist order status")
	}
}
