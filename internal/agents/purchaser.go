package agents

import (
	"context"
	"time"

	"glaze/internal/book"
	"glaze/internal/common"
	"glaze/internal/ledger"
	"glaze/internal/matcher"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// purchaserAggression is added to the best ask to give the resulting
// bid a better chance of crossing immediately (design parameter,
// spec.md §4.5: "implementer chooses aggression").
const purchaserAggression = "0.01"

// PurchasingAgent periodically restocks every open, non-sentinel
// outlet by bidding on the exchange against the Supplier's resting
// asks.
type PurchasingAgent struct {
	t ticker

	matcher          *matcher.Matcher
	ledger           *ledger.Ledger
	book             *book.Book
	products         []common.Product
	supplierOutletID string
	minQty, maxQty   int
	log              zerolog.Logger
}

func NewPurchasingAgent(
	m *matcher.Matcher,
	l *ledger.Ledger,
	b *book.Book,
	products []common.Product,
	supplierOutletID string,
	minQty, maxQty int,
	period time.Duration,
	log zerolog.Logger,
) *PurchasingAgent {
	log = log.With().Str("component", "agent").Str("agent", "purchaser").Logger()
	return &PurchasingAgent{
		t:                ticker{period: period, log: log, name: "purchaser"},
		matcher:          m,
		ledger:           l,
		book:             b,
		products:         products,
		supplierOutletID: supplierOutletID,
		minQty:           minQty,
		maxQty:           maxQty,
		log:              log,
	}
}

func (p *PurchasingAgent) Run(ctx context.Context) {
	p.t.run(ctx, p.tick)
}

func (p *PurchasingAgent) tick(_ context.Context) {
	aggression, _ := decimal.NewFromString(purchaserAggression)

	for _, outlet := range p.ledger.AllOutlets() {
		if outlet.IsSentinel(p.supplierOutletID) || !outlet.IsOpen {
			continue
		}

		for _, product := range p.products {
			unlock := p.book.Lock(product.ProductID)
			ask, ok := p.book.PeekBest(product.ProductID, common.Sell)
			var askPrice decimal.Decimal
			var askQty int
			if ok {
				askPrice, askQty = ask.PricePerUnit, ask.Quantity
			}
			unlock()
			if !ok {
				continue
			}

			bidPrice := askPrice.Add(aggression)
			maxAffordable := outlet.Balance.Div(bidPrice).IntPart()
			if maxAffordable < 1 {
				continue
			}

			qty := randRange(p.minQty, p.maxQty)
			if int64(qty) > maxAffordable {
				qty = int(maxAffordable)
			}
			if int64(qty) > int64(askQty) {
				qty = askQty
			}
			if qty < 1 {
				continue
			}

			if _, err := p.matcher.NewOrder(common.Buy, product.ProductID, outlet.OutletID, qty, bidPrice); err != nil {
				p.log.Error().Err(err).Str("outlet", outlet.OutletID).Str("product", product.ProductID).
					Msg("purchaser order failed")
			}
		}
	}
}
