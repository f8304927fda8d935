package agents

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"glaze/internal/common"
	"glaze/internal/matcher"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// supplierPriceVariance bounds the random spread applied to
// basePrice each tick, as a fraction of basePrice (design parameter,
// spec.md §4.5: "small random variance").
const supplierPriceVariance = 0.05

// Supplier periodically rests a fresh SELL order per product from the
// sentinel supply outlet. It never checks its own stock — the
// sentinel is an unmetered source of donuts — only whether the
// sentinel outlet itself is open; NewOrder enforces that and the tick
// is simply skipped (logged, not fatal) when it's closed.
type Supplier struct {
	t ticker

	matcher          *matcher.Matcher
	products         []common.Product
	supplierOutletID string
	basePrice        decimal.Decimal
	minQty, maxQty   int
	log              zerolog.Logger
}

func NewSupplier(
	m *matcher.Matcher,
	products []common.Product,
	supplierOutletID string,
	basePrice decimal.Decimal,
	minQty, maxQty int,
	period time.Duration,
	log zerolog.Logger,
) *Supplier {
	log = log.With().Str("component", "agent").Str("agent", "supplier").Logger()
	return &Supplier{
		t:                ticker{period: period, log: log, name: "supplier"},
		matcher:          m,
		products:         products,
		supplierOutletID: supplierOutletID,
		basePrice:        basePrice,
		minQty:           minQty,
		maxQty:           maxQty,
		log:              log,
	}
}

func (s *Supplier) Run(ctx context.Context) {
	s.t.run(ctx, s.tick)
}

func (s *Supplier) tick(_ context.Context) {
	for _, p := range s.products {
		qty := randRange(s.minQty, s.maxQty)
		price := s.jitteredPrice()

		if _, err := s.matcher.NewOrder(common.Sell, p.ProductID, s.supplierOutletID, qty, price); err != nil {
			if errors.Is(err, common.ErrOutletClosed) {
				s.log.Debug().Msg("supplier outlet closed, pausing this tick")
				return
			}
			s.log.Error().Err(err).Str("product", p.ProductID).Msg("supplier order failed")
		}
	}
}

// jitteredPrice returns basePrice scaled by a factor drawn uniformly
// from [1-supplierPriceVariance, 1+supplierPriceVariance].
func (s *Supplier) jitteredPrice() decimal.Decimal {
	spread := (rand.Float64()*2 - 1) * supplierPriceVariance
	factor := decimal.NewFromFloat(1 + spread)
	return s.basePrice.Mul(factor).Round(2)
}

func randRange(min, max int) int {
	if max <= min {
		return min
	}
	return min + rand.Intn(max-min+1)
}
