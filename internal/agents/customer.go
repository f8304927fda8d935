package agents

import (
	"context"
	"math/rand"
	"time"

	"glaze/internal/broadcast"
	"glaze/internal/common"
	"glaze/internal/ledger"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type customerType int

const (
	firstFind customerType = iota
	priceHunter
)

// CustomerSimulator periodically spawns one simulated retail
// customer who shops a small random list of products across whichever
// outlets are open, per spec.md §4.5's exact two-archetype algorithm.
type CustomerSimulator struct {
	t ticker

	ledger           *ledger.Ledger
	bcast            *broadcast.Broadcaster
	products         []common.Product
	supplierOutletID string
	basePrice        decimal.Decimal
	minQty, maxQty   int
	log              zerolog.Logger
}

func NewCustomerSimulator(
	l *ledger.Ledger,
	bcast *broadcast.Broadcaster,
	products []common.Product,
	supplierOutletID string,
	basePrice decimal.Decimal,
	minQty, maxQty int,
	period time.Duration,
	log zerolog.Logger,
) *CustomerSimulator {
	log = log.With().Str("component", "agent").Str("agent", "customer").Logger()
	return &CustomerSimulator{
		t:                ticker{period: period, log: log, name: "customer"},
		ledger:           l,
		bcast:            bcast,
		products:         products,
		supplierOutletID: supplierOutletID,
		basePrice:        basePrice,
		minQty:           minQty,
		maxQty:           maxQty,
		log:              log,
	}
}

func (c *CustomerSimulator) Run(ctx context.Context) {
	c.t.run(ctx, c.tick)
}

func (c *CustomerSimulator) tick(_ context.Context) {
	if len(c.products) == 0 {
		return
	}

	shuffled := make([]common.Product, len(c.products))
	copy(shuffled, c.products)
	rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	k := randRange(1, 3)
	if k > len(shuffled) {
		k = len(shuffled)
	}
	list := shuffled[:k]

	kind := firstFind
	if rand.Intn(2) == 1 {
		kind = priceHunter
	}

	retail := c.openRetailOutlets()
	if len(retail) == 0 {
		return
	}

	for _, product := range list {
		var chosen string
		var stock int

		switch kind {
		case firstFind:
			chosen, stock = c.firstFindOutlet(retail, product.ProductID)
		case priceHunter:
			chosen, stock = c.priceHunterOutlet(retail, product.ProductID)
		}
		if chosen == "" || stock <= 0 {
			continue
		}

		qty := randRange(c.minQty, c.maxQty)
		if qty > stock {
			qty = stock
		}

		sale, err := c.ledger.SellToCustomer(chosen, product.ProductID, qty)
		if err != nil {
			c.log.Debug().Err(err).Str("outlet", chosen).Str("product", product.ProductID).
				Msg("customer purchase skipped")
			continue
		}

		c.bcast.Emit(broadcast.Event{Kind: broadcast.CustomerPurchased, At: sale.ExecutedAt, Sale: sale})
	}
}

func (c *CustomerSimulator) openRetailOutlets() []common.Outlet {
	var out []common.Outlet
	for _, o := range c.ledger.AllOutlets() {
		if !o.IsSentinel(c.supplierOutletID) && o.IsOpen {
			out = append(out, o)
		}
	}
	return out
}

// firstFindOutlet walks outlets in a fresh random order and returns
// the first with positive stock of productID.
func (c *CustomerSimulator) firstFindOutlet(outlets []common.Outlet, productID string) (string, int) {
	order := make([]common.Outlet, len(outlets))
	copy(order, outlets)
	rand.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	for _, o := range order {
		stock := c.ledger.InventoryOf(o.OutletID, productID)
		if stock > 0 {
			return o.OutletID, stock
		}
	}
	return "", 0
}

// priceHunterOutlet returns the in-stock outlet with the lowest
// effective retail price for productID: BASE_PRICE*(1+margin/100).
func (c *CustomerSimulator) priceHunterOutlet(outlets []common.Outlet, productID string) (string, int) {
	var best string
	var bestStock int
	var bestPrice decimal.Decimal
	found := false

	for _, o := range outlets {
		stock := c.ledger.InventoryOf(o.OutletID, productID)
		if stock <= 0 {
			continue
		}
		margin := o.MarginPercent.Div(decimal.NewFromInt(100))
		price := c.basePrice.Add(c.basePrice.Mul(margin))
		if !found || price.LessThan(bestPrice) {
			best, bestStock, bestPrice, found = o.OutletID, stock, price, true
		}
	}
	return best, bestStock
}
