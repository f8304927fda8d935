// Package engine wires Book, Ledger, Matcher, Broadcaster and the
// three Agents into one runnable exchange and exposes the handful of
// operations cmd/glazed needs: submit an order, read a snapshot, read
// the leaderboard, start the agents, shut everything down cleanly.
package engine

import (
	"context"
	"sync"
	"time"

	"glaze/internal/agents"
	"glaze/internal/book"
	"glaze/internal/broadcast"
	"glaze/internal/common"
	"glaze/internal/config"
	"glaze/internal/ledger"
	"glaze/internal/matcher"
	"glaze/internal/store"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// errorReporterAdapter lets ledger.Ledger emit persistence-failure
// Error events through the shared Broadcaster without ledger
// importing the broadcast package.
type errorReporterAdapter struct {
	bcast *broadcast.Broadcaster
}

func (a errorReporterAdapter) ReportError(message, source string) {
	a.bcast.Emit(broadcast.Event{Kind: broadcast.ErrorEvent, At: time.Now(), Message: message, Source: source})
}

// Engine is the assembled exchange. Zero value is not usable;
// construct with New.
type Engine struct {
	cfg     config.Parsed
	store   store.Store
	book    *book.Book
	ledger  *ledger.Ledger
	matcher *matcher.Matcher
	bcast   *broadcast.Broadcaster
	log     zerolog.Logger

	products  []common.Product
	supplier  *agents.Supplier
	purchaser *agents.PurchasingAgent
	customer  *agents.CustomerSimulator

	cancel   context.CancelFunc
	agentsWG sync.WaitGroup
}

// New assembles every component but does not start the agents or
// register any sinks beyond the always-on log sink; call Bootstrap
// then Start to bring up a running exchange.
func New(cfg config.Parsed, st store.Store, products []common.Product, log zerolog.Logger) *Engine {
	b := book.New()
	bcast := broadcast.New()
	bcast.Register("log", broadcast.NewLogSink(log))

	l := ledger.New(st, cfg.BaseDonutPrice, cfg.InitialOutletBalance, cfg.SupplierOutletID, log)
	l.SetErrorReporter(errorReporterAdapter{bcast: bcast})

	m := matcher.New(b, l, bcast, st, products, log)

	e := &Engine{
		cfg:      cfg,
		store:    st,
		book:     b,
		ledger:   l,
		matcher:  m,
		bcast:    bcast,
		log:      log.With().Str("component", "engine").Logger(),
		products: products,
	}

	e.supplier = agents.NewSupplier(
		m, products, cfg.SupplierOutletID, cfg.BaseDonutPrice,
		cfg.SupplierMinQty, cfg.SupplierMaxQty,
		time.Duration(cfg.SupplierTickMS)*time.Millisecond, log,
	)
	e.purchaser = agents.NewPurchasingAgent(
		m, l, b, products, cfg.SupplierOutletID,
		cfg.PurchaserMinQty, cfg.PurchaserMaxQty,
		time.Duration(cfg.PurchaserTickMS)*time.Millisecond, log,
	)
	e.customer = agents.NewCustomerSimulator(
		l, bcast, products, cfg.SupplierOutletID, cfg.BaseDonutPrice,
		cfg.CustomerMinQty, cfg.CustomerMaxQty,
		time.Duration(cfg.CustomerTickMS)*time.Millisecond, log,
	)

	return e
}

// RegisterSink adds an additional observer (e.g. wsfeed.Hub) to the
// broadcaster, alongside the always-on log sink.
func (e *Engine) RegisterSink(name string, sink broadcast.Sink) {
	e.bcast.Register(name, sink)
}

// Bootstrap registers the outlet roster (including the supplier
// sentinel) and rehydrates the ledger from the Store. It must run
// before Start. A rehydration failure is fatal (spec.md §7.5): the
// caller should abort startup on a non-nil error.
func (e *Engine) Bootstrap(outlets []common.Outlet) error {
	for _, o := range outlets {
		if err := e.ledger.RegisterOutlet(o); err != nil {
			return err
		}
	}
	return e.ledger.Rehydrate()
}

// Start launches the three agents under ctx. Shutdown (or ctx
// cancellation) stops them.
func (e *Engine) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel

	e.agentsWG.Add(3)
	go func() { defer e.agentsWG.Done(); e.supplier.Run(ctx) }()
	go func() { defer e.agentsWG.Done(); e.purchaser.Run(ctx) }()
	go func() { defer e.agentsWG.Done(); e.customer.Run(ctx) }()
}

// Shutdown stops the agents and waits for any in-flight tick to
// finish, then stops the broadcaster's sink goroutines and waits for
// them to exit; events still queued for a sink at that point are not
// delivered.
func (e *Engine) Shutdown() {
	if e.cancel != nil {
		e.cancel()
	}
	e.agentsWG.Wait()
	e.bcast.Shutdown()
}

// SubmitOrder is the single order-entry point external callers (an
// HTTP handler, a test) use.
func (e *Engine) SubmitOrder(side common.Side, productID, outletID string, qty int, price decimal.Decimal) (common.Order, error) {
	return e.matcher.NewOrder(side, productID, outletID, qty, price)
}

// Snapshot returns productID's current resting book.
func (e *Engine) Snapshot(productID string) book.OrderBookSnapshot {
	return e.book.Snapshot(productID, false)
}

// Leaderboard ranks every retail outlet by net profit.
func (e *Engine) Leaderboard() []common.SalesStats {
	return e.ledger.Leaderboard()
}

// Inventory returns outletID's current shelf stock, one cell per
// product it holds any of.
func (e *Engine) Inventory(outletID string) []common.InventoryCell {
	return e.ledger.InventoryCells(outletID)
}

// Products returns the static product catalogue.
func (e *Engine) Products() []common.Product {
	return e.products
}
