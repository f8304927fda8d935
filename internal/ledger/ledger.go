// Package ledger is the single authority for every balance and
// inventory mutation (spec.md §4.3). Not present in the teacher (its
// Engine.Trade is a stub with two FIXMEs); built in the teacher's
// idiom — a mutex-guarded struct with a zerolog logger — generalized
// from the mutex-guarded-balance-map shape common across the
// retrieved order-matching corpus (e.g. a paper broker's account
// struct) and from web3guy0-polybot's decimal-columned persisted
// model shape.
package ledger

import (
	"fmt"
	"sync"
	"time"

	"glaze/internal/common"
	"glaze/internal/store"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ErrorReporter lets the ledger surface persistence failures as domain
// Error events (spec.md §7.4) without depending on the broadcast
// package directly.
type ErrorReporter interface {
	ReportError(message, source string)
}

const retryDelay = 50 * time.Millisecond

// Ledger holds the in-memory write-through view of every outlet's
// balance, margin, open state and inventory, plus the derived
// customer-sales stats cache. It is the source of truth for reads
// during a run; the Store is rehydrated from at startup and written
// through to on every mutation.
type Ledger struct {
	mu sync.Mutex

	outlets   map[string]common.Outlet
	inventory map[string]map[string]int // outletID -> productID -> qty
	custStats map[string]common.SalesStats

	store            store.Store
	errReporter      ErrorReporter
	log              zerolog.Logger
	baseDonutPrice   decimal.Decimal
	initialBalance   decimal.Decimal
	supplierOutletID string
}

func New(
	st store.Store,
	baseDonutPrice, initialBalance decimal.Decimal,
	supplierOutletID string,
	log zerolog.Logger,
) *Ledger {
	return &Ledger{
		outlets:          make(map[string]common.Outlet),
		inventory:        make(map[string]map[string]int),
		custStats:        make(map[string]common.SalesStats),
		store:            st,
		baseDonutPrice:   baseDonutPrice,
		initialBalance:   initialBalance,
		supplierOutletID: supplierOutletID,
		log:              log.With().Str("component", "ledger").Logger(),
	}
}

// SetErrorReporter wires the sink used for persistence-failure Error
// events. Optional — a ledger with no reporter just logs.
func (l *Ledger) SetErrorReporter(r ErrorReporter) {
	l.errReporter = r
}

// Rehydrate loads inventory, customer-sales stats and outlet rows from
// the Store. Failure here aborts boot (spec.md §7.5). Each stored
// outlet replaces the in-memory entry with the same ID, including one
// registered via RegisterOutlet before Rehydrate runs.
func (l *Ledger) Rehydrate() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows, err := l.store.LoadAllInventory()
	if err != nil {
		return fmt.Errorf("rehydrate inventory: %w", err)
	}
	for _, r := range rows {
		if l.inventory[r.OutletID] == nil {
			l.inventory[r.OutletID] = make(map[string]int)
		}
		l.inventory[r.OutletID][r.ProductID] = r.Quantity
	}

	stats, err := l.store.AggregateCustomerSalesByOutlet()
	if err != nil {
		return fmt.Errorf("rehydrate customer sales: %w", err)
	}
	l.custStats = stats

	outlets, err := l.store.FindAllOutlets()
	if err != nil {
		return fmt.Errorf("rehydrate outlets: %w", err)
	}
	for _, o := range outlets {
		l.outlets[o.OutletID] = o
	}

	return nil
}

// RegisterOutlet adds a new outlet at bootstrap time (static roster,
// spec.md §3 "Lifecycle").
func (l *Ledger) RegisterOutlet(o common.Outlet) error {
	l.mu.Lock()
	l.outlets[o.OutletID] = o
	l.mu.Unlock()

	return l.persistWrite("insertOutlet", func() error {
		return l.store.InsertOutlet(o)
	})
}

// Outlet returns a copy of one outlet's current state.
func (l *Ledger) Outlet(outletID string) (common.Outlet, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	o, ok := l.outlets[outletID]
	return o, ok
}

// AllOutlets returns every outlet, including the sentinel. Callers
// that build retail listings must filter with IsSentinel themselves
// (spec.md §9 "Implementers should centralise that filter" — here the
// filter lives in Leaderboard and in the PurchasingAgent and
// CustomerSimulator outlet loops).
func (l *Ledger) AllOutlets() []common.Outlet {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]common.Outlet, 0, len(l.outlets))
	for _, o := range l.outlets {
		out = append(out, o)
	}
	return out
}

func (l *Ledger) IsOpen(outletID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	o, ok := l.outlets[outletID]
	return ok && o.IsOpen
}

// InventoryOf returns how many units of productID outletID holds.
func (l *Ledger) InventoryOf(outletID, productID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inventory[outletID][productID]
}

// InventoryCells returns every (outlet, product) cell outletID holds
// stock in, the shelf-inventory read an outlet listing page needs.
func (l *Ledger) InventoryCells(outletID string) []common.InventoryCell {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]common.InventoryCell, 0, len(l.inventory[outletID]))
	for productID, qty := range l.inventory[outletID] {
		if qty <= 0 {
			continue
		}
		out = append(out, common.InventoryCell{OutletID: outletID, ProductID: productID, Quantity: qty})
	}
	return out
}

// persistWrite applies a store write, retrying once after a short
// delay on failure; on a second failure it logs and reports an Error
// event but leaves the in-memory state as-is (spec.md §7.4:
// "availability over durability").
func (l *Ledger) persistWrite(op string, fn func() error) error {
	if err := fn(); err == nil {
		return nil
	} else {
		time.Sleep(retryDelay)
		if err2 := fn(); err2 != nil {
			l.log.Error().Err(err2).Str("op", op).Msg("persistence failed after retry")
			if l.errReporter != nil {
				l.errReporter.ReportError(fmt.Sprintf("persistence failed (%s): %v", op, err2), "ledger")
			}
			return err2
		}
	}
	return nil
}
