package ledger

import (
	"glaze/internal/common"

	"github.com/shopspring/decimal"
)

// AddInventory credits outletID's shelf with qty more units of
// productID. Exchange fills do not go through here: SettleFill credits
// the buyer's inventory itself.
func (l *Ledger) AddInventory(outletID, productID string, qty int) error {
	l.mu.Lock()
	if l.inventory[outletID] == nil {
		l.inventory[outletID] = make(map[string]int)
	}
	l.inventory[outletID][productID] += qty
	newQty := l.inventory[outletID][productID]
	l.mu.Unlock()

	return l.persistWrite("addInventory", func() error {
		return l.store.SetInventory(outletID, productID, newQty)
	})
}

// RemoveInventory debits outletID's shelf by qty units of productID.
// Returns ErrInsufficientInventory if the shelf does not hold enough.
func (l *Ledger) RemoveInventory(outletID, productID string, qty int) error {
	l.mu.Lock()
	if l.inventory[outletID][productID] < qty {
		l.mu.Unlock()
		return common.ErrInsufficientInventory
	}
	l.inventory[outletID][productID] -= qty
	newQty := l.inventory[outletID][productID]
	l.mu.Unlock()

	return l.persistWrite("removeInventory", func() error {
		return l.store.SetInventory(outletID, productID, newQty)
	})
}

// SetInventory overwrites outletID's shelf count for productID
// outright (bootstrap seeding).
func (l *Ledger) SetInventory(outletID, productID string, qty int) error {
	l.mu.Lock()
	if l.inventory[outletID] == nil {
		l.inventory[outletID] = make(map[string]int)
	}
	l.inventory[outletID][productID] = qty
	l.mu.Unlock()

	return l.persistWrite("setInventory", func() error {
		return l.store.SetInventory(outletID, productID, qty)
	})
}

// SetMargin changes outletID's retail markup percentage (e.g. 25 means
// a 25% markup over cost basis in SellToCustomer).
func (l *Ledger) SetMargin(outletID string, marginPercent decimal.Decimal) error {
	l.mu.Lock()
	o, ok := l.outlets[outletID]
	if !ok {
		l.mu.Unlock()
		return common.ErrUnknownOutlet
	}
	o.MarginPercent = marginPercent
	l.outlets[outletID] = o
	l.mu.Unlock()

	return l.persistWrite("updateMargin", func() error {
		return l.store.UpdateMargin(outletID, marginPercent)
	})
}

// SetOpen toggles whether outletID is currently trading. A closed
// outlet is skipped by the PurchasingAgent and CustomerSimulator and
// rejects SellToCustomer.
func (l *Ledger) SetOpen(outletID string, open bool) error {
	l.mu.Lock()
	o, ok := l.outlets[outletID]
	if !ok {
		l.mu.Unlock()
		return common.ErrUnknownOutlet
	}
	o.IsOpen = open
	l.outlets[outletID] = o
	l.mu.Unlock()

	return l.persistWrite("setOpen", func() error {
		return l.store.SetOpen(outletID, open)
	})
}

// SetAllOpen toggles every outlet's open state at once (market
// open/close, spec.md §5 "Shared resources").
func (l *Ledger) SetAllOpen(open bool) error {
	l.mu.Lock()
	for id, o := range l.outlets {
		o.IsOpen = open
		l.outlets[id] = o
	}
	l.mu.Unlock()

	return l.persistWrite("setAllOpen", func() error {
		return l.store.SetAllOpen(open)
	})
}
