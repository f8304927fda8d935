package broadcast

import (
	"time"

	"glaze/internal/common"
)

// EventKind distinguishes the four domain event kinds spec.md §4.4
// names: trade executed, book updated, customer purchased, error.
type EventKind int

const (
	TradeExecuted EventKind = iota
	BookUpdated
	CustomerPurchased
	ErrorEvent
)

// Event is the single envelope type delivered to every sink. Only the
// field matching Kind is populated.
type Event struct {
	Kind      EventKind
	At        time.Time
	Trade     common.Transaction
	ProductID string // BookUpdated
	Sale      common.CustomerSale
	Message   string // ErrorEvent
	Source    string // ErrorEvent: "matcher" or "ledger"
}
