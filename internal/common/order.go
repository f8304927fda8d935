// Package common holds the domain types shared by every exchange
// component: orders, outlets, products, fills, inventory and customer
// sales. None of these types own mutation logic — that lives in
// ledger, book and matcher — they are plain records passed between
// components.
package common

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "BUY"
	}
	return "SELL"
}

// Opposite returns the counterparty side a crossing order must rest on.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

type OrderStatus int

const (
	Active OrderStatus = iota
	PartiallyFilled
	Filled
	Cancelled
)

func (s OrderStatus) String() string {
	switch s {
	case Active:
		return "ACTIVE"
	case PartiallyFilled:
		return "PARTIALLY_FILLED"
	case Filled:
		return "FILLED"
	case Cancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether an order in this status can never resume
// resting in a book (FILLED/CANCELLED never return to ACTIVE).
func (s OrderStatus) Terminal() bool {
	return s == Filled || s == Cancelled
}

// Order is a resting-or-filled instruction to buy or sell a quantity
// of one product at a limit price. Immutable except for Quantity,
// Status and UpdatedAt; OrderID is assigned by the engine, never by
// the caller.
type Order struct {
	OrderID      string
	Side         Side
	ProductID    string
	OutletID     string
	Quantity     int // remaining, unfilled quantity
	TotalQty     int // original quantity requested
	PricePerUnit decimal.Decimal
	Status       OrderStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Seq is the monotonic tiebreaker used for price-time priority.
	// Wall-clock CreatedAt is kept for display only.
	Seq uint64
}

func (order Order) String() string {
	return fmt.Sprintf(
		`OrderID:   %s
Side:      %s
Product:   %s
Outlet:    %s
Quantity:  %d (Total: %d)
Price:     %s
Status:    %s
CreatedAt: %s`,
		order.OrderID,
		order.Side,
		order.ProductID,
		order.OutletID,
		order.Quantity,
		order.TotalQty,
		order.PricePerUnit.String(),
		order.Status,
		order.CreatedAt.Format("2006-01-02T15:04:05"),
	)
}
