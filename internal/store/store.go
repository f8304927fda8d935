// Package store defines the narrow persistence boundary the exchange
// core depends on (spec.md §6) and provides two implementations: an
// in-memory store (what the tests and cmd/glazed's -mem flag use) and
// the default gorm/sqlite
// backed store modeled on web3guy0-polybot's internal/database
// package. The core never imports gorm directly — only this
// interface.
package store

import (
	"time"

	"glaze/internal/common"

	"github.com/shopspring/decimal"
)

// InventoryRow is one (outlet, product, quantity) tuple as loaded in
// bulk at startup.
type InventoryRow struct {
	OutletID  string
	ProductID string
	Quantity  int
}

// Store is the durable persistence boundary. Datetime fields are
// passed as time.Time and neither implementation formats them:
// MemStore keeps the values as given, and SQLStore leaves their
// encoding, zone offset included, to the gorm sqlite driver.
type Store interface {
	// Inventory
	LoadAllInventory() ([]InventoryRow, error)
	SetInventory(outletID, productID string, qty int) error

	// Outlets
	InsertOutlet(o common.Outlet) error
	FindOutlet(outletID string) (common.Outlet, bool, error)
	FindAllOutlets() ([]common.Outlet, error)
	UpdateBalance(outletID string, balance decimal.Decimal) error
	UpdateMargin(outletID string, marginPercent decimal.Decimal) error
	SetOpen(outletID string, open bool) error
	SetAllOpen(open bool) error

	// Orders
	InsertOrder(o common.Order) error
	FindOrderByID(orderID string) (common.Order, bool, error)
	UpdateOrderStatus(orderID string, status common.OrderStatus, updatedAt time.Time) error
	UpdateOrderQuantity(orderID string, quantity int, updatedAt time.Time) error
	OrderBook(productID string, includeTerminal bool) ([]common.Order, error)

	// Transactions
	InsertTransaction(t common.Transaction) error
	FindTransactionsByProduct(productID string, limit int) ([]common.Transaction, error)
	FindRecentTransactions(limit int) ([]common.Transaction, error)

	// Customer sales
	InsertCustomerSale(s common.CustomerSale) error
	AggregateCustomerSalesByOutlet() (map[string]common.SalesStats, error)
}
