package store

import (
	"sync"
	"time"

	"glaze/internal/common"

	"github.com/shopspring/decimal"
)

// MemStore is an in-memory Store, the default for tests and for
// running without a database file. All writes are immediately
// visible; there is no simulated latency or failure mode.
type MemStore struct {
	mu sync.Mutex

	outlets      map[string]common.Outlet
	orders       map[string]common.Order
	inventory    map[string]map[string]int // outletID -> productID -> qty
	transactions []common.Transaction
	sales        []common.CustomerSale
}

func NewMemStore() *MemStore {
	return &MemStore{
		outlets:   make(map[string]common.Outlet),
		orders:    make(map[string]common.Order),
		inventory: make(map[string]map[string]int),
	}
}

func (m *MemStore) LoadAllInventory() ([]InventoryRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var rows []InventoryRow
	for outletID, products := range m.inventory {
		for productID, qty := range products {
			rows = append(rows, InventoryRow{OutletID: outletID, ProductID: productID, Quantity: qty})
		}
	}
	return rows, nil
}

func (m *MemStore) SetInventory(outletID, productID string, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.inventory[outletID] == nil {
		m.inventory[outletID] = make(map[string]int)
	}
	m.inventory[outletID][productID] = qty
	return nil
}

func (m *MemStore) InsertOutlet(o common.Outlet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outlets[o.OutletID] = o
	return nil
}

func (m *MemStore) FindOutlet(outletID string) (common.Outlet, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.outlets[outletID]
	return o, ok, nil
}

func (m *MemStore) FindAllOutlets() ([]common.Outlet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]common.Outlet, 0, len(m.outlets))
	for _, o := range m.outlets {
		out = append(out, o)
	}
	return out, nil
}

func (m *MemStore) UpdateBalance(outletID string, balance decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.outlets[outletID]
	if !ok {
		return common.ErrUnknownOutlet
	}
	o.Balance = balance
	m.outlets[outletID] = o
	return nil
}

func (m *MemStore) UpdateMargin(outletID string, marginPercent decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.outlets[outletID]
	if !ok {
		return common.ErrUnknownOutlet
	}
	o.MarginPercent = marginPercent
	m.outlets[outletID] = o
	return nil
}

func (m *MemStore) SetOpen(outletID string, open bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.outlets[outletID]
	if !ok {
		return common.ErrUnknownOutlet
	}
	o.IsOpen = open
	m.outlets[outletID] = o
	return nil
}

func (m *MemStore) SetAllOpen(open bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, o := range m.outlets {
		o.IsOpen = open
		m.outlets[id] = o
	}
	return nil
}

func (m *MemStore) InsertOrder(o common.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.OrderID] = o
	return nil
}

func (m *MemStore) FindOrderByID(orderID string) (common.Order, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	return o, ok, nil
}

func (m *MemStore) UpdateOrderStatus(orderID string, status common.OrderStatus, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return nil
	}
	o.Status = status
	o.UpdatedAt = updatedAt
	m.orders[orderID] = o
	return nil
}

func (m *MemStore) UpdateOrderQuantity(orderID string, quantity int, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return nil
	}
	o.Quantity = quantity
	o.UpdatedAt = updatedAt
	m.orders[orderID] = o
	return nil
}

func (m *MemStore) OrderBook(productID string, includeTerminal bool) ([]common.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []common.Order
	for _, o := range m.orders {
		if o.ProductID != productID {
			continue
		}
		if !includeTerminal && o.Status.Terminal() {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (m *MemStore) InsertTransaction(t common.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions = append(m.transactions, t)
	return nil
}

func (m *MemStore) FindTransactionsByProduct(productID string, limit int) ([]common.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []common.Transaction
	for i := len(m.transactions) - 1; i >= 0 && len(out) < limit; i-- {
		if m.transactions[i].ProductID == productID {
			out = append(out, m.transactions[i])
		}
	}
	return out, nil
}

func (m *MemStore) FindRecentTransactions(limit int) ([]common.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.transactions)
	if limit > n {
		limit = n
	}
	out := make([]common.Transaction, limit)
	for i := 0; i < limit; i++ {
		out[i] = m.transactions[n-1-i]
	}
	return out, nil
}

func (m *MemStore) InsertCustomerSale(s common.CustomerSale) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sales = append(m.sales, s)
	return nil
}

func (m *MemStore) AggregateCustomerSalesByOutlet() (map[string]common.SalesStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]common.SalesStats)
	for _, s := range m.sales {
		stats := out[s.OutletID]
		stats.OutletID = s.OutletID
		stats.CustomerSalesRevenue = stats.CustomerSalesRevenue.Add(s.Revenue)
		stats.CustomerSalesCount++
		out[s.OutletID] = stats
	}
	return out, nil
}
