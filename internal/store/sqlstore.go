package store

import (
	"errors"
	"time"

	"glaze/internal/common"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Gorm model structs, grounded on web3guy0-polybot/internal/database:
// decimal.Decimal columns tagged with an explicit SQL type, plain
// string primary keys for domain IDs.

type outletRow struct {
	OutletID      string `gorm:"primaryKey;column:outlet_id"`
	Name          string
	Location      string
	Balance       decimal.Decimal `gorm:"type:decimal(20,6)"`
	MarginPercent decimal.Decimal `gorm:"type:decimal(10,4)"`
	IsOpen        bool
	CreatedAt     time.Time
}

type orderRow struct {
	OrderID      string `gorm:"primaryKey;column:order_id"`
	Side         int
	ProductID    string `gorm:"index"`
	OutletID     string `gorm:"index"`
	Quantity     int
	TotalQty     int
	PricePerUnit decimal.Decimal `gorm:"type:decimal(20,6)"`
	Status       int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type transactionRow struct {
	TransactionID  string `gorm:"primaryKey;column:transaction_id"`
	BuyOrderID     string
	SellOrderID    string
	BuyerOutletID  string `gorm:"index"`
	SellerOutletID string `gorm:"index"`
	ProductID      string `gorm:"index"`
	Quantity       int
	PricePerUnit   decimal.Decimal `gorm:"type:decimal(20,6)"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(20,6)"`
	ExecutedAt     time.Time
}

type customerSaleRow struct {
	SaleID     string `gorm:"primaryKey;column:sale_id"`
	OutletID   string `gorm:"index"`
	ProductID  string
	Quantity   int
	CostBasis  decimal.Decimal `gorm:"type:decimal(20,6)"`
	Revenue    decimal.Decimal `gorm:"type:decimal(20,6)"`
	Profit     decimal.Decimal `gorm:"type:decimal(20,6)"`
	ExecutedAt time.Time
}

type inventoryRow struct {
	OutletID  string `gorm:"primaryKey;column:outlet_id"`
	ProductID string `gorm:"primaryKey;column:product_id"`
	Quantity  int
}

// SQLStore is the durable Store backed by gorm/sqlite, standing in for
// the embedded knowledge-graph dialect the spec places out of scope —
// the engine only ever calls the Store interface above it.
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore opens (creating if absent) a sqlite database at path and
// migrates the schema.
func NewSQLStore(path string) (*SQLStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&outletRow{}, &orderRow{}, &transactionRow{}, &customerSaleRow{}, &inventoryRow{},
	); err != nil {
		return nil, err
	}

	return &SQLStore{db: db}, nil
}

func (s *SQLStore) LoadAllInventory() ([]InventoryRow, error) {
	var rows []inventoryRow
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]InventoryRow, len(rows))
	for i, r := range rows {
		out[i] = InventoryRow{OutletID: r.OutletID, ProductID: r.ProductID, Quantity: r.Quantity}
	}
	return out, nil
}

func (s *SQLStore) SetInventory(outletID, productID string, qty int) error {
	row := inventoryRow{OutletID: outletID, ProductID: productID, Quantity: qty}
	return s.db.Save(&row).Error
}

func (s *SQLStore) InsertOutlet(o common.Outlet) error {
	row := outletRow{
		OutletID: o.OutletID, Name: o.Name, Location: o.Location,
		Balance: o.Balance, MarginPercent: o.MarginPercent,
		IsOpen: o.IsOpen, CreatedAt: o.CreatedAt,
	}
	return s.db.Create(&row).Error
}

func (s *SQLStore) FindOutlet(outletID string) (common.Outlet, bool, error) {
	var row outletRow
	err := s.db.First(&row, "outlet_id = ?", outletID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return common.Outlet{}, false, nil
	}
	if err != nil {
		return common.Outlet{}, false, err
	}
	return outletFromRow(row), true, nil
}

func (s *SQLStore) FindAllOutlets() ([]common.Outlet, error) {
	var rows []outletRow
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]common.Outlet, len(rows))
	for i, r := range rows {
		out[i] = outletFromRow(r)
	}
	return out, nil
}

func outletFromRow(r outletRow) common.Outlet {
	return common.Outlet{
		OutletID: r.OutletID, Name: r.Name, Location: r.Location,
		Balance: r.Balance, MarginPercent: r.MarginPercent,
		IsOpen: r.IsOpen, CreatedAt: r.CreatedAt,
	}
}

func (s *SQLStore) UpdateBalance(outletID string, balance decimal.Decimal) error {
	return s.db.Model(&outletRow{}).Where("outlet_id = ?", outletID).Update("balance", balance).Error
}

func (s *SQLStore) UpdateMargin(outletID string, marginPercent decimal.Decimal) error {
	return s.db.Model(&outletRow{}).Where("outlet_id = ?", outletID).Update("margin_percent", marginPercent).Error
}

func (s *SQLStore) SetOpen(outletID string, open bool) error {
	return s.db.Model(&outletRow{}).Where("outlet_id = ?", outletID).Update("is_open", open).Error
}

func (s *SQLStore) SetAllOpen(open bool) error {
	return s.db.Model(&outletRow{}).Where("1 = 1").Update("is_open", open).Error
}

func (s *SQLStore) InsertOrder(o common.Order) error {
	row := orderRow{
		OrderID: o.OrderID, Side: int(o.Side), ProductID: o.ProductID, OutletID: o.OutletID,
		Quantity: o.Quantity, TotalQty: o.TotalQty, PricePerUnit: o.PricePerUnit,
		Status: int(o.Status), CreatedAt: o.CreatedAt, UpdatedAt: o.UpdatedAt,
	}
	return s.db.Create(&row).Error
}

func (s *SQLStore) FindOrderByID(orderID string) (common.Order, bool, error) {
	var row orderRow
	err := s.db.First(&row, "order_id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return common.Order{}, false, nil
	}
	if err != nil {
		return common.Order{}, false, err
	}
	return orderFromRow(row), true, nil
}

func orderFromRow(r orderRow) common.Order {
	return common.Order{
		OrderID: r.OrderID, Side: common.Side(r.Side), ProductID: r.ProductID, OutletID: r.OutletID,
		Quantity: r.Quantity, TotalQty: r.TotalQty, PricePerUnit: r.PricePerUnit,
		Status: common.OrderStatus(r.Status), CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

func (s *SQLStore) UpdateOrderStatus(orderID string, status common.OrderStatus, updatedAt time.Time) error {
	return s.db.Model(&orderRow{}).Where("order_id = ?", orderID).
		Updates(map[string]any{"status": int(status), "updated_at": updatedAt}).Error
}

func (s *SQLStore) UpdateOrderQuantity(orderID string, quantity int, updatedAt time.Time) error {
	return s.db.Model(&orderRow{}).Where("order_id = ?", orderID).
		Updates(map[string]any{"quantity": quantity, "updated_at": updatedAt}).Error
}

func (s *SQLStore) OrderBook(productID string, includeTerminal bool) ([]common.Order, error) {
	q := s.db.Where("product_id = ?", productID)
	if !includeTerminal {
		q = q.Where("status IN ?", []int{int(common.Active), int(common.PartiallyFilled)})
	}
	var rows []orderRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]common.Order, len(rows))
	for i, r := range rows {
		out[i] = orderFromRow(r)
	}
	return out, nil
}

func (s *SQLStore) InsertTransaction(t common.Transaction) error {
	row := transactionRow{
		TransactionID: t.TransactionID, BuyOrderID: t.BuyOrderID, SellOrderID: t.SellOrderID,
		BuyerOutletID: t.BuyerOutletID, SellerOutletID: t.SellerOutletID, ProductID: t.ProductID,
		Quantity: t.Quantity, PricePerUnit: t.PricePerUnit, TotalAmount: t.TotalAmount,
		ExecutedAt: t.ExecutedAt,
	}
	return s.db.Create(&row).Error
}

func (s *SQLStore) FindTransactionsByProduct(productID string, limit int) ([]common.Transaction, error) {
	var rows []transactionRow
	err := s.db.Where("product_id = ?", productID).Order("executed_at DESC").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return transactionsFromRows(rows), nil
}

func (s *SQLStore) FindRecentTransactions(limit int) ([]common.Transaction, error) {
	var rows []transactionRow
	err := s.db.Order("executed_at DESC").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return transactionsFromRows(rows), nil
}

func transactionsFromRows(rows []transactionRow) []common.Transaction {
	out := make([]common.Transaction, len(rows))
	for i, r := range rows {
		out[i] = common.Transaction{
			TransactionID: r.TransactionID, BuyOrderID: r.BuyOrderID, SellOrderID: r.SellOrderID,
			BuyerOutletID: r.BuyerOutletID, SellerOutletID: r.SellerOutletID, ProductID: r.ProductID,
			Quantity: r.Quantity, PricePerUnit: r.PricePerUnit, TotalAmount: r.TotalAmount,
			ExecutedAt: r.ExecutedAt,
		}
	}
	return out
}

func (s *SQLStore) InsertCustomerSale(sale common.CustomerSale) error {
	row := customerSaleRow{
		SaleID: sale.SaleID, OutletID: sale.OutletID, ProductID: sale.ProductID,
		Quantity: sale.Quantity, CostBasis: sale.CostBasis, Revenue: sale.Revenue,
		Profit: sale.Profit, ExecutedAt: sale.ExecutedAt,
	}
	return s.db.Create(&row).Error
}

func (s *SQLStore) AggregateCustomerSalesByOutlet() (map[string]common.SalesStats, error) {
	var rows []customerSaleRow
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]common.SalesStats)
	for _, r := range rows {
		stats := out[r.OutletID]
		stats.OutletID = r.OutletID
		stats.CustomerSalesRevenue = stats.CustomerSalesRevenue.Add(r.Revenue)
		stats.CustomerSalesCount++
		out[r.OutletID] = stats
	}
	return out, nil
}
