package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status groupings used by every reporting query. "done" and "shipping" are
// legacy statuses that still exist in older rows and must keep counting.
var (
	CompletedOrderStatuses = []string{"completed", "done"}
	PendingOrderStatuses   = []string{"pending", "processing", "shipping"}
)

// DateRange is a closed interval over created_at. Nil bounds are open.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

func (r DateRange) IsZero() bool {
	return r.Start == nil && r.End == nil
}

type OrderCounts struct {
	TotalOrders     int64 `json:"totalOrders"`
	CompletedOrders int64 `json:"completedOrders"`
	PendingOrders   int64 `json:"pendingOrders"`
}

type InventorySnapshot struct {
	TotalProducts      int64 `json:"totalProducts"`
	OutOfStockProducts int64 `json:"outOfStockProducts"`
}

type TopProduct struct {
	ProductID    uint            `json:"product_id"`
	ProductName  string          `json:"product_name"`
	Price        decimal.Decimal `json:"price"`
	TotalSold    int64           `json:"totalSold"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
}

// RevenuePoint is one bucket of a revenue trend; Period is a calendar day
// (YYYY-MM-DD) or month (YYYY-MM) depending on the grouping.
type RevenuePoint struct {
	Period  string          `json:"period"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int64           `json:"orders"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

type DashboardKPI struct {
	TotalRevenue       decimal.Decimal `json:"totalRevenue"`
	TotalOrders        int64           `json:"totalOrders"`
	CompletedOrders    int64           `json:"completedOrders"`
	PendingOrders      int64           `json:"pendingOrders"`
	TotalProducts      int64           `json:"totalProducts"`
	OutOfStockProducts int64           `json:"outOfStockProducts"`
	TotalCustomers     int64           `json:"totalCustomers"`
	CompletionRate     float64         `json:"completionRate"`
}

type Dashboard struct {
	KPI          DashboardKPI   `json:"kpi"`
	TopProducts  []TopProduct   `json:"topProducts"`
	RevenueByDay []RevenuePoint `json:"revenueByDay"`
}

// ImportResult accounts for a bulk product import row by row.
type ImportResult struct {
	BatchID string   `json:"batch_id"`
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}

// ExportFile is a ready-to-send attachment.
type ExportFile struct {
	Content     []byte
	Filename    string
	ContentType string
}
