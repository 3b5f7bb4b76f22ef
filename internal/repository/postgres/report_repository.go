package postgres

import (
	"context"
	"fmt"

	"threadmarket/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReportRepository runs the read-only aggregate queries behind the reporting
// endpoints. Every query filters on created_at through applyDateRange so open
// bounds behave the same everywhere.
type ReportRepository struct {
	DB *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{
		DB: db,
	}
}

func applyDateRange(query *gorm.DB, column string, rng domain.DateRange) *gorm.DB {
	if rng.Start != nil {
		query = query.Where(column+" >= ?", *rng.Start)
	}
	if rng.End != nil {
		query = query.Where(column+" <= ?", *rng.End)
	}

	return query
}

// RevenueSummary sums total_amount over completed orders in range, zero when
// none match.
func (r *ReportRepository) RevenueSummary(ctx context.Context, rng domain.DateRange) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}

	query := r.DB.WithContext(ctx).
		Model(&domain.Order{}).
		Select("COALESCE(SUM(total_amount), 0) AS total").
		Where("status IN ?", domain.CompletedOrderStatuses)
	query = applyDateRange(query, "created_at", rng)

	if err := query.Scan(&row).Error; err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum revenue: %w", err)
	}

	return row.Total, nil
}

func (r *ReportRepository) OrderCounts(ctx context.Context, rng domain.DateRange) (domain.OrderCounts, error) {
	var counts domain.OrderCounts

	total := applyDateRange(r.DB.WithContext(ctx).Model(&domain.Order{}), "created_at", rng)
	if err := total.Count(&counts.TotalOrders).Error; err != nil {
		return domain.OrderCounts{}, fmt.Errorf("failed to count orders: %w", err)
	}

	completed := applyDateRange(r.DB.WithContext(ctx).Model(&domain.Order{}), "created_at", rng).
		Where("status IN ?", domain.CompletedOrderStatuses)
	if err := completed.Count(&counts.CompletedOrders).Error; err != nil {
		return domain.OrderCounts{}, fmt.Errorf("failed to count completed orders: %w", err)
	}

	pending := applyDateRange(r.DB.WithContext(ctx).Model(&domain.Order{}), "created_at", rng).
		Where("status IN ?", domain.PendingOrderStatuses)
	if err := pending.Count(&counts.PendingOrders).Error; err != nil {
		return domain.OrderCounts{}, fmt.Errorf("failed to count pending orders: %w", err)
	}

	return counts, nil
}

// InventorySnapshot is deliberately global, never date-filtered.
func (r *ReportRepository) InventorySnapshot(ctx context.Context) (domain.InventorySnapshot, error) {
	var snapshot domain.InventorySnapshot

	if err := r.DB.WithContext(ctx).Model(&domain.Product{}).Count(&snapshot.TotalProducts).Error; err != nil {
		return domain.InventorySnapshot{}, fmt.Errorf("failed to count products: %w", err)
	}

	err := r.DB.WithContext(ctx).
		Model(&domain.Product{}).
		Where("stock = 0").
		Count(&snapshot.OutOfStockProducts).Error
	if err != nil {
		return domain.InventorySnapshot{}, fmt.Errorf("failed to count out-of-stock products: %w", err)
	}

	return snapshot, nil
}

func (r *ReportRepository) CustomerCount(ctx context.Context) (int64, error) {
	var count int64

	err := r.DB.WithContext(ctx).
		Model(&domain.User{}).
		Where("role = ?", domain.RoleUser).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count customers: %w", err)
	}

	return count, nil
}

func (r *ReportRepository) TopProducts(ctx context.Context, rng domain.DateRange, limit int) ([]domain.TopProduct, error) {
	query := r.DB.WithContext(ctx).
		Model(&domain.OrderItem{}).
		Select(
			"order_items.product_id, products.name AS product_name, products.price, " +
				"SUM(order_items.quantity) AS total_sold, " +
				"SUM(order_items.quantity * order_items.price) AS total_revenue",
		).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("orders.status IN ?", domain.CompletedOrderStatuses)
	query = applyDateRange(query, "orders.created_at", rng)

	var result []domain.TopProduct
	err := query.
		Group("order_items.product_id, products.name, products.price").
		Order("total_sold DESC").
		Limit(limit).
		Scan(&result).Error
	if err != nil {
		return nil, fmt.Errorf("failed to rank top products: %w", err)
	}

	return result, nil
}

// RevenueTrend groups completed-order revenue by calendar day ascending.
// A positive limit caps the number of rows returned.
func (r *ReportRepository) RevenueTrend(ctx context.Context, rng domain.DateRange, limit int) ([]domain.RevenuePoint, error) {
	return r.revenueBuckets(ctx, rng, "YYYY-MM-DD", limit)
}

// RevenueByPeriod groups by day or, when groupBy is "month", calendar month.
func (r *ReportRepository) RevenueByPeriod(ctx context.Context, rng domain.DateRange, groupBy string) ([]domain.RevenuePoint, error) {
	format := "YYYY-MM-DD"
	if groupBy == "month" {
		format = "YYYY-MM"
	}

	return r.revenueBuckets(ctx, rng, format, 0)
}

func (r *ReportRepository) revenueBuckets(ctx context.Context, rng domain.DateRange, format string, limit int) ([]domain.RevenuePoint, error) {
	query := r.DB.WithContext(ctx).
		Model(&domain.Order{}).
		Select(fmt.Sprintf(
			"to_char(created_at, '%s') AS period, SUM(total_amount) AS revenue, COUNT(id) AS orders",
			format,
		)).
		Where("status IN ?", domain.CompletedOrderStatuses)
	query = applyDateRange(query, "created_at", rng)

	query = query.Group("period").Order("period ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var result []domain.RevenuePoint
	if err := query.Scan(&result).Error; err != nil {
		return nil, fmt.Errorf("failed to bucket revenue: %w", err)
	}

	return result, nil
}

func (r *ReportRepository) ProductsByCategory(ctx context.Context) ([]domain.CategoryCount, error) {
	var result []domain.CategoryCount

	err := r.DB.WithContext(ctx).
		Model(&domain.Product{}).
		Select("COALESCE(categories.name, 'Uncategorized') AS category, COUNT(products.id) AS count").
		Joins("LEFT JOIN categories ON categories.id = products.category_id").
		Group("categories.name").
		Scan(&result).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count products by category: %w", err)
	}

	return result, nil
}
