package postgres

import (
	"context"
	"errors"
	"fmt"

	"threadmarket/business/orders"
	"threadmarket/domain"
	"threadmarket/pkg/apperror"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrdersRepository struct {
	DB *gorm.DB
}

func NewOrdersRepository(db *gorm.DB) *OrdersRepository {
	return &OrdersRepository{
		DB: db,
	}
}

// InTransaction runs fn against a repository bound to a single database
// transaction, so the stock check-then-mutate sequence is atomic.
func (r *OrdersRepository) InTransaction(ctx context.Context, fn func(tx orders.Store) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&OrdersRepository{DB: tx})
	})
}

// GetProductForUpdate loads a product under a row-level lock. Only meaningful
// inside InTransaction; the lock is held until the transaction ends.
func (r *OrdersRepository) GetProductForUpdate(ctx context.Context, id uint) (domain.Product, error) {
	var product domain.Product

	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Product{}, apperror.NotFound("product %d does not exist", id)
		}
		return domain.Product{}, fmt.Errorf("failed to lock product: %w", err)
	}

	return product, nil
}

func (r *OrdersRepository) AdjustStock(ctx context.Context, productID uint, delta int) error {
	result := r.DB.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", delta))
	if result.Error != nil {
		return fmt.Errorf("failed to adjust stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("product %d does not exist", productID)
	}

	return nil
}

func (r *OrdersRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	if err := r.DB.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

// GetOrder returns the fully joined order: user, items and their products.
func (r *OrdersRepository) GetOrder(ctx context.Context, id uint) (domain.Order, error) {
	var order domain.Order

	err := r.DB.WithContext(ctx).
		Preload("User").
		Preload("Items").
		Preload("Items.Product").
		First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Order{}, apperror.NotFound("order does not exist")
		}
		return domain.Order{}, fmt.Errorf("failed to find order: %w", err)
	}

	return order, nil
}

func (r *OrdersRepository) ListOrders(ctx context.Context, f domain.OrderFilters) ([]domain.Order, int64, error) {
	query := r.DB.WithContext(ctx).Model(&domain.Order{})

	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.UserID != 0 {
		query = query.Where("user_id = ?", f.UserID)
	}
	if f.StartDate != nil {
		query = query.Where("created_at >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		query = query.Where("created_at <= ?", *f.EndDate)
	}
	if f.MinAmount != nil {
		query = query.Where("total_amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		query = query.Where("total_amount <= ?", *f.MaxAmount)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var result []domain.Order
	err := query.
		Preload("User").
		Order("created_at DESC").
		Limit(f.Limit).
		Offset((f.Page - 1) * f.Limit).
		Find(&result).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	return result, total, nil
}

func (r *OrdersRepository) GetOrderItems(ctx context.Context, orderID uint) ([]domain.OrderItem, error) {
	var items []domain.OrderItem

	err := r.DB.WithContext(ctx).Where("order_id = ?", orderID).Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find order items: %w", err)
	}

	return items, nil
}

func (r *OrdersRepository) UpdateOrderStatus(ctx context.Context, id uint, status string) error {
	result := r.DB.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update order status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("order does not exist")
	}

	return nil
}

func (r *OrdersRepository) DeleteOrder(ctx context.Context, id uint) error {
	if err := r.DB.WithContext(ctx).Where("order_id = ?", id).Delete(&domain.OrderItem{}).Error; err != nil {
		return fmt.Errorf("failed to delete order items: %w", err)
	}

	result := r.DB.WithContext(ctx).Delete(&domain.Order{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete order: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("order does not exist")
	}

	return nil
}
