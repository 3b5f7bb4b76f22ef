package orders

import (
	"context"

	"threadmarket/domain"
	"threadmarket/pkg/apperror"
	"threadmarket/pkg/logger"

	"github.com/shopspring/decimal"
)

// Store is the persistence contract for order fulfillment. InTransaction
// scopes the stock check-then-mutate sequence to one database transaction;
// GetProductForUpdate must hold a row lock for the rest of that transaction so
// two concurrent orders cannot both pass the stock check on the same product.
type Store interface {
	InTransaction(ctx context.Context, fn func(tx Store) error) error
	GetProductForUpdate(ctx context.Context, id uint) (domain.Product, error)
	AdjustStock(ctx context.Context, productID uint, delta int) error
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, id uint) (domain.Order, error)
	ListOrders(ctx context.Context, f domain.OrderFilters) ([]domain.Order, int64, error)
	GetOrderItems(ctx context.Context, orderID uint) ([]domain.OrderItem, error)
	UpdateOrderStatus(ctx context.Context, id uint, status string) error
	DeleteOrder(ctx context.Context, id uint) error
}

type OrdersService struct {
	store Store
}

func NewOrdersService(store Store) *OrdersService {
	return &OrdersService{
		store: store,
	}
}

// Create places an order for the requested cart lines. Lines repeating a
// product are merged first, so the stock check always sees the combined
// quantity. Per line: the product must exist, be active and have enough
// stock; the unit price is the sale price when set. The order row, its items
// and the stock decrements are persisted atomically, so a failing line leaves
// nothing behind.
func (s *OrdersService) Create(ctx context.Context, userID uint, lines []domain.OrderLine) (domain.Order, error) {
	if len(lines) == 0 {
		return domain.Order{}, apperror.Validation("order items are required")
	}

	for _, line := range lines {
		if line.ProductID == 0 || line.Quantity <= 0 {
			return domain.Order{}, apperror.Validation("order items need a product and a positive quantity")
		}
	}

	lines = mergeLines(lines)

	var orderID uint
	err := s.store.InTransaction(ctx, func(tx Store) error {
		total := decimal.Zero
		items := make([]domain.OrderItem, 0, len(lines))

		for _, line := range lines {
			product, err := tx.GetProductForUpdate(ctx, line.ProductID)
			if err != nil {
				return err
			}

			if product.Status != domain.StatusActive {
				return apperror.Validation("product %s is not available", product.Name)
			}

			if product.Stock < line.Quantity {
				return apperror.Conflict("product %s does not have enough stock", product.Name)
			}

			price := product.UnitPrice()
			total = total.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
			items = append(items, domain.OrderItem{
				ProductID: line.ProductID,
				Price:     price,
				Quantity:  line.Quantity,
			})
		}

		order := domain.Order{
			UserID:      userID,
			TotalAmount: total,
			Status:      domain.OrderStatusPending,
			Items:       items,
		}

		if err := tx.CreateOrder(ctx, &order); err != nil {
			return err
		}

		for _, line := range lines {
			if err := tx.AdjustStock(ctx, line.ProductID, -line.Quantity); err != nil {
				return err
			}
		}

		orderID = order.ID
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	logger.Info("order created", "order_id", orderID, "user_id", userID)

	return s.store.GetOrder(ctx, orderID)
}

func (s *OrdersService) Get(ctx context.Context, id uint) (domain.Order, error) {
	return s.store.GetOrder(ctx, id)
}

func (s *OrdersService) List(ctx context.Context, f domain.OrderFilters) ([]domain.Order, domain.Pagination, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}

	result, total, err := s.store.ListOrders(ctx, f)
	if err != nil {
		return nil, domain.Pagination{}, err
	}

	return result, domain.NewPagination(total, f.Page, f.Limit), nil
}

// UpdateStatus moves an order to one of the four allowed statuses. Only the
// transition into cancelled touches inventory: stock for every line is
// restored, once, in the same transaction as the status write. Cancelling an
// already-cancelled order never restores twice.
func (s *OrdersService) UpdateStatus(ctx context.Context, id uint, status string) (domain.Order, error) {
	if !domain.ValidOrderStatuses[status] {
		return domain.Order{}, apperror.Validation("invalid order status")
	}

	err := s.store.InTransaction(ctx, func(tx Store) error {
		order, err := tx.GetOrder(ctx, id)
		if err != nil {
			return err
		}

		if status == domain.OrderStatusCancelled && order.Status != domain.OrderStatusCancelled {
			if err := restoreStock(ctx, tx, id); err != nil {
				return err
			}
		}

		return tx.UpdateOrderStatus(ctx, id, status)
	})
	if err != nil {
		return domain.Order{}, err
	}

	return s.store.GetOrder(ctx, id)
}

// Delete removes an order and its items. Stock is restored first unless the
// order was already cancelled, in which case the restore happened at
// cancellation time.
func (s *OrdersService) Delete(ctx context.Context, id uint) error {
	return s.store.InTransaction(ctx, func(tx Store) error {
		order, err := tx.GetOrder(ctx, id)
		if err != nil {
			return err
		}

		if order.Status != domain.OrderStatusCancelled {
			if err := restoreStock(ctx, tx, id); err != nil {
				return err
			}
		}

		return tx.DeleteOrder(ctx, id)
	})
}

// mergeLines collapses lines that reference the same product into one line
// with the summed quantity, keeping first-seen order.
func mergeLines(lines []domain.OrderLine) []domain.OrderLine {
	merged := make([]domain.OrderLine, 0, len(lines))
	index := make(map[uint]int, len(lines))

	for _, line := range lines {
		if i, ok := index[line.ProductID]; ok {
			merged[i].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(merged)
		merged = append(merged, line)
	}

	return merged
}

func restoreStock(ctx context.Context, tx Store, orderID uint) error {
	items, err := tx.GetOrderItems(ctx, orderID)
	if err != nil {
		return err
	}

	for _, item := range items {
		if err := tx.AdjustStock(ctx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}

	return nil
}
