package orders

import (
	"context"
	"sync"
	"testing"

	"threadmarket/domain"
	"threadmarket/pkg/apperror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store. InTransaction runs callbacks against a
// snapshot under a mutex and only applies the snapshot on success, mirroring
// commit/rollback semantics.
type fakeStore struct {
	mu       sync.Mutex
	products map[uint]domain.Product
	orders   map[uint]domain.Order
	nextID   uint
}

func newFakeStore(products ...domain.Product) *fakeStore {
	s := &fakeStore{
		products: make(map[uint]domain.Product),
		orders:   make(map[uint]domain.Order),
		nextID:   1,
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *fakeStore) snapshot() *fakeStore {
	cp := &fakeStore{
		products: make(map[uint]domain.Product, len(s.products)),
		orders:   make(map[uint]domain.Order, len(s.orders)),
		nextID:   s.nextID,
	}
	for id, p := range s.products {
		cp.products[id] = p
	}
	for id, o := range s.orders {
		cp.orders[id] = o
	}
	return cp
}

func (s *fakeStore) InTransaction(ctx context.Context, fn func(tx Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.snapshot()
	if err := fn(tx); err != nil {
		return err
	}

	s.products = tx.products
	s.orders = tx.orders
	s.nextID = tx.nextID
	return nil
}

func (s *fakeStore) GetProductForUpdate(ctx context.Context, id uint) (domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return domain.Product{}, apperror.NotFound("product does not exist")
	}
	return p, nil
}

func (s *fakeStore) AdjustStock(ctx context.Context, productID uint, delta int) error {
	p, ok := s.products[productID]
	if !ok {
		return apperror.NotFound("product does not exist")
	}
	p.Stock += delta
	s.products[productID] = p
	return nil
}

func (s *fakeStore) CreateOrder(ctx context.Context, order *domain.Order) error {
	order.ID = s.nextID
	s.nextID++
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	s.orders[order.ID] = *order
	return nil
}

// GetOrder takes the lock because the service reads committed state while
// other goroutines may be mid-transaction. Snapshot copies have their own
// zero mutex, so calls inside a transaction do not deadlock.
func (s *fakeStore) GetOrder(ctx context.Context, id uint) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return domain.Order{}, apperror.NotFound("order does not exist")
	}
	return o, nil
}

func (s *fakeStore) ListOrders(ctx context.Context, f domain.OrderFilters) ([]domain.Order, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []domain.Order
	for _, o := range s.orders {
		result = append(result, o)
	}
	return result, int64(len(result)), nil
}

func (s *fakeStore) GetOrderItems(ctx context.Context, orderID uint) ([]domain.OrderItem, error) {
	o, ok := s.orders[orderID]
	if !ok {
		return nil, apperror.NotFound("order does not exist")
	}
	return o.Items, nil
}

func (s *fakeStore) UpdateOrderStatus(ctx context.Context, id uint, status string) error {
	o, ok := s.orders[id]
	if !ok {
		return apperror.NotFound("order does not exist")
	}
	o.Status = status
	s.orders[id] = o
	return nil
}

func (s *fakeStore) DeleteOrder(ctx context.Context, id uint) error {
	if _, ok := s.orders[id]; !ok {
		return apperror.NotFound("order does not exist")
	}
	delete(s.orders, id)
	return nil
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCreateOrderComputesTotal(t *testing.T) {
	store := newFakeStore(
		domain.Product{ID: 1, Name: "Denim Jacket", Price: price("80.00"), Stock: 10, Status: domain.StatusActive},
		domain.Product{ID: 2, Name: "Plain Tee", Price: price("15.50"), Stock: 10, Status: domain.StatusActive},
	)
	svc := NewOrdersService(store)

	order, err := svc.Create(context.Background(), 7, []domain.OrderLine{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 3},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.True(t, order.TotalAmount.Equal(price("206.50")), "got %s", order.TotalAmount)
	assert.Len(t, order.Items, 2)

	assert.Equal(t, 8, store.products[1].Stock)
	assert.Equal(t, 7, store.products[2].Stock)
}

func TestCreateOrderUsesSalePrice(t *testing.T) {
	sale := price("49.99")
	store := newFakeStore(
		domain.Product{ID: 1, Name: "Wool Coat", Price: price("120.00"), SalePrice: &sale, Stock: 5, Status: domain.StatusActive},
	)
	svc := NewOrdersService(store)

	order, err := svc.Create(context.Background(), 1, []domain.OrderLine{{ProductID: 1, Quantity: 2}})
	require.NoError(t, err)

	assert.True(t, order.TotalAmount.Equal(price("99.98")), "got %s", order.TotalAmount)
	assert.True(t, order.Items[0].Price.Equal(sale))
}

func TestCreateOrderInsufficientStockRollsBack(t *testing.T) {
	store := newFakeStore(
		domain.Product{ID: 1, Name: "Denim Jacket", Price: price("80.00"), Stock: 10, Status: domain.StatusActive},
		domain.Product{ID: 2, Name: "Plain Tee", Price: price("15.50"), Stock: 1, Status: domain.StatusActive},
	)
	svc := NewOrdersService(store)

	_, err := svc.Create(context.Background(), 7, []domain.OrderLine{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 5},
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	// nothing persisted, no stock touched
	assert.Empty(t, store.orders)
	assert.Equal(t, 10, store.products[1].Stock)
	assert.Equal(t, 1, store.products[2].Stock)
}

func TestCreateOrderMergesRepeatedProductLines(t *testing.T) {
	store := newFakeStore(
		domain.Product{ID: 1, Name: "Denim Jacket", Price: price("80.00"), Stock: 3, Status: domain.StatusActive},
	)
	svc := NewOrdersService(store)

	// Two lines of 2 add up past the stock of 3; the check must see the
	// combined quantity, not each line on its own.
	_, err := svc.Create(context.Background(), 7, []domain.OrderLine{
		{ProductID: 1, Quantity: 2},
		{ProductID: 1, Quantity: 2},
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	assert.Empty(t, store.orders)
	assert.Equal(t, 3, store.products[1].Stock)

	order, err := svc.Create(context.Background(), 7, []domain.OrderLine{
		{ProductID: 1, Quantity: 1},
		{ProductID: 1, Quantity: 2},
	})
	require.NoError(t, err)

	require.Len(t, order.Items, 1)
	assert.Equal(t, 3, order.Items[0].Quantity)
	assert.True(t, order.TotalAmount.Equal(price("240.00")), "got %s", order.TotalAmount)
	assert.Equal(t, 0, store.products[1].Stock)
}

func TestCreateOrderRejectsInactiveProduct(t *testing.T) {
	store := newFakeStore(
		domain.Product{ID: 1, Name: "Retired Hoodie", Price: price("40.00"), Stock: 10, Status: domain.StatusInactive},
	)
	svc := NewOrdersService(store)

	_, err := svc.Create(context.Background(), 1, []domain.OrderLine{{ProductID: 1, Quantity: 1}})
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestCreateOrderRejectsMissingProduct(t *testing.T) {
	store := newFakeStore()
	svc := NewOrdersService(store)

	_, err := svc.Create(context.Background(), 1, []domain.OrderLine{{ProductID: 99, Quantity: 1}})
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestCreateOrderRejectsEmptyAndBadLines(t *testing.T) {
	svc := NewOrdersService(newFakeStore())

	_, err := svc.Create(context.Background(), 1, nil)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = svc.Create(context.Background(), 1, []domain.OrderLine{{ProductID: 1, Quantity: 0}})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestCancelRestoresStockExactlyOnce(t *testing.T) {
	store := newFakeStore(
		domain.Product{ID: 1, Name: "Denim Jacket", Price: price("80.00"), Stock: 10, Status: domain.StatusActive},
	)
	svc := NewOrdersService(store)

	order, err := svc.Create(context.Background(), 1, []domain.OrderLine{{ProductID: 1, Quantity: 4}})
	require.NoError(t, err)
	require.Equal(t, 6, store.products[1].Stock)

	_, err = svc.UpdateStatus(context.Background(), order.ID, domain.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, 10, store.products[1].Stock)

	// cancelling again must not restore twice
	_, err = svc.UpdateStatus(context.Background(), order.ID, domain.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, 10, store.products[1].Stock)
}

func TestDeleteRestoresStockUnlessCancelled(t *testing.T) {
	store := newFakeStore(
		domain.Product{ID: 1, Name: "Denim Jacket", Price: price("80.00"), Stock: 10, Status: domain.StatusActive},
	)
	svc := NewOrdersService(store)

	order, err := svc.Create(context.Background(), 1, []domain.OrderLine{{ProductID: 1, Quantity: 3}})
	require.NoError(t, err)
	require.Equal(t, 7, store.products[1].Stock)

	require.NoError(t, svc.Delete(context.Background(), order.ID))
	assert.Equal(t, 10, store.products[1].Stock)
	assert.Empty(t, store.orders)

	// an already-cancelled order got its stock back at cancellation time
	order, err = svc.Create(context.Background(), 1, []domain.OrderLine{{ProductID: 1, Quantity: 3}})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(context.Background(), order.ID, domain.OrderStatusCancelled)
	require.NoError(t, err)
	require.Equal(t, 10, store.products[1].Stock)

	require.NoError(t, svc.Delete(context.Background(), order.ID))
	assert.Equal(t, 10, store.products[1].Stock)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc := NewOrdersService(newFakeStore())

	_, err := svc.UpdateStatus(context.Background(), 1, "delivered-ish")
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestConcurrentOrdersForLastUnit(t *testing.T) {
	store := newFakeStore(
		domain.Product{ID: 1, Name: "Limited Sneaker", Price: price("200.00"), Stock: 1, Status: domain.StatusActive},
	)
	svc := NewOrdersService(store)

	var wg sync.WaitGroup
	errs := make([]error, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(context.Background(), uint(i+1), []domain.OrderLine{{ProductID: 1, Quantity: 1}})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 0, store.products[1].Stock)
	assert.Len(t, store.orders, 1)
}
