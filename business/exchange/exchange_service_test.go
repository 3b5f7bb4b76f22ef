package exchange

import (
	"context"
	"strings"
	"testing"

	"threadmarket/domain"
	"threadmarket/pkg/apperror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProductStore struct {
	created []domain.Product
	listed  []domain.Product
	failOn  string
}

func (f *fakeProductStore) Create(ctx context.Context, product *domain.Product) error {
	if f.failOn != "" && product.Name == f.failOn {
		return apperror.Conflict("duplicate product")
	}
	product.ID = uint(len(f.created) + 1)
	f.created = append(f.created, *product)
	return nil
}

func (f *fakeProductStore) FindAll(ctx context.Context, filters domain.ProductFilters) ([]domain.Product, int64, error) {
	return f.listed, int64(len(f.listed)), nil
}

type fakeOrderStore struct {
	listed []domain.Order
}

func (f *fakeOrderStore) ListOrders(ctx context.Context, filters domain.OrderFilters) ([]domain.Order, int64, error) {
	return f.listed, int64(len(f.listed)), nil
}

type fakeCategoryStore struct {
	listed []domain.Category
}

func (f *fakeCategoryStore) FindAll(ctx context.Context, filters domain.CategoryFilters) ([]domain.Category, int64, error) {
	return f.listed, int64(len(f.listed)), nil
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestImportProductsAccountsPerRow(t *testing.T) {
	products := &fakeProductStore{}
	svc := NewExchangeService(products, &fakeOrderStore{}, &fakeCategoryStore{})

	result, err := svc.ImportProducts(context.Background(), []ImportRow{
		{Name: "Denim Jacket", Price: dec("80.00")},
		{Name: "No Price Tee"},
		{Name: "", Price: dec("10.00")},
		{Name: "Plain Tee", Price: dec("15.50")},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Success)
	assert.Equal(t, 2, result.Failed)
	assert.NotEmpty(t, result.BatchID)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "row 2")
	assert.Contains(t, result.Errors[0], "price is required")
	assert.Contains(t, result.Errors[1], "row 3")
	assert.Contains(t, result.Errors[1], "name is required")

	require.Len(t, products.created, 2)
	assert.Equal(t, "Denim Jacket", products.created[0].Name)
	assert.Equal(t, domain.StatusActive, products.created[0].Status)
}

func TestImportProductsBadRowDoesNotAbortBatch(t *testing.T) {
	products := &fakeProductStore{failOn: "Dupe"}
	svc := NewExchangeService(products, &fakeOrderStore{}, &fakeCategoryStore{})

	result, err := svc.ImportProducts(context.Background(), []ImportRow{
		{Name: "Dupe", Price: dec("10.00")},
		{Name: "Fine", Price: dec("12.00")},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Success)
	assert.Equal(t, 1, result.Failed)
	assert.Contains(t, result.Errors[0], "row 1")
}

func TestImportProductsRejectsEmptyPayload(t *testing.T) {
	svc := NewExchangeService(&fakeProductStore{}, &fakeOrderStore{}, &fakeCategoryStore{})

	_, err := svc.ImportProducts(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestExportProductsCSV(t *testing.T) {
	sale := decimal.RequireFromString("9.99")
	products := &fakeProductStore{listed: []domain.Product{
		{
			ID:        1,
			Name:      `Tee, "Classic"`,
			Price:     decimal.RequireFromString("15.50"),
			SalePrice: &sale,
			Stock:     3,
			Status:    domain.StatusActive,
			Category:  &domain.Category{Name: "Shirts"},
		},
	}}
	svc := NewExchangeService(products, &fakeOrderStore{}, &fakeCategoryStore{})

	file, err := svc.ExportProducts(context.Background(), "csv")
	require.NoError(t, err)

	assert.Equal(t, "text/csv", file.ContentType)
	assert.True(t, strings.HasPrefix(file.Filename, "products_"))
	assert.True(t, strings.HasSuffix(file.Filename, ".csv"))

	lines := strings.Split(strings.TrimSpace(string(file.Content)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,name,description,price,sale_price,stock,status,category", lines[0])
	// the comma and quotes in the name must be csv-quoted
	assert.Contains(t, lines[1], `"Tee, ""Classic"""`)
	assert.Contains(t, lines[1], "9.99")
	assert.Contains(t, lines[1], "Shirts")
}

func TestExportProductsJSON(t *testing.T) {
	products := &fakeProductStore{listed: []domain.Product{
		{ID: 1, Name: "Plain Tee", Price: decimal.RequireFromString("15.50")},
	}}
	svc := NewExchangeService(products, &fakeOrderStore{}, &fakeCategoryStore{})

	file, err := svc.ExportProducts(context.Background(), "json")
	require.NoError(t, err)

	assert.Equal(t, "application/json", file.ContentType)
	assert.True(t, strings.HasSuffix(file.Filename, ".json"))
	assert.Contains(t, string(file.Content), `"Plain Tee"`)
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	svc := NewExchangeService(&fakeProductStore{}, &fakeOrderStore{}, &fakeCategoryStore{})

	_, err := svc.ExportProducts(context.Background(), "xlsx")
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestExportOrdersCSV(t *testing.T) {
	orders := &fakeOrderStore{listed: []domain.Order{
		{
			ID:          4,
			User:        &domain.User{Email: "buyer@example.com"},
			TotalAmount: decimal.RequireFromString("99.98"),
			Status:      domain.OrderStatusCompleted,
			Items:       []domain.OrderItem{{}, {}},
		},
	}}
	svc := NewExchangeService(&fakeProductStore{}, orders, &fakeCategoryStore{})

	file, err := svc.ExportOrders(context.Background(), "csv")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(file.Content)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,user_email,total_amount,status,items,created_at", lines[0])
	assert.Contains(t, lines[1], "buyer@example.com")
	assert.Contains(t, lines[1], "99.98")
	assert.Contains(t, lines[1], "2")
}
