package product

import (
	"context"
	"testing"

	"threadmarket/domain"
	"threadmarket/pkg/apperror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProductRepo struct {
	products map[uint]domain.Product
	nextID   uint
	lastF    domain.ProductFilters
}

func newFakeProductRepo(products ...domain.Product) *fakeProductRepo {
	r := &fakeProductRepo{
		products: make(map[uint]domain.Product),
		nextID:   1,
	}
	for _, p := range products {
		r.products[p.ID] = p
		if p.ID >= r.nextID {
			r.nextID = p.ID + 1
		}
	}
	return r
}

func (r *fakeProductRepo) Create(ctx context.Context, product *domain.Product) error {
	product.ID = r.nextID
	r.nextID++
	r.products[product.ID] = *product
	return nil
}

func (r *fakeProductRepo) FindByID(ctx context.Context, id uint) (domain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return domain.Product{}, apperror.NotFound("product does not exist")
	}
	return p, nil
}

func (r *fakeProductRepo) FindAll(ctx context.Context, f domain.ProductFilters) ([]domain.Product, int64, error) {
	r.lastF = f
	var result []domain.Product
	for _, p := range r.products {
		result = append(result, p)
	}
	return result, int64(len(result)), nil
}

func (r *fakeProductRepo) Update(ctx context.Context, product *domain.Product) error {
	if _, ok := r.products[product.ID]; !ok {
		return apperror.NotFound("product does not exist")
	}
	r.products[product.ID] = *product
	return nil
}

func (r *fakeProductRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := r.products[id]; !ok {
		return apperror.NotFound("product does not exist")
	}
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) BulkDelete(ctx context.Context, ids []uint) (int64, error) {
	var deleted int64
	for _, id := range ids {
		if _, ok := r.products[id]; ok {
			delete(r.products, id)
			deleted++
		}
	}
	return deleted, nil
}

type fakeCategoryRepo struct {
	categories map[uint]domain.Category
}

func (r *fakeCategoryRepo) FindByID(ctx context.Context, id uint) (domain.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return domain.Category{}, apperror.NotFound("category does not exist")
	}
	return c, nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func uintPtr(v uint) *uint {
	return &v
}

func TestCreateProductDefaultsToActive(t *testing.T) {
	repo := newFakeProductRepo()
	svc := NewProductService(repo, &fakeCategoryRepo{})

	created, err := svc.CreateProduct(context.Background(), &domain.Product{
		Name:  "Plain Tee",
		Price: dec("15.50"),
		Stock: 10,
	})
	require.NoError(t, err)

	assert.NotZero(t, created.ID)
	assert.Equal(t, domain.StatusActive, created.Status)
}

func TestCreateProductValidation(t *testing.T) {
	tests := []struct {
		name    string
		product domain.Product
	}{
		{"missing name", domain.Product{Price: dec("10.00")}},
		{"zero price", domain.Product{Name: "Tee", Price: decimal.Zero}},
		{"negative price", domain.Product{Name: "Tee", Price: dec("-1.00")}},
		{"negative sale price", domain.Product{Name: "Tee", Price: dec("10.00"), SalePrice: decPtr("-1.00")}},
		{"sale price above price", domain.Product{Name: "Tee", Price: dec("10.00"), SalePrice: decPtr("12.00")}},
		{"sale price equals price", domain.Product{Name: "Tee", Price: dec("10.00"), SalePrice: decPtr("10.00")}},
		{"negative stock", domain.Product{Name: "Tee", Price: dec("10.00"), Stock: -1}},
		{"unknown status", domain.Product{Name: "Tee", Price: dec("10.00"), Status: "archived"}},
	}

	svc := NewProductService(newFakeProductRepo(), &fakeCategoryRepo{})

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateProduct(context.Background(), &tc.product)
			require.Error(t, err)
			assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
		})
	}
}

func TestCreateProductRejectsMissingCategory(t *testing.T) {
	svc := NewProductService(newFakeProductRepo(), &fakeCategoryRepo{})

	_, err := svc.CreateProduct(context.Background(), &domain.Product{
		Name:       "Tee",
		Price:      dec("10.00"),
		CategoryID: uintPtr(9),
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestCreateProductWithExistingCategory(t *testing.T) {
	categories := &fakeCategoryRepo{categories: map[uint]domain.Category{
		2: {ID: 2, Name: "Shirts"},
	}}
	svc := NewProductService(newFakeProductRepo(), categories)

	created, err := svc.CreateProduct(context.Background(), &domain.Product{
		Name:       "Tee",
		Price:      dec("10.00"),
		CategoryID: uintPtr(2),
	})
	require.NoError(t, err)
	assert.Equal(t, uint(2), *created.CategoryID)
}

func TestUpdateProductMissing(t *testing.T) {
	svc := NewProductService(newFakeProductRepo(), &fakeCategoryRepo{})

	_, err := svc.UpdateProduct(context.Background(), &domain.Product{
		ID:    9,
		Name:  "Tee",
		Price: dec("10.00"),
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestGetAllProductsDefaultsPaging(t *testing.T) {
	repo := newFakeProductRepo(
		domain.Product{ID: 1, Name: "Tee", Price: dec("10.00")},
	)
	svc := NewProductService(repo, &fakeCategoryRepo{})

	_, pagination, err := svc.GetAllProducts(context.Background(), domain.ProductFilters{})
	require.NoError(t, err)

	assert.Equal(t, 1, repo.lastF.Page)
	assert.Equal(t, 10, repo.lastF.Limit)
	assert.Equal(t, int64(1), pagination.Total)
	assert.Equal(t, int64(1), pagination.TotalPages)
}

func TestBulkDeleteProducts(t *testing.T) {
	repo := newFakeProductRepo(
		domain.Product{ID: 1, Name: "A", Price: dec("1.00")},
		domain.Product{ID: 2, Name: "B", Price: dec("2.00")},
	)
	svc := NewProductService(repo, &fakeCategoryRepo{})

	deleted, err := svc.BulkDeleteProducts(context.Background(), []uint{1, 2, 99})
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	_, err = svc.BulkDeleteProducts(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}
