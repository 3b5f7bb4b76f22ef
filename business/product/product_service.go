package product

import (
	"context"

	"threadmarket/domain"
	"threadmarket/pkg/apperror"
	"threadmarket/pkg/logger"

	"github.com/shopspring/decimal"
)

// ProductRepository contract interface
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uint) (domain.Product, error)
	FindAll(ctx context.Context, f domain.ProductFilters) ([]domain.Product, int64, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uint) error
	BulkDelete(ctx context.Context, ids []uint) (int64, error)
}

// CategoryRepository contract interface
type CategoryRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Category, error)
}

type productService struct {
	productRepo  ProductRepository
	categoryRepo CategoryRepository
}

func NewProductService(productRepo ProductRepository, categoryRepo CategoryRepository) *productService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

func (s *productService) GetAllProducts(ctx context.Context, f domain.ProductFilters) ([]domain.Product, domain.Pagination, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}

	result, total, err := s.productRepo.FindAll(ctx, f)
	if err != nil {
		return nil, domain.Pagination{}, err
	}

	return result, domain.NewPagination(total, f.Page, f.Limit), nil
}

func (s *productService) GetProductByID(ctx context.Context, id uint) (domain.Product, error) {
	if id == 0 {
		return domain.Product{}, apperror.Validation("invalid product id")
	}

	return s.productRepo.FindByID(ctx, id)
}

func (s *productService) CreateProduct(ctx context.Context, product *domain.Product) (domain.Product, error) {
	if err := validateProduct(product, product.Price); err != nil {
		return domain.Product{}, err
	}

	if product.Status == "" {
		product.Status = domain.StatusActive
	}

	if product.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *product.CategoryID); err != nil {
			return domain.Product{}, err
		}
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		logger.Error("failed to create product", err)
		return domain.Product{}, err
	}

	logger.Info("product created", "product_id", product.ID)

	return s.productRepo.FindByID(ctx, product.ID)
}

func (s *productService) UpdateProduct(ctx context.Context, product *domain.Product) (domain.Product, error) {
	if product.ID == 0 {
		return domain.Product{}, apperror.Validation("product id is required")
	}

	existing, err := s.productRepo.FindByID(ctx, product.ID)
	if err != nil {
		return domain.Product{}, err
	}

	// a PUT without a status keeps the stored one
	if product.Status == "" {
		product.Status = existing.Status
	}

	if err := validateProduct(product, product.Price); err != nil {
		return domain.Product{}, err
	}

	if product.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *product.CategoryID); err != nil {
			return domain.Product{}, err
		}
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		logger.Error("failed to update product", err)
		return domain.Product{}, err
	}

	return s.productRepo.FindByID(ctx, product.ID)
}

func (s *productService) DeleteProduct(ctx context.Context, id uint) error {
	if id == 0 {
		return apperror.Validation("invalid product id")
	}

	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		return err
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		logger.Error("failed to delete product", err)
		return err
	}

	logger.Info("product deleted", "product_id", id)

	return nil
}

func (s *productService) BulkDeleteProducts(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, apperror.Validation("product ids are required")
	}

	return s.productRepo.BulkDelete(ctx, ids)
}

// validateProduct enforces the pricing and stock rules shared by create and
// update. effectivePrice is the price the sale price must stay below.
func validateProduct(product *domain.Product, effectivePrice decimal.Decimal) error {
	if product.Name == "" {
		return apperror.Validation("product name is required")
	}

	if product.Price.LessThanOrEqual(decimal.Zero) {
		return apperror.Validation("product price must be greater than 0")
	}

	if product.SalePrice != nil {
		if product.SalePrice.IsNegative() {
			return apperror.Validation("sale price must not be negative")
		}
		if product.SalePrice.GreaterThanOrEqual(effectivePrice) {
			return apperror.Validation("sale price must be lower than the price")
		}
	}

	if product.Stock < 0 {
		return apperror.Validation("stock must not be negative")
	}

	if product.Status != "" && product.Status != domain.StatusActive && product.Status != domain.StatusInactive {
		return apperror.Validation("invalid product status")
	}

	return nil
}
