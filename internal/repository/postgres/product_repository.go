package postgres

import (
	"context"
	"errors"
	"fmt"

	"threadmarket/domain"
	"threadmarket/pkg/apperror"

	"gorm.io/gorm"
)

type ProductRepository struct {
	DB *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{
		DB: db,
	}
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if err := r.DB.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id uint) (domain.Product, error) {
	var product domain.Product

	err := r.DB.WithContext(ctx).Preload("Category").First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Product{}, apperror.NotFound("product does not exist")
		}
		return domain.Product{}, fmt.Errorf("failed to find product: %w", err)
	}

	return product, nil
}

var productSortFields = map[string]bool{
	"name":       true,
	"price":      true,
	"created_at": true,
	"stock":      true,
}

func (r *ProductRepository) FindAll(ctx context.Context, f domain.ProductFilters) ([]domain.Product, int64, error) {
	query := r.DB.WithContext(ctx).Model(&domain.Product{})

	if f.PublicOnly {
		query = query.Where("status = ?", domain.StatusActive)
	} else if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.CategoryID != 0 {
		query = query.Where("category_id = ?", f.CategoryID)
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if f.MinPrice != nil {
		query = query.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		query = query.Where("price <= ?", *f.MaxPrice)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	sortField := "created_at"
	if productSortFields[f.SortBy] {
		sortField = f.SortBy
	}
	direction := "DESC"
	if f.SortOrder == "asc" || f.SortOrder == "ASC" {
		direction = "ASC"
	}

	var result []domain.Product
	err := query.
		Preload("Category").
		Order(sortField + " " + direction).
		Limit(f.Limit).
		Offset((f.Page - 1) * f.Limit).
		Find(&result).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find products: %w", err)
	}

	return result, total, nil
}

func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	updateData := map[string]interface{}{
		"name":        product.Name,
		"description": product.Description,
		"price":       product.Price,
		"sale_price":  product.SalePrice,
		"stock":       product.Stock,
		"status":      product.Status,
		"category_id": product.CategoryID,
	}

	result := r.DB.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", product.ID).Updates(updateData)
	if result.Error != nil {
		return fmt.Errorf("failed to update product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("product does not exist")
	}

	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	result := r.DB.WithContext(ctx).Delete(&domain.Product{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("product does not exist")
	}

	return nil
}

func (r *ProductRepository) BulkDelete(ctx context.Context, ids []uint) (int64, error) {
	result := r.DB.WithContext(ctx).Where("id IN ?", ids).Delete(&domain.Product{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to bulk delete products: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// CountByCategory backs the category delete guard.
func (r *ProductRepository) CountByCategory(ctx context.Context, categoryID uint) (int64, error) {
	var count int64

	err := r.DB.WithContext(ctx).
		Model(&domain.Product{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count products by category: %w", err)
	}

	return count, nil
}
