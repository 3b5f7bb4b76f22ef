package postgres

import (
	"context"
	"errors"
	"fmt"

	"threadmarket/domain"
	"threadmarket/pkg/apperror"

	"gorm.io/gorm"
)

type CategoryRepository struct {
	DB *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{
		DB: db,
	}
}

func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	if err := r.DB.WithContext(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id uint) (domain.Category, error) {
	var category domain.Category

	err := r.DB.WithContext(ctx).First(&category, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Category{}, apperror.NotFound("category does not exist")
		}
		return domain.Category{}, fmt.Errorf("failed to find category: %w", err)
	}

	return category, nil
}

func (r *CategoryRepository) FindByName(ctx context.Context, name string) (domain.Category, error) {
	var category domain.Category

	err := r.DB.WithContext(ctx).Where("name = ?", name).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Category{}, apperror.NotFound("category does not exist")
		}
		return domain.Category{}, fmt.Errorf("failed to find category: %w", err)
	}

	return category, nil
}

func (r *CategoryRepository) FindAll(ctx context.Context, f domain.CategoryFilters) ([]domain.Category, int64, error) {
	query := r.DB.WithContext(ctx).Model(&domain.Category{})

	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.Search != "" {
		query = query.Where("name ILIKE ?", "%"+f.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count categories: %w", err)
	}

	var result []domain.Category
	err := query.
		Order("name ASC").
		Limit(f.Limit).
		Offset((f.Page - 1) * f.Limit).
		Find(&result).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find categories: %w", err)
	}

	return result, total, nil
}

func (r *CategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	updateData := map[string]interface{}{}
	if category.Name != "" {
		updateData["name"] = category.Name
	}
	if category.Status != "" {
		updateData["status"] = category.Status
	}
	if len(updateData) == 0 {
		return apperror.Validation("no data to update")
	}

	result := r.DB.WithContext(ctx).Model(&domain.Category{}).Where("id = ?", category.ID).Updates(updateData)
	if result.Error != nil {
		return fmt.Errorf("failed to update category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("category does not exist")
	}

	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id uint) error {
	result := r.DB.WithContext(ctx).Delete(&domain.Category{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("category does not exist")
	}

	return nil
}
