package category

import (
	"context"

	"threadmarket/domain"
	"threadmarket/pkg/apperror"
	"threadmarket/pkg/logger"
)

// CategoryRepository contract interface
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	FindByID(ctx context.Context, id uint) (domain.Category, error)
	FindByName(ctx context.Context, name string) (domain.Category, error)
	FindAll(ctx context.Context, f domain.CategoryFilters) ([]domain.Category, int64, error)
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id uint) error
}

// ProductCounter reports how many products reference a category.
type ProductCounter interface {
	CountByCategory(ctx context.Context, categoryID uint) (int64, error)
}

type categoryService struct {
	categoryRepo CategoryRepository
	products     ProductCounter
}

func NewCategoryService(categoryRepo CategoryRepository, products ProductCounter) *categoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		products:     products,
	}
}

func (s *categoryService) GetAllCategories(ctx context.Context, f domain.CategoryFilters) ([]domain.Category, domain.Pagination, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 100
	}

	result, total, err := s.categoryRepo.FindAll(ctx, f)
	if err != nil {
		return nil, domain.Pagination{}, err
	}

	return result, domain.NewPagination(total, f.Page, f.Limit), nil
}

func (s *categoryService) GetCategoryByID(ctx context.Context, id uint) (domain.Category, error) {
	if id == 0 {
		return domain.Category{}, apperror.Validation("invalid category id")
	}

	return s.categoryRepo.FindByID(ctx, id)
}

func (s *categoryService) CreateCategory(ctx context.Context, category *domain.Category) (domain.Category, error) {
	if category.Name == "" {
		return domain.Category{}, apperror.Validation("category name is required")
	}

	if category.Status == "" {
		category.Status = domain.StatusActive
	}
	if category.Status != domain.StatusActive && category.Status != domain.StatusInactive {
		return domain.Category{}, apperror.Validation("invalid category status")
	}

	if err := s.ensureUniqueName(ctx, category.Name, 0); err != nil {
		return domain.Category{}, err
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		logger.Error("failed to create category", err)
		return domain.Category{}, err
	}

	logger.Info("category created", "category_id", category.ID)

	return *category, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, category *domain.Category) (domain.Category, error) {
	if category.ID == 0 {
		return domain.Category{}, apperror.Validation("category id is required")
	}

	if _, err := s.categoryRepo.FindByID(ctx, category.ID); err != nil {
		return domain.Category{}, err
	}

	if category.Name != "" {
		if err := s.ensureUniqueName(ctx, category.Name, category.ID); err != nil {
			return domain.Category{}, err
		}
	}

	if category.Status != "" && category.Status != domain.StatusActive && category.Status != domain.StatusInactive {
		return domain.Category{}, apperror.Validation("invalid category status")
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		logger.Error("failed to update category", err)
		return domain.Category{}, err
	}

	return s.categoryRepo.FindByID(ctx, category.ID)
}

func (s *categoryService) DeleteCategory(ctx context.Context, id uint) error {
	if id == 0 {
		return apperror.Validation("invalid category id")
	}

	if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
		return err
	}

	count, err := s.products.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperror.Conflict("cannot delete category with %d associated products", count)
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		logger.Error("failed to delete category", err)
		return err
	}

	logger.Info("category deleted", "category_id", id)

	return nil
}

func (s *categoryService) ensureUniqueName(ctx context.Context, name string, selfID uint) error {
	existing, err := s.categoryRepo.FindByName(ctx, name)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return nil
		}
		return err
	}

	if existing.ID != selfID {
		return apperror.Conflict("category name already exists")
	}

	return nil
}
