package category

import (
	"context"
	"testing"

	"threadmarket/domain"
	"threadmarket/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCategoryRepo struct {
	categories map[uint]domain.Category
	nextID     uint
	deleted    []uint
}

func newFakeCategoryRepo(categories ...domain.Category) *fakeCategoryRepo {
	r := &fakeCategoryRepo{
		categories: make(map[uint]domain.Category),
		nextID:     1,
	}
	for _, c := range categories {
		r.categories[c.ID] = c
		if c.ID >= r.nextID {
			r.nextID = c.ID + 1
		}
	}
	return r
}

func (r *fakeCategoryRepo) Create(ctx context.Context, category *domain.Category) error {
	category.ID = r.nextID
	r.nextID++
	r.categories[category.ID] = *category
	return nil
}

func (r *fakeCategoryRepo) FindByID(ctx context.Context, id uint) (domain.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return domain.Category{}, apperror.NotFound("category does not exist")
	}
	return c, nil
}

func (r *fakeCategoryRepo) FindByName(ctx context.Context, name string) (domain.Category, error) {
	for _, c := range r.categories {
		if c.Name == name {
			return c, nil
		}
	}
	return domain.Category{}, apperror.NotFound("category does not exist")
}

func (r *fakeCategoryRepo) FindAll(ctx context.Context, f domain.CategoryFilters) ([]domain.Category, int64, error) {
	var result []domain.Category
	for _, c := range r.categories {
		result = append(result, c)
	}
	return result, int64(len(result)), nil
}

func (r *fakeCategoryRepo) Update(ctx context.Context, category *domain.Category) error {
	existing, ok := r.categories[category.ID]
	if !ok {
		return apperror.NotFound("category does not exist")
	}
	if category.Name != "" {
		existing.Name = category.Name
	}
	if category.Status != "" {
		existing.Status = category.Status
	}
	r.categories[category.ID] = existing
	return nil
}

func (r *fakeCategoryRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := r.categories[id]; !ok {
		return apperror.NotFound("category does not exist")
	}
	delete(r.categories, id)
	r.deleted = append(r.deleted, id)
	return nil
}

type fakeProductCounter struct {
	counts map[uint]int64
}

func (f *fakeProductCounter) CountByCategory(ctx context.Context, categoryID uint) (int64, error) {
	return f.counts[categoryID], nil
}

func TestCreateCategory(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := NewCategoryService(repo, &fakeProductCounter{})

	created, err := svc.CreateCategory(context.Background(), &domain.Category{Name: "Shirts"})
	require.NoError(t, err)

	assert.NotZero(t, created.ID)
	assert.Equal(t, "Shirts", created.Name)
	assert.Equal(t, domain.StatusActive, created.Status)
}

func TestCreateCategoryRejectsDuplicateName(t *testing.T) {
	repo := newFakeCategoryRepo(domain.Category{ID: 1, Name: "Shirts", Status: domain.StatusActive})
	svc := NewCategoryService(repo, &fakeProductCounter{})

	_, err := svc.CreateCategory(context.Background(), &domain.Category{Name: "Shirts"})
	require.Error(t, err)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
}

func TestCreateCategoryRequiresName(t *testing.T) {
	svc := NewCategoryService(newFakeCategoryRepo(), &fakeProductCounter{})

	_, err := svc.CreateCategory(context.Background(), &domain.Category{})
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestUpdateCategoryAllowsKeepingOwnName(t *testing.T) {
	repo := newFakeCategoryRepo(domain.Category{ID: 1, Name: "Shirts", Status: domain.StatusActive})
	svc := NewCategoryService(repo, &fakeProductCounter{})

	updated, err := svc.UpdateCategory(context.Background(), &domain.Category{ID: 1, Name: "Shirts", Status: domain.StatusInactive})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInactive, updated.Status)
}

func TestUpdateCategoryRejectsNameTakenByOther(t *testing.T) {
	repo := newFakeCategoryRepo(
		domain.Category{ID: 1, Name: "Shirts", Status: domain.StatusActive},
		domain.Category{ID: 2, Name: "Pants", Status: domain.StatusActive},
	)
	svc := NewCategoryService(repo, &fakeProductCounter{})

	_, err := svc.UpdateCategory(context.Background(), &domain.Category{ID: 2, Name: "Shirts"})
	require.Error(t, err)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
}

func TestDeleteCategoryBlockedByProducts(t *testing.T) {
	repo := newFakeCategoryRepo(domain.Category{ID: 1, Name: "Shirts", Status: domain.StatusActive})
	svc := NewCategoryService(repo, &fakeProductCounter{counts: map[uint]int64{1: 3}})

	err := svc.DeleteCategory(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	assert.Contains(t, err.Error(), "3")
	assert.Empty(t, repo.deleted)
}

func TestDeleteCategoryWithoutProducts(t *testing.T) {
	repo := newFakeCategoryRepo(domain.Category{ID: 1, Name: "Shirts", Status: domain.StatusActive})
	svc := NewCategoryService(repo, &fakeProductCounter{})

	require.NoError(t, svc.DeleteCategory(context.Background(), 1))
	assert.Equal(t, []uint{1}, repo.deleted)
}

func TestDeleteMissingCategory(t *testing.T) {
	svc := NewCategoryService(newFakeCategoryRepo(), &fakeProductCounter{})

	err := svc.DeleteCategory(context.Background(), 9)
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}
