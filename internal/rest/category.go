package rest

import (
	"context"
	"net/http"
	"time"

	"threadmarket/domain"
	"threadmarket/pkg/apperror"
	"threadmarket/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type CategoryService interface {
	GetAllCategories(ctx context.Context, f domain.CategoryFilters) ([]domain.Category, domain.Pagination, error)
	GetCategoryByID(ctx context.Context, id uint) (domain.Category, error)
	CreateCategory(ctx context.Context, category *domain.Category) (domain.Category, error)
	UpdateCategory(ctx context.Context, category *domain.Category) (domain.Category, error)
	DeleteCategory(ctx context.Context, id uint) error
}

type CategoryHandler struct {
	categoryService CategoryService
	validator       *validator.Validate
	timeout         time.Duration
}

func NewCategoryHandler(categoryService CategoryService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		validator:       validator.New(),
		timeout:         10 * time.Second,
	}
}

type CategoryRequest struct {
	Name   string `json:"name" validate:"required"`
	Status string `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (h *CategoryHandler) GetAllCategories(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	filters := domain.CategoryFilters{
		Status: c.QueryParam("status"),
		Search: c.QueryParam("search"),
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 100),
	}

	categories, pagination, err := h.categoryService.GetAllCategories(ctx, filters)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":    "successfully get all categories",
		"categories": categories,
		"pagination": pagination,
	})
}

func (h *CategoryHandler) GetCategoryByID(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	category, err := h.categoryService.GetCategoryByID(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  "successfully find category by id",
		"category": category,
	})
}

func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	var req CategoryRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("failed to bind request", err)
		return apperror.Validation("invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		return apperror.Validation("%v", err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	category := domain.Category{
		Name:   req.Name,
		Status: req.Status,
	}

	created, err := h.categoryService.CreateCategory(ctx, &category)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":  "category successfully created",
		"category": created,
	})
}

func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req CategoryRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("failed to bind request", err)
		return apperror.Validation("invalid request body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	category := domain.Category{
		ID:     id,
		Name:   req.Name,
		Status: req.Status,
	}

	updated, err := h.categoryService.UpdateCategory(ctx, &category)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  "category successfully updated",
		"category": updated,
	})
}

func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.categoryService.DeleteCategory(ctx, id); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "category successfully deleted",
	})
}
