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
	"github.com/shopspring/decimal"
)

type ProductService interface {
	GetAllProducts(ctx context.Context, f domain.ProductFilters) ([]domain.Product, domain.Pagination, error)
	GetProductByID(ctx context.Context, id uint) (domain.Product, error)
	CreateProduct(ctx context.Context, product *domain.Product) (domain.Product, error)
	UpdateProduct(ctx context.Context, product *domain.Product) (domain.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
	BulkDeleteProducts(ctx context.Context, ids []uint) (int64, error)
}

type ProductHandler struct {
	productService ProductService
	validator      *validator.Validate
	timeout        time.Duration
}

func NewProductHandler(productService ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		validator:      validator.New(),
		timeout:        10 * time.Second,
	}
}

type ProductRequest struct {
	Name        string           `json:"name" validate:"required"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price" validate:"required"`
	SalePrice   *decimal.Decimal `json:"sale_price"`
	Stock       int              `json:"stock" validate:"gte=0"`
	Status      string           `json:"status" validate:"omitempty,oneof=active inactive"`
	CategoryID  *uint            `json:"category_id"`
}

type BulkDeleteRequest struct {
	IDs []uint `json:"ids" validate:"required,min=1"`
}

func (h *ProductHandler) GetAllProducts(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	minPrice, err := queryDecimal(c, "min_price")
	if err != nil {
		return err
	}
	maxPrice, err := queryDecimal(c, "max_price")
	if err != nil {
		return err
	}

	filters := domain.ProductFilters{
		Status:     c.QueryParam("status"),
		CategoryID: queryUint(c, "category_id"),
		Search:     c.QueryParam("search"),
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
		SortBy:     c.QueryParam("sort_by"),
		SortOrder:  c.QueryParam("sort_order"),
		Page:       queryInt(c, "page", 1),
		Limit:      queryInt(c, "limit", 10),
	}

	// Anonymous and plain customers only ever see the active catalog.
	role := currentRole(c)
	if role != domain.RoleManager && role != domain.RoleAdmin {
		filters.PublicOnly = true
		filters.Status = ""
	}

	products, pagination, err := h.productService.GetAllProducts(ctx, filters)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":    "successfully get all products",
		"products":   products,
		"pagination": pagination,
	})
}

func (h *ProductHandler) GetProductByID(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	product, err := h.productService.GetProductByID(ctx, id)
	if err != nil {
		return err
	}

	role := currentRole(c)
	if product.Status != domain.StatusActive && role != domain.RoleManager && role != domain.RoleAdmin {
		return apperror.NotFound("product does not exist")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "successfully find product by id",
		"product": product,
	})
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req ProductRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("failed to bind request", err)
		return apperror.Validation("invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		return apperror.Validation("%v", err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	product := domain.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		SalePrice:   req.SalePrice,
		Stock:       req.Stock,
		Status:      req.Status,
		CategoryID:  req.CategoryID,
	}

	newProduct, err := h.productService.CreateProduct(ctx, &product)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "product successfully created",
		"product": newProduct,
	})
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req ProductRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("failed to bind request", err)
		return apperror.Validation("invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		return apperror.Validation("%v", err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	product := domain.Product{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		SalePrice:   req.SalePrice,
		Stock:       req.Stock,
		Status:      req.Status,
		CategoryID:  req.CategoryID,
	}

	updated, err := h.productService.UpdateProduct(ctx, &product)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "product successfully updated",
		"product": updated,
	})
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.productService.DeleteProduct(ctx, id); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "product successfully deleted",
	})
}

func (h *ProductHandler) BulkDeleteProducts(c echo.Context) error {
	var req BulkDeleteRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("failed to bind request", err)
		return apperror.Validation("invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		return apperror.Validation("%v", err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	deleted, err := h.productService.BulkDeleteProducts(ctx, req.IDs)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "products successfully deleted",
		"deleted": deleted,
	})
}
