package rest

import (
	"context"
	"net/http"
	"time"

	"threadmarket/domain"
	"threadmarket/pkg/apperror"
	"threadmarket/pkg/logger"
	"threadmarket/pkg/metrics"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	OrdersHandler struct {
		validate      *validator.Validate
		ordersService OrdersService
		timeout       time.Duration
	}

	OrdersService interface {
		Create(ctx context.Context, userID uint, lines []domain.OrderLine) (domain.Order, error)
		Get(ctx context.Context, id uint) (domain.Order, error)
		List(ctx context.Context, f domain.OrderFilters) ([]domain.Order, domain.Pagination, error)
		UpdateStatus(ctx context.Context, id uint, status string) (domain.Order, error)
		Delete(ctx context.Context, id uint) error
	}

	OrderLineInput struct {
		ProductID uint `json:"product_id" validate:"required"`
		Quantity  int  `json:"quantity" validate:"required,gt=0"`
	}

	CreateOrderInput struct {
		Items []OrderLineInput `json:"items" validate:"required,min=1,dive"`
	}

	UpdateOrderStatusInput struct {
		Status string `json:"status" validate:"required"`
	}
)

func NewOrdersHandler(ordersService OrdersService) *OrdersHandler {
	return &OrdersHandler{
		validate:      validator.New(),
		ordersService: ordersService,
		timeout:       10 * time.Second,
	}
}

func (h *OrdersHandler) CreateOrder(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apperror.Unauthorized("user not authenticated")
	}

	var request CreateOrderInput

	if err := c.Bind(&request); err != nil {
		logger.Error("invalid request body", err)
		return apperror.Validation("invalid request body")
	}

	if err := h.validate.Struct(&request); err != nil {
		return apperror.Validation("%v", err)
	}

	lines := make([]domain.OrderLine, 0, len(request.Items))
	for _, item := range request.Items {
		lines = append(lines, domain.OrderLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	start := time.Now()
	order, err := h.ordersService.Create(ctx, userID, lines)
	metrics.OrderCreateLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.OrdersCreatedTotal.WithLabelValues("failure").Inc()
		return err
	}
	metrics.OrdersCreatedTotal.WithLabelValues("success").Inc()

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(order))
}

func (h *OrdersHandler) GetAllOrders(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	startDate, err := queryDate(c, "start_date")
	if err != nil {
		return err
	}
	endDate, err := queryDate(c, "end_date")
	if err != nil {
		return err
	}
	minAmount, err := queryDecimal(c, "min_amount")
	if err != nil {
		return err
	}
	maxAmount, err := queryDecimal(c, "max_amount")
	if err != nil {
		return err
	}

	filters := domain.OrderFilters{
		Status:    c.QueryParam("status"),
		UserID:    queryUint(c, "user_id"),
		StartDate: startDate,
		EndDate:   endDate,
		MinAmount: minAmount,
		MaxAmount: maxAmount,
		Page:      queryInt(c, "page", 1),
		Limit:     queryInt(c, "limit", 10),
	}

	// Customers only ever see their own orders, whatever they pass.
	if currentRole(c) == domain.RoleUser {
		userID, ok := currentUserID(c)
		if !ok {
			return apperror.Unauthorized("user not authenticated")
		}
		filters.UserID = userID
	}

	orders, pagination, err := h.ordersService.List(ctx, filters)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]interface{}{
		"orders":     orders,
		"pagination": pagination,
	}))
}

func (h *OrdersHandler) GetOrderByID(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	order, err := h.ordersService.Get(ctx, id)
	if err != nil {
		return err
	}

	if currentRole(c) == domain.RoleUser {
		userID, _ := currentUserID(c)
		if order.UserID != userID {
			return apperror.Forbidden("you can only access your own orders")
		}
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(order))
}

func (h *OrdersHandler) UpdateOrderStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var request UpdateOrderStatusInput

	if err := c.Bind(&request); err != nil {
		logger.Error("invalid request body", err)
		return apperror.Validation("invalid request body")
	}

	if err := h.validate.Struct(&request); err != nil {
		return apperror.Validation("%v", err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	order, err := h.ordersService.UpdateStatus(ctx, id, request.Status)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(order))
}

// CancelOrder lets a customer cancel their own order while it is still
// pending or processing. Stock comes back in the same transaction.
func (h *OrdersHandler) CancelOrder(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	order, err := h.ordersService.Get(ctx, id)
	if err != nil {
		return err
	}

	if currentRole(c) == domain.RoleUser {
		userID, _ := currentUserID(c)
		if order.UserID != userID {
			return apperror.Forbidden("you can only cancel your own orders")
		}
	}

	if order.Status != domain.OrderStatusPending && order.Status != domain.OrderStatusProcessing {
		return apperror.Validation("only pending or processing orders can be cancelled")
	}

	cancelled, err := h.ordersService.UpdateStatus(ctx, id, domain.OrderStatusCancelled)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(cancelled))
}

func (h *OrdersHandler) DeleteOrder(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.ordersService.Delete(ctx, id); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]interface{}{
		"message": "order successfully deleted",
	}))
}
