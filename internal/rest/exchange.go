package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"threadmarket/business/exchange"
	"threadmarket/domain"
	"threadmarket/pkg/apperror"
	"threadmarket/pkg/logger"

	"github.com/labstack/echo/v4"
)

type ExchangeService interface {
	ImportProducts(ctx context.Context, rows []exchange.ImportRow) (domain.ImportResult, error)
	ExportProducts(ctx context.Context, format string) (domain.ExportFile, error)
	ExportOrders(ctx context.Context, format string) (domain.ExportFile, error)
	ExportCategories(ctx context.Context, format string) (domain.ExportFile, error)
}

type ExchangeHandler struct {
	exchangeService ExchangeService
	timeout         time.Duration
}

func NewExchangeHandler(exchangeService ExchangeService) *ExchangeHandler {
	return &ExchangeHandler{
		exchangeService: exchangeService,
		timeout:         60 * time.Second,
	}
}

// ImportProducts takes the rows as a bare JSON array in the request body.
func (h *ExchangeHandler) ImportProducts(c echo.Context) error {
	var rows []exchange.ImportRow

	if err := c.Bind(&rows); err != nil {
		logger.Error("failed to bind request", err)
		return apperror.Validation("invalid request body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.exchangeService.ImportProducts(ctx, rows)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "import finished",
		"result":  result,
	})
}

// Export streams a dataset as a downloadable attachment. The type query
// parameter picks the dataset, format picks csv or json.
func (h *ExchangeHandler) Export(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	format := c.QueryParam("format")

	var (
		file domain.ExportFile
		err  error
	)

	switch c.QueryParam("type") {
	case "products", "":
		file, err = h.exchangeService.ExportProducts(ctx, format)
	case "orders":
		file, err = h.exchangeService.ExportOrders(ctx, format)
	case "categories":
		file, err = h.exchangeService.ExportCategories(ctx, format)
	default:
		return apperror.Validation("invalid export type (products, orders, categories)")
	}
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s"`, file.Filename))

	return c.Blob(http.StatusOK, file.ContentType, file.Content)
}
