package rest

import (
	"context"
	"net/http"
	"time"

	"threadmarket/domain"
	"threadmarket/pkg/apperror"
	"threadmarket/pkg/metrics"

	"github.com/labstack/echo/v4"
)

type ReportService interface {
	Dashboard(ctx context.Context, start, end *time.Time) (domain.Dashboard, error)
	Daily(ctx context.Context, date time.Time) (domain.Dashboard, error)
	Weekly(ctx context.Context, year, week int) (domain.Dashboard, error)
	Monthly(ctx context.Context, year, month int) (domain.Dashboard, error)
	Quarterly(ctx context.Context, year, quarter int) (domain.Dashboard, error)
	RevenueChart(ctx context.Context, period string) ([]domain.RevenuePoint, error)
	ProductChart(ctx context.Context) ([]domain.CategoryCount, error)
}

type ReportHandler struct {
	reportService ReportService
	timeout       time.Duration
}

func NewReportHandler(reportService ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		timeout:       30 * time.Second,
	}
}

func (h *ReportHandler) observe(report string, start time.Time) {
	metrics.ReportLatency.WithLabelValues(report).Observe(time.Since(start).Seconds())
}

func (h *ReportHandler) Dashboard(c echo.Context) error {
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

	defer h.observe("dashboard", time.Now())

	dashboard, err := h.reportService.Dashboard(ctx, startDate, endDate)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":   "successfully get dashboard",
		"dashboard": dashboard,
	})
}

func (h *ReportHandler) Daily(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	raw := c.QueryParam("date")
	if raw == "" {
		return apperror.Validation("date is required")
	}
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		return apperror.Validation("date must be formatted as YYYY-MM-DD")
	}

	defer h.observe("daily", time.Now())

	report, err := h.reportService.Daily(ctx, date)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "successfully get daily report",
		"report":  report,
	})
}

func (h *ReportHandler) Weekly(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	year := queryInt(c, "year", 0)
	week := queryInt(c, "week", 0)

	defer h.observe("weekly", time.Now())

	report, err := h.reportService.Weekly(ctx, year, week)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "successfully get weekly report",
		"report":  report,
	})
}

func (h *ReportHandler) Monthly(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	year := queryInt(c, "year", 0)
	month := queryInt(c, "month", 0)

	defer h.observe("monthly", time.Now())

	report, err := h.reportService.Monthly(ctx, year, month)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "successfully get monthly report",
		"report":  report,
	})
}

func (h *ReportHandler) Quarterly(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	year := queryInt(c, "year", 0)
	quarter := queryInt(c, "quarter", 0)

	defer h.observe("quarterly", time.Now())

	report, err := h.reportService.Quarterly(ctx, year, quarter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "successfully get quarterly report",
		"report":  report,
	})
}

// Chart serves the chart datasets the dashboard frontend polls. Type selects
// the dataset, period the bucketing for revenue.
func (h *ReportHandler) Chart(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	chartType := c.QueryParam("type")
	defer h.observe("chart", time.Now())

	switch chartType {
	case "revenue", "":
		period := c.QueryParam("period")
		if period == "" {
			period = "7d"
		}

		points, err := h.reportService.RevenueChart(ctx, period)
		if err != nil {
			return err
		}

		return c.JSON(http.StatusOK, map[string]interface{}{
			"message": "successfully get revenue chart",
			"chart":   points,
		})
	case "product":
		counts, err := h.reportService.ProductChart(ctx)
		if err != nil {
			return err
		}

		return c.JSON(http.StatusOK, map[string]interface{}{
			"message": "successfully get product chart",
			"chart":   counts,
		})
	default:
		return apperror.Validation("invalid chart type (revenue, product)")
	}
}
