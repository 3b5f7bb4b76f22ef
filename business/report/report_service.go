package report

import (
	"context"
	"math"
	"time"

	"threadmarket/domain"
	"threadmarket/pkg/apperror"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Repository contract interface
type Repository interface {
	RevenueSummary(ctx context.Context, rng domain.DateRange) (decimal.Decimal, error)
	OrderCounts(ctx context.Context, rng domain.DateRange) (domain.OrderCounts, error)
	InventorySnapshot(ctx context.Context) (domain.InventorySnapshot, error)
	CustomerCount(ctx context.Context) (int64, error)
	TopProducts(ctx context.Context, rng domain.DateRange, limit int) ([]domain.TopProduct, error)
	RevenueTrend(ctx context.Context, rng domain.DateRange, limit int) ([]domain.RevenuePoint, error)
	RevenueByPeriod(ctx context.Context, rng domain.DateRange, groupBy string) ([]domain.RevenuePoint, error)
	ProductsByCategory(ctx context.Context) ([]domain.CategoryCount, error)
}

const (
	defaultTopProducts = 5

	// defaultTrendWindow caps the revenue trend at 30 buckets, but only when
	// the dashboard is computed without an explicit range. With a range the
	// trend covers every day in it. Deliberate, covered by a test.
	defaultTrendWindow = 30
)

type ReportService struct {
	repo Repository
}

func NewReportService(repo Repository) *ReportService {
	return &ReportService{
		repo: repo,
	}
}

// Dashboard computes the KPI block, top products and revenue trend for the
// given optional range. The underlying queries are independent and run
// concurrently.
func (s *ReportService) Dashboard(ctx context.Context, start, end *time.Time) (domain.Dashboard, error) {
	rng, err := NormalizeRange(start, end)
	if err != nil {
		return domain.Dashboard{}, err
	}

	return s.dashboard(ctx, rng)
}

func (s *ReportService) dashboard(ctx context.Context, rng domain.DateRange) (domain.Dashboard, error) {
	trendLimit := 0
	if rng.IsZero() {
		trendLimit = defaultTrendWindow
	}

	var (
		revenue   decimal.Decimal
		counts    domain.OrderCounts
		inventory domain.InventorySnapshot
		customers int64
		top       []domain.TopProduct
		trend     []domain.RevenuePoint
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		revenue, err = s.repo.RevenueSummary(gctx, rng)
		return err
	})
	g.Go(func() (err error) {
		counts, err = s.repo.OrderCounts(gctx, rng)
		return err
	})
	g.Go(func() (err error) {
		inventory, err = s.repo.InventorySnapshot(gctx)
		return err
	})
	g.Go(func() (err error) {
		customers, err = s.repo.CustomerCount(gctx)
		return err
	})
	g.Go(func() (err error) {
		top, err = s.repo.TopProducts(gctx, rng, defaultTopProducts)
		return err
	})
	g.Go(func() (err error) {
		trend, err = s.repo.RevenueTrend(gctx, rng, trendLimit)
		return err
	})

	if err := g.Wait(); err != nil {
		return domain.Dashboard{}, err
	}

	return domain.Dashboard{
		KPI: domain.DashboardKPI{
			TotalRevenue:       revenue,
			TotalOrders:        counts.TotalOrders,
			CompletedOrders:    counts.CompletedOrders,
			PendingOrders:      counts.PendingOrders,
			TotalProducts:      inventory.TotalProducts,
			OutOfStockProducts: inventory.OutOfStockProducts,
			TotalCustomers:     customers,
			CompletionRate:     completionRate(counts),
		},
		TopProducts:  top,
		RevenueByDay: trend,
	}, nil
}

// completionRate is completed/total as a percentage rounded to 2 decimals,
// zero when there are no orders.
func completionRate(counts domain.OrderCounts) float64 {
	if counts.TotalOrders == 0 {
		return 0
	}

	rate := float64(counts.CompletedOrders) / float64(counts.TotalOrders) * 100
	return math.Round(rate*100) / 100
}

func (s *ReportService) Daily(ctx context.Context, date time.Time) (domain.Dashboard, error) {
	return s.dashboard(ctx, DayRange(date))
}

func (s *ReportService) Weekly(ctx context.Context, year, week int) (domain.Dashboard, error) {
	rng, err := WeekRange(year, week)
	if err != nil {
		return domain.Dashboard{}, err
	}

	return s.dashboard(ctx, rng)
}

func (s *ReportService) Monthly(ctx context.Context, year, month int) (domain.Dashboard, error) {
	rng, err := MonthRange(year, month)
	if err != nil {
		return domain.Dashboard{}, err
	}

	return s.dashboard(ctx, rng)
}

func (s *ReportService) Quarterly(ctx context.Context, year, quarter int) (domain.Dashboard, error) {
	rng, err := QuarterRange(year, quarter)
	if err != nil {
		return domain.Dashboard{}, err
	}

	return s.dashboard(ctx, rng)
}

// RevenueChart returns preset revenue windows: 7d and 30d bucketed daily,
// 12m bucketed monthly.
func (s *ReportService) RevenueChart(ctx context.Context, period string) ([]domain.RevenuePoint, error) {
	now := time.Now().UTC()
	end := EndOfDay(now)

	var start time.Time
	groupBy := "day"

	switch period {
	case "7d":
		start = StartOfDay(now.AddDate(0, 0, -6))
	case "30d":
		start = StartOfDay(now.AddDate(0, 0, -29))
	case "12m":
		start = time.Date(now.Year(), now.Month()-11, 1, 0, 0, 0, 0, time.UTC)
		groupBy = "month"
	default:
		return nil, apperror.Validation("invalid chart period (7d, 30d, 12m)")
	}

	rng := domain.DateRange{Start: &start, End: &end}
	return s.repo.RevenueByPeriod(ctx, rng, groupBy)
}

func (s *ReportService) ProductChart(ctx context.Context) ([]domain.CategoryCount, error) {
	return s.repo.ProductsByCategory(ctx)
}
