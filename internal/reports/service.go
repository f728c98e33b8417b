package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KretovDmitry/storefront/internal/config"
	"github.com/KretovDmitry/storefront/internal/models/order"
	"github.com/KretovDmitry/storefront/internal/models/report"
	"github.com/KretovDmitry/storefront/pkg/logger"
)

// DefaultReportType labels reports requested without a type.
const DefaultReportType = "sales"

type Service struct {
	repo     Repository
	renderer Renderer
	logger   logger.Logger
	config   *config.Config
	now      func() time.Time
}

// NewService builds the report service. A nil renderer disables PDF export.
func NewService(repo Repository, renderer Renderer, logger logger.Logger, config *config.Config) (*Service, error) {
	if repo == nil {
		return nil, errors.New("nil dependency: repository")
	}
	if config == nil {
		return nil, errors.New("nil dependency: config")
	}
	return &Service{
		repo:     repo,
		renderer: renderer,
		logger:   logger,
		config:   config,
		now:      time.Now,
	}, nil
}

// Generate aggregates orders created within [start, end], both days inclusive.
// KPIs and daily revenue cover delivered orders only, the status
// breakdown covers every status. No data yields zero values.
func (s *Service) Generate(ctx context.Context, reportType string, start, end time.Time) (*report.Data, error) {
	if reportType == "" {
		reportType = DefaultReportType
	}

	start, end = truncateDay(start), truncateDay(end)

	summary, err := s.repo.DeliveredSummary(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("delivered summary: %w", err)
	}

	itemsSold, err := s.repo.DeliveredItemsSold(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("items sold: %w", err)
	}

	breakdown, err := s.repo.StatusBreakdown(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("status breakdown: %w", err)
	}

	daily, err := s.repo.DailySeries(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("daily series: %w", err)
	}

	return &report.Data{
		StartDate:         start,
		EndDate:           end,
		ReportType:        reportType,
		StatusBreakdown:   breakdown,
		DailySales:        daily,
		TotalRevenue:      summary.Revenue,
		AverageOrderValue: summary.Average,
		TotalOrders:       summary.Count,
		TotalItemsSold:    itemsSold,
	}, nil
}

// ResolveRange fills in a missing bound. When either is absent both
// are replaced by the first and last order days, or by today when the
// store has no orders.
func (s *Service) ResolveRange(ctx context.Context, start, end *time.Time) (time.Time, time.Time, error) {
	if start != nil && end != nil {
		return *start, *end, nil
	}

	first, last, found, err := s.repo.OrderDateBounds(ctx)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("order date bounds: %w", err)
	}
	if !found {
		today := truncateDay(s.now())
		return today, today, nil
	}

	return first, last, nil
}

// Dashboard is the owner overview over the configured trailing window.
func (s *Service) Dashboard(ctx context.Context) (*report.Dashboard, error) {
	cfg := s.config.Reports
	since := truncateDay(s.now().Add(-cfg.DashboardWindow))

	stats, err := s.repo.WindowStats(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("window stats: %w", err)
	}

	recent, err := s.repo.RecentOrders(ctx, cfg.RecentOrders)
	if err != nil {
		return nil, fmt.Errorf("recent orders: %w", err)
	}

	top, err := s.repo.TopProducts(ctx, since, cfg.TopProducts)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}

	return &report.Dashboard{
		Since:             since,
		RecentOrders:      recent,
		TopProducts:       top,
		TotalRevenue:      stats.Delivered.Revenue,
		AverageOrderValue: stats.Delivered.Average,
		TotalOrders:       stats.Orders,
		TotalCustomers:    stats.Customers,
	}, nil
}

// adminRecentOrders is how many orders the staff dashboard lists.
const adminRecentOrders = 5

// AdminDashboard is the staff overview of orders and product stock.
func (s *Service) AdminDashboard(ctx context.Context) (*report.AdminDashboard, error) {
	counts, err := s.repo.StatusCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("status counts: %w", err)
	}

	recent, err := s.repo.RecentOrders(ctx, adminRecentOrders)
	if err != nil {
		return nil, fmt.Errorf("recent orders: %w", err)
	}

	stock, err := s.repo.ProductStock(ctx, s.config.Reports.LowStockThreshold)
	if err != nil {
		return nil, fmt.Errorf("product stock: %w", err)
	}

	res := &report.AdminDashboard{
		StatusCounts:  make(map[string]int64, len(order.Statuses)),
		RecentOrders:  recent,
		TotalProducts: stock.Total,
		InStock:       stock.InStock,
		LowStock:      stock.LowStock,
		OutOfStock:    stock.OutOfStock,
	}

	for _, st := range order.Statuses {
		n := counts[string(st)]
		res.StatusCounts[string(st)] = n
		res.TotalOrders += n
	}

	return res, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
