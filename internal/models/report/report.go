package report

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of report dates.
const DateLayout = "2006-01-02"

// Data is a generated sales report. Money stays decimal here and is
// converted to float only by the serializers.
type Data struct {
	StartDate         time.Time
	EndDate           time.Time
	ReportType        string
	StatusBreakdown   []StatusRow
	DailySales        []DailyRow
	TotalRevenue      decimal.Decimal
	AverageOrderValue decimal.Decimal
	TotalOrders       int64
	TotalItemsSold    int64
}

// Summary holds delivered-only KPIs.
type Summary struct {
	Revenue decimal.Decimal
	Average decimal.Decimal
	Count   int64
}

// StatusRow groups in-range orders of every status.
// Revenue includes non-delivered orders.
type StatusRow struct {
	Status  string
	Revenue decimal.Decimal
	Count   int64
}

// DailyRow groups in-range orders per calendar day.
// Count includes every status, Revenue only delivered orders.
type DailyRow struct {
	Day         time.Time
	Revenue     decimal.Decimal
	OrdersCount int64
}

// Dashboard is the owner overview for a trailing window.
type Dashboard struct {
	Since             time.Time
	RecentOrders      []RecentOrder
	TopProducts       []TopProduct
	TotalRevenue      decimal.Decimal
	AverageOrderValue decimal.Decimal
	TotalOrders       int64
	TotalCustomers    int64
}

type RecentOrder struct {
	CreatedAt   time.Time
	OrderID     string
	Username    string
	Status      string
	TotalAmount decimal.Decimal
}

type TopProduct struct {
	Name         string
	TotalRevenue decimal.Decimal
	TotalSold    int64
}

// AdminDashboard is the staff overview of orders and stock.
type AdminDashboard struct {
	StatusCounts  map[string]int64
	RecentOrders  []RecentOrder
	TotalOrders   int64
	TotalProducts int64
	InStock       int64
	LowStock      int64
	OutOfStock    int64
}
