package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/KretovDmitry/storefront/internal/models/errs"
	"github.com/KretovDmitry/storefront/internal/models/order"
	"github.com/KretovDmitry/storefront/internal/models/report"
	"github.com/KretovDmitry/storefront/pkg/metrics"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatPDF  Format = "pdf"
)

// ParseFormat accepts csv, json and pdf. An empty value means csv.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatJSON, FormatPDF:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", errs.ErrUnsupportedFormat, s)
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatJSON:
		return "application/json"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// Export is a ready to download report file.
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Filename is sales_report_{start}_{end}.{ext}.
func Filename(data *report.Data, f Format) string {
	return fmt.Sprintf("sales_report_%s_%s.%s",
		data.StartDate.Format(report.DateLayout), data.EndDate.Format(report.DateLayout), f)
}

// Export serializes the report into the given format.
func (s *Service) Export(ctx context.Context, data *report.Data, f Format) (*Export, error) {
	var (
		body []byte
		err  error
	)

	switch f {
	case FormatCSV:
		body, err = encodeCSV(data)
	case FormatJSON:
		body, err = encodeJSON(data)
	case FormatPDF:
		body, err = s.renderPDF(ctx, data)
	default:
		return nil, fmt.Errorf("%w: %q", errs.ErrUnsupportedFormat, f)
	}
	if err != nil {
		return nil, err
	}

	metrics.ReportExports.WithLabelValues(string(f)).Inc()

	return &Export{
		Filename:    Filename(data, f),
		ContentType: f.ContentType(),
		Body:        body,
	}, nil
}

func encodeCSV(data *report.Data) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true

	records := make([][]string, 0, len(data.StatusBreakdown)+len(data.DailySales)+3)

	records = append(records, []string{"Order Status", "Count", "Revenue"})
	for _, row := range data.StatusBreakdown {
		records = append(records, []string{
			order.Status(row.Status).Label(),
			strconv.FormatInt(row.Count, 10),
			formatFloat(row.Revenue.InexactFloat64()),
		})
	}

	records = append(records, []string{})

	records = append(records, []string{"Date", "Orders", "Revenue"})
	for _, row := range data.DailySales {
		records = append(records, []string{
			row.Day.Format(report.DateLayout),
			strconv.FormatInt(row.OrdersCount, 10),
			formatFloat(row.Revenue.InexactFloat64()),
		})
	}

	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}

	return buf.Bytes(), nil
}

// formatFloat prints the shortest representation, always with a
// fractional part: 100 -> "100.0", 99.99 -> "99.99".
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Types just for marshalling purpose.
type (
	dataJSON struct {
		ReportType        string          `json:"report_type"`
		StartDate         string          `json:"start_date"`
		EndDate           string          `json:"end_date"`
		TotalOrders       int64           `json:"total_orders"`
		TotalRevenue      float64         `json:"total_revenue"`
		AverageOrderValue float64         `json:"average_order_value"`
		TotalItemsSold    int64           `json:"total_items_sold"`
		StatusBreakdown   []statusRowJSON `json:"status_breakdown"`
		DailySales        []dailyRowJSON  `json:"daily_sales"`
	}

	statusRowJSON struct {
		Status  string  `json:"status"`
		Count   int64   `json:"count"`
		Revenue float64 `json:"revenue"`
	}

	dailyRowJSON struct {
		Day         string  `json:"day"`
		OrdersCount int64   `json:"orders_count"`
		Revenue     float64 `json:"revenue"`
	}
)

// newDataJSON converts money to float64. Precision loss is accepted here.
func newDataJSON(data *report.Data) dataJSON {
	res := dataJSON{
		ReportType:        data.ReportType,
		StartDate:         data.StartDate.Format(report.DateLayout),
		EndDate:           data.EndDate.Format(report.DateLayout),
		TotalOrders:       data.TotalOrders,
		TotalRevenue:      data.TotalRevenue.InexactFloat64(),
		AverageOrderValue: data.AverageOrderValue.InexactFloat64(),
		TotalItemsSold:    data.TotalItemsSold,
		StatusBreakdown:   make([]statusRowJSON, 0, len(data.StatusBreakdown)),
		DailySales:        make([]dailyRowJSON, 0, len(data.DailySales)),
	}

	for _, row := range data.StatusBreakdown {
		res.StatusBreakdown = append(res.StatusBreakdown, statusRowJSON{
			Status:  row.Status,
			Count:   row.Count,
			Revenue: row.Revenue.InexactFloat64(),
		})
	}

	for _, row := range data.DailySales {
		res.DailySales = append(res.DailySales, dailyRowJSON{
			Day:         row.Day.Format(report.DateLayout),
			OrdersCount: row.OrdersCount,
			Revenue:     row.Revenue.InexactFloat64(),
		})
	}

	return res
}

func encodeJSON(data *report.Data) ([]byte, error) {
	body, err := json.MarshalIndent(newDataJSON(data), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return body, nil
}
