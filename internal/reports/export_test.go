package reports

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/KretovDmitry/storefront/internal/models/errs"
	"github.com/KretovDmitry/storefront/internal/models/report"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Format
		err  error
	}{
		{in: "", want: FormatCSV},
		{in: "csv", want: FormatCSV},
		{in: "json", want: FormatJSON},
		{in: "pdf", want: FormatPDF},
		{in: "xml", err: errs.ErrUnsupportedFormat},
		{in: "CSV", err: errs.ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.err != nil {
			assert.ErrorIs(t, err, tt.err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func newTestData() *report.Data {
	return &report.Data{
		StartDate:  day("2024-01-01"),
		EndDate:    day("2024-01-31"),
		ReportType: "sales",
		StatusBreakdown: []report.StatusRow{
			{Status: "confirmed", Count: 1, Revenue: decimal.RequireFromString("100.00")},
			{Status: "delivered", Count: 2, Revenue: decimal.RequireFromString("59.99")},
		},
		DailySales: []report.DailyRow{
			{Day: day("2024-01-05"), OrdersCount: 2, Revenue: decimal.RequireFromString("39.99")},
			{Day: day("2024-01-20"), OrdersCount: 1, Revenue: decimal.RequireFromString("20.00")},
		},
		TotalRevenue:      decimal.RequireFromString("59.99"),
		AverageOrderValue: decimal.RequireFromString("29.995"),
		TotalOrders:       2,
		TotalItemsSold:    5,
	}
}

func TestExportCSV(t *testing.T) {
	s := newTestService(t, newTestRepository(), nil)

	export, err := s.Export(context.Background(), newTestData(), FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "sales_report_2024-01-01_2024-01-31.csv", export.Filename)
	assert.Equal(t, "text/csv", export.ContentType)
	assert.Equal(t, strings.Join([]string{
		"Order Status,Count,Revenue",
		"Confirmed,1,100.0",
		"Delivered,2,59.99",
		"",
		"Date,Orders,Revenue",
		"2024-01-05,2,39.99",
		"2024-01-20,1,20.0",
		"",
	}, "\r\n"), string(export.Body))
}

func TestExportCSVEmpty(t *testing.T) {
	s := newTestService(t, newTestRepository(), nil)

	data, err := s.Generate(context.Background(), "sales", day("2030-01-01"), day("2030-01-01"))
	require.NoError(t, err)

	export, err := s.Export(context.Background(), data, FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "Order Status,Count,Revenue\r\n\r\nDate,Orders,Revenue\r\n", string(export.Body))
}

func TestExportJSON(t *testing.T) {
	s := newTestService(t, newTestRepository(), nil)

	export, err := s.Export(context.Background(), newTestData(), FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, "sales_report_2024-01-01_2024-01-31.json", export.Filename)
	assert.Equal(t, "application/json", export.ContentType)
	assert.Contains(t, string(export.Body), "\n  \"report_type\": \"sales\",")

	assert.JSONEq(t, `{
		"report_type": "sales",
		"start_date": "2024-01-01",
		"end_date": "2024-01-31",
		"total_orders": 2,
		"total_revenue": 59.99,
		"average_order_value": 29.995,
		"total_items_sold": 5,
		"status_breakdown": [
			{"status": "confirmed", "count": 1, "revenue": 100},
			{"status": "delivered", "count": 2, "revenue": 59.99}
		],
		"daily_sales": [
			{"day": "2024-01-05", "orders_count": 2, "revenue": 39.99},
			{"day": "2024-01-20", "orders_count": 1, "revenue": 20}
		]
	}`, string(export.Body))
}

func TestExportJSONEmptyLists(t *testing.T) {
	data := &report.Data{StartDate: day("2024-01-01"), EndDate: day("2024-01-01")}

	body, err := encodeJSON(data)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, []any{}, got["status_breakdown"])
	assert.Equal(t, []any{}, got["daily_sales"])
	assert.Equal(t, 0.0, got["total_revenue"])
}

func TestExportPDF(t *testing.T) {
	tests := []struct {
		name     string
		renderer Renderer
		err      error
	}{
		{name: "rendered", renderer: mockRenderer{}},
		{name: "renderer unavailable", err: errs.ErrRenderingUnavailable},
		{name: "rendering fails", renderer: mockRenderer{err: errors.New("boom")}, err: errs.ErrRenderingFailed},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := newTestService(t, newTestRepository(), tt.renderer)

			export, err := s.Export(context.Background(), newTestData(), FormatPDF)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				assert.Nil(t, export)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "sales_report_2024-01-01_2024-01-31.pdf", export.Filename)
			assert.Equal(t, "application/pdf", export.ContentType)
			assert.True(t, strings.HasPrefix(string(export.Body), "%PDF"))
		})
	}
}

func TestExportPDFErrorText(t *testing.T) {
	s := newTestService(t, newTestRepository(), mockRenderer{err: errors.New("exit status 1")})

	_, err := s.Export(context.Background(), newTestData(), FormatPDF)
	assert.EqualError(t, err, "PDF generation failed: exit status 1")
}

func TestRenderHTML(t *testing.T) {
	html, err := renderHTML(newTestData())
	require.NoError(t, err)

	page := string(html)
	assert.Contains(t, page, "Sales Report (sales)")
	assert.Contains(t, page, "2024-01-01 to 2024-01-31")
	assert.Contains(t, page, "<td>Confirmed</td><td>1</td><td>100.00</td>")
	assert.Contains(t, page, "<td>2024-01-20</td><td>1</td><td>20.00</td>")
	assert.Contains(t, page, "<td>59.99</td>")
	assert.NotContains(t, page, "No orders in this period.")
}
