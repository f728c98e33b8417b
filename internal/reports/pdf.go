package reports

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/KretovDmitry/storefront/internal/models/errs"
	"github.com/KretovDmitry/storefront/internal/models/order"
	"github.com/KretovDmitry/storefront/internal/models/report"
	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
)

// Renderer turns an HTML document into PDF.
type Renderer interface {
	Render(ctx context.Context, html []byte) ([]byte, error)
}

//go:embed templates/*.html
var templates embed.FS

var salesReportTemplate = template.Must(
	template.New("sales_report.html").
		Funcs(template.FuncMap{
			"date":  func(d dataJSON) string { return d.StartDate + " to " + d.EndDate },
			"label": func(s string) string { return order.Status(s).Label() },
			"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
		}).
		ParseFS(templates, "templates/sales_report.html"),
)

func renderHTML(data *report.Data) ([]byte, error) {
	var buf bytes.Buffer
	if err := salesReportTemplate.Execute(&buf, newDataJSON(data)); err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *Service) renderPDF(ctx context.Context, data *report.Data) ([]byte, error) {
	if s.renderer == nil {
		return nil, errs.ErrRenderingUnavailable
	}

	html, err := renderHTML(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrRenderingFailed, err)
	}

	pdf, err := s.renderer.Render(ctx, html)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrRenderingFailed, err)
	}

	return pdf, nil
}

// WkhtmltopdfRenderer renders PDF with the wkhtmltopdf binary.
type WkhtmltopdfRenderer struct{}

// NewWkhtmltopdfRenderer fails when the binary cannot be found, either at
// path or, when path is empty, in PATH and the WKHTMLTOPDF_PATH variable.
func NewWkhtmltopdfRenderer(path string) (*WkhtmltopdfRenderer, error) {
	if path != "" {
		wkhtmltopdf.SetPath(path)
	}

	// The generator looks the binary up on creation.
	if _, err := wkhtmltopdf.NewPDFGenerator(); err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrRenderingUnavailable, err)
	}

	return &WkhtmltopdfRenderer{}, nil
}

var _ Renderer = (*WkhtmltopdfRenderer)(nil)

func (*WkhtmltopdfRenderer) Render(ctx context.Context, html []byte) ([]byte, error) {
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, err
	}

	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(html))
	page.Encoding.Set("utf-8")
	pdfg.AddPage(page)

	if err = pdfg.CreateContext(ctx); err != nil {
		return nil, err
	}

	return pdfg.Bytes(), nil
}
